// Package persist turns a burst of manuscript edits into a single durable
// write and exposes the save status to observers.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/storage"
)

const (
	DefaultDebounce     = 2000 * time.Millisecond
	DefaultMinVisible   = 800 * time.Millisecond
	DefaultWriteTimeout = 10 * time.Second
)

// Status is the observable save state.
type Status int

const (
	Idle Status = iota
	PendingWrite
	Writing
)

func (s Status) String() string {
	switch s {
	case PendingWrite:
		return "pending"
	case Writing:
		return "writing"
	default:
		return "idle"
	}
}

// Source returns a read-only snapshot of the book to persist.
type Source func() manuscript.Book

// Config tunes the scheduler timings.
type Config struct {
	Debounce     time.Duration
	MinVisible   time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the standard autosave timings.
func DefaultConfig() Config {
	return Config{
		Debounce:     DefaultDebounce,
		MinVisible:   DefaultMinVisible,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Scheduler debounces change notifications into writes of the active book.
// Only the state at the moment the timer fires is written; intermediate
// states of a burst never reach storage.
type Scheduler struct {
	mu        sync.Mutex
	store     storage.Store
	source    Source
	clock     Clock
	cfg       Config
	logger    *slog.Logger
	status    Status
	gen       uint64
	debounce  Timer
	hold      Timer
	lastSaved *time.Time
	lastErr   error
	observers []func(Status)
	queue     []Status
	draining  bool
	stopped   bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates an idle scheduler writing snapshots from source to store.
func NewScheduler(store storage.Store, source Source, cfg Config, opts ...Option) *Scheduler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MinVisible < 0 {
		cfg.MinVisible = 0
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	s := &Scheduler{
		store:  store,
		source: source,
		clock:  SystemClock,
		cfg:    cfg,
		logger: slog.Default().With("component", "autosave"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the current save state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// LastSaved returns the time of the last successful write, if any.
func (s *Scheduler) LastSaved() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSaved == nil {
		return time.Time{}, false
	}
	return *s.lastSaved, true
}

// LastError returns the error of the most recent write, nil after a success.
func (s *Scheduler) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// OnStatus registers fn to receive every status transition. Transitions are
// delivered one at a time in the order they happened, so the last status an
// observer saw matches Status once delivery settles. Observers run outside
// the scheduler lock, on whichever goroutine caused the transition (an edit
// or a timer); they may call back into the scheduler.
func (s *Scheduler) OnStatus(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Notify arms the debounce timer, cancelling any pending one.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	if s.debounce != nil && s.debounce.Stop() {
		debouncedEdits.Inc()
	}
	if s.hold != nil {
		s.hold.Stop()
		s.hold = nil
	}
	s.debounce = s.clock.AfterFunc(s.cfg.Debounce, func() { s.fire(gen) })
	notify := s.setStatusLocked(PendingWrite)
	s.mu.Unlock()
	notify()
}

// Stop cancels pending timers. A pending write is dropped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.debounce != nil {
		s.debounce.Stop()
	}
	if s.hold != nil {
		s.hold.Stop()
	}
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.debounce = nil
	notify := s.setStatusLocked(Writing)
	s.mu.Unlock()
	notify()

	at, err := s.write()

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.lastSaved = &at
	}
	if s.stopped || gen != s.gen {
		// A newer edit re-armed the timer while we were writing.
		s.mu.Unlock()
		return
	}
	if err != nil || s.cfg.MinVisible == 0 {
		notify = s.setStatusLocked(Idle)
	} else {
		notify = func() {}
		s.hold = s.clock.AfterFunc(s.cfg.MinVisible, func() { s.release(gen) })
	}
	s.mu.Unlock()
	notify()
}

func (s *Scheduler) release(gen uint64) {
	s.mu.Lock()
	if s.stopped || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.hold = nil
	notify := s.setStatusLocked(Idle)
	s.mu.Unlock()
	notify()
}

func (s *Scheduler) write() (time.Time, error) {
	at := s.clock.Now()
	book := s.source()
	book.LastSaved = &at

	data, err := json.Marshal(book)
	if err != nil {
		writesTotal.WithLabelValues("encode_error").Inc()
		s.logger.Error("Failed to encode book", "book_id", book.ID, "error", err)
		return at, fmt.Errorf("encoding book: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
	defer cancel()

	start := time.Now()
	err = s.store.Save(ctx, storage.ActiveBookKey, data)
	writeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		writesTotal.WithLabelValues("storage_error").Inc()
		s.logger.Error("Failed to save book", "book_id", book.ID, "error", err)
		return at, fmt.Errorf("saving book: %w", err)
	}

	writesTotal.WithLabelValues("ok").Inc()
	s.logger.Debug("Book saved", "book_id", book.ID, "chapters", len(book.Chapters), "bytes", len(data))
	return at, nil
}

// setStatusLocked records st and queues it for observers. The returned
// func must be called after s.mu is released.
func (s *Scheduler) setStatusLocked(st Status) func() {
	if s.status == st {
		return func() {}
	}
	s.status = st
	s.queue = append(s.queue, st)
	return s.deliver
}

// deliver drains the transition queue. One goroutine drains at a time; a
// caller that finds a drain in progress leaves its transitions to it.
func (s *Scheduler) deliver() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.queue) > 0 {
		st := s.queue[0]
		s.queue = s.queue[1:]
		observers := append([]func(Status){}, s.observers...)
		s.mu.Unlock()
		for _, fn := range observers {
			fn(st)
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}
