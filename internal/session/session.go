// Package session holds everything one author works with: the manuscript,
// its autosave, the preview position and the signed-in profile.
//
// All calls on a Session are serialised. Calls that wait on an AI backend
// or an encoder do so without holding the lock, so autosave and editing
// are never blocked behind a slow collaborator.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vampirenirmal/lumina/internal/agent"
	"github.com/vampirenirmal/lumina/internal/export"
	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/pagination"
	"github.com/vampirenirmal/lumina/internal/persist"
	"github.com/vampirenirmal/lumina/internal/storage"
)

// Assistant is the set of AI collaborators a session can call.
type Assistant interface {
	Outline(ctx context.Context, idea string) (manuscript.Outline, error)
	Refine(ctx context.Context, content, instruction string) (string, error)
	Muse(ctx context.Context, content, genre string) (string, error)
	SuggestLayout(ctx context.Context, genre, description string) (manuscript.LayoutPreference, error)
	SuggestCover(ctx context.Context, title, genre, description string) (agent.CoverSuggestion, error)
	CoverImage(ctx context.Context, title, author, style string) (string, error)
}

// Exporter encodes book snapshots.
type Exporter interface {
	Formats() []string
	Export(ctx context.Context, format string, book manuscript.Book) (export.Artifact, error)
	ExportAll(ctx context.Context, book manuscript.Book) ([]export.Artifact, error)
}

// Deps are the collaborators of a Session. Storage is required; a nil
// Assistant disables the AI operations and a nil Exporter uses the
// built-in encoders.
type Deps struct {
	Storage   storage.Store
	Assistant Assistant
	Exporter  Exporter
	Autosave  persist.Config
}

type Option func(*Session)

// WithClock drives timestamps and autosave timers from c.
func WithClock(c persist.Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator overrides the generator for book, revision and profile ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) {
		if newID != nil {
			s.newID = newID
		}
	}
}

const (
	minZoom = 0.5
	maxZoom = 2.0
)

// Session serialises every operation on one book. The lock is never held
// while autosave observers or collaborators run.
type Session struct {
	mu        sync.Mutex
	dirty     bool
	storage   storage.Store
	store     *manuscript.Store
	saver     *persist.Scheduler
	assistant Assistant
	exporter  Exporter
	engine    *pagination.Engine
	renderer  *pagination.Renderer
	nav       pagination.Navigator
	zoom      float64
	activeID  string
	profile   *persist.Profile
	clock     persist.Clock
	newID     func() string
	logger    *slog.Logger
}

// Open loads the active book and the user profile from deps.Storage and
// starts a session over them.
func Open(ctx context.Context, deps Deps, opts ...Option) (*Session, error) {
	if deps.Storage == nil {
		return nil, errors.New("session needs a storage backend")
	}
	s := &Session{
		storage:   deps.Storage,
		assistant: deps.Assistant,
		exporter:  deps.Exporter,
		engine:    pagination.NewEngine(),
		renderer:  pagination.NewRenderer(),
		zoom:      1,
		clock:     persist.SystemClock,
		newID:     uuid.NewString,
		logger:    slog.Default().With("component", "session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.exporter == nil {
		s.exporter = export.DefaultRegistry()
	}

	book, err := persist.LoadBook(ctx, deps.Storage, s.clock.Now())
	if err != nil {
		return nil, err
	}

	profile, ok, err := persist.LoadProfile(ctx, deps.Storage)
	if err != nil {
		s.logger.Warn("Ignoring unreadable profile", "error", err)
	} else if ok {
		s.profile = &profile
	}

	s.store = manuscript.NewStore(book,
		manuscript.WithClock(s.clock.Now),
		manuscript.WithIDGenerator(s.newID))
	s.saver = persist.NewScheduler(deps.Storage, s.snapshot, deps.Autosave, persist.WithClock(s.clock))
	s.store.OnChange(func() { s.dirty = true })
	s.activeID = s.store.Book().Chapters[0].ID

	s.logger.Info("Session opened",
		"book_id", book.ID,
		"chapters", len(book.Chapters),
		"signed_in", s.profile != nil)
	return s, nil
}

func (s *Session) lock() {
	s.mu.Lock()
}

// unlock releases the session and arms autosave if the book changed while
// it was held.
func (s *Session) unlock() {
	dirty := s.dirty
	s.dirty = false
	s.mu.Unlock()
	if dirty {
		s.saver.Notify()
	}
}

// Close stops autosave. Edits not yet written are dropped.
func (s *Session) Close() {
	s.saver.Stop()
}

func (s *Session) snapshot() manuscript.Book {
	s.lock()
	defer s.unlock()
	return s.store.Book()
}

// Book returns a read-only snapshot of the manuscript.
func (s *Session) Book() manuscript.Book {
	return s.snapshot()
}

func (s *Session) Version() uint64 {
	s.lock()
	defer s.unlock()
	return s.store.Version()
}

func (s *Session) Stats() manuscript.Stats {
	return s.snapshot().Stats()
}

// SaveStatus is the autosave indicator.
type SaveStatus struct {
	Status    string     `json:"status"`
	LastSaved *time.Time `json:"lastSaved,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

func (s *Session) SaveStatus() SaveStatus {
	st := SaveStatus{Status: s.saver.Status().String()}
	if t, ok := s.saver.LastSaved(); ok {
		st.LastSaved = &t
	}
	if err := s.saver.LastError(); err != nil {
		st.LastError = err.Error()
	}
	return st
}

// OnSaveStatus registers fn to observe autosave transitions. fn runs
// without the session lock and may read the session.
func (s *Session) OnSaveStatus(fn func(persist.Status)) {
	s.saver.OnStatus(fn)
}

// ActiveChapter returns the chapter being edited.
func (s *Session) ActiveChapter() manuscript.Chapter {
	s.lock()
	defer s.unlock()
	ch, _ := s.store.ActiveChapter(s.activeID)
	return ch
}

// Chapter returns a copy of the chapter with the given id.
func (s *Session) Chapter(id string) (manuscript.Chapter, bool) {
	s.lock()
	defer s.unlock()
	return s.store.Chapter(id)
}

// SelectChapter makes id the active chapter. An unknown id leaves the
// selection unchanged and reports false.
func (s *Session) SelectChapter(id string) (manuscript.Chapter, bool) {
	s.lock()
	defer s.unlock()
	ch, ok := s.store.Chapter(id)
	if ok {
		s.activeID = id
	}
	return ch, ok
}

// UpdateMetadata merges patch into the book metadata. Layout and cover
// style are validated before anything changes.
func (s *Session) UpdateMetadata(patch manuscript.MetadataPatch) error {
	if patch.LayoutPreference != nil {
		if err := patch.LayoutPreference.Validate(); err != nil {
			return err
		}
	}
	if patch.CoverStyle != nil {
		if err := patch.CoverStyle.Validate(); err != nil {
			return err
		}
	}
	if patch.IsEmpty() {
		return nil
	}

	s.lock()
	defer s.unlock()
	s.store.UpdateMetadata(patch)
	return nil
}

func (s *Session) UpdateChapterTitle(id, title string) manuscript.Outcome {
	s.lock()
	defer s.unlock()
	return s.store.UpdateChapterTitle(id, title)
}

func (s *Session) UpdateChapterContent(id, content string) manuscript.Outcome {
	s.lock()
	defer s.unlock()
	return s.store.UpdateChapterContent(id, content)
}

// AddChapter appends a chapter and makes it active.
func (s *Session) AddChapter() manuscript.Chapter {
	s.lock()
	defer s.unlock()
	id := s.store.AddChapter()
	s.activeID = id
	ch, _ := s.store.Chapter(id)
	return ch
}

// Checkpoint records a manual revision of a chapter.
func (s *Session) Checkpoint(chapterID string) (manuscript.Revision, manuscript.Outcome) {
	s.lock()
	defer s.unlock()
	return s.store.Snapshot(chapterID, manuscript.LabelManualSave)
}

func (s *Session) Restore(chapterID, revisionID string) manuscript.Outcome {
	s.lock()
	defer s.unlock()
	return s.store.Restore(chapterID, revisionID)
}

func (s *Session) Revisions(chapterID string) []manuscript.Revision {
	s.lock()
	defer s.unlock()
	return s.store.Revisions(chapterID)
}
