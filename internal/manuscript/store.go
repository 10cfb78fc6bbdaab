package manuscript

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome reports whether a lookup-or-no-op mutation found its target.
type Outcome int

const (
	// Applied means the target existed and the mutation took effect.
	Applied Outcome = iota
	// Missed means the id did not resolve and nothing changed.
	Missed
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "missed"
}

// ErrEmptyStructure is returned when a structure replacement carries no chapters.
var ErrEmptyStructure = errors.New("structure has no chapters")

// ChapterDraft is a chapter supplied by an external structuring action.
type ChapterDraft struct {
	Title   string
	Content string
}

// Store is the single source of truth for a Book. Every mutation goes
// through it so the aggregate invariants hold after each call.
//
// A Store is not safe for concurrent use; callers serialise access.
type Store struct {
	book      Book
	now       func() time.Time
	newID     func() string
	issued    map[string]struct{}
	version   uint64
	listeners []func()
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps and chapter ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the generator for book and revision ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewStore takes ownership of a copy of book. A book without chapters is
// replaced by the template so the store never starts empty.
func NewStore(book Book, opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		newID:  uuid.NewString,
		issued: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(book.Chapters) == 0 {
		book = DefaultBook(s.now())
	}
	s.book = book.Clone()
	for _, ch := range s.book.Chapters {
		s.issued[ch.ID] = struct{}{}
	}
	return s
}

// OnChange registers fn to run after every successful mutation.
func (s *Store) OnChange(fn func()) {
	s.listeners = append(s.listeners, fn)
}

// Version increases by one on every successful mutation.
func (s *Store) Version() uint64 {
	return s.version
}

// Book returns a read-only snapshot of the current state.
func (s *Store) Book() Book {
	return s.book.Clone()
}

// Chapter returns a copy of the chapter with the given id.
func (s *Store) Chapter(id string) (Chapter, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Chapter{}, false
	}
	return s.book.Chapters[idx].clone(), true
}

// ActiveChapter resolves id, falling back to the first chapter in document
// order. The bool reports whether id itself resolved.
func (s *Store) ActiveChapter(id string) (Chapter, bool) {
	if ch, ok := s.Chapter(id); ok {
		return ch, true
	}
	return s.book.Chapters[0].clone(), false
}

// UpdateMetadata shallow-merges patch into the metadata. It always succeeds.
func (s *Store) UpdateMetadata(patch MetadataPatch) {
	patch.apply(&s.book.Metadata)
	s.changed()
}

// UpdateChapterTitle replaces the title of the matching chapter.
func (s *Store) UpdateChapterTitle(id, title string) Outcome {
	idx := s.indexOf(id)
	if idx < 0 {
		return Missed
	}
	s.book.Chapters[idx].Title = title
	s.changed()
	return Applied
}

// UpdateChapterContent replaces the content of the matching chapter.
func (s *Store) UpdateChapterContent(id, content string) Outcome {
	idx := s.indexOf(id)
	if idx < 0 {
		return Missed
	}
	s.book.Chapters[idx].Content = content
	s.changed()
	return Applied
}

// AddChapter appends an empty, auto-numbered chapter and returns its id.
func (s *Store) AddChapter() string {
	id := s.uniqueChapterID(fmt.Sprintf("c%d", s.now().UnixMilli()))
	s.book.Chapters = append(s.book.Chapters, Chapter{
		ID:        id,
		Title:     fmt.Sprintf("Chapter %d", len(s.book.Chapters)+1),
		Revisions: []Revision{},
	})
	s.changed()
	return id
}

// ReplaceStructure swaps in a brand-new chapter set. All prior chapters and
// their revisions are discarded, the book gets a fresh id and every new
// chapter id is disjoint from any id issued before.
func (s *Store) ReplaceStructure(fields MetadataPatch, drafts []ChapterDraft) error {
	if len(drafts) == 0 {
		return ErrEmptyStructure
	}
	now := s.now()
	stamp := now.UnixMilli()
	chapters := make([]Chapter, len(drafts))
	for i, d := range drafts {
		chapters[i] = Chapter{
			ID:        s.uniqueChapterID(fmt.Sprintf("ai-c%d-%d", i, stamp)),
			Title:     d.Title,
			Content:   d.Content,
			Revisions: []Revision{},
		}
	}
	meta := s.book.Metadata.clone()
	fields.apply(&meta)
	s.book = Book{
		ID:        s.newID(),
		Metadata:  meta,
		Chapters:  chapters,
		LastSaved: &now,
	}
	s.changed()
	return nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.book.Chapters {
		if s.book.Chapters[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) uniqueChapterID(base string) string {
	id := base
	for n := 2; ; n++ {
		if _, taken := s.issued[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
	s.issued[id] = struct{}{}
	return id
}

func (s *Store) changed() {
	s.version++
	for _, fn := range s.listeners {
		fn()
	}
}
