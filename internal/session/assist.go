package session

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/vampirenirmal/lumina/internal/agent"
	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/pagination"
)

func (s *Session) notice(op, message string, err error) error {
	s.logger.Warn("Collaborator failed", "op", op, "error", err)
	return &Notice{Op: op, Message: message, Err: err}
}

// ApplyOutline asks the assistant to structure idea into a book and, on
// success, replaces the whole manuscript with the result. On failure the
// manuscript is untouched.
func (s *Session) ApplyOutline(ctx context.Context, idea string) (manuscript.Book, error) {
	if s.assistant == nil {
		return manuscript.Book{}, s.notice("outline", "AI features are unavailable", ErrNoAssistant)
	}

	outline, err := s.assistant.Outline(ctx, idea)
	if err != nil {
		return manuscript.Book{}, s.notice("outline", "Could not build a structure from that idea", err)
	}

	s.lock()
	defer s.unlock()
	if err := s.store.ApplyOutline(outline); err != nil {
		return manuscript.Book{}, s.notice("outline", "The proposed structure had no chapters", err)
	}
	book := s.store.Book()
	s.activeID = book.Chapters[0].ID
	s.nav = pagination.Navigator{}

	s.logger.Info("Applied outline", "book_id", book.ID, "chapters", len(book.Chapters))
	return book, nil
}

// Refine checkpoints the chapter, then replaces its content with the
// assistant's rewrite under instruction. An empty rewrite changes nothing.
// The checkpoint is kept even when the assistant fails.
func (s *Session) Refine(ctx context.Context, chapterID, instruction string) (manuscript.Outcome, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return manuscript.Missed, ErrEmptyInstruction
	}
	if s.assistant == nil {
		return manuscript.Missed, s.notice("refine", "AI features are unavailable", ErrNoAssistant)
	}

	s.lock()
	if _, outcome := s.store.Snapshot(chapterID, manuscript.BeforeInstructionLabel(instruction)); outcome == manuscript.Missed {
		s.unlock()
		return manuscript.Missed, nil
	}
	ch, _ := s.store.Chapter(chapterID)
	s.unlock()

	refined, err := s.assistant.Refine(ctx, ch.Content, instruction)
	if err != nil {
		return manuscript.Missed, s.notice("refine", "The instruction could not be applied", err)
	}
	if refined == "" {
		return manuscript.Missed, nil
	}

	s.lock()
	defer s.unlock()
	return s.store.UpdateChapterContent(chapterID, refined), nil
}

// Muse returns a short editorial nudge for a chapter. Chapters of
// agent.MuseMinChars characters or fewer get no suggestion.
func (s *Session) Muse(ctx context.Context, chapterID string) (string, error) {
	if s.assistant == nil {
		return "", s.notice("muse", "AI features are unavailable", ErrNoAssistant)
	}

	s.lock()
	ch, _ := s.store.ActiveChapter(chapterID)
	genre := s.store.Book().Metadata.Genre
	s.unlock()

	if utf8.RuneCountInString(ch.Content) <= agent.MuseMinChars {
		return "", nil
	}
	suggestion, err := s.assistant.Muse(ctx, ch.Content, genre)
	if errors.Is(err, agent.ErrNotEnoughText) {
		return "", nil
	}
	if err != nil {
		return "", s.notice("muse", "The muse is silent right now", err)
	}
	return suggestion, nil
}

// SuggestLayout asks for a layout suited to the book's genre and applies it.
func (s *Session) SuggestLayout(ctx context.Context) (manuscript.LayoutPreference, error) {
	if s.assistant == nil {
		return manuscript.LayoutPreference{}, s.notice("layout", "AI features are unavailable", ErrNoAssistant)
	}
	md := s.snapshot().Metadata

	layout, err := s.assistant.SuggestLayout(ctx, md.Genre, md.Description)
	if err == nil {
		err = layout.Validate()
	}
	if err != nil {
		return manuscript.LayoutPreference{}, s.notice("layout", "No layout suggestion is available", err)
	}

	s.lock()
	defer s.unlock()
	s.store.UpdateMetadata(manuscript.MetadataPatch{LayoutPreference: &layout})
	return layout, nil
}

// SuggestCover asks for a cover style and applies it. The visual prompt
// is returned for a later GenerateCover call.
func (s *Session) SuggestCover(ctx context.Context) (agent.CoverSuggestion, error) {
	if s.assistant == nil {
		return agent.CoverSuggestion{}, s.notice("cover", "AI features are unavailable", ErrNoAssistant)
	}
	md := s.snapshot().Metadata

	suggestion, err := s.assistant.SuggestCover(ctx, md.Title, md.Genre, md.Description)
	if err == nil {
		err = suggestion.Style.Validate()
	}
	if err != nil {
		return agent.CoverSuggestion{}, s.notice("cover", "No cover suggestion is available", err)
	}

	s.lock()
	defer s.unlock()
	style := suggestion.Style
	s.store.UpdateMetadata(manuscript.MetadataPatch{CoverStyle: &style})
	return suggestion, nil
}

// GenerateCover produces cover artwork in the given visual style and sets
// it as the cover. An empty style falls back to the genre.
func (s *Session) GenerateCover(ctx context.Context, style string) (string, error) {
	if s.assistant == nil {
		return "", s.notice("cover_image", "AI features are unavailable", ErrNoAssistant)
	}
	md := s.snapshot().Metadata
	if strings.TrimSpace(style) == "" {
		style = md.Genre
	}

	url, err := s.assistant.CoverImage(ctx, md.Title, md.Author, style)
	if err != nil {
		return "", s.notice("cover_image", "The cover could not be generated", err)
	}

	s.lock()
	defer s.unlock()
	s.store.UpdateMetadata(manuscript.MetadataPatch{CoverURL: &url})
	return url, nil
}
