package agent

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vampirenirmal/lumina/internal/manuscript"
)

const (
	// MuseMinChars is the shortest chapter text the muse will comment on.
	MuseMinChars = 50

	// MuseMaxWords caps the length of a muse suggestion.
	MuseMaxWords = 20
)

var (
	// ErrNotEnoughText is returned by Muse for chapters too short to judge.
	ErrNotEnoughText = errors.New("not enough text for a suggestion")

	// ErrNoImageClient is returned by CoverImage when images are not configured.
	ErrNoImageClient = errors.New("image generation is not configured")
)

const (
	architectPersona = `You are Elena Voss, a senior narrative architect who has structured dozens of commercially successful novels. You turn loose ideas into clear plots with chapters that each carry one concrete objective.`

	editorPersona = `You are Michael Torres, a veteran fiction editor. You improve prose while keeping the author's voice, and you follow instructions exactly.`

	designerPersona = `You are Ines Calder, a book designer who has set type for literary and genre presses. You choose layouts and covers that suit the genre and read well.`
)

// CoverSuggestion is a proposed cover style plus a prompt for the artwork.
type CoverSuggestion struct {
	Style        manuscript.CoverStyle `json:"style"`
	VisualPrompt string                `json:"visualPrompt"`
}

// Assistant implements the manuscript's AI collaborators on top of an
// AIClient and the prompt templates.
type Assistant struct {
	client  AIClient
	images  ImageClient
	prompts *PromptCache
	logger  *slog.Logger
}

type AssistantOption func(*Assistant)

// WithImages enables cover artwork generation.
func WithImages(images ImageClient) AssistantOption {
	return func(a *Assistant) {
		a.images = images
	}
}

// WithPrompts replaces the built-in prompt templates.
func WithPrompts(prompts *PromptCache) AssistantOption {
	return func(a *Assistant) {
		if prompts != nil {
			a.prompts = prompts
		}
	}
}

func NewAssistant(client AIClient, opts ...AssistantOption) *Assistant {
	a := &Assistant{
		client:  client,
		prompts: NewPromptCache(nil),
		logger:  slog.Default().With("component", "assistant"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Outline turns a free-text idea into a title, a plot summary and a chapter plan.
func (a *Assistant) Outline(ctx context.Context, idea string) (manuscript.Outline, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return manuscript.Outline{}, errors.New("idea is empty")
	}

	var out manuscript.Outline
	if err := a.askJSON(ctx, "outline", architectPersona, "outline.tmpl", map[string]any{"Idea": idea}, &out); err != nil {
		return manuscript.Outline{}, err
	}
	if len(out.Chapters) == 0 {
		return manuscript.Outline{}, fmt.Errorf("outline has no chapters: %w", ErrEmptyResponse)
	}
	return out, nil
}

// Refine rewrites content according to instruction.
func (a *Assistant) Refine(ctx context.Context, content, instruction string) (string, error) {
	out, err := a.ask(ctx, "refine", editorPersona, "refine.tmpl", map[string]any{
		"Content":     content,
		"Instruction": instruction,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Muse returns a short editorial suggestion for content.
func (a *Assistant) Muse(ctx context.Context, content, genre string) (string, error) {
	if utf8.RuneCountInString(strings.TrimSpace(content)) <= MuseMinChars {
		return "", ErrNotEnoughText
	}
	out, err := a.ask(ctx, "muse", editorPersona, "muse.tmpl", map[string]any{
		"Content":  content,
		"Genre":    genre,
		"MaxWords": MuseMaxWords,
	})
	if err != nil {
		return "", err
	}
	words := strings.Fields(out)
	if len(words) > MuseMaxWords {
		words = words[:MuseMaxWords]
	}
	return strings.Join(words, " "), nil
}

// SuggestLayout proposes a layout for a book of the given genre.
func (a *Assistant) SuggestLayout(ctx context.Context, genre, description string) (manuscript.LayoutPreference, error) {
	var layout manuscript.LayoutPreference
	err := a.askJSON(ctx, "layout", designerPersona, "layout.tmpl", map[string]any{
		"Genre":       genre,
		"Description": description,
	}, &layout)
	if err != nil {
		return manuscript.LayoutPreference{}, err
	}
	if layout.FontFamily == "" {
		layout.FontFamily = manuscript.FontSerif
	}
	if err := layout.Validate(); err != nil {
		return manuscript.LayoutPreference{}, fmt.Errorf("suggested layout rejected: %w", err)
	}
	return layout, nil
}

// SuggestCover proposes a cover style and an artwork prompt.
func (a *Assistant) SuggestCover(ctx context.Context, title, genre, description string) (CoverSuggestion, error) {
	var raw struct {
		manuscript.CoverStyle
		VisualPrompt string `json:"visualPrompt"`
	}
	err := a.askJSON(ctx, "cover", designerPersona, "cover.tmpl", map[string]any{
		"Title":       title,
		"Genre":       genre,
		"Description": description,
	}, &raw)
	if err != nil {
		return CoverSuggestion{}, err
	}
	if err := raw.CoverStyle.Validate(); err != nil {
		return CoverSuggestion{}, fmt.Errorf("suggested cover rejected: %w", err)
	}
	return CoverSuggestion{Style: raw.CoverStyle, VisualPrompt: raw.VisualPrompt}, nil
}

// CoverImage generates cover artwork and returns it as a data URL.
func (a *Assistant) CoverImage(ctx context.Context, title, author, style string) (string, error) {
	if a.images == nil {
		return "", ErrNoImageClient
	}
	prompt, err := a.prompts.Render("cover_image.tmpl", map[string]any{
		"Title":  title,
		"Author": author,
		"Style":  style,
	})
	if err != nil {
		return "", err
	}

	start := time.Now()
	img, err := a.images.GenerateImage(ctx, prompt)
	if err != nil {
		a.logger.Error("Cover generation failed", "error", err)
		return "", fmt.Errorf("generating cover: %w", err)
	}
	if len(img) == 0 {
		return "", ErrEmptyResponse
	}
	a.logger.Info("Cover generated", "bytes", len(img), "duration_ms", time.Since(start).Milliseconds())

	return "data:" + http.DetectContentType(img) + ";base64," + base64.StdEncoding.EncodeToString(img), nil
}

func (a *Assistant) ask(ctx context.Context, operation, system, tmpl string, data any) (string, error) {
	prompt, err := a.prompts.Render(tmpl, data)
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := a.client.CompleteWithSystem(ctx, system, prompt)
	if err != nil {
		a.logger.Error("AI request failed", "operation", operation, "error", err)
		return "", fmt.Errorf("%s: %w", operation, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%s: %w", operation, ErrEmptyResponse)
	}
	a.logger.Info("AI request completed",
		"operation", operation,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_length", len(out))
	return out, nil
}

func (a *Assistant) askJSON(ctx context.Context, operation, system, tmpl string, data, v any) error {
	prompt, err := a.prompts.Render(tmpl, data)
	if err != nil {
		return err
	}

	start := time.Now()
	out, err := a.client.CompleteJSONWithSystem(ctx, system, prompt)
	if err != nil {
		a.logger.Error("AI request failed", "operation", operation, "error", err)
		return fmt.Errorf("%s: %w", operation, err)
	}
	if err := decodeJSON(out, v); err != nil {
		a.logger.Warn("AI response was not usable JSON", "operation", operation, "error", err)
		return fmt.Errorf("%s: %w", operation, err)
	}
	a.logger.Info("AI request completed",
		"operation", operation,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_length", len(out))
	return nil
}
