// Package export encodes a manuscript snapshot into publishable files.
package export

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vampirenirmal/lumina/internal/manuscript"
)

// ErrUnknownFormat is returned for a format no encoder is registered for.
var ErrUnknownFormat = errors.New("unknown export format")

// Artifact is one encoded file.
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// Encoder turns a read-only book snapshot into a file.
type Encoder interface {
	Format() string
	Encode(ctx context.Context, book manuscript.Book) (Artifact, error)
}

// Registry looks encoders up by format name.
type Registry struct {
	encoders map[string]Encoder
}

func NewRegistry(encoders ...Encoder) *Registry {
	r := &Registry{encoders: make(map[string]Encoder, len(encoders))}
	for _, e := range encoders {
		r.encoders[e.Format()] = e
	}
	return r
}

// DefaultRegistry holds every built-in encoder.
func DefaultRegistry() *Registry {
	return NewRegistry(NewEPUB(), Markdown{}, Scribus{}, Calibre{})
}

func (r *Registry) Get(format string) (Encoder, error) {
	e, ok := r.encoders[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return e, nil
}

// Formats returns the registered format names in sorted order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Export(ctx context.Context, format string, book manuscript.Book) (Artifact, error) {
	e, err := r.Get(format)
	if err != nil {
		return Artifact{}, err
	}
	a, err := e.Encode(ctx, book)
	if err != nil {
		return Artifact{}, fmt.Errorf("export %s: %w", e.Format(), err)
	}
	return a, nil
}

// ExportAll runs every encoder concurrently over the same snapshot. The
// artifacts come back in Formats order; the first failure cancels the rest.
func (r *Registry) ExportAll(ctx context.Context, book manuscript.Book) ([]Artifact, error) {
	formats := r.Formats()
	out := make([]Artifact, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			a, err := r.Export(gctx, format, book)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// FileName derives a download name from a book title.
func FileName(title, ext string) string {
	base := whitespace.ReplaceAllString(strings.TrimSpace(title), "_")
	if base == "" {
		base = "untitled"
	}
	return base + "." + ext
}

func paragraphs(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
