package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	epub "github.com/go-shiori/go-epub"

	"github.com/vampirenirmal/lumina/internal/manuscript"
)

const pendingISBN = "Pending"

var languageCodes = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"español":    "es",
	"french":     "fr",
	"français":   "fr",
	"german":     "de",
	"deutsch":    "de",
	"italian":    "it",
	"portuguese": "pt",
	"português":  "pt",
}

// EPUB builds an EPUB 3 package with one section per chapter.
type EPUB struct {
	logger *slog.Logger
}

func NewEPUB() *EPUB {
	return &EPUB{logger: slog.Default().With("component", "epub_encoder")}
}

func (*EPUB) Format() string { return "epub" }

func (e *EPUB) Encode(ctx context.Context, book manuscript.Book) (Artifact, error) {
	md := book.Metadata
	title := md.Title
	if title == "" {
		title = "Untitled"
	}

	doc, err := epub.NewEpub(title)
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to create epub: %w", err)
	}
	doc.SetAuthor(md.Author)
	doc.SetLang(languageCode(md.Language))
	if md.Description != "" {
		doc.SetDescription(md.Description)
	}
	if md.ISBN != "" && md.ISBN != pendingISBN {
		doc.SetIdentifier("urn:isbn:" + md.ISBN)
	}

	if md.CoverURL != "" {
		if imgPath, err := doc.AddImage(md.CoverURL, "cover"); err != nil {
			e.logger.Warn("failed to embed cover image", "error", err)
		} else if _, err := doc.AddSection(fmt.Sprintf(`<img src="%s" alt="%s"/>`, imgPath, html.EscapeString(title)), "Cover", "cover.xhtml", ""); err != nil {
			return Artifact{}, fmt.Errorf("failed to add cover section: %w", err)
		}
	}

	for i, ch := range book.Chapters {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		filename := fmt.Sprintf("chapter-%03d.xhtml", i+1)
		if _, err := doc.AddSection(chapterXHTML(ch), ch.Title, filename, ""); err != nil {
			return Artifact{}, fmt.Errorf("failed to add chapter %q: %w", ch.ID, err)
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return Artifact{}, fmt.Errorf("failed to write epub: %w", err)
	}

	e.logger.Debug("encoded epub",
		"title", title,
		"chapters", len(book.Chapters),
		"size", buf.Len())

	return Artifact{
		Name:        FileName(md.Title, "epub"),
		ContentType: "application/epub+zip",
		Data:        buf.Bytes(),
	}, nil
}

func chapterXHTML(ch manuscript.Chapter) string {
	var b strings.Builder
	b.WriteString("<h1>")
	b.WriteString(html.EscapeString(ch.Title))
	b.WriteString("</h1>\n")
	for _, p := range paragraphs(ch.Content) {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>\n")
	}
	return b.String()
}

func languageCode(language string) string {
	l := strings.ToLower(strings.TrimSpace(language))
	if code, ok := languageCodes[l]; ok {
		return code
	}
	if len(l) == 2 || (len(l) == 5 && l[2] == '-') {
		return l
	}
	return "en"
}
