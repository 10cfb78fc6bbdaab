package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/vampirenirmal/lumina/internal/manuscript"
)

// Markdown writes the manuscript as a single Markdown document.
type Markdown struct{}

func (Markdown) Format() string { return "markdown" }

func (Markdown) Encode(ctx context.Context, book manuscript.Book) (Artifact, error) {
	md := book.Metadata
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", md.Title)
	if md.Author != "" {
		fmt.Fprintf(&b, "*%s*\n\n", md.Author)
	}
	if md.Description != "" {
		fmt.Fprintf(&b, "> %s\n\n", md.Description)
	}
	if md.CopyrightYear != "" || md.CopyrightHolder != "" {
		fmt.Fprintf(&b, "Copyright %s %s. %s\n\n", md.CopyrightYear, md.CopyrightHolder, md.License)
	}

	for _, ch := range book.Chapters {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		fmt.Fprintf(&b, "## %s\n\n", ch.Title)
		for _, p := range paragraphs(ch.Content) {
			b.WriteString(p)
			b.WriteString("\n\n")
		}
	}

	return Artifact{
		Name:        FileName(md.Title, "md"),
		ContentType: "text/markdown; charset=utf-8",
		Data:        []byte(b.String()),
	}, nil
}
