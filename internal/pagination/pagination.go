// Package pagination reflows a manuscript into fixed-size preview pages
// browsed two at a time.
//
// Page boundaries depend on content alone. A boundary may fall in the
// middle of a word or a tag; pages are an approximation of print, not a
// typesetting result.
package pagination

import (
	"strings"
	"unicode/utf8"

	"github.com/vampirenirmal/lumina/internal/manuscript"
)

const (
	// ChunkSize is the number of characters on one preview page.
	ChunkSize = 1400

	// SpreadSize is the number of pages visible side by side.
	SpreadSize = 2

	// PlaceholderPage is the single page shown for a book with no content.
	PlaceholderPage = "No content yet..."
)

const (
	headingOpen   = `<h1 class="chapter-title">`
	headingClose  = `</h1>`
	paragraphOpen = `<p class="chapter-body">`
	paragraphEnd  = `</p>`
)

// Layout is the result of paginating a book.
type Layout struct {
	Pages      []string `json:"pages"`
	PageCount  int      `json:"pageCount"`
	SheetCount int      `json:"sheetCount"`
}

// Compose concatenates chapters in document order into a single markup
// stream: a heading per chapter followed by its body, with one paragraph
// per source line.
func Compose(chapters []manuscript.Chapter) string {
	var b strings.Builder
	for _, ch := range chapters {
		b.WriteString(headingOpen)
		b.WriteString(ch.Title)
		b.WriteString(headingClose)
		b.WriteString(paragraphOpen)
		b.WriteString(strings.ReplaceAll(ch.Content, "\n", paragraphEnd+paragraphOpen))
		b.WriteString(paragraphEnd)
	}
	return b.String()
}

// Split cuts stream into consecutive chunks of at most size characters.
// An empty stream yields exactly one placeholder page.
func Split(stream string, size int) []string {
	if stream == "" {
		return []string{PlaceholderPage}
	}
	if size <= 0 {
		size = ChunkSize
	}

	pages := make([]string, 0, utf8.RuneCountInString(stream)/size+1)
	start, n := 0, 0
	for i := range stream {
		if n == size {
			pages = append(pages, stream[start:i])
			start, n = i, 0
		}
		n++
	}
	return append(pages, stream[start:])
}

// Paginate composes and splits the chapters of book.
func Paginate(book manuscript.Book) Layout {
	return layoutOf(Split(Compose(book.Chapters), ChunkSize))
}

func layoutOf(pages []string) Layout {
	return Layout{
		Pages:      pages,
		PageCount:  len(pages),
		SheetCount: (len(pages) + SpreadSize - 1) / SpreadSize,
	}
}
