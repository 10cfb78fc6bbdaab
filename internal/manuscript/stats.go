package manuscript

import (
	"strings"
	"unicode/utf8"
)

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ChapterStats summarises one chapter for the sidebar.
type ChapterStats struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Words     int    `json:"words"`
	Chars     int    `json:"chars"`
	Revisions int    `json:"revisions"`
}

// Stats summarises the whole manuscript.
type Stats struct {
	Chapters []ChapterStats `json:"chapters"`
	Words    int            `json:"words"`
	Chars    int            `json:"chars"`
}

// Stats computes word and character totals per chapter and overall.
func (b Book) Stats() Stats {
	st := Stats{Chapters: make([]ChapterStats, 0, len(b.Chapters))}
	for _, ch := range b.Chapters {
		cs := ChapterStats{
			ID:        ch.ID,
			Title:     ch.Title,
			Words:     WordCount(ch.Content),
			Chars:     utf8.RuneCountInString(ch.Content),
			Revisions: len(ch.Revisions),
		}
		st.Words += cs.Words
		st.Chars += cs.Chars
		st.Chapters = append(st.Chapters, cs)
	}
	return st
}
