package manuscript

import "fmt"

// Outline is the structure proposed by an outline generator.
type Outline struct {
	Title       string           `json:"title"`
	PlotSummary string           `json:"plotSummary"`
	Chapters    []OutlineChapter `json:"chapters"`
}

// OutlineChapter is one proposed chapter and what it should achieve.
type OutlineChapter struct {
	Title     string `json:"title"`
	Objective string `json:"objective"`
}

// ApplyOutline replaces the book structure with the outline, seeding each
// chapter body with its objective.
func (s *Store) ApplyOutline(o Outline) error {
	drafts := make([]ChapterDraft, len(o.Chapters))
	for i, ch := range o.Chapters {
		drafts[i] = ChapterDraft{
			Title:   ch.Title,
			Content: fmt.Sprintf("[Objective: %s]\n\n", ch.Objective),
		}
	}
	return s.ReplaceStructure(MetadataPatch{
		Title:       Ptr(o.Title),
		Description: Ptr(o.PlotSummary),
	}, drafts)
}
