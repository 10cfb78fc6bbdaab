package manuscript

import "fmt"

// LedgerCapacity bounds the number of revisions kept per chapter.
const LedgerCapacity = 15

// LabelManualSave is the label of an author-requested checkpoint.
const LabelManualSave = "manual save"

// BeforeInstructionLabel labels the checkpoint taken ahead of an
// externally refined rewrite.
func BeforeInstructionLabel(instruction string) string {
	return fmt.Sprintf("before AI instruction: %s", instruction)
}

// Snapshot records the chapter's current content as a new revision at the
// front of its ledger, dropping the oldest entries beyond capacity.
func (s *Store) Snapshot(chapterID, label string) (Revision, Outcome) {
	idx := s.indexOf(chapterID)
	if idx < 0 {
		return Revision{}, Missed
	}
	ch := &s.book.Chapters[idx]
	rev := Revision{
		ID:        s.newID(),
		Timestamp: s.now(),
		Content:   ch.Content,
		Label:     label,
	}
	revisions := make([]Revision, 0, min(len(ch.Revisions)+1, LedgerCapacity))
	revisions = append(revisions, rev)
	revisions = append(revisions, ch.Revisions...)
	if len(revisions) > LedgerCapacity {
		revisions = revisions[:LedgerCapacity]
	}
	ch.Revisions = revisions
	s.changed()
	return rev, Applied
}

// Restore overwrites the chapter content with the stored content of the
// revision. The ledger itself is left exactly as it was, and no revision is
// recorded for the content being replaced.
func (s *Store) Restore(chapterID, revisionID string) Outcome {
	idx := s.indexOf(chapterID)
	if idx < 0 {
		return Missed
	}
	for _, rev := range s.book.Chapters[idx].Revisions {
		if rev.ID == revisionID {
			return s.UpdateChapterContent(chapterID, rev.Content)
		}
	}
	return Missed
}

// Revisions returns a copy of the chapter's ledger, most recent first.
func (s *Store) Revisions(chapterID string) []Revision {
	idx := s.indexOf(chapterID)
	if idx < 0 {
		return nil
	}
	return append([]Revision(nil), s.book.Chapters[idx].Revisions...)
}
