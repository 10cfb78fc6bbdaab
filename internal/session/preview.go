package session

import (
	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/pagination"
)

// Preview is the visible spread of the paginated manuscript.
type Preview struct {
	Pages      []pagination.RenderedPage   `json:"pages"`
	Page       int                         `json:"page"`
	PageCount  int                         `json:"pageCount"`
	Sheet      int                         `json:"sheet"`
	SheetCount int                         `json:"sheetCount"`
	Zoom       float64                     `json:"zoom"`
	Layout     manuscript.LayoutPreference `json:"layout"`
}

// Preview paginates the current manuscript and renders the visible spread.
func (s *Session) Preview() Preview {
	s.lock()
	defer s.unlock()
	return s.previewLocked()
}

// NextSpread turns forward one spread. The bool is false at the last spread.
func (s *Session) NextSpread() (Preview, bool) {
	s.lock()
	defer s.unlock()
	l := s.engine.Layout(s.store.Book().Chapters)
	s.nav.Clamp(l.PageCount)
	moved := s.nav.Next(l.PageCount)
	return s.previewLocked(), moved
}

// PrevSpread turns back one spread. The bool is false at the first spread.
func (s *Session) PrevSpread() (Preview, bool) {
	s.lock()
	defer s.unlock()
	moved := s.nav.Prev()
	return s.previewLocked(), moved
}

// SetZoom changes the preview scale, clamped to [0.5, 2].
func (s *Session) SetZoom(zoom float64) Preview {
	s.lock()
	defer s.unlock()
	s.zoom = min(maxZoom, max(minZoom, zoom))
	return s.previewLocked()
}

func (s *Session) previewLocked() Preview {
	book := s.store.Book()
	l := s.engine.Layout(book.Chapters)
	s.nav.Clamp(l.PageCount)
	layout := book.Layout()

	return Preview{
		Pages:      s.renderer.RenderSpread(l, &s.nav, layout, s.zoom),
		Page:       s.nav.Page(),
		PageCount:  l.PageCount,
		Sheet:      s.nav.SheetNumber(),
		SheetCount: l.SheetCount,
		Zoom:       s.zoom,
		Layout:     layout,
	}
}
