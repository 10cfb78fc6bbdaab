package manuscript

import (
	"time"
)

// FontFamily selects the body typeface family for the preview.
type FontFamily string

const (
	FontSerif FontFamily = "serif"
	FontSans  FontFamily = "sans"
)

// Typography is the cover title typeface.
type Typography string

const (
	TypographySerif  Typography = "serif"
	TypographySans   Typography = "sans"
	TypographyScript Typography = "script"
)

// CoverFilter names a visual filter applied to the cover artwork.
type CoverFilter string

const (
	FilterNone         CoverFilter = "none"
	FilterSepia        CoverFilter = "sepia"
	FilterVintage      CoverFilter = "vintage"
	FilterNoir         CoverFilter = "noir"
	FilterWarm         CoverFilter = "warm"
	FilterCold         CoverFilter = "cold"
	FilterHighContrast CoverFilter = "high-contrast"
	FilterDreamy       CoverFilter = "dreamy"
)

// LayoutPreference holds the typographic parameters of the preview.
// It only affects presentation, never where pages break.
type LayoutPreference struct {
	PaperSize  string     `json:"paperSize" validate:"required"`
	FontScale  float64    `json:"fontScale" validate:"gt=0"`
	Margins    string     `json:"margins" validate:"required,percent"`
	Columns    int        `json:"columns" validate:"oneof=1 2"`
	LineHeight float64    `json:"lineHeight" validate:"gt=0"`
	StyleName  string     `json:"styleName"`
	FontFamily FontFamily `json:"fontFamily" validate:"omitempty,oneof=serif sans"`
}

// CoverStyle is presentational cover configuration. It is stored and
// validated here and consumed by the rendering layer.
type CoverStyle struct {
	Typography     Typography  `json:"typography" validate:"oneof=serif sans script"`
	Filter         CoverFilter `json:"filter" validate:"oneof=none sepia vintage noir warm cold high-contrast dreamy"`
	OverlayOpacity float64     `json:"overlayOpacity" validate:"gte=0,lte=0.8"`
}

// Metadata describes the book as a publication.
type Metadata struct {
	Title            string            `json:"title"`
	Author           string            `json:"author"`
	Publisher        string            `json:"publisher"`
	ISBN             string            `json:"isbn"`
	Genre            string            `json:"genre"`
	Series           string            `json:"series,omitempty"`
	SeriesIndex      int               `json:"seriesIndex,omitempty"`
	Language         string            `json:"language"`
	Description      string            `json:"description"`
	Tags             []string          `json:"tags"`
	CoverURL         string            `json:"coverUrl,omitempty"`
	CoverStyle       *CoverStyle       `json:"coverStyle,omitempty"`
	CopyrightHolder  string            `json:"copyrightHolder"`
	CopyrightYear    string            `json:"copyrightYear"`
	License          string            `json:"license"`
	LegalNotice      string            `json:"legalNotice"`
	LayoutPreference *LayoutPreference `json:"layoutPreference,omitempty"`
}

// Revision is a write-once snapshot of a chapter's content.
type Revision struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
	Label     string    `json:"label"`
}

// DisplayTime formats the revision timestamp for the history panel.
func (r Revision) DisplayTime() string {
	return r.Timestamp.Local().Format("Jan 2, 2006 15:04:05")
}

// Chapter is a titled unit of manuscript text with its own history.
// Revisions are ordered most recent first.
type Chapter struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Revisions []Revision `json:"revisions"`
}

// Book is the manuscript aggregate.
type Book struct {
	ID        string     `json:"id"`
	Metadata  Metadata   `json:"metadata"`
	Chapters  []Chapter  `json:"chapters"`
	LastSaved *time.Time `json:"lastSaved,omitempty"`
}

// Layout returns the book's layout preference, or the default when unset.
func (b Book) Layout() LayoutPreference {
	if b.Metadata.LayoutPreference != nil {
		return *b.Metadata.LayoutPreference
	}
	return DefaultLayout()
}

// Clone returns a deep copy that shares no mutable state with b.
func (b Book) Clone() Book {
	out := b
	out.Metadata = b.Metadata.clone()
	if b.LastSaved != nil {
		t := *b.LastSaved
		out.LastSaved = &t
	}
	out.Chapters = make([]Chapter, len(b.Chapters))
	for i, ch := range b.Chapters {
		out.Chapters[i] = ch.clone()
	}
	return out
}

func (c Chapter) clone() Chapter {
	out := c
	out.Revisions = append([]Revision(nil), c.Revisions...)
	if out.Revisions == nil {
		out.Revisions = []Revision{}
	}
	return out
}

func (m Metadata) clone() Metadata {
	out := m
	out.Tags = append([]string(nil), m.Tags...)
	if m.CoverStyle != nil {
		cs := *m.CoverStyle
		out.CoverStyle = &cs
	}
	if m.LayoutPreference != nil {
		lp := *m.LayoutPreference
		out.LayoutPreference = &lp
	}
	return out
}

// DefaultLayout is the preview layout used until the author picks one.
func DefaultLayout() LayoutPreference {
	return LayoutPreference{
		PaperSize:  "A5 paper (148 x 210 mm)",
		FontScale:  1,
		Margins:    "12%",
		Columns:    1,
		LineHeight: 1.6,
		StyleName:  "Standard",
		FontFamily: FontSerif,
	}
}

// DefaultCoverStyle is the cover configuration of a fresh book.
func DefaultCoverStyle() CoverStyle {
	return CoverStyle{
		Typography:     TypographySerif,
		Filter:         FilterNone,
		OverlayOpacity: 0.4,
	}
}

// TemplateChapterID is the id of the single chapter in the template book.
const TemplateChapterID = "c1"

// DefaultBook returns the fixed template a session starts from when no
// persisted book is available.
func DefaultBook(now time.Time) Book {
	layout := DefaultLayout()
	cover := DefaultCoverStyle()
	return Book{
		ID: "1",
		Metadata: Metadata{
			Title:            "New Book Project",
			Author:           "Unknown Author",
			Publisher:        "Lumina Press",
			ISBN:             "Pending",
			Genre:            "Fiction",
			Language:         "English",
			Description:      "A new adventure waiting to be written...",
			Tags:             []string{"draft"},
			CopyrightYear:    now.Format("2006"),
			License:          "All rights reserved",
			CoverStyle:       &cover,
			LayoutPreference: &layout,
		},
		Chapters: []Chapter{
			{ID: TemplateChapterID, Title: "Chapter 1: The Beginning", Content: "", Revisions: []Revision{}},
		},
	}
}
