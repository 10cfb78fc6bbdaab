package manuscript

import (
	"testing"
)

func TestLayoutPreferenceValidate(t *testing.T) {
	base := DefaultLayout()
	tests := []struct {
		name    string
		mutate  func(*LayoutPreference)
		wantErr bool
	}{
		{"default", func(*LayoutPreference) {}, false},
		{"two columns", func(l *LayoutPreference) { l.Columns = 2 }, false},
		{"css shorthand margins", func(l *LayoutPreference) { l.Margins = "15% 10%" }, false},
		{"three columns", func(l *LayoutPreference) { l.Columns = 3 }, true},
		{"zero font scale", func(l *LayoutPreference) { l.FontScale = 0 }, true},
		{"negative line height", func(l *LayoutPreference) { l.LineHeight = -1 }, true},
		{"margins in pixels", func(l *LayoutPreference) { l.Margins = "12px" }, true},
		{"unknown family", func(l *LayoutPreference) { l.FontFamily = "mono" }, true},
		{"empty family", func(l *LayoutPreference) { l.FontFamily = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base
			tt.mutate(&l)
			err := l.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCoverStyleValidate(t *testing.T) {
	tests := []struct {
		name    string
		style   CoverStyle
		wantErr bool
	}{
		{"default", DefaultCoverStyle(), false},
		{"max opacity", CoverStyle{Typography: TypographyScript, Filter: FilterDreamy, OverlayOpacity: 0.8}, false},
		{"opacity too high", CoverStyle{Typography: TypographySans, Filter: FilterNoir, OverlayOpacity: 0.9}, true},
		{"unknown filter", CoverStyle{Typography: TypographySans, Filter: "glow", OverlayOpacity: 0.2}, true},
		{"unknown typography", CoverStyle{Typography: "gothic", Filter: FilterNone}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.style.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookValidate(t *testing.T) {
	dup := DefaultBook(fixedNow)
	dup.Chapters = append(dup.Chapters, Chapter{ID: TemplateChapterID})

	tooMany := DefaultBook(fixedNow)
	tooMany.Chapters[0].Revisions = make([]Revision, LedgerCapacity+1)

	tests := []struct {
		name    string
		book    Book
		wantErr bool
	}{
		{"template", DefaultBook(fixedNow), false},
		{"no chapters", Book{ID: "x"}, true},
		{"duplicate ids", dup, true},
		{"ledger over capacity", tooMany, true},
		{"missing id", Book{ID: "x", Chapters: []Chapter{{Title: "t"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.book.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
