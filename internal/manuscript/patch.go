package manuscript

// MetadataPatch is a shallow partial update of Metadata. Nil fields are
// left untouched; non-nil fields replace the current value wholesale.
type MetadataPatch struct {
	Title            *string           `json:"title,omitempty"`
	Author           *string           `json:"author,omitempty"`
	Publisher        *string           `json:"publisher,omitempty"`
	ISBN             *string           `json:"isbn,omitempty"`
	Genre            *string           `json:"genre,omitempty"`
	Series           *string           `json:"series,omitempty"`
	SeriesIndex      *int              `json:"seriesIndex,omitempty"`
	Language         *string           `json:"language,omitempty"`
	Description      *string           `json:"description,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	CoverURL         *string           `json:"coverUrl,omitempty"`
	CoverStyle       *CoverStyle       `json:"coverStyle,omitempty"`
	CopyrightHolder  *string           `json:"copyrightHolder,omitempty"`
	CopyrightYear    *string           `json:"copyrightYear,omitempty"`
	License          *string           `json:"license,omitempty"`
	LegalNotice      *string           `json:"legalNotice,omitempty"`
	LayoutPreference *LayoutPreference `json:"layoutPreference,omitempty"`
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}

// IsEmpty reports whether the patch would change nothing.
func (p MetadataPatch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Publisher == nil && p.ISBN == nil &&
		p.Genre == nil && p.Series == nil && p.SeriesIndex == nil && p.Language == nil &&
		p.Description == nil && p.Tags == nil && p.CoverURL == nil && p.CoverStyle == nil &&
		p.CopyrightHolder == nil && p.CopyrightYear == nil && p.License == nil &&
		p.LegalNotice == nil && p.LayoutPreference == nil
}

func (p MetadataPatch) apply(m *Metadata) {
	setString(&m.Title, p.Title)
	setString(&m.Author, p.Author)
	setString(&m.Publisher, p.Publisher)
	setString(&m.ISBN, p.ISBN)
	setString(&m.Genre, p.Genre)
	setString(&m.Series, p.Series)
	if p.SeriesIndex != nil {
		m.SeriesIndex = *p.SeriesIndex
	}
	setString(&m.Language, p.Language)
	setString(&m.Description, p.Description)
	if p.Tags != nil {
		m.Tags = dedupeTags(p.Tags)
	}
	setString(&m.CoverURL, p.CoverURL)
	if p.CoverStyle != nil {
		cs := *p.CoverStyle
		m.CoverStyle = &cs
	}
	setString(&m.CopyrightHolder, p.CopyrightHolder)
	setString(&m.CopyrightYear, p.CopyrightYear)
	setString(&m.License, p.License)
	setString(&m.LegalNotice, p.LegalNotice)
	if p.LayoutPreference != nil {
		lp := *p.LayoutPreference
		m.LayoutPreference = &lp
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// dedupeTags keeps the first occurrence of every tag, preserving order.
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
