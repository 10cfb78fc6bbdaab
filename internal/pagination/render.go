package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/vampirenirmal/lumina/internal/manuscript"
)

const (
	basePageWidth  = 480
	basePageHeight = 680
	baseFontSize   = 13
)

// RenderedPage is a page ready for display. Rendering never changes which
// characters are on a page.
type RenderedPage struct {
	Index  int    `json:"index"`
	HTML   string `json:"html"`
	Text   string `json:"text"`
	Style  string `json:"style"`
	Footer string `json:"footer"`
}

// Renderer turns raw page chunks into sanitised, styled pages.
type Renderer struct {
	htmlPolicy      *bluemonday.Policy
	stripTagsPolicy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	htmlPolicy := bluemonday.UGCPolicy()
	htmlPolicy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "p")
	return &Renderer{
		htmlPolicy:      htmlPolicy,
		stripTagsPolicy: bluemonday.StripTagsPolicy(),
	}
}

// Render presents page index of a book under layout at the given zoom.
// A zoom of zero or less means 1.
func (r *Renderer) Render(page string, index int, layout manuscript.LayoutPreference, zoom float64) RenderedPage {
	if zoom <= 0 {
		zoom = 1
	}
	return RenderedPage{
		Index:  index,
		HTML:   r.htmlPolicy.Sanitize(page),
		Text:   strings.TrimSpace(r.stripTagsPolicy.Sanitize(page)),
		Style:  Style(layout, zoom),
		Footer: fmt.Sprintf("Page %d", index+1),
	}
}

// RenderSpread renders the pages visible from nav.
func (r *Renderer) RenderSpread(l Layout, nav *Navigator, layout manuscript.LayoutPreference, zoom float64) []RenderedPage {
	idx := nav.Spread(l.PageCount)
	out := make([]RenderedPage, 0, len(idx))
	for _, i := range idx {
		out = append(out, r.Render(l.Pages[i], i, layout, zoom))
	}
	return out
}

// Style returns the inline CSS of a page box for layout.
func Style(layout manuscript.LayoutPreference, zoom float64) string {
	family := `"Lora", serif`
	if layout.FontFamily == manuscript.FontSans {
		family = `"Inter", sans-serif`
	}
	columns := layout.Columns
	if columns < 1 {
		columns = 1
	}

	decls := []string{
		"width: " + px(basePageWidth*zoom),
		"height: " + px(basePageHeight*zoom),
		"font-size: " + px(baseFontSize*zoom*layout.FontScale),
		"padding: " + layout.Margins,
		"line-height: " + num(layout.LineHeight),
		"column-count: " + strconv.Itoa(columns),
		"font-family: " + family,
	}
	return strings.Join(decls, "; ")
}

func px(v float64) string {
	return num(v) + "px"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
