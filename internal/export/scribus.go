package export

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/pagination"
)

const (
	scribusVersion = "1.5.0"
	slaTextFrame   = 4
	slaPageGap     = 40.0
	pointsPerInch  = 72.0
	mmPerInch      = 25.4
	defaultMargin  = 12.0
)

// Scribus writes a Scribus document with one page and one text frame per
// preview page, sized after the book's paper size, for handing the
// manuscript to a desktop layout tool.
type Scribus struct{}

type slaFile struct {
	XMLName  xml.Name    `xml:"SCRIBUSUTF8NEW"`
	Version  string      `xml:"Version,attr"`
	Document slaDocument `xml:"DOCUMENT"`
}

type slaDocument struct {
	PageCount  int             `xml:"ANZPAGES,attr"`
	PageWidth  float64         `xml:"PAGEWIDTH,attr"`
	PageHeight float64         `xml:"PAGEHEIGHT,attr"`
	PageSize   string          `xml:"PAGESIZE,attr"`
	Title      string          `xml:"TITLE,attr"`
	Author     string          `xml:"AUTHOR,attr"`
	Comments   string          `xml:"COMMENTS,attr"`
	Keywords   string          `xml:"KEYWORDS,attr"`
	Publisher  string          `xml:"PUBLISHER,attr"`
	Rights     string          `xml:"DOCRIGHTS,attr"`
	Language   string          `xml:"LANGUAGE,attr"`
	Pages      []slaPage       `xml:"PAGE"`
	Objects    []slaPageObject `xml:"PAGEOBJECT"`
}

type slaPage struct {
	Num    int     `xml:"NUM,attr"`
	XPos   float64 `xml:"PAGEXPOS,attr"`
	YPos   float64 `xml:"PAGEYPOS,attr"`
	Width  float64 `xml:"PAGEWIDTH,attr"`
	Height float64 `xml:"PAGEHEIGHT,attr"`
}

type slaPageObject struct {
	PageType int          `xml:"PTYPE,attr"`
	OwnPage  int          `xml:"OwnPage,attr"`
	Name     string       `xml:"ANNAME,attr"`
	XPos     float64      `xml:"XPOS,attr"`
	YPos     float64      `xml:"YPOS,attr"`
	Width    float64      `xml:"WIDTH,attr"`
	Height   float64      `xml:"HEIGHT,attr"`
	Story    slaStoryText `xml:"StoryText"`
}

type slaStoryText struct {
	Items []slaStoryItem
}

type slaStoryItem struct {
	XMLName xml.Name
	Text    string `xml:"CH,attr,omitempty"`
}

func (Scribus) Format() string { return "scribus" }

func (Scribus) Encode(ctx context.Context, book manuscript.Book) (Artifact, error) {
	md := book.Metadata
	layout := book.Layout()
	paper := paperFor(layout.PaperSize)
	pages := pagination.Paginate(book)

	doc := slaFile{
		Version: scribusVersion,
		Document: slaDocument{
			PageCount:  pages.PageCount,
			PageWidth:  paper.width,
			PageHeight: paper.height,
			PageSize:   paper.name,
			Title:      md.Title,
			Author:     md.Author,
			Comments:   md.Description,
			Keywords:   strings.Join(md.Tags, ", "),
			Publisher:  md.Publisher,
			Rights:     strings.TrimSpace(md.License + " " + md.LegalNotice),
			Language:   languageCode(md.Language),
		},
	}

	margin := marginPercent(layout.Margins) / 100
	strip := bluemonday.StripTagsPolicy()
	for i, chunk := range pages.Pages {
		if err := ctx.Err(); err != nil {
			return Artifact{}, err
		}
		top := float64(i) * (paper.height + slaPageGap)
		doc.Document.Pages = append(doc.Document.Pages, slaPage{
			Num:    i,
			YPos:   top,
			Width:  paper.width,
			Height: paper.height,
		})

		var story slaStoryText
		for _, line := range pageLines(strip, chunk) {
			story.Items = append(story.Items,
				slaStoryItem{XMLName: xml.Name{Local: "ITEXT"}, Text: line},
				slaStoryItem{XMLName: xml.Name{Local: "para"}})
		}
		doc.Document.Objects = append(doc.Document.Objects, slaPageObject{
			PageType: slaTextFrame,
			OwnPage:  i,
			Name:     fmt.Sprintf("Page %d", i+1),
			XPos:     paper.width * margin,
			YPos:     top + paper.height*margin,
			Width:    paper.width * (1 - 2*margin),
			Height:   paper.height * (1 - 2*margin),
			Story:    story,
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", " ")
	if err := enc.Encode(doc); err != nil {
		return Artifact{}, fmt.Errorf("encoding sla: %w", err)
	}
	buf.WriteByte('\n')

	return Artifact{
		Name:        FileName(md.Title, "sla"),
		ContentType: "application/x-scribus",
		Data:        buf.Bytes(),
	}, nil
}

var blockEnds = strings.NewReplacer("</h1>", "\n", "</p>", "\n")

// pageLines turns one page of preview markup into plain text lines. A tag
// cut in half by the page boundary is dropped.
func pageLines(strip *bluemonday.Policy, chunk string) []string {
	if end := strings.IndexByte(chunk, '>'); end >= 0 {
		if open := strings.IndexByte(chunk, '<'); open < 0 || end < open {
			chunk = chunk[end+1:]
		}
	}
	if open := strings.LastIndexByte(chunk, '<'); open >= 0 && !strings.Contains(chunk[open:], ">") {
		chunk = chunk[:open]
	}

	text := html.UnescapeString(strip.Sanitize(blockEnds.Replace(chunk)))
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return out
}

type paperSize struct {
	name          string
	width, height float64
}

var (
	namedPapers = []struct {
		match string
		size  paperSize
	}{
		{"a4", paperSize{"A4", 210 / mmPerInch * pointsPerInch, 297 / mmPerInch * pointsPerInch}},
		{"a5", paperSize{"A5", 148 / mmPerInch * pointsPerInch, 210 / mmPerInch * pointsPerInch}},
		{"letter", paperSize{"Letter", 8.5 * pointsPerInch, 11 * pointsPerInch}},
		{"trade", paperSize{"US Trade", 6 * pointsPerInch, 9 * pointsPerInch}},
	}
	paperDims = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*[x×]\s*(\d+(?:\.\d+)?)\s*(mm|cm|in)`)
)

// paperFor maps a free-form paper description such as "A5 paper (148 x 210 mm)"
// or "US Trade (6 x 9 in)" to a page size in points. Explicit dimensions win
// over a recognised name; anything else is A5.
func paperFor(desc string) paperSize {
	name := strings.TrimSpace(desc)
	lower := strings.ToLower(name)
	for _, p := range namedPapers {
		if strings.Contains(lower, p.match) {
			name = p.size.name
			break
		}
	}

	if m := paperDims.FindStringSubmatch(lower); m != nil {
		w, _ := strconv.ParseFloat(m[1], 64)
		h, _ := strconv.ParseFloat(m[2], 64)
		scale := pointsPerInch
		switch m[3] {
		case "mm":
			scale = pointsPerInch / mmPerInch
		case "cm":
			scale = 10 * pointsPerInch / mmPerInch
		}
		if w > 0 && h > 0 {
			return paperSize{name: name, width: w * scale, height: h * scale}
		}
	}
	for _, p := range namedPapers {
		if strings.Contains(lower, p.match) {
			return p.size
		}
	}
	return namedPapers[1].size
}

// marginPercent reads the first value of a CSS margin shorthand such as
// "14% 11%".
func marginPercent(margins string) float64 {
	fields := strings.Fields(margins)
	if len(fields) == 0 {
		return defaultMargin
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	if err != nil || v < 0 || v >= 50 {
		return defaultMargin
	}
	return v
}
