package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vampirenirmal/lumina/internal/manuscript"
	"github.com/vampirenirmal/lumina/internal/pagination"
)

func sampleBook() manuscript.Book {
	b := manuscript.DefaultBook(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	b.Metadata.Title = "The Lighthouse Keeper"
	b.Metadata.Author = "Ada Stone"
	b.Metadata.ISBN = "9780000000001"
	b.Metadata.Tags = []string{"draft", "sea"}
	b.Chapters = []manuscript.Chapter{
		{ID: "c1", Title: "Arrival", Content: "The boat left.\n\nThe keeper stayed."},
		{ID: "c2", Title: "Fish & Chips", Content: "Supper <late> again."},
	}
	return b
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string, len(r.File))
	for i, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(body)
		if i == 0 {
			assert.Equal(t, "mimetype", f.Name)
		}
	}
	return files
}

func findSuffix(files map[string]string, suffix string) (string, bool) {
	for name, body := range files {
		if strings.HasSuffix(name, suffix) {
			return body, true
		}
	}
	return "", false
}

func TestEPUBEncode(t *testing.T) {
	a, err := NewEPUB().Encode(context.Background(), sampleBook())
	require.NoError(t, err)

	assert.Equal(t, "The_Lighthouse_Keeper.epub", a.Name)
	assert.Equal(t, "application/epub+zip", a.ContentType)

	files := unzip(t, a.Data)
	assert.Equal(t, "application/epub+zip", files["mimetype"])

	first, ok := findSuffix(files, "chapter-001.xhtml")
	require.True(t, ok)
	assert.Contains(t, first, "<p>The boat left.</p>")
	assert.Contains(t, first, "<p>The keeper stayed.</p>")

	second, ok := findSuffix(files, "chapter-002.xhtml")
	require.True(t, ok)
	assert.Contains(t, second, "Fish &amp; Chips")
	assert.Contains(t, second, "&lt;late&gt;")

	opf, ok := findSuffix(files, ".opf")
	require.True(t, ok)
	assert.Contains(t, opf, "Ada Stone")
	assert.Contains(t, opf, "urn:isbn:9780000000001")
}

func TestEPUBEncodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEPUB().Encode(ctx, sampleBook())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMarkdownEncode(t *testing.T) {
	a, err := Markdown{}.Encode(context.Background(), sampleBook())
	require.NoError(t, err)

	got := string(a.Data)
	assert.Equal(t, "The_Lighthouse_Keeper.md", a.Name)
	assert.True(t, strings.HasPrefix(got, "# The Lighthouse Keeper\n\n*Ada Stone*\n\n"))
	assert.Contains(t, got, "## Arrival\n\nThe boat left.\n\nThe keeper stayed.\n\n")
	assert.Less(t, strings.Index(got, "## Arrival"), strings.Index(got, "## Fish & Chips"))
}

type slaDoc struct {
	Version  string `xml:"Version,attr"`
	Document struct {
		Title      string  `xml:"TITLE,attr"`
		Author     string  `xml:"AUTHOR,attr"`
		PageCount  int     `xml:"ANZPAGES,attr"`
		PageWidth  float64 `xml:"PAGEWIDTH,attr"`
		PageHeight float64 `xml:"PAGEHEIGHT,attr"`
		PageSize   string  `xml:"PAGESIZE,attr"`
		Pages      []struct {
			Num int `xml:"NUM,attr"`
		} `xml:"PAGE"`
		Objects []struct {
			Name    string `xml:"ANNAME,attr"`
			OwnPage int    `xml:"OwnPage,attr"`
			Items   []struct {
				Text string `xml:"CH,attr"`
			} `xml:"StoryText>ITEXT"`
		} `xml:"PAGEOBJECT"`
	} `xml:"DOCUMENT"`
}

func decodeSLA(t *testing.T, data []byte) slaDoc {
	t.Helper()
	var doc slaDoc
	require.NoError(t, xml.Unmarshal(data, &doc))
	return doc
}

func TestScribusEncode(t *testing.T) {
	a, err := Scribus{}.Encode(context.Background(), sampleBook())
	require.NoError(t, err)
	assert.Equal(t, "The_Lighthouse_Keeper.sla", a.Name)
	assert.True(t, bytes.HasPrefix(a.Data, []byte(xml.Header)))

	doc := decodeSLA(t, a.Data)
	assert.Equal(t, scribusVersion, doc.Version)
	assert.Equal(t, "The Lighthouse Keeper", doc.Document.Title)
	assert.Equal(t, "Ada Stone", doc.Document.Author)

	// The whole sample fits on one preview page.
	assert.Equal(t, 1, doc.Document.PageCount)
	require.Len(t, doc.Document.Pages, 1)
	require.Len(t, doc.Document.Objects, 1)
	assert.Equal(t, "Page 1", doc.Document.Objects[0].Name)

	var lines []string
	for _, it := range doc.Document.Objects[0].Items {
		lines = append(lines, it.Text)
	}
	assert.Equal(t, []string{"Arrival", "The boat left.", "The keeper stayed.", "Fish & Chips", "Supper again."}, lines)
}

func TestScribusFramePerPreviewPage(t *testing.T) {
	book := sampleBook()
	book.Chapters[0].Content = strings.Repeat("The tide came in. ", 200)
	book.Metadata.LayoutPreference = &manuscript.LayoutPreference{
		PaperSize: "US Trade (6 x 9 in)", FontScale: 1, Margins: "10%", Columns: 1, LineHeight: 1.5, StyleName: "Trade",
	}
	want := pagination.Paginate(book).PageCount
	require.Greater(t, want, 1)

	a, err := Scribus{}.Encode(context.Background(), book)
	require.NoError(t, err)
	doc := decodeSLA(t, a.Data)

	assert.Equal(t, want, doc.Document.PageCount)
	require.Len(t, doc.Document.Pages, want)
	require.Len(t, doc.Document.Objects, want)
	for i, obj := range doc.Document.Objects {
		assert.Equal(t, i, obj.OwnPage)
		assert.Equal(t, i, doc.Document.Pages[i].Num)
	}
	assert.Equal(t, "US Trade", doc.Document.PageSize)
	assert.InDelta(t, 432, doc.Document.PageWidth, 1e-9)
	assert.InDelta(t, 648, doc.Document.PageHeight, 1e-9)
}

func TestPaperFor(t *testing.T) {
	tests := []struct {
		desc          string
		name          string
		width, height float64
	}{
		{"A5 paper (148 x 210 mm)", "A5", 419.53, 595.28},
		{"A4", "A4", 595.28, 841.89},
		{"US Letter", "Letter", 612, 792},
		{"Pocket (4.25 x 6.87 in)", "Pocket (4.25 x 6.87 in)", 306, 494.64},
		{"something odd", "A5", 419.53, 595.28},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := paperFor(tt.desc)
			assert.Equal(t, tt.name, got.name)
			assert.InDelta(t, tt.width, got.width, 0.01)
			assert.InDelta(t, tt.height, got.height, 0.01)
		})
	}
}

func TestPageLinesDropsCutTags(t *testing.T) {
	strip := bluemonday.StripTagsPolicy()
	got := pageLines(strip, `ter-body">end of a line</p><h1 class="chapter-title">Next</h1><p cla`)
	assert.Equal(t, []string{"end of a line", "Next"}, got)
}

func TestCalibreEncode(t *testing.T) {
	a, err := Calibre{}.Encode(context.Background(), sampleBook())
	require.NoError(t, err)
	assert.Equal(t, "metadata.opf", a.Name)

	got := string(a.Data)
	assert.Contains(t, got, "<dc:title>The Lighthouse Keeper</dc:title>")
	assert.Contains(t, got, "<dc:identifier>9780000000001</dc:identifier>")
	assert.Contains(t, got, "<dc:language>en</dc:language>")
	assert.Contains(t, got, "<dc:subject>Fiction</dc:subject>")
	assert.Contains(t, got, "<dc:subject>sea</dc:subject>")
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"calibre", "epub", "markdown", "scribus"}, r.Formats())

	_, err := r.Get("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	e, err := r.Get("EPUB")
	require.NoError(t, err)
	assert.Equal(t, "epub", e.Format())
}

type failingEncoder struct{}

func (failingEncoder) Format() string { return "broken" }

func (failingEncoder) Encode(context.Context, manuscript.Book) (Artifact, error) {
	return Artifact{}, io.ErrUnexpectedEOF
}

func TestExportAll(t *testing.T) {
	book := sampleBook()

	arts, err := DefaultRegistry().ExportAll(context.Background(), book)
	require.NoError(t, err)
	require.Len(t, arts, 4)
	assert.Equal(t, "metadata.opf", arts[0].Name)
	assert.Equal(t, "The_Lighthouse_Keeper.epub", arts[1].Name)
	for _, a := range arts {
		assert.NotEmpty(t, a.Data, a.Name)
	}
	assert.Equal(t, sampleBook(), book, "encoders must not modify the snapshot")

	_, err = NewRegistry(Markdown{}, failingEncoder{}).ExportAll(context.Background(), book)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"New Book Project", "New_Book_Project.epub"},
		{"  Tabs\tand  spaces ", "Tabs_and_spaces.epub"},
		{"", "untitled.epub"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileName(tt.title, "epub"))
	}
}

func TestLanguageCode(t *testing.T) {
	assert.Equal(t, "en", languageCode("English"))
	assert.Equal(t, "es", languageCode("Español"))
	assert.Equal(t, "pt-br", languageCode("pt-BR"))
	assert.Equal(t, "en", languageCode("Klingon"))
}
