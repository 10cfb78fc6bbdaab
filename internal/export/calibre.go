package export

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/vampirenirmal/lumina/internal/manuscript"
)

const (
	opfNamespace = "http://www.idpf.org/2007/opf"
	dcNamespace  = "http://purl.org/dc/elements/1.1/"
)

// Calibre writes the catalogue metadata as an OPF document that Calibre
// can import alongside the book.
type Calibre struct{}

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	XMLNS    string      `xml:"xmlns,attr"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
}

type opfMetadata struct {
	DC          string    `xml:"xmlns:dc,attr"`
	OPF         string    `xml:"xmlns:opf,attr"`
	Title       string    `xml:"dc:title"`
	Creator     string    `xml:"dc:creator,omitempty"`
	Publisher   string    `xml:"dc:publisher,omitempty"`
	Identifier  string    `xml:"dc:identifier,omitempty"`
	Language    string    `xml:"dc:language"`
	Description string    `xml:"dc:description,omitempty"`
	Rights      string    `xml:"dc:rights,omitempty"`
	Subjects    []string  `xml:"dc:subject"`
	Meta        []opfMeta `xml:"meta"`
}

type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

func (Calibre) Format() string { return "calibre" }

func (Calibre) Encode(ctx context.Context, book manuscript.Book) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}
	md := book.Metadata

	meta := opfMetadata{
		DC:          dcNamespace,
		OPF:         opfNamespace,
		Title:       md.Title,
		Creator:     md.Author,
		Publisher:   md.Publisher,
		Language:    languageCode(md.Language),
		Description: md.Description,
	}
	for _, s := range append([]string{md.Genre}, md.Tags...) {
		if s != "" {
			meta.Subjects = append(meta.Subjects, s)
		}
	}
	if md.ISBN != "" && md.ISBN != pendingISBN {
		meta.Identifier = md.ISBN
	}
	if md.CopyrightHolder != "" {
		meta.Rights = fmt.Sprintf("© %s %s. %s", md.CopyrightYear, md.CopyrightHolder, md.License)
	} else {
		meta.Rights = md.License
	}
	if md.Series != "" {
		meta.Meta = append(meta.Meta,
			opfMeta{Name: "calibre:series", Content: md.Series},
			opfMeta{Name: "calibre:series_index", Content: strconv.Itoa(md.SeriesIndex)})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(opfPackage{XMLNS: opfNamespace, Version: "2.0", Metadata: meta}); err != nil {
		return Artifact{}, fmt.Errorf("encoding opf: %w", err)
	}
	buf.WriteByte('\n')

	return Artifact{
		Name:        "metadata.opf",
		ContentType: "application/oebps-package+xml",
		Data:        buf.Bytes(),
	}, nil
}
