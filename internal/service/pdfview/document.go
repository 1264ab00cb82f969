package pdfview

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// US Letter, used when a page tree carries no MediaBox at all
const (
	defaultPageWidth  = 612
	defaultPageHeight = 792
)

// ErrNotPDF is returned when the bytes cannot be parsed as a PDF
var ErrNotPDF = errors.New("not a readable PDF")

// Page is the geometry and link annotations of one page
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Links  []Link  `json:"links"`
}

// Document is the parsed link layer of a PDF
type Document struct {
	Pages []Page `json:"pages"`
}

// NumPages returns the page count
func (d *Document) NumPages() int {
	return len(d.Pages)
}

// Page returns page n (1-based)
func (d *Document) Page(n int) (*Page, error) {
	if n < 1 || n > len(d.Pages) {
		return nil, fmt.Errorf("page %d out of range 1..%d", n, len(d.Pages))
	}
	return &d.Pages[n-1], nil
}

// Parse reads page sizes and URI link annotations from PDF bytes
func Parse(data []byte) (doc *Document, err error) {
	// The parser panics on some malformed inputs
	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, fmt.Errorf("%w: %v", ErrNotPDF, p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	n := r.NumPage()
	doc = &Document{Pages: make([]Page, 0, n)}
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			return nil, fmt.Errorf("%w: page %d missing", ErrNotPDF, i)
		}
		width, height := mediaBox(p.V)
		doc.Pages = append(doc.Pages, Page{
			Number: i,
			Width:  width,
			Height: height,
			Links:  uriLinks(p.V),
		})
	}
	return doc, nil
}

// mediaBox returns the page size, following Parent for inherited boxes
func mediaBox(page pdf.Value) (width, height float64) {
	for v := page; v.Kind() == pdf.Dict; v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() == pdf.Array && box.Len() == 4 {
			r := Rect{
				X1: box.Index(0).Float64(),
				Y1: box.Index(1).Float64(),
				X2: box.Index(2).Float64(),
				Y2: box.Index(3).Float64(),
			}.Normalize()
			return r.X2 - r.X1, r.Y2 - r.Y1
		}
	}
	return defaultPageWidth, defaultPageHeight
}

// uriLinks collects Link annotations whose action is a URI
func uriLinks(page pdf.Value) []Link {
	annots := page.Key("Annots")
	links := []Link{}
	for i := 0; i < annots.Len(); i++ {
		a := annots.Index(i)
		if a.Key("Subtype").Name() != "Link" {
			continue
		}
		action := a.Key("A")
		if action.Key("S").Name() != "URI" {
			continue
		}
		uri := action.Key("URI").RawString()
		rect := a.Key("Rect")
		if uri == "" || rect.Len() != 4 {
			continue
		}
		links = append(links, Link{
			Rect: Rect{
				X1: rect.Index(0).Float64(),
				Y1: rect.Index(1).Float64(),
				X2: rect.Index(2).Float64(),
				Y2: rect.Index(3).Float64(),
			},
			URL: uri,
		})
	}
	return links
}
