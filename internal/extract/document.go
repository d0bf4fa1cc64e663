package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Selectors choose which elements act as labels, values and the page title.
type Selectors struct {
	Header string `yaml:"header" json:"header"`
	Value  string `yaml:"value" json:"value"`
	Title  string `yaml:"title" json:"title"`
}

// DefaultSelectors matches the label/value tables on job detail pages.
func DefaultSelectors() Selectors {
	return Selectors{Header: "th", Value: "td", Title: "h1"}
}

func (s Selectors) withDefaults() Selectors {
	def := DefaultSelectors()
	if strings.TrimSpace(s.Header) == "" {
		s.Header = def.Header
	}
	if strings.TrimSpace(s.Value) == "" {
		s.Value = def.Value
	}
	if strings.TrimSpace(s.Title) == "" {
		s.Title = def.Title
	}
	return s
}

// Document is a parsed page. It is read-only once built.
type Document struct {
	doc *goquery.Document
	sel Selectors
}

// Parse reads an HTML document. The input must already be UTF-8.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: goquery.NewDocumentFromNode(root), sel: DefaultSelectors()}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Use returns a view of d that locates labels and values with sel. Empty
// selector fields keep their defaults.
func (d *Document) Use(sel Selectors) *Document {
	if d == nil {
		return nil
	}
	return &Document{doc: d.doc, sel: sel.withDefaults()}
}

// Field returns the value paired with label: the first header element whose
// trimmed text equals label exactly, then the first value element after it
// in document order. Missing labels and labels with no following value yield
// "".
func (d *Document) Field(label string) string {
	if d == nil || d.doc == nil || label == "" {
		return ""
	}
	var (
		matched bool
		out     string
	)
	d.doc.Find(d.sel.Header + ", " + d.sel.Value).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !matched {
			if s.Is(d.sel.Header) && cellText(s) == label {
				matched = true
			}
			return true
		}
		if s.Is(d.sel.Value) {
			out = cellText(s)
			return false
		}
		return true
	})
	return out
}

// Title returns the trimmed text of the first title element, or "".
func (d *Document) Title() string {
	if d == nil || d.doc == nil {
		return ""
	}
	t := d.doc.Find(d.sel.Title).First()
	if t.Length() == 0 {
		return ""
	}
	return cellText(t)
}

// cellText trims Unicode whitespace, including the ideographic space the
// site pads labels with.
func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
