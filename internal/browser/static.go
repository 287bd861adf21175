package browser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StaticEngine serves pre-rendered HTML keyed by URL. Tests use it in place
// of a live browser, and it doubles as the offline path for re-extracting
// from saved page snapshots.
type StaticEngine struct {
	pages map[string]string
}

func NewStaticEngine(pages map[string]string) *StaticEngine {
	return &StaticEngine{pages: pages}
}

func (e *StaticEngine) Navigate(_ context.Context, url string) (Page, error) {
	html, ok := e.pages[url]
	if !ok {
		return nil, fmt.Errorf("no snapshot for %s", url)
	}
	return ParsePage(strings.NewReader(html))
}

// StaticPage is a goquery-backed Page over one HTML document.
type StaticPage struct {
	doc *goquery.Document
}

func ParsePage(r io.Reader) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &StaticPage{doc: doc}, nil
}

func (p *StaticPage) Find(selector string) (Element, bool) {
	sel := p.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, false
	}
	return &staticElement{sel: sel.First()}, true
}

func (p *StaticPage) FindAll(selector string) []Element {
	return collect(p.doc.Find(selector))
}

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Find(selector string) (Element, bool) {
	sel := e.sel.Find(selector)
	if sel.Length() == 0 {
		return nil, false
	}
	return &staticElement{sel: sel.First()}, true
}

func (e *staticElement) FindAll(selector string) []Element {
	return collect(e.sel.Find(selector))
}

func (e *staticElement) Attrs() Attrs {
	if len(e.sel.Nodes) == 0 {
		return Attrs{}
	}
	node := e.sel.Nodes[0]
	m := make(Attrs, len(node.Attr))
	for _, a := range node.Attr {
		m[a.Key] = a.Val
	}
	return m
}

func (e *staticElement) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

// Snapshots don't scroll or click; both are satisfied trivially.
func (e *staticElement) ScrollIntoView() error { return nil }
func (e *staticElement) Click() error          { return nil }

func collect(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &staticElement{sel: s})
	})
	return out
}
