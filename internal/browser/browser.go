// Package browser is the seam between the crawl pipeline and whatever
// renders the pages. The crawl code only sees these interfaces; the rod
// adapter drives a real Chrome over CDP and the static adapter replays
// HTML snapshots for tests and offline re-extraction.
//
// Absence is a value here, not an error: Find returns ok=false when the
// selector matches nothing, and Text/Attrs on a live element never fail
// the caller. Only Navigate and the interaction calls (ScrollIntoView,
// Click) surface errors, because those are the points where a dead
// browser must stop a run.
package browser

import "context"

// Attrs is the attribute list of an element, read once and then immutable.
type Attrs map[string]string

func (a Attrs) Get(name string) string {
	return a[name]
}

type Element interface {
	// Find returns the first descendant matching selector, ok=false if none.
	Find(selector string) (Element, bool)
	FindAll(selector string) []Element
	Attrs() Attrs
	Text() string
	ScrollIntoView() error
	Click() error
}

type Page interface {
	Find(selector string) (Element, bool)
	FindAll(selector string) []Element
}

type Engine interface {
	Navigate(ctx context.Context, url string) (Page, error)
}
