package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodEngine drives a Chromium instance over CDP.
type RodEngine struct {
	browser     *rod.Browser
	pageTimeout time.Duration
}

// ConnectRod attaches to the browser at controlURL, or launches a headless
// instance when controlURL is empty.
func ConnectRod(controlURL string, headless bool, pageTimeout time.Duration) (*RodEngine, error) {
	if controlURL == "" {
		u, err := launcher.New().Headless(headless).Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	if pageTimeout <= 0 {
		pageTimeout = 30 * time.Second
	}
	return &RodEngine{browser: b, pageTimeout: pageTimeout}, nil
}

func (e *RodEngine) Close() error {
	return e.browser.Close()
}

func (e *RodEngine) Navigate(ctx context.Context, url string) (Page, error) {
	page, err := e.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", url, err)
	}
	page = page.Context(ctx)

	// The load deadline must not outlive the load: elements inherit the page
	// context, and a card walk runs far longer than any single navigation.
	// Only the WaitLoad clone carries the timeout.
	loading := page.Timeout(e.pageTimeout)
	err = loading.WaitLoad()
	loading.CancelTimeout()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}
	return &rodPage{p: page}, nil
}

type rodPage struct {
	p *rod.Page
}

func (rp *rodPage) Find(selector string) (Element, bool) {
	has, el, err := rp.p.Has(selector)
	if err != nil || !has {
		return nil, false
	}
	return &rodElement{el: el}, true
}

func (rp *rodPage) FindAll(selector string) []Element {
	els, err := rp.p.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

type rodElement struct {
	el *rod.Element

	once  sync.Once
	attrs Attrs
}

func (re *rodElement) Find(selector string) (Element, bool) {
	has, el, err := re.el.Has(selector)
	if err != nil || !has {
		return nil, false
	}
	return &rodElement{el: el}, true
}

func (re *rodElement) FindAll(selector string) []Element {
	els, err := re.el.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

// Attrs builds the attribute map from the node's flattened name/value pairs
// on first use and reuses it afterwards.
func (re *rodElement) Attrs() Attrs {
	re.once.Do(func() {
		node, err := re.el.Describe(0, false)
		if err != nil {
			re.attrs = Attrs{}
			return
		}
		m := make(Attrs, len(node.Attributes)/2)
		for i := 0; i+1 < len(node.Attributes); i += 2 {
			m[node.Attributes[i]] = node.Attributes[i+1]
		}
		re.attrs = m
	})
	return re.attrs
}

func (re *rodElement) Text() string {
	t, err := re.el.Text()
	if err != nil {
		return ""
	}
	return t
}

func (re *rodElement) ScrollIntoView() error {
	return re.el.ScrollIntoView()
}

func (re *rodElement) Click() error {
	return re.el.Click(proto.InputMouseButtonLeft, 1)
}
