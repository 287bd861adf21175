package scrape

import (
	"strings"

	"jobtrack-engine/internal/browser"
)

// Selectors locates the pieces of a rendered listing card and the page-level
// detail panels. Defaults match the target site's current markup; they live
// in one place because that markup is the thing that breaks.
type Selectors struct {
	CardList    string // the ordered listing cards on the results page
	CardWrapper string // inner content wrapper inside one card
	CardLink    string // first hyperlink inside the wrapper
	Title       string
	Company     string
	Location    string
	HirerPanel  string // hiring-manager panel, rendered outside the card
	HirerLink   string
	Description string // description paragraphs, rendered outside the card
	JobIDAttr   string // site-assigned id attribute on the wrapper
}

func DefaultSelectors() Selectors {
	return Selectors{
		CardList:    "li.semantic-search-results-list__list-item",
		CardWrapper: ".job-card-job-posting-card-wrapper",
		CardLink:    "a",
		Title:       "strong",
		Company:     ".artdeco-entity-lockup__subtitle",
		Location:    ".artdeco-entity-lockup__caption",
		HirerPanel:  ".hirer-card__hirer-information",
		HirerLink:   "a",
		Description: ".jobs-description__container p",
		JobIDAttr:   "data-job-id",
	}
}

// Candidate is one extracted listing card before validation. Every field is
// individually optional: a missing sub-element leaves its field empty, it
// never aborts the extraction.
type Candidate struct {
	JobID            string
	JobLink          string
	Title            string
	Company          string
	Location         string
	HirerName        string
	HirerProfileLink string
	Description      string
}

// Extract reads one rendered listing card. The hirer panel and description
// are queried on the page, not the card: the site renders them outside the
// card once it is selected.
func Extract(page browser.Page, card browser.Element, sel Selectors) Candidate {
	var c Candidate

	wrapper, ok := card.Find(sel.CardWrapper)
	if !ok {
		return c
	}

	c.JobID = wrapper.Attrs().Get(sel.JobIDAttr)
	if link, ok := wrapper.Find(sel.CardLink); ok {
		c.JobLink = link.Attrs().Get("href")
	}
	if title, ok := wrapper.Find(sel.Title); ok {
		c.Title = title.Text()
	}
	if company, ok := wrapper.Find(sel.Company); ok {
		c.Company = company.Text()
	}
	if location, ok := wrapper.Find(sel.Location); ok {
		c.Location = location.Text()
	}

	if panel, ok := page.Find(sel.HirerPanel); ok {
		c.HirerName = panel.Text()
		if link, ok := panel.Find(sel.HirerLink); ok {
			c.HirerProfileLink = link.Attrs().Get("href")
		}
	}

	if paras := page.FindAll(sel.Description); len(paras) > 0 {
		parts := make([]string, 0, len(paras))
		for _, p := range paras {
			parts = append(parts, p.Text())
		}
		c.Description = strings.Join(parts, "\n")
	}

	return c
}
