package scrape

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/store"
)

// Hand-rolled fakes stand in for a live browser so interaction failures can
// be scripted per element.

type fakeEngine struct {
	page browser.Page
	err  error
}

func (f *fakeEngine) Navigate(_ context.Context, _ string) (browser.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

type engineFunc func(ctx context.Context, url string) (browser.Page, error)

func (f engineFunc) Navigate(ctx context.Context, url string) (browser.Page, error) {
	return f(ctx, url)
}

type fakePage struct {
	children map[string][]browser.Element
}

func (p *fakePage) Find(selector string) (browser.Element, bool) {
	els := p.children[selector]
	if len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (p *fakePage) FindAll(selector string) []browser.Element {
	return p.children[selector]
}

type fakeElement struct {
	attrs     browser.Attrs
	text      string
	children  map[string][]browser.Element
	scrollErr error
	clickErr  error
}

func (e *fakeElement) Find(selector string) (browser.Element, bool) {
	els := e.children[selector]
	if len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (e *fakeElement) FindAll(selector string) []browser.Element {
	return e.children[selector]
}

func (e *fakeElement) Attrs() browser.Attrs  { return e.attrs }
func (e *fakeElement) Text() string          { return e.text }
func (e *fakeElement) ScrollIntoView() error { return e.scrollErr }
func (e *fakeElement) Click() error          { return e.clickErr }

// makeCard builds a listing card whose wrapper carries the given fields.
// Blank out title to make the card fail validation.
func makeCard(jobID, title string) *fakeElement {
	sel := DefaultSelectors()
	wrapper := &fakeElement{
		attrs: browser.Attrs{sel.JobIDAttr: jobID},
		children: map[string][]browser.Element{
			sel.CardLink: {&fakeElement{attrs: browser.Attrs{"href": "https://x.test/jobs/view/" + jobID}}},
			sel.Company:  {&fakeElement{text: "Acme"}},
			sel.Location: {&fakeElement{text: "Remote"}},
		},
	}
	if title != "" {
		wrapper.children[sel.Title] = []browser.Element{&fakeElement{text: title}}
	}
	return &fakeElement{children: map[string][]browser.Element{sel.CardWrapper: {wrapper}}}
}

func makeListingPage(cards ...browser.Element) *fakePage {
	sel := DefaultSelectors()
	return &fakePage{children: map[string][]browser.Element{
		sel.CardList:    cards,
		sel.Description: {&fakeElement{text: "Job description."}},
	}}
}

func fastConfig() Config {
	return Config{
		BaseURL:       "https://x.test/search",
		Keyword:       "golang engineer",
		CardDelay:     time.Millisecond,
		RenderTimeout: 20 * time.Millisecond,
		PollInterval:  2 * time.Millisecond,
	}
}

func openSessionStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRunPersistsValidCards(t *testing.T) {
	st := openSessionStore(t)
	page := makeListingPage(
		makeCard("j1", "Backend Engineer"),
		makeCard("j2", ""), // no title, fails validation
		makeCard("j3", "Platform Engineer"),
		makeCard("", "SRE"), // no job id, fails validation
		makeCard("j5", "Data Engineer"),
	)

	c := NewCrawler(&fakeEngine{page: page}, st, nil, nil, fastConfig())
	res, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, store.SessionCompleted, res.Status)
	require.Equal(t, 5, res.JobsFound)
	require.Equal(t, 3, res.Persisted)
	require.Equal(t, 3, res.JobsNew)
	require.Equal(t, 2, res.Skipped)
	require.Zero(t, res.Errors)

	jobs, err := st.ListJobs(context.Background(), store.ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	sess, err := st.GetSession(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.SessionCompleted, sess.Status)
	require.Equal(t, 5, sess.JobsFound)
	require.Equal(t, 3, sess.JobsNew)
	require.Equal(t, "golang engineer", sess.SearchQuery)
	require.NotNil(t, sess.EndTime)
	require.Empty(t, sess.ErrorLog)
}

func TestRunLongListingCompletes(t *testing.T) {
	st := openSessionStore(t)

	// 25 cards at the configured pacing: the whole walk takes many times
	// longer than the initial navigation, and must still finish completed
	// with every card persisted.
	cards := make([]browser.Element, 0, 25)
	for i := 0; i < 25; i++ {
		cards = append(cards, makeCard(fmt.Sprintf("j%02d", i), "Backend Engineer"))
	}
	page := makeListingPage(cards...)

	cfg := fastConfig()
	cfg.CardDelay = 3 * time.Millisecond

	c := NewCrawler(&fakeEngine{page: page}, st, nil, nil, cfg)
	res, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, store.SessionCompleted, res.Status)
	require.Equal(t, 25, res.JobsFound)
	require.Equal(t, 25, res.Persisted)
	require.Zero(t, res.Skipped)
	require.Zero(t, res.Errors)

	jobs, err := st.ListJobs(context.Background(), store.ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, jobs, 25)
}

func TestRunRecrawlFindsNothingNew(t *testing.T) {
	st := openSessionStore(t)
	page := makeListingPage(
		makeCard("j1", "Backend Engineer"),
		makeCard("j2", "Platform Engineer"),
	)

	res, err := NewCrawler(&fakeEngine{page: page}, st, nil, nil, fastConfig()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.JobsNew)

	res, err = NewCrawler(&fakeEngine{page: page}, st, nil, nil, fastConfig()).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.JobsFound)
	require.Equal(t, 2, res.Persisted)
	require.Zero(t, res.JobsNew)

	jobs, err := st.ListJobs(context.Background(), store.ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
}

func TestRunNavigationFailure(t *testing.T) {
	st := openSessionStore(t)
	c := NewCrawler(&fakeEngine{err: errors.New("browser closed")}, st, nil, nil, fastConfig())

	res, err := c.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, store.SessionFailed, res.Status)
	require.Zero(t, res.JobsFound)

	sess, err := st.GetSession(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.SessionFailed, sess.Status)
	require.Contains(t, sess.ErrorLog, "browser closed")
	require.NotNil(t, sess.EndTime)
}

func TestRunFatalMidCrawlKeepsEarlierRows(t *testing.T) {
	st := openSessionStore(t)
	broken := makeCard("j3", "SRE")
	broken.clickErr = errors.New("page detached")
	page := makeListingPage(
		makeCard("j1", "Backend Engineer"),
		makeCard("j2", "Platform Engineer"),
		broken,
		makeCard("j4", "Data Engineer"), // never reached
	)

	c := NewCrawler(&fakeEngine{page: page}, st, nil, nil, fastConfig())
	res, err := c.Run(context.Background())
	require.Error(t, err)

	require.Equal(t, store.SessionFailed, res.Status)
	require.Equal(t, 3, res.JobsFound)
	require.Equal(t, 2, res.Persisted)
	require.Equal(t, 2, res.JobsNew)

	jobs, err := st.ListJobs(context.Background(), store.ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	sess, err := st.GetSession(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.SessionFailed, sess.Status)
	require.Contains(t, sess.ErrorLog, "select card 3")
}

func TestRunEmptyListingCompletes(t *testing.T) {
	st := openSessionStore(t)
	page := &fakePage{children: map[string][]browser.Element{}}

	c := NewCrawler(&fakeEngine{page: page}, st, nil, nil, fastConfig())
	res, err := c.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, store.SessionCompleted, res.Status)
	require.Zero(t, res.JobsFound)

	sess, err := st.GetSession(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.SessionCompleted, sess.Status)
}

func TestRunCancelledContext(t *testing.T) {
	st := openSessionStore(t)
	page := makeListingPage(makeCard("j1", "Backend Engineer"))

	// cancel once navigation has happened: the card walk must stop and the
	// session row must still be closed out
	ctx, cancel := context.WithCancel(context.Background())
	eng := engineFunc(func(context.Context, string) (browser.Page, error) {
		cancel()
		return page, nil
	})

	c := NewCrawler(eng, st, nil, nil, fastConfig())
	res, err := c.Run(ctx)
	require.Error(t, err)
	require.Equal(t, store.SessionFailed, res.Status)

	// the session row is still closed out despite the dead caller context
	sess, err := st.GetSession(context.Background(), res.SessionID)
	require.NoError(t, err)
	require.Equal(t, store.SessionFailed, sess.Status)
}
