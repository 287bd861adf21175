package scrape

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/store"
)

// Config describes one crawl run. CardDelay is deliberate pacing against the
// live page, not an optimization knob; RenderTimeout/PollInterval bound the
// readiness polling that replaces fixed sleeps.
type Config struct {
	BaseURL   string
	Keyword   string
	GeoID     string
	EasyApply bool

	CardDelay     time.Duration
	RenderTimeout time.Duration
	PollInterval  time.Duration
	Selectors     Selectors
}

func (c *Config) applyDefaults() {
	if c.CardDelay <= 0 {
		c.CardDelay = 1500 * time.Millisecond
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = 5 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 100 * time.Millisecond
	}
	if c.Selectors == (Selectors{}) {
		c.Selectors = DefaultSelectors()
	}
}

// Crawler runs one discovery session end to end: navigate, walk the listing
// cards in order, extract, validate, persist. It holds no state across runs;
// everything that survives lives in the store.
type Crawler struct {
	engine  browser.Engine
	store   *store.Store
	hub     *events.Hub
	logger  *zap.Logger
	limiter *rate.Limiter
	cfg     Config
}

func NewCrawler(engine browser.Engine, st *store.Store, hub *events.Hub, logger *zap.Logger, cfg Config) *Crawler {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if hub == nil {
		hub = events.NewHub()
	}
	return &Crawler{
		engine:  engine,
		store:   st,
		hub:     hub,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(cfg.CardDelay), 1),
		cfg:     cfg,
	}
}

// Result summarizes one finished run. JobsFound counts cards seen, JobsNew
// counts rows that were not previously in the store.
type Result struct {
	SessionID string `json:"session_id"`
	JobsFound int    `json:"jobs_found"`
	JobsNew   int    `json:"jobs_new"`
	Persisted int    `json:"persisted"`
	Skipped   int    `json:"skipped"`
	Errors    int    `json:"errors"`
	Status    string `json:"status"`
}

// Run executes one crawl session. Card-level failures (missing fields,
// storage errors) are counted and skipped; a dead page or browser closes the
// session as failed. Rows persisted before a failure stay persisted.
func (c *Crawler) Run(ctx context.Context) (Result, error) {
	sessionID, err := c.store.StartSession(ctx, c.cfg.Keyword)
	if err != nil {
		return Result{}, fmt.Errorf("start session: %w", err)
	}
	res := Result{SessionID: sessionID}

	searchURL := SearchURL(c.cfg.BaseURL, c.cfg.Keyword, c.cfg.GeoID, c.cfg.EasyApply)
	c.logger.Info("crawl started",
		zap.String("session_id", sessionID),
		zap.String("url", searchURL))

	page, err := c.engine.Navigate(ctx, searchURL)
	if err != nil {
		return c.closeSession(res, nil, fmt.Errorf("navigate %s: %w", searchURL, err))
	}

	// Initial render: wait until the card list shows up.
	var cards []browser.Element
	waitFor(ctx, c.cfg.RenderTimeout, c.cfg.PollInterval, func() bool {
		cards = page.FindAll(c.cfg.Selectors.CardList)
		return len(cards) > 0
	})
	if len(cards) == 0 {
		c.logger.Warn("no listing cards rendered", zap.String("url", searchURL))
	}

	// Persistence runs on its own goroutine so a slow write never stalls the
	// page walk. Sends block when the writer falls behind, which keeps the
	// hand-off at-least-once: a validated record is either written or counted
	// in the error log, never dropped.
	counters := &sessionCounters{}
	pending := make(chan store.Job, 16)
	var g errgroup.Group
	g.Go(func() error {
		for j := range pending {
			wasNew, err := c.store.UpsertJob(ctx, j)
			if err != nil {
				c.logger.Warn("persist job failed", zap.String("job_id", j.JobID), zap.Error(err))
				counters.recordError(fmt.Sprintf("store: job %s: %v", j.JobID, err))
				continue
			}
			counters.recordPersist(wasNew)
			c.hub.Publish(events.JobUpserted(j.JobID, wasNew))
		}
		return nil
	})

	var fatal error
	for _, card := range cards {
		if err := c.limiter.Wait(ctx); err != nil {
			fatal = err
			break
		}
		res.JobsFound++

		// Bring the card into view and select it; the engine failing here
		// means the page is gone, which kills the run.
		if err := card.ScrollIntoView(); err != nil {
			fatal = fmt.Errorf("scroll card %d into view: %w", res.JobsFound, err)
			break
		}
		if err := card.Click(); err != nil {
			fatal = fmt.Errorf("select card %d: %w", res.JobsFound, err)
			break
		}

		// Detail panel renders outside the card once selected; poll for it
		// rather than sleeping. A timeout just means an empty description.
		waitFor(ctx, c.cfg.RenderTimeout, c.cfg.PollInterval, func() bool {
			_, ok := page.Find(c.cfg.Selectors.Description)
			return ok
		})

		candidate := Extract(page, card, c.cfg.Selectors)
		if !Validate(candidate) {
			res.Skipped++
			c.logger.Debug("card skipped: required field missing",
				zap.String("job_id", candidate.JobID),
				zap.String("title", candidate.Title))
			continue
		}

		select {
		case pending <- jobFromCandidate(candidate):
		case <-ctx.Done():
			fatal = ctx.Err()
		}
		if fatal != nil {
			break
		}
	}

	close(pending)
	_ = g.Wait()

	res.Persisted, res.JobsNew, res.Errors = counters.snapshot()
	return c.closeSession(res, counters, fatal)
}

// closeSession finalizes the session row. The write uses a fresh context so
// a cancelled crawl still gets its failure recorded.
func (c *Crawler) closeSession(res Result, counters *sessionCounters, fatal error) (Result, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errorLog string
	if counters != nil {
		errorLog = counters.errorLog()
	}

	res.Status = store.SessionCompleted
	if fatal != nil {
		res.Status = store.SessionFailed
		if errorLog != "" {
			errorLog += "\n"
		}
		errorLog += fatal.Error()
	}

	if err := c.store.EndSession(ctx, res.SessionID, res.JobsFound, res.JobsNew, res.Status, errorLog); err != nil {
		c.logger.Error("end session failed", zap.String("session_id", res.SessionID), zap.Error(err))
	}
	c.hub.Publish(events.SessionFinished(res.SessionID, res.Status, res.JobsFound, res.JobsNew))
	c.logger.Info("crawl finished",
		zap.String("session_id", res.SessionID),
		zap.String("status", res.Status),
		zap.Int("jobs_found", res.JobsFound),
		zap.Int("jobs_new", res.JobsNew),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", res.Errors))
	return res, fatal
}

func jobFromCandidate(c Candidate) store.Job {
	return store.Job{
		JobID:            c.JobID,
		Title:            c.Title,
		Company:          c.Company,
		Location:         c.Location,
		Description:      c.Description,
		JobLink:          c.JobLink,
		HirerName:        c.HirerName,
		HirerProfileLink: c.HirerProfileLink,
		ScrapedAt:        time.Now().UTC(),
		JobStatus:        store.JobActive,
	}
}

// sessionCounters collects writer-side outcomes; the writer goroutine and
// the crawl loop never touch the same fields without the lock.
type sessionCounters struct {
	mu        sync.Mutex
	persisted int
	jobsNew   int
	errs      int
	errLines  []string
}

func (sc *sessionCounters) recordPersist(wasNew bool) {
	sc.mu.Lock()
	sc.persisted++
	if wasNew {
		sc.jobsNew++
	}
	sc.mu.Unlock()
}

func (sc *sessionCounters) recordError(line string) {
	sc.mu.Lock()
	sc.errs++
	sc.errLines = append(sc.errLines, line)
	sc.mu.Unlock()
}

func (sc *sessionCounters) snapshot() (persisted, jobsNew, errs int) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.persisted, sc.jobsNew, sc.errs
}

func (sc *sessionCounters) errorLog() string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return strings.Join(sc.errLines, "\n")
}
