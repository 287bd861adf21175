package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtrack-engine/internal/browser"
	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/scrape"
	"jobtrack-engine/internal/store"
)

func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run one discovery session against the configured search",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, st, err := setup(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			defer logger.Sync()

			if query, _ := cmd.Flags().GetString("query"); query != "" {
				cfg.Search.Query = query
			}
			if cfg.Search.Query == "" {
				return fmt.Errorf("no search query: set search.query in config or pass --query")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := runCrawl(ctx, cfg, logger, st, nil)
			if err != nil {
				return err
			}
			fmt.Printf("session %s: %s, %d cards, %d new, %d skipped, %d errors\n",
				res.SessionID, res.Status, res.JobsFound, res.JobsNew, res.Skipped, res.Errors)
			return nil
		},
	}
	cmd.Flags().String("query", "", "override the configured search query")
	return cmd
}

// runCrawl owns the per-run plumbing shared by the crawl command, the serve
// schedule, and POST /crawl/run: advisory lock, browser connection, session.
func runCrawl(ctx context.Context, cfg config.Config, logger *zap.Logger, st *store.Store, hub *events.Hub) (scrape.Result, error) {
	// One crawl at a time per data dir. Advisory only: another process
	// ignoring the lock still gets correct upsert/session semantics.
	lock := flock.New(filepath.Join(cfg.App.DataDir, "crawl.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return scrape.Result{}, fmt.Errorf("crawl lock: %w", err)
	}
	if !ok {
		return scrape.Result{}, fmt.Errorf("another crawl is already running (lock held)")
	}
	defer lock.Unlock()

	engine, err := browser.ConnectRod(cfg.Browser.ControlURL, cfg.Browser.Headless, cfg.PageTimeout())
	if err != nil {
		return scrape.Result{}, err
	}
	defer engine.Close()

	crawler := scrape.NewCrawler(engine, st, hub, logger, scrape.Config{
		BaseURL:       cfg.Search.BaseURL,
		Keyword:       cfg.Search.Query,
		GeoID:         cfg.Search.GeoID,
		EasyApply:     cfg.Search.EasyApply,
		CardDelay:     cfg.CardDelay(),
		RenderTimeout: cfg.RenderTimeout(),
		PollInterval:  cfg.PollInterval(),
	})

	res, err := crawler.Run(ctx)
	if err != nil {
		// The session row recorded the failure; the caller decides whether
		// the process should report it as fatal.
		logger.Error("crawl failed", zap.String("session_id", res.SessionID), zap.Error(err))
	}
	return res, err
}
