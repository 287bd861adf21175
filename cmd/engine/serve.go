package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtrack-engine/internal/analytics"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/httpapi"
	"jobtrack-engine/internal/rank"
	"jobtrack-engine/internal/scheduler"
	"jobtrack-engine/internal/scrape"
	"jobtrack-engine/internal/track"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the reporting API, with scheduled crawls if configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, st, err := setup(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			defer logger.Sync()

			hub := events.NewHub()
			engine := analytics.New(st, cfg.CacheTTL())
			tracker := track.New(st, logger)

			runOnce := func(ctx context.Context) (scrape.Result, error) {
				return runCrawl(ctx, cfg, logger, st, hub)
			}

			router := httpapi.NewRouter(httpapi.Deps{
				Store:     st,
				Analytics: engine,
				Tracker:   tracker,
				Hub:       hub,
				Logger:    logger,
				Scorer:    rank.NewKeywordScorer(cfg.Scoring),
				RunCrawl:  runOnce,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.Crawl.Schedule != "" {
				sched := scheduler.New(ctx, logger)
				err := sched.Add(cfg.Crawl.Schedule, "crawl", func(ctx context.Context) error {
					_, err := runOnce(ctx)
					engine.InvalidateAll()
					return err
				})
				if err != nil {
					return err
				}
				sched.Start()
				defer sched.Stop()
			}

			addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			logger.Info("engine listening", zap.String("addr", addr), zap.String("data_dir", cfg.App.DataDir))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
