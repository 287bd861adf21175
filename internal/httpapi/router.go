// Package httpapi is the read surface the reporting layer consumes plus the
// handful of write actions an operator triggers: open/retry applications,
// report outcomes, kick off a crawl.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"jobtrack-engine/internal/analytics"
	"jobtrack-engine/internal/events"
	"jobtrack-engine/internal/rank"
	"jobtrack-engine/internal/scrape"
	"jobtrack-engine/internal/store"
	"jobtrack-engine/internal/track"
)

type Deps struct {
	Store     *store.Store
	Analytics *analytics.Engine
	Tracker   *track.Tracker
	Hub       *events.Hub
	Logger    *zap.Logger

	// Scorer backs GET /jobs/ranked; nil disables the route.
	Scorer rank.Scorer

	// RunCrawl triggers one crawl session; nil disables POST /crawl/run.
	RunCrawl func(ctx context.Context) (scrape.Result, error)
}

type server struct {
	Deps
}

func NewRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	s := &server{Deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/health", s.health)

	r.Get("/jobs", s.listJobs)
	if d.Scorer != nil {
		r.Get("/jobs/ranked", s.rankedJobs)
	}
	r.Get("/jobs/{jobID}", s.getJob)

	r.Get("/applications", s.listApplications)
	r.Post("/applications", s.createApplication)
	r.Get("/applications/{id}", s.getApplication)
	r.Post("/applications/{id}/outcome", s.submitOutcome)
	r.Post("/applications/{id}/retry", s.retryApplication)
	r.Post("/applications/{id}/answers", s.recordAnswer)

	r.Get("/sessions", s.listSessions)

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/stats", s.dashboardStats)
		r.Get("/status-distribution", s.statusDistribution)
		r.Get("/timeline", s.timeline)
		r.Get("/companies", s.topCompanies)
		r.Get("/company-rollups", s.companyRollups)
		r.Get("/success-rates", s.successRates)
		r.Get("/locations", s.locations)
		r.Get("/questions", s.questions)
		r.Get("/methods", s.methods)
		r.Get("/activity", s.activity)
		r.Get("/sessions", s.sessionPerformance)
	})

	if d.RunCrawl != nil {
		r.Post("/crawl/run", s.runCrawl)
	}
	r.Get("/events", s.serveSSE)

	return r
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
