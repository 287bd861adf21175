// Package analytics is the read side over the store: every aggregate the
// reporting layer renders, memoized behind a TTL cache.
package analytics

import (
	"context"
	"fmt"
	"time"

	"jobtrack-engine/internal/store"
)

type Engine struct {
	store *store.Store
	cache *Cache
}

func New(st *store.Store, ttl time.Duration) *Engine {
	return &Engine{store: st, cache: NewCache(ttl)}
}

// InvalidateAll drops every cached aggregate; called after writes that
// should be visible on the next read.
func (e *Engine) InvalidateAll() {
	e.cache.InvalidateAll()
}

// cached runs fn on a cache miss and memoizes its result under key.
func cached[T any](e *Engine, key string, fn func() (T, error)) (T, error) {
	if v, ok := e.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	t, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}
	e.cache.Set(key, t)
	return t, nil
}

func (e *Engine) DashboardStats(ctx context.Context) (store.DashboardStats, error) {
	return cached(e, "dashboard_stats", func() (store.DashboardStats, error) {
		return e.store.DashboardStats(ctx)
	})
}

func (e *Engine) StatusDistribution(ctx context.Context) ([]store.StatusCount, error) {
	return cached(e, "status_distribution", func() ([]store.StatusCount, error) {
		return e.store.StatusDistribution(ctx)
	})
}

func (e *Engine) ApplicationsOverTime(ctx context.Context, days int) ([]store.DayCount, error) {
	return cached(e, fmt.Sprintf("apps_over_time:%d", days), func() ([]store.DayCount, error) {
		return e.store.ApplicationsOverTime(ctx, days)
	})
}

func (e *Engine) TopCompanies(ctx context.Context, limit int) ([]store.CompanyJobs, error) {
	return cached(e, fmt.Sprintf("top_companies:%d", limit), func() ([]store.CompanyJobs, error) {
		return e.store.TopCompanies(ctx, limit)
	})
}

func (e *Engine) SuccessRateByCompany(ctx context.Context, minApps, limit int) ([]store.CompanySuccess, error) {
	return cached(e, fmt.Sprintf("success_rate:%d:%d", minApps, limit), func() ([]store.CompanySuccess, error) {
		return e.store.SuccessRateByCompany(ctx, minApps, limit)
	})
}

func (e *Engine) CompanyRollups(ctx context.Context, search string, minJobs, limit int) ([]store.CompanyRollup, error) {
	return cached(e, fmt.Sprintf("company_rollups:%s:%d:%d", search, minJobs, limit), func() ([]store.CompanyRollup, error) {
		return e.store.CompanyRollups(ctx, search, minJobs, limit)
	})
}

func (e *Engine) LocationCounts(ctx context.Context, limit int) ([]store.LocationCount, error) {
	return cached(e, fmt.Sprintf("locations:%d", limit), func() ([]store.LocationCount, error) {
		return e.store.LocationCounts(ctx, limit)
	})
}

func (e *Engine) QuestionFrequencies(ctx context.Context, limit int) ([]store.QuestionStat, error) {
	return cached(e, fmt.Sprintf("questions:%d", limit), func() ([]store.QuestionStat, error) {
		return e.store.QuestionFrequencies(ctx, limit)
	})
}

func (e *Engine) MethodBreakdown(ctx context.Context) ([]store.MethodStat, error) {
	return cached(e, "methods", func() ([]store.MethodStat, error) {
		return e.store.MethodBreakdown(ctx)
	})
}

func (e *Engine) ActivityPattern(ctx context.Context, days int) ([]store.ActivityBucket, error) {
	return cached(e, fmt.Sprintf("activity:%d", days), func() ([]store.ActivityBucket, error) {
		return e.store.ActivityPattern(ctx, days)
	})
}

func (e *Engine) SessionPerformance(ctx context.Context) (store.SessionStats, error) {
	return cached(e, "session_performance", func() (store.SessionStats, error) {
		return e.store.SessionPerformance(ctx)
	})
}
