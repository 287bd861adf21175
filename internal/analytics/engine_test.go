package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobtrack-engine/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, time.Hour), st
}

func addJob(t *testing.T, st *store.Store, id string) {
	t.Helper()
	_, err := st.UpsertJob(context.Background(), store.Job{
		JobID:    id,
		Title:    "Engineer",
		Company:  "Acme",
		Location: "Remote",
		JobLink:  "https://x.test/jobs/view/" + id,
	})
	require.NoError(t, err)
}

func TestEngineServesStaleUntilInvalidated(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	addJob(t, st, "j1")
	stats, err := e.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalJobs)

	// a write behind the cache's back is not visible within the TTL
	addJob(t, st, "j2")
	stats, err = e.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalJobs)

	e.InvalidateAll()
	stats, err = e.DashboardStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalJobs)
}

func TestEngineKeysByParameters(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	addJob(t, st, "j1")
	_, err := st.UpsertJob(ctx, store.Job{
		JobID: "j2", Title: "Engineer", Company: "Globex",
		Location: "Remote", JobLink: "https://x.test/jobs/view/j2",
	})
	require.NoError(t, err)

	one, err := e.TopCompanies(ctx, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)

	// a different limit is a different cache entry, not a stale replay
	all, err := e.TopCompanies(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestEnginePassthroughAggregates(t *testing.T) {
	e, st := newTestEngine(t)
	ctx := context.Background()

	addJob(t, st, "j1")
	id, err := st.CreateApplication(ctx, "j1", "easy_apply")
	require.NoError(t, err)
	require.NoError(t, st.UpdateApplicationStatus(ctx, id, store.AppSubmitted, ""))

	dist, err := e.StatusDistribution(ctx)
	require.NoError(t, err)
	require.Len(t, dist, 1)
	require.Equal(t, store.AppSubmitted, dist[0].Status)

	days, err := e.ApplicationsOverTime(ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 1)

	methods, err := e.MethodBreakdown(ctx)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	require.Equal(t, "easy_apply", methods[0].Method)
}
