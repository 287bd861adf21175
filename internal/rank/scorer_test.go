package rank

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/store"
)

func testRules() config.Scoring {
	return config.Scoring{
		TitleRules: []config.Rule{
			{Tag: "golang", Any: []string{"go ", "golang"}, Weight: 10},
			{Tag: "senior", Any: []string{"senior", "staff"}, Weight: 5},
		},
		KeywordRules: []config.Rule{
			{Tag: "infra", Any: []string{"kubernetes", "terraform"}, Weight: 3},
		},
		Penalties: []config.Rule{
			{Any: []string{"clearance required"}, Weight: -20},
		},
	}
}

func TestKeywordScorer(t *testing.T) {
	s := NewKeywordScorer(testRules())

	score, tags := s.Score(store.Job{
		Title:       "Senior Golang Engineer",
		Description: "Kubernetes and Terraform day to day.",
	})
	require.Equal(t, 18, score)
	require.Equal(t, []string{"golang", "senior", "infra"}, tags)

	// a rule counts once no matter how many needles match
	score, _ = s.Score(store.Job{Title: "Golang Go Engineer"})
	require.Equal(t, 10, score)

	score, tags = s.Score(store.Job{
		Title:       "Golang Engineer",
		Description: "Active clearance required.",
	})
	require.Equal(t, -10, score)
	require.Equal(t, []string{"golang"}, tags)

	score, tags = s.Score(store.Job{Title: "Account Manager"})
	require.Zero(t, score)
	require.Empty(t, tags)
}

func TestRankOrdersBestFirst(t *testing.T) {
	s := NewKeywordScorer(testRules())
	jobs := []store.Job{
		{JobID: "j1", Title: "Account Manager"},
		{JobID: "j2", Title: "Senior Golang Engineer"},
		{JobID: "j3", Title: "Golang Engineer"},
	}

	ranked := Rank(s, jobs)
	require.Len(t, ranked, 3)
	require.Equal(t, "j2", ranked[0].JobID)
	require.Equal(t, 15, ranked[0].Score)
	require.Equal(t, "j3", ranked[1].JobID)
	require.Equal(t, "j1", ranked[2].JobID)
}

func TestRankStableOnTies(t *testing.T) {
	s := NewKeywordScorer(config.Scoring{})
	jobs := []store.Job{{JobID: "newest"}, {JobID: "older"}}

	ranked := Rank(s, jobs)
	require.Equal(t, "newest", ranked[0].JobID)
	require.Equal(t, "older", ranked[1].JobID)
}
