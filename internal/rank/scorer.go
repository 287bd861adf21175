// Package rank scores stored jobs for relevance. Scoring is configuration,
// not code: keyword rules with weights live in the user config, so tuning
// what "relevant" means never needs a rebuild.
package rank

import (
	"sort"
	"strings"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/store"
)

// Scorer assigns a relevance score and the matched rule tags to a job.
type Scorer interface {
	Score(j store.Job) (score int, tags []string)
}

// ScoredJob pairs a job with its relevance score for the ranked listing.
type ScoredJob struct {
	store.Job
	Score int      `json:"score"`
	Tags  []string `json:"tags,omitempty"`
}

// KeywordScorer scores against the configured rule sets. Title rules and
// keyword rules add weight once per matched rule; penalties subtract via
// negative weights and carry no tags.
type KeywordScorer struct {
	rules config.Scoring
}

func NewKeywordScorer(rules config.Scoring) KeywordScorer {
	return KeywordScorer{rules: rules}
}

func (s KeywordScorer) Score(j store.Job) (int, []string) {
	text := strings.ToLower(j.Title + " " + j.Description)

	score := 0
	var tags []string

	apply := func(rules []config.Rule) {
		for _, r := range rules {
			for _, needle := range r.Any {
				if strings.Contains(text, strings.ToLower(needle)) {
					score += r.Weight
					if r.Tag != "" {
						tags = append(tags, r.Tag)
					}
					break
				}
			}
		}
	}

	apply(s.rules.TitleRules)
	apply(s.rules.KeywordRules)
	apply(s.rules.Penalties)

	return score, uniq(tags)
}

// Rank scores every job and returns them ordered best-first. Ties keep the
// incoming order, which ListJobs already has as newest-first.
func Rank(scorer Scorer, jobs []store.Job) []ScoredJob {
	out := make([]ScoredJob, 0, len(jobs))
	for _, j := range jobs {
		score, tags := scorer.Score(j)
		out = append(out, ScoredJob{Job: j, Score: score, Tags: tags})
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].Score > out[k].Score })
	return out
}

func uniq(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
