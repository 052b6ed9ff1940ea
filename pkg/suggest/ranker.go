package suggest

import (
	"sort"
	"strings"

	"github.com/mealbyte/foodserve/internal/utils"
	"github.com/mealbyte/foodserve/pkg/match"
)

// RankParams holds the merger's tuned constants; calibration values, not
// derived ones. Build from DefaultRankParams and override via config.
type RankParams struct {
	// Source biases applied before merging. Negative prefers the source
	// on ties; local and catalog answers cost no network round trip,
	// remote answers are unvetted.
	LocalBias   float64
	CatalogBias float64
	RemoteBias  float64
	// MaxResults caps the final list.
	MaxResults int
	// ScoreCut keeps items scoring at or below it when any exist.
	ScoreCut float64
	// CoverageEpsilon: coverage differences above it order items before
	// score does.
	CoverageEpsilon float64
	// Coverage floors for multi-token queries, applied only when at least
	// one candidate meets them.
	CoverageTwoTokens   float64
	CoverageThreeTokens float64
}

// DefaultRankParams returns the calibrated defaults.
func DefaultRankParams() RankParams {
	return RankParams{
		LocalBias:           -0.1,
		CatalogBias:         -0.15,
		RemoteBias:          0.2,
		MaxResults:          10,
		ScoreCut:            0.7,
		CoverageEpsilon:     0.05,
		CoverageTwoTokens:   0.55,
		CoverageThreeTokens: 0.65,
	}
}

// Ranker merges per-source results into the final suggestion list.
type Ranker struct {
	p      RankParams
	scorer *match.Scorer
}

// NewRanker creates a ranker sharing the service's scorer.
func NewRanker(p RankParams, scorer *match.Scorer) *Ranker {
	return &Ranker{p: p, scorer: scorer}
}

type ranked struct {
	Scored
	coverage float64
	exact    bool
}

// Rank merges local, catalog and remote results, deduplicates by
// normalized name, orders by coverage then biased score with exact name
// matches pinned to the front, and filters. It never returns an empty
// list if any candidate at all survived per-source filtering.
func (r *Ranker) Rank(query string, local, catalog, remote []Scored) []Suggestion {
	q := utils.Normalize(query)

	merged := make([]ranked, 0, len(local)+len(catalog)+len(remote))
	seen := make(map[string]bool)

	// merge order matters: first occurrence wins the dedupe, so the
	// better-biased sources shadow remote duplicates
	add := func(items []Scored, bias float64) {
		for _, item := range items {
			key := utils.Normalize(item.Name)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, ranked{
				Scored:   Scored{Suggestion: item.Suggestion, Score: item.Score + bias},
				coverage: r.scorer.TokenCoverage(item.Name, q),
				exact:    key == q,
			})
		}
	}
	add(local, r.p.LocalBias)
	add(catalog, r.p.CatalogBias)
	add(remote, r.p.RemoteBias)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.exact != b.exact {
			return a.exact
		}
		if diff := a.coverage - b.coverage; diff > r.p.CoverageEpsilon {
			return true
		} else if diff < -r.p.CoverageEpsilon {
			return false
		}
		return a.Score < b.Score
	})

	kept := r.filter(merged, q)

	if len(kept) > r.p.MaxResults {
		kept = kept[:r.p.MaxResults]
	}
	out := make([]Suggestion, len(kept))
	for i, item := range kept {
		out[i] = item.Suggestion // strips internal scoring fields
	}
	return out
}

// filter applies the score cut and the multi-token coverage floor, each
// relaxing back to the unfiltered ordering rather than returning nothing.
func (r *Ranker) filter(items []ranked, q string) []ranked {
	kept := items
	if scored := keepIf(items, func(it ranked) bool { return it.Score <= r.p.ScoreCut }); len(scored) > 0 {
		kept = scored
	}

	tokens := len(strings.Fields(q))
	if tokens >= 2 {
		floor := r.p.CoverageTwoTokens
		if tokens >= 3 {
			floor = r.p.CoverageThreeTokens
		}
		if covered := keepIf(kept, func(it ranked) bool { return it.coverage >= floor }); len(covered) > 0 {
			kept = covered
		}
	}
	return kept
}

func keepIf(items []ranked, pred func(ranked) bool) []ranked {
	var out []ranked
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}
