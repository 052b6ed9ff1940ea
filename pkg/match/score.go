// Package match implements the approximate string scoring used to rank
// food suggestions against a partially typed query.
//
// Scores are dissimilarities: 0 is an exact match, anything near 1 or above
// is noise. The constants here are tuned values carried over from the
// original heuristic, not derived; treat them as calibration points.
package match

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mealbyte/foodserve/internal/utils"
)

// Params holds the tuned scoring constants. Zero values are never valid;
// build from DefaultParams and override individual fields via config.
type Params struct {
	// NoMatchScore is returned when either side is empty after trimming.
	NoMatchScore float64
	// RejectScore is forced onto candidates failing the item-name filter.
	RejectScore float64
	// PrefixBonus is subtracted when the candidate starts with the query.
	PrefixBonus float64
	// SubstringBonus is subtracted when the candidate merely contains it.
	SubstringBonus float64
	// CoverageBonusMax scales the score reduction for token coverage.
	CoverageBonusMax float64
	// CoveragePenaltyMax scales the penalty for multi-token queries whose
	// tokens are only partially covered by the candidate.
	CoveragePenaltyMax float64
	// TokenMatchCutoff is the max normalized edit distance at which two
	// tokens of length >= MinFuzzyTokenLen still count as matching.
	TokenMatchCutoff float64
	// MinFuzzyTokenLen gates fuzzy token equality; shorter tokens must
	// match exactly or by containment.
	MinFuzzyTokenLen int
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		NoMatchScore:       0.95,
		RejectScore:        1.5,
		PrefixBonus:        0.15,
		SubstringBonus:     0.10,
		CoverageBonusMax:   0.25,
		CoveragePenaltyMax: 0.5,
		TokenMatchCutoff:   0.35,
		MinFuzzyTokenLen:   3,
	}
}

// Scorer scores candidate item names against queries.
type Scorer struct {
	p Params
}

// NewScorer creates a scorer with the given params.
func NewScorer(p Params) *Scorer {
	return &Scorer{p: p}
}

// Score returns a dissimilarity in roughly [0, 1.5]; lower is better.
// Not symmetric: the prefix/substring/coverage terms all read the
// candidate against the query, never the other way around.
func (s *Scorer) Score(candidate, query string) float64 {
	cand := utils.Normalize(candidate)
	q := utils.Normalize(query)

	if cand == "" || q == "" {
		return s.p.NoMatchScore
	}
	if !LooksLikeItemName(candidate) {
		return s.p.RejectScore
	}
	if cand == q {
		return 0
	}

	dist := normDistance(cand, q)

	// A multi-word query should still land on the best single word of the
	// candidate ("greek yog" -> "yogurt").
	candTokens := strings.Fields(cand)
	queryTokens := strings.Fields(q)
	for _, qt := range queryTokens {
		for _, ct := range candTokens {
			if d := normDistance(ct, qt); d < dist {
				dist = d
			}
		}
	}

	coverage := s.coverage(candTokens, queryTokens)

	score := dist
	if strings.HasPrefix(cand, q) {
		score -= s.p.PrefixBonus
	} else if strings.Contains(cand, q) {
		score -= s.p.SubstringBonus
	}
	score -= s.p.CoverageBonusMax * coverage

	// Edit distance alone makes single-word partials look deceptively good
	// against multi-word queries; charge for every uncovered query token.
	if len(queryTokens) > 1 && coverage < 1 {
		score += (1 - coverage) * s.p.CoveragePenaltyMax
	}

	if score < 0 {
		score = 0
	}
	return score
}

// TokenCoverage returns the fraction of query tokens that find an
// approximate match among the candidate's tokens, in [0, 1].
func (s *Scorer) TokenCoverage(candidate, query string) float64 {
	return s.coverage(utils.Tokens(candidate), utils.Tokens(query))
}

func (s *Scorer) coverage(candTokens, queryTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	matched := 0
	for _, qt := range queryTokens {
		for _, ct := range candTokens {
			if s.tokensMatch(ct, qt) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(queryTokens))
}

// tokensMatch: equal, containment either way, or close enough by edit
// distance when both tokens are long enough to make fuzziness meaningful.
func (s *Scorer) tokensMatch(ct, qt string) bool {
	if ct == qt {
		return true
	}
	if strings.Contains(ct, qt) || strings.Contains(qt, ct) {
		return true
	}
	if len(ct) >= s.p.MinFuzzyTokenLen && len(qt) >= s.p.MinFuzzyTokenLen {
		return normDistance(ct, qt) <= s.p.TokenMatchCutoff
	}
	return false
}

// normDistance is the Levenshtein distance divided by the longer length.
func normDistance(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	return float64(fuzzy.LevenshteinDistance(a, b)) / float64(longest)
}
