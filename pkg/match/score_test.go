package match

import (
	"fmt"
	"testing"
)

// Tests that the scorer keeps our expected preferences:
// exact match > prefix match > substring match > fuzzy match > junk.
// The exact threshold values are calibration points, not invariants,
// so tests compare orderings rather than pinning floats.

func TestScoreExactMatch(t *testing.T) {
	scorer := NewScorer(DefaultParams())

	cases := []string{
		"yogurt",
		"Greek Yogurt",
		"  Diet Coke ",
		"PEANUT butter",
	}
	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			if got := scorer.Score(s, s); got != 0 {
				t.Errorf("Score(%q, %q) = %v, want 0", s, s, got)
			}
		})
	}
}

func TestScoreNeverNegative(t *testing.T) {
	scorer := NewScorer(DefaultParams())

	// symmetry is NOT a property of this scorer; only non-negativity is
	pairs := [][2]string{
		{"yogurt", "yogurt"},
		{"Greek Yogurt", "yog"},
		{"yog", "Greek Yogurt"},
		{"Diet Coke (can)", "diet coke"},
		{"a", "b"},
		{"", "yogurt"},
		{"yogurt", ""},
		{"", ""},
	}
	for _, p := range pairs {
		if got := scorer.Score(p[0], p[1]); got < 0 {
			t.Errorf("Score(%q, %q) = %v, want >= 0", p[0], p[1], got)
		}
	}
}

func TestScoreEmptyInputSentinel(t *testing.T) {
	scorer := NewScorer(DefaultParams())

	if got := scorer.Score("", "yog"); got < 0.9 {
		t.Errorf("empty candidate should score as no-match, got %v", got)
	}
	if got := scorer.Score("yogurt", ""); got < 0.9 {
		t.Errorf("empty query should score as no-match, got %v", got)
	}
}

func TestScoreOrdering(t *testing.T) {
	scorer := NewScorer(DefaultParams())

	cases := []struct {
		query       string
		better      string
		worse       string
		description string
	}{
		{"yog", "Yogurt", "Egg Noodles", "prefix beats unrelated"},
		{"yog", "Yogurt", "Greek Yogurt", "prefix beats substring"},
		{"coke", "Coke", "Coconut Milk", "exact beats fuzzy"},
		{"banan", "Banana", "Bran Flakes", "near-typo beats distant"},
		{"diet coke", "Diet Coke (can)", "Coke", "full token coverage beats single-token partial"},
		{"greek yogurt", "Plain Greek Yogurt", "Yogurt", "two covered tokens beat one"},
	}
	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			b := scorer.Score(tc.better, tc.query)
			w := scorer.Score(tc.worse, tc.query)
			if b >= w {
				t.Errorf("query %q: Score(%q)=%v should be lower than Score(%q)=%v",
					tc.query, tc.better, b, tc.worse, w)
			}
		})
	}
}

func TestScoreRejectsNonFoodNames(t *testing.T) {
	scorer := NewScorer(DefaultParams())

	junk := []string{
		"Scan to Win!",
		"SWEEPSTAKE entry",
		"12345",
		"x",
		"Gift Card $25",
	}
	for _, name := range junk {
		t.Run(name, func(t *testing.T) {
			if got := scorer.Score(name, "yog"); got < 0.9 {
				t.Errorf("junk name %q scored %v, want forced high score", name, got)
			}
		})
	}
}

func TestTokenCoverage(t *testing.T) {
	scorer := NewScorer(DefaultParams())

	cases := []struct {
		candidate   string
		query       string
		want        float64
		description string
	}{
		{"Greek Yogurt", "greek yogurt", 1, "all tokens covered"},
		{"Coke", "diet coke", 0.5, "one of two tokens"},
		{"Plain Greek Yogurt", "yog", 1, "containment counts"},
		{"Yogurt", "yogurd", 1, "fuzzy token match within cutoff"},
		{"Oatmeal", "diet coke", 0, "nothing covered"},
		{"Oatmeal", "", 0, "empty query"},
	}
	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			got := scorer.TokenCoverage(tc.candidate, tc.query)
			if got != tc.want {
				t.Errorf("TokenCoverage(%q, %q) = %v, want %v", tc.candidate, tc.query, got, tc.want)
			}
		})
	}
}

func TestLooksLikeItemName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"Greek Yogurt", true},
		{"Diet Coke (can)", true},
		{"pb&j", true},
		{"", false},
		{"a", false},
		{"049000050103", false},
		{"Scan to win a prize", false},
		{"Sweepstakes inside", false},
		{"Loyalty Card", false},
		{"Premium Yoga Mat", false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.name), func(t *testing.T) {
			if got := LooksLikeItemName(tc.name); got != tc.want {
				t.Errorf("LooksLikeItemName(%q) = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func BenchmarkScore(b *testing.B) {
	scorer := NewScorer(DefaultParams())
	queries := []string{"yog", "diet coke", "peanut butt", "oat", "gree yogur"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scorer.Score("Plain Greek Yogurt", queries[i%len(queries)])
	}
}
