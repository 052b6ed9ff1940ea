package suggest

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/mealbyte/foodserve/internal/utils"
	"github.com/mealbyte/foodserve/pkg/match"
)

// historyResultCap bounds how many "Recent" suggestions one query yields.
const historyResultCap = 5

// historyPrefilterLimit bounds the substring prefilter row pull.
const historyPrefilterLimit = 50

// HistorySearch scores the user's own past logged items against a query.
type HistorySearch struct {
	store  HistoryStore
	scorer *match.Scorer
}

// NewHistorySearch wires the read-only history store to the scorer.
func NewHistorySearch(store HistoryStore, scorer *match.Scorer) *HistorySearch {
	return &HistorySearch{store: store, scorer: scorer}
}

// Search returns up to 5 scored suggestions from the user's history.
// Rows arrive newest-first, so name-keyed dedupe favors the latest entry.
func (h *HistorySearch) Search(ctx context.Context, userID, query string) ([]Scored, error) {
	q := utils.Normalize(query)
	if q == "" {
		return nil, nil
	}

	rows, err := h.store.RecentByName(ctx, userID, q, historyPrefilterLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	results := make([]Scored, 0, len(rows))
	for _, row := range rows {
		if !match.LooksLikeItemName(row.Name) {
			log.Debugf("history row %q dropped by item-name filter", row.Name)
			continue
		}
		key := utils.Normalize(row.Name)
		if seen[key] {
			continue
		}
		seen[key] = true

		results = append(results, Scored{
			Suggestion: Suggestion{
				ID:           row.ID,
				Name:         row.Name,
				Barcode:      row.Barcode,
				ServingLabel: row.ServingLabel,
				Source:       SourceRecent,
				Prefill: Macros{
					Calories:     row.Calories,
					Protein:      row.Protein,
					Carbs:        row.Carbs,
					Fats:         row.Fats,
					WeightAmount: row.WeightAmount,
					WeightUnit:   row.WeightUnit,
					Type:         row.Type,
				},
			},
			Score: h.scorer.Score(row.Name, q),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if len(results) > historyResultCap {
		results = results[:historyResultCap]
	}
	return results, nil
}
