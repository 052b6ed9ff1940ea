package suggest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mealbyte/foodserve/pkg/match"
)

// fakeHistoryStore serves canned rows, newest first, the way the real
// store's queries are ordered.
type fakeHistoryStore struct {
	rows        []HistoryItem
	err         error
	recentCalls int
	codeCalls   int
}

func (f *fakeHistoryStore) RecentByName(ctx context.Context, userID, substr string, limit int) ([]HistoryItem, error) {
	f.recentCalls++
	if f.err != nil {
		return nil, f.err
	}
	var out []HistoryItem
	for _, row := range f.rows {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(row.Name), strings.ToLower(substr)) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeHistoryStore) ByBarcode(ctx context.Context, userID, barcode string) (*HistoryItem, error) {
	f.codeCalls++
	if f.err != nil {
		return nil, f.err
	}
	for _, row := range f.rows {
		if row.Barcode == barcode {
			r := row
			return &r, nil
		}
	}
	return nil, nil
}

func fp(v float64) *float64 { return &v }

func newHistorySearch(rows []HistoryItem) (*HistorySearch, *fakeHistoryStore) {
	store := &fakeHistoryStore{rows: rows}
	return NewHistorySearch(store, match.NewScorer(match.DefaultParams())), store
}

func historyRow(id, name string, daysAgo int) HistoryItem {
	return HistoryItem{
		ID:       id,
		Name:     name,
		Type:     TypeFood,
		LoggedAt: time.Now().AddDate(0, 0, -daysAgo),
	}
}

func TestHistorySearchDedupesKeepingNewest(t *testing.T) {
	h, _ := newHistorySearch([]HistoryItem{
		historyRow("3", "Greek Yogurt", 0),
		historyRow("2", "Greek Yogurt Parfait", 1),
		historyRow("1", "Greek Yogurt", 5),
	})

	results, err := h.Search(context.Background(), "u1", "greek yogurt")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 after dedupe: %+v", len(results), results)
	}
	if results[0].Name != "Greek Yogurt" || results[0].ID != "3" {
		t.Errorf("top result = %s (id %s), want the newest Greek Yogurt", results[0].Name, results[0].ID)
	}
	if results[0].Score != 0 {
		t.Errorf("exact match score = %v, want 0", results[0].Score)
	}
	for _, r := range results {
		if r.Source != SourceRecent {
			t.Errorf("%q tagged %q, want %q", r.Name, r.Source, SourceRecent)
		}
	}
}

func TestHistorySearchCap(t *testing.T) {
	var rows []HistoryItem
	for i := 0; i < 8; i++ {
		rows = append(rows, historyRow(fmt.Sprintf("%d", i), fmt.Sprintf("Yogurt Bowl %d", i), i))
	}
	h, _ := newHistorySearch(rows)

	results, err := h.Search(context.Background(), "u1", "yogurt")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != historyResultCap {
		t.Errorf("got %d results, want the cap of %d", len(results), historyResultCap)
	}
}

func TestHistorySearchDropsJunkNames(t *testing.T) {
	h, _ := newHistorySearch([]HistoryItem{
		historyRow("1", "Scan to win yogurt prizes", 0),
		historyRow("2", "Greek Yogurt", 1),
	})

	results, err := h.Search(context.Background(), "u1", "yogurt")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Greek Yogurt" {
		t.Errorf("junk name survived: %+v", results)
	}
}

func TestHistorySearchPrefillCarriesMacros(t *testing.T) {
	row := historyRow("1", "Oatmeal", 0)
	row.Calories = fp(150)
	row.Protein = fp(5)
	row.WeightAmount = fp(40)
	row.WeightUnit = "g"
	h, _ := newHistorySearch([]HistoryItem{row})

	results, err := h.Search(context.Background(), "u1", "oatmeal")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	got := results[0].Prefill
	if got.Calories == nil || *got.Calories != 150 {
		t.Errorf("Calories = %v", got.Calories)
	}
	if got.Protein == nil || *got.Protein != 5 {
		t.Errorf("Protein = %v", got.Protein)
	}
	if got.WeightAmount == nil || *got.WeightAmount != 40 || got.WeightUnit != "g" {
		t.Errorf("weight = %v %s", got.WeightAmount, got.WeightUnit)
	}
}

func TestHistorySearchEmptyQuery(t *testing.T) {
	h, store := newHistorySearch([]HistoryItem{historyRow("1", "Oatmeal", 0)})
	results, err := h.Search(context.Background(), "u1", "   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results != nil {
		t.Errorf("got %+v, want nil", results)
	}
	if store.recentCalls != 0 {
		t.Errorf("store queried %d times for an empty query", store.recentCalls)
	}
}
