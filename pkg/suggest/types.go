// Package suggest is the core of the food logging typeahead: it pulls
// candidates from the user's history, a small quick-add catalog and a
// remote product database, then merges them into one ranked list.
package suggest

import (
	"context"
	"errors"
	"time"

	"github.com/mealbyte/foodserve/pkg/serving"
)

// Source tags surfaced to the caller on every suggestion.
const (
	SourceRecent   = "Recent"
	SourceQuickAdd = "Quick Add"
)

// ItemType distinguishes solids from liquids for prefill purposes.
type ItemType string

const (
	TypeFood   ItemType = "Food"
	TypeLiquid ItemType = "Liquid"
)

// Macros are the values prefilled into the log entry form when the user
// picks a suggestion. All numeric fields are nil when unknown, never zero.
type Macros struct {
	Calories     *float64
	Protein      *float64
	Carbs        *float64
	Fats         *float64
	WeightAmount *float64
	WeightUnit   string
	Type         ItemType
}

// Suggestion is one candidate item offered to the user.
// Deduplication identity is the lower-cased trimmed Name.
type Suggestion struct {
	ID           string
	Name         string
	Barcode      string
	ServingLabel string
	Source       string
	Prefill      Macros
}

// Scored carries a suggestion between a source and the ranker. Score is
// the match dissimilarity (lower is better) and never leaves the package
// boundary toward callers.
type Scored struct {
	Suggestion
	Score float64
}

// Product is a normalized remote (or history) lookup result.
type Product struct {
	Name         string
	Barcode      string
	Calories     *float64
	Protein      *float64
	Carbs        *float64
	Fats         *float64
	WeightAmount *float64
	WeightUnit   serving.Unit
	WeightGrams  *float64
	WeightMl     *float64
}

// HistoryItem is a row from the user's past logged items.
type HistoryItem struct {
	ID           string
	Name         string
	Barcode      string
	ServingLabel string
	Calories     *float64
	Protein      *float64
	Carbs        *float64
	Fats         *float64
	WeightAmount *float64
	WeightUnit   string
	Type         ItemType
	LoggedAt     time.Time
}

// HistoryStore is the read-only port onto the surrounding app's persisted
// log. This subsystem never writes through it.
type HistoryStore interface {
	// RecentByName returns the user's items whose name contains substr
	// case-insensitively, newest first. Under-matching is acceptable;
	// this is a cheap prefilter, not the only source.
	RecentByName(ctx context.Context, userID, substr string, limit int) ([]HistoryItem, error)
	// ByBarcode returns the most recent item logged with the given
	// barcode, or nil when the user never logged that code.
	ByBarcode(ctx context.Context, userID, barcode string) (*HistoryItem, error)
}

// RemoteSource is the port onto the external nutrition database.
type RemoteSource interface {
	// Search returns scored suggestions for a free-text query.
	Search(ctx context.Context, query string) ([]Scored, error)
	// LookupBarcode returns (nil, nil) when the code is unknown upstream;
	// errors are transport failures.
	LookupBarcode(ctx context.Context, code string) (*Product, error)
	// LookupQuery resolves free text to the single best product.
	LookupQuery(ctx context.Context, query string) (*Product, error)
}

// ErrNotFound is terminal for a query: the item does not exist in any
// source. Transport failures are returned as distinct errors so callers
// can retry.
var ErrNotFound = errors.New("suggest: product not found")
