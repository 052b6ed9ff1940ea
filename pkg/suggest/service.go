package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mealbyte/foodserve/internal/utils"
	"github.com/mealbyte/foodserve/pkg/cache"
	"github.com/mealbyte/foodserve/pkg/serving"
)

// Service exposes the two read operations the surrounding CRUD app calls:
// Search and Lookup. Everything behind them stays internal.
type Service struct {
	history *HistorySearch
	catalog *Catalog
	remote  RemoteSource
	ranker  *Ranker

	// the service owns its two caches; one per upstream being fronted
	searchCache  *cache.Cache[[]Scored]
	barcodeCache *cache.Cache[*Product]
}

// NewService wires the sources together. history and remote may be nil;
// the corresponding source then contributes nothing.
func NewService(history *HistorySearch, catalog *Catalog, remote RemoteSource, ranker *Ranker, searchCache *cache.Cache[[]Scored], barcodeCache *cache.Cache[*Product]) *Service {
	return &Service{
		history:      history,
		catalog:      catalog,
		remote:       remote,
		ranker:       ranker,
		searchCache:  searchCache,
		barcodeCache: barcodeCache,
	}
}

// Search merges history, catalog and the cached remote source into one
// ranked suggestion list. Remote trouble degrades to fewer suggestions,
// never to an error.
func (s *Service) Search(ctx context.Context, userID, query string) ([]Suggestion, error) {
	q := utils.Normalize(query)
	if q == "" {
		return nil, nil
	}

	var local []Scored
	if s.history != nil {
		var err error
		local, err = s.history.Search(ctx, userID, q)
		if err != nil {
			log.Warnf("history search failed for user %s: %v", userID, err)
			local = nil
		}
	}

	catalog := s.catalog.Search(q)
	remote := s.searchRemote(ctx, q)

	return s.ranker.Rank(q, local, catalog, remote), nil
}

func (s *Service) searchRemote(ctx context.Context, q string) []Scored {
	if s.remote == nil || s.searchCache == nil {
		return nil
	}
	results, ok, err := s.searchCache.GetOrFetch(ctx, q, func(ctx context.Context) ([]Scored, error) {
		return s.remote.Search(ctx, q)
	}, false)
	if err != nil {
		log.Debugf("remote search for %q contributed nothing: %v", q, err)
		return nil
	}
	if !ok {
		return nil
	}
	return results
}

// LookupRequest is the argument to Lookup. Barcode takes priority over
// free text when both are given.
type LookupRequest struct {
	Barcode string
	Query   string
}

// Lookup resolves a barcode or free text to one normalized product.
// ErrNotFound is terminal; any other error is a transport failure the
// caller may retry.
func (s *Service) Lookup(ctx context.Context, userID string, req LookupRequest) (*Product, error) {
	if code := strings.TrimSpace(req.Barcode); code != "" {
		return s.lookupBarcode(ctx, userID, code)
	}
	if q := utils.Normalize(req.Query); q != "" {
		return s.lookupQuery(ctx, q)
	}
	return nil, ErrNotFound
}

// lookupBarcode checks the user's own history before going remote: a
// previously logged code already carries the macros the user trusts,
// and costs no network round trip.
func (s *Service) lookupBarcode(ctx context.Context, userID, code string) (*Product, error) {
	if s.history != nil {
		item, err := s.history.store.ByBarcode(ctx, userID, code)
		if err != nil {
			log.Warnf("history barcode check failed for %s: %v", code, err)
		} else if item != nil {
			return productFromHistory(item), nil
		}
	}

	if s.remote == nil || s.barcodeCache == nil {
		return nil, ErrNotFound
	}
	product, ok, err := s.barcodeCache.GetOrFetch(ctx, code, func(ctx context.Context) (*Product, error) {
		return s.remote.LookupBarcode(ctx, code)
	}, false)
	if err != nil {
		return nil, fmt.Errorf("barcode lookup %s: %w", code, err)
	}
	if !ok || product == nil {
		// a cached nil is a remembered "not found", also worth keeping
		return nil, ErrNotFound
	}
	return product, nil
}

// lookupQuery resolves free text to one product through the barcode
// cache; products are products, whichever key found them. Query keys get
// a prefix so they can never collide with a digit-only barcode.
func (s *Service) lookupQuery(ctx context.Context, q string) (*Product, error) {
	if s.remote == nil || s.barcodeCache == nil {
		return nil, ErrNotFound
	}
	product, ok, err := s.barcodeCache.GetOrFetch(ctx, "q "+q, func(ctx context.Context) (*Product, error) {
		return s.remote.LookupQuery(ctx, q)
	}, false)
	if err != nil {
		return nil, fmt.Errorf("query lookup %q: %w", q, err)
	}
	if !ok || product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

func productFromHistory(item *HistoryItem) *Product {
	p := &Product{
		Name:     item.Name,
		Barcode:  item.Barcode,
		Calories: item.Calories,
		Protein:  item.Protein,
		Carbs:    item.Carbs,
		Fats:     item.Fats,
	}
	if item.WeightAmount != nil {
		p.WeightAmount = item.WeightAmount
		p.WeightUnit = serving.Unit(item.WeightUnit)
		switch p.WeightUnit {
		case serving.Grams:
			p.WeightGrams = item.WeightAmount
		case serving.Milliliters:
			p.WeightMl = item.WeightAmount
		}
	}
	return p
}
