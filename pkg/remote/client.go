// Package remote talks to the external nutrition database over HTTP and
// normalizes its records into products and suggestions. The upstream is
// slow and noisy; callers are expected to front this client with a cache.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mealbyte/foodserve/pkg/match"
	"github.com/mealbyte/foodserve/pkg/suggest"
)

// Config holds the client settings.
type Config struct {
	// BaseURL of the OpenFoodFacts-compatible API.
	BaseURL string
	// Tag is the provider name stamped onto suggestions as their source.
	Tag string
	// Timeout bounds one HTTP round trip.
	Timeout time.Duration
	// PageSize is how many raw records one search asks for.
	PageSize int
	// RelevanceMax is the worst score at which a record without direct
	// token or substring overlap still counts as relevant to the query.
	RelevanceMax float64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:      "https://world.openfoodfacts.org",
		Tag:          "OpenFoodFacts",
		Timeout:      8 * time.Second,
		PageSize:     20,
		RelevanceMax: 0.55,
	}
}

// Client implements suggest.RemoteSource.
type Client struct {
	httpClient *http.Client
	cfg        Config
	scorer     *match.Scorer
}

// NewClient creates a remote client. The base URL is overridable for tests.
func NewClient(cfg Config, scorer *match.Scorer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		scorer:     scorer,
	}
}

type searchResponse struct {
	Products []productRecord `json:"products"`
}

type lookupResponse struct {
	Status  int           `json:"status"`
	Product productRecord `json:"product"`
}

// Search queries the remote database and returns scored suggestions,
// already filtered down to plausible, macro-bearing, relevant records.
func (c *Client) Search(ctx context.Context, query string) ([]suggest.Scored, error) {
	endpoint := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(query), c.cfg.PageSize)

	var payload searchResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	results := make([]suggest.Scored, 0, len(payload.Products))
	for _, rec := range payload.Products {
		if s := c.toScored(rec, query); s != nil {
			results = append(results, *s)
		}
	}
	log.Debugf("remote search %q: %d/%d records kept", query, len(results), len(payload.Products))
	return results, nil
}

// LookupBarcode resolves a barcode. Unknown codes return (nil, nil);
// errors are transport failures.
func (c *Client) LookupBarcode(ctx context.Context, code string) (*suggest.Product, error) {
	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(code))

	var payload lookupResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if payload.Status != 1 {
		return nil, nil
	}
	product := c.toProduct(payload.Product)
	if product == nil {
		// present upstream but unusable: no macros or a junk name
		return nil, nil
	}
	if product.Barcode == "" {
		product.Barcode = code
	}
	return product, nil
}

// LookupQuery resolves free text to the single best product.
func (c *Client) LookupQuery(ctx context.Context, query string) (*suggest.Product, error) {
	endpoint := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(query), c.cfg.PageSize)

	var payload searchResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	var best *suggest.Product
	bestScore := 0.0
	for _, rec := range payload.Products {
		scored := c.toScored(rec, query)
		if scored == nil {
			continue
		}
		if best == nil || scored.Score < bestScore {
			best = c.toProduct(rec)
			bestScore = scored.Score
		}
	}
	return best, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote fetch: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote fetch: malformed payload: %w", err)
	}
	return nil
}
