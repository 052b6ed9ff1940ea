// Package client implements the interactive typeahead loop: debounced
// search firing, request supersession, and a small result cache so
// retyping a recent query paints instantly. It sits in front of any
// Searcher, normally the suggest service reached over IPC.
package client

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mealbyte/foodserve/internal/utils"
	"github.com/mealbyte/foodserve/pkg/cache"
	"github.com/mealbyte/foodserve/pkg/suggest"
)

// Searcher is the upstream the controller fires debounced queries at.
type Searcher interface {
	Search(ctx context.Context, query string) ([]suggest.Suggestion, error)
}

// Update is one paint instruction for the UI. Stale marks a cached hint
// shown while the real request is still in flight.
type Update struct {
	Query       string
	Suggestions []suggest.Suggestion
	Stale       bool
}

// ApplyFunc receives updates. Calls arrive from timer goroutines; the
// controller guarantees a superseded request never produces a call.
type ApplyFunc func(Update)

// Config tunes the controller.
type Config struct {
	// Debounce is how long typing must pause before a search fires.
	Debounce time.Duration
	// MinQueryLen below which only catalog prefix suggestions are shown
	// and no network search fires.
	MinQueryLen int
	// CacheTTL, CacheCapacity and WaitBudget configure the client-side
	// result cache.
	CacheTTL      time.Duration
	CacheCapacity int
	WaitBudget    time.Duration
}

// DefaultConfig returns the interactive defaults.
func DefaultConfig() Config {
	return Config{
		Debounce:      250 * time.Millisecond,
		MinQueryLen:   2,
		CacheTTL:      2 * time.Minute,
		CacheCapacity: 50,
		WaitBudget:    700 * time.Millisecond,
	}
}

// Controller debounces keystrokes and discards superseded results.
type Controller struct {
	searcher Searcher
	catalog  *suggest.Catalog
	results  *cache.Cache[[]suggest.Suggestion]
	apply    ApplyFunc
	cfg      Config

	mu    sync.Mutex
	timer *time.Timer
	// gen identifies the newest keystroke; a resolving request whose
	// captured gen is older gets dropped on the floor.
	gen uint64
}

// NewController creates a controller. catalog may be nil, in which case
// short queries produce empty updates instead of prefix suggestions.
func NewController(searcher Searcher, catalog *suggest.Catalog, apply ApplyFunc, cfg Config) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultConfig().Debounce
	}
	if cfg.MinQueryLen <= 0 {
		cfg.MinQueryLen = DefaultConfig().MinQueryLen
	}
	return &Controller{
		searcher: searcher,
		catalog:  catalog,
		apply:    apply,
		cfg:      cfg,
		results: cache.New[[]suggest.Suggestion](cache.Config{
			TTL:        cfg.CacheTTL,
			WaitBudget: cfg.WaitBudget,
			Capacity:   cfg.CacheCapacity,
		}),
	}
}

// OnInput handles one keystroke: it supersedes any pending or in-flight
// search, paints an immediate hint when one is available, and restarts
// the debounce timer.
func (c *Controller) OnInput(query string) {
	q := utils.Normalize(query)

	c.mu.Lock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
	}

	if len([]rune(q)) < c.cfg.MinQueryLen {
		c.timer = nil
		c.mu.Unlock()
		c.apply(Update{Query: q, Suggestions: c.prefixOnly(q)})
		return
	}

	gen := c.gen
	c.timer = time.AfterFunc(c.cfg.Debounce, func() { c.fire(q, gen, false) })
	c.mu.Unlock()

	// paint whatever we already have while the timer runs
	if hinted, ok := c.results.Get(q); ok {
		c.apply(Update{Query: q, Suggestions: hinted, Stale: !c.results.Fresh(q)})
	}
}

// Refresh re-runs the query immediately, bypassing both the debounce
// timer and a fresh cache hit. Used when the user explicitly re-searches.
func (c *Controller) Refresh(query string) {
	q := utils.Normalize(query)
	if len([]rune(q)) < c.cfg.MinQueryLen {
		return
	}
	c.mu.Lock()
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	go c.fire(q, gen, true)
}

// Close cancels any pending debounce timer. In-flight requests are left
// to finish and warm the cache; their results are never applied.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) fire(q string, gen uint64, force bool) {
	fetch := func(ctx context.Context) ([]suggest.Suggestion, error) {
		return c.searcher.Search(ctx, q)
	}
	results, ok, err := c.results.GetOrFetch(context.Background(), q, fetch, force)
	if err != nil {
		// keep whatever hint is already painted
		log.Warnf("search %q failed: %v", q, err)
		return
	}
	if !ok {
		// wait budget elapsed with nothing cached; the fetch is still
		// running and will warm the cache for the next keystroke
		return
	}

	c.mu.Lock()
	superseded := gen != c.gen
	c.mu.Unlock()
	if superseded {
		log.Debugf("discarding superseded results for %q", q)
		return
	}
	c.apply(Update{Query: q, Suggestions: results, Stale: !c.results.Fresh(q)})
}

func (c *Controller) prefixOnly(q string) []suggest.Suggestion {
	if c.catalog == nil || q == "" {
		return nil
	}
	return c.catalog.PrefixSuggestions(q, 10)
}
