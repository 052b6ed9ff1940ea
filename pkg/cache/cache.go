// Package cache provides a keyed TTL cache with coalesced fetches and a
// bounded wait against slow upstreams.
//
// One instance fronts exactly one upstream. The server process owns two
// (free-text search and barcode lookup), a typeahead client session owns a
// third; each is an explicit struct passed to whoever needs it, never
// ambient state.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// Config sizes one cache instance to its upstream's volatility.
type Config struct {
	// TTL is how long a stored value counts as fresh.
	TTL time.Duration
	// WaitBudget bounds how long GetOrFetch blocks on an in-flight fetch.
	// When it elapses the caller gets whatever is cached (possibly stale,
	// possibly nothing) and the fetch keeps running in the background.
	// Zero means wait for the fetch.
	WaitBudget time.Duration
	// Capacity bounds the entry count; oldest-inserted keys are evicted
	// first. Zero means unbounded.
	Capacity int
}

// FetchFunc loads the value for a key from the upstream.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// Cache is a TTL cache with at most one in-flight fetch per key.
type Cache[V any] struct {
	cfg     Config
	mu      sync.Mutex
	entries map[string]*entry[V]
	order   []string // insertion order, oldest first
	group   singleflight.Group
}

type entry[V any] struct {
	data      V
	expiresAt time.Time
}

// New creates a cache instance.
func New[V any](cfg Config) *Cache[V] {
	return &Cache[V]{
		cfg:     cfg,
		entries: make(map[string]*entry[V]),
	}
}

// Get is a non-blocking peek. Stale data is still returned; the second
// result only reports whether any data exists for the key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.data, true
	}
	var zero V
	return zero, false
}

// Fresh reports whether the key holds data younger than the TTL.
func (c *Cache[V]) Fresh(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return ok && time.Now().Before(e.expiresAt)
}

// Len returns the current entry count.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrFetch returns the value for key, fetching it from the upstream when
// missing or expired. Concurrent callers for the same key share one fetch.
// forceRefresh bypasses a fresh hit and fetches anyway.
//
// The returned bool reports whether a value is present: a timed-out wait
// with nothing cached yields (zero, false, nil), a fetch failure with a
// stale value yields (stale, true, nil), and a fetch failure with nothing
// cached propagates the error.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch FetchFunc[V], forceRefresh bool) (V, bool, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && time.Now().Before(e.expiresAt) && !forceRefresh {
		data := e.data
		c.mu.Unlock()
		return data, true, nil
	}
	c.mu.Unlock()

	// The fetch deliberately survives caller cancellation: an abandoned
	// keystroke still warms the cache for the next identical query.
	bg := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		v, err := fetch(bg)
		if err != nil {
			log.Debugf("cache fetch failed for %q: %v", key, err)
			return nil, err
		}
		c.store(key, v)
		return v, nil
	})

	var deadline <-chan time.Time
	if c.cfg.WaitBudget > 0 {
		timer := time.NewTimer(c.cfg.WaitBudget)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case res := <-ch:
		if res.Err != nil {
			if v, ok := c.Get(key); ok {
				return v, true, nil
			}
			var zero V
			return zero, false, res.Err
		}
		return res.Val.(V), true, nil
	case <-deadline:
		v, ok := c.Get(key)
		return v, ok, nil
	case <-ctx.Done():
		if v, ok := c.Get(key); ok {
			return v, true, nil
		}
		var zero V
		return zero, false, ctx.Err()
	}
}

func (c *Cache[V]) store(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{}
		c.entries[key] = e
		c.order = append(c.order, key)
	}
	e.data = v
	e.expiresAt = time.Now().Add(c.cfg.TTL)
	c.evictLocked()
}

// evictLocked drops oldest-inserted keys until back at capacity.
// Insertion order, not LRU: refreshing a key in place keeps its slot.
func (c *Cache[V]) evictLocked() {
	if c.cfg.Capacity <= 0 {
		return
	}
	for len(c.entries) > c.cfg.Capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.entries[oldest]; ok {
			delete(c.entries, oldest)
			log.Debugf("evicted %q from cache", oldest)
		}
	}
}
