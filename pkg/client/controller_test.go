package client

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mealbyte/foodserve/pkg/match"
	"github.com/mealbyte/foodserve/pkg/suggest"
)

type fakeSearcher struct {
	mu    sync.Mutex
	calls []string
	// gates holds per-query channels; a query with a gate blocks until
	// the gate is closed
	gates map[string]chan struct{}
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{gates: make(map[string]chan struct{})}
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]suggest.Suggestion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	gate := f.gates[query]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return []suggest.Suggestion{{Name: "result for " + query}}, nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSearcher) blockQuery(query string) chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[query] = gate
	f.mu.Unlock()
	return gate
}

type recorder struct {
	mu      sync.Mutex
	updates []Update
}

func (r *recorder) apply(u Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) snapshot() []Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Update, len(r.updates))
	copy(out, r.updates)
	return out
}

func (r *recorder) waitForQuery(t *testing.T, query string) Update {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, u := range r.snapshot() {
			if u.Query == query && !u.Stale {
				return u
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no update for %q arrived", query)
	return Update{}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Debounce = 20 * time.Millisecond
	return cfg
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	searcher := newFakeSearcher()
	rec := &recorder{}
	ctrl := NewController(searcher, nil, rec.apply, testConfig())
	defer ctrl.Close()

	// a typing burst faster than the debounce window
	ctrl.OnInput("gre")
	ctrl.OnInput("gree")
	ctrl.OnInput("greek")

	rec.waitForQuery(t, "greek")
	if got := searcher.callCount(); got != 1 {
		t.Fatalf("searcher called %d times, want 1", got)
	}
	for _, u := range rec.snapshot() {
		if u.Query != "greek" {
			t.Errorf("unexpected update for superseded query %q", u.Query)
		}
	}
}

func TestShortQueryIsCatalogOnly(t *testing.T) {
	searcher := newFakeSearcher()
	rec := &recorder{}
	catalog := suggest.NewCatalog([]suggest.CatalogItem{
		{Name: "Yogurt"},
		{Name: "Yellow Pepper"},
		{Name: "Oatmeal"},
	}, match.NewScorer(match.DefaultParams()))
	ctrl := NewController(searcher, catalog, rec.apply, testConfig())
	defer ctrl.Close()

	ctrl.OnInput("y")

	updates := rec.snapshot()
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1 immediate one", len(updates))
	}
	if len(updates[0].Suggestions) != 2 {
		t.Fatalf("got %d suggestions, want the 2 y-prefixed catalog items", len(updates[0].Suggestions))
	}

	// and no network search, even after the debounce window passes
	time.Sleep(80 * time.Millisecond)
	if got := searcher.callCount(); got != 0 {
		t.Fatalf("searcher called %d times for a 1-char query", got)
	}
}

func TestSupersededResultsDiscarded(t *testing.T) {
	searcher := newFakeSearcher()
	gate := searcher.blockQuery("greek yogurt")
	rec := &recorder{}
	ctrl := NewController(searcher, nil, rec.apply, testConfig())
	defer ctrl.Close()

	ctrl.OnInput("greek yogurt")
	waitFor(t, func() bool { return searcher.callCount() == 1 })

	// user keeps typing while the first request hangs
	ctrl.OnInput("oatmeal")
	rec.waitForQuery(t, "oatmeal")

	// the old request finally resolves; its results must never be applied
	close(gate)
	time.Sleep(60 * time.Millisecond)

	for _, u := range rec.snapshot() {
		if u.Query == "greek yogurt" {
			t.Fatalf("superseded request was applied: %+v", u)
		}
	}
}

func TestResolvedQueryIsHintedImmediately(t *testing.T) {
	searcher := newFakeSearcher()
	rec := &recorder{}
	ctrl := NewController(searcher, nil, rec.apply, testConfig())
	defer ctrl.Close()

	ctrl.OnInput("greek yogurt")
	rec.waitForQuery(t, "greek yogurt")

	// retyping the same query paints from cache before any timer fires
	before := len(rec.snapshot())
	ctrl.OnInput("greek yogurt")
	if got := rec.snapshot(); len(got) <= before {
		t.Fatal("expected an immediate cached hint")
	}

	// the debounced follow-up is a fresh cache hit, not a second fetch
	time.Sleep(80 * time.Millisecond)
	if got := searcher.callCount(); got != 1 {
		t.Fatalf("searcher called %d times, want 1", got)
	}
}

func TestRefreshBypassesFreshCache(t *testing.T) {
	searcher := newFakeSearcher()
	rec := &recorder{}
	ctrl := NewController(searcher, nil, rec.apply, testConfig())
	defer ctrl.Close()

	ctrl.OnInput("greek yogurt")
	rec.waitForQuery(t, "greek yogurt")

	ctrl.Refresh("greek yogurt")
	waitFor(t, func() bool { return searcher.callCount() == 2 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
