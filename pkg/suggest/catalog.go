package suggest

import (
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/mealbyte/foodserve/internal/utils"
	"github.com/mealbyte/foodserve/pkg/match"
)

const (
	// catalogResultCap bounds how many "Quick Add" suggestions one query yields.
	catalogResultCap = 6
	// keywordBonus rewards keyword hits; keywords are intentional aliases
	// ("pb" -> Peanut Butter), so they get a small edge over name matches.
	keywordBonus = 0.1
	// catalogLooseThreshold drops items that neither the name nor any
	// keyword brings close to the query.
	catalogLooseThreshold = 0.85
)

// CatalogItem is one entry of the fixed quick-add list.
type CatalogItem struct {
	Name     string
	Keywords []string
	Type     ItemType
}

// Catalog scores the fixed in-memory quick-add list against queries and
// keeps a prefix trie over names and keywords for the short-query fast
// path, where no scoring or network is wanted at all.
type Catalog struct {
	items  []CatalogItem
	trie   *patricia.Trie
	scorer *match.Scorer
}

// NewCatalog indexes the given items.
func NewCatalog(items []CatalogItem, scorer *match.Scorer) *Catalog {
	c := &Catalog{items: items, trie: patricia.NewTrie(), scorer: scorer}
	for i, item := range items {
		c.insert(item.Name, i)
		for _, kw := range item.Keywords {
			c.insert(kw, i)
		}
	}
	return c
}

func (c *Catalog) insert(term string, idx int) {
	key := utils.Normalize(term)
	if key == "" {
		return
	}
	// first item owning a term wins; catalog terms barely collide
	if c.trie.Get(patricia.Prefix(key)) == nil {
		c.trie.Insert(patricia.Prefix(key), idx)
	}
}

// Search returns up to 6 scored "Quick Add" suggestions for the query.
func (c *Catalog) Search(query string) []Scored {
	q := utils.Normalize(query)
	if q == "" {
		return nil
	}

	results := make([]Scored, 0, catalogResultCap)
	for i := range c.items {
		item := &c.items[i]
		best := c.scorer.Score(item.Name, q)
		for _, kw := range item.Keywords {
			if s := c.scorer.Score(kw, q) - keywordBonus; s < best {
				best = s
			}
		}
		if best < 0 {
			best = 0
		}
		if best > catalogLooseThreshold && !c.overlaps(item, q) {
			continue
		}
		results = append(results, Scored{
			Suggestion: Suggestion{
				Name:    item.Name,
				Source:  SourceQuickAdd,
				Prefill: Macros{Type: item.Type},
			},
			Score: best,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if len(results) > catalogResultCap {
		results = results[:catalogResultCap]
	}
	return results
}

// overlaps reports any direct substring or token overlap between the
// query and the item's name or keywords.
func (c *Catalog) overlaps(item *CatalogItem, q string) bool {
	terms := append([]string{item.Name}, item.Keywords...)
	for _, term := range terms {
		t := utils.Normalize(term)
		if strings.Contains(t, q) || strings.Contains(q, t) {
			return true
		}
		if c.scorer.TokenCoverage(t, q) > 0 {
			return true
		}
	}
	return false
}

// PrefixSuggestions serves queries too short to search properly: a plain
// trie walk over catalog names and keywords, no scoring, no network.
func (c *Catalog) PrefixSuggestions(prefix string, limit int) []Suggestion {
	p := utils.Normalize(prefix)
	if p == "" || limit <= 0 {
		return nil
	}

	seen := make(map[int]bool)
	var results []Suggestion
	c.trie.VisitSubtree(patricia.Prefix(p), func(_ patricia.Prefix, item patricia.Item) error {
		idx := item.(int)
		if seen[idx] || len(results) >= limit {
			return nil
		}
		seen[idx] = true
		entry := c.items[idx]
		results = append(results, Suggestion{
			Name:    entry.Name,
			Source:  SourceQuickAdd,
			Prefill: Macros{Type: entry.Type},
		})
		return nil
	})
	return results
}
