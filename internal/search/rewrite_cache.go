package search

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gcbaptista/go-span-search/query"
)

// RewriteCache remembers the normal form of query trees. Entries are keyed
// by structural hash and confirmed with structural equality, so two equal
// trees built independently share an entry.
type RewriteCache struct {
	entries *lru.Cache[uint64, rewriteEntry]
}

type rewriteEntry struct {
	original  query.Query
	rewritten query.Query
}

// NewRewriteCache returns a cache holding up to size trees.
func NewRewriteCache(size int) (*RewriteCache, error) {
	entries, err := lru.New[uint64, rewriteEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create rewrite cache: %w", err)
	}
	return &RewriteCache{entries: entries}, nil
}

func (c *RewriteCache) get(q query.Query) (query.Query, bool) {
	e, ok := c.entries.Get(query.Hash(q))
	if !ok || !query.Equal(e.original, q) {
		return nil, false
	}
	return e.rewritten, true
}

func (c *RewriteCache) add(q, rewritten query.Query) {
	c.entries.Add(query.Hash(q), rewriteEntry{original: q, rewritten: rewritten})
}

// Len is the number of cached trees.
func (c *RewriteCache) Len() int { return c.entries.Len() }

// Purge drops every entry.
func (c *RewriteCache) Purge() { c.entries.Purge() }
