// Package cache provides a two-tier cache for GET /logs/query results: an
// in-process LRU (L1) in front of an optional shared Redis tier (L2).
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/CaoDuyThanh/drtrace/internal/core"
)

// L1 is a bounded in-process LRU cache of query results, keyed by the
// normalized query string (see Key).
type L1 struct {
	entries *lru.Cache[string, l1Entry]
	ttl     time.Duration
}

type l1Entry struct {
	records   []core.StoredRecord
	expiresAt time.Time
}

// NewL1 creates an L1 cache holding at most size entries, each valid for
// ttl after insertion.
func NewL1(size int, ttl time.Duration) *L1 {
	entries, _ := lru.New[string, l1Entry](size)
	return &L1{entries: entries, ttl: ttl}
}

// Get returns the cached records for key, if present and unexpired.
func (c *L1) Get(key string) ([]core.StoredRecord, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.entries.Remove(key)
		return nil, false
	}
	return entry.records, true
}

// Set stores records under key with the cache's configured TTL.
func (c *L1) Set(key string, records []core.StoredRecord) {
	c.entries.Add(key, l1Entry{records: records, expiresAt: time.Now().Add(c.ttl)})
}

// Purge clears every entry, used when an append or clear invalidates the
// whole cache.
func (c *L1) Purge() {
	c.entries.Purge()
}
