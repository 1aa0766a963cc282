package ledger

import (
	"sync"

	"github.com/erp/ledger/internal/domain/ledger"
)

type cacheKey struct {
	version  uint64
	kind     ledger.EntityKind
	entityID string
	window   string
}

// resultCache memoizes calculated fields per (snapshot version, entity, window)
type resultCache struct {
	mu      sync.Mutex
	entries map[cacheKey]ledger.CalculatedFields
	hits    uint64
	misses  uint64
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[cacheKey]ledger.CalculatedFields)}
}

func (c *resultCache) get(key cacheKey) (ledger.CalculatedFields, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

func (c *resultCache) put(key cacheKey, v ledger.CalculatedFields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// clear drops every entry and returns how many there were
func (c *resultCache) clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[cacheKey]ledger.CalculatedFields)
	return n
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CacheStats are hit/miss counters since startup
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func (c *resultCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
