// Package snapshotcache adds a short-TTL read-through cache in front of a
// book's Snapshot/Depth projections. It never changes observable
// semantics: every mutating call on the matching engine invalidates the
// affected symbol's entry synchronously before returning, so a cached read
// can only ever be as stale as since the last mutation that already
// completed.
package snapshotcache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache memoizes BookSnapshot-shaped values keyed by (symbol, depth).
type Cache struct {
	c *gocache.Cache
}

// New constructs a Cache with ttl as the default expiration and twice ttl
// as the cleanup interval. A non-positive ttl is replaced by 50ms.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 50 * time.Millisecond
	}
	return &Cache{c: gocache.New(ttl, 2*ttl)}
}

func key(symbol string, depth int) string {
	return fmt.Sprintf("%s:%d", symbol, depth)
}

// Get returns a cached value for (symbol, depth), if present and unexpired.
func (c *Cache) Get(symbol string, depth int) (interface{}, bool) {
	return c.c.Get(key(symbol, depth))
}

// Set stores value for (symbol, depth) using the cache's default TTL.
func (c *Cache) Set(symbol string, depth int, value interface{}) {
	c.c.SetDefault(key(symbol, depth), value)
}

// InvalidateSymbol drops every cached entry for symbol, regardless of depth.
func (c *Cache) InvalidateSymbol(symbol string) {
	prefix := symbol + ":"
	for k := range c.c.Items() {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			c.c.Delete(k)
		}
	}
}
