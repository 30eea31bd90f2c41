package reconcile

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry is one cached catalog read.
type cacheEntry struct {
	value any
	built time.Time
}

// Cache holds catalog reads for a fixed TTL.
// Concurrent misses for the same key share a single build.
type Cache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cacheEntry
	sf      singleflight.Group
}

// NewCache creates a cache. A zero TTL disables caching.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) fresh(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Since(entry.built) > c.ttl {
		return nil, false
	}
	return entry.value, true
}

// GetOrBuild returns the cached value for key, building it when missing or expired.
func (c *Cache) GetOrBuild(key string, build func() (any, error)) (any, error) {
	if c.ttl == 0 {
		return build()
	}
	if v, ok := c.fresh(key); ok {
		return v, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		if v, ok := c.fresh(key); ok {
			return v, nil
		}
		v, err := build()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{value: v, built: time.Now()}
		c.mu.Unlock()
		return v, nil
	})
	return v, err
}

// Invalidate drops every cached value.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}
