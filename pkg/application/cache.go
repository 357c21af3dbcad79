package application

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long computed charts stay fresh.
const DefaultCacheTTL = 300 * time.Second

// Cache is a TTL-bounded in-memory result cache owned by the analytics
// service instance. Expiry is checked lazily on read; there is no
// background eviction. Concurrent requests for the same key may compute
// twice before the first write lands — acceptable, because computation is
// idempotent and cheap, and last writer wins.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// NewCache creates a cache with the given TTL, falling back to
// DefaultCacheTTL for non-positive values.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached value for key when present and not expired.
// Expired entries are evicted on the way out.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Since(entry.storedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock: another writer may have
		// refreshed the entry in the meantime.
		if current, ok := c.entries[key]; ok && time.Since(current.storedAt) > c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

// Set stores a value under key, stamping it with the current time.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: time.Now()}
}

// Clear purges all entries unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of live entries, counting expired but not yet
// evicted ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
