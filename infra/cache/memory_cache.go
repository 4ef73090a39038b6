// Package cache provides exchange-rate cache implementations.
package cache

import (
	"sync"
	"time"

	pkgcache "github.com/fintrack/fintrack/pkg/cache"
	"github.com/fintrack/fintrack/pkg/provider"
)

var _ pkgcache.ExchangeRateCache = (*MemoryCache)(nil)

type cacheEntry struct {
	rate      *provider.RateInfo
	expiresAt time.Time
}

// MemoryCache implements cache.ExchangeRateCache with in-memory storage.
type MemoryCache struct {
	entries map[string]*cacheEntry
	mu      sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{entries: make(map[string]*cacheEntry)}
	go c.cleanup()
	return c
}

// Get retrieves a rate from cache. Expired or missing entries return nil
// without error.
func (c *MemoryCache) Get(key string) (*provider.RateInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.rate, nil
}

// Set stores a rate with a TTL.
func (c *MemoryCache) Set(key string, rate *provider.RateInfo, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		rate:      rate,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes a rate from cache.
func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// cleanup evicts expired entries so long-idle pairs do not accumulate.
func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
