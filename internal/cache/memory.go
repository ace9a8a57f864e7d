package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds normalized payloads in process memory. It is the layer
// that serves repeat fetches of a claim during a single watch run.
type MemoryCache struct {
	payloads *gocache.Cache
}

// NewMemoryCache creates a memory cache whose expired entries are swept
// every cleanupInterval.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{payloads: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns the payload stored under key, if present and unexpired.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.payloads.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a payload under key for ttl. A ttl of zero uses the cache's
// default.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.payloads.Set(key, value, ttl)
	return nil
}
