package geocode

import (
	"context"
	"sync"
)

// Cache stores resolved results keyed by the exact normalized address string
// that produced them. Entries never expire; a later success overwrites.
// Get reports found=false for a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Put(ctx context.Context, key string, result *Result) error
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Result)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*Result, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

// Put implements Cache.
func (c *MemoryCache) Put(_ context.Context, key string, result *Result) error {
	if result == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *result
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
