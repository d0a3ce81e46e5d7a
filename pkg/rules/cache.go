package rules

import "sync"

// MemoryCache is a ProgramCache backed by a map. Rule sets are small and
// fixed at startup, so entries are never evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]any
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]any{}}
}

func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *MemoryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Len reports the number of cached programs.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
