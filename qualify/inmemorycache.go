package qualify

import (
	"sync"
	"time"
)

// InMemoryTaxonomyCache is a thread-safe in-memory TaxonomyCache.
type InMemoryTaxonomyCache struct {
	taxonomies []*Taxonomy
	cachedAt   time.Time
	config     CacheConfig
	mu         sync.RWMutex
	isValid    bool
}

// NewInMemoryTaxonomyCache creates a new in-memory taxonomy cache.
func NewInMemoryTaxonomyCache(config CacheConfig) *InMemoryTaxonomyCache {
	return &InMemoryTaxonomyCache{config: config}
}

// Get retrieves cached taxonomies, nil if the cache is invalid or expired.
func (c *InMemoryTaxonomyCache) Get() []*Taxonomy {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return nil
	}

	if c.config.TTL > 0 && time.Since(c.cachedAt) > c.config.TTL {
		return nil
	}

	// Return copy to prevent external modifications
	out := make([]*Taxonomy, len(c.taxonomies))
	copy(out, c.taxonomies)
	return out
}

// Set stores taxonomies in the cache.
func (c *InMemoryTaxonomyCache) Set(taxonomies []*Taxonomy) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.taxonomies = make([]*Taxonomy, len(taxonomies))
	copy(c.taxonomies, taxonomies)
	c.cachedAt = time.Now()
	c.isValid = true
}

// Invalidate clears the cache.
func (c *InMemoryTaxonomyCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isValid = false
	c.taxonomies = nil
}

// IsValid returns true if the cache contains unexpired data.
func (c *InMemoryTaxonomyCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isValid {
		return false
	}
	if c.config.TTL > 0 {
		return time.Since(c.cachedAt) <= c.config.TTL
	}
	return true
}
