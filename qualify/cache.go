package qualify

import "time"

// TaxonomyCache caches the active taxonomy list so that qualification does
// not hit the store on every request.
type TaxonomyCache interface {
	// Get retrieves cached taxonomies, returns nil on miss or expiry
	Get() []*Taxonomy

	// Set stores taxonomies in cache
	Set(taxonomies []*Taxonomy)

	// Invalidate clears the cache, forcing a refresh on next Get
	Invalidate()

	// IsValid returns true if cache has valid data
	IsValid() bool
}

// CacheConfig holds configuration for cache behavior.
type CacheConfig struct {
	// TTL is the time-to-live for cached entries.
	// Set to 0 for no expiration (manual invalidation only).
	TTL time.Duration
}

// DefaultCacheConfig returns the default: no TTL, invalidate on mutation.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 0}
}
