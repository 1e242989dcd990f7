package parameter

import "time"

// Render Resource Cache
const (
	// DefaultMaxCacheEntries bounds the render resource cache
	DefaultMaxCacheEntries = 64

	// CacheEvictionFraction is the share of oldest entries dropped in one
	// batch when the cache is full
	CacheEvictionFraction = 0.25

	// CacheCleanupInterval gates the age-purge sweep
	CacheCleanupInterval = 5000 * time.Millisecond

	// CacheMaxEntryAge is the idle time after which an entry is purged
	CacheMaxEntryAge = 30000 * time.Millisecond

	// CacheStatsInterval gates the hit-ratio diagnostic
	CacheStatsInterval = 10000 * time.Millisecond
)

// Gradient Keys
const (
	// GradientRadiusStep is the rounding granularity for radius-derived
	// cache keys, trading visual precision for key cardinality
	GradientRadiusStep = 0.5
)
