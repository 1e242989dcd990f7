package render

import (
	"fmt"
	"io"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/frameloop/parameter"
	"github.com/lixenwraith/frameloop/status"
)

// CacheConfig tunes the render resource cache
type CacheConfig struct {
	// MaxEntries bounds the cache; exceeding it triggers batch eviction
	MaxEntries int

	// CleanupInterval gates the age-purge sweep in Maintain
	CleanupInterval time.Duration

	// MaxEntryAge is the idle time after which an entry is purged
	MaxEntryAge time.Duration

	// StatsInterval gates the hit-ratio diagnostic in Maintain
	StatsInterval time.Duration

	// Enabled false degrades the cache to a pass-through
	Enabled bool
}

// DefaultCacheConfig returns the package defaults with the cache enabled
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries:      parameter.DefaultMaxCacheEntries,
		CleanupInterval: parameter.CacheCleanupInterval,
		MaxEntryAge:     parameter.CacheMaxEntryAge,
		StatsInterval:   parameter.CacheStatsInterval,
		Enabled:         true,
	}
}

// Validate rejects configurations the cache cannot run with
func (c CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be positive, got %d", c.MaxEntries)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cache cleanup interval must be positive, got %v", c.CleanupInterval)
	}
	if c.MaxEntryAge <= 0 {
		return fmt.Errorf("cache max entry age must be positive, got %v", c.MaxEntryAge)
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("cache stats interval must be positive, got %v", c.StatsInterval)
	}
	return nil
}

// cacheEntry holds one derived resource and its LRU timestamp
type cacheEntry[V any] struct {
	value        V
	lastAccessed time.Duration
}

// Cache is a bounded, time-and-LRU-evicted store of expensive derived render
// resources. Single-owner: all operations run on the render path, so no
// internal locking is needed
//
// Cache correctness is a performance optimization, never a correctness
// requirement: a failed maintenance pass is logged and skipped, and a
// disabled cache simply recomputes everything
type Cache[K comparable, V any] struct {
	cfg    CacheConfig
	now    func() time.Duration
	logger *log.Logger
	name   string

	entries map[K]*cacheEntry[V]
	hits    uint64
	misses  uint64

	// Independently gated sweep anchors
	lastCleanup time.Duration
	lastStats   time.Duration

	// Cached metric pointers
	statSize     *atomic.Int64
	statHitRatio *status.AtomicFloat
}

// NewCache creates a cache over the given clock
// now supplies host time for LRU ordering; logger nil discards; reg may be
// nil to skip metric publication
func NewCache[K comparable, V any](cfg CacheConfig, now func() time.Duration, logger *log.Logger, reg *status.Registry, name string) (*Cache[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cache config: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &Cache[K, V]{
		cfg:     cfg,
		now:     now,
		logger:  logger,
		name:    name,
		entries: make(map[K]*cacheEntry[V]),
	}
	if cfg.Enabled {
		c.lastCleanup = now()
		c.lastStats = c.lastCleanup
	}
	if reg != nil {
		c.statSize = reg.Ints.Get("render.cache." + name + ".size")
		c.statHitRatio = reg.Floats.Get("render.cache." + name + ".hit_ratio")
	}
	return c, nil
}

// Get returns the cached value and refreshes its LRU timestamp on hit
// A disabled cache always misses without counting
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	if !c.cfg.Enabled {
		return zero, false
	}

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	entry.lastAccessed = c.now()
	c.hits++
	return entry.value, true
}

// Put inserts a value, batch-evicting the oldest quarter when full
// Batch eviction amortizes the cost over many inserts
func (c *Cache[K, V]) Put(key K, value V) {
	if !c.cfg.Enabled {
		return
	}

	if len(c.entries) >= c.cfg.MaxEntries {
		c.evictOldest()
	}

	c.entries[key] = &cacheEntry[V]{
		value:        value,
		lastAccessed: c.now(),
	}
	c.publishSize()
}

// evictOldest removes the oldest CacheEvictionFraction of entries by access time
func (c *Cache[K, V]) evictOldest() {
	n := int(float64(c.cfg.MaxEntries) * parameter.CacheEvictionFraction)
	if n < 1 {
		n = 1
	}

	type aged struct {
		key K
		at  time.Duration
	}
	byAge := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		byAge = append(byAge, aged{key: k, at: e.lastAccessed})
	}
	sort.Slice(byAge, func(i, j int) bool { return byAge[i].at < byAge[j].at })

	if n > len(byAge) {
		n = len(byAge)
	}
	for i := 0; i < n; i++ {
		delete(c.entries, byAge[i].key)
	}
}

// Maintain runs the periodic sweeps, each gated by its own interval
// Called from the render path at frame cadence; does nothing until a gate
// elapses. Any panic during a sweep skips that pass
func (c *Cache[K, V]) Maintain() {
	if !c.cfg.Enabled {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Printf("cache %s: maintenance pass skipped: %v", c.name, r)
		}
	}()

	now := c.now()

	if now-c.lastCleanup >= c.cfg.CleanupInterval {
		c.lastCleanup = now
		purged := 0
		for k, e := range c.entries {
			if now-e.lastAccessed > c.cfg.MaxEntryAge {
				delete(c.entries, k)
				purged++
			}
		}
		if purged > 0 {
			c.logger.Printf("cache %s: purged %d stale entries", c.name, purged)
			c.publishSize()
		}
	}

	if now-c.lastStats >= c.cfg.StatsInterval {
		c.lastStats = now
		ratio := c.HitRatio()
		if c.statHitRatio != nil {
			c.statHitRatio.Set(ratio)
		}
		c.logger.Printf("cache %s: size=%d hits=%d misses=%d ratio=%.2f",
			c.name, len(c.entries), c.hits, c.misses, ratio)
	}
}

// InvalidateAll unconditionally clears entries and counters
// Mandatory whenever the render surface is replaced or resized: cached
// resources are computed against surface parameters and become invalid,
// not merely stale
func (c *Cache[K, V]) InvalidateAll() {
	clear(c.entries)
	c.hits = 0
	c.misses = 0
	c.publishSize()
	if c.statHitRatio != nil {
		c.statHitRatio.Set(0)
	}
}

// Len returns the number of cached entries
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Hits returns the hit counter
func (c *Cache[K, V]) Hits() uint64 {
	return c.hits
}

// Misses returns the miss counter
func (c *Cache[K, V]) Misses() uint64 {
	return c.misses
}

// HitRatio returns hits over total lookups, 0 before any lookup
func (c *Cache[K, V]) HitRatio() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

func (c *Cache[K, V]) publishSize() {
	if c.statSize != nil {
		c.statSize.Store(int64(len(c.entries)))
	}
}
