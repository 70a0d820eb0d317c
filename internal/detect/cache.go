package detect

import (
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Kind distinguishes the cached analysis types.
type Kind string

const (
	KindDuplicates Kind = "duplicates"
	KindSimilarity Kind = "similarity"
	KindOutliers   Kind = "outliers"
)

// keySep separates key components. NUL does not occur in directory names or
// formatted parameter strings.
const keySep = "\x00"

// CacheStats describes the current cache contents.
type CacheStats struct {
	Entries int            `json:"entries"`
	ByKind  map[string]int `json:"by_kind"`
}

// Cache memoizes analysis results keyed by (category, kind, parameter tuple).
// Entries never expire; the only eviction path is explicit per-category
// invalidation. Concurrent requests for the same uncomputed key are coalesced
// to a single computation, while distinct keys proceed independently.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]any
	gens     map[string]uint64 // per-category generation, bumped on invalidation
	inflight map[string]int    // keys with an active computation, by caller count
	group    singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]any),
		gens:     make(map[string]uint64),
		inflight: make(map[string]int),
	}
}

func cacheKey(category string, kind Kind, params string) string {
	return category + keySep + string(kind) + keySep + params
}

// Do returns the cached result for the key or computes and stores it.
// A computation that finishes after the category has been invalidated is
// returned to its caller but not stored, so later requests recompute.
func (c *Cache) Do(category string, kind Kind, params string, compute func() (any, error)) (any, error) {
	key := cacheKey(category, kind, params)

	c.mu.Lock()
	if value, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return value, nil
	}
	gen := c.gens[category]
	c.inflight[key]++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.inflight[key]--; c.inflight[key] <= 0 {
			delete(c.inflight, key)
		}
		c.mu.Unlock()
	}()

	value, err, _ := c.group.Do(key, func() (any, error) {
		// A coalesced caller may arrive after the result landed in the map.
		c.mu.Lock()
		if value, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return value, nil
		}
		c.mu.Unlock()

		value, err := compute()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gens[category] == gen {
			c.entries[key] = value
		}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Invalidate evicts all entries of a category regardless of kind and
// parameters and marks in-flight computations as stale. Returns the number
// of evicted entries.
func (c *Cache) Invalidate(category string) int {
	prefix := category + keySep

	c.mu.Lock()
	c.gens[category]++
	var removed []string
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			removed = append(removed, key)
		}
	}
	for _, key := range removed {
		delete(c.entries, key)
	}
	// Forget in-flight keys too, so callers arriving after the invalidation
	// start a fresh computation instead of joining a stale one.
	forget := removed
	for key := range c.inflight {
		if strings.HasPrefix(key, prefix) {
			forget = append(forget, key)
		}
	}
	c.mu.Unlock()

	for _, key := range forget {
		c.group.Forget(key)
	}
	return len(removed)
}

// Clear evicts everything and returns the number of removed entries.
func (c *Cache) Clear() int {
	c.mu.Lock()
	count := len(c.entries)
	c.entries = make(map[string]any)
	for category := range c.gens {
		c.gens[category]++
	}
	forget := make([]string, 0, len(c.inflight))
	for key := range c.inflight {
		forget = append(forget, key)
	}
	c.mu.Unlock()

	for _, key := range forget {
		c.group.Forget(key)
	}
	return count
}

// Stats returns entry counts overall and per analysis kind.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		Entries: len(c.entries),
		ByKind:  make(map[string]int),
	}
	for key := range c.entries {
		parts := strings.SplitN(key, keySep, 3)
		if len(parts) == 3 {
			stats.ByKind[parts[1]]++
		}
	}
	return stats
}
