// Package navcache caches spatial reachability queries.
//
// Results are keyed on endpoint pairs snapped to a tolerance grid so that
// nearby queries intentionally share a slot, trading precision for hit rate.
// The cache is safe for concurrent use; eviction removes the entry with the
// oldest access time.
package navcache

import (
	"math"
	"sync"

	"github.com/xiaot623/autopilot/internal/domain"
)

// PathResult is the outcome of a reachability query.
type PathResult struct {
	Reachable  bool
	PathLength float64
}

// PathFinder is the external spatial query collaborator the cache wraps.
type PathFinder interface {
	FindPath(from, to domain.Vector) PathResult
}

// Entry is a cached query result.
type Entry struct {
	From       domain.Vector
	To         domain.Vector
	Reachable  bool
	PathLength float64

	lastAccess uint64
}

// key holds both endpoints snapped to the tolerance grid. Using the snapped
// integers directly as the map key keeps all six components in play with no
// truncation collisions.
type key struct {
	fx, fy, fz int64
	tx, ty, tz int64
}

// Cache is a bounded LRU cache of reachability results.
type Cache struct {
	mu        sync.Mutex
	entries   map[key]*Entry
	capacity  int
	tolerance float64
	hits      int
	misses    int
	clock     uint64 // logical access clock, bumped on every touch
}

const (
	// DefaultCapacity bounds the cache when no capacity is given.
	DefaultCapacity = 128
	// DefaultTolerance is the grid snap distance for cache keys.
	DefaultTolerance = 100.0
)

// New creates a cache with the given capacity and key tolerance. Non-positive
// arguments fall back to the defaults.
func New(capacity int, tolerance float64) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Cache{
		entries:   make(map[key]*Entry, capacity),
		capacity:  capacity,
		tolerance: tolerance,
	}
}

// FindCached looks up a cached result for the endpoint pair. A hit requires
// the quantized keys to match and both original endpoints to lie within the
// tolerance of the cached ones; a hit refreshes the entry's access time.
func (c *Cache) FindCached(from, to domain.Vector) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.makeKey(from, to)
	if e, ok := c.entries[k]; ok {
		if c.locationsMatch(e.From, from) && c.locationsMatch(e.To, to) {
			c.clock++
			e.lastAccess = c.clock
			c.hits++
			return *e, true
		}
		// Key collided with a stale entry outside the tolerance; drop it.
		delete(c.entries, k)
	}

	c.misses++
	return Entry{}, false
}

// CachePath stores a query result, evicting the least recently accessed entry
// when the cache is at capacity.
func (c *Cache) CachePath(from, to domain.Vector, reachable bool, pathLength float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := c.makeKey(from, to)
	if _, exists := c.entries[k]; !exists && len(c.entries) >= c.capacity {
		c.evictOldest()
	}

	c.clock++
	c.entries[k] = &Entry{
		From:       from,
		To:         to,
		Reachable:  reachable,
		PathLength: pathLength,
		lastAccess: c.clock,
	}
}

// Query returns the cached result for the endpoint pair, falling through to
// the wrapped path finder on a miss and caching whatever it reports.
func (c *Cache) Query(finder PathFinder, from, to domain.Vector) PathResult {
	if e, ok := c.FindCached(from, to); ok {
		return PathResult{Reachable: e.Reachable, PathLength: e.PathLength}
	}
	res := finder.FindPath(from, to)
	c.CachePath(from, to, res.Reachable, res.PathLength)
	return res
}

// Clear empties the cache and resets the hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[key]*Entry, c.capacity)
	c.hits = 0
	c.misses = 0
}

// ResetStats clears the hit/miss counters without dropping entries.
func (c *Cache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits = 0
	c.misses = 0
}

// Stats returns the hit count, miss count and current entry count.
func (c *Cache) Stats() (hits, misses, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.entries)
}

func (c *Cache) makeKey(from, to domain.Vector) key {
	return key{
		fx: snap(from.X, c.tolerance),
		fy: snap(from.Y, c.tolerance),
		fz: snap(from.Z, c.tolerance),
		tx: snap(to.X, c.tolerance),
		ty: snap(to.Y, c.tolerance),
		tz: snap(to.Z, c.tolerance),
	}
}

// snap rounds a coordinate to the nearest multiple of the tolerance and
// returns the grid index.
func snap(v, tolerance float64) int64 {
	return int64(math.Round(v / tolerance))
}

func (c *Cache) locationsMatch(a, b domain.Vector) bool {
	d := a.Sub(b)
	return d.X*d.X+d.Y*d.Y+d.Z*d.Z <= c.tolerance*c.tolerance
}

// evictOldest removes the entry with the smallest access clock. Caller holds
// the mutex.
func (c *Cache) evictOldest() {
	if len(c.entries) == 0 {
		return
	}
	var oldestKey key
	oldest := uint64(math.MaxUint64)
	for k, e := range c.entries {
		if e.lastAccess < oldest {
			oldest = e.lastAccess
			oldestKey = k
		}
	}
	delete(c.entries, oldestKey)
}
