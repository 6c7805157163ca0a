package navcache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/xiaot623/autopilot/internal/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	c := New(8, 10.0)

	from := domain.Vector{X: 0, Y: 0, Z: 0}
	to := domain.Vector{X: 1000, Y: 0, Z: 0}
	c.CachePath(from, to, true, 1000.0)

	e, ok := c.FindCached(from, to)
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if !e.Reachable || e.PathLength != 1000.0 {
		t.Fatalf("unexpected entry: %+v", e)
	}

	hits, misses, size := c.Stats()
	if hits != 1 || misses != 0 || size != 1 {
		t.Fatalf("unexpected stats: hits=%d misses=%d size=%d", hits, misses, size)
	}
}

func TestCacheToleranceCollision(t *testing.T) {
	c := New(8, 10.0)

	c.CachePath(domain.Vector{X: 0}, domain.Vector{X: 1000}, true, 1000.0)

	// Endpoints within the tolerance land on the same slot.
	e, ok := c.FindCached(domain.Vector{X: 3}, domain.Vector{X: 1002})
	if !ok {
		t.Fatalf("expected approximate hit within tolerance")
	}
	if e.PathLength != 1000.0 {
		t.Fatalf("unexpected path length: %f", e.PathLength)
	}
}

func TestCacheMiss(t *testing.T) {
	c := New(8, 10.0)

	if _, ok := c.FindCached(domain.Vector{X: 500}, domain.Vector{X: 900}); ok {
		t.Fatalf("expected miss on empty cache")
	}
	hits, misses, _ := c.Stats()
	if hits != 0 || misses != 1 {
		t.Fatalf("unexpected stats: hits=%d misses=%d", hits, misses)
	}
}

func TestCacheEvictsOldestAccessed(t *testing.T) {
	c := New(3, 10.0)

	a := domain.Vector{X: 0}
	b := domain.Vector{X: 100}
	d := domain.Vector{X: 200}
	c.CachePath(a, domain.Vector{X: 1000}, true, 1000)
	c.CachePath(b, domain.Vector{X: 1100}, true, 1000)
	c.CachePath(d, domain.Vector{X: 1200}, true, 1000)

	// Touch the first entry so the second is now the oldest accessed.
	if _, ok := c.FindCached(a, domain.Vector{X: 1000}); !ok {
		t.Fatalf("expected hit on first entry")
	}

	c.CachePath(domain.Vector{X: 300}, domain.Vector{X: 1300}, false, 0)

	if _, ok := c.FindCached(a, domain.Vector{X: 1000}); !ok {
		t.Fatalf("recently touched entry must survive eviction")
	}
	if _, ok := c.FindCached(b, domain.Vector{X: 1100}); ok {
		t.Fatalf("oldest accessed entry should have been evicted")
	}
}

func TestCacheCapacityEvictionOrder(t *testing.T) {
	// Capacity 3, tolerance 10: a 4th distinct key evicts the oldest entry.
	c := New(3, 10.0)

	c.CachePath(domain.Vector{X: 0}, domain.Vector{X: 1000}, true, 1000)
	c.CachePath(domain.Vector{X: 100}, domain.Vector{X: 1100}, true, 1000)
	c.CachePath(domain.Vector{X: 200}, domain.Vector{X: 1200}, true, 1000)
	c.CachePath(domain.Vector{X: 300}, domain.Vector{X: 1300}, true, 1000)

	if _, ok := c.FindCached(domain.Vector{X: 0}, domain.Vector{X: 1000}); ok {
		t.Fatalf("first inserted entry should have been evicted")
	}
	_, _, size := c.Stats()
	if size != 3 {
		t.Fatalf("expected size 3, got %d", size)
	}
}

func TestCacheOverwriteSameKeyDoesNotEvict(t *testing.T) {
	c := New(2, 10.0)

	c.CachePath(domain.Vector{X: 0}, domain.Vector{X: 1000}, true, 1000)
	c.CachePath(domain.Vector{X: 100}, domain.Vector{X: 1100}, true, 900)
	// Re-caching an existing key overwrites in place.
	c.CachePath(domain.Vector{X: 0}, domain.Vector{X: 1000}, false, 0)

	_, _, size := c.Stats()
	if size != 2 {
		t.Fatalf("expected size 2 after overwrite, got %d", size)
	}
	e, ok := c.FindCached(domain.Vector{X: 100}, domain.Vector{X: 1100})
	if !ok || e.PathLength != 900 {
		t.Fatalf("sibling entry lost on overwrite: ok=%v entry=%+v", ok, e)
	}
}

func TestCacheClearResetsStats(t *testing.T) {
	c := New(4, 10.0)
	c.CachePath(domain.Vector{}, domain.Vector{X: 10}, true, 10)
	c.FindCached(domain.Vector{}, domain.Vector{X: 10})
	c.FindCached(domain.Vector{X: 500}, domain.Vector{X: 600})

	c.Clear()

	hits, misses, size := c.Stats()
	if hits != 0 || misses != 0 || size != 0 {
		t.Fatalf("clear did not reset: hits=%d misses=%d size=%d", hits, misses, size)
	}
}

type stubFinder struct {
	calls int
}

func (s *stubFinder) FindPath(from, to domain.Vector) PathResult {
	s.calls++
	return PathResult{Reachable: true, PathLength: domain.Dist(from, to)}
}

func TestCacheQueryFallsThroughOnce(t *testing.T) {
	c := New(8, 10.0)
	finder := &stubFinder{}

	from := domain.Vector{X: 0}
	to := domain.Vector{X: 500}
	first := c.Query(finder, from, to)
	second := c.Query(finder, from, to)

	if finder.calls != 1 {
		t.Fatalf("expected one real query, got %d", finder.calls)
	}
	if first != second {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(32, 10.0)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				from := domain.Vector{X: float64(n * 100)}
				to := domain.Vector{X: float64(j * 50)}
				c.CachePath(from, to, true, 1)
				c.FindCached(from, to)
				if j%10 == 0 {
					c.Stats()
				}
			}
		}(i)
	}
	wg.Wait()

	_, _, size := c.Stats()
	if size > 32 {
		t.Fatalf("cache exceeded capacity: %d", size)
	}
}

func TestCacheDistinctKeysDoNotCollide(t *testing.T) {
	c := New(256, 10.0)
	for i := 0; i < 100; i++ {
		from := domain.Vector{X: float64(i * 100), Y: float64(i * 100)}
		to := domain.Vector{X: float64(i*100 + 5000)}
		c.CachePath(from, to, true, float64(i))
	}
	for i := 0; i < 100; i++ {
		from := domain.Vector{X: float64(i * 100), Y: float64(i * 100)}
		to := domain.Vector{X: float64(i*100 + 5000)}
		e, ok := c.FindCached(from, to)
		if !ok {
			t.Fatalf("lost entry %d", i)
		}
		if e.PathLength != float64(i) {
			t.Fatalf("entry %d collided: %s", i, fmt.Sprint(e.PathLength))
		}
	}
}
