package render

import (
	"testing"

	"github.com/gradekit/gradekit/internal/params"
)

// shardKey builds a fingerprint landing in shard s, distinguished by n.
func shardKey(s, n byte) params.Fingerprint {
	var k params.Fingerprint
	k[0] = s
	k[1] = n
	return k
}

func TestCacheGetAddRoundTrip(t *testing.T) {
	c := newRasterCache(4)
	r := &Raster{W: 1, H: 1, Pix: []uint8{1, 2, 3}}
	key := shardKey(0, 1)

	if _, ok := c.get(key); ok {
		t.Fatal("empty cache must miss")
	}
	c.add(key, r)
	got, ok := c.get(key)
	if !ok || got != r {
		t.Fatal("cache must return the stored raster")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newRasterCache(2)
	a, b, d := shardKey(3, 1), shardKey(3, 2), shardKey(3, 3)
	c.add(a, &Raster{})
	c.add(b, &Raster{})

	// Touch a so b becomes the eviction candidate.
	if _, ok := c.get(a); !ok {
		t.Fatal("expected a to be cached")
	}
	c.add(d, &Raster{})

	if _, ok := c.get(a); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := c.get(b); ok {
		t.Error("least recently used entry survived past capacity")
	}
	if _, ok := c.get(d); !ok {
		t.Error("newly added entry missing")
	}
}

func TestCacheShardsAreIndependent(t *testing.T) {
	c := newRasterCache(1)
	// Same per-shard capacity, different shards: no cross-shard eviction.
	k0, k1 := shardKey(0, 1), shardKey(1, 1)
	c.add(k0, &Raster{})
	c.add(k1, &Raster{})
	if _, ok := c.get(k0); !ok {
		t.Error("entry in shard 0 evicted by an add to shard 1")
	}
	if _, ok := c.get(k1); !ok {
		t.Error("entry in shard 1 missing")
	}
}

func TestCacheReplacesExistingKey(t *testing.T) {
	c := newRasterCache(2)
	key := shardKey(5, 9)
	old := &Raster{W: 1}
	newer := &Raster{W: 2}
	c.add(key, old)
	c.add(key, newer)

	got, ok := c.get(key)
	if !ok || got != newer {
		t.Error("re-adding a key must replace its raster")
	}
	if c.len() != 1 {
		t.Errorf("len: got %d, want 1", c.len())
	}
}

func TestCacheStatsCounters(t *testing.T) {
	c := newRasterCache(4)
	key := shardKey(2, 7)
	c.get(key)
	c.add(key, &Raster{})
	c.get(key)
	c.get(key)

	s := c.stats()
	if s.Hits != 2 || s.Misses != 1 || s.Len != 1 {
		t.Errorf("stats: got %+v, want 2 hits, 1 miss, len 1", s)
	}
}
