package render

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/gradekit/gradekit/internal/params"
)

// rasterCache is a sharded, capacity-bounded LRU cache of finished rasters
// keyed by render fingerprint. Fingerprints are already uniformly
// distributed sha256 digests, so the first byte picks the shard directly.
// Sixteen shards keep lock contention down when several sessions hammer
// the cache during slider interaction.
const (
	cacheShards   = 16
	cacheShardMsk = cacheShards - 1
)

type cacheShard struct {
	mu      sync.Mutex
	entries map[params.Fingerprint]*list.Element
	lru     *list.List // front = most recent; values are *cacheEntry
}

type cacheEntry struct {
	key    params.Fingerprint
	raster *Raster
}

type rasterCache struct {
	shards   [cacheShards]*cacheShard
	capacity int // per shard

	hits   atomic.Uint64
	misses atomic.Uint64
}

func newRasterCache(perShardCapacity int) *rasterCache {
	c := &rasterCache{capacity: perShardCapacity}
	for i := range c.shards {
		c.shards[i] = &cacheShard{
			entries: make(map[params.Fingerprint]*list.Element),
			lru:     list.New(),
		}
	}
	return c
}

func (c *rasterCache) shard(key params.Fingerprint) *cacheShard {
	return c.shards[key[0]&cacheShardMsk]
}

// get returns the cached raster for key, refreshing its LRU position.
func (c *rasterCache) get(key params.Fingerprint) (*Raster, bool) {
	s := c.shard(key)
	s.mu.Lock()
	el, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	s.lru.MoveToFront(el)
	r := el.Value.(*cacheEntry).raster
	s.mu.Unlock()
	c.hits.Add(1)
	return r, true
}

// add stores a raster, evicting the least recently used entries of its
// shard when over capacity. The raster is stored as-is, not copied;
// cached rasters are read-only by contract.
func (c *rasterCache) add(key params.Fingerprint, r *Raster) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		el.Value.(*cacheEntry).raster = r
		s.lru.MoveToFront(el)
		return
	}
	for s.lru.Len() >= c.capacity {
		oldest := s.lru.Back()
		if oldest == nil {
			break
		}
		s.lru.Remove(oldest)
		delete(s.entries, oldest.Value.(*cacheEntry).key)
	}
	s.entries[key] = s.lru.PushFront(&cacheEntry{key: key, raster: r})
}

func (c *rasterCache) len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// CacheStats is a snapshot of cache effectiveness counters.
type CacheStats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

func (c *rasterCache) stats() CacheStats {
	return CacheStats{Len: c.len(), Hits: c.hits.Load(), Misses: c.misses.Load()}
}
