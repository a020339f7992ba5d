package barrel

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// CacheObserver receives barrel cache events; implemented by the metrics
// manager.
type CacheObserver interface {
	RecordBarrelCacheHit()
	RecordBarrelCacheMiss()
	RecordBarrelCacheEviction()
}

// cache is a bounded, FIFO-evicted map of resident shards. On overflow it
// evicts the oldest entry, writing it back first if dirty -- a cache
// entry is either clean or has been written back before any public API
// returns.
type cache struct {
	mu        sync.Mutex
	capacity  int
	items     map[string]*list.Element
	order     *list.List // front = oldest
	writeBack func(*Shard) error
	observer  CacheObserver

	hits, misses, evictions int64
}

type cacheEntry struct {
	name  string
	shard *Shard
	dirty bool
}

func newCache(capacity int, writeBack func(*Shard) error) *cache {
	if capacity < 1 {
		capacity = 1
	}
	return &cache{
		capacity:  capacity,
		items:     make(map[string]*list.Element),
		order:     list.New(),
		writeBack: writeBack,
	}
}

// get returns the resident shard for name, loading it with loader on miss.
func (c *cache) get(name string, loader func() (*Shard, error)) (*Shard, error) {
	c.mu.Lock()
	if elem, ok := c.items[name]; ok {
		atomic.AddInt64(&c.hits, 1)
		observer := c.observer
		c.mu.Unlock()
		if observer != nil {
			observer.RecordBarrelCacheHit()
		}
		return elem.Value.(*cacheEntry).shard, nil
	}
	observer := c.observer
	c.mu.Unlock()

	atomic.AddInt64(&c.misses, 1)
	if observer != nil {
		observer.RecordBarrelCacheMiss()
	}
	shard, err := loader()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[name]; ok {
		return elem.Value.(*cacheEntry).shard, nil
	}

	if len(c.items) >= c.capacity {
		if err := c.evictOldestLocked(); err != nil {
			return nil, err
		}
	}

	elem := c.order.PushBack(&cacheEntry{name: name, shard: shard})
	c.items[name] = elem
	return shard, nil
}

// markDirty flags a resident shard as needing write-back before eviction.
func (c *cache) markDirty(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[name]; ok {
		elem.Value.(*cacheEntry).dirty = true
	}
}

func (c *cache) evictOldestLocked() error {
	front := c.order.Front()
	if front == nil {
		return nil
	}
	entry := front.Value.(*cacheEntry)
	if entry.dirty {
		if err := c.writeBack(entry.shard); err != nil {
			return err
		}
		entry.dirty = false
	}
	c.order.Remove(front)
	delete(c.items, entry.name)
	atomic.AddInt64(&c.evictions, 1)
	if c.observer != nil {
		c.observer.RecordBarrelCacheEviction()
	}
	return nil
}

func (c *cache) setObserver(o CacheObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = o
}

// flushAll writes back every dirty resident shard.
func (c *cache) flushAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for e := c.order.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*cacheEntry)
		if entry.dirty {
			if err := c.writeBack(entry.shard); err != nil {
				return err
			}
			entry.dirty = false
		}
	}
	return nil
}

func (c *cache) stats() (hits, misses, evictions int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses), atomic.LoadInt64(&c.evictions)
}
