package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/CowSmiles/tantivy/internal/resource"
)

// LRUBlockCache is a mutex-guarded LRU over block payloads, bounded by a
// byte capacity rather than an entry count. When built with a resource
// controller every cached byte is also reserved from the global memory
// budget, and eviction releases the reservation.
type LRUBlockCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	items    map[CacheKey]*list.Element
	order    *list.List // front = most recently used
	rc       *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type lruEntry struct {
	key   CacheKey
	block []byte
}

// NewLRUBlockCache creates a cache holding up to capacity bytes. rc may be
// nil, in which case no global accounting happens.
func NewLRUBlockCache(capacity int64, rc *resource.Controller) *LRUBlockCache {
	return &LRUBlockCache{
		capacity: capacity,
		items:    make(map[CacheKey]*list.Element),
		order:    list.New(),
		rc:       rc,
	}
}

func (c *LRUBlockCache) Get(ctx context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).block, true
}

// Set caches a block. Set never blocks: when the global memory budget has
// no room left the block is simply not cached.
func (c *LRUBlockCache) Set(ctx context.Context, key CacheKey, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.replace(el, b)
		return
	}

	need := int64(len(b))
	if need > c.capacity {
		return
	}

	// Evict before reserving so freed bytes return to the controller
	// first.
	for c.size+need > c.capacity {
		tail := c.order.Back()
		if tail == nil {
			break
		}
		c.remove(tail)
	}
	if c.rc != nil && !c.rc.TryAcquireMemory(need) {
		return
	}

	c.items[key] = c.order.PushFront(&lruEntry{key: key, block: b})
	c.size += need
}

// replace swaps the payload of an existing entry, keeping the byte
// accounting exact. Growth the controller refuses keeps the old payload.
func (c *LRUBlockCache) replace(el *list.Element, b []byte) {
	c.order.MoveToFront(el)
	ent := el.Value.(*lruEntry)

	oldSize, newSize := int64(len(ent.block)), int64(len(b))
	switch {
	case newSize > oldSize:
		if c.rc != nil && !c.rc.TryAcquireMemory(newSize-oldSize) {
			return
		}
	case newSize < oldSize:
		if c.rc != nil {
			c.rc.ReleaseMemory(oldSize - newSize)
		}
	}
	ent.block = b
	c.size += newSize - oldSize

	for c.size > c.capacity {
		tail := c.order.Back()
		if tail == nil {
			break
		}
		c.remove(tail)
	}
}

func (c *LRUBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Collect first; remove mutates the list while iterating.
	var doomed []*list.Element
	for key, el := range c.items {
		if predicate(key) {
			doomed = append(doomed, el)
		}
	}
	for _, el := range doomed {
		c.remove(el)
	}
}

func (c *LRUBlockCache) remove(el *list.Element) {
	c.order.Remove(el)
	ent := el.Value.(*lruEntry)
	delete(c.items, ent.key)
	c.size -= int64(len(ent.block))
	if c.rc != nil {
		c.rc.ReleaseMemory(int64(len(ent.block)))
	}
}

func (c *LRUBlockCache) Close() error { return nil }

func (c *LRUBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size reports the cached bytes currently held.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
