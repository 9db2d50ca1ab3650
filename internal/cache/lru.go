package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/georoute/resource"
)

// LRU implements a count-bounded least-recently-used cache.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	capacity  int
	items     map[K]*list.Element
	evictList *list.List
	rc        *resource.Controller
	sizeOf    SizeFunc[V]

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
}

// New returns an LRU for small capacities and a ShardedLRU otherwise.
func New[K comparable, V any](capacity int, rc *resource.Controller, sizeOf SizeFunc[V]) Cache[K, V] {
	if capacity >= shardThreshold {
		return NewShardedLRU[K, V](capacity, rc, sizeOf)
	}
	return NewLRU[K, V](capacity, rc, sizeOf)
}

// NewLRU creates a cache holding at most capacity entries.
// If rc and sizeOf are provided, every entry is charged to rc.
func NewLRU[K comparable, V any](capacity int, rc *resource.Controller, sizeOf SizeFunc[V]) *LRU[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &LRU[K, V]{
		capacity:  capacity,
		items:     make(map[K]*list.Element),
		evictList: list.New(),
		rc:        rc,
		sizeOf:    sizeOf,
	}
}

// Get returns a cached value.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(el)
		return el.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set caches a value.
func (c *LRU[K, V]) Set(key K, value V) {
	if c.capacity == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		// Records are immutable once decoded; refresh recency only.
		c.evictList.MoveToFront(el)
		return
	}

	// A refused charge leaves the cache unchanged.
	var size int64
	if c.rc != nil && c.sizeOf != nil {
		size = c.sizeOf(value)
		if err := c.rc.AcquireMemory(size); err != nil {
			return
		}
	}

	for c.evictList.Len() >= c.capacity {
		c.removeElement(c.evictList.Back())
	}

	el := c.evictList.PushFront(&entry[K, V]{key: key, value: value, size: size})
	c.items[key] = el
}

// Purge removes every entry and returns charged memory.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.evictList.Len() > 0 {
		c.removeElement(c.evictList.Back())
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns hit and miss counters.
func (c *LRU[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRU[K, V]) removeElement(el *list.Element) {
	if el == nil {
		return
	}
	c.evictList.Remove(el)
	ent := el.Value.(*entry[K, V])
	delete(c.items, ent.key)
	c.rc.ReleaseMemory(ent.size)
}
