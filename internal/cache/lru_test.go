package cache

import (
	"sync"
	"testing"

	"github.com/hupe1980/georoute/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[uint64, string](2, nil, nil)

	c.Set(1, "a")
	c.Set(2, "b")
	_, ok := c.Get(1) // 1 becomes most recent
	require.True(t, ok)

	c.Set(3, "c") // evicts 2

	_, ok = c.Get(2)
	assert.False(t, ok, "least recently used entry should be evicted")

	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = c.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "c", v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_ZeroCapacity(t *testing.T) {
	c := NewLRU[uint64, int](0, nil, nil)
	c.Set(1, 1)
	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_SetExistingKeepsValue(t *testing.T) {
	c := NewLRU[uint64, string](4, nil, nil)
	c.Set(1, "first")
	c.Set(1, "second")
	v, _ := c.Get(1)
	assert.Equal(t, "first", v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Stats(t *testing.T) {
	c := NewLRU[uint64, int](4, nil, nil)
	c.Set(1, 1)
	c.Get(1)
	c.Get(2)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	sizeOf := func(b []byte) int64 { return int64(len(b)) }
	c := NewLRU[uint64, []byte](10, rc, sizeOf)

	c.Set(1, make([]byte, 60))
	assert.Equal(t, int64(60), rc.MemoryUsage())

	// Would exceed the global limit: not cached.
	c.Set(2, make([]byte, 60))
	_, ok := c.Get(2)
	assert.False(t, ok)
	assert.Equal(t, int64(60), rc.MemoryUsage())

	c.Purge()
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, 0, c.Len())
}

func TestLRU_RefusedChargeKeepsEntries(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	sizeOf := func(b []byte) int64 { return int64(len(b)) }
	c := NewLRU[uint64, []byte](2, rc, sizeOf)

	c.Set(1, make([]byte, 40))
	c.Set(2, make([]byte, 40))
	require.Equal(t, 2, c.Len())

	// At capacity and over the memory limit: nothing is evicted.
	c.Set(3, make([]byte, 40))
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(2)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.False(t, ok)
	assert.Equal(t, int64(80), rc.MemoryUsage())
}

func TestLRU_EvictionReleasesMemory(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	sizeOf := func(b []byte) int64 { return int64(len(b)) }
	c := NewLRU[uint64, []byte](1, rc, sizeOf)

	c.Set(1, make([]byte, 10))
	c.Set(2, make([]byte, 20))
	assert.Equal(t, int64(20), rc.MemoryUsage())
}

func shardLens[K comparable, V any](s *ShardedLRU[K, V]) []int {
	lens := make([]int, numShards)
	for i := range numShards {
		lens[i] = s.shards[i].Len()
	}
	return lens
}

func TestShardedLRU_Distribution(t *testing.T) {
	c := NewShardedLRU[uint64, int](64*100, nil, nil)
	for i := range 1000 {
		c.Set(uint64(i), i)
	}
	assert.Equal(t, 1000, c.Len())

	nonEmpty := 0
	for _, n := range shardLens(c) {
		if n > 0 {
			nonEmpty++
		}
	}
	assert.Greater(t, nonEmpty, 30, "poor shard distribution")

	v, ok := c.Get(999)
	assert.True(t, ok)
	assert.Equal(t, 999, v)

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestShardedLRU_CapacityIsExact(t *testing.T) {
	for _, capacity := range []int{shardThreshold, 4100, 12000} {
		c := New[int, int](capacity, nil, nil)
		for i := range 100000 {
			c.Set(i, i)
		}
		assert.LessOrEqual(t, c.Len(), capacity)
		// Every shard sees far more keys than it holds, so all are full.
		assert.Equal(t, capacity, c.Len())
	}
}

func TestShardedLRU_Concurrent(t *testing.T) {
	c := New[uint64, int](8192, nil, nil)
	_, sharded := c.(*ShardedLRU[uint64, int])
	require.True(t, sharded)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range 500 {
				key := uint64(w*1000 + i)
				c.Set(key, i)
				v, ok := c.Get(key)
				if ok {
					assert.Equal(t, i, v)
				}
			}
		}(w)
	}
	wg.Wait()

	hits, _ := c.Stats()
	assert.Positive(t, hits)
}

func TestNew_SmallCapacityIsPlainLRU(t *testing.T) {
	c := New[uint64, int](16, nil, nil)
	_, ok := c.(*LRU[uint64, int])
	assert.True(t, ok)
}
