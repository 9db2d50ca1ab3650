package cache

import (
	"hash/maphash"

	"github.com/hupe1980/georoute/resource"
)

const numShards = 64

// ShardedLRU distributes entries across 64 LRU shards to reduce lock contention.
type ShardedLRU[K comparable, V any] struct {
	shards [numShards]*LRU[K, V]
	seed   maphash.Seed
}

// NewShardedLRU creates a sharded cache. The capacity is divided across
// the shards so that their capacities sum to exactly capacity.
func NewShardedLRU[K comparable, V any](capacity int, rc *resource.Controller, sizeOf SizeFunc[V]) *ShardedLRU[K, V] {
	capacity = max(capacity, 0)
	base, extra := capacity/numShards, capacity%numShards

	s := &ShardedLRU[K, V]{seed: maphash.MakeSeed()}
	for i := range numShards {
		shardCapacity := base
		if i < extra {
			shardCapacity++
		}
		s.shards[i] = NewLRU[K, V](shardCapacity, rc, sizeOf)
	}
	return s
}

func (s *ShardedLRU[K, V]) shard(key K) *LRU[K, V] {
	return s.shards[maphash.Comparable(s.seed, key)%numShards]
}

// Get returns a cached value.
func (s *ShardedLRU[K, V]) Get(key K) (V, bool) {
	return s.shard(key).Get(key)
}

// Set caches a value.
func (s *ShardedLRU[K, V]) Set(key K, value V) {
	s.shard(key).Set(key, value)
}

// Purge removes every entry from every shard.
func (s *ShardedLRU[K, V]) Purge() {
	for i := range numShards {
		s.shards[i].Purge()
	}
}

// Len returns the number of entries across all shards.
func (s *ShardedLRU[K, V]) Len() int {
	total := 0
	for i := range numShards {
		total += s.shards[i].Len()
	}
	return total
}

// Stats returns aggregated hit and miss counters.
func (s *ShardedLRU[K, V]) Stats() (hits, misses int64) {
	for i := range numShards {
		h, m := s.shards[i].Stats()
		hits += h
		misses += m
	}
	return hits, misses
}
