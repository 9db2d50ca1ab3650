package cache

// Cache is a bounded key/value cache safe for concurrent use.
// Returned values must be treated as read-only.
type Cache[K comparable, V any] interface {
	// Get returns a cached value. ok=false if missing.
	Get(key K) (value V, ok bool)
	// Set inserts or refreshes a value, evicting the least recently used
	// entries once capacity is exceeded.
	Set(key K, value V)
	// Purge removes every entry.
	Purge()
	// Len returns the number of cached entries.
	Len() int
	// Stats returns hit and miss counters.
	Stats() (hits, misses int64)
}

// SizeFunc estimates the memory held by a cached value in bytes.
type SizeFunc[V any] func(V) int64

// shardThreshold is the capacity from which New returns a ShardedLRU.
const shardThreshold = 4096
