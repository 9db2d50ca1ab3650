// Package cache provides bounded LRU caches for decoded records and
// id → offset index entries.
//
// Capacities are counted in entries and fixed at construction. A capacity
// of zero disables caching: Set becomes a no-op and every Get misses.
//
// # LRU
//
// LRU is a single-mutex cache built on container/list. Optionally each
// entry is charged against a resource.Controller; when the controller
// refuses the charge the value is simply not cached.
//
// # ShardedLRU
//
// ShardedLRU spreads entries over 64 independent LRU shards selected by a
// seeded maphash of the key, so concurrent queries rarely contend on the
// same lock. New picks the sharded variant for large capacities.
package cache
