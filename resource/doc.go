// Package resource bounds the resources a routing Service may consume.
//
// A Controller manages three kinds of resources:
//
//   - Memory: decoded records held by store caches are charged against an
//     optional hard limit. Charging is non-blocking; a refused charge means
//     the record is returned uncached.
//   - Match slots: cross-database node matching performs full sequential
//     scans of two route node files. The number of concurrently running
//     match runs is limited by a weighted semaphore.
//   - Scan IO: sequential scans are throttled by a token bucket so that they
//     do not starve offset lookups of concurrent queries.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:     256 << 20,
//	    MaxConcurrentMatches: 2,
//	    ScanBytesPerSec:      200 << 20,
//	})
//
// All methods are safe for concurrent use and treat a nil Controller as
// "no limits".
package resource
