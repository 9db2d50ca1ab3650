// Package routedb reads and writes the on-disk routing data of one map
// database.
//
// A database directory holds five files:
//
//	router.dat         route node records
//	router.idx         route node id → offset index
//	router2.dat        object variant table
//	intersections.dat  junction records
//	intersections.idx  junction id → offset index
//
// Files bundles the three stores of a database and opens them together.
// Writer produces a complete database from an in-memory Dataset.
package routedb
