// Package datafile implements IndexedFile, a read-only store of
// variable-length binary records addressed by byte offset or, through a
// sorted secondary index, by a stable numeric id.
//
// Two count-bounded LRU caches sit in front of the files: one for
// id → offset index lookups and one for decoded records. Their capacities
// are fixed when the IndexedFile is created. Close releases all handles
// and purges both caches; a closed IndexedFile may be opened again.
//
// Sequential passes (Scan) never go through the record cache and always
// use a handle of their own that is closed before Scan returns.
package datafile
