// Package mmap provides read-only memory-mapped access to dataset files.
//
// Route data files of a database may be opened memory mapped instead of
// through buffered file access. A shared read-only mapping leaves paging to
// the kernel and is safe for any number of concurrent readers.
//
//	m, err := mmap.Open("router.dat", mmap.AccessRandom)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2). On Windows the mapping uses
// CreateFileMapping/MapViewOfFile and access hints are ignored.
//
// Close is idempotent. Callers must not touch slices returned by Bytes
// after Close returns.
package mmap
