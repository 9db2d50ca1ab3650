// Package blobstore abstracts read access to the files of a map database.
//
// A database directory is a BlobStore; each data or index file is a Blob.
// Blobs are opened in one of three access modes, chosen per file when a
// store is opened and fixed for the blob's lifetime:
//
//   - AccessMapped: shared read-only memory mapping; the kernel pages data
//     in and any number of readers may share it.
//   - AccessRandom: plain file handle for offset lookups; callers buffer
//     each record read themselves.
//   - AccessSequential: file handle advised for a single front-to-back pass.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, counts open handles so leaks are visible
//   - MemoryStore: in-memory blobs for tests
//   - FaultyStore: wraps another store and injects I/O errors for tests
//
// Implementations must be safe for concurrent use.
package blobstore
