package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies `errors.Is(err, ErrNotFound)`.
var ErrNotFound = os.ErrNotExist

// AccessMode selects how a blob is read.
type AccessMode int

const (
	// AccessRandom opens a plain handle for offset lookups.
	AccessRandom AccessMode = iota
	// AccessSequential opens a handle for a single sequential pass.
	AccessSequential
	// AccessMapped memory-maps the blob read-only.
	AccessMapped
)

// String returns the name of the access mode.
func (m AccessMode) String() string {
	switch m {
	case AccessSequential:
		return "sequential"
	case AccessMapped:
		return "mapped"
	default:
		return "random"
	}
}

// BlobStore opens immutable data blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string, mode AccessMode) (Blob, error)
}

// Writable is implemented by stores that can persist new blobs.
type Writable interface {
	// Put atomically writes a complete blob.
	Put(ctx context.Context, name string, data []byte) error
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is implemented by blobs whose bytes are directly addressable.
type Mappable interface {
	// Bytes returns the blob contents. The slice is valid until Close.
	Bytes() ([]byte, error)
}
