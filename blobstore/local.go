package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/hupe1980/georoute/internal/mmap"
)

// LocalStore implements BlobStore on a local directory.
type LocalStore struct {
	root string
	open atomic.Int64
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Root returns the store directory.
func (s *LocalStore) Root() string { return s.root }

// OpenHandles returns the number of blobs opened and not yet closed.
func (s *LocalStore) OpenHandles() int64 { return s.open.Load() }

// Open opens a blob for reading.
func (s *LocalStore) Open(ctx context.Context, name string, mode AccessMode) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.root, name)

	if mode == AccessMapped {
		m, err := mmap.Open(path, mmap.AccessRandom)
		if err != nil {
			return nil, err
		}
		s.open.Add(1)
		return &mappedBlob{m: m, store: s}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	s.open.Add(1)
	return &fileBlob{f: f, size: fi.Size(), store: s}, nil
}

// Put writes data to name via a temporary file and rename.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(name)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if _, err := os.Stat(tmpName); err == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

type mappedBlob struct {
	m      *mmap.Mapping
	store  *LocalStore
	closed atomic.Bool
}

func (b *mappedBlob) ReadAt(p []byte, off int64) (int, error) {
	return b.m.ReadAt(p, off)
}

func (b *mappedBlob) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.store.open.Add(-1)
	return b.m.Close()
}

func (b *mappedBlob) Size() int64 { return int64(b.m.Size()) }

func (b *mappedBlob) Bytes() ([]byte, error) {
	if b.closed.Load() {
		return nil, mmap.ErrClosed
	}
	return b.m.Bytes(), nil
}

type fileBlob struct {
	f      *os.File
	size   int64
	store  *LocalStore
	closed atomic.Bool
}

func (b *fileBlob) ReadAt(p []byte, off int64) (int, error) {
	return b.f.ReadAt(p, off)
}

func (b *fileBlob) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.store.open.Add(-1)
	return b.f.Close()
}

func (b *fileBlob) Size() int64 { return b.size }
