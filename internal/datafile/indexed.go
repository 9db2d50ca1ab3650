package datafile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/georoute/blobstore"
	"github.com/hupe1980/georoute/internal/cache"
	"github.com/hupe1980/georoute/internal/format"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/resource"
)

// DecodeFunc decodes the record starting at offset.
type DecodeFunc[T any] func(r *format.Reader, offset model.FileOffset) (T, error)

// scanCancelInterval is the number of records between context checks in Scan.
const scanCancelInterval = 1024

// IndexedFile is a read-only, cached store of records of type T.
// It is safe for concurrent use.
type IndexedFile[T any] struct {
	cfg    Config
	decode DecodeFunc[T]
	opts   options

	mu         sync.RWMutex
	store      blobstore.BlobStore
	mmap       bool
	data       blobstore.Blob
	dataBytes  []byte
	index      blobstore.Blob
	indexBytes []byte
	header     format.Header
	indexCount int

	indexCache cache.Cache[model.ID, model.FileOffset]
	dataCache  cache.Cache[model.FileOffset, T]
}

// New creates a closed IndexedFile. sizeOf estimates the memory of a decoded
// record for resource accounting and may be nil.
func New[T any](cfg Config, decode DecodeFunc[T], sizeOf cache.SizeFunc[T], optFns ...Option) *IndexedFile[T] {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &IndexedFile[T]{
		cfg:        cfg,
		decode:     decode,
		opts:       opts,
		indexCache: cache.New[model.ID, model.FileOffset](cfg.IndexCacheSize, nil, nil),
		dataCache:  cache.New[model.FileOffset, T](cfg.DataCacheSize, opts.rc, sizeOf),
	}
}

// Open opens the data file and, if configured, the index file from store.
// With mmap the data file is mapped read-only and shared by all readers.
// On failure every handle opened so far is released.
func (f *IndexedFile[T]) Open(ctx context.Context, store blobstore.BlobStore, mmap bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.data != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyOpen, f.cfg.DataName)
	}

	mode := blobstore.AccessRandom
	if mmap {
		mode = blobstore.AccessMapped
	}

	data, dataBytes, header, err := openFile(ctx, store, f.cfg.DataName, f.cfg.DataMagic, mode)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpen, f.cfg.DataName, err)
	}

	var (
		index      blobstore.Blob
		indexBytes []byte
		indexCount int
	)
	if f.cfg.IndexName != "" {
		var ih format.Header
		index, indexBytes, ih, err = openFile(ctx, store, f.cfg.IndexName, f.cfg.IndexMagic, mode)
		if err != nil {
			_ = data.Close()
			return fmt.Errorf("%w: %s: %w", ErrOpen, f.cfg.IndexName, err)
		}
		if want := int64(format.HeaderSize) + int64(ih.Count)*format.IndexEntrySize; index.Size() != want {
			_ = data.Close()
			_ = index.Close()
			return fmt.Errorf("%w: %s: %w: size %d, want %d", ErrOpen, f.cfg.IndexName, format.ErrCorrupt, index.Size(), want)
		}
		indexCount = int(ih.Count)
	}

	f.store = store
	f.mmap = mmap
	f.data = data
	f.dataBytes = dataBytes
	f.index = index
	f.indexBytes = indexBytes
	f.header = header
	f.indexCount = indexCount

	f.opts.logger.Debug("datafile opened",
		slog.String("file", f.cfg.DataName),
		slog.Int("records", int(header.Count)),
		slog.Bool("mmap", mmap),
	)
	return nil
}

func openFile(ctx context.Context, store blobstore.BlobStore, name string, magic uint32, mode blobstore.AccessMode) (blobstore.Blob, []byte, format.Header, error) {
	b, err := store.Open(ctx, name, mode)
	if err != nil {
		return nil, nil, format.Header{}, err
	}
	h, err := format.ReadHeader(b, magic)
	if err != nil {
		_ = b.Close()
		return nil, nil, format.Header{}, err
	}
	var mapped []byte
	if m, ok := b.(blobstore.Mappable); ok && mode == blobstore.AccessMapped {
		if mapped, err = m.Bytes(); err != nil {
			_ = b.Close()
			return nil, nil, format.Header{}, err
		}
	}
	return b, mapped, h, nil
}

// IsOpen reports whether the store is open.
func (f *IndexedFile[T]) IsOpen() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.data != nil
}

// Count returns the number of records declared by the data file header.
func (f *IndexedFile[T]) Count() uint32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.header.Count
}

// Name returns the data file name.
func (f *IndexedFile[T]) Name() string { return f.cfg.DataName }

// Close releases all handles and purges both caches. It is idempotent.
func (f *IndexedFile[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	if f.data != nil {
		errs = append(errs, f.data.Close())
	}
	if f.index != nil {
		errs = append(errs, f.index.Close())
	}
	f.store = nil
	f.data = nil
	f.dataBytes = nil
	f.index = nil
	f.indexBytes = nil
	f.header = format.Header{}
	f.indexCount = 0

	f.indexCache.Purge()
	f.dataCache.Purge()

	return errors.Join(errs...)
}

// GetByOffset returns the record at offset.
func (f *IndexedFile[T]) GetByOffset(ctx context.Context, offset model.FileOffset) (T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.getByOffset(ctx, offset)
}

func (f *IndexedFile[T]) getByOffset(ctx context.Context, offset model.FileOffset) (T, error) {
	var zero T
	if f.data == nil {
		return zero, ErrClosed
	}
	if v, ok := f.dataCache.Get(offset); ok {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	size := f.data.Size()
	if offset < format.HeaderSize || int64(offset) >= size {
		return zero, &ErrInvalidOffset{File: f.cfg.DataName, Offset: offset}
	}

	var r *format.Reader
	if f.dataBytes != nil {
		r = format.NewBytesReader(f.dataBytes, int64(offset))
	} else {
		r = format.NewSectionReader(f.data, int64(offset), size, f.opts.readBufferSize)
	}

	v, err := f.decode(r, offset)
	if err != nil {
		return zero, fmt.Errorf("datafile: %s at offset %d: %w", f.cfg.DataName, offset, err)
	}
	f.dataCache.Set(offset, v)
	return v, nil
}

// GetByOffsets returns the records at offsets in ascending offset order.
// Duplicate offsets are loaded once.
func (f *IndexedFile[T]) GetByOffsets(ctx context.Context, offsets []model.FileOffset) ([]T, error) {
	sorted := slices.Clone(offsets)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]T, 0, len(sorted))
	for _, off := range sorted {
		v, err := f.getByOffset(ctx, off)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// GetOffset resolves id through the index. ok is false if id is unknown.
func (f *IndexedFile[T]) GetOffset(ctx context.Context, id model.ID) (model.FileOffset, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.getOffset(ctx, id)
}

func (f *IndexedFile[T]) getOffset(ctx context.Context, id model.ID) (model.FileOffset, bool, error) {
	if f.data == nil {
		return 0, false, ErrClosed
	}
	if f.index == nil {
		return 0, false, fmt.Errorf("datafile: %s has no index", f.cfg.DataName)
	}
	if off, ok := f.indexCache.Get(id); ok {
		return off, true, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	var (
		buf     [format.IndexEntrySize]byte
		readErr error
	)
	entry := func(i int) format.IndexEntry {
		pos := int64(format.HeaderSize) + int64(i)*format.IndexEntrySize
		if f.indexBytes != nil {
			return format.DecodeIndexEntry(f.indexBytes[pos:])
		}
		if _, err := f.index.ReadAt(buf[:], pos); err != nil && readErr == nil {
			readErr = err
		}
		return format.DecodeIndexEntry(buf[:])
	}

	i := sort.Search(f.indexCount, func(i int) bool {
		return entry(i).ID >= uint64(id)
	})
	if readErr != nil {
		return 0, false, fmt.Errorf("datafile: %s: %w", f.cfg.IndexName, readErr)
	}
	if i >= f.indexCount {
		return 0, false, nil
	}
	e := entry(i)
	if readErr != nil {
		return 0, false, fmt.Errorf("datafile: %s: %w", f.cfg.IndexName, readErr)
	}
	if e.ID != uint64(id) {
		return 0, false, nil
	}

	off := model.FileOffset(e.Offset)
	f.indexCache.Set(id, off)
	return off, true, nil
}

// Get returns the record with id. ok is false if id is unknown.
func (f *IndexedFile[T]) Get(ctx context.Context, id model.ID) (T, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var zero T
	off, ok, err := f.getOffset(ctx, id)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := f.getByOffset(ctx, off)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// GetByIDs returns the records for ids keyed by id. Unknown ids are absent
// from the result. Records are loaded in ascending offset order.
func (f *IndexedFile[T]) GetByIDs(ctx context.Context, ids *roaring64.Bitmap) (map[model.ID]T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[model.ID]T)
	if ids == nil || ids.IsEmpty() {
		if f.data == nil {
			return nil, ErrClosed
		}
		return out, nil
	}

	byOffset := make(map[model.FileOffset][]model.ID)
	offsets := make([]model.FileOffset, 0, ids.GetCardinality())

	it := ids.Iterator()
	for it.HasNext() {
		id := model.ID(it.Next())
		off, ok, err := f.getOffset(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, seen := byOffset[off]; !seen {
			offsets = append(offsets, off)
		}
		byOffset[off] = append(byOffset[off], id)
	}

	slices.Sort(offsets)
	for _, off := range offsets {
		v, err := f.getByOffset(ctx, off)
		if err != nil {
			return nil, err
		}
		for _, id := range byOffset[off] {
			out[id] = v
		}
	}
	return out, nil
}

// Scan decodes every record in file order and calls fn with its offset.
// Scan uses a handle of its own and does not populate the record cache.
// A non-nil error from fn stops the scan and is returned unchanged.
func (f *IndexedFile[T]) Scan(ctx context.Context, fn func(offset model.FileOffset, rec T) error) error {
	f.mu.RLock()
	store, mmap := f.store, f.mmap
	f.mu.RUnlock()

	if store == nil {
		return ErrClosed
	}

	mode := blobstore.AccessSequential
	if mmap {
		mode = blobstore.AccessMapped
	}
	blob, data, h, err := openFile(ctx, store, f.cfg.DataName, f.cfg.DataMagic, mode)
	if err != nil {
		return fmt.Errorf("datafile: scan %s: %w", f.cfg.DataName, err)
	}
	defer blob.Close()

	var r *format.Reader
	if data != nil {
		r = format.NewBytesReader(data, format.HeaderSize)
	} else {
		section := io.NewSectionReader(blob, format.HeaderSize, blob.Size()-format.HeaderSize)
		limited := resource.NewRateLimitedReader(ctx, section, f.opts.rc)
		r = format.NewReader(bufio.NewReaderSize(limited, f.opts.scanBufferSize), format.HeaderSize)
	}

	charged := r.Pos()
	for i := uint32(0); i < h.Count; i++ {
		if i%scanCancelInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		off := model.FileOffset(r.Pos())
		rec, err := f.decode(r, off)
		if err != nil {
			return fmt.Errorf("datafile: scan %s at offset %d: %w", f.cfg.DataName, off, err)
		}
		if err := fn(off, rec); err != nil {
			return err
		}

		// Mapped scans bypass the rate limited reader; charge them here.
		if data != nil {
			if p := r.Pos(); p-charged >= int64(f.opts.scanBufferSize) {
				if err := f.opts.rc.AcquireIO(ctx, int(p-charged)); err != nil {
					return err
				}
				charged = p
			}
		}
	}
	return nil
}

// CacheStats reports hit and miss counters of both caches.
type CacheStats struct {
	IndexHits, IndexMisses int64
	DataHits, DataMisses   int64
	IndexLen, DataLen      int
}

// Stats returns the current cache statistics.
func (f *IndexedFile[T]) Stats() CacheStats {
	var s CacheStats
	s.IndexHits, s.IndexMisses = f.indexCache.Stats()
	s.DataHits, s.DataMisses = f.dataCache.Stats()
	s.IndexLen = f.indexCache.Len()
	s.DataLen = f.dataCache.Len()
	return s
}
