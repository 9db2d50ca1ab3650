package blobstore

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrInjected is the default error returned by a FaultyStore.
var ErrInjected = errors.New("blobstore: injected fault")

// Fault defines the failure behavior of blobs matching a rule.
type Fault struct {
	// FailOnOpen fails Open itself.
	FailOnOpen bool
	// FailAfterBytes fails any read that reaches past this offset. -1 disables it.
	FailAfterBytes int64
	// FailOnClose makes Close return Err after releasing the handle.
	FailOnClose bool
	// Modes restricts the fault to the listed access modes. Empty means all.
	Modes []AccessMode
	// Err is returned by the injected failure. Defaults to ErrInjected.
	Err error
}

func (f Fault) applies(mode AccessMode) bool {
	if len(f.Modes) == 0 {
		return true
	}
	for _, m := range f.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyStore wraps a BlobStore and injects errors into blobs whose name
// contains a rule pattern. Blobs opened through it are never Mappable, so
// every read goes through ReadAt.
type FaultyStore struct {
	store BlobStore

	mu    sync.Mutex
	rules map[string]Fault

	injected atomic.Int64
}

// NewFaultyStore wraps store.
func NewFaultyStore(store BlobStore) *FaultyStore {
	return &FaultyStore{store: store, rules: make(map[string]Fault)}
}

// AddRule sets the fault for blob names containing pattern.
// When several patterns match, the longest wins.
func (s *FaultyStore) AddRule(pattern string, fault Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[pattern] = fault
}

// ClearRules removes all rules.
func (s *FaultyStore) ClearRules() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.rules)
}

// Injected returns how many faults were injected so far.
func (s *FaultyStore) Injected() int64 { return s.injected.Load() }

func (s *FaultyStore) match(name string, mode AccessMode) (Fault, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		best  Fault
		found bool
		plen  = -1
	)
	for pattern, rule := range s.rules {
		if strings.Contains(name, pattern) && len(pattern) > plen && rule.applies(mode) {
			best, found, plen = rule, true, len(pattern)
		}
	}
	return best, found
}

// Open opens a blob of the wrapped store.
func (s *FaultyStore) Open(ctx context.Context, name string, mode AccessMode) (Blob, error) {
	fault, ok := s.match(name, mode)
	if ok && fault.FailOnOpen {
		s.injected.Add(1)
		return nil, fault.err()
	}

	b, err := s.store.Open(ctx, name, mode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return faultyBlob{Blob: b, store: s, fault: Fault{FailAfterBytes: -1}}, nil
	}
	return faultyBlob{Blob: b, store: s, fault: fault}, nil
}

// Put forwards to the wrapped store if it is Writable.
func (s *FaultyStore) Put(ctx context.Context, name string, data []byte) error {
	w, ok := s.store.(Writable)
	if !ok {
		return errors.New("blobstore: wrapped store is read-only")
	}
	return w.Put(ctx, name, data)
}

// OpenHandles forwards to the wrapped store, or returns -1 if it does not
// count handles.
func (s *FaultyStore) OpenHandles() int64 {
	if c, ok := s.store.(interface{ OpenHandles() int64 }); ok {
		return c.OpenHandles()
	}
	return -1
}

// faultyBlob only promotes the Blob methods, never Mappable.
type faultyBlob struct {
	Blob
	store *FaultyStore
	fault Fault
}

func (b faultyBlob) ReadAt(p []byte, off int64) (int, error) {
	if b.fault.FailAfterBytes >= 0 && off+int64(len(p)) > b.fault.FailAfterBytes {
		b.store.injected.Add(1)
		return 0, b.fault.err()
	}
	return b.Blob.ReadAt(p, off)
}

func (b faultyBlob) Close() error {
	err := b.Blob.Close()
	if err == nil && b.fault.FailOnClose {
		b.store.injected.Add(1)
		return b.fault.err()
	}
	return err
}
