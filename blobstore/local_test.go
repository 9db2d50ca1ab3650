package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutOpen(t *testing.T) {
	for _, mode := range []AccessMode{AccessRandom, AccessSequential, AccessMapped} {
		t.Run(mode.String(), func(t *testing.T) {
			ctx := context.Background()
			store := NewLocalStore(t.TempDir())

			data := []byte("router.dat contents for georoute")
			require.NoError(t, store.Put(ctx, "router.dat", data))

			blob, err := store.Open(ctx, "router.dat", mode)
			require.NoError(t, err)
			assert.Equal(t, int64(1), store.OpenHandles())
			assert.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 8)
			n, err := blob.ReadAt(buf, 11)
			require.NoError(t, err)
			assert.Equal(t, 8, n)
			assert.Equal(t, "contents", string(buf))

			_, mappable := blob.(Mappable)
			assert.Equal(t, mode == AccessMapped, mappable)

			require.NoError(t, blob.Close())
			require.NoError(t, blob.Close())
			assert.Equal(t, int64(0), store.OpenHandles())
		})
	}
}

func TestLocalStore_Missing(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(context.Background(), "missing.dat", AccessRandom)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Open(context.Background(), "missing.dat", AccessMapped)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int64(0), store.OpenHandles())
}

func TestLocalStore_PutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	require.NoError(t, store.Put(context.Background(), "sub/a.idx", []byte("x")))

	entries, err := os.ReadDir(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.idx", entries[0].Name())
}

func TestLocalStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(ctx, "a", AccessRandom)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "a.dat", []byte("hello")))
	require.NoError(t, store.Put(ctx, "b.dat", []byte("world")))

	blob, err := store.Open(ctx, "a.dat", AccessSequential)
	require.NoError(t, err)
	got, err := io.ReadAll(io.NewSectionReader(blob, 0, blob.Size()))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	assert.Equal(t, int64(1), store.OpenHandles())
	require.NoError(t, blob.Close())
	assert.Equal(t, int64(0), store.OpenHandles())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.dat", "b.dat"}, names)

	require.NoError(t, store.Delete(ctx, "a.dat"))
	_, err = store.Open(ctx, "a.dat", AccessRandom)
	assert.ErrorIs(t, err, ErrNotFound)
}
