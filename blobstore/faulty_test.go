package blobstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaultyStore(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := NewFaultyStore(mem)
	require.NoError(t, store.Put(ctx, "router.dat", []byte("0123456789")))
	require.NoError(t, store.Put(ctx, "router.idx", []byte("abcdef")))

	diskErr := errors.New("disk gone")
	store.AddRule(".dat", Fault{FailAfterBytes: 4})
	store.AddRule("router.dat", Fault{FailAfterBytes: 6, Err: diskErr, Modes: []AccessMode{AccessSequential}})
	store.AddRule(".idx", Fault{FailOnOpen: true, Modes: []AccessMode{AccessMapped}})

	t.Run("read limit", func(t *testing.T) {
		b, err := store.Open(ctx, "router.dat", AccessMapped)
		require.NoError(t, err)
		defer b.Close()

		_, mappable := b.(Mappable)
		assert.False(t, mappable)

		buf := make([]byte, 4)
		_, err = b.ReadAt(buf, 0)
		require.NoError(t, err)
		assert.Equal(t, "0123", string(buf))
		_, err = b.ReadAt(buf, 1)
		assert.ErrorIs(t, err, ErrInjected)
	})

	t.Run("longest pattern wins", func(t *testing.T) {
		b, err := store.Open(ctx, "router.dat", AccessSequential)
		require.NoError(t, err)
		defer b.Close()

		buf := make([]byte, 6)
		_, err = b.ReadAt(buf, 0)
		require.NoError(t, err)
		_, err = b.ReadAt(buf, 2)
		assert.ErrorIs(t, err, diskErr)
	})

	t.Run("open", func(t *testing.T) {
		_, err := store.Open(ctx, "router.idx", AccessMapped)
		assert.ErrorIs(t, err, ErrInjected)

		b, err := store.Open(ctx, "router.idx", AccessRandom)
		require.NoError(t, err)
		require.NoError(t, b.Close())
	})

	assert.Equal(t, int64(3), store.Injected())
	assert.Equal(t, int64(0), store.OpenHandles())

	store.ClearRules()
	b, err := store.Open(ctx, "router.dat", AccessSequential)
	require.NoError(t, err)
	buf := make([]byte, 10)
	_, err = b.ReadAt(buf, 0)
	require.NoError(t, err)
	require.NoError(t, b.Close())
}

func TestFaultyStore_Close(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := NewFaultyStore(mem)
	require.NoError(t, store.Put(ctx, "a", []byte("x")))
	store.AddRule("a", Fault{FailOnClose: true, FailAfterBytes: -1})

	b, err := store.Open(ctx, "a", AccessRandom)
	require.NoError(t, err)
	assert.ErrorIs(t, b.Close(), ErrInjected)
	assert.Equal(t, int64(0), mem.OpenHandles())
}
