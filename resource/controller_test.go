package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	assert.ErrorIs(t, c.AcquireMemory(20), ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.AcquireMemory(1<<40))
	assert.Equal(t, int64(1<<40), c.MemoryUsage())
	assert.Equal(t, int64(0), c.MemoryLimit())
}

func TestController_MatchSlots(t *testing.T) {
	c := NewController(Config{MaxConcurrentMatches: 1})
	ctx := context.Background()

	require.NoError(t, c.AcquireMatch(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireMatch(waitCtx), context.DeadlineExceeded)

	c.ReleaseMatch()
	require.NoError(t, c.AcquireMatch(ctx))
	c.ReleaseMatch()
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{ScanBytesPerSec: 1024})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.NoError(t, c.AcquireIO(ctx, 1024))
	assert.Error(t, c.AcquireIO(ctx, 1024))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	assert.Equal(t, int64(0), c.MemoryUsage())
	assert.NoError(t, c.AcquireMatch(context.Background()))
	c.ReleaseMatch()
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<20))
}

func TestRateLimitedReader(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 4096)
	r := NewRateLimitedReader(context.Background(), bytes.NewReader(data), NewController(Config{}))
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
