package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a charge would exceed the memory limit.
var ErrMemoryLimitExceeded = errors.New("resource: memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for cached records.
	// If 0, usage is only tracked.
	MemoryLimitBytes int64

	// MaxConcurrentMatches limits concurrently running cross-database
	// match runs. If 0, defaults to 1.
	MaxConcurrentMatches int64

	// ScanBytesPerSec throttles sequential scans. If 0, unlimited.
	ScanBytesPerSec int64
}

// Controller manages memory, match concurrency and scan IO.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	matchSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentMatches <= 0 {
		cfg.MaxConcurrentMatches = 1
	}

	c := &Controller{
		cfg:      cfg,
		matchSem: semaphore.NewWeighted(cfg.MaxConcurrentMatches),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.ScanBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.ScanBytesPerSec), int(cfg.ScanBytesPerSec))
	}

	return c
}

// AcquireMemory reserves bytes without blocking.
// Returns ErrMemoryLimitExceeded if the limit would be exceeded.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory returns reserved bytes.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the currently reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured limit (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireMatch reserves a match slot, blocking until one is free or ctx is done.
func (c *Controller) AcquireMatch(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.matchSem.Acquire(ctx, 1)
}

// ReleaseMatch releases a match slot.
func (c *Controller) ReleaseMatch() {
	if c == nil {
		return
	}
	c.matchSem.Release(1)
}

// AcquireIO waits until the scan limiter allows n bytes.
// Requests larger than the burst are split.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil || n <= 0 {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
