package matcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/georoute/internal/geocell"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/resource"
)

// ErrNoCommonNodes is returned when two databases share no cell.
var ErrNoCommonNodes = errors.New("matcher: no common nodes")

// Source is a database whose route nodes can be scanned sequentially.
type Source interface {
	// Key identifies the database for the cell cache.
	Key() string
	// ScanRouteNodes calls fn for every route node.
	ScanRouteNodes(ctx context.Context, fn func(n model.RouteNode) error) error
}

// Candidates are the ids of the route nodes lying in cells both databases touch.
type Candidates struct {
	First  *roaring64.Bitmap
	Second *roaring64.Bitmap
	// Cells is the number of common cells.
	Cells uint64
}

// Empty reports whether either side has no candidate.
func (c Candidates) Empty() bool {
	return c.First == nil || c.Second == nil || c.First.IsEmpty() || c.Second.IsEmpty()
}

// Matcher finds crossing candidates between two databases.
type Matcher interface {
	FindCandidates(ctx context.Context, first, second Source) (Candidates, error)
}

type options struct {
	logger    *slog.Logger
	rc        *resource.Controller
	cellCache bool
}

// Option configures a CellMatcher.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithResourceController limits concurrent match runs through rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithCellCache keeps the cell set of every database after its first scan.
// Concurrent first scans of the same database are shared.
func WithCellCache(enabled bool) Option {
	return func(o *options) {
		o.cellCache = enabled
	}
}

// CellMatcher implements Matcher on the geocell grid.
// It is safe for concurrent use.
type CellMatcher struct {
	opts options

	group singleflight.Group
	mu    sync.RWMutex
	cells map[string]*roaring.Bitmap
}

var _ Matcher = (*CellMatcher)(nil)

// New creates a CellMatcher.
func New(optFns ...Option) *CellMatcher {
	opts := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CellMatcher{
		opts:  opts,
		cells: make(map[string]*roaring.Bitmap),
	}
}

// FindCandidates returns the candidate node ids of both databases, or
// ErrNoCommonNodes if their cell sets are disjoint. Scan failures discard
// everything collected so far.
func (m *CellMatcher) FindCandidates(ctx context.Context, first, second Source) (Candidates, error) {
	if err := m.opts.rc.AcquireMatch(ctx); err != nil {
		return Candidates{}, err
	}
	defer m.opts.rc.ReleaseMatch()

	start := time.Now()

	cellsFirst, err := m.cellSet(ctx, first)
	if err != nil {
		return Candidates{}, err
	}
	cellsSecond, err := m.cellSet(ctx, second)
	if err != nil {
		return Candidates{}, err
	}

	common := roaring.And(cellsFirst, cellsSecond)
	if common.IsEmpty() {
		m.opts.logger.Debug("no common cells",
			slog.String("first", first.Key()),
			slog.String("second", second.Key()),
		)
		return Candidates{}, ErrNoCommonNodes
	}

	idsFirst, err := nodesIn(ctx, first, common)
	if err != nil {
		return Candidates{}, err
	}
	idsSecond, err := nodesIn(ctx, second, common)
	if err != nil {
		return Candidates{}, err
	}

	m.opts.logger.Debug("candidates found",
		slog.String("first", first.Key()),
		slog.String("second", second.Key()),
		slog.Uint64("cells", common.GetCardinality()),
		slog.Uint64("first_nodes", idsFirst.GetCardinality()),
		slog.Uint64("second_nodes", idsSecond.GetCardinality()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return Candidates{First: idsFirst, Second: idsSecond, Cells: common.GetCardinality()}, nil
}

// Reset drops all cached cell sets.
func (m *CellMatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.cells)
}

// CachedCells returns the number of databases with a cached cell set.
func (m *CellMatcher) CachedCells() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cells)
}

// cellSet returns the cells touched by src. Cached sets are shared and must
// not be modified.
func (m *CellMatcher) cellSet(ctx context.Context, src Source) (*roaring.Bitmap, error) {
	if !m.opts.cellCache {
		return scanCells(ctx, src)
	}

	key := src.Key()
	m.mu.RLock()
	cells, ok := m.cells[key]
	m.mu.RUnlock()
	if ok {
		return cells, nil
	}

	for {
		v, err, shared := m.group.Do(key, func() (any, error) {
			m.mu.RLock()
			cells, ok := m.cells[key]
			m.mu.RUnlock()
			if ok {
				return cells, nil
			}

			cells, err := scanCells(ctx, src)
			if err != nil {
				return nil, err
			}
			m.mu.Lock()
			m.cells[key] = cells
			m.mu.Unlock()
			return cells, nil
		})
		if err != nil {
			// The scan ran under the context of another caller that went away.
			if shared && isContextErr(err) && ctx.Err() == nil {
				continue
			}
			return nil, err
		}
		return v.(*roaring.Bitmap), nil
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func scanCells(ctx context.Context, src Source) (*roaring.Bitmap, error) {
	cells := roaring.New()
	err := src.ScanRouteNodes(ctx, func(n model.RouteNode) error {
		cells.Add(geocell.ID(n.Coord))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("matcher: cell scan of %s: %w", src.Key(), err)
	}
	cells.RunOptimize()
	return cells, nil
}

func nodesIn(ctx context.Context, src Source, cells *roaring.Bitmap) (*roaring64.Bitmap, error) {
	ids := roaring64.New()
	err := src.ScanRouteNodes(ctx, func(n model.RouteNode) error {
		if cells.Contains(geocell.ID(n.Coord)) {
			ids.Add(uint64(n.ID))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("matcher: node scan of %s: %w", src.Key(), err)
	}
	return ids, nil
}
