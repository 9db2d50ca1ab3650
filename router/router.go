package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/paulmach/orb/geo"

	"github.com/hupe1980/georoute/internal/geocell"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/profile"
	"github.com/hupe1980/georoute/routedb"
	"github.com/hupe1980/georoute/search"
)

// ErrNotOpen is returned when a closed Router is queried.
var ErrNotOpen = errors.New("router: not open")

// Router routes inside one database. It is safe for concurrent use.
type Router struct {
	db    routedb.Database
	opts  options
	files *routedb.Files

	mu   sync.RWMutex
	open bool
	grid map[uint32][]model.FileOffset
}

// New creates a closed Router for db.
func New(db routedb.Database, optFns ...Option) *Router {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.engine == nil {
		opts.engine = search.NewAStar(search.WithLogger(opts.logger))
	}
	return &Router{
		db:   db,
		opts: opts,
		files: routedb.NewFiles(opts.filesConfig,
			routedb.WithLogger(opts.logger),
			routedb.WithResourceController(opts.rc),
		),
	}
}

// Open opens the database files and builds the lookup grid. On failure
// everything opened is closed again.
func (r *Router) Open(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open {
		return nil
	}

	if err := r.files.Open(ctx, r.db); err != nil {
		_ = r.files.Close()
		return err
	}

	grid := make(map[uint32][]model.FileOffset)
	err := r.files.RouteNodes().Scan(ctx, func(off model.FileOffset, n model.RouteNode) error {
		id := geocell.ID(n.Coord)
		grid[id] = append(grid[id], off)
		return nil
	})
	if err != nil {
		_ = r.files.Close()
		return fmt.Errorf("router: %s: build grid: %w", r.db.Path, err)
	}

	r.grid = grid
	r.open = true
	r.opts.logger.Debug("router opened",
		slog.String("path", r.db.Path),
		slog.Int("cells", len(grid)),
	)
	return nil
}

// Close closes the database files. It is idempotent.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.open = false
	r.grid = nil
	return r.files.Close()
}

// IsOpen reports whether the router is open.
func (r *Router) IsOpen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.open
}

// Database returns the database of the router.
func (r *Router) Database() routedb.Database { return r.db }

// DatabaseID returns the id positions are tagged with.
func (r *Router) DatabaseID() model.DatabaseID { return r.opts.databaseID }

// Files returns the database files.
func (r *Router) Files() *routedb.Files { return r.files }

// GetClosestRoutableNode returns the route node closest to coord within
// radius km that has at least one path usable under p. Without such a node
// it returns model.InvalidRoutePosition and a nil error.
func (r *Router) GetClosestRoutableNode(ctx context.Context, coord model.GeoCoord, p profile.Profile, radius float64) (model.RoutePosition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.open {
		return model.InvalidRoutePosition, ErrNotOpen
	}
	if radius < 0 || !coord.Valid() {
		return model.InvalidRoutePosition, nil
	}

	bound := geo.NewBoundAroundPoint(coord.Point(), radius*1000)
	cells, ok := geocell.Covering(bound, r.opts.maxLookupCells)
	if !ok {
		cells = make([]uint32, 0, len(r.grid))
		for id := range r.grid {
			cells = append(cells, id)
		}
	}

	variants := r.files.Variants()
	var (
		best     = model.InvalidRoutePosition
		bestDist float64
		bestOff  model.FileOffset
	)
	for _, cell := range cells {
		for _, off := range r.grid[cell] {
			n, err := r.files.RouteNodes().GetByOffset(ctx, off)
			if err != nil {
				return model.InvalidRoutePosition, err
			}
			d := coord.Distance(n.Coord)
			if d > radius {
				continue
			}
			if best.Valid() && (d > bestDist || (d == bestDist && off > bestOff)) {
				continue
			}
			objectIndex, ok := routableObject(&n, variants, p)
			if !ok {
				continue
			}
			best = model.RoutePosition{
				Object:    model.ObjectFileRef{Type: model.RefRouteNode, Offset: off},
				NodeIndex: objectIndex,
				Database:  r.opts.databaseID,
			}
			bestDist, bestOff = d, off
		}
	}
	return best, nil
}

// routableObject returns the object index of the first path of n usable under p.
func routableObject(n *model.RouteNode, variants profile.VariantLookup, p profile.Profile) (int, bool) {
	for i := range n.Paths {
		if p.CanUse(n, variants, i) {
			return int(n.Paths[i].ObjectIndex), true
		}
	}
	return 0, false
}

// CalculateRoute computes a route between two positions of this database
// and attaches junction objects to its entries.
func (r *Router) CalculateRoute(ctx context.Context, p profile.Profile, start, target model.RoutePosition, param model.RoutingParameter) model.RoutingResult {
	if !r.IsOpen() {
		return model.RoutingResult{Err: ErrNotOpen}
	}
	if start.Database != r.opts.databaseID || target.Database != r.opts.databaseID {
		return model.RoutingResult{}
	}

	res, err := r.opts.engine.CalculateRoute(ctx, NewState(r.opts.databaseID, r.files, p), start, target, param)
	if err != nil {
		return model.RoutingResult{Err: err}
	}
	if !res.Success() {
		return res
	}
	if err := r.files.ResolveJunctions(ctx, res.Route, r.opts.databaseID); err != nil {
		return model.RoutingResult{Err: err}
	}
	return res
}
