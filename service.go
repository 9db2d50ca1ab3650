package georoute

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/georoute/matcher"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/profile"
	"github.com/hupe1980/georoute/routedb"
	"github.com/hupe1980/georoute/router"
	"github.com/hupe1980/georoute/search"
)

// ProfileBuilder builds the cost profile of a database.
type ProfileBuilder func(db routedb.Database) (profile.Profile, error)

// StaticProfile returns a ProfileBuilder that uses p for every database.
func StaticProfile(p profile.Profile) ProfileBuilder {
	return func(routedb.Database) (profile.Profile, error) { return p, nil }
}

var _ matcher.NodeSource = (*routedb.Files)(nil)

// database is one registry entry.
type database struct {
	id      model.DatabaseID
	db      routedb.Database
	router  *router.Router
	files   *routedb.Files
	profile profile.Profile
}

// Service routes over several databases. Routes whose start and target
// lie in different databases are stitched at the route nodes both
// databases share. It is safe for concurrent use.
type Service struct {
	opts    options
	matcher matcher.Matcher
	engine  search.Engine

	mu        sync.RWMutex
	open      bool
	order     []model.DatabaseID
	databases map[model.DatabaseID]*database
	ids       map[string]model.DatabaseID
}

// New registers dbs in the given order. Database ids are assigned in
// registry order starting at 0. The Service is returned closed.
func New(dbs []routedb.Database, optFns ...Option) (*Service, error) {
	if len(dbs) == 0 {
		return nil, ErrNoDatabases
	}

	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Service{
		opts:      opts,
		matcher:   opts.matcher,
		engine:    opts.engine,
		databases: make(map[model.DatabaseID]*database, len(dbs)),
		ids:       make(map[string]model.DatabaseID, len(dbs)),
	}
	if s.engine == nil {
		s.engine = search.NewAStar(search.WithLogger(opts.logger.Logger))
	}
	if s.matcher == nil {
		s.matcher = matcher.New(
			matcher.WithLogger(opts.logger.Logger),
			matcher.WithResourceController(opts.rc),
			matcher.WithCellCache(opts.cellCache),
		)
	}

	for i, db := range dbs {
		if _, dup := s.ids[db.Path]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDatabase, db.Path)
		}
		id := model.DatabaseID(i)

		routerOpts := append([]router.Option{
			router.WithLogger(opts.logger.WithDatabase(id, db.Path).Logger),
			router.WithResourceController(opts.rc),
			router.WithFilesConfig(opts.filesConfig),
			router.WithEngine(s.engine),
		}, opts.routerOptions...)
		routerOpts = append(routerOpts, router.WithDatabaseID(id))

		r := router.New(db, routerOpts...)
		s.databases[id] = &database{id: id, db: db, router: r, files: r.Files()}
		s.order = append(s.order, id)
		s.ids[db.Path] = id
	}
	return s, nil
}

// Open opens every database in registry order: its router, its profile
// built by pb and its files. Opening is all-or-nothing; on the first
// failure everything opened so far is closed again.
func (s *Service) Open(ctx context.Context, pb ProfileBuilder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		return nil
	}
	if len(s.order) == 0 {
		return ErrNoDatabases
	}
	if pb == nil {
		pb = DefaultProfileBuilder
	}

	for _, id := range s.order {
		d := s.databases[id]
		if err := s.openDatabase(ctx, d, pb); err != nil {
			err = &ErrOpenDatabase{Path: d.db.Path, cause: err}
			_ = s.closeLocked()
			s.opts.logger.LogOpen(ctx, len(s.order), err)
			return err
		}
	}

	s.open = true
	s.opts.logger.LogOpen(ctx, len(s.order), nil)
	return nil
}

func (s *Service) openDatabase(ctx context.Context, d *database, pb ProfileBuilder) error {
	if err := d.router.Open(ctx); err != nil {
		return err
	}
	p, err := pb(d.db)
	if err != nil {
		return err
	}
	if p == nil {
		return errors.New("profile builder returned no profile")
	}
	d.profile = p
	if !d.files.IsOpen() {
		return routedb.ErrNotOpen
	}
	return nil
}

// DefaultProfileBuilder builds profile.DefaultConfig for every database.
func DefaultProfileBuilder(routedb.Database) (profile.Profile, error) {
	return profile.New(profile.DefaultConfig())
}

// Close closes every database. It is idempotent and safe on a Service
// that was never opened or failed to open.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Service) closeLocked() error {
	var errs []error
	for _, id := range s.order {
		d := s.databases[id]
		if err := d.router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", d.db.Path, err))
		}
		d.profile = nil
	}
	if cm, ok := s.matcher.(*matcher.CellMatcher); ok {
		cm.Reset()
	}
	s.open = false
	return errors.Join(errs...)
}

// IsOpen reports whether the Service is open.
func (s *Service) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// DatabaseID returns the id of the database registered under path.
func (s *Service) DatabaseID(path string) (model.DatabaseID, bool) {
	id, ok := s.ids[path]
	return id, ok
}

// Databases returns the registered databases in registry order.
func (s *Service) Databases() []routedb.Database {
	out := make([]routedb.Database, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.databases[id].db)
	}
	return out
}

// GetClosestRoutableNode returns the routable node closest to coord within
// radius km. The database registered under hint is asked first; the others
// follow in registry order and the first database with a match wins.
// Without a match the position is invalid and the error nil.
func (s *Service) GetClosestRoutableNode(ctx context.Context, coord model.GeoCoord, radius float64, hint string) (model.RoutePosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	log := s.opts.logger.WithQuery(uuid.NewString())

	pos, err := s.closestNode(ctx, coord, radius, hint)
	log.LogClosestNode(ctx, coord, pos, err)
	s.opts.metricsCollector.RecordClosestNode(time.Since(start), pos.Valid(), err)
	return pos, err
}

func (s *Service) closestNode(ctx context.Context, coord model.GeoCoord, radius float64, hint string) (model.RoutePosition, error) {
	if !s.open {
		return model.InvalidRoutePosition, ErrNotOpen
	}

	hintID, hinted := s.ids[hint]
	if hinted {
		d := s.databases[hintID]
		pos, err := d.router.GetClosestRoutableNode(ctx, coord, d.profile, radius)
		if err != nil || pos.Valid() {
			return pos, err
		}
	}

	for _, id := range s.order {
		if hinted && id == hintID {
			continue
		}
		d := s.databases[id]
		pos, err := d.router.GetClosestRoutableNode(ctx, coord, d.profile, radius)
		if err != nil || pos.Valid() {
			return pos, err
		}
	}
	return model.InvalidRoutePosition, nil
}

// CalculateRoute computes the cheapest route from start to target.
//
// Positions of the same database are routed by that database's router
// alone. Otherwise both databases are matched, the candidate nodes are
// verified against each other and the route is searched on the merged
// graph. An unreachable target or databases without common nodes yield an
// invalid result with a nil Err; Err is set for I/O failures and
// cancellation.
func (s *Service) CalculateRoute(ctx context.Context, start, target model.RoutePosition, param model.RoutingParameter) model.RoutingResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := time.Now()
	log := s.opts.logger.WithQuery(uuid.NewString())
	cross := start.Database != target.Database

	res := s.calculateRoute(ctx, log, start, target, param)
	log.LogRoute(ctx, cross, res)
	s.opts.metricsCollector.RecordRoute(cross, time.Since(t), res.Success(), res.Err)
	return res
}

func (s *Service) calculateRoute(ctx context.Context, log *Logger, start, target model.RoutePosition, param model.RoutingParameter) model.RoutingResult {
	if !s.open {
		return model.RoutingResult{Err: ErrNotOpen}
	}
	if !start.Valid() || !target.Valid() {
		return model.RoutingResult{}
	}

	first, ok := s.databases[start.Database]
	if !ok {
		return model.RoutingResult{}
	}
	if start.Database == target.Database {
		return first.router.CalculateRoute(ctx, first.profile, start, target, param)
	}

	second, ok := s.databases[target.Database]
	if !ok {
		return model.RoutingResult{}
	}
	return s.calculateCrossRoute(ctx, log, first, second, start, target, param)
}

func (s *Service) calculateCrossRoute(ctx context.Context, log *Logger, first, second *database, start, target model.RoutePosition, param model.RoutingParameter) model.RoutingResult {
	crossings, err := s.match(ctx, log, first, second)
	if err != nil {
		if errors.Is(err, matcher.ErrNoCommonNodes) {
			return model.RoutingResult{}
		}
		return model.RoutingResult{Err: err}
	}
	if len(crossings) == 0 {
		return model.RoutingResult{}
	}

	st := newMultiState(
		router.NewState(first.id, first.files, first.profile),
		router.NewState(second.id, second.files, second.profile),
		crossings,
	)
	res, err := s.engine.CalculateRoute(ctx, st, start, target, param)
	if err != nil {
		return model.RoutingResult{Err: err}
	}
	if !res.Success() {
		return res
	}
	if err := s.resolveJunctions(ctx, res.Route); err != nil {
		return model.RoutingResult{Err: err}
	}
	return res
}

// match finds the route nodes first and second share. Candidates found at
// cell granularity are reloaded from both databases and kept only when
// their stored coordinates are identical.
func (s *Service) match(ctx context.Context, log *Logger, first, second *database) ([]matcher.Crossing, error) {
	t := time.Now()
	crossings, err := s.findCrossings(ctx, first, second)
	log.LogMatch(ctx, first.db.Path, second.db.Path, len(crossings), err)
	s.opts.metricsCollector.RecordMatch(len(crossings), time.Since(t), err)
	return crossings, err
}

func (s *Service) findCrossings(ctx context.Context, first, second *database) ([]matcher.Crossing, error) {
	res, err := matcher.Match(ctx, s.matcher, first.files, second.files)
	if err != nil {
		return nil, err
	}
	return res.Crossings, nil
}

// ResolveRouteDataJunctions attaches junction objects to the entries of
// route that have none yet, database by database.
func (s *Service) ResolveRouteDataJunctions(ctx context.Context, route *model.RouteData) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.open {
		return ErrNotOpen
	}
	return s.resolveJunctions(ctx, route)
}

func (s *Service) resolveJunctions(ctx context.Context, route *model.RouteData) error {
	for _, id := range route.Databases() {
		d, ok := s.databases[id]
		if !ok {
			return &ErrUnknownDatabase{ID: id}
		}
		if err := d.files.ResolveJunctions(ctx, route, id); err != nil {
			return err
		}
	}
	return nil
}

// GetRouteNode returns the route node id of database db.
func (s *Service) GetRouteNode(ctx context.Context, db model.DatabaseID, id model.ID) (model.RouteNode, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.lookup(db)
	if err != nil {
		return model.RouteNode{}, false, err
	}
	return d.files.RouteNodes().Get(ctx, id)
}

// GetRouteNodeByOffset returns the route node at loc.
func (s *Service) GetRouteNodeByOffset(ctx context.Context, loc model.DBFileOffset) (model.RouteNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.lookup(loc.Database)
	if err != nil {
		return model.RouteNode{}, err
	}
	return d.files.RouteNodes().GetByOffset(ctx, loc.Offset)
}

// GetRouteNodesByOffset loads the route nodes at locs, one batch per
// database.
func (s *Service) GetRouteNodesByOffset(ctx context.Context, locs []model.DBFileOffset) (map[model.DBFileOffset]model.RouteNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDB := make(map[model.DatabaseID][]model.FileOffset)
	for _, loc := range locs {
		if _, err := s.lookup(loc.Database); err != nil {
			return nil, err
		}
		byDB[loc.Database] = append(byDB[loc.Database], loc.Offset)
	}

	out := make(map[model.DBFileOffset]model.RouteNode, len(locs))
	for _, id := range s.order {
		offs, ok := byDB[id]
		if !ok {
			continue
		}
		nodes, err := s.databases[id].files.RouteNodes().GetByOffsets(ctx, offs)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			out[model.DBFileOffset{Database: id, Offset: n.FileOffset}] = n
		}
	}
	return out, nil
}

func (s *Service) lookup(id model.DatabaseID) (*database, error) {
	if !s.open {
		return nil, ErrNotOpen
	}
	d, ok := s.databases[id]
	if !ok {
		return nil, &ErrUnknownDatabase{ID: id}
	}
	return d, nil
}
