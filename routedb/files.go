package routedb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/georoute/internal/datafile"
	"github.com/hupe1980/georoute/internal/format"
	"github.com/hupe1980/georoute/model"
)

// ErrNotOpen is returned when a closed Files bundle is accessed.
var ErrNotOpen = errors.New("routedb: files not open")

// Files bundles the route node, junction and object variant stores of one
// database. It is safe for concurrent use once opened.
type Files struct {
	opts options

	mu       sync.RWMutex
	db       Database
	open     bool
	variants *VariantTable

	routeNodes *datafile.IndexedFile[model.RouteNode]
	junctions  *datafile.IndexedFile[model.Junction]
}

// NewFiles creates a closed bundle with the given cache sizes.
func NewFiles(cfg FilesConfig, optFns ...Option) *Files {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	dfOpts := []datafile.Option{
		datafile.WithLogger(opts.logger),
		datafile.WithResourceController(opts.rc),
	}

	return &Files{
		opts: opts,
		routeNodes: datafile.New(datafile.Config{
			DataName:       RouteNodeDataFile,
			DataMagic:      format.MagicRouteNodes,
			IndexName:      RouteNodeIndexFile,
			IndexMagic:     format.MagicRouteIndex,
			IndexCacheSize: cfg.RouteNodeIndexCacheSize,
			DataCacheSize:  cfg.RouteNodeDataCacheSize,
		}, DecodeRouteNode, routeNodeSize, dfOpts...),
		junctions: datafile.New(datafile.Config{
			DataName:       JunctionDataFile,
			DataMagic:      format.MagicJunctions,
			IndexName:      JunctionIndexFile,
			IndexMagic:     format.MagicJunctionIndex,
			IndexCacheSize: cfg.JunctionIndexCacheSize,
			DataCacheSize:  cfg.JunctionDataCacheSize,
		}, DecodeJunction, junctionSize, dfOpts...),
	}
}

// Open opens the object variant table, the route node store and the
// junction store, in this order. The first failure aborts; stores opened
// before it stay open until Close.
func (f *Files) Open(ctx context.Context, db Database) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.open {
		return fmt.Errorf("routedb: %s: files already open", db.Path)
	}

	store := db.BlobStore()
	f.db = db

	variants, err := LoadVariantTable(ctx, store)
	if err != nil {
		return fmt.Errorf("routedb: %s: %s: %w", db.Path, ObjectVariantFile, err)
	}
	f.variants = variants

	if err := f.routeNodes.Open(ctx, store, db.RouterDataMMap); err != nil {
		return fmt.Errorf("routedb: %s: %w", db.Path, err)
	}

	if err := f.junctions.Open(ctx, store, false); err != nil {
		return fmt.Errorf("routedb: %s: %w", db.Path, err)
	}

	f.open = true
	f.opts.logger.Info("database files opened",
		slog.String("path", db.Path),
		slog.Int("route_nodes", int(f.routeNodes.Count())),
		slog.Int("junctions", int(f.junctions.Count())),
		slog.Int("variants", variants.Len()),
		slog.Bool("mmap", db.RouterDataMMap),
	)
	return nil
}

// Close closes all stores. It is idempotent and safe after a failed Open.
func (f *Files) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := errors.Join(f.routeNodes.Close(), f.junctions.Close())
	f.variants = nil
	f.open = false
	return err
}

// IsOpen reports whether Open succeeded and Close was not called since.
func (f *Files) IsOpen() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.open
}

// Database returns the database the bundle was last opened for.
func (f *Files) Database() Database {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.db
}

// Key identifies the database for caches shared across queries.
func (f *Files) Key() string {
	return f.Database().Path
}

// RouteNodes returns the route node store.
func (f *Files) RouteNodes() *datafile.IndexedFile[model.RouteNode] { return f.routeNodes }

// Junctions returns the junction store.
func (f *Files) Junctions() *datafile.IndexedFile[model.Junction] { return f.junctions }

// Variants returns the object variant table, nil while closed.
func (f *Files) Variants() *VariantTable {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.variants
}

// ScanRouteNodes calls fn for every route node in file order.
func (f *Files) ScanRouteNodes(ctx context.Context, fn func(n model.RouteNode) error) error {
	if !f.IsOpen() {
		return ErrNotOpen
	}
	return f.routeNodes.Scan(ctx, func(_ model.FileOffset, n model.RouteNode) error {
		return fn(n)
	})
}

// LoadRouteNodes returns the route nodes with the given ids.
func (f *Files) LoadRouteNodes(ctx context.Context, ids *roaring64.Bitmap) (map[model.ID]model.RouteNode, error) {
	if !f.IsOpen() {
		return nil, ErrNotOpen
	}
	return f.routeNodes.GetByIDs(ctx, ids)
}

// ResolveJunctions attaches junction objects to the entries of route in db.
func (f *Files) ResolveJunctions(ctx context.Context, route *model.RouteData, db model.DatabaseID) error {
	return ResolveJunctions(ctx, route, db, f.junctions)
}
