package georoute_test

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hupe1980/georoute"
	"github.com/hupe1980/georoute/blobstore"
	"github.com/hupe1980/georoute/matcher"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/profile"
	"github.com/hupe1980/georoute/routedb"
	"github.com/hupe1980/georoute/search"
	"github.com/hupe1980/georoute/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	west = testutil.Grid{Rows: 3, Cols: 4, Origin: model.GeoCoord{Lat: 10, Lon: 10}, Spacing: 0.01, Seed: 1, Jitter: 0.1}
	// east shares its first column with the last column of west.
	east = testutil.Grid{Rows: 3, Cols: 4, Origin: model.GeoCoord{Lat: 10, Lon: 10.03}, Spacing: 0.01, FirstID: 100, Seed: 2, Jitter: 0.1}
	// island shares nothing with west.
	island = testutil.Grid{Rows: 2, Cols: 2, Origin: model.GeoCoord{Lat: -40, Lon: 170}, Spacing: 0.01, Seed: 3}
)

type countingMatcher struct {
	matcher.Matcher
	calls atomic.Int64
}

func (c *countingMatcher) FindCandidates(ctx context.Context, first, second matcher.Source) (matcher.Candidates, error) {
	c.calls.Add(1)
	return c.Matcher.FindCandidates(ctx, first, second)
}

type countingEngine struct {
	search.Engine
	calls atomic.Int64
}

func (c *countingEngine) CalculateRoute(ctx context.Context, st search.State, start, target model.RoutePosition, param model.RoutingParameter) (model.RoutingResult, error) {
	c.calls.Add(1)
	return c.Engine.CalculateRoute(ctx, st, start, target, param)
}

func openService(t *testing.T, dbs []routedb.Database, opts ...georoute.Option) *georoute.Service {
	t.Helper()
	svc, err := georoute.New(dbs, opts...)
	require.NoError(t, err)
	require.NoError(t, svc.Open(context.Background(), georoute.StaticProfile(profile.NewShortestPath(profile.VehicleCar))))
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func closest(t *testing.T, svc *georoute.Service, coord model.GeoCoord, hint string) model.RoutePosition {
	t.Helper()
	pos, err := svc.GetClosestRoutableNode(context.Background(), coord, 0.5, hint)
	require.NoError(t, err)
	require.True(t, pos.Valid())
	return pos
}

func TestNew_NoDatabases(t *testing.T) {
	_, err := georoute.New(nil)
	assert.ErrorIs(t, err, georoute.ErrNoDatabases)

	_, err = georoute.New([]routedb.Database{{Path: "a"}, {Path: "a"}})
	assert.ErrorIs(t, err, georoute.ErrDuplicateDatabase)
}

func TestService_Registry(t *testing.T) {
	store := blobstore.NewMemoryStore()
	testutil.WriteDataset(t, store, west.Dataset())

	svc, err := georoute.New([]routedb.Database{
		{Path: "first", Store: store},
		{Path: "second", Store: store},
	})
	require.NoError(t, err)

	id, ok := svc.DatabaseID("second")
	require.True(t, ok)
	assert.Equal(t, model.DatabaseID(1), id)
	_, ok = svc.DatabaseID("third")
	assert.False(t, ok)

	dbs := svc.Databases()
	require.Len(t, dbs, 2)
	assert.Equal(t, "first", dbs[0].Path)

	_, err = svc.GetClosestRoutableNode(context.Background(), west.Coord(0, 0), 1, "")
	assert.ErrorIs(t, err, georoute.ErrNotOpen)
	res := svc.CalculateRoute(context.Background(), model.RoutePosition{}, model.RoutePosition{}, model.RoutingParameter{})
	assert.ErrorIs(t, res.Err, georoute.ErrNotOpen)
}

func TestService_OpenCloseHandles(t *testing.T) {
	ctx := context.Background()
	westDB, westStore := testutil.LocalDatabase(t, west.Dataset(), true)
	eastDB, eastStore := testutil.LocalDatabase(t, east.Dataset(), false)

	svc, err := georoute.New([]routedb.Database{westDB, eastDB}, georoute.WithMatcherCellCache(true))
	require.NoError(t, err)

	// Close before any Open.
	require.NoError(t, svc.Close())

	for range 3 {
		require.NoError(t, svc.Open(ctx, nil))
		assert.True(t, svc.IsOpen())
		assert.Equal(t, int64(4), westStore.OpenHandles())
		assert.Equal(t, int64(4), eastStore.OpenHandles())

		start := closest(t, svc, west.Coord(0, 0), "")
		target := closest(t, svc, east.Coord(2, 3), "")
		res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
		require.NoError(t, res.Err)
		require.True(t, res.Success())

		require.NoError(t, svc.Close())
		require.NoError(t, svc.Close())
		assert.False(t, svc.IsOpen())
		assert.Zero(t, westStore.OpenHandles())
		assert.Zero(t, eastStore.OpenHandles())
	}
}

func TestService_OpenIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	westDB, westStore := testutil.LocalDatabase(t, west.Dataset(), false)
	missing := routedb.Database{Path: t.TempDir()}

	svc, err := georoute.New([]routedb.Database{westDB, missing})
	require.NoError(t, err)

	err = svc.Open(ctx, nil)
	var openErr *georoute.ErrOpenDatabase
	require.ErrorAs(t, err, &openErr)
	assert.Equal(t, missing.Path, openErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, svc.IsOpen())
	assert.Zero(t, westStore.OpenHandles())
	require.NoError(t, svc.Close())

	boom := errors.New("no profile")
	svc, err = georoute.New([]routedb.Database{westDB})
	require.NoError(t, err)
	err = svc.Open(ctx, func(routedb.Database) (profile.Profile, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, westStore.OpenHandles())
}

func TestService_GetClosestRoutableNode(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	testutil.WriteDataset(t, store, west.Dataset())

	mc := &georoute.BasicMetricsCollector{}
	svc := openService(t, []routedb.Database{
		{Path: "a", Store: store},
		{Path: "b", Store: store},
	}, georoute.WithMetricsCollector(mc))

	tests := []struct {
		name string
		hint string
		want model.DatabaseID
	}{
		{name: "no hint uses registry order", hint: "", want: 0},
		{name: "hint first", hint: "a", want: 0},
		{name: "hint second", hint: "b", want: 1},
		{name: "unknown hint", hint: "c", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := closest(t, svc, west.Coord(1, 2), tt.hint)
			assert.Equal(t, tt.want, pos.Database)

			n, err := svc.GetRouteNodeByOffset(ctx, pos.Locator())
			require.NoError(t, err)
			assert.Equal(t, west.NodeID(1, 2), n.ID)
		})
	}

	pos, err := svc.GetClosestRoutableNode(ctx, model.GeoCoord{Lat: 60, Lon: -20}, 5, "b")
	require.NoError(t, err)
	assert.False(t, pos.Valid())

	stats := mc.GetStats()
	assert.Equal(t, int64(5), stats.ClosestCount)
	assert.Equal(t, int64(1), stats.ClosestMisses)
}

func TestService_ClosestNodeFallsBackToOtherDatabases(t *testing.T) {
	westDB, _ := testutil.LocalDatabase(t, west.Dataset(), false)
	islandDB, _ := testutil.LocalDatabase(t, island.Dataset(), false)
	svc := openService(t, []routedb.Database{westDB, islandDB})

	pos := closest(t, svc, island.Coord(1, 1), westDB.Path)
	assert.Equal(t, model.DatabaseID(1), pos.Database)

	pos = closest(t, svc, west.Coord(0, 0), islandDB.Path)
	assert.Equal(t, model.DatabaseID(0), pos.Database)
}

func TestService_SameDatabaseNeverMatches(t *testing.T) {
	ctx := context.Background()
	westDB, _ := testutil.LocalDatabase(t, west.Dataset(), false)
	eastDB, _ := testutil.LocalDatabase(t, east.Dataset(), false)

	m := &countingMatcher{Matcher: matcher.New()}
	svc := openService(t, []routedb.Database{westDB, eastDB}, georoute.WithMatcher(m))

	start := closest(t, svc, west.Coord(0, 0), westDB.Path)
	target := closest(t, svc, west.Coord(2, 3), westDB.Path)

	res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
	require.NoError(t, res.Err)
	require.True(t, res.Success())
	assert.Equal(t, 6, res.Route.Len())
	assert.Equal(t, []model.DatabaseID{0}, res.Route.Databases())
	assert.Zero(t, m.calls.Load())
}

func TestService_NoCommonNodesSkipsSearch(t *testing.T) {
	ctx := context.Background()
	westDB, _ := testutil.LocalDatabase(t, west.Dataset(), false)
	islandDB, _ := testutil.LocalDatabase(t, island.Dataset(), false)

	m := &countingMatcher{Matcher: matcher.New()}
	e := &countingEngine{Engine: search.NewAStar()}
	mc := &georoute.BasicMetricsCollector{}
	svc := openService(t, []routedb.Database{westDB, islandDB},
		georoute.WithMatcher(m),
		georoute.WithSearchEngine(e),
		georoute.WithMetricsCollector(mc),
	)

	start := closest(t, svc, west.Coord(0, 0), "")
	target := closest(t, svc, island.Coord(1, 1), "")
	require.Equal(t, model.DatabaseID(1), target.Database)

	res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
	assert.NoError(t, res.Err)
	assert.False(t, res.Success())
	assert.Equal(t, int64(1), m.calls.Load())
	assert.Zero(t, e.calls.Load())

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.CrossRouteCount)
	assert.Equal(t, int64(1), stats.RouteNotFound)
	assert.Equal(t, int64(1), stats.MatchErrors)
}

func TestService_UnknownDatabase(t *testing.T) {
	ctx := context.Background()
	westDB, _ := testutil.LocalDatabase(t, west.Dataset(), false)
	svc := openService(t, []routedb.Database{westDB})

	start := closest(t, svc, west.Coord(0, 0), "")
	target := start
	target.Database = 7

	res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
	assert.NoError(t, res.Err)
	assert.False(t, res.Success())

	_, _, err := svc.GetRouteNode(ctx, 7, 1)
	var unknown *georoute.ErrUnknownDatabase
	assert.ErrorAs(t, err, &unknown)
}

func TestService_CrossDatabaseRoute(t *testing.T) {
	for _, mmap := range []bool{false, true} {
		t.Run(map[bool]string{false: "buffered", true: "mmap"}[mmap], func(t *testing.T) {
			ctx := context.Background()
			westDB, _ := testutil.LocalDatabase(t, west.Dataset(), mmap)
			eastDB, _ := testutil.LocalDatabase(t, east.Dataset(), mmap)
			mc := &georoute.BasicMetricsCollector{}
			svc := openService(t, []routedb.Database{westDB, eastDB}, georoute.WithMetricsCollector(mc))

			start := closest(t, svc, west.Coord(0, 0), westDB.Path)
			target := closest(t, svc, east.Coord(2, 3), eastDB.Path)
			require.Equal(t, model.DatabaseID(1), target.Database)

			res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
			require.NoError(t, res.Err)
			require.True(t, res.Success())

			entries := res.Route.Entries()
			// Six column and two row steps across both grids.
			require.Len(t, entries, 9)
			assert.Equal(t, west.NodeID(0, 0), entries[0].NodeID)
			assert.Equal(t, model.DatabaseID(0), entries[0].Database)
			assert.Equal(t, east.NodeID(2, 3), entries[8].NodeID)
			assert.Equal(t, model.DatabaseID(1), entries[8].Database)
			assert.Equal(t, []model.DatabaseID{0, 1}, res.Route.Databases())

			for i, e := range entries {
				assert.Len(t, e.Objects, 2, "entry %d", i)
				if i > 0 {
					assert.NotEqual(t, entries[i-1].Coord, e.Coord)
					assert.GreaterOrEqual(t, e.Cost, entries[i-1].Cost)
				}
			}
			assert.InDelta(t, res.Cost, entries[8].Cost, 1e-9)

			stats := mc.GetStats()
			assert.Equal(t, int64(1), stats.MatchCount)
			// The shared column has one node per row.
			assert.Equal(t, int64(west.Rows), stats.MatchCrossings)
		})
	}
}

func TestService_ConcurrentCrossDatabaseRoutes(t *testing.T) {
	const workers = 16
	for _, mmap := range []bool{false, true} {
		t.Run(map[bool]string{false: "buffered", true: "mmap"}[mmap], func(t *testing.T) {
			ctx := context.Background()
			westDB, _ := testutil.LocalDatabase(t, west.Dataset(), mmap)
			eastDB, _ := testutil.LocalDatabase(t, east.Dataset(), mmap)
			mc := &georoute.BasicMetricsCollector{}
			svc := openService(t, []routedb.Database{westDB, eastDB},
				georoute.WithMatcherCellCache(true),
				georoute.WithMetricsCollector(mc),
			)

			start := closest(t, svc, west.Coord(0, 0), westDB.Path)
			target := closest(t, svc, east.Coord(2, 3), eastDB.Path)

			var wg sync.WaitGroup
			for range workers {
				wg.Add(1)
				go func() {
					defer wg.Done()
					res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
					if !assert.NoError(t, res.Err) || !assert.True(t, res.Success()) {
						return
					}
					entries := res.Route.Entries()
					if assert.Len(t, entries, 9) {
						assert.Equal(t, west.NodeID(0, 0), entries[0].NodeID)
						assert.Equal(t, east.NodeID(2, 3), entries[8].NodeID)
						assert.Equal(t, []model.DatabaseID{0, 1}, res.Route.Databases())
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int64(0), mc.GetStats().MatchErrors)
		})
	}
}

func TestService_SelfMatchEqualsSingleDatabase(t *testing.T) {
	ctx := context.Background()
	g := testutil.Grid{Rows: 5, Cols: 6, Origin: model.GeoCoord{Lat: 48.1, Lon: 11.5}, Spacing: 0.005, Seed: 7, Jitter: 0.2}
	store := blobstore.NewMemoryStore()
	testutil.WriteDataset(t, store, g.Dataset())

	m := &countingMatcher{Matcher: matcher.New(matcher.WithCellCache(true))}
	svc := openService(t, []routedb.Database{
		{Path: "self/a", Store: store},
		{Path: "self/b", Store: store},
	}, georoute.WithMatcher(m))

	pairs := [][2][2]int{
		{{0, 0}, {4, 5}},
		{{4, 0}, {0, 5}},
		{{2, 3}, {2, 3}},
		{{1, 5}, {3, 0}},
	}
	for _, pair := range pairs {
		from, to := g.Coord(pair[0][0], pair[0][1]), g.Coord(pair[1][0], pair[1][1])

		start := closest(t, svc, from, "self/a")
		single := svc.CalculateRoute(ctx, start, closest(t, svc, to, "self/a"), model.RoutingParameter{})
		require.NoError(t, single.Err)
		require.True(t, single.Success())

		cross := svc.CalculateRoute(ctx, start, closest(t, svc, to, "self/b"), model.RoutingParameter{})
		require.NoError(t, cross.Err)
		require.True(t, cross.Success())

		assert.InDelta(t, single.Cost, cross.Cost, 1e-9)
		assert.Equal(t, single.Route.Coords(), cross.Route.Coords())
		assert.Equal(t, model.DatabaseID(1), cross.Route.Entries()[cross.Route.Len()-1].Database)
	}
	assert.Equal(t, int64(len(pairs)), m.calls.Load())
}

func TestService_CrossDatabaseRouteCanceled(t *testing.T) {
	westDB, _ := testutil.LocalDatabase(t, west.Dataset(), false)
	eastDB, _ := testutil.LocalDatabase(t, east.Dataset(), false)
	svc := openService(t, []routedb.Database{westDB, eastDB})

	start := closest(t, svc, west.Coord(0, 0), "")
	target := closest(t, svc, east.Coord(2, 3), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, res.Success())
}

func TestService_CrossDatabaseRouteIOFailure(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	testutil.WriteDataset(t, mem, east.Dataset())
	faulty := blobstore.NewFaultyStore(mem)

	westDB, _ := testutil.LocalDatabase(t, west.Dataset(), false)
	mc := &georoute.BasicMetricsCollector{}
	svc := openService(t, []routedb.Database{westDB, {Path: "east", Store: faulty}}, georoute.WithMetricsCollector(mc))
	handles := faulty.OpenHandles()

	start := closest(t, svc, west.Coord(0, 0), "")
	target := closest(t, svc, east.Coord(2, 3), "east")

	// Only handles opened from now on are affected; the scan reads past the header.
	faulty.AddRule(routedb.RouteNodeDataFile, blobstore.Fault{
		FailAfterBytes: 32,
		Modes:          []blobstore.AccessMode{blobstore.AccessSequential},
	})

	res := svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
	assert.ErrorIs(t, res.Err, blobstore.ErrInjected)
	assert.False(t, res.Success())
	assert.Nil(t, res.Route)
	assert.Positive(t, faulty.Injected())
	assert.Equal(t, handles, faulty.OpenHandles())
	assert.Equal(t, int64(1), mc.GetStats().MatchErrors)

	// The same databases route again once the fault is gone.
	faulty.ClearRules()
	res = svc.CalculateRoute(ctx, start, target, model.RoutingParameter{})
	require.NoError(t, res.Err)
	assert.True(t, res.Success())
}

func TestService_RouteNodeLookups(t *testing.T) {
	ctx := context.Background()
	westDB, _ := testutil.LocalDatabase(t, west.Dataset(), false)
	eastDB, _ := testutil.LocalDatabase(t, east.Dataset(), false)
	svc := openService(t, []routedb.Database{westDB, eastDB})

	n, ok, err := svc.GetRouteNode(ctx, 1, east.NodeID(1, 1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, east.Coord(1, 1), n.Coord)

	_, ok, err = svc.GetRouteNode(ctx, 0, east.NodeID(1, 1))
	require.NoError(t, err)
	assert.False(t, ok)

	a := closest(t, svc, west.Coord(2, 1), westDB.Path)
	b := closest(t, svc, east.Coord(0, 2), eastDB.Path)
	nodes, err := svc.GetRouteNodesByOffset(ctx, []model.DBFileOffset{a.Locator(), b.Locator(), a.Locator()})
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, west.NodeID(2, 1), nodes[a.Locator()].ID)
	assert.Equal(t, east.NodeID(0, 2), nodes[b.Locator()].ID)

	_, err = svc.GetRouteNodesByOffset(ctx, []model.DBFileOffset{{Database: 9}})
	var unknown *georoute.ErrUnknownDatabase
	assert.ErrorAs(t, err, &unknown)
}

func TestService_ResolveRouteDataJunctions(t *testing.T) {
	ctx := context.Background()
	westDB, _ := testutil.LocalDatabase(t, west.Dataset(), false)
	eastDB, _ := testutil.LocalDatabase(t, east.Dataset(), false)
	svc := openService(t, []routedb.Database{westDB, eastDB})

	route := model.NewRouteData(3)
	route.Append(model.RouteEntry{Database: 0, NodeID: west.NodeID(0, 0)})
	route.Append(model.RouteEntry{Database: 1, NodeID: east.NodeID(0, 1)})
	route.Append(model.RouteEntry{Database: 1, NodeID: 9999})

	require.NoError(t, svc.ResolveRouteDataJunctions(ctx, route))
	entries := route.Entries()
	assert.Len(t, entries[0].Objects, 2)
	assert.Len(t, entries[1].Objects, 2)
	assert.Empty(t, entries[2].Objects)
}
