package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/georoute/blobstore"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/routedb"
)

// Grid describes a rectangular street grid. Every row and every column is
// one way; nodes sit on their crossings.
type Grid struct {
	Rows, Cols int
	// Origin is the south-west corner.
	Origin model.GeoCoord
	// Spacing is the distance between neighbours in degrees.
	Spacing float64
	// FirstID is the id of the south-west node. Zero means 1.
	FirstID model.ID
	// Seed drives the path length jitter. Path lengths are the great-circle
	// distance stretched by up to Jitter (default 0.25) so shortest paths
	// are unique.
	Seed   int64
	Jitter float64
	// Variant is the object variant of all ways. Zero means AccessAll.
	Variant model.ObjectVariant
}

func (g Grid) firstID() model.ID {
	if g.FirstID == 0 {
		return 1
	}
	return g.FirstID
}

// NodeID returns the id of the node at row, col.
func (g Grid) NodeID(row, col int) model.ID {
	return g.firstID() + model.ID(row*g.Cols+col)
}

// Coord returns the coordinate of the node at row, col at storage resolution.
func (g Grid) Coord(row, col int) model.GeoCoord {
	c := model.GeoCoord{
		Lat: g.Origin.Lat + float64(row)*g.Spacing,
		Lon: g.Origin.Lon + float64(col)*g.Spacing,
	}
	lat, lon := c.Fixed()
	return model.NewGeoCoordFixed(lat, lon)
}

func rowWay(row int) model.ObjectFileRef {
	return model.ObjectFileRef{Type: model.RefWay, Offset: model.FileOffset(1000 + row)}
}

func colWay(col int) model.ObjectFileRef {
	return model.ObjectFileRef{Type: model.RefWay, Offset: model.FileOffset(5000 + col)}
}

// Dataset builds the grid.
func (g Grid) Dataset() routedb.Dataset {
	variant := g.Variant
	if variant == (model.ObjectVariant{}) {
		variant = model.ObjectVariant{TypeID: 1, Access: model.AccessAll}
	}
	jitter := g.Jitter
	if jitter == 0 {
		jitter = 0.25
	}
	rng := NewRNG(g.Seed)

	nodes := make([]model.RouteNode, 0, g.Rows*g.Cols)
	index := make(map[model.ID]int, g.Rows*g.Cols)
	for row := range g.Rows {
		for col := range g.Cols {
			id := g.NodeID(row, col)
			index[id] = len(nodes)
			nodes = append(nodes, model.RouteNode{
				ID:    id,
				Coord: g.Coord(row, col),
				Objects: []model.ObjectVariantRef{
					{Object: rowWay(row)},
					{Object: colWay(col)},
				},
			})
		}
	}

	link := func(a, b model.ID, objectIndex uint16) {
		na, nb := &nodes[index[a]], &nodes[index[b]]
		d := na.Coord.Distance(nb.Coord) * (1 + jitter*rng.Float64())
		na.Paths = append(na.Paths, model.Path{Target: b, ObjectIndex: objectIndex, Distance: d})
		nb.Paths = append(nb.Paths, model.Path{Target: a, ObjectIndex: objectIndex, Distance: d, Flags: model.PathBackward})
	}
	for row := range g.Rows {
		for col := range g.Cols {
			if col+1 < g.Cols {
				link(g.NodeID(row, col), g.NodeID(row, col+1), 0)
			}
			if row+1 < g.Rows {
				link(g.NodeID(row, col), g.NodeID(row+1, col), 1)
			}
		}
	}

	return routedb.Dataset{
		Variants: []model.ObjectVariant{variant},
		Nodes:    nodes,
	}
}

// WriteDataset writes ds to store and fails the test on error.
func WriteDataset(tb testing.TB, store blobstore.Writable, ds routedb.Dataset) *routedb.Layout {
	tb.Helper()
	layout, err := routedb.NewWriter().Write(context.Background(), store, ds)
	require.NoError(tb, err)
	return layout
}

// LocalDatabase writes ds into a fresh temporary directory and returns the
// database together with its store.
func LocalDatabase(tb testing.TB, ds routedb.Dataset, mmap bool) (routedb.Database, *blobstore.LocalStore) {
	tb.Helper()
	dir := tb.TempDir()
	store := blobstore.NewLocalStore(dir)
	WriteDataset(tb, store, ds)
	return routedb.Database{Path: dir, Store: store, RouterDataMMap: mmap}, store
}
