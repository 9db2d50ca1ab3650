package importer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/georoute/blobstore"
	"github.com/hupe1980/georoute/internal/geocell"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/routedb"
	"github.com/hupe1980/georoute/testutil"
)

func TestParameter_Validate(t *testing.T) {
	require.NoError(t, DefaultParameter().Validate())

	tests := []struct {
		name   string
		mutate func(p *Parameter)
	}{
		{"max level", func(p *Parameter) { p.MaxLevel = 17 }},
		{"min above max", func(p *Parameter) { p.MinMag = 15 }},
		{"type id bytes", func(p *Parameter) { p.RouteTypeIDBytes = 3 }},
		{"cell fill", func(p *Parameter) { p.MaxCellFill = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameter()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParameter)
		})
	}
}

func TestAreaRouteIndexGenerator(t *testing.T) {
	ctx := context.Background()
	g := testutil.Grid{Rows: 5, Cols: 5, Origin: model.GeoCoord{Lat: 50, Lon: 8}, Spacing: 0.05,
		Variant: model.ObjectVariant{TypeID: 300, Access: model.AccessAll}}

	for _, mmap := range []bool{false, true} {
		db, store := testutil.LocalDatabase(t, g.Dataset(), mmap)

		p := DefaultParameter()
		p.MMap = mmap
		p.MaxCellFill = 4
		require.NoError(t, NewAreaRouteIndexGenerator(nil).Import(ctx, db, p))
		assert.Zero(t, store.OpenHandles())

		idx, err := LoadAreaRouteIndex(ctx, store)
		require.NoError(t, err)
		require.Len(t, idx.Entries, 25)
		assert.GreaterOrEqual(t, idx.Level, p.MinMag)
		assert.LessOrEqual(t, idx.Level, p.MaxLevel)

		for i := 1; i < len(idx.Entries); i++ {
			assert.LessOrEqual(t, idx.Entries[i-1].Cell, idx.Entries[i].Cell)
		}
		for _, e := range idx.Entries {
			assert.Equal(t, uint16(300), e.TypeID)
		}

		files := routedb.NewFiles(routedb.DefaultFilesConfig())
		require.NoError(t, files.Open(ctx, db))
		cell := geocell.OfLevel(g.Coord(2, 2), idx.Level).ID()
		found := false
		for _, off := range idx.Lookup(cell) {
			n, err := files.RouteNodes().GetByOffset(ctx, off)
			require.NoError(t, err)
			assert.Equal(t, cell, geocell.OfLevel(n.Coord, idx.Level).ID())
			found = found || n.ID == g.NodeID(2, 2)
		}
		assert.True(t, found)
		require.NoError(t, files.Close())
	}
}

func TestAreaRouteIndexGenerator_TypeIDWidth(t *testing.T) {
	g := testutil.Grid{Rows: 2, Cols: 2, Origin: model.GeoCoord{Lat: 1, Lon: 1}, Spacing: 0.01,
		Variant: model.ObjectVariant{TypeID: 300, Access: model.AccessAll}}
	db, _ := testutil.LocalDatabase(t, g.Dataset(), false)

	p := DefaultParameter()
	p.RouteTypeIDBytes = 1
	assert.ErrorIs(t, NewAreaRouteIndexGenerator(nil).Import(context.Background(), db, p), ErrInvalidParameter)
}

type readOnlyStore struct{ blobstore.BlobStore }

func TestAreaRouteIndexGenerator_ReadOnly(t *testing.T) {
	g := testutil.Grid{Rows: 2, Cols: 2, Origin: model.GeoCoord{Lat: 1, Lon: 1}, Spacing: 0.01}
	db, store := testutil.LocalDatabase(t, g.Dataset(), false)
	db.Store = readOnlyStore{store}

	assert.Error(t, NewAreaRouteIndexGenerator(nil).Import(context.Background(), db, DefaultParameter()))
}

func TestChooseLevel(t *testing.T) {
	items := make([]indexedNode, 10)
	for i := range items {
		items[i] = indexedNode{coord: model.GeoCoord{Lat: 10 + float64(i)*0.5, Lon: 10}}
	}
	p := Parameter{MinMag: 0, MaxLevel: 16, MaxCellFill: 1}
	level := chooseLevel(items, p)

	seen := make(map[uint32]bool)
	for _, it := range items {
		id := geocell.OfLevel(it.coord, level).ID()
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Equal(t, uint8(16), chooseLevel(append(items, items[0]), p))
}
