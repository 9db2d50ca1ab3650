package importer

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/hupe1980/georoute/blobstore"
	"github.com/hupe1980/georoute/internal/conv"
	"github.com/hupe1980/georoute/internal/datafile"
	"github.com/hupe1980/georoute/internal/format"
	"github.com/hupe1980/georoute/internal/geocell"
	"github.com/hupe1980/georoute/model"
	"github.com/hupe1980/georoute/routedb"
)

// AreaRouteIndexFile is the file written by AreaRouteIndexGenerator.
const AreaRouteIndexFile = "arearoute.idx"

// AreaRouteEntry is one entry of the area route index.
type AreaRouteEntry struct {
	Cell   uint32
	TypeID uint16
	Offset model.FileOffset
}

// AreaRouteIndex is a decoded area route index.
type AreaRouteIndex struct {
	Level   uint8
	Entries []AreaRouteEntry
}

// AreaRouteIndexGenerator builds the area route index of a database.
type AreaRouteIndexGenerator struct {
	logger *slog.Logger
}

var _ Generator = (*AreaRouteIndexGenerator)(nil)

// NewAreaRouteIndexGenerator creates a generator. A nil logger discards output.
func NewAreaRouteIndexGenerator(logger *slog.Logger) *AreaRouteIndexGenerator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AreaRouteIndexGenerator{logger: logger}
}

// Describe documents the generator.
func (g *AreaRouteIndexGenerator) Describe() Description {
	return Description{
		Name:        "AreaRouteIndexGenerator",
		Description: "Index routes for area lookup",
		Required:    []string{routedb.RouteNodeDataFile, routedb.ObjectVariantFile},
		Provided:    []string{AreaRouteIndexFile},
	}
}

type indexedNode struct {
	coord  model.GeoCoord
	typeID uint16
	offset model.FileOffset
}

// Import reads the route nodes of db and writes the area route index into
// its store, which must be writable.
func (g *AreaRouteIndexGenerator) Import(ctx context.Context, db routedb.Database, p Parameter) error {
	if err := p.Validate(); err != nil {
		return err
	}

	store := db.BlobStore()
	w, ok := store.(blobstore.Writable)
	if !ok {
		return fmt.Errorf("importer: store of %s is read-only", db.Path)
	}

	variants, err := routedb.LoadVariantTable(ctx, store)
	if err != nil {
		return fmt.Errorf("importer: %s: %w", db.Path, err)
	}

	nodes := datafile.New(datafile.Config{
		DataName:  routedb.RouteNodeDataFile,
		DataMagic: format.MagicRouteNodes,
	}, routedb.DecodeRouteNode, nil, datafile.WithLogger(g.logger))
	if err := nodes.Open(ctx, store, p.MMap); err != nil {
		return fmt.Errorf("importer: %s: %w", db.Path, err)
	}
	defer nodes.Close()

	maxTypeID := uint16(0xFF)
	if p.RouteTypeIDBytes == 2 {
		maxTypeID = 0xFFFF
	}

	var items []indexedNode
	err = nodes.Scan(ctx, func(off model.FileOffset, n model.RouteNode) error {
		var typeID uint16
		if len(n.Objects) > 0 {
			if v, ok := variants.Get(n.Objects[0].VariantIndex); ok {
				typeID = v.TypeID
			}
		}
		if typeID > maxTypeID {
			return fmt.Errorf("%w: type id %d does not fit %d bytes", ErrInvalidParameter, typeID, p.RouteTypeIDBytes)
		}
		items = append(items, indexedNode{coord: n.Coord, typeID: typeID, offset: off})
		return nil
	})
	if err != nil {
		return fmt.Errorf("importer: %s: %w", db.Path, err)
	}

	level := chooseLevel(items, p)
	entries := make([]AreaRouteEntry, len(items))
	for i, it := range items {
		entries[i] = AreaRouteEntry{
			Cell:   geocell.OfLevel(it.coord, level).ID(),
			TypeID: it.typeID,
			Offset: it.offset,
		}
	}
	slices.SortFunc(entries, func(a, b AreaRouteEntry) int {
		return cmp.Or(cmp.Compare(a.Cell, b.Cell), cmp.Compare(a.Offset, b.Offset))
	})

	data, err := encodeAreaRouteIndex(level, p.RouteTypeIDBytes, entries)
	if err != nil {
		return fmt.Errorf("importer: %w", err)
	}
	if err := w.Put(ctx, AreaRouteIndexFile, data); err != nil {
		return fmt.Errorf("importer: write %s: %w", AreaRouteIndexFile, err)
	}

	g.logger.Info("area route index written",
		slog.String("path", db.Path),
		slog.Int("entries", len(entries)),
		slog.Int("level", int(level)),
	)
	return nil
}

// chooseLevel returns the coarsest level in [MinMag, MaxLevel] whose
// fullest cell holds at most MaxCellFill entries, or MaxLevel.
func chooseLevel(items []indexedNode, p Parameter) uint8 {
	for level := p.MinMag; level < p.MaxLevel; level++ {
		fill := make(map[uint32]int)
		worst := 0
		for _, it := range items {
			id := geocell.OfLevel(it.coord, level).ID()
			fill[id]++
			worst = max(worst, fill[id])
		}
		if worst <= p.MaxCellFill {
			return level
		}
	}
	return p.MaxLevel
}

func encodeAreaRouteIndex(level, typeIDBytes uint8, entries []AreaRouteEntry) ([]byte, error) {
	n, err := conv.Count("area route", len(entries))
	if err != nil {
		return nil, err
	}
	w := format.NewWriter(format.NewHeader(format.MagicAreaRouteIndex, n))
	w.WriteU8(level)
	w.WriteU8(typeIDBytes)
	for _, e := range entries {
		w.WriteU32(e.Cell)
		if typeIDBytes == 1 {
			w.WriteU8(uint8(e.TypeID))
		} else {
			w.WriteU16(e.TypeID)
		}
		w.WriteUvarint(uint64(e.Offset))
	}
	return w.Bytes(), nil
}

// LoadAreaRouteIndex reads the area route index of a database.
func LoadAreaRouteIndex(ctx context.Context, store blobstore.BlobStore) (*AreaRouteIndex, error) {
	b, err := store.Open(ctx, AreaRouteIndexFile, blobstore.AccessSequential)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	h, err := format.ReadHeader(b, format.MagicAreaRouteIndex)
	if err != nil {
		return nil, err
	}

	r := format.NewSectionReader(b, format.HeaderSize, b.Size(), 64<<10)
	level, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	typeIDBytes, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if typeIDBytes != 1 && typeIDBytes != 2 {
		return nil, fmt.Errorf("%w: type id width %d", format.ErrCorrupt, typeIDBytes)
	}

	idx := &AreaRouteIndex{Level: level, Entries: make([]AreaRouteEntry, 0, h.Count)}
	for range h.Count {
		var e AreaRouteEntry
		if e.Cell, err = r.ReadU32(); err != nil {
			return nil, err
		}
		if typeIDBytes == 1 {
			t, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			e.TypeID = uint16(t)
		} else if e.TypeID, err = r.ReadU16(); err != nil {
			return nil, err
		}
		off, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		e.Offset = model.FileOffset(off)
		idx.Entries = append(idx.Entries, e)
	}
	return idx, nil
}

// Lookup returns the offsets of the entries in cell, which must be a cell
// id of the index level.
func (idx *AreaRouteIndex) Lookup(cell uint32) []model.FileOffset {
	i, _ := slices.BinarySearchFunc(idx.Entries, cell, func(e AreaRouteEntry, c uint32) int {
		return cmp.Compare(e.Cell, c)
	})
	var out []model.FileOffset
	for ; i < len(idx.Entries) && idx.Entries[i].Cell == cell; i++ {
		out = append(out, idx.Entries[i].Offset)
	}
	return out
}
