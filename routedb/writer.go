package routedb

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/georoute/blobstore"
	"github.com/hupe1980/georoute/internal/conv"
	"github.com/hupe1980/georoute/internal/format"
	"github.com/hupe1980/georoute/model"
)

// ErrInvalidDataset is returned by Writer.Write for inconsistent input.
var ErrInvalidDataset = errors.New("routedb: invalid dataset")

// Dataset is the in-memory content of a database.
type Dataset struct {
	Variants []model.ObjectVariant
	// Nodes are written in slice order. FileOffset is ignored.
	Nodes []model.RouteNode
	// Junctions are written in slice order. Nil derives them from Nodes.
	Junctions []model.Junction
}

// Layout reports where records were written.
type Layout struct {
	RouteNodes map[model.ID]model.FileOffset
	Junctions  map[model.ID]model.FileOffset
}

// Writer writes datasets.
type Writer struct {
	compression format.Compression
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompression sets the compression of the object variant table.
func WithCompression(c format.Compression) WriterOption {
	return func(w *Writer) {
		w.compression = c
	}
}

// NewWriter creates a Writer. The variant table is ZSTD compressed by default.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{compression: format.CompressionZSTD}
	for _, fn := range opts {
		fn(w)
	}
	return w
}

// Write validates ds and stores all database files in store.
func (w *Writer) Write(ctx context.Context, store blobstore.Writable, ds Dataset) (*Layout, error) {
	if err := validate(ds); err != nil {
		return nil, err
	}

	junctions := ds.Junctions
	if junctions == nil {
		junctions = DeriveJunctions(ds.Nodes)
	}

	variants, err := EncodeVariantTable(ds.Variants, w.compression)
	if err != nil {
		return nil, err
	}

	nodeCount, err := conv.Count("route node", len(ds.Nodes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	juncCount, err := conv.Count("junction", len(junctions))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	layout := &Layout{
		RouteNodes: make(map[model.ID]model.FileOffset, len(ds.Nodes)),
		Junctions:  make(map[model.ID]model.FileOffset, len(junctions)),
	}

	nodes := format.NewWriter(format.NewHeader(format.MagicRouteNodes, nodeCount))
	for i := range ds.Nodes {
		layout.RouteNodes[ds.Nodes[i].ID] = model.FileOffset(nodes.Pos())
		AppendRouteNode(nodes, &ds.Nodes[i])
	}

	juncs := format.NewWriter(format.NewHeader(format.MagicJunctions, juncCount))
	for i := range junctions {
		if _, dup := layout.Junctions[junctions[i].ID]; dup {
			return nil, fmt.Errorf("%w: duplicate junction %d", ErrInvalidDataset, junctions[i].ID)
		}
		layout.Junctions[junctions[i].ID] = model.FileOffset(juncs.Pos())
		AppendJunction(juncs, &junctions[i])
	}

	files := []struct {
		name string
		data []byte
	}{
		{ObjectVariantFile, variants},
		{RouteNodeDataFile, nodes.Bytes()},
		{RouteNodeIndexFile, encodeIndex(format.MagicRouteIndex, layout.RouteNodes)},
		{JunctionDataFile, juncs.Bytes()},
		{JunctionIndexFile, encodeIndex(format.MagicJunctionIndex, layout.Junctions)},
	}
	for _, f := range files {
		if err := store.Put(ctx, f.name, f.data); err != nil {
			return nil, fmt.Errorf("routedb: write %s: %w", f.name, err)
		}
	}
	return layout, nil
}

func encodeIndex(magic uint32, offsets map[model.ID]model.FileOffset) []byte {
	entries := make([]format.IndexEntry, 0, len(offsets))
	for id, off := range offsets {
		entries = append(entries, format.IndexEntry{ID: uint64(id), Offset: uint64(off)})
	}
	slices.SortFunc(entries, func(a, b format.IndexEntry) int {
		return cmp.Compare(a.ID, b.ID)
	})

	out := format.NewHeader(magic, uint32(len(entries))).Append(make([]byte, 0, format.HeaderSize+len(entries)*format.IndexEntrySize))
	for _, e := range entries {
		out = format.AppendIndexEntry(out, e)
	}
	return out
}

func validate(ds Dataset) error {
	ids := make(map[model.ID]struct{}, len(ds.Nodes))
	for _, n := range ds.Nodes {
		if n.ID == 0 {
			return fmt.Errorf("%w: node id 0 is reserved", ErrInvalidDataset)
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node %d", ErrInvalidDataset, n.ID)
		}
		if !n.Coord.Valid() {
			return fmt.Errorf("%w: node %d has invalid coordinate %s", ErrInvalidDataset, n.ID, n.Coord)
		}
		ids[n.ID] = struct{}{}
	}

	for _, n := range ds.Nodes {
		for _, o := range n.Objects {
			if int(o.VariantIndex) >= len(ds.Variants) {
				return fmt.Errorf("%w: node %d references variant %d of %d", ErrInvalidDataset, n.ID, o.VariantIndex, len(ds.Variants))
			}
		}
		for _, p := range n.Paths {
			if _, ok := ids[p.Target]; !ok {
				return fmt.Errorf("%w: node %d has path to unknown node %d", ErrInvalidDataset, n.ID, p.Target)
			}
			if int(p.ObjectIndex) >= len(n.Objects) {
				return fmt.Errorf("%w: node %d path object index %d of %d", ErrInvalidDataset, n.ID, p.ObjectIndex, len(n.Objects))
			}
			if p.Distance < 0 {
				return fmt.Errorf("%w: node %d has negative path distance", ErrInvalidDataset, n.ID)
			}
		}
	}
	return nil
}

// DeriveJunctions returns a junction for every node where at least two
// distinct map objects meet.
func DeriveJunctions(nodes []model.RouteNode) []model.Junction {
	var out []model.Junction
	for _, n := range nodes {
		var objs []model.ObjectFileRef
		for _, o := range n.Objects {
			if !slices.Contains(objs, o.Object) {
				objs = append(objs, o.Object)
			}
		}
		if len(objs) < 2 {
			continue
		}
		out = append(out, model.Junction{ID: n.ID, Coord: n.Coord, Objects: objs})
	}
	return out
}
