package routedb

import (
	"context"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/georoute/model"
)

// JunctionLookup fetches junctions by node id.
type JunctionLookup interface {
	GetByIDs(ctx context.Context, ids *roaring64.Bitmap) (map[model.ID]model.Junction, error)
}

// ResolveJunctions attaches the objects of their junction to route entries
// of database db that have no objects yet. Entries without a junction
// record, and the reserved node id 0, are left unannotated.
func ResolveJunctions(ctx context.Context, route *model.RouteData, db model.DatabaseID, junctions JunctionLookup) error {
	entries := route.Entries()

	ids := roaring64.New()
	for _, e := range entries {
		if e.Database == db && e.NodeID != 0 {
			ids.Add(uint64(e.NodeID))
		}
	}
	if ids.IsEmpty() {
		return nil
	}

	byID, err := junctions.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range entries {
		e := &entries[i]
		if e.Database != db || len(e.Objects) > 0 {
			continue
		}
		if j, ok := byID[e.NodeID]; ok {
			e.Objects = slices.Clone(j.Objects)
		}
	}
	return nil
}
