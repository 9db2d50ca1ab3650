package routedb

import (
	"fmt"

	"github.com/hupe1980/georoute/internal/format"
	"github.com/hupe1980/georoute/model"
)

const (
	maxObjectsPerRecord = 1 << 16
	maxPathsPerRecord   = 1 << 16
)

// DecodeRouteNode decodes the route node record at offset.
func DecodeRouteNode(r *format.Reader, offset model.FileOffset) (model.RouteNode, error) {
	n := model.RouteNode{FileOffset: offset}

	id, err := r.ReadUvarint()
	if err != nil {
		return n, err
	}
	n.ID = model.ID(id)

	if n.Coord, err = readCoord(r); err != nil {
		return n, err
	}

	objCount, err := r.ReadCount(maxObjectsPerRecord)
	if err != nil {
		return n, err
	}
	n.Objects = make([]model.ObjectVariantRef, objCount)
	for i := range n.Objects {
		ref, err := readObjectRef(r)
		if err != nil {
			return n, err
		}
		variant, err := r.ReadU16()
		if err != nil {
			return n, err
		}
		n.Objects[i] = model.ObjectVariantRef{Object: ref, VariantIndex: variant}
	}

	pathCount, err := r.ReadCount(maxPathsPerRecord)
	if err != nil {
		return n, err
	}
	n.Paths = make([]model.Path, pathCount)
	for i := range n.Paths {
		p := &n.Paths[i]

		target, err := r.ReadUvarint()
		if err != nil {
			return n, err
		}
		p.Target = model.ID(target)

		objIdx, err := r.ReadUvarint()
		if err != nil {
			return n, err
		}
		if objIdx >= uint64(objCount) {
			return n, fmt.Errorf("%w: path object index %d of %d objects", format.ErrCorrupt, objIdx, objCount)
		}
		p.ObjectIndex = uint16(objIdx)

		if p.Distance, err = r.ReadF64(); err != nil {
			return n, err
		}
		flags, err := r.ReadU8()
		if err != nil {
			return n, err
		}
		p.Flags = model.PathFlags(flags)
	}

	return n, nil
}

// AppendRouteNode encodes n onto w.
func AppendRouteNode(w *format.Writer, n *model.RouteNode) {
	w.WriteUvarint(uint64(n.ID))
	writeCoord(w, n.Coord)

	w.WriteUvarint(uint64(len(n.Objects)))
	for _, o := range n.Objects {
		writeObjectRef(w, o.Object)
		w.WriteU16(o.VariantIndex)
	}

	w.WriteUvarint(uint64(len(n.Paths)))
	for _, p := range n.Paths {
		w.WriteUvarint(uint64(p.Target))
		w.WriteUvarint(uint64(p.ObjectIndex))
		w.WriteF64(p.Distance)
		w.WriteU8(uint8(p.Flags))
	}
}

// DecodeJunction decodes the junction record at offset.
func DecodeJunction(r *format.Reader, offset model.FileOffset) (model.Junction, error) {
	j := model.Junction{FileOffset: offset}

	id, err := r.ReadUvarint()
	if err != nil {
		return j, err
	}
	j.ID = model.ID(id)

	if j.Coord, err = readCoord(r); err != nil {
		return j, err
	}

	count, err := r.ReadCount(maxObjectsPerRecord)
	if err != nil {
		return j, err
	}
	j.Objects = make([]model.ObjectFileRef, count)
	for i := range j.Objects {
		if j.Objects[i], err = readObjectRef(r); err != nil {
			return j, err
		}
	}
	return j, nil
}

// AppendJunction encodes j onto w.
func AppendJunction(w *format.Writer, j *model.Junction) {
	w.WriteUvarint(uint64(j.ID))
	writeCoord(w, j.Coord)
	w.WriteUvarint(uint64(len(j.Objects)))
	for _, o := range j.Objects {
		writeObjectRef(w, o)
	}
}

func readCoord(r *format.Reader) (model.GeoCoord, error) {
	lat, err := r.ReadI32()
	if err != nil {
		return model.GeoCoord{}, err
	}
	lon, err := r.ReadI32()
	if err != nil {
		return model.GeoCoord{}, err
	}
	c := model.NewGeoCoordFixed(lat, lon)
	if !c.Valid() {
		return c, fmt.Errorf("%w: coordinate %s out of range", format.ErrCorrupt, c)
	}
	return c, nil
}

func writeCoord(w *format.Writer, c model.GeoCoord) {
	lat, lon := c.Fixed()
	w.WriteI32(lat)
	w.WriteI32(lon)
}

func readObjectRef(r *format.Reader) (model.ObjectFileRef, error) {
	t, err := r.ReadU8()
	if err != nil {
		return model.ObjectFileRef{}, err
	}
	if model.RefType(t) > model.RefRouteNode {
		return model.ObjectFileRef{}, fmt.Errorf("%w: reference type %d", format.ErrCorrupt, t)
	}
	off, err := r.ReadUvarint()
	if err != nil {
		return model.ObjectFileRef{}, err
	}
	return model.ObjectFileRef{Type: model.RefType(t), Offset: model.FileOffset(off)}, nil
}

func writeObjectRef(w *format.Writer, ref model.ObjectFileRef) {
	w.WriteU8(uint8(ref.Type))
	w.WriteUvarint(uint64(ref.Offset))
}

// routeNodeSize estimates the memory held by a decoded route node.
func routeNodeSize(n model.RouteNode) int64 {
	return 64 + int64(len(n.Objects))*24 + int64(len(n.Paths))*32
}

// junctionSize estimates the memory held by a decoded junction.
func junctionSize(j model.Junction) int64 {
	return 56 + int64(len(j.Objects))*16
}
