package model

// AccessFlags describes which vehicles may use an object in which direction.
type AccessFlags uint8

const (
	AccessFootForward AccessFlags = 1 << iota
	AccessFootBackward
	AccessBicycleForward
	AccessBicycleBackward
	AccessCarForward
	AccessCarBackward
)

// AccessAll allows every vehicle in both directions.
const AccessAll = AccessFootForward | AccessFootBackward |
	AccessBicycleForward | AccessBicycleBackward |
	AccessCarForward | AccessCarBackward

// Has reports whether all bits of f are set.
func (a AccessFlags) Has(f AccessFlags) bool { return a&f == f }

// ObjectVariant holds the cost-relevant attributes of a group of map objects.
type ObjectVariant struct {
	TypeID   uint16
	MaxSpeed uint8 // km/h, 0 means type default
	Grade    uint8
	Access   AccessFlags
}

// ObjectVariantRef attaches a map object and its variant to a route node.
type ObjectVariantRef struct {
	Object       ObjectFileRef
	VariantIndex uint16
}

// PathFlags carries per-edge attributes.
type PathFlags uint8

const (
	// PathBackward marks an edge that runs against the object's direction.
	PathBackward PathFlags = 1 << iota
)

// Path is an outgoing edge of a route node.
type Path struct {
	// Target is the id of the destination node in the same database.
	Target ID
	// ObjectIndex indexes the owning node's Objects.
	ObjectIndex uint16
	// Distance is the edge length in kilometers.
	Distance float64
	Flags    PathFlags
}

// Backward reports whether the edge runs against its object's direction.
func (p Path) Backward() bool { return p.Flags&PathBackward != 0 }

// RouteNode is a graph vertex.
type RouteNode struct {
	// FileOffset is the offset the record was read from.
	FileOffset FileOffset
	ID         ID
	Coord      GeoCoord
	Objects    []ObjectVariantRef
	Paths      []Path
}

// Variant returns the variant index of the object used by path i.
// ok is false if the path or its object index is out of range.
func (n *RouteNode) Variant(pathIndex int) (uint16, bool) {
	if pathIndex < 0 || pathIndex >= len(n.Paths) {
		return 0, false
	}
	idx := int(n.Paths[pathIndex].ObjectIndex)
	if idx >= len(n.Objects) {
		return 0, false
	}
	return n.Objects[idx].VariantIndex, true
}

// PathObject returns the map object traversed by path i.
func (n *RouteNode) PathObject(pathIndex int) ObjectFileRef {
	if pathIndex < 0 || pathIndex >= len(n.Paths) {
		return ObjectFileRef{}
	}
	idx := int(n.Paths[pathIndex].ObjectIndex)
	if idx >= len(n.Objects) {
		return ObjectFileRef{}
	}
	return n.Objects[idx].Object
}

// Junction lists the map objects meeting at a node.
type Junction struct {
	FileOffset FileOffset
	ID         ID
	Coord      GeoCoord
	Objects    []ObjectFileRef
}
