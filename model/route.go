package model

import "fmt"

// RoutePosition identifies a routable start or target endpoint.
//
// Object references the route node record (RefRouteNode and its file
// offset), NodeIndex is the index of the snapped map object inside the
// node's object list and Database is the owning dataset.
type RoutePosition struct {
	Object    ObjectFileRef
	NodeIndex int
	Database  DatabaseID
}

// InvalidRoutePosition is returned when no routable node was found.
var InvalidRoutePosition = RoutePosition{}

// Valid reports whether the position references a record.
func (p RoutePosition) Valid() bool { return p.Object.Valid() }

// Locator returns the cross-database locator of the position's route node.
func (p RoutePosition) Locator() DBFileOffset {
	return DBFileOffset{Database: p.Database, Offset: p.Object.Offset}
}

// String returns a string representation of the position.
func (p RoutePosition) String() string {
	if !p.Valid() {
		return "Pos(invalid)"
	}
	return fmt.Sprintf("Pos(%d:%s#%d)", p.Database, p.Object, p.NodeIndex)
}

// RouteEntry is one traversed node of a route.
type RouteEntry struct {
	Database DatabaseID
	NodeID   ID
	Coord    GeoCoord
	// PathObject is the object used to leave this node, invalid for the last entry.
	PathObject ObjectFileRef
	// Objects are the map objects meeting at this node, filled by junction resolution.
	Objects []ObjectFileRef
	// Cost is the accumulated cost up to this node.
	Cost float64
}

// RouteData is an ordered sequence of route entries.
// Entries are appended in traversal order and only annotated afterwards.
type RouteData struct {
	entries []RouteEntry
}

// NewRouteData creates an empty route with room for n entries.
func NewRouteData(n int) *RouteData {
	return &RouteData{entries: make([]RouteEntry, 0, n)}
}

// Append adds an entry at the end of the route.
func (r *RouteData) Append(e RouteEntry) {
	r.entries = append(r.entries, e)
}

// Entries returns the entries. The slice aliases the route so callers may
// annotate entries in place.
func (r *RouteData) Entries() []RouteEntry {
	if r == nil {
		return nil
	}
	return r.entries
}

// Len returns the number of entries.
func (r *RouteData) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Coords returns the coordinates of all entries in order.
func (r *RouteData) Coords() []GeoCoord {
	coords := make([]GeoCoord, 0, r.Len())
	for _, e := range r.Entries() {
		coords = append(coords, e.Coord)
	}
	return coords
}

// Databases returns the distinct databases in order of first appearance.
func (r *RouteData) Databases() []DatabaseID {
	var ids []DatabaseID
	seen := make(map[DatabaseID]struct{})
	for _, e := range r.Entries() {
		if _, ok := seen[e.Database]; ok {
			continue
		}
		seen[e.Database] = struct{}{}
		ids = append(ids, e.Database)
	}
	return ids
}

// RoutingParameter tunes a single route calculation.
type RoutingParameter struct {
	// CancelCheckInterval is the number of node expansions between checks of
	// the context. Values <= 0 use DefaultCancelCheckInterval.
	CancelCheckInterval int
}

// DefaultCancelCheckInterval is used when RoutingParameter leaves it unset.
const DefaultCancelCheckInterval = 256

// RoutingResult carries either a route or an explicit "not found".
//
// Unreachable targets and databases without common nodes produce the same
// invalid result with a nil Err. Err is only set for I/O failures and
// cancellation.
type RoutingResult struct {
	Route *RouteData
	Cost  float64
	Err   error
}

// Success reports whether a route was found.
func (r RoutingResult) Success() bool { return r.Route != nil && r.Err == nil }
