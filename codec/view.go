package codec

import (
	"github.com/hupe1980/georoute/model"
)

// Route is the output form of a model.RoutingResult.
type Route struct {
	Found   bool         `json:"found"`
	Cost    float64      `json:"cost"`
	Error   string       `json:"error,omitempty"`
	Entries []RouteEntry `json:"entries,omitempty"`
}

// RouteEntry is one traversed node.
type RouteEntry struct {
	Database   uint32   `json:"database"`
	NodeID     uint64   `json:"node_id"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Cost       float64  `json:"cost"`
	PathObject string   `json:"path_object,omitempty"`
	Objects    []string `json:"objects,omitempty"`
}

// NewRoute converts res.
func NewRoute(res model.RoutingResult) Route {
	out := Route{Found: res.Success(), Cost: res.Cost}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	if res.Route == nil {
		return out
	}
	for _, e := range res.Route.Entries() {
		re := RouteEntry{
			Database: uint32(e.Database),
			NodeID:   uint64(e.NodeID),
			Lat:      e.Coord.Lat,
			Lon:      e.Coord.Lon,
			Cost:     e.Cost,
			Objects:  refs(e.Objects),
		}
		if e.PathObject.Valid() {
			re.PathObject = e.PathObject.String()
		}
		out.Entries = append(out.Entries, re)
	}
	return out
}

// Position is the output form of a model.RoutePosition.
type Position struct {
	Valid     bool   `json:"valid"`
	Database  uint32 `json:"database"`
	Object    string `json:"object,omitempty"`
	NodeIndex int    `json:"node_index"`
}

// NewPosition converts pos.
func NewPosition(pos model.RoutePosition) Position {
	if !pos.Valid() {
		return Position{}
	}
	return Position{
		Valid:     true,
		Database:  uint32(pos.Database),
		Object:    pos.Object.String(),
		NodeIndex: pos.NodeIndex,
	}
}

// Node is the output form of a model.RouteNode.
type Node struct {
	ID      uint64   `json:"id"`
	Offset  uint64   `json:"offset"`
	Lat     float64  `json:"lat"`
	Lon     float64  `json:"lon"`
	Objects []string `json:"objects,omitempty"`
	Paths   []Path   `json:"paths,omitempty"`
}

// Path is one outgoing path of a Node.
type Path struct {
	Target   uint64  `json:"target"`
	Object   string  `json:"object"`
	Distance float64 `json:"distance_km"`
	Backward bool    `json:"backward,omitempty"`
}

// NewNode converts n.
func NewNode(n model.RouteNode) Node {
	out := Node{
		ID:     uint64(n.ID),
		Offset: uint64(n.FileOffset),
		Lat:    n.Coord.Lat,
		Lon:    n.Coord.Lon,
	}
	for _, o := range n.Objects {
		out.Objects = append(out.Objects, o.Object.String())
	}
	for i, p := range n.Paths {
		out.Paths = append(out.Paths, Path{
			Target:   uint64(p.Target),
			Object:   n.PathObject(i).String(),
			Distance: p.Distance,
			Backward: p.Backward(),
		})
	}
	return out
}

func refs(objs []model.ObjectFileRef) []string {
	if len(objs) == 0 {
		return nil
	}
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.String()
	}
	return out
}
