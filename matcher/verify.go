package matcher

import (
	"cmp"
	"slices"

	"github.com/hupe1980/georoute/model"
)

// Crossing is a pair of route nodes at the same stored coordinate.
type Crossing struct {
	First  model.RouteNode
	Second model.RouteNode
}

type fixedCoord struct {
	lat, lon int32
}

func keyOf(c model.GeoCoord) fixedCoord {
	lat, lon := c.Fixed()
	return fixedCoord{lat: lat, lon: lon}
}

// Verify pairs the candidate nodes of both databases whose coordinates are
// identical at storage resolution. The result is ordered by first and
// second node id.
func Verify(first, second map[model.ID]model.RouteNode) []Crossing {
	byCoord := make(map[fixedCoord][]model.RouteNode, len(second))
	for _, n := range second {
		k := keyOf(n.Coord)
		byCoord[k] = append(byCoord[k], n)
	}

	var out []Crossing
	for _, a := range first {
		for _, b := range byCoord[keyOf(a.Coord)] {
			out = append(out, Crossing{First: a, Second: b})
		}
	}

	slices.SortFunc(out, func(x, y Crossing) int {
		return cmp.Or(
			cmp.Compare(x.First.ID, y.First.ID),
			cmp.Compare(x.Second.ID, y.Second.ID),
		)
	})
	return out
}
