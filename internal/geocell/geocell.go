// Package geocell quantizes geographic space into a fixed 2^16 × 2^16 grid.
//
// A cell is (x, y) with x = floor((lon+180)/LonCellWidth) and
// y = floor((lat+90)/LatCellWidth), packed into a 32-bit id. The mapping is
// pure and has no dependence on process state, so cell ids computed by
// different processes or for different databases are comparable.
package geocell

import (
	"math"

	"github.com/hupe1980/georoute/model"
	"github.com/paulmach/orb"
)

const (
	// Magnification is the number of cells along each axis.
	Magnification = 1 << 16

	// LatCellWidth is the height of a cell in degrees.
	LatCellWidth = 180.0 / Magnification
	// LonCellWidth is the width of a cell in degrees.
	LonCellWidth = 360.0 / Magnification

	maxIndex = Magnification - 1
)

// Cell is one grid bucket.
type Cell struct {
	X uint16
	Y uint16
}

// ID packs the cell into a 32-bit id.
func (c Cell) ID() uint32 {
	return uint32(c.Y)<<16 | uint32(c.X)
}

// Of returns the cell containing coord. Coordinates on the upper edge of
// the valid range (lon 180, lat 90) fall into the last cell.
func Of(coord model.GeoCoord) Cell {
	return Cell{
		X: index((coord.Lon + 180.0) / LonCellWidth),
		Y: index((coord.Lat + 90.0) / LatCellWidth),
	}
}

// ID returns the packed id of the cell containing coord.
func ID(coord model.GeoCoord) uint32 {
	return Of(coord).ID()
}

func index(v float64) uint16 {
	f := math.Floor(v)
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	if f > maxIndex {
		return maxIndex
	}
	return uint16(f)
}

// Covering returns the ids of all cells intersecting bound.
// ok is false when more than limit cells would be returned.
func Covering(bound orb.Bound, limit int) (ids []uint32, ok bool) {
	lo := Of(model.GeoCoord{Lat: bound.Min.Lat(), Lon: bound.Min.Lon()})
	hi := Of(model.GeoCoord{Lat: bound.Max.Lat(), Lon: bound.Max.Lon()})

	n := (int(hi.X) - int(lo.X) + 1) * (int(hi.Y) - int(lo.Y) + 1)
	if n > limit {
		return nil, false
	}

	ids = make([]uint32, 0, n)
	for y := int(lo.Y); y <= int(hi.Y); y++ {
		for x := int(lo.X); x <= int(hi.X); x++ {
			ids = append(ids, Cell{X: uint16(x), Y: uint16(y)}.ID())
		}
	}
	return ids, true
}

// MaxLevel is the level of the full grid.
const MaxLevel = 16

// OfLevel returns the cell containing coord on the coarser grid of
// 2^level × 2^level cells. Levels above MaxLevel are clamped.
func OfLevel(coord model.GeoCoord, level uint8) Cell {
	if level > MaxLevel {
		level = MaxLevel
	}
	c := Of(coord)
	shift := MaxLevel - level
	return Cell{X: c.X >> shift, Y: c.Y >> shift}
}
