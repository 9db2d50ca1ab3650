package model

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DatabaseID identifies one open dataset among several simultaneously loaded ones.
type DatabaseID uint32

// ID is the database-local identifier of a route node or junction.
// Ids carry no meaning across databases.
type ID uint64

// FileOffset is the byte offset of a record inside its data file.
type FileOffset uint64

// DBFileOffset locates a record across all open databases.
type DBFileOffset struct {
	Database DatabaseID
	Offset   FileOffset
}

// String returns a string representation of the locator.
func (o DBFileOffset) String() string {
	return fmt.Sprintf("DB(%d:%d)", o.Database, o.Offset)
}

// Less orders locators by database, then offset.
func (o DBFileOffset) Less(other DBFileOffset) bool {
	if o.Database != other.Database {
		return o.Database < other.Database
	}
	return o.Offset < other.Offset
}

// RefType is the kind of object an ObjectFileRef points at.
type RefType uint8

const (
	RefNone RefType = iota
	RefNode
	RefArea
	RefWay
	RefRouteNode
)

// String returns the name of the reference type.
func (t RefType) String() string {
	switch t {
	case RefNode:
		return "node"
	case RefArea:
		return "area"
	case RefWay:
		return "way"
	case RefRouteNode:
		return "routenode"
	default:
		return "none"
	}
}

// ObjectFileRef is a typed reference to a map object inside one database.
type ObjectFileRef struct {
	Type   RefType
	Offset FileOffset
}

// Valid reports whether the reference points at anything.
func (r ObjectFileRef) Valid() bool { return r.Type != RefNone }

// String returns a string representation of the reference.
func (r ObjectFileRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.Offset)
}

// CoordScale is the fixed-point resolution used on disk (1e-7 degrees).
const CoordScale = 1e7

// GeoCoord is a WGS84 coordinate in degrees.
type GeoCoord struct {
	Lat float64
	Lon float64
}

// NewGeoCoordFixed builds a coordinate from its on-disk fixed-point form.
func NewGeoCoordFixed(lat, lon int32) GeoCoord {
	return GeoCoord{Lat: float64(lat) / CoordScale, Lon: float64(lon) / CoordScale}
}

// Fixed returns the on-disk fixed-point representation.
func (c GeoCoord) Fixed() (lat, lon int32) {
	return int32(math.Round(c.Lat * CoordScale)), int32(math.Round(c.Lon * CoordScale))
}

// Point converts the coordinate into an orb point (lon, lat).
func (c GeoCoord) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// Distance returns the great-circle distance to other in kilometers.
func (c GeoCoord) Distance(other GeoCoord) float64 {
	return geo.DistanceHaversine(c.Point(), other.Point()) / 1000.0
}

// Valid reports whether the coordinate lies inside the WGS84 range.
func (c GeoCoord) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// String returns a string representation of the coordinate.
func (c GeoCoord) String() string {
	return fmt.Sprintf("%.7f,%.7f", c.Lat, c.Lon)
}
