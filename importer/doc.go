// Package importer holds the import-side generators that derive auxiliary
// files from a database.
//
// AreaRouteIndexGenerator builds the area route index, a cell-sorted list
// of route node offsets for bounding-box queries. Routing itself never
// reads it.
package importer
