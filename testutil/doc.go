// Package testutil provides testing utilities for georoute.
//
// This package is intended for use in tests only. It builds synthetic
// street grids as routedb datasets.
//
// # Grids
//
//	g := testutil.Grid{Rows: 4, Cols: 6, Origin: model.GeoCoord{Lat: 50, Lon: 8}, Spacing: 0.01, Seed: 7}
//	layout := testutil.WriteDataset(t, store, g.Dataset())
//
// Two grids whose origins are Spacing·k apart share the coordinates of
// their overlapping columns exactly, which makes them crossing points for
// cross-database routing.
package testutil
