// Package model defines the core types shared by every georoute package.
//
// # Identity Types
//
//   - DatabaseID: identifies one open map dataset in a Service registry
//   - ID: database-local numeric id of a route node or junction
//   - FileOffset: byte offset of a record inside a data file
//   - DBFileOffset: (DatabaseID, FileOffset), a cross-database record locator
//   - ObjectFileRef: typed reference to a map object (way, area, node)
//
// # Graph Types
//
//   - RouteNode: graph vertex with coordinate, attached objects and outgoing paths
//   - Junction: map objects meeting at a node
//   - ObjectVariant: cost-relevant attributes shared by many objects
//
// # Query Types
//
//   - RoutePosition: routable start or target endpoint
//   - RouteData / RouteEntry: ordered route produced by a search
//   - RoutingResult: route plus explicit validity
//
// A DBFileOffset owns nothing. It is only meaningful while its database
// stays open.
package model
