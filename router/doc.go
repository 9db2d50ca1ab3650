// Package router routes inside a single database.
//
// A Router owns the routedb.Files of its database and an in-memory grid of
// route node offsets by geocell, built with one sequential scan on Open,
// which answers closest-node lookups. Route calculation runs a search.Engine
// on a State bound to the database and the caller's profile.
package router
