// Package search implements route search over one or more route graphs.
//
// The engine sees graphs only through State. A State owns the per-database
// cost profiles and decides which moves between databases exist
// (Transitions); the engine never assumes that node ids correspond across
// databases.
package search
