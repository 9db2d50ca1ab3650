// Package matcher finds route nodes that two independently built databases
// share geographically.
//
// Node ids are local to their database, so the only common ground between
// two graphs is geography. CellMatcher quantizes coordinates into the
// 2^16 × 2^16 cell grid of package geocell and works in two passes per
// database: the first collects the set of cells a database touches, the
// second keeps the ids of the nodes that lie in cells both databases
// touch. Memory between the passes is bounded by the number of cells, not
// by the size of the graphs.
//
// The candidates are a cell-level guarantee. Verify reduces them to the
// nodes whose stored coordinates are identical on both sides.
package matcher
