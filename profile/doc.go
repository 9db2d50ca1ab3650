// Package profile defines the cost profile consumed by route search and
// provides shortest-distance and fastest-time implementations.
package profile
