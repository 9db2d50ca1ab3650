// Package format implements the on-disk encoding shared by all georoute
// data files.
//
// Every file starts with a 12-byte little-endian header:
//
//	[magic u32][version u32][count u32]
//
// Records that follow are self-describing: unsigned varints for ids,
// counts and offsets, fixed-width little-endian integers for coordinates
// and attributes, IEEE-754 float64 for distances. Index files are arrays
// of fixed 16-byte {id u64, offset u64} entries sorted by id.
//
// Blocks may be stored raw or compressed with LZ4 or ZSTD.
package format
