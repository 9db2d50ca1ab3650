// Package hash provides the payload checksum of the database file formats.
//
// Checksums are CRC32-Castagnoli (CRC32C), computed with hardware
// instructions where the platform has them.
//
//	sum := hash.CRC32C(raw)
//	...
//	if err := hash.Verify(raw, sum); err != nil {
//	    // corrupt payload
//	}
package hash
