package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the size of every file header in bytes.
const HeaderSize = 12

// Version is the current file format version.
const Version = 1

// File magics (ASCII).
const (
	MagicRouteNodes     uint32 = 0x47524E31 // "GRN1"
	MagicRouteIndex     uint32 = 0x47524931 // "GRI1"
	MagicJunctions      uint32 = 0x474A4E31 // "GJN1"
	MagicJunctionIndex  uint32 = 0x474A4931 // "GJI1"
	MagicObjectVariants uint32 = 0x474F5631 // "GOV1"
	MagicAreaRouteIndex uint32 = 0x47415231 // "GAR1"
)

// IndexEntrySize is the size of one {id, offset} index entry.
const IndexEntrySize = 16

var (
	// ErrInvalidMagic is returned when a file does not start with the expected magic.
	ErrInvalidMagic = errors.New("format: invalid magic number")
	// ErrInvalidVersion is returned for unsupported format versions.
	ErrInvalidVersion = errors.New("format: unsupported version")
	// ErrCorrupt is returned when a file is truncated or inconsistent.
	ErrCorrupt = errors.New("format: corrupt data")
)

// Header is the leading block of every data and index file.
type Header struct {
	Magic   uint32
	Version uint32
	Count   uint32
}

// NewHeader returns a header of the current version.
func NewHeader(magic, count uint32) Header {
	return Header{Magic: magic, Version: Version, Count: count}
}

// ReadHeader reads and validates the header at offset 0.
func ReadHeader(r io.ReaderAt, magic uint32) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := r.ReadAt(buf[:], 0); err != nil {
		if errors.Is(err, io.EOF) {
			return Header{}, fmt.Errorf("%w: short header", ErrCorrupt)
		}
		return Header{}, err
	}

	h := Header{
		Magic:   binary.LittleEndian.Uint32(buf[0:]),
		Version: binary.LittleEndian.Uint32(buf[4:]),
		Count:   binary.LittleEndian.Uint32(buf[8:]),
	}
	if h.Magic != magic {
		return Header{}, fmt.Errorf("%w: got %#08x, want %#08x", ErrInvalidMagic, h.Magic, magic)
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	return h, nil
}

// Append encodes the header onto dst.
func (h Header) Append(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, h.Magic)
	dst = binary.LittleEndian.AppendUint32(dst, h.Version)
	return binary.LittleEndian.AppendUint32(dst, h.Count)
}

// IndexEntry maps a record id to its data file offset.
type IndexEntry struct {
	ID     uint64
	Offset uint64
}

// DecodeIndexEntry decodes one fixed-size entry.
func DecodeIndexEntry(b []byte) IndexEntry {
	return IndexEntry{
		ID:     binary.LittleEndian.Uint64(b[0:]),
		Offset: binary.LittleEndian.Uint64(b[8:]),
	}
}

// AppendIndexEntry encodes one entry onto dst.
func AppendIndexEntry(dst []byte, e IndexEntry) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, e.ID)
	return binary.LittleEndian.AppendUint64(dst, e.Offset)
}
