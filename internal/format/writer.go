package format

import (
	"encoding/binary"
	"math"
)

// Writer appends record fields to an in-memory file image.
type Writer struct {
	buf []byte
}

// NewWriter starts a file image with the given header.
func NewWriter(h Header) *Writer {
	return &Writer{buf: h.Append(make([]byte, 0, 4096))}
}

// Pos returns the offset the next field will be written at.
func (w *Writer) Pos() int64 { return int64(len(w.buf)) }

// Bytes returns the file image.
func (w *Writer) Bytes() []byte { return w.buf }

// SetCount rewrites the record count of the header.
func (w *Writer) SetCount(count uint32) {
	binary.LittleEndian.PutUint32(w.buf[8:], count)
}

// WriteU8 appends one byte.
func (w *Writer) WriteU8(v uint8) { w.buf = append(w.buf, v) }

// WriteU16 appends a little-endian uint16.
func (w *Writer) WriteU16(v uint16) { w.buf = binary.LittleEndian.AppendUint16(w.buf, v) }

// WriteU32 appends a little-endian uint32.
func (w *Writer) WriteU32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

// WriteI32 appends a little-endian int32.
func (w *Writer) WriteI32(v int32) { w.WriteU32(uint32(v)) }

// WriteF64 appends a little-endian float64.
func (w *Writer) WriteF64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// WriteUvarint appends an unsigned varint.
func (w *Writer) WriteUvarint(v uint64) { w.buf = binary.AppendUvarint(w.buf, v) }

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }
