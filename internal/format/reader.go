package format

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/georoute/internal/conv"
)

// ByteReader is the input of a Reader.
type ByteReader interface {
	io.Reader
	io.ByteReader
}

// Reader decodes record fields and tracks the absolute file position.
type Reader struct {
	r   ByteReader
	pos int64
	buf [8]byte
}

// NewReader reads from r, which starts at absolute position pos.
func NewReader(r ByteReader, pos int64) *Reader {
	return &Reader{r: r, pos: pos}
}

// NewBytesReader reads data[pos:] of a fully addressable file.
func NewBytesReader(data []byte, pos int64) *Reader {
	if pos > int64(len(data)) {
		pos = int64(len(data))
	}
	return &Reader{r: bytes.NewReader(data[pos:]), pos: pos}
}

// NewSectionReader reads r from pos up to size through a buffer of bufSize bytes.
func NewSectionReader(r io.ReaderAt, pos, size int64, bufSize int) *Reader {
	return &Reader{r: bufio.NewReaderSize(io.NewSectionReader(r, pos, size-pos), bufSize), pos: pos}
}

// Pos returns the absolute position of the next byte.
func (r *Reader) Pos() int64 { return r.pos }

func (r *Reader) full(n int) ([]byte, error) {
	b := r.buf[:n]
	m, err := io.ReadFull(r.r, b)
	r.pos += int64(m)
	if err != nil {
		return nil, eofToCorrupt(err)
	}
	return b, nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, eofToCorrupt(err)
	}
	r.pos++
	return b, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.full(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.full(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadF64 reads a little-endian IEEE-754 float64.
func (r *Reader) ReadF64() (float64, error) {
	b, err := r.full(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// ReadUvarint reads an unsigned varint.
func (r *Reader) ReadUvarint() (uint64, error) {
	var x uint64
	var s uint
	for i := range binary.MaxVarintLen64 {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		if b < 0x80 {
			if i == binary.MaxVarintLen64-1 && b > 1 {
				return 0, fmt.Errorf("%w: varint overflow", ErrCorrupt)
			}
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, fmt.Errorf("%w: varint overflow", ErrCorrupt)
}

// ReadCount reads a varint element count and rejects values above limit.
func (r *Reader) ReadCount(limit int) (int, error) {
	n, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	c, err := conv.Uint64ToInt(n)
	if err != nil || c > limit {
		return 0, fmt.Errorf("%w: count %d exceeds %d", ErrCorrupt, n, limit)
	}
	return c, nil
}

func eofToCorrupt(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: unexpected end of record", ErrCorrupt)
	}
	return err
}
