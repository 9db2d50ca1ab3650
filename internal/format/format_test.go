package format

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader(t *testing.T) {
	img := NewHeader(MagicRouteNodes, 42).Append(nil)
	require.Len(t, img, HeaderSize)

	h, err := ReadHeader(bytes.NewReader(img), MagicRouteNodes)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), h.Count)
	assert.Equal(t, uint32(Version), h.Version)

	_, err = ReadHeader(bytes.NewReader(img), MagicJunctions)
	assert.ErrorIs(t, err, ErrInvalidMagic)

	_, err = ReadHeader(bytes.NewReader(img[:5]), MagicRouteNodes)
	assert.ErrorIs(t, err, ErrCorrupt)

	bad := Header{Magic: MagicRouteNodes, Version: 9}.Append(nil)
	_, err = ReadHeader(bytes.NewReader(bad), MagicRouteNodes)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestReaderWriter(t *testing.T) {
	w := NewWriter(NewHeader(MagicRouteNodes, 0))
	start := w.Pos()
	w.WriteUvarint(300)
	w.WriteI32(-5)
	w.WriteU16(7)
	w.WriteU8(9)
	w.WriteF64(1.25)
	w.WriteUvarint(1 << 40)
	w.SetCount(1)

	for name, r := range map[string]*Reader{
		"bytes":   NewBytesReader(w.Bytes(), start),
		"section": NewSectionReader(bytes.NewReader(w.Bytes()), start, int64(len(w.Bytes())), 16),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, start, r.Pos())

			v, err := r.ReadUvarint()
			require.NoError(t, err)
			assert.Equal(t, uint64(300), v)

			i, err := r.ReadI32()
			require.NoError(t, err)
			assert.Equal(t, int32(-5), i)

			u16, err := r.ReadU16()
			require.NoError(t, err)
			assert.Equal(t, uint16(7), u16)

			u8, err := r.ReadU8()
			require.NoError(t, err)
			assert.Equal(t, uint8(9), u8)

			f, err := r.ReadF64()
			require.NoError(t, err)
			assert.Equal(t, 1.25, f)

			n, err := r.ReadCount(1 << 41)
			require.NoError(t, err)
			assert.Equal(t, 1<<40, n)

			assert.Equal(t, int64(len(w.Bytes())), r.Pos())

			_, err = r.ReadU32()
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}

	h, err := ReadHeader(bytes.NewReader(w.Bytes()), MagicRouteNodes)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), h.Count)
}

func TestReader_CountLimit(t *testing.T) {
	w := NewWriter(NewHeader(MagicJunctions, 0))
	w.WriteUvarint(1000)
	r := NewBytesReader(w.Bytes(), HeaderSize)
	_, err := r.ReadCount(10)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestIndexEntry(t *testing.T) {
	b := AppendIndexEntry(nil, IndexEntry{ID: 17, Offset: 4096})
	require.Len(t, b, IndexEntrySize)
	assert.Equal(t, IndexEntry{ID: 17, Offset: 4096}, DecodeIndexEntry(b))
}

func TestCompression(t *testing.T) {
	data := bytes.Repeat([]byte{1, 0, 50, 0, 63}, 2000)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			payload, used, err := Compress(data, c)
			require.NoError(t, err)
			assert.Equal(t, c, used, "repetitive data should compress")

			got, err := Decompress(payload, used, len(data))
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestCompression_Incompressible(t *testing.T) {
	data := []byte{1, 2, 3}
	payload, used, err := Compress(data, CompressionZSTD)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, used)
	assert.Equal(t, data, payload)
}

func TestDecompress_Corrupt(t *testing.T) {
	_, err := Decompress([]byte{1, 2}, CompressionNone, 3)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = Decompress([]byte{0xff, 0xff, 0xff}, CompressionZSTD, 10)
	assert.ErrorIs(t, err, ErrCorrupt)
	_, err = Decompress(nil, Compression(9), 0)
	assert.ErrorIs(t, err, ErrCorrupt)
}
