package routedb

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/georoute/blobstore"
	"github.com/hupe1980/georoute/internal/format"
	"github.com/hupe1980/georoute/internal/hash"
	"github.com/hupe1980/georoute/model"
)

const (
	variantRecordSize = 5
	variantBlockSize  = 13 // compression u8, rawSize u32, payloadSize u32, crc32c u32
	maxVariants       = 1 << 16
)

// VariantTable is the object variant table of a database. It is loaded
// completely on open and immutable afterwards.
type VariantTable struct {
	variants []model.ObjectVariant
}

// NewVariantTable wraps variants.
func NewVariantTable(variants []model.ObjectVariant) *VariantTable {
	return &VariantTable{variants: variants}
}

// Len returns the number of variants.
func (t *VariantTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.variants)
}

// Get returns variant i.
func (t *VariantTable) Get(i uint16) (model.ObjectVariant, bool) {
	if t == nil || int(i) >= len(t.variants) {
		return model.ObjectVariant{}, false
	}
	return t.variants[i], true
}

// LoadVariantTable reads the object variant table from store.
func LoadVariantTable(ctx context.Context, store blobstore.BlobStore) (*VariantTable, error) {
	b, err := store.Open(ctx, ObjectVariantFile, blobstore.AccessSequential)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	h, err := format.ReadHeader(b, format.MagicObjectVariants)
	if err != nil {
		return nil, err
	}
	if h.Count > maxVariants {
		return nil, fmt.Errorf("%w: %d variants", format.ErrCorrupt, h.Count)
	}

	var block [variantBlockSize]byte
	if _, err := b.ReadAt(block[:], format.HeaderSize); err != nil {
		return nil, fmt.Errorf("%w: variant block: %w", format.ErrCorrupt, err)
	}
	c := format.Compression(block[0])
	rawSize := binary.LittleEndian.Uint32(block[1:])
	payloadSize := binary.LittleEndian.Uint32(block[5:])
	checksum := binary.LittleEndian.Uint32(block[9:])

	if rawSize != h.Count*variantRecordSize {
		return nil, fmt.Errorf("%w: variant payload %d bytes for %d variants", format.ErrCorrupt, rawSize, h.Count)
	}
	if int64(format.HeaderSize+variantBlockSize)+int64(payloadSize) != b.Size() {
		return nil, fmt.Errorf("%w: variant payload size %d", format.ErrCorrupt, payloadSize)
	}

	payload := make([]byte, payloadSize)
	if _, err := b.ReadAt(payload, format.HeaderSize+variantBlockSize); err != nil && err != io.EOF {
		return nil, err
	}
	raw, err := format.Decompress(payload, c, int(rawSize))
	if err != nil {
		return nil, err
	}
	if err := hash.Verify(raw, checksum); err != nil {
		return nil, fmt.Errorf("%w: variants: %w", format.ErrCorrupt, err)
	}

	variants := make([]model.ObjectVariant, h.Count)
	for i := range variants {
		rec := raw[i*variantRecordSize:]
		variants[i] = model.ObjectVariant{
			TypeID:   binary.LittleEndian.Uint16(rec),
			MaxSpeed: rec[2],
			Grade:    rec[3],
			Access:   model.AccessFlags(rec[4]),
		}
	}
	return &VariantTable{variants: variants}, nil
}

// EncodeVariantTable encodes variants into a complete variant file.
func EncodeVariantTable(variants []model.ObjectVariant, c format.Compression) ([]byte, error) {
	if len(variants) > maxVariants {
		return nil, fmt.Errorf("routedb: %d variants exceed %d", len(variants), maxVariants)
	}

	raw := make([]byte, 0, len(variants)*variantRecordSize)
	for _, v := range variants {
		raw = binary.LittleEndian.AppendUint16(raw, v.TypeID)
		raw = append(raw, v.MaxSpeed, v.Grade, uint8(v.Access))
	}

	payload, used, err := format.Compress(raw, c)
	if err != nil {
		return nil, err
	}

	w := format.NewWriter(format.NewHeader(format.MagicObjectVariants, uint32(len(variants))))
	w.WriteU8(uint8(used))
	w.WriteU32(uint32(len(raw)))
	w.WriteU32(uint32(len(payload)))
	w.WriteU32(hash.CRC32C(raw))
	w.WriteBytes(payload)
	return w.Bytes(), nil
}
