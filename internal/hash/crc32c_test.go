package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32C(t *testing.T) {
	// Check value of CRC-32C for "123456789".
	assert.Equal(t, uint32(0xE3069283), CRC32C([]byte("123456789")))
	assert.Equal(t, uint32(0), CRC32C(nil))
}

func TestVerify(t *testing.T) {
	data := []byte("typeID maxSpeed grade access")
	assert.NoError(t, Verify(data, CRC32C(data)))

	data[0] ^= 0x01
	err := Verify(data, CRC32C([]byte("typeID maxSpeed grade access")))
	assert.ErrorIs(t, err, ErrMismatch)
}
