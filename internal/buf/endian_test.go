package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	assert.Equal(t, uint16(0x2301), U16LE(data))
	assert.Equal(t, uint32(0x452301), U24LE(data))
	assert.Equal(t, uint32(0x67452301), U32LE(data))
	assert.Equal(t, uint64(0xefcdab8967452301), U64LE(data))
	assert.Equal(t, int16(0x2301), I16LE(data))
	assert.Equal(t, int32(0x67452301), I32LE(data))
	assert.Equal(t, int16(-2), I16LE([]byte{0xfe, 0xff}))

	short := []byte{0xAA}
	assert.Zero(t, U16LE(short))
	assert.Zero(t, U24LE(short))
	assert.Zero(t, U32LE(short))
	assert.Zero(t, U64LE(short))
	assert.Zero(t, I32LE(short))
}

func TestUintLERoundTrip(t *testing.T) {
	for _, width := range []int{2, 3, 4} {
		b := make([]byte, width)
		want := uint32(0x00BEEF)
		if width == 4 {
			want = 0x80BEEF01
		}
		PutUintLE(b, width, want)
		require.Equal(t, want, UintLE(b, width), "width %d", width)
	}
	require.Zero(t, UintLE([]byte{1, 2, 3, 4, 5}, 5))
}
