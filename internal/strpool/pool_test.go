package strpool

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripCodepages(t *testing.T) {
	cases := []struct {
		cp   uint32
		strs []string
	}{
		{1252, []string{"Property", "Value", "ProductName", "Acme Café", ""}},
		{CodepageUTF8, []string{"ProductName", "Ünïcödé", "製品", ""}},
		{CodepageUTF16LE, []string{"ProductName", "製品名", "Ω", ""}},
		{932, []string{"製品", "ABC"}},
		{1251, []string{"Привет"}},
		{CodepageNeutral, []string{"plain"}},
	}
	for _, tc := range cases {
		pool, data, err := Encode(tc.strs, tc.cp, false)
		require.NoError(t, err, "codepage %d", tc.cp)
		p, err := Decode(pool, data)
		require.NoError(t, err, "codepage %d", tc.cp)

		require.Equal(t, len(tc.strs)+1, p.Len())
		require.Equal(t, tc.cp, p.Codepage())
		for i, want := range tc.strs {
			got, present, err := p.Lookup(uint32(i + 1))
			require.NoError(t, err)
			assert.True(t, present)
			assert.Equal(t, want, got, "codepage %d index %d", tc.cp, i+1)
		}
		_, present, err := p.Lookup(0)
		require.NoError(t, err)
		assert.False(t, present, "index 0 must be absent")
	}
}

func TestDecodeEmpty(t *testing.T) {
	p, err := Decode(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())
	require.Equal(t, 2, p.RefSize())
}

func TestRefSize(t *testing.T) {
	pool, data, err := Encode([]string{"a"}, 1252, true)
	require.NoError(t, err)
	p, err := Decode(pool, data)
	require.NoError(t, err)
	require.True(t, p.LongRefs())
	require.Equal(t, 3, p.RefSize())
	require.Equal(t, uint32(1252), p.Codepage())

	pool, data, err = Encode([]string{"a"}, 1252, false)
	require.NoError(t, err)
	p, err = Decode(pool, data)
	require.NoError(t, err)
	require.Equal(t, 2, p.RefSize())
}

func TestLargeStringEscape(t *testing.T) {
	big := strings.Repeat("x", 70000)
	pool, data, err := Encode([]string{"before", big, "after"}, 1252, false)
	require.NoError(t, err)
	// header + 1 + 2 (escaped) + 1 descriptors
	require.Len(t, pool, 4+4*4)

	p, err := Decode(pool, data)
	require.NoError(t, err)
	require.Equal(t, 4, p.Len())
	s, _ := p.Get(2)
	require.Equal(t, big, s)
	s, _ = p.Get(3)
	require.Equal(t, "after", s)
}

func TestDecodeTruncated(t *testing.T) {
	pool, data, err := Encode([]string{"hello", "world"}, 1252, false)
	require.NoError(t, err)
	_, err = Decode(pool, data[:7])
	require.ErrorIs(t, err, ErrTruncated)

	_, err = Decode(pool[:2], data)
	require.ErrorIs(t, err, ErrTruncated)

	_, err = Decode(pool[:len(pool)-2], data)
	require.ErrorIs(t, err, ErrFormat)
}

func TestDecodeTrailingDataTolerated(t *testing.T) {
	pool, data, err := Encode([]string{"a"}, 1252, false)
	require.NoError(t, err)
	p, err := Decode(pool, append(data, "junk"...))
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
}

func TestDecodeOddUTF16(t *testing.T) {
	pool := make([]byte, 8)
	binary.LittleEndian.PutUint32(pool, CodepageUTF16LE)
	binary.LittleEndian.PutUint16(pool[4:], 3)
	binary.LittleEndian.PutUint16(pool[6:], 1)
	_, err := Decode(pool, []byte{'a', 0, 'b'})
	require.ErrorIs(t, err, ErrFormat)
}

func TestUnsupportedCodepage(t *testing.T) {
	pool := make([]byte, 4)
	binary.LittleEndian.PutUint32(pool, 12345)
	_, err := Decode(pool, nil)
	require.ErrorIs(t, err, ErrUnsupportedCodepage)

	_, _, err = Encode([]string{"a"}, 12345, false)
	require.ErrorIs(t, err, ErrUnsupportedCodepage)
}

func TestLookupOutOfRange(t *testing.T) {
	pool, data, err := Encode([]string{"a", "b"}, 1252, false)
	require.NoError(t, err)
	p, err := Decode(pool, data)
	require.NoError(t, err)
	_, _, err = p.Lookup(3)
	require.ErrorIs(t, err, ErrFormat)
	require.Equal(t, uint16(1), p.Refcount(1))
	require.Equal(t, uint16(0), p.Refcount(99))
}
