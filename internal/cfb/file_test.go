package cfb

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, w *Writer, streams map[string][]byte) []byte {
	t.Helper()
	for name, data := range streams {
		require.NoError(t, w.AddStream(name, data))
	}
	b, err := w.Bytes()
	require.NoError(t, err)
	return b
}

func TestOpenRoundTrip(t *testing.T) {
	small := []byte("short stream")
	large := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF}, 3000) // 9000 bytes, regular sectors
	exact := bytes.Repeat([]byte{7}, MiniStreamCutoff)

	for _, tc := range []struct {
		name string
		w    *Writer
		size int
	}{
		{"v3", NewWriter(), 512},
		{"v4", NewWriterV4(), 4096},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := build(t, tc.w, map[string][]byte{
				"small": small,
				"large": large,
				"cut":   exact,
				"empty": {},
			})
			f, err := Open(b)
			require.NoError(t, err)
			require.Equal(t, tc.size, f.Header().SectorSize())

			got, err := f.Stream("small")
			require.NoError(t, err)
			require.Equal(t, small, got)

			got, err = f.Stream("large")
			require.NoError(t, err)
			require.Equal(t, large, got)

			got, err = f.Stream("cut")
			require.NoError(t, err)
			require.Equal(t, exact, got)

			got, err = f.Stream("empty")
			require.NoError(t, err)
			require.Empty(t, got)

			require.Len(t, f.Entries(), 4)
		})
	}
}

func TestStreamIsCopy(t *testing.T) {
	b := build(t, NewWriter(), map[string][]byte{"s": []byte("abc")})
	orig := append([]byte(nil), b...)
	f, err := Open(b)
	require.NoError(t, err)

	got, err := f.Stream("s")
	require.NoError(t, err)
	got[0] = 'z'
	again, err := f.Stream("s")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
	require.Equal(t, orig, b)
}

func TestEntriesOrder(t *testing.T) {
	b := build(t, NewWriter(), map[string][]byte{
		"bbb": {1}, "a": {2}, "CC": {3}, "aa": {4},
	})
	f, err := Open(b)
	require.NoError(t, err)

	var names []string
	for _, e := range f.Entries() {
		names = append(names, e.Name)
		assert.Equal(t, TypeStream, e.Type)
		assert.Equal(t, 0, e.Parent)
		assert.Equal(t, e.Name, e.Path)
	}
	require.Equal(t, []string{"a", "aa", "CC", "bbb"}, names)
}

func TestStreamNotFound(t *testing.T) {
	f, err := Open(build(t, NewWriter(), map[string][]byte{"x": {1}}))
	require.NoError(t, err)
	_, err = f.Stream("y")
	require.ErrorIs(t, err, ErrNotFound)
	_, ok := f.Lookup("Root Entry")
	require.False(t, ok)
}

func TestUnicodeNames(t *testing.T) {
	name := "䡀㬿䏲"
	f, err := Open(build(t, NewWriter(), map[string][]byte{name: []byte("rows")}))
	require.NoError(t, err)
	got, err := f.Stream(name)
	require.NoError(t, err)
	require.Equal(t, []byte("rows"), got)
}

func TestOpenWithoutStreams(t *testing.T) {
	f, err := Open(build(t, NewWriter(), nil))
	require.NoError(t, err)
	require.Empty(t, f.Entries())
}

func TestOpenFATCycle(t *testing.T) {
	large := bytes.Repeat([]byte{1}, 2*MiniStreamCutoff)
	b := build(t, NewWriter(), map[string][]byte{"big": large})
	f, err := Open(b)
	require.NoError(t, err)
	e, ok := f.Lookup("big")
	require.True(t, ok)

	// FAT sector 0 follows the 512-byte header; point the stream's first
	// sector at itself.
	binary.LittleEndian.PutUint32(b[512+int(e.StartSector)*4:], e.StartSector)
	f, err = Open(b)
	require.NoError(t, err)
	_, err = f.Stream("big")
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestOpenTruncated(t *testing.T) {
	large := bytes.Repeat([]byte{1}, 3*MiniStreamCutoff)
	b := build(t, NewWriter(), map[string][]byte{"big": large})
	// The stream's sectors are laid out last; drop four of them.
	f, err := Open(b[:len(b)-2048])
	require.NoError(t, err)
	_, err = f.Stream("big")
	require.ErrorIs(t, err, ErrTruncated)
}

func TestOpenDirectoryCycle(t *testing.T) {
	b := build(t, NewWriter(), map[string][]byte{"a": {1}, "b": {2}})
	h, err := ParseHeader(b)
	require.NoError(t, err)
	dirOff := (int(h.FirstDirSector) + 1) * h.SectorSize()
	// Entry 2 is the last sibling; link it back to entry 1.
	binary.LittleEndian.PutUint32(b[dirOff+2*DirEntrySize+DirRightOffset:], 1)
	_, err = Open(b)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestOpenDuplicateNames(t *testing.T) {
	b := build(t, NewWriter(), map[string][]byte{"a": {1}, "b": {2}})
	h, err := ParseHeader(b)
	require.NoError(t, err)
	dirOff := (int(h.FirstDirSector) + 1) * h.SectorSize()
	// Rename entry 2 ("b") to "a".
	binary.LittleEndian.PutUint16(b[dirOff+2*DirEntrySize:], 'a')
	_, err = Open(b)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestWriterRejectsBadNames(t *testing.T) {
	w := NewWriter()
	require.Error(t, w.AddStream("", nil))
	require.Error(t, w.AddStream(string(bytes.Repeat([]byte{'n'}, MaxNameUnits+1)), nil))
	require.NoError(t, w.AddStream("ok", nil))
	require.Error(t, w.AddStream("ok", nil))
}
