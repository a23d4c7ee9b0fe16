//go:build unix

package mmfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapReadOnlyUnix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.msi")
	want := []byte{0xD0, 0xCF, 0x11, 0xE0, 0x42}
	require.NoError(t, os.WriteFile(path, want, 0o644))

	m, err := Map(path, 0)
	require.NoError(t, err)
	require.Equal(t, want, m.Data())
	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "second close is a no-op")
}

func TestMapZeroLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.msi")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	m, err := Map(path, 0)
	require.NoError(t, err)
	require.Empty(t, m.Data())
	require.NoError(t, m.Close())
}

func TestMapSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.msi")
	require.NoError(t, os.WriteFile(path, make([]byte, 1024), 0o644))
	_, err := Map(path, 512)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestMapMissing(t *testing.T) {
	_, err := Map(filepath.Join(t.TempDir(), "nope.msi"), 0)
	require.ErrorIs(t, err, os.ErrNotExist)
}
