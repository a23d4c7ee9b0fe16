package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	require.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	require.False(t, ok, "adding to MaxInt must overflow")

	_, ok = AddOverflowSafe(math.MinInt, -1)
	require.False(t, ok, "subtracting from MinInt must underflow")
}

func TestMulOverflowSafe(t *testing.T) {
	got, ok := MulOverflowSafe(512, 128)
	require.True(t, ok)
	require.Equal(t, 65536, got)

	got, ok = MulOverflowSafe(0, math.MaxInt)
	require.True(t, ok)
	require.Zero(t, got)

	_, ok = MulOverflowSafe(math.MaxInt/2+1, 2)
	require.False(t, ok)

	_, ok = MulOverflowSafe(-1, 4)
	require.False(t, ok, "negative operands are rejected")
}

func TestCheckSpan(t *testing.T) {
	end, err := CheckSpan(64, 8, 4, 8)
	require.NoError(t, err)
	require.Equal(t, 40, end)

	_, err = CheckSpan(64, 8, 8, 8)
	require.ErrorContains(t, err, "bounds")

	_, err = CheckSpan(64, -1, 1, 1)
	require.ErrorContains(t, err, "negative offset")

	_, err = CheckSpan(64, 0, math.MaxInt, 2)
	require.ErrorContains(t, err, "overflow")
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}

	got, ok := Slice(data, 1, 3)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got)

	_, ok = Slice(data, 4, 2)
	require.False(t, ok, "slice extending beyond len")
	_, ok = Slice(data, -1, 1)
	require.False(t, ok)
	_, ok = Slice(data, 1, -1)
	require.False(t, ok)

	require.False(t, Has(data, 2, 4))
	require.True(t, Has(data, 2, 1))
	require.True(t, Has(data, 5, 0), "empty range at end is in bounds")
}
