package format

import (
	"fmt"
	"math"
)

// DecodeInt returns the logical value of a stored integer slot of the given
// width (2 or 4). A stored zero means no value.
func DecodeInt(stored uint32, width int) (int32, bool) {
	if stored == 0 {
		return 0, false
	}
	if width == ShortWidth {
		return int32(int16(uint16(stored ^ ShortBias))), true
	}
	return int32(stored ^ LongBias), true
}

// EncodeInt biases v for storage in a slot of the given width. The most
// negative value of each width encodes to the null slot and is rejected.
func EncodeInt(v int32, width int) (uint32, error) {
	if width == ShortWidth {
		if v <= math.MinInt16 || v > math.MaxInt16 {
			return 0, fmt.Errorf("value %d does not fit a 2-byte column: %w", v, ErrFormat)
		}
		return uint32(uint16(int16(v))) ^ ShortBias, nil
	}
	if v == math.MinInt32 {
		return 0, fmt.Errorf("value %d is reserved for null: %w", v, ErrFormat)
	}
	return uint32(v) ^ LongBias, nil
}
