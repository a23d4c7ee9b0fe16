package format

import "fmt"

// ColumnBits is the raw type word of a column definition.
type ColumnBits uint16

// Size returns the low byte: integer width or maximum string length.
func (c ColumnBits) Size() int { return int(uint16(c) & ColSizeMask) }

func (c ColumnBits) has(bit uint16) bool { return uint16(c)&bit != 0 }

// IsString reports whether the column stores string pool references.
func (c ColumnBits) IsString() bool { return c.has(ColString) && c.has(ColNonBinary) }

// IsBinary reports whether the column refers to a binary stream.
func (c ColumnBits) IsBinary() bool { return c.has(ColString) && !c.has(ColNonBinary) }

// IsInteger reports whether the column stores biased integers.
func (c ColumnBits) IsInteger() bool { return !c.has(ColString) }

func (c ColumnBits) Nullable() bool    { return c.has(ColNullable) }
func (c ColumnBits) PrimaryKey() bool  { return c.has(ColPrimaryKey) }
func (c ColumnBits) Localizable() bool { return c.has(ColLocalizable) }
func (c ColumnBits) Temporary() bool   { return c.has(ColTemporary) }

// IntWidth returns the slot width of an integer column. Sizes 1 and 2 are
// stored in two bytes, 4 in four bytes; anything else is malformed.
func (c ColumnBits) IntWidth() (int, error) {
	switch c.Size() {
	case 1, 2:
		return ShortWidth, nil
	case 4:
		return LongWidth, nil
	}
	return 0, fmt.Errorf("integer column of size %d (type 0x%04x): %w", c.Size(), uint16(c), ErrFormat)
}

// SlotWidth returns the number of bytes each row occupies for this column in
// a table stream, given the string reference size of the pool.
func (c ColumnBits) SlotWidth(refSize int) (int, error) {
	switch {
	case c.IsInteger():
		return c.IntWidth()
	case c.IsBinary():
		return BinaryWidth, nil
	}
	return refSize, nil
}
