// Package buf contains bounds and endian helpers shared by the container,
// string pool and table decoders. Every reader returns 0 when the input is
// too short so callers can check bounds once per record instead of per field.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16 from b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U24LE reads a little-endian 24-bit unsigned value from b, as used by long
// string pool references. Returns 0 when b is too short.
func U24LE(b []byte) uint32 {
	if len(b) < 3 {
		return 0
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// I16LE reads a little-endian int16 from b. Returns 0 when b is too short.
func I16LE(b []byte) int16 {
	return int16(U16LE(b))
}

// I32LE reads a little-endian int32 from b. Returns 0 when b is too short.
func I32LE(b []byte) int32 {
	return int32(U32LE(b))
}

// UintLE reads a little-endian unsigned value of width 2, 3 or 4 bytes.
// Any other width yields 0.
func UintLE(b []byte, width int) uint32 {
	switch width {
	case 2:
		return uint32(U16LE(b))
	case 3:
		return U24LE(b)
	case 4:
		return U32LE(b)
	default:
		return 0
	}
}

// PutUintLE writes v as a little-endian value of width 2, 3 or 4 bytes.
// The caller guarantees len(b) >= width.
func PutUintLE(b []byte, width int, v uint32) {
	switch width {
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 3:
		b[0], b[1], b[2] = byte(v), byte(v>>8), byte(v>>16)
	case 4:
		binary.LittleEndian.PutUint32(b, v)
	}
}
