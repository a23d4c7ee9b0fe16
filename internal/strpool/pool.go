// Package strpool decodes the interned string table of a Windows Installer
// database. The table is split over two streams: _StringPool holds a
// codepage header followed by one {length, refcount} descriptor per string,
// and _StringData holds the encoded characters back to back.
//
// Index 0 never has a descriptor; it is the reference every table uses for
// "no value".
package strpool

import (
	"fmt"

	"github.com/joshuapare/msikit/internal/buf"
	"github.com/joshuapare/msikit/internal/format"
)

// _StringPool layout (little-endian).
//
//	Offset  Size  Description
//	 0x00    4    Codepage; bit 31 set when string references are 3 bytes
//	 0x04    4    Descriptor for string 1: u16 length, u16 refcount
//	 ...
//
// A descriptor with length 0 and a nonzero refcount escapes to a large
// string: the refcount field holds the high 16 bits of the length, and the
// next descriptor holds the low 16 bits and the real refcount.
const (
	headerSize     = 4
	descriptorSize = 4
	longRefsFlag   = 0x80000000
	maxShortIndex  = 0xFFFF
)

// Pool is a decoded string table. It is immutable and safe for concurrent use.
type Pool struct {
	codepage  uint32
	longRefs  bool
	strings   []string // strings[0] is the absent marker
	refcounts []uint16
}

// Decode parses the two string streams. Either stream may be empty, which
// yields a pool holding only the absent marker.
func Decode(pool, data []byte) (*Pool, error) {
	p := &Pool{strings: []string{""}, refcounts: []uint16{0}}
	if len(pool) == 0 {
		return p, nil
	}
	if len(pool) < headerSize {
		return nil, fmt.Errorf("strpool: header needs %d bytes, have %d: %w", headerSize, len(pool), ErrTruncated)
	}
	hdr := buf.U32LE(pool)
	p.longRefs = hdr&longRefsFlag != 0
	p.codepage = hdr &^ longRefsFlag
	if (len(pool)-headerSize)%descriptorSize != 0 {
		return nil, fmt.Errorf("strpool: %d descriptor bytes is not a multiple of %d: %w", len(pool)-headerSize, descriptorSize, ErrFormat)
	}

	enc, err := Encoding(p.codepage)
	if err != nil {
		return nil, err
	}
	dec := enc.NewDecoder()
	unit := UnitSize(p.codepage)

	off := 0
	for pos := headerSize; pos < len(pool); pos += descriptorSize {
		length := uint32(buf.U16LE(pool[pos:]))
		refs := buf.U16LE(pool[pos+2:])
		if length == 0 && refs != 0 {
			pos += descriptorSize
			if pos >= len(pool) {
				return nil, fmt.Errorf("strpool: string %d: large string escape without length: %w", len(p.strings), ErrTruncated)
			}
			length = uint32(refs)<<16 | uint32(buf.U16LE(pool[pos:]))
			refs = buf.U16LE(pool[pos+2:])
		}

		n := int(length)
		if n%unit != 0 {
			return nil, fmt.Errorf("strpool: string %d: odd length %d under codepage %d: %w", len(p.strings), n, p.codepage, ErrFormat)
		}
		end, err := buf.CheckSpan(len(data), off, n, 1)
		if err != nil {
			return nil, fmt.Errorf("strpool: string %d: %d bytes at offset %d of %d: %w", len(p.strings), n, off, len(data), ErrTruncated)
		}
		s, err := dec.Bytes(data[off:end])
		if err != nil {
			return nil, fmt.Errorf("strpool: string %d: %v: %w", len(p.strings), err, ErrFormat)
		}
		p.strings = append(p.strings, string(s))
		p.refcounts = append(p.refcounts, refs)
		off = end
	}
	return p, nil
}

// Len returns the number of indices, including the absent marker at 0.
func (p *Pool) Len() int { return len(p.strings) }

// Codepage returns the pool codepage identifier.
func (p *Pool) Codepage() uint32 { return p.codepage }

// LongRefs reports whether the pool header requested 3-byte references.
func (p *Pool) LongRefs() bool { return p.longRefs }

// RefSize returns the width of a string reference in table streams.
func (p *Pool) RefSize() int {
	if p.longRefs || len(p.strings)-1 > maxShortIndex {
		return format.LongRefSize
	}
	return format.ShortRefSize
}

// Lookup resolves a reference. Reference 0 reports present == false; a
// reference past the end of the pool is an error.
func (p *Pool) Lookup(ref uint32) (s string, present bool, err error) {
	if ref == 0 {
		return "", false, nil
	}
	if uint64(ref) >= uint64(len(p.strings)) {
		return "", false, fmt.Errorf("strpool: reference %d outside pool of %d: %w", ref, len(p.strings), ErrFormat)
	}
	return p.strings[ref], true, nil
}

// Get is Lookup for callers that treat the absent marker as "".
func (p *Pool) Get(ref uint32) (string, error) {
	s, _, err := p.Lookup(ref)
	return s, err
}

// Refcount returns the stored reference count of an index.
func (p *Pool) Refcount(ref uint32) uint16 {
	if uint64(ref) >= uint64(len(p.refcounts)) {
		return 0
	}
	return p.refcounts[ref]
}
