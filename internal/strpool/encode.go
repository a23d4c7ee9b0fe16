package strpool

import (
	"encoding/binary"
	"fmt"
)

// Encode builds _StringPool and _StringData streams for strs, which take
// indices 1..len(strs). The long-refs flag is set when longRefs is true or
// the pool needs more than 16-bit indices. Every string gets refcount 1,
// except the empty string, whose {0, refcount} descriptor would read as a
// large-string escape.
func Encode(strs []string, codepage uint32, longRefs bool) (pool, data []byte, err error) {
	enc, err := Encoding(codepage)
	if err != nil {
		return nil, nil, err
	}
	e := enc.NewEncoder()

	hdr := codepage
	if longRefs || len(strs) > maxShortIndex {
		hdr |= longRefsFlag
	}
	pool = binary.LittleEndian.AppendUint32(make([]byte, 0, headerSize+len(strs)*descriptorSize), hdr)
	for i, s := range strs {
		b, err := e.Bytes([]byte(s))
		if err != nil {
			return nil, nil, fmt.Errorf("strpool: encode string %d under codepage %d: %w", i+1, codepage, err)
		}
		if len(b) > 0xFFFF {
			pool = binary.LittleEndian.AppendUint16(pool, 0)
			pool = binary.LittleEndian.AppendUint16(pool, uint16(len(b)>>16))
		}
		refs := uint16(1)
		if len(b) == 0 {
			refs = 0
		}
		pool = binary.LittleEndian.AppendUint16(pool, uint16(len(b)))
		pool = binary.LittleEndian.AppendUint16(pool, refs)
		data = append(data, b...)
	}
	return pool, data, nil
}
