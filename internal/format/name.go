package format

import "strings"

// mangleSymbol maps a character of the stream-name alphabet to its 6-bit value.
func mangleSymbol(r rune) (uint32, bool) {
	switch {
	case r >= '0' && r <= '9':
		return uint32(r - '0'), true
	case r >= 'A' && r <= 'Z':
		return uint32(r-'A') + 10, true
	case r >= 'a' && r <= 'z':
		return uint32(r-'a') + 36, true
	case r == '.':
		return 62, true
	case r == '_':
		return 63, true
	}
	return 0, false
}

func unmangleSymbol(v uint32) rune {
	switch {
	case v < 10:
		return rune('0' + v)
	case v < 36:
		return rune('A' + v - 10)
	case v < 62:
		return rune('a' + v - 36)
	case v == 62:
		return '.'
	default:
		return '_'
	}
}

// EncodeStreamName returns the container-level name for a database stream.
// Table row streams set table; binary value streams and other named streams
// do not. Characters outside the alphabet are kept as is.
func EncodeStreamName(name string, table bool) string {
	in := []rune(name)
	out := make([]rune, 0, len(in)+1)
	if table {
		out = append(out, TableNamePrefix)
	}
	for i := 0; i < len(in); {
		v1, ok := mangleSymbol(in[i])
		if !ok {
			out = append(out, in[i])
			i++
			continue
		}
		if i+1 < len(in) {
			if v2, ok := mangleSymbol(in[i+1]); ok {
				out = append(out, rune(mangleBase2+v1+v2<<6))
				i += 2
				continue
			}
		}
		out = append(out, rune(mangleBase1+v1))
		i++
	}
	return string(out)
}

// DecodeStreamName reverses EncodeStreamName and reports whether the name
// carried the table marker.
func DecodeStreamName(s string) (name string, table bool) {
	var b strings.Builder
	for i, r := range s {
		switch {
		case i == 0 && r == TableNamePrefix:
			table = true
		case r >= mangleBase2 && r < mangleBase1:
			v := uint32(r - mangleBase2)
			b.WriteRune(unmangleSymbol(v & 0x3F))
			b.WriteRune(unmangleSymbol(v >> 6))
		case r >= mangleBase1 && r < mangleEnd:
			b.WriteRune(unmangleSymbol(uint32(r - mangleBase1)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), table
}

// BinaryStreamName joins a table name and the textual primary key values
// into the name of the stream holding a binary cell.
func BinaryStreamName(table string, keys ...string) string {
	return strings.Join(append([]string{table}, keys...), ".")
}
