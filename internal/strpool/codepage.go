package strpool

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Codepages with special handling.
const (
	CodepageNeutral = 0
	CodepageUTF16LE = 1200
	CodepageUTF8    = 65001
)

var codepages = map[uint32]encoding.Encoding{
	CodepageNeutral: charmap.Windows1252,
	437:             charmap.CodePage437,
	850:             charmap.CodePage850,
	852:             charmap.CodePage852,
	855:             charmap.CodePage855,
	858:             charmap.CodePage858,
	860:             charmap.CodePage860,
	862:             charmap.CodePage862,
	863:             charmap.CodePage863,
	865:             charmap.CodePage865,
	866:             charmap.CodePage866,
	874:             charmap.Windows874,
	932:             japanese.ShiftJIS,
	936:             simplifiedchinese.GBK,
	949:             korean.EUCKR,
	950:             traditionalchinese.Big5,
	1250:            charmap.Windows1250,
	1251:            charmap.Windows1251,
	1252:            charmap.Windows1252,
	1253:            charmap.Windows1253,
	1254:            charmap.Windows1254,
	1255:            charmap.Windows1255,
	1256:            charmap.Windows1256,
	1257:            charmap.Windows1257,
	1258:            charmap.Windows1258,
	10000:           charmap.Macintosh,
	20127:           charmap.Windows1252, // US-ASCII is a subset
	20866:           charmap.KOI8R,
	21866:           charmap.KOI8U,
	28591:           charmap.ISO8859_1,
	28592:           charmap.ISO8859_2,
	28593:           charmap.ISO8859_3,
	28594:           charmap.ISO8859_4,
	28595:           charmap.ISO8859_5,
	28596:           charmap.ISO8859_6,
	28597:           charmap.ISO8859_7,
	28598:           charmap.ISO8859_8,
	28599:           charmap.ISO8859_9,
	28603:           charmap.ISO8859_13,
	28605:           charmap.ISO8859_15,
	54936:           simplifiedchinese.GB18030,
	CodepageUTF16LE: unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	CodepageUTF8:    unicode.UTF8,
}

// Encoding returns the text encoding for a Windows codepage identifier.
func Encoding(codepage uint32) (encoding.Encoding, error) {
	enc, ok := codepages[codepage]
	if !ok {
		return nil, fmt.Errorf("codepage %d: %w", codepage, ErrUnsupportedCodepage)
	}
	return enc, nil
}

// UnitSize returns the code unit size in bytes: 2 for UTF-16, 1 otherwise.
func UnitSize(codepage uint32) int {
	if codepage == CodepageUTF16LE {
		return 2
	}
	return 1
}
