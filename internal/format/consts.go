// Package format houses the low-level encoding rules of Windows Installer
// databases that sit on top of the compound file container: stream name
// mangling, column type bits, biased integer storage and the identifiers of
// the summary information property set. It is independent from the public
// API so higher-level packages can orchestrate the data in a more ergonomic
// form.
package format

// Well-known stream names, in their unmangled form.
const (
	StringPoolStream = "_StringPool"
	StringDataStream = "_StringData"
	TablesStream     = "_Tables"
	ColumnsStream    = "_Columns"
	ValidationTable  = "_Validation"

	// SummaryInfoStream is stored verbatim; the leading \x05 keeps it out of
	// the mangled name space.
	SummaryInfoStream = "\x05SummaryInformation"
	// DigitalSignatureStream holds an Authenticode signature when present.
	DigitalSignatureStream = "\x05DigitalSignature"
)

// Mangled name layout. Names are built from the 64-symbol alphabet
// [0-9A-Za-z._]; a pair of symbols packs into a single UTF-16 unit and a
// trailing odd symbol gets a unit of its own. Table streams carry a leading
// marker unit.
//
//	Range           Meaning
//	--------------  -----------------------------------------------
//	0x3800-0x47FF   two symbols: 0x3800 + (second<<6) + first
//	0x4800-0x483F   one symbol:  0x4800 + symbol
//	0x4840          table stream marker
const (
	mangleBase2     = 0x3800
	mangleBase1     = 0x4800
	mangleEnd       = 0x4840
	TableNamePrefix = rune(0x4840)
)

// Column type bits as stored in the Type column of _Columns.
const (
	ColSizeMask    uint16 = 0x00FF
	ColValid       uint16 = 0x0100
	ColLocalizable uint16 = 0x0200
	ColNonBinary   uint16 = 0x0400
	ColString      uint16 = 0x0800
	ColNullable    uint16 = 0x1000
	ColPrimaryKey  uint16 = 0x2000
	ColTemporary   uint16 = 0x4000
)

// Common complete type words.
const (
	TypeShort   = ColValid | ColNonBinary | 2         // i2
	TypeLong    = ColValid | ColNonBinary | 4         // i4
	TypeString  = ColValid | ColNonBinary | ColString // s0
	TypeBinary  = ColValid | ColString                // v0
	TypeKeyStr  = TypeString | ColPrimaryKey          // s0 key
	TypeNullStr = TypeString | ColNullable            // S0
)

// Slot widths in a table stream.
const (
	ShortWidth  = 2
	LongWidth   = 4
	BinaryWidth = 2

	ShortRefSize = 2
	LongRefSize  = 3
)

// Stored integers are biased so that zero can mark an absent value.
const (
	ShortBias uint32 = 0x8000
	LongBias  uint32 = 0x80000000
)
