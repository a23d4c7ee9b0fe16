package format

// FMTIDSummaryInformation is {F29F85E0-4FF9-1068-AB91-08002B27B3D9} in its
// on-disk byte order.
var FMTIDSummaryInformation = [16]byte{
	0xE0, 0x85, 0x9F, 0xF2, 0xF9, 0x4F, 0x68, 0x10,
	0xAB, 0x91, 0x08, 0x00, 0x2B, 0x27, 0xB3, 0xD9,
}

// Property set stream layout (little-endian).
//
//	Offset  Size  Description
//	 0x00    2    Byte order (0xFFFE)
//	 0x02    2    Format version (0 or 1)
//	 0x04    4    Originating OS version
//	 0x08   16    CLSID
//	 0x18    4    Number of sections
//	 0x1C   20    FMTID + section offset, repeated per section
//
// Each section starts with its byte size and property count followed by
// {property id, offset} pairs; offsets are relative to the section start.
const (
	PropertySetHeaderSize = 0x1C
	PropertySetEntrySize  = 20
	SectionHeaderSize     = 8
	SectionEntrySize      = 8
	PropertyByteOrder     = 0xFFFE
)

// Variant type tags used by the summary information stream.
const (
	VTEmpty    uint32 = 0
	VTNull     uint32 = 1
	VTI2       uint32 = 2
	VTI4       uint32 = 3
	VTLPStr    uint32 = 30
	VTLPWStr   uint32 = 31
	VTFiletime uint32 = 64
)

// Summary information property identifiers as Windows Installer uses them.
const (
	PIDCodepage     uint32 = 1
	PIDTitle        uint32 = 2
	PIDSubject      uint32 = 3
	PIDAuthor       uint32 = 4
	PIDKeywords     uint32 = 5
	PIDComments     uint32 = 6
	PIDTemplate     uint32 = 7  // platform;languages
	PIDLastAuthor   uint32 = 8  // last saved by
	PIDRevision     uint32 = 9  // package code, optionally followed by the upgrade code
	PIDLastPrinted  uint32 = 11
	PIDCreateTime   uint32 = 12
	PIDLastSaveTime uint32 = 13
	PIDPageCount    uint32 = 14 // minimum installer schema version
	PIDWordCount    uint32 = 15 // source image flags
	PIDCharCount    uint32 = 16 // transform validation flags
	PIDAppName      uint32 = 18
	PIDSecurity     uint32 = 19
)
