// Package cfb decodes the Compound File Binary format (structured storage)
// that Windows Installer packages are stored in. A compound file is a small
// FAT file system inside a single file: fixed-size sectors, a FAT of sector
// chains, a directory of storages and streams arranged as red-black trees,
// and a mini stream holding streams shorter than the cutoff in 64-byte mini
// sectors.
//
// The package only reads. Writer exists so tests can synthesize containers.
package cfb

// Signature is the eight-byte magic at offset 0 of every compound file.
var Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Header layout (little-endian). The header always occupies the first 512
// bytes; version 4 files pad it out to a full 4096-byte sector.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x00    8    Signature
//	 0x08   16    Header CLSID (zero)
//	 0x18    2    Minor version (0x003E)
//	 0x1A    2    Major version (3 or 4)
//	 0x1C    2    Byte order mark (0xFFFE)
//	 0x1E    2    Sector shift (9 => 512, 12 => 4096)
//	 0x20    2    Mini sector shift (6 => 64)
//	 0x28    4    Number of directory sectors (v4 only, zero on v3)
//	 0x2C    4    Number of FAT sectors
//	 0x30    4    First directory sector
//	 0x34    4    Transaction signature
//	 0x38    4    Mini stream cutoff (4096)
//	 0x3C    4    First MiniFAT sector
//	 0x40    4    Number of MiniFAT sectors
//	 0x44    4    First DIFAT sector
//	 0x48    4    Number of DIFAT sectors
//	 0x4C  436    First 109 DIFAT entries
const (
	HeaderSize = 512

	HeaderSignatureOffset       = 0x00
	HeaderMinorVersionOffset    = 0x18
	HeaderMajorVersionOffset    = 0x1A
	HeaderByteOrderOffset       = 0x1C
	HeaderSectorShiftOffset     = 0x1E
	HeaderMiniSectorShiftOffset = 0x20
	HeaderNumDirSectorsOffset   = 0x28
	HeaderNumFATSectorsOffset   = 0x2C
	HeaderFirstDirSectorOffset  = 0x30
	HeaderMiniCutoffOffset      = 0x38
	HeaderFirstMiniFATOffset    = 0x3C
	HeaderNumMiniFATOffset      = 0x40
	HeaderFirstDIFATOffset      = 0x44
	HeaderNumDIFATOffset        = 0x48
	HeaderDIFATOffset           = 0x4C

	// HeaderDIFATCount is the number of DIFAT entries stored in the header.
	HeaderDIFATCount = 109

	ByteOrderMark = 0xFFFE
	MinorVersion  = 0x003E

	// Version 3 uses 512-byte sectors, version 4 uses 4096-byte sectors.
	MajorVersion3     = 3
	MajorVersion4     = 4
	SectorShiftV3     = 9
	SectorShiftV4     = 12
	MiniSectorShift   = 6
	MiniSectorSize    = 1 << MiniSectorShift
	MiniStreamCutoff  = 4096
	sectorEntryBytes  = 4
)

// Special sector numbers.
const (
	MaxRegSect uint32 = 0xFFFFFFFA
	DIFSect    uint32 = 0xFFFFFFFC
	FATSect    uint32 = 0xFFFFFFFD
	EndOfChain uint32 = 0xFFFFFFFE
	FreeSect   uint32 = 0xFFFFFFFF

	// NoStream marks an absent sibling or child in a directory entry.
	NoStream uint32 = 0xFFFFFFFF
)

// Directory entry layout (128 bytes).
//
//	Offset  Size  Description
//	 0x00   64    Name, UTF-16LE, NUL terminated
//	 0x40    2    Name length in bytes including the terminator
//	 0x42    1    Object type
//	 0x43    1    Color (0 red, 1 black)
//	 0x44    4    Left sibling ID
//	 0x48    4    Right sibling ID
//	 0x4C    4    Child ID
//	 0x50   16    CLSID
//	 0x60    4    State bits
//	 0x64    8    Creation time (FILETIME)
//	 0x6C    8    Modified time (FILETIME)
//	 0x74    4    Starting sector
//	 0x78    8    Stream size (v3 readers use the low 32 bits)
const (
	DirEntrySize = 128

	DirNameOffset     = 0x00
	DirNameSize       = 64
	DirNameLenOffset  = 0x40
	DirTypeOffset     = 0x42
	DirColorOffset    = 0x43
	DirLeftOffset     = 0x44
	DirRightOffset    = 0x48
	DirChildOffset    = 0x4C
	DirCLSIDOffset    = 0x50
	DirCreatedOffset  = 0x64
	DirModifiedOffset = 0x6C
	DirStartOffset    = 0x74
	DirSizeOffset     = 0x78

	// MaxNameUnits is the longest name in UTF-16 code units, excluding the NUL.
	MaxNameUnits = DirNameSize/2 - 1

	colorBlack = 1
)

// ObjectType is the directory entry object type.
type ObjectType uint8

const (
	TypeUnknown ObjectType = 0
	TypeStorage ObjectType = 1
	TypeStream  ObjectType = 2
	TypeRoot    ObjectType = 5
)

func (t ObjectType) String() string {
	switch t {
	case TypeUnknown:
		return "unused"
	case TypeStorage:
		return "storage"
	case TypeStream:
		return "stream"
	case TypeRoot:
		return "root"
	default:
		return "invalid"
	}
}
