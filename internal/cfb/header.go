package cfb

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/msikit/internal/buf"
)

// Header captures the compound file header fields needed to resolve sector
// chains. See the layout table in consts.go.
type Header struct {
	MinorVersion       uint16
	MajorVersion       uint16
	SectorShift        uint16
	MiniSectorShift    uint16
	NumDirSectors      uint32
	NumFATSectors      uint32
	FirstDirSector     uint32
	MiniStreamCutoff   uint32
	FirstMiniFATSector uint32
	NumMiniFATSectors  uint32
	FirstDIFATSector   uint32
	NumDIFATSectors    uint32
	DIFAT              [HeaderDIFATCount]uint32
}

// SectorSize returns the sector size in bytes.
func (h Header) SectorSize() int { return 1 << h.SectorShift }

// ParseHeader validates and extracts the header. The signature is checked
// before anything else so that non-container input fails with ErrSignature
// regardless of its length.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < len(Signature) || !bytes.Equal(b[:len(Signature)], Signature) {
		return Header{}, fmt.Errorf("cfb header: %w", ErrSignature)
	}
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("cfb header: %w (have %d, need %d)", ErrTruncated, len(b), HeaderSize)
	}
	if bom := buf.U16LE(b[HeaderByteOrderOffset:]); bom != ByteOrderMark {
		return Header{}, fmt.Errorf("cfb header: byte order 0x%04x: %w", bom, ErrCorrupt)
	}

	h := Header{
		MinorVersion:       buf.U16LE(b[HeaderMinorVersionOffset:]),
		MajorVersion:       buf.U16LE(b[HeaderMajorVersionOffset:]),
		SectorShift:        buf.U16LE(b[HeaderSectorShiftOffset:]),
		MiniSectorShift:    buf.U16LE(b[HeaderMiniSectorShiftOffset:]),
		NumDirSectors:      buf.U32LE(b[HeaderNumDirSectorsOffset:]),
		NumFATSectors:      buf.U32LE(b[HeaderNumFATSectorsOffset:]),
		FirstDirSector:     buf.U32LE(b[HeaderFirstDirSectorOffset:]),
		MiniStreamCutoff:   buf.U32LE(b[HeaderMiniCutoffOffset:]),
		FirstMiniFATSector: buf.U32LE(b[HeaderFirstMiniFATOffset:]),
		NumMiniFATSectors:  buf.U32LE(b[HeaderNumMiniFATOffset:]),
		FirstDIFATSector:   buf.U32LE(b[HeaderFirstDIFATOffset:]),
		NumDIFATSectors:    buf.U32LE(b[HeaderNumDIFATOffset:]),
	}
	for i := range h.DIFAT {
		h.DIFAT[i] = buf.U32LE(b[HeaderDIFATOffset+i*sectorEntryBytes:])
	}

	switch h.MajorVersion {
	case MajorVersion3:
		if h.SectorShift != SectorShiftV3 {
			return Header{}, fmt.Errorf("cfb header: v3 sector shift %d: %w", h.SectorShift, ErrCorrupt)
		}
	case MajorVersion4:
		if h.SectorShift != SectorShiftV4 {
			return Header{}, fmt.Errorf("cfb header: v4 sector shift %d: %w", h.SectorShift, ErrCorrupt)
		}
	default:
		return Header{}, fmt.Errorf("cfb header: major version %d: %w", h.MajorVersion, ErrUnsupported)
	}
	if h.MiniSectorShift != MiniSectorShift {
		return Header{}, fmt.Errorf("cfb header: mini sector shift %d: %w", h.MiniSectorShift, ErrCorrupt)
	}
	if h.MiniStreamCutoff != MiniStreamCutoff {
		return Header{}, fmt.Errorf("cfb header: mini stream cutoff %d: %w", h.MiniStreamCutoff, ErrCorrupt)
	}
	return h, nil
}
