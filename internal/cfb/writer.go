package cfb

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// Writer assembles a compound file holding root-level streams. It is used by
// test tooling to synthesize packages; it does not emit DIFAT sectors, so the
// output is limited to what 109 FAT sectors can describe.
type Writer struct {
	shift   uint16
	streams []writerStream
	names   map[string]bool
}

type writerStream struct {
	name  string
	units int
	data  []byte
}

// NewWriter returns a writer producing version 3 (512-byte sector) files.
func NewWriter() *Writer {
	return &Writer{shift: SectorShiftV3, names: make(map[string]bool)}
}

// NewWriterV4 returns a writer producing version 4 (4096-byte sector) files.
func NewWriterV4() *Writer {
	return &Writer{shift: SectorShiftV4, names: make(map[string]bool)}
}

// AddStream queues a root-level stream. Names are limited to 31 UTF-16 units.
func (w *Writer) AddStream(name string, data []byte) error {
	enc, err := nameDecoding.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return fmt.Errorf("cfb writer: encode %q: %w", name, err)
	}
	units := len(enc) / 2
	if units == 0 || units > MaxNameUnits {
		return fmt.Errorf("cfb writer: name %q has %d UTF-16 units, want 1..%d", name, units, MaxNameUnits)
	}
	if w.names[name] {
		return fmt.Errorf("cfb writer: duplicate stream %q", name)
	}
	w.names[name] = true
	w.streams = append(w.streams, writerStream{name: name, units: units, data: data})
	return nil
}

type placed struct {
	start uint32
	n     int
}

// Bytes lays out and returns the complete file.
func (w *Writer) Bytes() ([]byte, error) {
	ss := 1 << w.shift
	perFAT := ss / sectorEntryBytes
	dirPerSector := ss / DirEntrySize

	streams := append([]writerStream(nil), w.streams...)
	// Siblings are ordered by name length, then case-insensitively.
	sort.Slice(streams, func(i, j int) bool {
		if streams[i].units != streams[j].units {
			return streams[i].units < streams[j].units
		}
		return strings.ToUpper(streams[i].name) < strings.ToUpper(streams[j].name)
	})

	var (
		miniFAT    []uint32
		miniStream []byte
		miniPlaced = make([]placed, len(streams))
	)
	for i, s := range streams {
		if len(s.data) >= MiniStreamCutoff {
			continue
		}
		count := (len(s.data) + MiniSectorSize - 1) / MiniSectorSize
		if count == 0 {
			miniPlaced[i] = placed{start: EndOfChain}
			continue
		}
		start := uint32(len(miniFAT))
		for k := 0; k < count; k++ {
			miniFAT = append(miniFAT, start+uint32(k)+1)
		}
		miniFAT[len(miniFAT)-1] = EndOfChain
		miniPlaced[i] = placed{start: start, n: count}
		miniStream = append(miniStream, s.data...)
		miniStream = append(miniStream, make([]byte, count*MiniSectorSize-len(s.data))...)
	}

	ceil := func(n, d int) int { return (n + d - 1) / d }
	dirSectors := ceil(len(streams)+1, dirPerSector)
	miniFATSectors := ceil(len(miniFAT), perFAT)
	miniStreamSectors := ceil(len(miniStream), ss)
	dataSectors := dirSectors + miniFATSectors + miniStreamSectors
	for _, s := range streams {
		if len(s.data) >= MiniStreamCutoff {
			dataSectors += ceil(len(s.data), ss)
		}
	}

	fatSectors := 1
	for fatSectors*perFAT < dataSectors+fatSectors {
		fatSectors++
	}
	if fatSectors > HeaderDIFATCount {
		return nil, fmt.Errorf("cfb writer: %d fat sectors needed, at most %d supported", fatSectors, HeaderDIFATCount)
	}

	total := fatSectors + dataSectors
	fat := make([]uint32, fatSectors*perFAT)
	for i := range fat {
		fat[i] = FreeSect
	}
	for i := 0; i < fatSectors; i++ {
		fat[i] = FATSect
	}
	next := uint32(fatSectors)
	alloc := func(n int) placed {
		if n == 0 {
			return placed{start: EndOfChain}
		}
		p := placed{start: next, n: n}
		for k := 0; k < n; k++ {
			fat[int(next)+k] = next + uint32(k) + 1
		}
		fat[int(next)+n-1] = EndOfChain
		next += uint32(n)
		return p
	}
	dirAt := alloc(dirSectors)
	miniFATAt := alloc(miniFATSectors)
	miniStreamAt := alloc(miniStreamSectors)
	bigAt := make([]placed, len(streams))
	for i, s := range streams {
		if len(s.data) >= MiniStreamCutoff {
			bigAt[i] = alloc(ceil(len(s.data), ss))
		}
	}

	out := make([]byte, ss+total*ss)
	at := func(p placed) []byte { return out[(int(p.start)+1)*ss:] }
	le := binary.LittleEndian

	copy(out[HeaderSignatureOffset:], Signature)
	le.PutUint16(out[HeaderMinorVersionOffset:], MinorVersion)
	if w.shift == SectorShiftV4 {
		le.PutUint16(out[HeaderMajorVersionOffset:], MajorVersion4)
		le.PutUint32(out[HeaderNumDirSectorsOffset:], uint32(dirSectors))
	} else {
		le.PutUint16(out[HeaderMajorVersionOffset:], MajorVersion3)
	}
	le.PutUint16(out[HeaderByteOrderOffset:], ByteOrderMark)
	le.PutUint16(out[HeaderSectorShiftOffset:], w.shift)
	le.PutUint16(out[HeaderMiniSectorShiftOffset:], MiniSectorShift)
	le.PutUint32(out[HeaderNumFATSectorsOffset:], uint32(fatSectors))
	le.PutUint32(out[HeaderFirstDirSectorOffset:], dirAt.start)
	le.PutUint32(out[HeaderMiniCutoffOffset:], MiniStreamCutoff)
	le.PutUint32(out[HeaderFirstMiniFATOffset:], miniFATAt.start)
	le.PutUint32(out[HeaderNumMiniFATOffset:], uint32(miniFATSectors))
	le.PutUint32(out[HeaderFirstDIFATOffset:], EndOfChain)
	for i := 0; i < HeaderDIFATCount; i++ {
		v := FreeSect
		if i < fatSectors {
			v = uint32(i)
		}
		le.PutUint32(out[HeaderDIFATOffset+i*sectorEntryBytes:], v)
	}

	for i, v := range fat {
		le.PutUint32(out[ss+i*sectorEntryBytes:], v)
	}

	dir := at(dirAt)
	for i := 0; i < dirSectors*dirPerSector; i++ {
		e := dir[i*DirEntrySize : (i+1)*DirEntrySize]
		le.PutUint32(e[DirLeftOffset:], NoStream)
		le.PutUint32(e[DirRightOffset:], NoStream)
		le.PutUint32(e[DirChildOffset:], NoStream)
	}
	rootChild := NoStream
	if len(streams) > 0 {
		rootChild = 1
	}
	if err := putEntry(dir[:DirEntrySize], "Root Entry", TypeRoot, NoStream, rootChild, miniStreamAt.start, uint64(len(miniStream))); err != nil {
		return nil, err
	}
	for i, s := range streams {
		right := NoStream
		if i+1 < len(streams) {
			right = uint32(i + 2)
		}
		start := bigAt[i].start
		if len(s.data) < MiniStreamCutoff {
			start = miniPlaced[i].start
		}
		e := dir[(i+1)*DirEntrySize : (i+2)*DirEntrySize]
		if err := putEntry(e, s.name, TypeStream, right, NoStream, start, uint64(len(s.data))); err != nil {
			return nil, err
		}
		if len(s.data) >= MiniStreamCutoff {
			copy(at(bigAt[i]), s.data)
		}
	}

	mf := at(miniFATAt)
	for i, v := range miniFAT {
		le.PutUint32(mf[i*sectorEntryBytes:], v)
	}
	for i := len(miniFAT); i < miniFATSectors*perFAT; i++ {
		le.PutUint32(mf[i*sectorEntryBytes:], FreeSect)
	}
	if len(miniStream) > 0 {
		copy(at(miniStreamAt), miniStream)
	}
	return out, nil
}

func putEntry(e []byte, name string, typ ObjectType, right, child, start uint32, size uint64) error {
	enc, err := nameDecoding.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return fmt.Errorf("cfb writer: encode %q: %w", name, err)
	}
	le := binary.LittleEndian
	copy(e[DirNameOffset:DirNameOffset+DirNameSize], enc)
	le.PutUint16(e[DirNameLenOffset:], uint16(len(enc)+2))
	e[DirTypeOffset] = byte(typ)
	e[DirColorOffset] = colorBlack
	le.PutUint32(e[DirLeftOffset:], NoStream)
	le.PutUint32(e[DirRightOffset:], right)
	le.PutUint32(e[DirChildOffset:], child)
	le.PutUint32(e[DirStartOffset:], start)
	le.PutUint64(e[DirSizeOffset:], size)
	return nil
}
