package cfb

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/msikit/internal/buf"
)

// Entry describes one reachable directory entry.
type Entry struct {
	ID          int
	Name        string
	Path        string // "/"-joined storage path; equals Name at the root level
	Parent      int    // ID of the containing storage, 0 for root-level entries
	Type        ObjectType
	Size        uint64
	StartSector uint32
	CLSID       [16]byte
	Created     uint64 // raw FILETIME
	Modified    uint64 // raw FILETIME

	left, right, child uint32
}

// File is an opened compound file. It never mutates the buffer it was opened
// from and is safe for concurrent reads.
type File struct {
	data       []byte
	hdr        Header
	sectorSize int
	numSectors int
	fat        []uint32
	miniFAT    []uint32
	miniStream []byte
	dir        []Entry
	order      []int          // reachable entry IDs, root excluded, in tree order
	root       map[string]int // root-level name -> entry ID
}

var nameDecoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Open parses the header, FAT, MiniFAT and directory of b. Any structural
// inconsistency fails the whole open; no partially usable File is returned.
func Open(b []byte) (*File, error) {
	hdr, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	f := &File{
		data:       b,
		hdr:        hdr,
		sectorSize: hdr.SectorSize(),
	}
	if len(b) > f.sectorSize {
		f.numSectors = (len(b) - f.sectorSize + f.sectorSize - 1) / f.sectorSize
	}

	if err := f.loadFAT(); err != nil {
		return nil, err
	}
	if err := f.loadDirectory(); err != nil {
		return nil, err
	}
	if err := f.loadMini(); err != nil {
		return nil, err
	}
	if err := f.walkTree(); err != nil {
		return nil, err
	}
	return f, nil
}

// Header returns the parsed header.
func (f *File) Header() Header { return f.hdr }

// Entries returns all reachable storages and streams, root excluded, in
// directory tree order.
func (f *File) Entries() []Entry {
	out := make([]Entry, len(f.order))
	for i, id := range f.order {
		out[i] = f.dir[id]
	}
	return out
}

// Lookup returns the root-level entry with the given (already mangled) name.
func (f *File) Lookup(name string) (Entry, bool) {
	id, ok := f.root[name]
	if !ok {
		return Entry{}, false
	}
	return f.dir[id], true
}

// Stream returns a copy of the root-level stream called name.
func (f *File) Stream(name string) ([]byte, error) {
	e, ok := f.Lookup(name)
	if !ok || e.Type != TypeStream {
		return nil, fmt.Errorf("stream %q: %w", name, ErrNotFound)
	}
	data, err := f.ReadEntry(e)
	if err != nil {
		return nil, fmt.Errorf("stream %q: %w", name, err)
	}
	return data, nil
}

// ReadEntry returns a copy of the stream described by e, which may live in a
// nested storage.
func (f *File) ReadEntry(e Entry) ([]byte, error) {
	if e.Type != TypeStream {
		return nil, fmt.Errorf("entry %d is a %s: %w", e.ID, e.Type, ErrNotFound)
	}
	if e.Size == 0 {
		return []byte{}, nil
	}
	if e.Size < uint64(f.hdr.MiniStreamCutoff) {
		return f.readMini(e.StartSector, int(e.Size))
	}
	if e.Size > uint64(len(f.data)) {
		return nil, fmt.Errorf("stream size %d exceeds file size %d: %w", e.Size, len(f.data), ErrCorrupt)
	}
	return f.readChain(e.StartSector, int(e.Size))
}

// sector returns the bytes of sector id. The final sector of a file may be
// short; callers that need a full sector check the length.
func (f *File) sector(id uint32) ([]byte, error) {
	if id > MaxRegSect || int(id) >= f.numSectors {
		return nil, fmt.Errorf("sector %d beyond end of file (%d sectors): %w", id, f.numSectors, ErrTruncated)
	}
	off := (int(id) + 1) * f.sectorSize
	end := min(off+f.sectorSize, len(f.data))
	return f.data[off:end], nil
}

func (f *File) fullSector(id uint32) ([]byte, error) {
	sec, err := f.sector(id)
	if err != nil {
		return nil, err
	}
	if len(sec) < f.sectorSize {
		return nil, fmt.Errorf("sector %d short (%d bytes): %w", id, len(sec), ErrTruncated)
	}
	return sec, nil
}

func (f *File) loadFAT() error {
	want := int(f.hdr.NumFATSectors)
	if want > f.numSectors {
		return fmt.Errorf("fat: %d sectors declared, file has %d: %w", want, f.numSectors, ErrCorrupt)
	}
	locs := make([]uint32, 0, want)
	for i := 0; i < HeaderDIFATCount && len(locs) < want; i++ {
		locs = append(locs, f.hdr.DIFAT[i])
	}

	perSector := f.sectorSize/sectorEntryBytes - 1
	next := f.hdr.FirstDIFATSector
	for hops := 0; len(locs) < want; hops++ {
		if next == EndOfChain || next == FreeSect {
			return fmt.Errorf("difat: chain ends with %d of %d fat sectors: %w", len(locs), want, ErrCorrupt)
		}
		if hops >= f.numSectors {
			return fmt.Errorf("difat: chain loops: %w", ErrCorrupt)
		}
		sec, err := f.fullSector(next)
		if err != nil {
			return fmt.Errorf("difat: %w", err)
		}
		for i := 0; i < perSector && len(locs) < want; i++ {
			locs = append(locs, buf.U32LE(sec[i*sectorEntryBytes:]))
		}
		next = buf.U32LE(sec[perSector*sectorEntryBytes:])
	}

	perFAT := f.sectorSize / sectorEntryBytes
	f.fat = make([]uint32, 0, want*perFAT)
	for _, loc := range locs {
		sec, err := f.fullSector(loc)
		if err != nil {
			return fmt.Errorf("fat: %w", err)
		}
		for i := 0; i < perFAT; i++ {
			f.fat = append(f.fat, buf.U32LE(sec[i*sectorEntryBytes:]))
		}
	}
	return nil
}

// readChain follows the FAT from start and returns exactly n bytes.
func (f *File) readChain(start uint32, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	seen := newSectorSet(len(f.fat))
	for s := start; len(out) < n; s = f.fat[s] {
		if s == EndOfChain {
			return nil, fmt.Errorf("chain ends after %d of %d bytes: %w", len(out), n, ErrTruncated)
		}
		if int(s) >= len(f.fat) {
			return nil, fmt.Errorf("chain references sector 0x%x outside fat: %w", s, ErrCorrupt)
		}
		if seen.testAndSet(s) {
			return nil, fmt.Errorf("chain revisits sector %d: %w", s, ErrCorrupt)
		}
		sec, err := f.sector(s)
		if err != nil {
			return nil, err
		}
		out = append(out, sec[:min(len(sec), n-len(out))]...)
	}
	return out, nil
}

// chainLength walks a chain to its end and returns the number of sectors.
func (f *File) chainLength(start uint32) (int, error) {
	seen := newSectorSet(len(f.fat))
	n := 0
	for s := start; s != EndOfChain; s = f.fat[s] {
		if int(s) >= len(f.fat) {
			return 0, fmt.Errorf("chain references sector 0x%x outside fat: %w", s, ErrCorrupt)
		}
		if seen.testAndSet(s) {
			return 0, fmt.Errorf("chain revisits sector %d: %w", s, ErrCorrupt)
		}
		n++
	}
	return n, nil
}

func (f *File) loadDirectory() error {
	count, err := f.chainLength(f.hdr.FirstDirSector)
	if err != nil {
		return fmt.Errorf("directory: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("directory: empty chain: %w", ErrCorrupt)
	}
	raw, err := f.readChain(f.hdr.FirstDirSector, count*f.sectorSize)
	if err != nil {
		return fmt.Errorf("directory: %w", err)
	}

	v3 := f.hdr.MajorVersion == MajorVersion3
	f.dir = make([]Entry, len(raw)/DirEntrySize)
	for i := range f.dir {
		e, err := parseEntry(raw[i*DirEntrySize:(i+1)*DirEntrySize], i, v3)
		if err != nil {
			return fmt.Errorf("directory entry %d: %w", i, err)
		}
		f.dir[i] = e
	}
	if f.dir[0].Type != TypeRoot {
		return fmt.Errorf("directory: entry 0 is %s, want root: %w", f.dir[0].Type, ErrCorrupt)
	}
	return nil
}

func parseEntry(b []byte, id int, v3 bool) (Entry, error) {
	typ := ObjectType(b[DirTypeOffset])
	e := Entry{
		ID:    id,
		Type:  typ,
		left:  buf.U32LE(b[DirLeftOffset:]),
		right: buf.U32LE(b[DirRightOffset:]),
		child: buf.U32LE(b[DirChildOffset:]),
	}
	switch typ {
	case TypeUnknown:
		return e, nil
	case TypeStorage, TypeStream, TypeRoot:
	default:
		return Entry{}, fmt.Errorf("object type %d: %w", typ, ErrCorrupt)
	}

	nameLen := int(buf.U16LE(b[DirNameLenOffset:]))
	if nameLen < 2 || nameLen > DirNameSize || nameLen%2 != 0 {
		return Entry{}, fmt.Errorf("name length %d: %w", nameLen, ErrCorrupt)
	}
	name, err := nameDecoding.NewDecoder().Bytes(b[DirNameOffset : nameLen-2])
	if err != nil {
		return Entry{}, fmt.Errorf("name: %v: %w", err, ErrCorrupt)
	}

	e.Name = string(name)
	e.Path = e.Name
	e.StartSector = buf.U32LE(b[DirStartOffset:])
	e.Size = buf.U64LE(b[DirSizeOffset:])
	if v3 {
		e.Size &= 0xFFFFFFFF
	}
	copy(e.CLSID[:], b[DirCLSIDOffset:DirCLSIDOffset+16])
	e.Created = buf.U64LE(b[DirCreatedOffset:])
	e.Modified = buf.U64LE(b[DirModifiedOffset:])
	return e, nil
}

func (f *File) loadMini() error {
	root := f.dir[0]
	if root.Size > 0 {
		if root.Size > uint64(len(f.data)) {
			return fmt.Errorf("mini stream: size %d exceeds file: %w", root.Size, ErrCorrupt)
		}
		ms, err := f.readChain(root.StartSector, int(root.Size))
		if err != nil {
			return fmt.Errorf("mini stream: %w", err)
		}
		f.miniStream = ms
	}
	if f.hdr.NumMiniFATSectors == 0 || f.hdr.FirstMiniFATSector == EndOfChain {
		return nil
	}
	count, err := f.chainLength(f.hdr.FirstMiniFATSector)
	if err != nil {
		return fmt.Errorf("minifat: %w", err)
	}
	raw, err := f.readChain(f.hdr.FirstMiniFATSector, count*f.sectorSize)
	if err != nil {
		return fmt.Errorf("minifat: %w", err)
	}
	f.miniFAT = make([]uint32, len(raw)/sectorEntryBytes)
	for i := range f.miniFAT {
		f.miniFAT[i] = buf.U32LE(raw[i*sectorEntryBytes:])
	}
	return nil
}

func (f *File) readMini(start uint32, n int) ([]byte, error) {
	if n > len(f.miniStream) {
		return nil, fmt.Errorf("mini stream holds %d bytes, entry needs %d: %w", len(f.miniStream), n, ErrCorrupt)
	}
	out := make([]byte, 0, n)
	seen := newSectorSet(len(f.miniFAT))
	for s := start; len(out) < n; s = f.miniFAT[s] {
		if s == EndOfChain {
			return nil, fmt.Errorf("mini chain ends after %d of %d bytes: %w", len(out), n, ErrTruncated)
		}
		if int(s) >= len(f.miniFAT) {
			return nil, fmt.Errorf("mini chain references sector 0x%x outside minifat: %w", s, ErrCorrupt)
		}
		if seen.testAndSet(s) {
			return nil, fmt.Errorf("mini chain revisits sector %d: %w", s, ErrCorrupt)
		}
		off := int(s) * MiniSectorSize
		if off >= len(f.miniStream) {
			return nil, fmt.Errorf("mini sector %d beyond mini stream: %w", s, ErrTruncated)
		}
		end := min(off+MiniSectorSize, len(f.miniStream))
		out = append(out, f.miniStream[off:min(end, off+n-len(out))]...)
	}
	return out, nil
}

type pendingStorage struct {
	child  uint32
	parent int
	path   string
}

// walkTree visits every sibling tree reachable from the root, recording
// entry paths and the root-level name index. Cycles and dangling IDs are
// structural corruption.
func (f *File) walkTree() error {
	seen := newSectorSet(len(f.dir))
	seen.testAndSet(0)
	f.root = make(map[string]int)

	queue := []pendingStorage{{child: f.dir[0].child, parent: 0}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		var stack []uint32
		cur := p.child
		for cur != NoStream || len(stack) > 0 {
			for cur != NoStream {
				if int(cur) >= len(f.dir) {
					return fmt.Errorf("directory: link to entry %d of %d: %w", cur, len(f.dir), ErrCorrupt)
				}
				if seen.testAndSet(cur) {
					return fmt.Errorf("directory: entry %d linked twice: %w", cur, ErrCorrupt)
				}
				if t := f.dir[cur].Type; t != TypeStorage && t != TypeStream {
					return fmt.Errorf("directory: entry %d of type %s in tree: %w", cur, t, ErrCorrupt)
				}
				stack = append(stack, cur)
				cur = f.dir[cur].left
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			e := &f.dir[cur]
			e.Parent = p.parent
			if p.path != "" {
				e.Path = p.path + "/" + e.Name
			} else {
				if _, dup := f.root[e.Name]; dup {
					return fmt.Errorf("directory: duplicate name %q: %w", e.Name, ErrCorrupt)
				}
				f.root[e.Name] = int(cur)
			}
			f.order = append(f.order, int(cur))
			if e.Type == TypeStorage && e.child != NoStream {
				queue = append(queue, pendingStorage{child: e.child, parent: int(cur), path: e.Path})
			}
			cur = e.right
		}
	}
	return nil
}

// sectorSet is a fixed-size bitset used for cycle detection.
type sectorSet []uint64

func newSectorSet(n int) sectorSet { return make(sectorSet, (n+63)/64) }

// testAndSet marks i and reports whether it was already marked. Indices
// outside the set report false and are not recorded; callers range-check first.
func (s sectorSet) testAndSet(i uint32) bool {
	w, bit := int(i/64), uint64(1)<<(i%64)
	if w >= len(s) {
		return false
	}
	was := s[w]&bit != 0
	s[w] |= bit
	return was
}
