// Package msibuild synthesizes installer databases for tests. It writes the
// same streams a real authoring tool would (string pool, system tables,
// column-major table streams, binary cell streams and summary information)
// and exposes hooks to replace or drop any of them to produce corrupt input.
package msibuild

import (
	"fmt"
	"strconv"

	"github.com/joshuapare/msikit/internal/buf"
	"github.com/joshuapare/msikit/internal/cfb"
	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/internal/strpool"
	"github.com/joshuapare/msikit/internal/summary"
	"github.com/joshuapare/msikit/internal/writer"
	"github.com/joshuapare/msikit/pkg/types"
)

// ColumnDef is a column definition: a name and its raw type word.
type ColumnDef struct {
	Name string
	Bits uint16
}

// Str is a non-nullable string column of at most maxLen characters (0 = any).
func Str(name string, maxLen int) ColumnDef {
	return ColumnDef{Name: name, Bits: format.TypeString | uint16(maxLen)&format.ColSizeMask}
}

// Int16 is a non-nullable 2-byte integer column.
func Int16(name string) ColumnDef { return ColumnDef{Name: name, Bits: format.TypeShort} }

// Int32 is a non-nullable 4-byte integer column.
func Int32(name string) ColumnDef { return ColumnDef{Name: name, Bits: format.TypeLong} }

// Bin is a non-nullable binary column.
func Bin(name string) ColumnDef { return ColumnDef{Name: name, Bits: format.TypeBinary} }

func (c ColumnDef) Key() ColumnDef         { c.Bits |= format.ColPrimaryKey; return c }
func (c ColumnDef) Nullable() ColumnDef    { c.Bits |= format.ColNullable; return c }
func (c ColumnDef) Localizable() ColumnDef { c.Bits |= format.ColLocalizable; return c }

// Raw is a cell written verbatim into its slot, bypassing the pool and the
// integer bias.
type Raw uint32

// TableDef is a user table. Row cells follow column order: nil is absent,
// string for string columns, any Go integer for integer columns, []byte for
// binary columns and Raw for any column.
type TableDef struct {
	Name    string
	Columns []ColumnDef
	Rows    [][]any
}

// Builder assembles a package. The zero value is not usable; call New.
type Builder struct {
	// Codepage of the string pool. Defaults to 1252.
	Codepage uint32
	// LongRefs forces 3-byte string references.
	LongRefs bool
	// Version4 emits 4096-byte sectors.
	Version4 bool
	// Summary, when set, is written as the summary information stream.
	Summary *types.SummaryInfo

	tables    []TableDef
	extra     []TableDef // _Columns rows for tables missing from _Tables
	overrides map[string][]byte
	omit      map[string]bool
	raw       []rawStream
}

type rawStream struct {
	name string
	data []byte
}

// New returns a builder for an empty database.
func New() *Builder {
	return &Builder{
		Codepage:  1252,
		overrides: make(map[string][]byte),
		omit:      make(map[string]bool),
	}
}

// Table adds a table.
func (b *Builder) Table(def TableDef) *Builder {
	b.tables = append(b.tables, def)
	return b
}

// UnlistedTable adds column definitions for a table that _Tables does not name.
func (b *Builder) UnlistedTable(def TableDef) *Builder {
	b.extra = append(b.extra, def)
	return b
}

// Stream adds a named stream; the name is mangled like a binary cell stream.
func (b *Builder) Stream(name string, data []byte) *Builder {
	return b.RawStream(format.EncodeStreamName(name, false), data)
}

// RawStream adds a stream under a container-level name used verbatim.
func (b *Builder) RawStream(name string, data []byte) *Builder {
	b.raw = append(b.raw, rawStream{name: name, data: data})
	return b
}

// OverrideTable replaces the encoded stream of a table (including _Tables,
// _Columns, _StringPool and _StringData) with data.
func (b *Builder) OverrideTable(name string, data []byte) *Builder {
	b.overrides[name] = data
	return b
}

// Omit drops the stream of a table (including the system streams).
func (b *Builder) Omit(name string) *Builder {
	b.omit[name] = true
	return b
}

type stringTable struct {
	index map[string]uint32
	list  []string
}

func (s *stringTable) ref(v string) uint32 {
	if v == "" {
		return 0
	}
	if i, ok := s.index[v]; ok {
		return i
	}
	s.list = append(s.list, v)
	i := uint32(len(s.list))
	s.index[v] = i
	return i
}

// Build returns the encoded package.
func (b *Builder) Build() ([]byte, error) {
	strs := &stringTable{index: make(map[string]uint32)}
	all := append(append([]TableDef(nil), b.tables...), b.extra...)
	for _, t := range all {
		strs.ref(t.Name)
		for _, c := range t.Columns {
			strs.ref(c.Name)
		}
		for _, row := range t.Rows {
			for _, cell := range row {
				if s, ok := cell.(string); ok {
					strs.ref(s)
				}
			}
		}
	}
	refSize := format.ShortRefSize
	if b.LongRefs || len(strs.list) > 0xFFFF {
		refSize = format.LongRefSize
	}

	streams := map[string][]byte{}
	var order []string
	put := func(table string, data []byte) {
		if b.omit[table] {
			return
		}
		if o, ok := b.overrides[table]; ok {
			data = o
		}
		name := format.EncodeStreamName(table, true)
		if _, seen := streams[name]; !seen {
			order = append(order, name)
		}
		streams[name] = data
	}

	tablesStream := make([]byte, 0, len(b.tables)*refSize)
	for _, t := range b.tables {
		tablesStream = appendSlot(tablesStream, refSize, strs.ref(t.Name))
	}
	put(format.TablesStream, tablesStream)

	var colTable, colNumber, colName, colType []byte
	for _, t := range all {
		for i, c := range t.Columns {
			n, _ := format.EncodeInt(int32(i+1), format.ShortWidth)
			ty, _ := format.EncodeInt(int32(int16(c.Bits)), format.ShortWidth)
			colTable = appendSlot(colTable, refSize, strs.ref(t.Name))
			colNumber = appendSlot(colNumber, format.ShortWidth, n)
			colName = appendSlot(colName, refSize, strs.ref(c.Name))
			colType = appendSlot(colType, format.ShortWidth, ty)
		}
	}
	put(format.ColumnsStream, concat(colTable, colNumber, colName, colType))

	var binaries []rawStream
	for _, t := range b.tables {
		data, bins, err := encodeTable(t, refSize, strs)
		if err != nil {
			return nil, err
		}
		binaries = append(binaries, bins...)
		if len(t.Rows) == 0 {
			if o, ok := b.overrides[t.Name]; ok {
				put(t.Name, o)
			}
			continue
		}
		put(t.Name, data)
	}

	pool, data, err := strpool.Encode(strs.list, b.Codepage, b.LongRefs)
	if err != nil {
		return nil, err
	}
	put(format.StringPoolStream, pool)
	put(format.StringDataStream, data)

	w := cfb.NewWriter()
	if b.Version4 {
		w = cfb.NewWriterV4()
	}
	for _, name := range order {
		if err := w.AddStream(name, streams[name]); err != nil {
			return nil, err
		}
	}
	for _, s := range binaries {
		if err := w.AddStream(s.name, s.data); err != nil {
			return nil, err
		}
	}
	if b.Summary != nil {
		si, err := summary.Encode(*b.Summary)
		if err != nil {
			return nil, err
		}
		if err := w.AddStream(format.SummaryInfoStream, si); err != nil {
			return nil, err
		}
	}
	for _, s := range b.raw {
		if err := w.AddStream(s.name, s.data); err != nil {
			return nil, err
		}
	}
	return w.Bytes()
}

// MustBuild is Build for fixtures that cannot fail.
func (b *Builder) MustBuild() []byte {
	out, err := b.Build()
	if err != nil {
		panic(err)
	}
	return out
}

// WriteFile builds the package and stores it at path.
func (b *Builder) WriteFile(path string) error {
	data, err := b.Build()
	if err != nil {
		return err
	}
	return (&writer.FileWriter{Path: path}).Write(data)
}

func encodeTable(t TableDef, refSize int, strs *stringTable) ([]byte, []rawStream, error) {
	cols := make([][]byte, len(t.Columns))
	rowBins := make([][]byte, len(t.Rows))
	var keys [][]string
	for r, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return nil, nil, fmt.Errorf("msibuild: table %s row %d has %d cells, want %d", t.Name, r, len(row), len(t.Columns))
		}
		var k []string
		for j, c := range t.Columns {
			bits := format.ColumnBits(c.Bits)
			width, err := bits.SlotWidth(refSize)
			if err != nil {
				return nil, nil, fmt.Errorf("msibuild: table %s column %s: %w", t.Name, c.Name, err)
			}
			slot, bin, err := encodeCell(row[j], bits, width, strs)
			if err != nil {
				return nil, nil, fmt.Errorf("msibuild: table %s row %d column %s: %w", t.Name, r, c.Name, err)
			}
			if bin != nil {
				rowBins[r] = bin
			}
			cols[j] = appendSlot(cols[j], width, slot)
			if bits.PrimaryKey() {
				k = append(k, keyText(row[j]))
			}
		}
		keys = append(keys, k)
	}

	var bins []rawStream
	for r, data := range rowBins {
		if data != nil {
			name := format.BinaryStreamName(t.Name, keys[r]...)
			bins = append(bins, rawStream{name: format.EncodeStreamName(name, false), data: data})
		}
	}
	return concat(cols...), bins, nil
}

func encodeCell(cell any, bits format.ColumnBits, width int, strs *stringTable) (uint32, []byte, error) {
	switch v := cell.(type) {
	case nil:
		return 0, nil, nil
	case Raw:
		return uint32(v), nil, nil
	case string:
		if !bits.IsString() {
			return 0, nil, fmt.Errorf("string %q in non-string column", v)
		}
		return strs.ref(v), nil, nil
	case []byte:
		if !bits.IsBinary() {
			return 0, nil, fmt.Errorf("bytes in non-binary column")
		}
		return 1, v, nil
	}
	n, ok := toInt32(cell)
	if !ok || !bits.IsInteger() {
		return 0, nil, fmt.Errorf("unsupported cell %T", cell)
	}
	slot, err := format.EncodeInt(n, width)
	return slot, nil, err
}

func toInt32(v any) (int32, bool) {
	switch n := v.(type) {
	case int:
		return int32(n), true
	case int16:
		return int32(n), true
	case int32:
		return n, true
	case int64:
		return int32(n), true
	}
	return 0, false
}

func keyText(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case nil:
		return ""
	}
	if n, ok := toInt32(cell); ok {
		return strconv.FormatInt(int64(n), 10)
	}
	return fmt.Sprint(cell)
}

func appendSlot(b []byte, width int, v uint32) []byte {
	var tmp [4]byte
	buf.PutUintLE(tmp[:], width, v)
	return append(b, tmp[:width]...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
