// Package schema decodes the system tables that describe a database:
// _Tables lists table names in enumeration order and _Columns defines each
// column's table, position, name and type word.
package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/joshuapare/msikit/internal/cfb"
	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/internal/rows"
	"github.com/joshuapare/msikit/internal/strpool"
	"github.com/joshuapare/msikit/pkg/types"
)

// ErrFormat indicates inconsistent schema tables.
var ErrFormat = errors.New("schema: malformed system tables")

// Tables is the built-in definition of _Tables.
func Tables() types.Table {
	return types.Table{Name: format.TablesStream, Columns: []types.Column{
		mustColumn("Name", 0, format.TypeKeyStr|64),
	}}
}

// Columns is the built-in definition of _Columns.
func Columns() types.Table {
	return types.Table{Name: format.ColumnsStream, Columns: []types.Column{
		mustColumn("Table", 0, format.TypeKeyStr|64),
		mustColumn("Number", 1, format.TypeShort|format.ColPrimaryKey),
		mustColumn("Name", 2, format.TypeString|64),
		mustColumn("Type", 3, format.TypeShort),
	}}
}

func mustColumn(name string, ord int, bits uint16) types.Column {
	c, err := ColumnFromBits(name, ord, bits)
	if err != nil {
		panic(err)
	}
	return c
}

// ColumnFromBits builds a column from its raw type word.
func ColumnFromBits(name string, ordinal int, bits uint16) (types.Column, error) {
	b := format.ColumnBits(bits)
	c := types.Column{
		Name:        name,
		Ordinal:     ordinal,
		Nullable:    b.Nullable(),
		PrimaryKey:  b.PrimaryKey(),
		Localizable: b.Localizable(),
		Bits:        bits,
	}
	switch {
	case b.IsInteger():
		w, err := b.IntWidth()
		if err != nil {
			return types.Column{}, fmt.Errorf("column %q: %v: %w", name, err, ErrFormat)
		}
		c.Type = types.ColumnType{Kind: types.KindInteger, Width: w}
	case b.IsBinary():
		c.Type = types.ColumnType{Kind: types.KindBinary}
	default:
		c.Type = types.ColumnType{Kind: types.KindString, MaxLen: b.Size()}
	}
	return c, nil
}

type columnDef struct {
	number int32
	column types.Column
}

// Decode reads _Tables and _Columns and returns tables in _Tables order with
// their columns ordered by position.
func Decode(src rows.Source, pool *strpool.Pool) ([]types.Table, error) {
	tableRows, err := systemRows(src, Tables(), pool)
	if err != nil {
		return nil, err
	}
	columnRows, err := systemRows(src, Columns(), pool)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(tableRows))
	defs := make(map[string][]columnDef, len(tableRows))
	for i, r := range tableRows {
		name := r.At(0).Str
		if _, dup := defs[name]; dup {
			return nil, fmt.Errorf("_Tables row %d: duplicate table %q: %w", i, name, ErrFormat)
		}
		defs[name] = nil
		names = append(names, name)
	}

	for i, r := range columnRows {
		table, number, name := r.At(0).Str, r.At(1).Int, r.At(2).Str
		bits := uint16(r.At(3).Int)
		if _, ok := defs[table]; !ok {
			return nil, fmt.Errorf("_Columns row %d: column %q of unlisted table %q: %w", i, name, table, ErrFormat)
		}
		col, err := ColumnFromBits(name, 0, bits)
		if err != nil {
			return nil, fmt.Errorf("_Columns row %d: table %q: %w", i, table, err)
		}
		defs[table] = append(defs[table], columnDef{number: number, column: col})
	}

	out := make([]types.Table, 0, len(names))
	for _, name := range names {
		t, err := assemble(name, defs[name])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func systemRows(src rows.Source, def types.Table, pool *strpool.Pool) ([]types.Row, error) {
	data, err := src.Stream(format.EncodeStreamName(def.Name, true))
	if errors.Is(err, cfb.ErrNotFound) {
		return nil, fmt.Errorf("%s stream missing: %w", def.Name, ErrFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}
	out, err := rows.DecodeStream(data, def, pool)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}
	return out, nil
}

func assemble(name string, defs []columnDef) (types.Table, error) {
	if len(defs) == 0 {
		return types.Table{}, fmt.Errorf("table %q has no columns: %w", name, ErrFormat)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].number < defs[j].number })

	t := types.Table{Name: name, Columns: make([]types.Column, len(defs))}
	keys := 0
	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		if d.number != int32(i+1) {
			if i > 0 && d.number == defs[i-1].number {
				return types.Table{}, fmt.Errorf("table %q: duplicate column number %d: %w", name, d.number, ErrFormat)
			}
			return types.Table{}, fmt.Errorf("table %q: column numbers not dense, found %d at position %d: %w", name, d.number, i+1, ErrFormat)
		}
		c := d.column
		if seen[c.Name] {
			return types.Table{}, fmt.Errorf("table %q: duplicate column %q: %w", name, c.Name, ErrFormat)
		}
		seen[c.Name] = true
		c.Ordinal = i
		if c.PrimaryKey {
			keys++
		}
		t.Columns[i] = c
	}
	if keys == 0 {
		return types.Table{}, fmt.Errorf("table %q has no primary key: %w", name, ErrFormat)
	}
	return t, nil
}
