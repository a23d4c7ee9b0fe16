package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	nf := &Error{Kind: ErrKindNotFound, Msg: `table "Foo"`}
	wrapped := fmt.Errorf("rows: %w", nf)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsFormat(wrapped))
	assert.False(t, errors.Is(wrapped, ErrCorrupt))

	corrupt := &Error{Kind: ErrKindCorrupt, Msg: "bad chain", Err: errors.New("cycle")}
	assert.True(t, IsFormat(corrupt))
	assert.True(t, IsFormat(ErrNotPackage))
	assert.Equal(t, "bad chain: cycle", corrupt.Error())
	assert.Equal(t, "package is closed", ErrClosed.Error())
	assert.Equal(t, "not found", ErrKindNotFound.String())
}

func TestColumnIDT(t *testing.T) {
	cases := []struct {
		col  Column
		want string
	}{
		{Column{Type: ColumnType{Kind: KindString, MaxLen: 72}, PrimaryKey: true}, "s72"},
		{Column{Type: ColumnType{Kind: KindString}, Nullable: true}, "S0"},
		{Column{Type: ColumnType{Kind: KindString, MaxLen: 255}, Localizable: true}, "l255"},
		{Column{Type: ColumnType{Kind: KindString}, Localizable: true, Nullable: true}, "L0"},
		{Column{Type: ColumnType{Kind: KindInteger, Width: 2}}, "i2"},
		{Column{Type: ColumnType{Kind: KindInteger, Width: 4}, Nullable: true}, "I4"},
		{Column{Type: ColumnType{Kind: KindBinary}, Nullable: true}, "V0"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.col.IDT())
	}
	assert.Equal(t, "String(72)", ColumnType{Kind: KindString, MaxLen: 72}.String())
	assert.Equal(t, "Integer(4)", ColumnType{Kind: KindInteger, Width: 4}.String())
	assert.Equal(t, "Binary", ColumnType{Kind: KindBinary}.String())
}

func propertyTable() Table {
	return Table{Name: "Property", Columns: []Column{
		{Name: "Property", Ordinal: 0, Type: ColumnType{Kind: KindString, MaxLen: 72}, PrimaryKey: true},
		{Name: "Value", Ordinal: 1, Type: ColumnType{Kind: KindString}, Nullable: true},
	}}
}

func TestTableHelpers(t *testing.T) {
	tbl := propertyTable()
	c, ok := tbl.Column("Value")
	require.True(t, ok)
	assert.Equal(t, 1, c.Ordinal)
	_, ok = tbl.Column("Nope")
	assert.False(t, ok)

	keys := tbl.PrimaryKeys()
	require.Len(t, keys, 1)
	assert.Equal(t, "Property", keys[0].Name)
	assert.Equal(t, 4, tbl.RowWidth(2))
	assert.Equal(t, 6, tbl.RowWidth(3))

	cp := tbl.Clone()
	cp.Columns[0].Name = "changed"
	assert.Equal(t, "Property", tbl.Columns[0].Name)
}

func TestRowAccess(t *testing.T) {
	tbl := propertyTable()
	r := NewRow(tbl.Columns, []Value{TextValue("ProductName"), Absent()})
	assert.Equal(t, 2, r.Len())
	v, ok := r.Get("Property")
	require.True(t, ok)
	s, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "ProductName", s)
	assert.True(t, r.At(1).IsAbsent())
	assert.True(t, r.At(9).IsAbsent())
	assert.Equal(t, "ProductName", r.Key())
	assert.Len(t, r.Map(), 2)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"Property":"ProductName","Value":null}`, string(b))
}

func TestRowColumnsIsCopy(t *testing.T) {
	tbl := propertyTable()
	r := NewRow(tbl.Columns, []Value{TextValue("ProductName"), Absent()})

	cols := r.Columns()
	cols[0].Name = "mutated"

	assert.Equal(t, "Property", r.Columns()[0].Name)
	v, ok := r.Get("Property")
	require.True(t, ok)
	assert.Equal(t, "ProductName", v.Str)
}

func TestValueRendering(t *testing.T) {
	assert.Equal(t, "-5", IntValue(-5).String())
	assert.Equal(t, "", Absent().String())
	assert.Equal(t, "[Binary Data]", BinaryValue("Binary.Logo").String())
	stream, ok := BinaryValue("Binary.Logo").Stream()
	assert.True(t, ok)
	assert.Equal(t, "Binary.Logo", stream)
	_, ok = IntValue(1).AsString()
	assert.False(t, ok)

	b, err := json.Marshal([]Value{IntValue(7), TextValue("x"), BinaryValue("B.k"), Absent()})
	require.NoError(t, err)
	assert.Equal(t, `[7,"x",{"stream":"B.k"},null]`, string(b))
}

func TestSummaryTemplate(t *testing.T) {
	s := SummaryInfo{Template: "x64;1033,1031"}
	assert.Equal(t, "x64", s.Platform())
	assert.Equal(t, []string{"1033", "1031"}, s.Languages())

	s = SummaryInfo{Template: "Intel"}
	assert.Equal(t, "Intel", s.Platform())
	assert.Nil(t, s.Languages())
	assert.True(t, ProductInfo{}.Empty())
}
