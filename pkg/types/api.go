package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindFormat      ErrKind = iota // not a package (bad compound file signature)
	ErrKindCorrupt                    // structural corruption (bad chains, lengths, references)
	ErrKindUnsupported                // valid feature we don't support (e.g., an unknown codepage)
	ErrKindNotFound                   // missing table/stream/property
	ErrKindState                      // invalid operation for current state (e.g., closed)
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindFormat:
		return "format"
	case ErrKindCorrupt:
		return "corrupt"
	case ErrKindUnsupported:
		return "unsupported"
	case ErrKindNotFound:
		return "not found"
	case ErrKindState:
		return "state"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) hold for every error of a sentinel's
// kind, not only the sentinel itself.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	switch t {
	case ErrNotPackage, ErrCorrupt, ErrUnsupported, ErrNotFound, ErrClosed:
		return t.Kind == e.Kind
	}
	return false
}

// Sentinels commonly returned by implementations.
var (
	// ErrNotPackage indicates the input is not a compound file.
	ErrNotPackage = &Error{Kind: ErrKindFormat, Msg: "not an installer package (bad compound file header)"}
	// ErrCorrupt indicates non-recoverable structural inconsistency.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt package structure"}
	// ErrUnsupported indicates a recognized but unsupported feature/variant.
	ErrUnsupported = &Error{Kind: ErrKindUnsupported, Msg: "unsupported package feature"}
	// ErrNotFound indicates a missing table, stream or property.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrClosed indicates the package was used after Close.
	ErrClosed = &Error{Kind: ErrKindState, Msg: "package is closed"}
)

// IsFormat reports whether err describes a malformed package: either not a
// compound file at all or structurally corrupt.
func IsFormat(err error) bool {
	var e *Error
	return errors.As(err, &e) && (e.Kind == ErrKindFormat || e.Kind == ErrKindCorrupt)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrKindNotFound
}

// -----------------------------------------------------------------------------
// Schema
// -----------------------------------------------------------------------------

// ColumnKind is the storage class of a column.
type ColumnKind uint8

const (
	KindInteger ColumnKind = iota + 1
	KindString
	KindBinary
)

func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindString:
		return "String"
	case KindBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// ColumnType describes what a column stores.
type ColumnType struct {
	Kind   ColumnKind
	Width  int // integer byte width (2 or 4); zero otherwise
	MaxLen int // maximum string length; zero means unlimited
}

// String renders the type as Integer(2), String(72) or Binary.
func (t ColumnType) String() string {
	switch t.Kind {
	case KindInteger:
		return "Integer(" + strconv.Itoa(t.Width) + ")"
	case KindString:
		return "String(" + strconv.Itoa(t.MaxLen) + ")"
	default:
		return t.Kind.String()
	}
}

// Column is one column of a table.
type Column struct {
	Name        string
	Ordinal     int // 0-based position in the table
	Type        ColumnType
	Nullable    bool
	PrimaryKey  bool
	Localizable bool
	Category    string // from _Validation when present
	Bits        uint16 // raw type word
}

// IDT renders the column type in the notation used by exported table files:
// s72, S0, l255, i2, I4, v0. Upper case marks a nullable column.
func (c Column) IDT() string {
	var code byte
	size := c.Type.MaxLen
	switch c.Type.Kind {
	case KindInteger:
		code, size = 'i', c.Type.Width
	case KindBinary:
		code, size = 'v', 0
	default:
		code = 's'
		if c.Localizable {
			code = 'l'
		}
	}
	if c.Nullable {
		code -= 'a' - 'A'
	}
	return string(code) + strconv.Itoa(size)
}

// Table is a table schema: a name and its ordered columns.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKeys returns the key columns in ordinal order.
func (t Table) PrimaryKeys() []Column {
	var keys []Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			keys = append(keys, c)
		}
	}
	return keys
}

// RowWidth returns the number of bytes one row occupies in the table stream.
func (t Table) RowWidth(refSize int) int {
	n := 0
	for _, c := range t.Columns {
		n += c.SlotWidth(refSize)
	}
	return n
}

// SlotWidth returns the stored width of one cell of this column.
func (c Column) SlotWidth(refSize int) int {
	switch c.Type.Kind {
	case KindInteger:
		return c.Type.Width
	case KindBinary:
		return 2
	default:
		return refSize
	}
}

// Clone returns a deep copy so callers cannot alias internal column slices.
func (t Table) Clone() Table {
	return Table{Name: t.Name, Columns: append([]Column(nil), t.Columns...)}
}

// -----------------------------------------------------------------------------
// Rows & Values
// -----------------------------------------------------------------------------

// ValueKind tags a Value.
type ValueKind uint8

const (
	ValueAbsent ValueKind = iota
	ValueInteger
	ValueText
	ValueBinary
)

// Value is a decoded cell. Binary values name the stream holding the data;
// the bytes are fetched separately.
type Value struct {
	Kind ValueKind
	Int  int32
	Str  string // text, or the stream name for binary values
}

func Absent() Value                   { return Value{} }
func IntValue(v int32) Value          { return Value{Kind: ValueInteger, Int: v} }
func TextValue(s string) Value        { return Value{Kind: ValueText, Str: s} }
func BinaryValue(stream string) Value { return Value{Kind: ValueBinary, Str: stream} }

// IsAbsent reports whether the cell holds no value.
func (v Value) IsAbsent() bool { return v.Kind == ValueAbsent }

// AsInt returns the integer payload.
func (v Value) AsInt() (int32, bool) { return v.Int, v.Kind == ValueInteger }

// AsString returns the text payload.
func (v Value) AsString() (string, bool) { return v.Str, v.Kind == ValueText }

// Stream returns the name of the stream backing a binary value.
func (v Value) Stream() (string, bool) { return v.Str, v.Kind == ValueBinary }

// String renders the value for display. Absent values render empty.
func (v Value) String() string {
	switch v.Kind {
	case ValueInteger:
		return strconv.FormatInt(int64(v.Int), 10)
	case ValueText:
		return v.Str
	case ValueBinary:
		return "[Binary Data]"
	default:
		return ""
	}
}

// MarshalJSON encodes absent as null, integers as numbers, text as strings
// and binary values as {"stream": name}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueInteger:
		return json.Marshal(v.Int)
	case ValueText:
		return json.Marshal(v.Str)
	case ValueBinary:
		return json.Marshal(struct {
			Stream string `json:"stream"`
		}{v.Str})
	default:
		return []byte("null"), nil
	}
}

// Row is one decoded record: values aligned with the table's columns.
type Row struct {
	columns []Column
	values  []Value
}

// NewRow pairs values with their columns. len(values) must equal len(columns).
func NewRow(columns []Column, values []Value) Row {
	return Row{columns: columns, values: values}
}

// Len returns the number of cells.
func (r Row) Len() int { return len(r.values) }

// Columns returns a copy of the row's columns.
func (r Row) Columns() []Column { return append([]Column(nil), r.columns...) }

// At returns the i-th cell.
func (r Row) At(i int) Value {
	if i < 0 || i >= len(r.values) {
		return Value{}
	}
	return r.values[i]
}

// Get returns the cell of the named column.
func (r Row) Get(name string) (Value, bool) {
	for i, c := range r.columns {
		if c.Name == name {
			return r.values[i], true
		}
	}
	return Value{}, false
}

// Map returns the row as column name -> value.
func (r Row) Map() map[string]Value {
	m := make(map[string]Value, len(r.values))
	for i, c := range r.columns {
		m[c.Name] = r.values[i]
	}
	return m
}

// Key joins the textual primary key values with '.', the way binary streams
// are named.
func (r Row) Key() string {
	var parts []string
	for i, c := range r.columns {
		if c.PrimaryKey {
			parts = append(parts, r.values[i].String())
		}
	}
	return strings.Join(parts, ".")
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		v, err := r.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// -----------------------------------------------------------------------------
// Package Metadata
// -----------------------------------------------------------------------------

// StreamInfo describes a stream stored in the package container.
type StreamInfo struct {
	Name  string `json:"name"`  // demangled name
	Raw   string `json:"-"`     // container-level name
	Table bool   `json:"table"` // row stream of a table
	Path  string `json:"path"`  // "/"-joined storage path for nested streams
	Size  int64  `json:"size"`
}

// ProductInfo identifies the product a package installs. Empty strings mean
// the package does not say.
type ProductInfo struct {
	Name         string `json:"name,omitempty"`
	Version      string `json:"version,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	UpgradeCode  string `json:"upgradeCode,omitempty"`
	PackageCode  string `json:"packageCode,omitempty"`
	Subject      string `json:"subject,omitempty"`
}

// Empty reports whether no field is set.
func (p ProductInfo) Empty() bool { return p == ProductInfo{} }

// SummaryInfo holds the summary information property set. Times are zero
// when unset.
type SummaryInfo struct {
	Codepage    int16     `json:"codepage"`
	Title       string    `json:"title,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	Author      string    `json:"author,omitempty"`
	Keywords    string    `json:"keywords,omitempty"`
	Comments    string    `json:"comments,omitempty"`
	Template    string    `json:"template,omitempty"` // platform;languages
	LastSavedBy string    `json:"lastSavedBy,omitempty"`
	Revision    string    `json:"revision,omitempty"` // package code [upgrade code]
	LastPrinted time.Time `json:"lastPrinted,omitzero"`
	Created     time.Time `json:"created,omitzero"`
	LastSaved   time.Time `json:"lastSaved,omitzero"`
	PageCount   int32     `json:"pageCount,omitempty"` // minimum installer version
	WordCount   int32     `json:"wordCount,omitempty"` // source image flags
	CharCount   int32     `json:"charCount,omitempty"`
	CreatingApp string    `json:"creatingApp,omitempty"`
	Security    int32     `json:"security,omitempty"`
}

// Platform returns the platform part of the template ("x64" in "x64;1033").
func (s SummaryInfo) Platform() string {
	p, _, _ := strings.Cut(s.Template, ";")
	return p
}

// Languages returns the language IDs listed in the template.
func (s SummaryInfo) Languages() []string {
	_, langs, ok := strings.Cut(s.Template, ";")
	if !ok || langs == "" {
		return nil
	}
	return strings.Split(langs, ",")
}
