// Package summary decodes the "\x05SummaryInformation" property set stream
// and derives product identification from it.
package summary

import (
	"bytes"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/msikit/internal/buf"
	"github.com/joshuapare/msikit/internal/cfb"
	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/internal/strpool"
	"github.com/joshuapare/msikit/pkg/types"
)

// ErrFormat indicates a malformed property set.
var ErrFormat = errors.New("summary: malformed property set")

var utf16Decoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Source resolves container-level stream names.
type Source interface {
	Stream(name string) ([]byte, error)
}

// Result is a decoded summary stream.
type Result struct {
	Info types.SummaryInfo
	// Skipped lists property IDs that were present but not interpreted,
	// either unknown or of an unexpected type.
	Skipped []uint32
}

// Decode reads the summary stream from src. A package without one yields
// nil and no error.
func Decode(src Source) (*Result, error) {
	data, err := src.Stream(format.SummaryInfoStream)
	if errors.Is(err, cfb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return Parse(data)
}

type rawProperty struct {
	id  uint32
	off int // absolute offset of the type tag
}

// Parse decodes a property set stream.
func Parse(data []byte) (*Result, error) {
	if len(data) < format.PropertySetHeaderSize {
		return nil, fmt.Errorf("summary: header needs %d bytes, have %d: %w", format.PropertySetHeaderSize, len(data), ErrFormat)
	}
	if bom := buf.U16LE(data); bom != format.PropertyByteOrder {
		return nil, fmt.Errorf("summary: byte order 0x%04x: %w", bom, ErrFormat)
	}
	count := int(buf.U32LE(data[0x18:]))
	if count < 1 {
		return nil, fmt.Errorf("summary: no sections: %w", ErrFormat)
	}
	if _, err := buf.CheckSpan(len(data), format.PropertySetHeaderSize, count, format.PropertySetEntrySize); err != nil {
		return nil, fmt.Errorf("summary: section list: %v: %w", err, ErrFormat)
	}

	section := -1
	for i := 0; i < count; i++ {
		e := data[format.PropertySetHeaderSize+i*format.PropertySetEntrySize:]
		if bytes.Equal(e[:16], format.FMTIDSummaryInformation[:]) {
			section = int(buf.U32LE(e[16:]))
			break
		}
	}
	if section < 0 {
		return nil, fmt.Errorf("summary: no SummaryInformation section: %w", ErrFormat)
	}

	props, err := sectionProperties(data, section)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	// The codepage governs every VT_LPSTR value, so it is resolved first.
	codepage := uint32(strpool.CodepageNeutral)
	for _, p := range props {
		if p.id != format.PIDCodepage {
			continue
		}
		if v, ok, err := readValue(data, p.off, nil); err == nil && ok && v.kind == format.VTI2 {
			res.Info.Codepage = int16(v.i)
			codepage = uint32(uint16(v.i))
		}
	}
	enc, err := strpool.Encoding(codepage)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	dec := enc.NewDecoder()

	for _, p := range props {
		if p.id == format.PIDCodepage {
			continue
		}
		v, ok, err := readValue(data, p.off, func(b []byte) (string, error) {
			s, err := dec.Bytes(b)
			return string(s), err
		})
		if err != nil {
			return nil, fmt.Errorf("summary: property %d: %w", p.id, err)
		}
		if !ok || !assign(&res.Info, p.id, v) {
			res.Skipped = append(res.Skipped, p.id)
		}
	}
	return res, nil
}

func sectionProperties(data []byte, off int) ([]rawProperty, error) {
	if _, err := buf.CheckSpan(len(data), off, 1, format.SectionHeaderSize); err != nil {
		return nil, fmt.Errorf("summary: section header at %d: %v: %w", off, err, ErrFormat)
	}
	size := int(buf.U32LE(data[off:]))
	n := int(buf.U32LE(data[off+4:]))
	end, err := buf.CheckSpan(len(data), off, size, 1)
	if err != nil || size < format.SectionHeaderSize {
		return nil, fmt.Errorf("summary: section size %d at %d: %w", size, off, ErrFormat)
	}
	if _, err := buf.CheckSpan(end, off+format.SectionHeaderSize, n, format.SectionEntrySize); err != nil {
		return nil, fmt.Errorf("summary: %d property entries: %v: %w", n, err, ErrFormat)
	}

	props := make([]rawProperty, n)
	for i := range props {
		e := data[off+format.SectionHeaderSize+i*format.SectionEntrySize:]
		rel := int(buf.U32LE(e[4:]))
		abs, ok := buf.AddOverflowSafe(off, rel)
		if !ok || rel < format.SectionHeaderSize || abs+4 > end {
			return nil, fmt.Errorf("summary: property %d offset %d outside section: %w", buf.U32LE(e), rel, ErrFormat)
		}
		props[i] = rawProperty{id: buf.U32LE(e), off: abs}
	}
	return props, nil
}

type value struct {
	kind uint32
	i    int32
	s    string
	ft   uint64
}

// readValue decodes the typed value at off. ok is false for types this
// decoder does not interpret; lpstr may be nil when no string is expected.
func readValue(data []byte, off int, lpstr func([]byte) (string, error)) (value, bool, error) {
	v := value{kind: uint32(buf.U16LE(data[off:]))}
	body := off + 4
	switch v.kind {
	case format.VTEmpty, format.VTNull:
		return v, true, nil
	case format.VTI2:
		if !buf.Has(data, body, 2) {
			return v, false, fmt.Errorf("VT_I2 truncated: %w", ErrFormat)
		}
		v.i = int32(buf.I16LE(data[body:]))
	case format.VTI4:
		if !buf.Has(data, body, 4) {
			return v, false, fmt.Errorf("VT_I4 truncated: %w", ErrFormat)
		}
		v.i = buf.I32LE(data[body:])
	case format.VTFiletime:
		if !buf.Has(data, body, 8) {
			return v, false, fmt.Errorf("VT_FILETIME truncated: %w", ErrFormat)
		}
		v.ft = buf.U64LE(data[body:])
	case format.VTLPStr:
		if lpstr == nil {
			return v, false, nil
		}
		raw, err := counted(data, body, 1)
		if err != nil {
			return v, false, err
		}
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		s, err := lpstr(raw)
		if err != nil {
			return v, false, fmt.Errorf("VT_LPSTR: %v: %w", err, ErrFormat)
		}
		v.s = s
	case format.VTLPWStr:
		raw, err := counted(data, body, 2)
		if err != nil {
			return v, false, err
		}
		s, err := utf16Decoding.NewDecoder().Bytes(raw)
		if err != nil {
			return v, false, fmt.Errorf("VT_LPWSTR: %v: %w", err, ErrFormat)
		}
		v.s = string(bytes.TrimRight(s, "\x00"))
	default:
		return v, false, nil
	}
	return v, true, nil
}

// counted returns a length-prefixed payload of count units of size unit.
func counted(data []byte, off, unit int) ([]byte, error) {
	if !buf.Has(data, off, 4) {
		return nil, fmt.Errorf("string length truncated: %w", ErrFormat)
	}
	n := int(buf.U32LE(data[off:]))
	end, err := buf.CheckSpan(len(data), off+4, n, unit)
	if err != nil {
		return nil, fmt.Errorf("string of %d units: %v: %w", n, err, ErrFormat)
	}
	return data[off+4 : end], nil
}

func assign(info *types.SummaryInfo, id uint32, v value) bool {
	str := func(dst *string) bool {
		if v.kind == format.VTEmpty || v.kind == format.VTNull {
			return true
		}
		if v.kind != format.VTLPStr && v.kind != format.VTLPWStr {
			return false
		}
		*dst = v.s
		return true
	}
	num := func(dst *int32) bool {
		if v.kind != format.VTI2 && v.kind != format.VTI4 {
			return v.kind == format.VTEmpty || v.kind == format.VTNull
		}
		*dst = v.i
		return true
	}
	tm := func(dst *uint64) bool {
		if v.kind != format.VTFiletime {
			return v.kind == format.VTEmpty || v.kind == format.VTNull
		}
		*dst = v.ft
		return true
	}

	var ft uint64
	switch id {
	case format.PIDTitle:
		return str(&info.Title)
	case format.PIDSubject:
		return str(&info.Subject)
	case format.PIDAuthor:
		return str(&info.Author)
	case format.PIDKeywords:
		return str(&info.Keywords)
	case format.PIDComments:
		return str(&info.Comments)
	case format.PIDTemplate:
		return str(&info.Template)
	case format.PIDLastAuthor:
		return str(&info.LastSavedBy)
	case format.PIDRevision:
		return str(&info.Revision)
	case format.PIDAppName:
		return str(&info.CreatingApp)
	case format.PIDPageCount:
		return num(&info.PageCount)
	case format.PIDWordCount:
		return num(&info.WordCount)
	case format.PIDCharCount:
		return num(&info.CharCount)
	case format.PIDSecurity:
		return num(&info.Security)
	case format.PIDLastPrinted:
		ok := tm(&ft)
		info.LastPrinted = format.FiletimeToTime(ft)
		return ok
	case format.PIDCreateTime:
		ok := tm(&ft)
		info.Created = format.FiletimeToTime(ft)
		return ok
	case format.PIDLastSaveTime:
		ok := tm(&ft)
		info.LastSaved = format.FiletimeToTime(ft)
		return ok
	}
	return false
}
