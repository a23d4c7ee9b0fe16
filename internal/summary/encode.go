package summary

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/internal/strpool"
	"github.com/joshuapare/msikit/pkg/types"
)

// Property is one raw entry of a property set section. Value must be int16
// for VT_I2, int32 for VT_I4, string for VT_LPSTR/VT_LPWSTR, uint64 for
// VT_FILETIME and nil for VT_EMPTY/VT_NULL. Any other type tag takes a
// []byte payload written verbatim.
type Property struct {
	ID    uint32
	Type  uint32
	Value any
}

// Encode serializes info as a summary information stream. Empty strings,
// zero counts and zero times are omitted.
func Encode(info types.SummaryInfo) ([]byte, error) {
	props := []Property{{ID: format.PIDCodepage, Type: format.VTI2, Value: info.Codepage}}
	for _, s := range []struct {
		id uint32
		v  string
	}{
		{format.PIDTitle, info.Title},
		{format.PIDSubject, info.Subject},
		{format.PIDAuthor, info.Author},
		{format.PIDKeywords, info.Keywords},
		{format.PIDComments, info.Comments},
		{format.PIDTemplate, info.Template},
		{format.PIDLastAuthor, info.LastSavedBy},
		{format.PIDRevision, info.Revision},
		{format.PIDAppName, info.CreatingApp},
	} {
		if s.v != "" {
			props = append(props, Property{ID: s.id, Type: format.VTLPStr, Value: s.v})
		}
	}
	for _, n := range []struct {
		id uint32
		v  int32
	}{
		{format.PIDPageCount, info.PageCount},
		{format.PIDWordCount, info.WordCount},
		{format.PIDCharCount, info.CharCount},
		{format.PIDSecurity, info.Security},
	} {
		if n.v != 0 {
			props = append(props, Property{ID: n.id, Type: format.VTI4, Value: n.v})
		}
	}
	for id, t := range map[uint32]uint64{
		format.PIDLastPrinted:  format.TimeToFiletime(info.LastPrinted),
		format.PIDCreateTime:   format.TimeToFiletime(info.Created),
		format.PIDLastSaveTime: format.TimeToFiletime(info.LastSaved),
	} {
		if t != 0 {
			props = append(props, Property{ID: id, Type: format.VTFiletime, Value: t})
		}
	}
	sort.Slice(props, func(i, j int) bool { return props[i].ID < props[j].ID })
	return EncodeProperties(uint32(uint16(info.Codepage)), props)
}

// EncodeProperties writes a single-section property set. VT_LPSTR values
// are encoded with codepage.
func EncodeProperties(codepage uint32, props []Property) ([]byte, error) {
	enc, err := strpool.Encoding(codepage)
	if err != nil {
		return nil, err
	}
	le := binary.LittleEndian

	var values []byte
	offsets := make([]int, len(props))
	tableSize := format.SectionHeaderSize + len(props)*format.SectionEntrySize
	for i, p := range props {
		offsets[i] = tableSize + len(values)
		values = le.AppendUint32(values, p.Type)
		switch v := p.Value.(type) {
		case nil:
		case int16:
			values = le.AppendUint16(values, uint16(v))
		case int32:
			values = le.AppendUint32(values, uint32(v))
		case uint64:
			values = le.AppendUint64(values, v)
		case string:
			if p.Type == format.VTLPWStr {
				b, err := utf16Decoding.NewEncoder().Bytes([]byte(v + "\x00"))
				if err != nil {
					return nil, fmt.Errorf("summary: property %d: %w", p.ID, err)
				}
				values = le.AppendUint32(values, uint32(len(b)/2))
				values = append(values, b...)
				break
			}
			b, err := enc.NewEncoder().Bytes([]byte(v))
			if err != nil {
				return nil, fmt.Errorf("summary: property %d: %w", p.ID, err)
			}
			values = le.AppendUint32(values, uint32(len(b)+1))
			values = append(values, b...)
			values = append(values, 0)
		case []byte:
			values = append(values, v...)
		default:
			return nil, fmt.Errorf("summary: property %d: unsupported value %T", p.ID, p.Value)
		}
		for len(values)%4 != 0 {
			values = append(values, 0)
		}
	}

	section := make([]byte, 0, tableSize+len(values))
	section = le.AppendUint32(section, uint32(tableSize+len(values)))
	section = le.AppendUint32(section, uint32(len(props)))
	for i, p := range props {
		section = le.AppendUint32(section, p.ID)
		section = le.AppendUint32(section, uint32(offsets[i]))
	}
	section = append(section, values...)

	out := make([]byte, format.PropertySetHeaderSize, format.PropertySetHeaderSize+format.PropertySetEntrySize+len(section))
	le.PutUint16(out, format.PropertyByteOrder)
	le.PutUint16(out[4:], 0x0A05) // OS version: Windows 10-era writer
	le.PutUint16(out[6:], 2)      // OS kind: Win32
	le.PutUint32(out[0x18:], 1)
	out = append(out, format.FMTIDSummaryInformation[:]...)
	out = le.AppendUint32(out, uint32(len(out)+4))
	return append(out, section...), nil
}
