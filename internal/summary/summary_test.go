package summary

import (
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/msikit/internal/cfb"
	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/pkg/types"
)

type mapSource map[string][]byte

func (m mapSource) Stream(name string) ([]byte, error) {
	b, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("stream %q: %w", name, cfb.ErrNotFound)
	}
	return b, nil
}

const (
	guidA = "{11111111-2222-3333-4444-555555555555}"
	guidB = "{AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE}"
)

func TestRoundTrip(t *testing.T) {
	created := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	in := types.SummaryInfo{
		Codepage:    1252,
		Title:       "Installation Database",
		Subject:     "Acme Widget",
		Author:      "Acme Corp",
		Keywords:    "Installer",
		Comments:    "This installer database contains the logic and data required to install Acme Widget.",
		Template:    "x64;1033",
		LastSavedBy: "Café",
		Revision:    guidA + guidB,
		Created:     created,
		LastSaved:   created.Add(time.Hour),
		PageCount:   500,
		WordCount:   2,
		CreatingApp: "msikit",
		Security:    2,
	}
	data, err := Encode(in)
	require.NoError(t, err)

	res, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, in, res.Info)
	require.Empty(t, res.Skipped)
}

func TestDecodeMissingStream(t *testing.T) {
	res, err := Decode(mapSource{})
	require.NoError(t, err)
	require.Nil(t, res)
}

func TestDecodeFromSource(t *testing.T) {
	data, err := Encode(types.SummaryInfo{Title: "T"})
	require.NoError(t, err)
	res, err := Decode(mapSource{format.SummaryInfoStream: data})
	require.NoError(t, err)
	require.Equal(t, "T", res.Info.Title)
}

func TestUnknownPropertiesSkipped(t *testing.T) {
	data, err := EncodeProperties(1252, []Property{
		{ID: format.PIDCodepage, Type: format.VTI2, Value: int16(1252)},
		{ID: format.PIDTitle, Type: format.VTLPStr, Value: "Product"},
		{ID: 0x99, Type: format.VTI4, Value: int32(7)},                       // unknown id
		{ID: format.PIDSubject, Type: 0x41, Value: []byte{1, 2, 3, 4}},       // VT_BLOB
		{ID: format.PIDAuthor, Type: format.VTI4, Value: int32(3)},           // wrong type
		{ID: format.PIDComments, Type: format.VTLPWStr, Value: "wide 文字"},  // UTF-16
		{ID: format.PIDKeywords, Type: format.VTEmpty},
	})
	require.NoError(t, err)

	res, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Product", res.Info.Title)
	assert.Equal(t, "wide 文字", res.Info.Comments)
	assert.Empty(t, res.Info.Subject)
	assert.Empty(t, res.Info.Author)
	assert.ElementsMatch(t, []uint32{0x99, format.PIDSubject, format.PIDAuthor}, res.Skipped)
}

func TestParseUTF8Codepage(t *testing.T) {
	cp := int16(-535) // 65001 as stored in a VT_I2
	data, err := Encode(types.SummaryInfo{Codepage: cp, Title: "製品"})
	require.NoError(t, err)
	res, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "製品", res.Info.Title)
}

func TestParseErrors(t *testing.T) {
	good, err := Encode(types.SummaryInfo{Title: "x"})
	require.NoError(t, err)

	_, err = Parse(good[:10])
	require.ErrorIs(t, err, ErrFormat)

	bad := append([]byte(nil), good...)
	binary.LittleEndian.PutUint16(bad, 0xFEFF)
	_, err = Parse(bad)
	require.ErrorIs(t, err, ErrFormat)

	bad = append([]byte(nil), good...)
	bad[0x1C] ^= 0xFF // FMTID no longer matches
	_, err = Parse(bad)
	require.ErrorIs(t, err, ErrFormat)

	bad = append([]byte(nil), good...)
	binary.LittleEndian.PutUint32(bad[0x2C:], 1<<20) // section offset past end
	_, err = Parse(bad)
	require.ErrorIs(t, err, ErrFormat)

	bad = append([]byte(nil), good...)
	// First property entry's offset, pointing past the section.
	binary.LittleEndian.PutUint32(bad[0x30+8+4:], 1<<16)
	_, err = Parse(bad)
	require.ErrorIs(t, err, ErrFormat)

	_, err = Parse(good[:len(good)-4])
	require.ErrorIs(t, err, ErrFormat)
}

func TestSplitRevision(t *testing.T) {
	cases := []struct {
		in, pkg, up string
	}{
		{guidA + guidB, guidA, guidB},
		{guidA + ";" + guidB, guidA, guidB},
		{guidA, guidA, ""},
		{"  " + guidA + " " + guidB + ";extra", guidA, guidB},
		{"1.0.0", "1.0.0", ""},
		{"", "", ""},
		{"{unterminated", "{unterminated", ""},
	}
	for _, tc := range cases {
		pkg, up := SplitRevision(tc.in)
		assert.Equal(t, tc.pkg, pkg, tc.in)
		assert.Equal(t, tc.up, up, tc.in)
	}
}

func TestProductInfo(t *testing.T) {
	assert.Nil(t, ProductInfo(nil))
	assert.Nil(t, ProductInfo(&types.SummaryInfo{Codepage: 1252, PageCount: 200}))

	pi := ProductInfo(&types.SummaryInfo{
		Title:    "Acme Widget",
		Subject:  "Widget subject",
		Author:   "Acme Corp",
		Revision: guidA + guidB,
	})
	require.NotNil(t, pi)
	assert.Equal(t, "Acme Widget", pi.Name)
	assert.Equal(t, "Widget subject", pi.Subject)
	assert.Equal(t, "Acme Corp", pi.Manufacturer)
	assert.Equal(t, guidA, pi.PackageCode)
	assert.Equal(t, guidB, pi.UpgradeCode)
	assert.Empty(t, pi.Version)
}
