package format

import (
	"math"
	"testing"
	"time"
)

func TestStreamNameRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		table bool
	}{
		{"Property", true},
		{"_Columns", true},
		{"Binary.NewBinary1", false},
		{"A", true},
		{"odd", false},
		{"Icon.app-icon.exe", false},
		{"", true},
	}
	for _, tc := range cases {
		enc := EncodeStreamName(tc.name, tc.table)
		dec, table := DecodeStreamName(enc)
		if dec != tc.name || table != tc.table {
			t.Fatalf("%q: round trip gave %q table=%v", tc.name, dec, table)
		}
	}
}

func TestEncodeStreamNameUnits(t *testing.T) {
	got := []rune(EncodeStreamName("AB", true))
	// 'A' = 10, 'B' = 11
	want := []rune{0x4840, rune(0x3800 + 10 + 11<<6)}
	if string(got) != string(want) {
		t.Fatalf("EncodeStreamName(AB)=%U want %U", got, want)
	}

	got = []rune(EncodeStreamName("_", false))
	if len(got) != 1 || got[0] != 0x4800+63 {
		t.Fatalf("single symbol: %U", got)
	}

	got = []rune(EncodeStreamName("a-b", false))
	want = []rune{0x4800 + 36, '-', 0x4800 + 37}
	if string(got) != string(want) {
		t.Fatalf("passthrough: %U want %U", got, want)
	}
}

func TestDecodeStreamNameVerbatim(t *testing.T) {
	name, table := DecodeStreamName(SummaryInfoStream)
	if name != SummaryInfoStream || table {
		t.Fatalf("summary stream decoded to %q table=%v", name, table)
	}
}

func TestBinaryStreamName(t *testing.T) {
	if got := BinaryStreamName("Binary", "Logo"); got != "Binary.Logo" {
		t.Fatalf("got %q", got)
	}
	if got := BinaryStreamName("Icon", "a", "b"); got != "Icon.a.b" {
		t.Fatalf("got %q", got)
	}
}

func TestIntegerBias(t *testing.T) {
	for _, w := range []int{ShortWidth, LongWidth} {
		for _, v := range []int32{0, 1, -1, 1033, -32767, 32767} {
			stored, err := EncodeInt(v, w)
			if err != nil {
				t.Fatalf("EncodeInt(%d, %d): %v", v, w, err)
			}
			got, ok := DecodeInt(stored, w)
			if !ok || got != v {
				t.Fatalf("width %d: %d decoded to %d ok=%v", w, v, got, ok)
			}
		}
	}
	if s, _ := EncodeInt(0, ShortWidth); s != 0x8000 {
		t.Fatalf("short zero stored as 0x%x", s)
	}
	if s, _ := EncodeInt(-2, LongWidth); s != 0x7FFFFFFE {
		t.Fatalf("long -2 stored as 0x%x", s)
	}
	if _, ok := DecodeInt(0, ShortWidth); ok {
		t.Fatalf("stored zero must be absent")
	}
	if _, err := EncodeInt(-32768, ShortWidth); err == nil {
		t.Fatalf("expected null-slot rejection")
	}
	if _, err := EncodeInt(40000, ShortWidth); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestColumnBits(t *testing.T) {
	s72 := ColumnBits(0x0D48)
	if !s72.IsString() || s72.Size() != 72 || s72.Nullable() || s72.PrimaryKey() {
		t.Fatalf("s72 misread")
	}
	if w, _ := s72.SlotWidth(LongRefSize); w != 3 {
		t.Fatalf("string width %d", w)
	}
	i2 := ColumnBits(0x0502)
	if !i2.IsInteger() {
		t.Fatalf("i2 not integer")
	}
	if w, err := i2.SlotWidth(2); err != nil || w != 2 {
		t.Fatalf("i2 width %d %v", w, err)
	}
	i4 := ColumnBits(0x0104)
	if w, err := i4.SlotWidth(2); err != nil || w != 4 {
		t.Fatalf("i4 width %d %v", w, err)
	}
	v0 := ColumnBits(TypeBinary)
	if !v0.IsBinary() {
		t.Fatalf("v0 not binary")
	}
	if w, _ := v0.SlotWidth(3); w != BinaryWidth {
		t.Fatalf("binary width %d", w)
	}
	if _, err := ColumnBits(0x0103).SlotWidth(2); err == nil {
		t.Fatalf("expected error for 3-byte integer")
	}
	key := ColumnBits(TypeKeyStr | ColNullable | ColLocalizable)
	if !key.PrimaryKey() || !key.Nullable() || !key.Localizable() {
		t.Fatalf("flag bits misread")
	}
}

func TestFiletime(t *testing.T) {
	ts := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	if got := FiletimeToTime(TimeToFiletime(ts)); !got.Equal(ts) {
		t.Fatalf("round trip %v != %v", got, ts)
	}
	if !FiletimeToTime(0).IsZero() {
		t.Fatalf("zero filetime should be the zero time")
	}
	for _, v := range []uint64{math.MaxUint64, math.MaxInt64, filetimeOffset + math.MaxInt64/filetimeUnit + 1} {
		if got := FiletimeToTime(v); !got.IsZero() {
			t.Fatalf("filetime %#x: got %v, want the zero time", v, got)
		}
	}
	limit := FiletimeToTime(filetimeOffset + math.MaxInt64/filetimeUnit)
	if limit.IsZero() || limit.Year() != 2262 {
		t.Fatalf("largest representable filetime gave %v", limit)
	}
}
