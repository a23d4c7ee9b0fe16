// Package rows decodes table streams. A table stream stores its cells column
// by column: all values of the first column, then all values of the second,
// and so on, each cell in a fixed-width slot. The row count is implied by
// the stream length.
package rows

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/joshuapare/msikit/internal/buf"
	"github.com/joshuapare/msikit/internal/cfb"
	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/internal/strpool"
	"github.com/joshuapare/msikit/pkg/types"
)

// Source resolves container-level stream names. *cfb.File implements it.
type Source interface {
	Stream(name string) ([]byte, error)
}

// Decode reads the stream of table from src. A table without a stream is
// present but empty.
func Decode(src Source, table types.Table, pool *strpool.Pool) ([]types.Row, error) {
	data, err := src.Stream(format.EncodeStreamName(table.Name, true))
	if errors.Is(err, cfb.ErrNotFound) {
		return []types.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", table.Name, err)
	}
	return DecodeStream(data, table, pool)
}

// DecodeStream decodes a table stream that has already been read.
func DecodeStream(data []byte, table types.Table, pool *strpool.Pool) ([]types.Row, error) {
	cols := table.Columns
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %q has no columns: %w", table.Name, ErrFormat)
	}
	refSize := pool.RefSize()
	width := table.RowWidth(refSize)
	if width == 0 {
		return nil, fmt.Errorf("table %q has zero row width: %w", table.Name, ErrFormat)
	}
	if len(data)%width != 0 {
		return nil, fmt.Errorf("table %q: stream length %d is not a multiple of row width %d: %w",
			table.Name, len(data), width, ErrFormat)
	}
	n := len(data) / width
	values := make([]types.Value, n*len(cols))

	var binaries []int // column indices needing stream names
	off := 0
	for j, c := range cols {
		w := c.SlotWidth(refSize)
		for r := 0; r < n; r++ {
			raw := buf.UintLE(data[off+r*w:], w)
			v, err := decodeCell(raw, c, w, pool)
			if err != nil {
				return nil, fmt.Errorf("table %q row %d column %q: %w", table.Name, r, c.Name, err)
			}
			values[r*len(cols)+j] = v
		}
		if c.Type.Kind == types.KindBinary {
			binaries = append(binaries, j)
		}
		off += n * w
	}

	out := make([]types.Row, n)
	for r := range out {
		cells := values[r*len(cols) : (r+1)*len(cols) : (r+1)*len(cols)]
		if len(binaries) > 0 {
			stream := format.BinaryStreamName(table.Name, keyStrings(cols, cells)...)
			for _, j := range binaries {
				if !cells[j].IsAbsent() {
					cells[j] = types.BinaryValue(stream)
				}
			}
		}
		out[r] = types.NewRow(cols, cells)
	}
	return out, nil
}

func decodeCell(raw uint32, c types.Column, w int, pool *strpool.Pool) (types.Value, error) {
	var v types.Value
	switch c.Type.Kind {
	case types.KindInteger:
		if i, ok := format.DecodeInt(raw, w); ok {
			v = types.IntValue(i)
		}
	case types.KindString:
		s, present, err := pool.Lookup(raw)
		if err != nil {
			return v, fmt.Errorf("%v: %w", err, ErrFormat)
		}
		if present {
			v = types.TextValue(s)
		}
	case types.KindBinary:
		if raw != 0 {
			// Placeholder; the stream name needs the whole row's keys.
			v = types.BinaryValue("")
		}
	default:
		return v, fmt.Errorf("column kind %d: %w", c.Type.Kind, ErrFormat)
	}
	if v.IsAbsent() && !c.Nullable {
		return v, fmt.Errorf("null in non-nullable column: %w", ErrFormat)
	}
	return v, nil
}

func keyStrings(cols []types.Column, cells []types.Value) []string {
	var keys []string
	for i, c := range cols {
		if !c.PrimaryKey {
			continue
		}
		switch v := cells[i]; v.Kind {
		case types.ValueInteger:
			keys = append(keys, strconv.FormatInt(int64(v.Int), 10))
		default:
			keys = append(keys, v.Str)
		}
	}
	return keys
}
