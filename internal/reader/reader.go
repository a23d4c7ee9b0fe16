// Package reader provides the concrete database implementation behind
// pkg/msi. It owns the opened container, the string pool and the schema,
// and memoizes decoded tables so the public wrapper can stay a thin layer
// of ergonomics.
package reader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/joshuapare/msikit/internal/cfb"
	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/internal/rows"
	"github.com/joshuapare/msikit/internal/schema"
	"github.com/joshuapare/msikit/internal/strpool"
	"github.com/joshuapare/msikit/internal/summary"
	"github.com/joshuapare/msikit/pkg/types"
)

// Options configures Open.
type Options struct {
	// Logger receives debug diagnostics. Nil discards them.
	Logger *slog.Logger
	// MaxStreamSize rejects streams larger than this many bytes. Zero or
	// negative means no limit.
	MaxStreamSize int
}

// Database is an opened package. After Open it is immutable apart from the
// row and summary caches, and safe for concurrent use.
type Database struct {
	file      *cfb.File
	release   func() error
	log       *slog.Logger
	maxStream int

	pool   *strpool.Pool
	tables []types.Table
	index  map[string]int

	closed    atomic.Bool
	rowsGroup singleflight.Group
	rowsCache sync.Map // table name -> []types.Row, published once complete
	summary   func() (*summary.Result, error)
}

// Open parses buf. The container, string pool and schema are decoded
// eagerly; any failure aborts the open. release, when non-nil, is called by
// Close (or immediately if Open fails).
func Open(buf []byte, release func() error, opts Options) (*Database, error) {
	db, err := open(buf, release, opts)
	if err != nil && release != nil {
		_ = release()
	}
	return db, err
}

func open(buf []byte, release func() error, opts Options) (*Database, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := cfb.Open(buf)
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	db := &Database{
		file:      f,
		release:   release,
		log:       log,
		maxStream: opts.MaxStreamSize,
	}

	poolData, err := db.Stream(format.EncodeStreamName(format.StringPoolStream, true))
	if err != nil {
		return nil, wrapFormatErr(fmt.Errorf("string pool: %w", missingIsFormat(err)))
	}
	strData, err := db.Stream(format.EncodeStreamName(format.StringDataStream, true))
	if err != nil {
		return nil, wrapFormatErr(fmt.Errorf("string data: %w", missingIsFormat(err)))
	}
	if db.pool, err = strpool.Decode(poolData, strData); err != nil {
		return nil, wrapFormatErr(err)
	}
	if db.tables, err = schema.Decode(db, db.pool); err != nil {
		return nil, wrapFormatErr(err)
	}
	db.index = make(map[string]int, len(db.tables))
	for i, t := range db.tables {
		db.index[t.Name] = i
	}
	db.summary = sync.OnceValues(db.decodeSummary)
	db.applyCategories()

	log.Debug("opened package",
		"streams", len(f.Entries()),
		"tables", len(db.tables),
		"strings", db.pool.Len()-1,
		"codepage", db.pool.Codepage(),
		"ref_size", db.pool.RefSize(),
		"sector_size", f.Header().SectorSize())
	return db, nil
}

// missingIsFormat turns a missing required stream into a format error.
func missingIsFormat(err error) error {
	if errors.Is(err, cfb.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, format.ErrFormat)
	}
	return err
}

// Close releases the backing buffer. Further queries fail with a state error.
func (d *Database) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	if d.release != nil {
		return d.release()
	}
	return nil
}

func (d *Database) ensureOpen() error {
	if d.closed.Load() {
		return types.ErrClosed
	}
	return nil
}

// EnsureOpen fails with types.ErrClosed once Close has been called.
func (d *Database) EnsureOpen() error { return d.ensureOpen() }

// Stream returns a container-level stream, enforcing the size limit. It
// reports internal errors and is the source the decoders read through.
func (d *Database) Stream(name string) ([]byte, error) {
	if d.maxStream > 0 {
		if e, ok := d.file.Lookup(name); ok && e.Size > uint64(d.maxStream) {
			return nil, fmt.Errorf("stream %q is %d bytes, limit %d: %w", name, e.Size, d.maxStream, format.ErrUnsupported)
		}
	}
	return d.file.Stream(name)
}

// Tables returns copies of the table schemas in _Tables order.
func (d *Database) Tables() ([]types.Table, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	out := make([]types.Table, len(d.tables))
	for i, t := range d.tables {
		out[i] = t.Clone()
	}
	return out, nil
}

// Table returns a copy of one schema.
func (d *Database) Table(name string) (types.Table, error) {
	if err := d.ensureOpen(); err != nil {
		return types.Table{}, err
	}
	i, ok := d.index[name]
	if !ok {
		return types.Table{}, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("table %q not found", name)}
	}
	return d.tables[i].Clone(), nil
}

// Rows decodes (once) and returns the rows of a table. Failures are not
// cached, so a later call retries.
func (d *Database) Rows(name string) ([]types.Row, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	i, ok := d.index[name]
	if !ok {
		return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("table %q not found", name)}
	}
	if cached, ok := d.rowsCache.Load(name); ok {
		return cloneRows(cached.([]types.Row)), nil
	}

	v, err, shared := d.rowsGroup.Do(name, func() (any, error) {
		// Another caller may have published while we waited to enter Do.
		if cached, ok := d.rowsCache.Load(name); ok {
			return cached, nil
		}
		table := d.tables[i].Clone()
		decoded, err := rows.Decode(d, table, d.pool)
		if err != nil {
			return nil, err
		}
		d.rowsCache.Store(name, decoded)
		d.log.Debug("decoded table", "table", name, "rows", len(decoded), "row_width", table.RowWidth(d.pool.RefSize()))
		return decoded, nil
	})
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	if shared {
		d.log.Debug("shared table decode", "table", name)
	}
	return cloneRows(v.([]types.Row)), nil
}

func cloneRows(r []types.Row) []types.Row {
	return append(make([]types.Row, 0, len(r)), r...)
}

// Summary returns the decoded summary stream, or nil when the package has none.
func (d *Database) Summary() (*types.SummaryInfo, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	res, err := d.summary()
	if err != nil || res == nil {
		return nil, err
	}
	info := res.Info
	return &info, nil
}

func (d *Database) decodeSummary() (*summary.Result, error) {
	res, err := summary.Decode(d)
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	if res == nil {
		d.log.Debug("package has no summary information stream")
		return nil, nil
	}
	for _, id := range res.Skipped {
		d.log.Debug("skipping summary property", "id", id)
	}
	return res, nil
}

// Streams lists every stream in the container with demangled names.
func (d *Database) Streams() ([]types.StreamInfo, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	var out []types.StreamInfo
	for _, e := range d.file.Entries() {
		if e.Type != cfb.TypeStream {
			continue
		}
		name, table := format.DecodeStreamName(e.Name)
		parts := strings.Split(e.Path, "/")
		for i, p := range parts {
			parts[i], _ = format.DecodeStreamName(p)
		}
		out = append(out, types.StreamInfo{
			Name:  name,
			Raw:   e.Name,
			Table: table,
			Path:  strings.Join(parts, "/"),
			Size:  int64(e.Size),
		})
	}
	return out, nil
}

// ReadStream returns a root-level stream by its container-level name, its
// demangled name, or the name of a table.
func (d *Database) ReadStream(name string) ([]byte, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	candidates := []string{name, format.EncodeStreamName(name, false), format.EncodeStreamName(name, true)}
	for _, c := range candidates {
		data, err := d.Stream(c)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, cfb.ErrNotFound) {
			return nil, wrapFormatErr(err)
		}
	}
	return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("stream %q not found", name), Err: cfb.ErrNotFound}
}

// applyCategories copies column categories from _Validation onto the schema.
// _Validation is advisory; a damaged one is logged and ignored.
func (d *Database) applyCategories() {
	i, ok := d.index[format.ValidationTable]
	if !ok {
		return
	}
	t := d.tables[i]
	tc, ok1 := t.Column("Table")
	cc, ok2 := t.Column("Column")
	kc, ok3 := t.Column("Category")
	if !ok1 || !ok2 || !ok3 {
		d.log.Debug("_Validation lacks Table/Column/Category columns")
		return
	}
	vrows, err := rows.Decode(d, t.Clone(), d.pool)
	if err != nil {
		d.log.Warn("ignoring unreadable _Validation table", "error", err)
		return
	}
	categories := make(map[string]string, len(vrows))
	for _, r := range vrows {
		if cat, ok := r.At(kc.Ordinal).AsString(); ok {
			categories[r.At(tc.Ordinal).Str+"\x00"+r.At(cc.Ordinal).Str] = cat
		}
	}
	for ti := range d.tables {
		for ci := range d.tables[ti].Columns {
			c := &d.tables[ti].Columns[ci]
			c.Category = categories[d.tables[ti].Name+"\x00"+c.Name]
		}
	}
}

// ReadBinary returns the bytes behind a binary cell.
func (d *Database) ReadBinary(v types.Value) ([]byte, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	name, ok := v.Stream()
	if !ok || strings.TrimSpace(name) == "" {
		return nil, &types.Error{Kind: types.ErrKindState, Msg: fmt.Sprintf("%s value has no stream", kindName(v))}
	}
	data, err := d.Stream(format.EncodeStreamName(name, false))
	if err != nil {
		if errors.Is(err, cfb.ErrNotFound) {
			return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("binary stream %q not found", name), Err: err}
		}
		return nil, wrapFormatErr(err)
	}
	return data, nil
}

func kindName(v types.Value) string {
	switch v.Kind {
	case types.ValueInteger:
		return "integer"
	case types.ValueText:
		return "text"
	case types.ValueBinary:
		return "binary"
	default:
		return "absent"
	}
}
