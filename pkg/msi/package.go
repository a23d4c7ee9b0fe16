package msi

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/joshuapare/msikit/internal/mmfile"
	"github.com/joshuapare/msikit/internal/reader"
	"github.com/joshuapare/msikit/internal/summary"
	"github.com/joshuapare/msikit/pkg/types"
)

// PropertyTable is the table of installer properties.
const PropertyTable = "Property"

// Properties that override summary-derived product fields.
const (
	PropProductName    = "ProductName"
	PropProductVersion = "ProductVersion"
	PropManufacturer   = "Manufacturer"
	PropUpgradeCode    = "UpgradeCode"
)

const (
	propertyKeyColumn   = "Property"
	propertyValueColumn = "Value"
)

// Package is an opened installer database.
type Package struct {
	db      *reader.Database
	log     *slog.Logger
	product func() (*types.ProductInfo, error)
}

// Open parses an in-memory package. The slice must not be modified while the
// package is open.
func Open(b []byte, opts *OpenOptions) (*Package, error) {
	return open(b, nil, opts.orDefault())
}

// OpenFile maps the file at path read-only and opens it.
func OpenFile(path string, opts *OpenOptions) (*Package, error) {
	o := opts.orDefault()
	m, err := mmfile.Map(path, o.MaxFileSize)
	if err != nil {
		return nil, reader.WrapIOErr(err)
	}
	p, err := open(m.Data(), m.Close, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func open(b []byte, release func() error, o OpenOptions) (*Package, error) {
	log := o.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	db, err := reader.Open(b, release, reader.Options{Logger: log, MaxStreamSize: o.MaxStreamSize})
	if err != nil {
		return nil, err
	}
	p := &Package{db: db, log: log}
	p.product = sync.OnceValues(p.productInfo)
	return p, nil
}

// Close releases the package. Calls after Close fail with types.ErrClosed.
func (p *Package) Close() error { return p.db.Close() }

// Tables returns every table schema in _Tables order. The slice is a copy.
func (p *Package) Tables() ([]types.Table, error) { return p.db.Tables() }

// Table returns the schema of one table.
func (p *Package) Table(name string) (types.Table, error) { return p.db.Table(name) }

// HasTable reports whether the schema lists name.
func (p *Package) HasTable(name string) bool {
	_, err := p.db.Table(name)
	return err == nil
}

// Rows returns the rows of a table in stream order. Unknown tables fail with
// a NotFound error; a listed table without a stream has no rows.
func (p *Package) Rows(name string) ([]types.Row, error) { return p.db.Rows(name) }

// Select returns rows projected onto the named columns, in the order given.
// With no columns it is the same as Rows.
func (p *Package) Select(name string, columns ...string) ([]types.Row, error) {
	rows, err := p.db.Rows(name)
	if err != nil || len(columns) == 0 {
		return rows, err
	}
	t, err := p.db.Table(name)
	if err != nil {
		return nil, err
	}
	picked := make([]types.Column, len(columns))
	for i, c := range columns {
		col, ok := t.Column(c)
		if !ok {
			return nil, &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("table %q has no column %q", name, c)}
		}
		picked[i] = col
	}
	out := make([]types.Row, len(rows))
	for i, r := range rows {
		vals := make([]types.Value, len(picked))
		for j, c := range picked {
			vals[j] = r.At(c.Ordinal)
		}
		out[i] = types.NewRow(picked, vals)
	}
	return out, nil
}

// Property returns a value from the Property table. ok is false when the
// table or the property is missing.
func (p *Package) Property(name string) (value string, ok bool, err error) {
	props, err := p.properties()
	if err != nil {
		return "", false, err
	}
	value, ok = props[name]
	return value, ok, nil
}

func (p *Package) properties() (map[string]string, error) {
	rows, err := p.db.Rows(PropertyTable)
	if types.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	props := make(map[string]string, len(rows))
	for _, r := range rows {
		k, _ := r.Get(propertyKeyColumn)
		v, _ := r.Get(propertyValueColumn)
		if s, ok := k.AsString(); ok {
			props[s] = v.Str
		}
	}
	return props, nil
}

// Summary returns the summary information stream, or nil when the package
// has none.
func (p *Package) Summary() (*types.SummaryInfo, error) { return p.db.Summary() }

// ProductInfo identifies the installed product. It is nil when the package
// has no summary stream, or when neither the summary nor the Property table
// name anything. Property table values take precedence over the summary.
func (p *Package) ProductInfo() (*types.ProductInfo, error) {
	if err := p.db.EnsureOpen(); err != nil {
		return nil, err
	}
	info, err := p.product()
	if err != nil || info == nil {
		return nil, err
	}
	out := *info
	return &out, nil
}

func (p *Package) productInfo() (*types.ProductInfo, error) {
	sum, err := p.db.Summary()
	if err != nil || sum == nil {
		return nil, err
	}
	var info types.ProductInfo
	if base := summary.ProductInfo(sum); base != nil {
		info = *base
	}
	// The Property table only refines the summary; a damaged one is skipped.
	props, err := p.properties()
	if err != nil {
		p.log.Warn("ignoring unreadable Property table for product info", "error", err)
		props = nil
	}
	for name, field := range map[string]*string{
		PropProductName:    &info.Name,
		PropProductVersion: &info.Version,
		PropManufacturer:   &info.Manufacturer,
		PropUpgradeCode:    &info.UpgradeCode,
	} {
		if v, ok := props[name]; ok && v != "" {
			p.log.Debug("property table overrides product field", "property", name)
			*field = v
		}
	}
	if info.Empty() {
		return nil, nil
	}
	return &info, nil
}

// Streams lists every stream in the container.
func (p *Package) Streams() ([]types.StreamInfo, error) { return p.db.Streams() }

// ReadStream returns a root-level stream by demangled or raw name.
func (p *Package) ReadStream(name string) ([]byte, error) { return p.db.ReadStream(name) }

// ReadBinary returns the bytes of a binary cell.
func (p *Package) ReadBinary(v types.Value) ([]byte, error) { return p.db.ReadBinary(v) }
