// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/joshuapare/msikit/internal/testutil/msibuild"
)

// WritePackage builds b into a file under t.TempDir() and returns its path.
//
// Example:
//
//	path := testutil.WritePackage(t, testutil.PropertyPackage(), "product.msi")
func WritePackage(t *testing.T, b *msibuild.Builder, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := b.WriteFile(path); err != nil {
		t.Fatalf("write package: %v", err)
	}
	return path
}

// Product identifiers used by the fixture packages.
const (
	PackageCode = "{0E2A1D3C-5B6F-4A7E-8C9D-112233445566}"
	UpgradeCode = "{7F6E5D4C-3B2A-4918-8776-655443322110}"
)

// PropertyPackage is the minimal package: a single Property table holding
// ProductName and ProductVersion, with no summary stream.
func PropertyPackage() *msibuild.Builder {
	return msibuild.New().Table(PropertyTable(
		"ProductName", "Acme",
		"ProductVersion", "1.0.0",
	))
}

// PropertyTable returns a Property table from alternating name/value pairs.
func PropertyTable(pairs ...string) msibuild.TableDef {
	def := msibuild.TableDef{
		Name: "Property",
		Columns: []msibuild.ColumnDef{
			msibuild.Str("Property", 72).Key(),
			msibuild.Str("Value", 0).Nullable().Localizable(),
		},
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		var v any = pairs[i+1]
		if pairs[i+1] == "" {
			v = nil
		}
		def.Rows = append(def.Rows, []any{pairs[i], v})
	}
	return def
}
