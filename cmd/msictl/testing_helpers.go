package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/internal/testutil"
	"github.com/joshuapare/msikit/internal/testutil/msibuild"
	"github.com/joshuapare/msikit/pkg/types"
)

// testPackagePath writes a fixture package and returns its path.
func testPackagePath(t *testing.T) string {
	t.Helper()
	b := msibuild.New().
		Table(testutil.PropertyTable(
			"ProductName", "Acme Widget",
			"ProductVersion", "2.1.0",
			"Manufacturer", "Acme Corp",
		)).
		Table(msibuild.TableDef{
			Name: "Feature",
			Columns: []msibuild.ColumnDef{
				msibuild.Str("Feature", 38).Key(),
				msibuild.Str("Title", 64).Nullable().Localizable(),
				msibuild.Int16("Level"),
			},
			Rows: [][]any{{"Main", "Main Feature", 1}, {"Docs", nil, 3}},
		}).
		Table(msibuild.TableDef{
			Name:    "Binary",
			Columns: []msibuild.ColumnDef{msibuild.Str("Name", 72).Key(), msibuild.Bin("Data")},
			Rows:    [][]any{{"Logo", []byte("BMlogo")}},
		}).
		RawStream(format.DigitalSignatureStream, []byte{0x30, 0x82, 0x00, 0x00})
	b.Summary = &types.SummaryInfo{
		Codepage:    1252,
		Title:       "Installation Database",
		Author:      "Acme Corp",
		Template:    "x64;1033",
		Revision:    testutil.PackageCode + testutil.UpgradeCode,
		PageCount:   500,
		CreatingApp: "msibuild",
	}
	return testutil.WritePackage(t, b, "acme.msi")
}

// resetFlags restores global flag state between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		verbose, quiet, jsonOut = false, false, false
		tablesColumns = false
		rowsColumns, rowsLimit = nil, 0
		extractOutput = ""
	})
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
	return result
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
