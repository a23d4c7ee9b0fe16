package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoCommand(t *testing.T) {
	path := testPackagePath(t)

	tests := []struct {
		name           string
		json           bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name: "text",
			wantContain: []string{
				"Name: Acme Widget",
				"Version: 2.1.0",
				"Manufacturer: Acme Corp",
				"Upgrade Code: {7F6E5D4C-3B2A-4918-8776-655443322110}",
				"Platform: x64",
				"Installer Version: 5.0",
				"Feature: 2",
				"Signed: yes",
			},
			wantNotContain: []string{"Component:", "(no summary information)"},
		},
		{
			name:        "json",
			json:        true,
			wantContain: []string{`"name": "Acme Widget"`, `"Feature": 2`, `"signed": true`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			jsonOut = tt.json
			out, err := captureOutput(t, func() error { return runInfo([]string{path}) })
			require.NoError(t, err)
			if tt.json {
				assertJSON(t, out)
			}
			assertContains(t, out, tt.wantContain)
			assertNotContains(t, out, tt.wantNotContain)
		})
	}
}

func TestTablesCommand(t *testing.T) {
	resetFlags(t)
	path := testPackagePath(t)

	out, err := captureOutput(t, func() error { return runTables([]string{path}) })
	require.NoError(t, err)
	assert.Equal(t, "Property\nFeature\nBinary\n", out)

	tablesColumns = true
	out, err = captureOutput(t, func() error { return runTables([]string{path}) })
	require.NoError(t, err)
	assertContains(t, out, []string{"Feature", "Title", "nullable,localizable", "Integer(2)"})

	tablesColumns, jsonOut = false, true
	out, err = captureOutput(t, func() error { return runTables([]string{path}) })
	require.NoError(t, err)
	res := assertJSON(t, out)
	assert.EqualValues(t, 3, res["count"])
	assertContains(t, out, []string{`"idt": "s72"`, `"idt": "L64"`})
}

func TestRowsCommand(t *testing.T) {
	resetFlags(t)
	path := testPackagePath(t)

	out, err := captureOutput(t, func() error { return runRows([]string{path, "Feature"}) })
	require.NoError(t, err)
	assertContains(t, out, []string{"Feature", "Title", "Level", "Main Feature", "Docs"})

	rowsColumns = []string{"Level"}
	out, err = captureOutput(t, func() error { return runRows([]string{path, "Feature"}) })
	require.NoError(t, err)
	assertContains(t, out, []string{"Level", "1", "3"})
	assertNotContains(t, out, []string{"Main Feature"})

	rowsColumns, jsonOut = nil, true
	out, err = captureOutput(t, func() error { return runRows([]string{path, "Binary"}) })
	require.NoError(t, err)
	assertJSON(t, out)
	assertContains(t, out, []string{`"stream": "Binary.Logo"`})

	_, err = captureOutput(t, func() error { return runRows([]string{path, "Registry"}) })
	assert.Error(t, err)
}

func TestStreamsAndExtract(t *testing.T) {
	resetFlags(t)
	path := testPackagePath(t)

	out, err := captureOutput(t, func() error { return runStreams([]string{path}) })
	require.NoError(t, err)
	assertContains(t, out, []string{`"Property" [table]`, `"Binary.Logo"`, `"\x05SummaryInformation"`})

	out, err = captureOutput(t, func() error { return runExtract([]string{path, "Binary.Logo"}) })
	require.NoError(t, err)
	assert.Equal(t, "BMlogo", out)

	extractOutput = filepath.Join(t.TempDir(), "logo.bmp")
	_, err = captureOutput(t, func() error { return runExtract([]string{path, "Binary.Logo"}) })
	require.NoError(t, err)
	data, err := os.ReadFile(extractOutput)
	require.NoError(t, err)
	assert.Equal(t, []byte("BMlogo"), data)
}

func TestUnreadablePackage(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "bad.msi")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0o644))

	_, err := captureOutput(t, func() error { return runInfo([]string{path}) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable package")
}

func TestVersionCommand(t *testing.T) {
	resetFlags(t)

	out, err := captureOutput(t, runVersion)
	require.NoError(t, err)
	assertContains(t, out, []string{"msictl dev", "library: github.com/joshuapare/msikit", "go: go"})

	jsonOut = true
	out, err = captureOutput(t, runVersion)
	require.NoError(t, err)
	res := assertJSON(t, out)
	assert.Equal(t, "dev", res["version"])
	assert.NotEmpty(t, res["library"])
}
