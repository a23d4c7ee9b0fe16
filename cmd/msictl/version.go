package main

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const libraryPath = "github.com/joshuapare/msikit"

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Built     string `json:"built"`
	Library   string `json:"library"`
	GoVersion string `json:"go"`
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	})
}

// buildVersion reports the msikit module version from the embedded build
// info: the main module for msictl itself, or a dependency when another
// binary links the library.
func buildVersion() versionInfo {
	v := versionInfo{Version: version, Commit: commit, Built: date, Library: "(devel)", GoVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if bi.Main.Path == libraryPath && bi.Main.Version != "" {
		v.Library = bi.Main.Version
	}
	for _, dep := range bi.Deps {
		if dep.Path == libraryPath {
			v.Library = dep.Version
		}
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && v.Commit == "none":
			v.Commit = s.Value
		case s.Key == "vcs.time" && v.Built == "unknown":
			v.Built = s.Value
		}
	}
	return v
}

func runVersion() error {
	v := buildVersion()
	if jsonOut {
		return printJSON(v)
	}
	printInfo("msictl %s\n", v.Version)
	printInfo("  library: %s %s\n", libraryPath, v.Library)
	printInfo("  commit: %s\n", v.Commit)
	printInfo("  built: %s\n", v.Built)
	printInfo("  go: %s\n", v.GoVersion)
	return nil
}
