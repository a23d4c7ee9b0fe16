package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/msikit/internal/logger"
	"github.com/joshuapare/msikit/pkg/msi"
	"github.com/joshuapare/msikit/pkg/types"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	logDir  string

	log      = logger.Discard()
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "msictl",
	Short: "Inspect Windows Installer packages",
	Long: `msictl reads Windows Installer databases (.msi, .msm, .pcp) and prints
their product information, table schemas, rows and raw streams.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, c, err := logger.New(logger.Options{Verbose: verbose, Quiet: quiet, LogDir: logDir})
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		log, closeLog = l, c
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write JSON logs to a daily file in this directory")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openPackage opens path with the CLI logger. Structural failures are
// reported as an unreadable package.
func openPackage(path string) (*msi.Package, error) {
	printVerbose("Opening package: %s\n", path)
	pkg, err := msi.OpenFile(path, &msi.OpenOptions{Logger: log})
	if err != nil {
		log.Error("open failed", "path", path, "error", err)
		if types.IsFormat(err) {
			return nil, fmt.Errorf("unreadable package %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return pkg, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
