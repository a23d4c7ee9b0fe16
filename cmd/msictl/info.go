package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/msikit/internal/format"
	"github.com/joshuapare/msikit/pkg/types"
)

// Tables whose row counts info reports when present.
var infoTables = []string{"Feature", "Component", "File", "Registry", "Shortcut", "CustomAction"}

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <package>",
		Short: "Show product information and package metadata",
		Long: `The info command opens an installer package and displays its product
information, summary properties and the size of its main tables.

Example:
  msictl info product.msi
  msictl info product.msi --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type infoResult struct {
	File    string             `json:"file"`
	Size    int64              `json:"size"`
	Product *types.ProductInfo `json:"product"`
	Summary *types.SummaryInfo `json:"summary"`
	Tables  int                `json:"tables"`
	Signed  bool               `json:"signed"` // carries a signature stream; not verified
	Counts  map[string]int     `json:"rowCounts"`
}

func runInfo(args []string) error {
	path := args[0]
	pkg, err := openPackage(path)
	if err != nil {
		return err
	}
	defer pkg.Close()

	res := infoResult{File: path, Counts: map[string]int{}}
	if stat, err := os.Stat(path); err == nil {
		res.Size = stat.Size()
	}
	if res.Product, err = pkg.ProductInfo(); err != nil {
		return fmt.Errorf("failed to read product info: %w", err)
	}
	if res.Summary, err = pkg.Summary(); err != nil {
		return fmt.Errorf("failed to read summary: %w", err)
	}
	tables, err := pkg.Tables()
	if err != nil {
		return err
	}
	res.Tables = len(tables)
	streams, err := pkg.Streams()
	if err != nil {
		return err
	}
	for _, s := range streams {
		if s.Path == s.Name && s.Raw == format.DigitalSignatureStream {
			res.Signed = true
		}
	}
	for _, name := range infoTables {
		rows, err := pkg.Rows(name)
		switch {
		case types.IsNotFound(err):
			printVerbose("No %s table\n", name)
			continue
		case err != nil:
			log.Warn("skipping unreadable table", "table", name, "error", err)
			continue
		}
		res.Counts[name] = len(rows)
	}

	if jsonOut {
		return printJSON(res)
	}

	printInfo("\nPackage Information:\n")
	printInfo("  File: %s\n", path)
	printInfo("  Size: %s\n", formatSize(res.Size))
	printInfo("  Tables: %d\n", res.Tables)
	if res.Signed {
		printInfo("  Signed: yes (not verified)\n")
	} else {
		printInfo("  Signed: no\n")
	}

	printInfo("\nProduct:\n")
	if res.Product == nil {
		printInfo("  (no summary information)\n")
	} else {
		printField("Name", res.Product.Name)
		printField("Version", res.Product.Version)
		printField("Manufacturer", res.Product.Manufacturer)
		printField("Package Code", res.Product.PackageCode)
		printField("Upgrade Code", res.Product.UpgradeCode)
		printField("Subject", res.Product.Subject)
	}

	if s := res.Summary; s != nil {
		printInfo("\nSummary:\n")
		printField("Platform", s.Platform())
		if langs := s.Languages(); len(langs) > 0 {
			printField("Languages", fmt.Sprint(langs))
		}
		printField("Creating Application", s.CreatingApp)
		if !s.Created.IsZero() {
			printField("Created", s.Created.UTC().Format("2006-01-02 15:04:05"))
		}
		if s.PageCount != 0 {
			printField("Installer Version", fmt.Sprintf("%d.%d", s.PageCount/100, s.PageCount%100))
		}
	}

	if len(res.Counts) > 0 {
		printInfo("\nRows:\n")
		for _, name := range infoTables {
			if n, ok := res.Counts[name]; ok {
				printInfo("  %s: %d\n", name, n)
			}
		}
	}
	return nil
}

func printField(label, value string) {
	if value != "" {
		printInfo("  %s: %s\n", label, value)
	}
}

func formatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
