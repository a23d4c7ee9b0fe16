package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var tablesColumns bool

func init() {
	cmd := newTablesCmd()
	cmd.Flags().BoolVarP(&tablesColumns, "columns", "c", false, "Show column definitions")
	rootCmd.AddCommand(cmd)
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables <package>",
		Short: "List the tables of a package",
		Long: `The tables command lists every table in _Tables order. With --columns
it prints each column with its type, key and nullability.

Example:
  msictl tables product.msi
  msictl tables product.msi --columns
  msictl tables product.msi --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(args)
		},
	}
	return cmd
}

type columnJSON struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	IDT         string `json:"idt"`
	PrimaryKey  bool   `json:"primaryKey"`
	Nullable    bool   `json:"nullable"`
	Localizable bool   `json:"localizable"`
	Category    string `json:"category,omitempty"`
}

type tableJSON struct {
	Name    string       `json:"name"`
	Columns []columnJSON `json:"columns"`
}

func runTables(args []string) error {
	pkg, err := openPackage(args[0])
	if err != nil {
		return err
	}
	defer pkg.Close()

	tables, err := pkg.Tables()
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	if jsonOut {
		out := make([]tableJSON, len(tables))
		for i, t := range tables {
			out[i] = tableJSON{Name: t.Name}
			for _, c := range t.Columns {
				out[i].Columns = append(out[i].Columns, columnJSON{
					Name:        c.Name,
					Type:        c.Type.String(),
					IDT:         c.IDT(),
					PrimaryKey:  c.PrimaryKey,
					Nullable:    c.Nullable,
					Localizable: c.Localizable,
					Category:    c.Category,
				})
			}
		}
		return printJSON(map[string]any{"tables": out, "count": len(out)})
	}

	for _, t := range tables {
		printInfo("%s\n", t.Name)
		if !tablesColumns {
			continue
		}
		for _, c := range t.Columns {
			var flags []string
			if c.PrimaryKey {
				flags = append(flags, "key")
			}
			if c.Nullable {
				flags = append(flags, "nullable")
			}
			if c.Localizable {
				flags = append(flags, "localizable")
			}
			line := fmt.Sprintf("  %-24s %-12s %s", c.Name, c.Type, strings.Join(flags, ","))
			if c.Category != "" {
				line += " [" + c.Category + "]"
			}
			printInfo("%s\n", strings.TrimRight(line, " "))
		}
	}
	return nil
}
