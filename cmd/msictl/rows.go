package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	rowsColumns []string
	rowsLimit   int
)

func init() {
	cmd := newRowsCmd()
	cmd.Flags().StringSliceVar(&rowsColumns, "columns", nil, "Only print these columns (comma separated)")
	cmd.Flags().IntVarP(&rowsLimit, "limit", "n", 0, "Maximum number of rows (0 = all)")
	rootCmd.AddCommand(cmd)
}

func newRowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rows <package> <table>",
		Short: "Print the rows of a table",
		Long: `The rows command decodes a table and prints its rows in stream order.
Binary cells are shown as [Binary Data]; use extract to read them.

Example:
  msictl rows product.msi Property
  msictl rows product.msi File --columns FileName,FileSize
  msictl rows product.msi Property --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRows(args)
		},
	}
	return cmd
}

func runRows(args []string) error {
	path, table := args[0], args[1]
	pkg, err := openPackage(path)
	if err != nil {
		return err
	}
	defer pkg.Close()

	rows, err := pkg.Select(table, rowsColumns...)
	if err != nil {
		return fmt.Errorf("failed to read table %s: %w", table, err)
	}
	if rowsLimit > 0 && len(rows) > rowsLimit {
		rows = rows[:rowsLimit]
	}

	if jsonOut {
		return printJSON(map[string]any{"table": table, "rows": rows, "count": len(rows)})
	}
	if quiet {
		return nil
	}

	t, err := pkg.Table(table)
	if err != nil {
		return err
	}
	headers := rowsColumns
	if len(headers) == 0 {
		for _, c := range t.Columns {
			headers = append(headers, c.Name)
		}
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range rows {
		cells := make([]string, r.Len())
		for i := range cells {
			cells[i] = r.At(i).String()
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
