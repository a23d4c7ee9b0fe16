package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStreamsCmd())
}

func newStreamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streams <package>",
		Short: "List the raw streams of a package",
		Long: `The streams command lists every stream in the compound file with its
demangled name and size. Table streams are marked with [table].

Example:
  msictl streams product.msi
  msictl streams product.msi --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStreams(args)
		},
	}
	return cmd
}

func runStreams(args []string) error {
	pkg, err := openPackage(args[0])
	if err != nil {
		return err
	}
	defer pkg.Close()

	streams, err := pkg.Streams()
	if err != nil {
		return fmt.Errorf("failed to list streams: %w", err)
	}
	if jsonOut {
		return printJSON(map[string]any{"streams": streams, "count": len(streams)})
	}
	for _, s := range streams {
		marker := ""
		if s.Table {
			marker = " [table]"
		}
		printInfo("%10d  %q%s\n", s.Size, s.Path, marker)
	}
	return nil
}
