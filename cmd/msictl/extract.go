package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/msikit/internal/writer"
)

var extractOutput string

func init() {
	cmd := newExtractCmd()
	cmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <package> <stream>",
		Short: "Write the contents of a stream",
		Long: `The extract command copies one root-level stream out of the package.
The stream may be named by its demangled name (Binary.Logo), a table name or
the raw container name.

Example:
  msictl extract product.msi Binary.Logo -o logo.bmp
  msictl extract product.msi $'\x05SummaryInformation' > summary.bin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args)
		},
	}
	return cmd
}

func runExtract(args []string) error {
	path, name := args[0], args[1]
	pkg, err := openPackage(path)
	if err != nil {
		return err
	}
	defer pkg.Close()

	data, err := pkg.ReadStream(name)
	if err != nil {
		return fmt.Errorf("failed to read stream %s: %w", name, err)
	}
	if extractOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := (&writer.FileWriter{Path: extractOutput}).Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", extractOutput, err)
	}
	printVerbose("Wrote %d bytes to %s\n", len(data), extractOutput)
	return nil
}
