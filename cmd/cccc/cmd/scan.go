/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ssargent/cccc/pkg/cccc"
	"github.com/ssargent/cccc/pkg/index"
	"github.com/ssargent/cccc/pkg/logging"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "List the records in a file",
	Long: `Walk the boundary markers of a CCCC file and print each record's number,
byte offset and payload length. With --index-dir the table of contents is
cached and reused until the file changes.

Examples:
	  cccc scan isotxs
	  cccc scan --ascii isotxs.txt
	  cccc scan --index-dir ~/.cache/cccc isotxs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		ascii, _ := cmd.Flags().GetBool("ascii")
		indexDir, _ := cmd.Flags().GetString("index-dir")
		if indexDir == "" {
			indexDir = a.cfg.IndexDir
		}
		order, err := a.cfg.Order()
		if err != nil {
			return err
		}
		return runScan(cmd.OutOrStdout(), args[0], index.Layout{ASCII: ascii, ByteOrder: order}, indexDir)
	},
}

func runScan(out io.Writer, path string, layout index.Layout, indexDir string) error {
	source, closeIndex, err := openIndex(indexDir)
	if err != nil {
		return err
	}
	defer closeIndex()

	entries, err := source.TOC(path, layout)
	if err != nil {
		return err
	}

	log := logging.Logger()
	log.Debug().Str("path", path).Int("records", len(entries)).Msg("scanned file")

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "RECORD\tOFFSET\tLENGTH\t")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%d\t%d\t\n", e.Number, e.Offset, e.Length)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d records (%s)\n", len(entries), layout)
	return nil
}

// openIndex returns the table of contents source for dir: a pebble cache when
// dir is set, a plain scan otherwise.
func openIndex(dir string) (cccc.TOCSource, func() error, error) {
	if dir == "" {
		return index.FileScanner{}, func() error { return nil }, nil
	}
	store, err := index.OpenStore(dir)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().Bool("ascii", false, "File uses the ASCII encoding")
	scanCmd.Flags().String("index-dir", "", "Cache tables of contents in this directory")
}
