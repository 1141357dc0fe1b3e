/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ssargent/cccc/pkg/cccc"
	"github.com/ssargent/cccc/pkg/codec"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Decode one record as a list of values",
	Long: `Decode record N of a CCCC file as a homogeneous list of values of one kind
and print them one per line. The list length is derived from the record
length, so the whole record must consist of values of that kind.

Examples:
	  cccc dump isotxs --record 0 --kind string --width 8
	  cccc dump isotxs --record 3 --kind float
	  cccc dump --ascii flux.txt --record 2 --kind double
	  cccc dump --index-dir ~/.cache/cccc isotxs --record 5 --kind int`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		n, _ := cmd.Flags().GetInt("record")
		kind, _ := cmd.Flags().GetString("kind")
		width, _ := cmd.Flags().GetInt("width")
		ascii, _ := cmd.Flags().GetBool("ascii")
		indexDir, _ := cmd.Flags().GetString("index-dir")

		mode := cccc.ModeReadBinary
		if ascii {
			mode = cccc.ModeReadASCII
		}
		opts, closeIndex, err := dumpOptions(a, indexDir)
		if err != nil {
			return err
		}
		defer closeIndex()
		return runDump(cmd.OutOrStdout(), args[0], mode, n, kind, width, opts)
	},
}

// dumpOptions builds the session options for dump, backing record lookup with
// the index cache when one is configured.
func dumpOptions(a *app, indexDir string) ([]cccc.Option, func() error, error) {
	opts, err := a.fileOptions()
	if err != nil {
		return nil, nil, err
	}
	if indexDir == "" {
		indexDir = a.cfg.IndexDir
	}
	source, closeIndex, err := openIndex(indexDir)
	if err != nil {
		return nil, nil, err
	}
	return append(opts, cccc.WithIndex(source)), closeIndex, nil
}

// fieldWidth returns the encoded size of one value of kind.
func fieldWidth(kind string, width int, ascii bool) (int, error) {
	switch kind {
	case "int":
		if ascii {
			return codec.ASCIIIntWidth, nil
		}
		return codec.IntSize, nil
	case "long":
		if ascii {
			return codec.ASCIILongWidth, nil
		}
		return codec.LongSize, nil
	case "float":
		if ascii {
			return codec.ASCIIFloatWidth, nil
		}
		return codec.FloatSize, nil
	case "double":
		if ascii {
			return codec.ASCIIDoubleWidth, nil
		}
		return codec.DoubleSize, nil
	case "string":
		if width <= 0 {
			return 0, errors.New("--width is required for strings")
		}
		if ascii {
			return width + 1, nil
		}
		return width, nil
	default:
		return 0, errors.WithHint(errors.Newf("unknown kind %q", kind), "use int, long, float, double or string")
	}
}

func runDump(out io.Writer, path string, mode cccc.Mode, n int, kind string, width int, opts []cccc.Option) (err error) {
	size, err := fieldWidth(kind, width, !mode.Binary())
	if err != nil {
		return err
	}

	f, err := cccc.OpenFile(path, mode, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, f.Close())
	}()

	entry, err := f.Entry(n)
	if err != nil {
		return err
	}
	if int(entry.Length)%size != 0 {
		return errors.Newf("record %d holds %d bytes, not a whole number of %d-byte %s values", n, entry.Length, size, kind)
	}
	if err := f.SeekRecord(n); err != nil {
		return err
	}

	count := int(entry.Length) / size
	switch kind {
	case "int":
		return dumpList[int32](out, f, count, 0)
	case "long":
		return dumpList[int64](out, f, count, 0)
	case "float":
		return dumpList[float32](out, f, count, 0)
	case "double":
		return dumpList[float64](out, f, count, 0)
	default:
		return dumpList[string](out, f, count, width)
	}
}

func dumpList[T codec.Element](out io.Writer, f *cccc.File, count, width int) error {
	var values []T
	err := f.Record(func(rec codec.Record) error {
		var err error
		values, err = codec.RWList[T](rec, nil, count, width)
		return err
	})
	if err != nil {
		return err
	}
	for i, v := range values {
		fmt.Fprintf(out, "%6d  %v\n", i, v)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().IntP("record", "n", 0, "Record number, counting from zero")
	dumpCmd.Flags().StringP("kind", "k", "int", "Value kind: int, long, float, double or string")
	dumpCmd.Flags().IntP("width", "w", 0, "String width in characters")
	dumpCmd.Flags().Bool("ascii", false, "File uses the ASCII encoding")
	dumpCmd.Flags().String("index-dir", "", "Cache tables of contents in this directory")
}
