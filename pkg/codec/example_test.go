package codec_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/ssargent/cccc/pkg/codec"
)

// header is a record shared by the write and read paths.
type header struct {
	Name     string
	Groups   int32
	Energies []float32
}

func rwHeader(rec codec.Record, h *header) error {
	var err error
	if h.Name, err = rec.RWString(h.Name, 8); err != nil {
		return err
	}
	if h.Groups, err = rec.RWInt(h.Groups); err != nil {
		return err
	}
	h.Energies, err = codec.RWList(rec, h.Energies, int(h.Groups), 0)
	return err
}

func ExampleScoped() {
	var buf bytes.Buffer

	out := header{Name: "ISOTXS", Groups: 3, Energies: []float32{1e7, 1e5, 1e3}}
	if err := codec.Scoped(codec.NewBinaryWriter(&buf, codec.DefaultConfig()), func(rec codec.Record) error {
		return rwHeader(rec, &out)
	}); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Encoded %d bytes\n", buf.Len())

	var in header
	if err := codec.Scoped(codec.NewBinaryReader(&buf, codec.DefaultConfig()), func(rec codec.Record) error {
		return rwHeader(rec, &in)
	}); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s %d %v\n", in.Name, in.Groups, in.Energies)

	// Output:
	// Encoded 32 bytes
	// ISOTXS 3 [1e+07 100000 1000]
}

func ExampleRWDoubleMatrix() {
	var buf bytes.Buffer
	m := codec.MatrixFromRows([][]float64{{1, 2, 3}, {4, 5, 6}})

	if err := codec.Scoped(codec.NewASCIIWriter(&buf, codec.DefaultConfig()), func(rec codec.Record) error {
		_, err := codec.RWDoubleMatrix(rec, m, 2, 3)
		return err
	}); err != nil {
		log.Fatal(err)
	}

	var got *codec.Matrix[float64]
	if err := codec.Scoped(codec.NewASCIIReader(&buf, codec.DefaultConfig()), func(rec codec.Record) error {
		var err error
		got, err = codec.RWDoubleMatrix(rec, nil, 2, 3)
		return err
	}); err != nil {
		log.Fatal(err)
	}
	fmt.Println(got.Rows())

	// Output:
	// [[1 2 3] [4 5 6]]
}
