package codec

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Matrix is a dense n-dimensional array indexed in caller (row-major) order.
type Matrix[T Numeric] struct {
	Shape []int
	Data  []T
}

// NewMatrix allocates a zeroed matrix of the given shape.
func NewMatrix[T Numeric](shape ...int) *Matrix[T] {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return &Matrix[T]{Shape: append([]int(nil), shape...), Data: make([]T, n)}
}

// MatrixFromRows builds a 2-D matrix from equal-length rows.
func MatrixFromRows[T Numeric](rows [][]T) *Matrix[T] {
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	m := NewMatrix[T](len(rows), cols)
	for i, row := range rows {
		copy(m.Data[i*cols:(i+1)*cols], row)
	}
	return m
}

// Rows returns a 2-D matrix as a slice of rows sharing m.Data.
func (m *Matrix[T]) Rows() [][]T {
	if len(m.Shape) != 2 {
		panic(fmt.Sprintf("codec: Rows on %d-dimensional matrix", len(m.Shape)))
	}
	rows := make([][]T, m.Shape[0])
	for i := range rows {
		rows[i] = m.Data[i*m.Shape[1] : (i+1)*m.Shape[1]]
	}
	return rows
}

// At returns the element at idx.
func (m *Matrix[T]) At(idx ...int) T {
	return m.Data[m.offset(idx)]
}

// Set stores v at idx.
func (m *Matrix[T]) Set(v T, idx ...int) {
	m.Data[m.offset(idx)] = v
}

func (m *Matrix[T]) offset(idx []int) int {
	if len(idx) != len(m.Shape) {
		panic(fmt.Sprintf("codec: %d indices for %d-dimensional matrix", len(idx), len(m.Shape)))
	}
	off := 0
	for k, i := range idx {
		if i < 0 || i >= m.Shape[k] {
			panic(fmt.Sprintf("codec: index %d out of range [0,%d) in dimension %d", i, m.Shape[k], k))
		}
		off = off*m.Shape[k] + i
	}
	return off
}

func (m *Matrix[T]) hasShape(shape []int) bool {
	if len(m.Shape) != len(shape) {
		return false
	}
	for i := range shape {
		if m.Shape[i] != shape[i] {
			return false
		}
	}
	return len(m.Data) == size(shape)
}

func size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// RWMatrix reads or writes a single-precision matrix of the given shape.
func RWMatrix(c ValueCodec, m *Matrix[float32], shape ...int) (*Matrix[float32], error) {
	return RWMatrixOf(c, m, shape...)
}

// RWDoubleMatrix reads or writes a double-precision matrix of the given shape.
func RWDoubleMatrix(c ValueCodec, m *Matrix[float64], shape ...int) (*Matrix[float64], error) {
	return RWMatrixOf(c, m, shape...)
}

// RWMatrixOf reads or writes a matrix whose shape is given in caller order.
// Storage follows Fortran: the reversed shape drives the traversal, so the
// caller's first index varies fastest in the stream. On read a nil or empty
// m is replaced by a new matrix of the declared shape.
func RWMatrixOf[T Numeric](c ValueCodec, m *Matrix[T], shape ...int) (*Matrix[T], error) {
	if len(shape) == 0 {
		return m, errors.Wrap(ErrShapeMismatch, "matrix needs at least one dimension")
	}
	for _, d := range shape {
		if d < 0 {
			return m, errors.Wrapf(ErrShapeMismatch, "negative dimension in %v", shape)
		}
	}

	switch {
	case c.Reading() && (m == nil || len(m.Data) == 0):
		m = NewMatrix[T](shape...)
	case m == nil:
		return nil, errors.Wrapf(ErrShapeMismatch, "no matrix to write for shape %v", shape)
	case !m.hasShape(shape):
		return m, errors.Wrapf(ErrShapeMismatch, "matrix shape %v, declared %v", m.Shape, shape)
	}

	n := len(shape)
	fortran := make([]int, n)
	for k := range shape {
		fortran[k] = shape[n-1-k]
	}

	// j walks the reversed shape with its last component fastest; the
	// container is addressed at reverse(j).
	j := make([]int, n)
	idx := make([]int, n)
	for count := size(fortran); count > 0; count-- {
		for k := range j {
			idx[k] = j[n-1-k]
		}
		off := m.offset(idx)
		v, err := rwElement(c, m.Data[off], 0)
		if err != nil {
			return m, errors.Wrapf(err, "matrix element %v", idx)
		}
		m.Data[off] = v

		for k := n - 1; k >= 0; k-- {
			j[k]++
			if j[k] < fortran[k] {
				break
			}
			j[k] = 0
		}
	}
	return m, nil
}
