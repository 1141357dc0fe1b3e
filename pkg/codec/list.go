package codec

import "github.com/cockroachdb/errors"

// Element is the set of value kinds a list may hold.
type Element interface {
	int32 | int64 | float32 | float64 | string | bool
}

// Numeric is the set of value kinds a matrix may hold.
type Numeric interface {
	int32 | int64 | float32 | float64
}

// RWList reads or writes length values of kind T. width applies to string
// lists only. On read, contents is ignored and a fresh slice of length values
// is returned; on write, contents must hold exactly length values.
func RWList[T Element](c ValueCodec, contents []T, length, width int) ([]T, error) {
	if length < 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "negative list length %d", length)
	}
	if c.Reading() {
		contents = make([]T, length)
	} else if len(contents) != length {
		return contents, errors.Wrapf(ErrShapeMismatch, "list has %d values, declared %d", len(contents), length)
	}

	for i := range contents {
		v, err := rwElement(c, contents[i], width)
		if err != nil {
			return contents, errors.Wrapf(err, "list element %d", i)
		}
		contents[i] = v
	}
	return contents, nil
}

// rwElement dispatches one value to the scalar operation for its kind.
func rwElement[T Element](c ValueCodec, v T, width int) (T, error) {
	var (
		out any
		err error
	)
	switch x := any(v).(type) {
	case int32:
		out, err = c.RWInt(x)
	case int64:
		out, err = c.RWLong(x)
	case float32:
		out, err = c.RWFloat(x)
	case float64:
		out, err = c.RWDouble(x)
	case string:
		out, err = c.RWString(x, width)
	case bool:
		out, err = RWBool(c, x)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out.(T), nil
}
