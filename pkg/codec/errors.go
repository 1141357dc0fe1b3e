package codec

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Codec errors.
var (
	// ErrBoundaryMismatch matches any *BoundaryMismatchError via errors.Is.
	ErrBoundaryMismatch = errors.New("record boundary mismatch")
	ErrStringTooLong    = errors.New("string longer than its field width")
	ErrShapeMismatch    = errors.New("contents do not match the declared shape")
	ErrRecordTooLarge   = errors.New("record exceeds the 32-bit length marker")
	ErrRecordClosed     = errors.New("record already closed")
	ErrRecordNotOpen    = errors.New("record not open")
	ErrInvalidField     = errors.New("invalid text field")
)

const boundaryHint = "the fields read do not match the fields present in the record: " +
	"too much or too little data was read, or the file is truncated or corrupt"

const closeHint = "it is possible too much data was read from or written to the record, " +
	"or the record was not read in its entirety"

// BoundaryMismatchError reports a record whose trailing length marker does
// not agree with its leading marker or with the bytes the caller consumed.
type BoundaryMismatchError struct {
	Leading   int32 // declared by the leading marker
	Trailing  int32 // found in the trailing marker
	Processed int   // bytes or characters consumed by value reads
}

func (e *BoundaryMismatchError) Error() string {
	return fmt.Sprintf("record boundary mismatch: leading marker %d, trailing marker %d, %d processed",
		e.Leading, e.Trailing, e.Processed)
}

// Is lets errors.Is(err, ErrBoundaryMismatch) match.
func (e *BoundaryMismatchError) Is(target error) bool {
	return target == ErrBoundaryMismatch
}

func newBoundaryMismatch(leading, trailing int32, processed int) error {
	return errors.WithHint(&BoundaryMismatchError{
		Leading:   leading,
		Trailing:  trailing,
		Processed: processed,
	}, boundaryHint)
}
