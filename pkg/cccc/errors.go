package cccc

import "github.com/cockroachdb/errors"

var (
	ErrInvalidMode = errors.New("invalid file mode")
	ErrNotOpen     = errors.New("file is not open")
	ErrClosed      = errors.New("file is closed")
	ErrWrongMode   = errors.New("operation not supported in this mode")
	ErrRecordInUse = errors.New("another record is open on this file")
)
