package cccc

import "github.com/cockroachdb/errors"

// Format describes how a payload of type T maps onto the records of a file.
type Format[T any] interface {
	Read(f *File) (T, error)
	Write(f *File, payload T) error
}

// Symmetric builds a Format from a single definition used in both
// directions. On read rw receives the zero T and returns the decoded
// payload; on write it receives the payload to encode.
func Symmetric[T any](rw func(f *File, payload T) (T, error)) Format[T] {
	return symmetric[T]{rw: rw}
}

type symmetric[T any] struct {
	rw func(f *File, payload T) (T, error)
}

func (s symmetric[T]) Read(f *File) (T, error) {
	var zero T
	return s.rw(f, zero)
}

func (s symmetric[T]) Write(f *File, payload T) error {
	_, err := s.rw(f, payload)
	return err
}

// ReadBinary opens path in binary read mode and decodes it with format.
func ReadBinary[T any](path string, format Format[T], opts ...Option) (T, error) {
	return readWith(path, ModeReadBinary, format, opts)
}

// ReadASCII opens path in ASCII read mode and decodes it with format.
func ReadASCII[T any](path string, format Format[T], opts ...Option) (T, error) {
	return readWith(path, ModeReadASCII, format, opts)
}

// WriteBinary encodes payload to path in binary mode.
func WriteBinary[T any](payload T, path string, format Format[T], opts ...Option) error {
	return writeWith(payload, path, ModeWriteBinary, format, opts)
}

// WriteASCII encodes payload to path in ASCII mode.
func WriteASCII[T any](payload T, path string, format Format[T], opts ...Option) error {
	return writeWith(payload, path, ModeWriteASCII, format, opts)
}

func readWith[T any](path string, mode Mode, format Format[T], opts []Option) (payload T, err error) {
	f, err := OpenFile(path, mode, opts...)
	if err != nil {
		return payload, err
	}
	defer func() {
		err = errors.CombineErrors(err, f.Close())
	}()
	return format.Read(f)
}

// writeWith discards the session's output when format fails, so a failed
// atomic write leaves the previous file untouched.
func writeWith[T any](payload T, path string, mode Mode, format Format[T], opts []Option) error {
	f, err := OpenFile(path, mode, opts...)
	if err != nil {
		return err
	}
	if err := format.Write(f, payload); err != nil {
		if abortErr := f.Abort(); abortErr != nil {
			return errors.WithSecondaryError(err, abortErr)
		}
		return err
	}
	return f.Close()
}
