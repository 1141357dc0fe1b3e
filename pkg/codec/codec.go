package codec

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/cccc/pkg/logging"
)

// Encoded widths of the binary value kinds, in bytes.
const (
	IntSize    = 4
	LongSize   = 8
	FloatSize  = 4
	DoubleSize = 8
	MarkerSize = 4
)

// DefaultChunkSize bounds each write of a record payload to the underlying stream.
const DefaultChunkSize = 64 * 1024

// ValueCodec is the symmetric read/write contract. On a reader the argument
// is ignored and the next value in the stream is returned; on a writer the
// argument is encoded and returned unchanged.
type ValueCodec interface {
	RWInt(v int32) (int32, error)
	RWLong(v int64) (int64, error)
	RWFloat(v float32) (float32, error)
	RWDouble(v float64) (float64, error)
	RWString(v string, width int) (string, error)

	// Count returns the bytes (binary) or characters (ASCII) processed by
	// value operations in the current record.
	Count() int

	// Reading reports whether values are decoded rather than encoded.
	Reading() bool
}

// Record is a ValueCodec bound to exactly one record of a file.
// Open consumes or resets the leading boundary, Close validates or emits the
// trailing one. A Record cannot be reopened after Close.
type Record interface {
	ValueCodec
	Open() error
	Close() error
}

// Config controls the encoding of records.
type Config struct {
	// ByteOrder of binary integers, floats and markers.
	ByteOrder binary.ByteOrder

	// Markers enables the leading/trailing length markers. Disable it for
	// direct-access layouts.
	Markers bool

	// ChunkSize bounds individual writes of a record payload.
	ChunkSize int
}

// DefaultConfig returns little-endian records with boundary markers.
func DefaultConfig() Config {
	return Config{
		ByteOrder: binary.LittleEndian,
		Markers:   true,
		ChunkSize: DefaultChunkSize,
	}
}

func (c Config) withDefaults() Config {
	if c.ByteOrder == nil {
		c.ByteOrder = binary.LittleEndian
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	return c
}

// RWBool reads or writes a boolean stored as an int 0/1.
func RWBool(c ValueCodec, v bool) (bool, error) {
	var i int32
	if v {
		i = 1
	}
	i, err := c.RWInt(i)
	if err != nil {
		return false, err
	}
	return i != 0, nil
}

// Scoped opens rec, runs fn and always closes rec, even when fn fails.
// A close failure is reported as "failed to close record"; when fn also
// failed, fn's error is attached as a secondary error.
func Scoped(rec Record, fn func(Record) error) (err error) {
	if err := rec.Open(); err != nil {
		return err
	}

	defer func() {
		closeErr := rec.Close()
		if closeErr == nil {
			return
		}
		logging.Logger().Error().Err(closeErr).AnErr("body_error", err).Msg("failed to close CCCC record")

		wrapped := errors.WithHint(errors.Wrap(closeErr, "failed to close record"), closeHint)
		if err != nil {
			wrapped = errors.WithSecondaryError(wrapped, err)
		}
		err = wrapped
	}()

	return fn(rec)
}

// session carries the state shared by all concrete records.
type session struct {
	count  int
	opened bool
	closed bool
}

func (s *session) Count() int { return s.count }

func (s *session) begin() error {
	if s.closed {
		return ErrRecordClosed
	}
	if s.opened {
		return errors.New("record already open")
	}
	s.opened = true
	s.count = 0
	return nil
}

func (s *session) ready() error {
	if s.closed {
		return ErrRecordClosed
	}
	if !s.opened {
		return ErrRecordNotOpen
	}
	return nil
}

// end marks the record closed; it reports whether Close may proceed.
func (s *session) end() error {
	if err := s.ready(); err != nil {
		return err
	}
	s.closed = true
	return nil
}

// writeChunked writes p to w in pieces of at most chunk bytes.
func writeChunked(w io.Writer, p []byte, chunk int) error {
	for len(p) > 0 {
		n := chunk
		if n > len(p) {
			n = len(p)
		}
		if _, err := w.Write(p[:n]); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
