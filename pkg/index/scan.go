// Package index builds tables of contents for CCCC files by walking their
// record boundary markers without decoding payloads, and caches them in a
// pebble database so random access to a record does not rescan the file.
package index

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/cccc/pkg/codec"
)

// ErrMalformed is returned for markers that cannot describe a record.
var ErrMalformed = errors.New("malformed record marker")

// Entry locates one record. Offset is the position of its leading marker.
type Entry struct {
	Number int
	Offset int64
	Length int32 // payload bytes (binary) or characters (ASCII)
}

// End returns the offset just past the record.
func (e Entry) End(layout Layout) int64 {
	if layout.ASCII {
		return e.Offset + int64(2*codec.ASCIIIntWidth) + int64(e.Length) + 1
	}
	return e.Offset + int64(2*codec.MarkerSize) + int64(e.Length)
}

// Layout selects how a file is framed.
type Layout struct {
	ASCII     bool
	ByteOrder binary.ByteOrder // binary only; nil means little-endian
}

func (l Layout) String() string {
	if l.ASCII {
		return "ascii"
	}
	if l.ByteOrder == binary.BigEndian {
		return "binary-big"
	}
	return "binary-little"
}

// ScanFile returns the table of contents of the file at path.
func ScanFile(path string, layout Layout) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file for scan")
	}
	defer f.Close()

	if layout.ASCII {
		return ScanASCII(f)
	}
	return ScanBinary(f, layout.ByteOrder)
}

// ScanBinary walks binary records until EOF. On a malformed record it returns
// the entries before it together with the error.
func ScanBinary(r io.Reader, order binary.ByteOrder) ([]Entry, error) {
	if order == nil {
		order = binary.LittleEndian
	}
	br := bufio.NewReader(r)

	var (
		entries []Entry
		offset  int64
		marker  [codec.MarkerSize]byte
	)
	for n := 0; ; n++ {
		if _, err := io.ReadFull(br, marker[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return entries, errors.Wrapf(err, "record %d at offset %d", n, offset)
		}
		leading := int32(order.Uint32(marker[:]))
		if leading < 0 {
			return entries, errors.Wrapf(ErrMalformed, "record %d at offset %d declares %d bytes", n, offset, leading)
		}

		skipped, err := io.CopyN(io.Discard, br, int64(leading))
		if err != nil {
			return entries, errors.Wrapf(io.ErrUnexpectedEOF, "record %d at offset %d: payload ends after %d of %d bytes", n, offset, skipped, leading)
		}
		if _, err := io.ReadFull(br, marker[:]); err != nil {
			return entries, errors.Wrapf(io.ErrUnexpectedEOF, "record %d at offset %d: missing trailing marker", n, offset)
		}
		trailing := int32(order.Uint32(marker[:]))
		if trailing != leading {
			return entries, errors.Wrapf(mismatch(leading, trailing, int(skipped)), "record %d at offset %d", n, offset)
		}

		entries = append(entries, Entry{Number: n, Offset: offset, Length: leading})
		offset += int64(2*codec.MarkerSize) + int64(leading)
	}
}

// ScanASCII walks text records until EOF. Each record is measured by its
// leading marker's character count, so payload fields may hold line breaks.
func ScanASCII(r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)

	var (
		entries []Entry
		offset  int64
		field   [codec.ASCIIIntWidth]byte
	)
	for n := 0; ; n++ {
		got, err := io.ReadFull(br, field[:])
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, errors.Wrapf(ErrMalformed, "record %d at offset %d: marker ends after %d characters", n, offset, got)
		}
		leading, err := parseMarker(string(field[:]))
		if err != nil {
			return entries, errors.Wrapf(err, "record %d at offset %d", n, offset)
		}

		skipped, err := io.CopyN(io.Discard, br, int64(leading))
		if err != nil {
			return entries, errors.Wrapf(io.ErrUnexpectedEOF, "record %d at offset %d: payload ends after %d of %d characters", n, offset, skipped, leading)
		}
		if _, err := io.ReadFull(br, field[:]); err != nil {
			return entries, errors.Wrapf(io.ErrUnexpectedEOF, "record %d at offset %d: missing trailing marker", n, offset)
		}
		trailing, err := parseMarker(string(field[:]))
		if err != nil {
			return entries, errors.Wrapf(err, "record %d at offset %d", n, offset)
		}
		if trailing != leading {
			return entries, errors.Wrapf(mismatch(leading, trailing, int(skipped)), "record %d at offset %d", n, offset)
		}

		end, err := lineEnd(br)
		if err != nil {
			return entries, errors.Wrapf(err, "record %d at offset %d", n, offset)
		}

		entries = append(entries, Entry{Number: n, Offset: offset, Length: leading})
		offset += int64(2*codec.ASCIIIntWidth) + int64(leading) + end
	}
}

// lineEnd consumes "\n" or "\r\n" and returns its length. A missing
// terminator at end of file is accepted.
func lineEnd(br *bufio.Reader) (int64, error) {
	c, err := br.ReadByte()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	switch c {
	case '\n':
		return 1, nil
	case '\r':
		next, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return 1, nil
		}
		if err != nil {
			return 0, err
		}
		if next == '\n' {
			return 2, nil
		}
	}
	return 0, errors.Wrapf(ErrMalformed, "expected line terminator after trailing marker, found %q", c)
}

func parseMarker(field string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
	if err != nil || v < 0 {
		return 0, errors.Wrapf(ErrMalformed, "marker %q", field)
	}
	return int32(v), nil
}

func mismatch(leading, trailing int32, processed int) error {
	return errors.WithHint(&codec.BoundaryMismatchError{
		Leading:   leading,
		Trailing:  trailing,
		Processed: processed,
	}, "the file is truncated or corrupt, or it is not a sequential CCCC file in this layout")
}
