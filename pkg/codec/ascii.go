package codec

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// Text field widths, each including the single leading separator.
const (
	ASCIIIntWidth    = 12 // " %+11d": sign and ten digits
	ASCIILongWidth   = 21 // " %+20d": sign and nineteen digits
	ASCIIFloatWidth  = 17 // " %+16.8E"
	ASCIIDoubleWidth = ASCIIFloatWidth
)

const (
	intFormat   = " %+11d"
	longFormat  = " %+20d"
	floatFormat = " %+16.8E"
)

// asciiReader decodes one text record.
type asciiReader struct {
	session
	r        io.Reader
	cfg      Config
	declared int32
}

// NewASCIIReader returns a Record that decodes the next text record of r.
func NewASCIIReader(r io.Reader, cfg Config) Record {
	return &asciiReader{r: r, cfg: cfg.withDefaults()}
}

func (a *asciiReader) Reading() bool { return true }

func (a *asciiReader) Open() error {
	if err := a.begin(); err != nil {
		return err
	}
	if !a.cfg.Markers {
		return nil
	}
	n, err := a.readMarker()
	if err != nil {
		return errors.Wrap(err, "reading leading record marker")
	}
	a.declared = n
	return nil
}

func (a *asciiReader) Close() error {
	if err := a.end(); err != nil {
		return err
	}
	if a.cfg.Markers {
		trailing, err := a.readMarker()
		if err != nil {
			return errors.Wrap(err, "reading trailing record marker")
		}
		if trailing != a.declared || a.count != int(a.declared) {
			return newBoundaryMismatch(a.declared, trailing, a.count)
		}
	}
	return a.readLineEnd()
}

func (a *asciiReader) readMarker() (int32, error) {
	field, err := readText(a.r, ASCIIIntWidth)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidField, "marker %q", field)
	}
	return int32(v), nil
}

// readLineEnd consumes "\n" or "\r\n". A missing terminator at end of file is accepted.
func (a *asciiReader) readLineEnd() error {
	var c [1]byte
	if _, err := io.ReadFull(a.r, c[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "reading line terminator")
	}
	if c[0] == '\r' {
		if _, err := io.ReadFull(a.r, c[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "reading line terminator")
		}
	}
	if c[0] != '\n' {
		return errors.Wrapf(ErrInvalidField, "expected line terminator, found %q", c[0])
	}
	return nil
}

func (a *asciiReader) field(width int, kind string) (string, error) {
	if err := a.ready(); err != nil {
		return "", err
	}
	s, err := readText(a.r, width)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", errors.Wrapf(err, "reading %s at record character %d", kind, a.count)
	}
	a.count += width
	return s, nil
}

func (a *asciiReader) RWInt(int32) (int32, error) {
	s, err := a.field(ASCIIIntWidth, "int")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidField, "int %q", s)
	}
	return int32(v), nil
}

func (a *asciiReader) RWLong(int64) (int64, error) {
	s, err := a.field(ASCIILongWidth, "long")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidField, "long %q", s)
	}
	return v, nil
}

func (a *asciiReader) RWFloat(float32) (float32, error) {
	v, err := a.readFloat("float", 32)
	return float32(v), err
}

// RWDouble parses the same float field as RWFloat. The text form carries nine
// significant digits whichever kind was written.
func (a *asciiReader) RWDouble(float64) (float64, error) {
	return a.readFloat("double", 64)
}

func (a *asciiReader) readFloat(kind string, bits int) (float64, error) {
	s, err := a.field(ASCIIFloatWidth, kind)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(s)
	if strings.EqualFold(strings.TrimLeft(text, "+-"), "nan") {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(text, bits)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidField, "%s %q", kind, s)
	}
	return v, nil
}

func (a *asciiReader) RWString(_ string, width int) (string, error) {
	if width < 0 {
		return "", errors.Newf("negative string width %d", width)
	}
	s, err := a.field(width+1, "string")
	if err != nil {
		return "", err
	}
	return strings.TrimRightFunc(s[1:], unicode.IsSpace), nil
}

func readText(r io.Reader, n int) (string, error) {
	p := make([]byte, n)
	if _, err := io.ReadFull(r, p); err != nil {
		return "", err
	}
	return string(p), nil
}

// asciiWriter accumulates formatted fields and emits one line on Close.
type asciiWriter struct {
	session
	w         io.Writer
	cfg       Config
	fragments strings.Builder
}

// NewASCIIWriter returns a Record that encodes one text record onto w.
func NewASCIIWriter(w io.Writer, cfg Config) Record {
	return &asciiWriter{w: w, cfg: cfg.withDefaults()}
}

func (a *asciiWriter) Reading() bool { return false }

func (a *asciiWriter) Open() error {
	if err := a.begin(); err != nil {
		return err
	}
	a.fragments.Reset()
	return nil
}

func (a *asciiWriter) Close() error {
	if err := a.end(); err != nil {
		return err
	}
	defer a.fragments.Reset()

	var line strings.Builder
	if a.cfg.Markers {
		if a.count > math.MaxInt32 {
			return errors.Wrapf(ErrRecordTooLarge, "%d characters", a.count)
		}
		marker := fmt.Sprintf(intFormat, a.count)
		line.Grow(2*len(marker) + a.fragments.Len() + 1)
		line.WriteString(marker)
		line.WriteString(a.fragments.String())
		line.WriteString(marker)
	} else {
		line.WriteString(a.fragments.String())
	}
	line.WriteByte('\n')

	if err := writeChunked(a.w, []byte(line.String()), a.cfg.ChunkSize); err != nil {
		return errors.Wrap(err, "writing text record")
	}
	return nil
}

func (a *asciiWriter) add(s string) error {
	if err := a.ready(); err != nil {
		return err
	}
	a.fragments.WriteString(s)
	a.count += len(s)
	return nil
}

func (a *asciiWriter) RWInt(v int32) (int32, error) {
	return v, a.add(fmt.Sprintf(intFormat, v))
}

func (a *asciiWriter) RWLong(v int64) (int64, error) {
	return v, a.add(fmt.Sprintf(longFormat, v))
}

func (a *asciiWriter) RWFloat(v float32) (float32, error) {
	return v, a.add(formatFloat(float64(v)))
}

func (a *asciiWriter) RWDouble(v float64) (float64, error) {
	return v, a.add(formatFloat(v))
}

func (a *asciiWriter) RWString(v string, width int) (string, error) {
	padded, err := padString(v, width)
	if err != nil {
		return v, err
	}
	return v, a.add(" " + padded)
}

// formatFloat renders the fixed-width float field. Exponents beyond three
// digits cannot occur for float64, so the field never overflows.
func formatFloat(v float64) string {
	return fmt.Sprintf(floatFormat, v)
}

var (
	_ Record = (*asciiReader)(nil)
	_ Record = (*asciiWriter)(nil)
)
