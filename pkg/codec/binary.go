package codec

import (
	"bytes"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// binaryReader decodes one record from a raw byte stream.
type binaryReader struct {
	session
	r        io.Reader
	cfg      Config
	buf      [8]byte
	declared int32
}

// NewBinaryReader returns a Record that decodes the next record of r.
// r is shared with later records and is not closed.
func NewBinaryReader(r io.Reader, cfg Config) Record {
	return &binaryReader{r: r, cfg: cfg.withDefaults()}
}

func (b *binaryReader) Reading() bool { return true }

func (b *binaryReader) Open() error {
	if err := b.begin(); err != nil {
		return err
	}
	if !b.cfg.Markers {
		return nil
	}
	n, err := b.readMarker()
	if err != nil {
		return errors.Wrap(err, "reading leading record marker")
	}
	b.declared = n
	return nil
}

func (b *binaryReader) Close() error {
	if err := b.end(); err != nil {
		return err
	}
	if !b.cfg.Markers {
		return nil
	}
	trailing, err := b.readMarker()
	if err != nil {
		return errors.Wrap(err, "reading trailing record marker")
	}
	if trailing != b.declared || b.count != int(b.declared) {
		return newBoundaryMismatch(b.declared, trailing, b.count)
	}
	return nil
}

func (b *binaryReader) readMarker() (int32, error) {
	if _, err := io.ReadFull(b.r, b.buf[:MarkerSize]); err != nil {
		return 0, err
	}
	return int32(b.cfg.ByteOrder.Uint32(b.buf[:MarkerSize])), nil
}

// read consumes exactly n bytes of payload.
func (b *binaryReader) read(p []byte, kind string) error {
	if err := b.ready(); err != nil {
		return err
	}
	if _, err := io.ReadFull(b.r, p); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return errors.Wrapf(err, "reading %s at record byte %d", kind, b.count)
	}
	b.count += len(p)
	return nil
}

func (b *binaryReader) RWInt(int32) (int32, error) {
	if err := b.read(b.buf[:IntSize], "int"); err != nil {
		return 0, err
	}
	return int32(b.cfg.ByteOrder.Uint32(b.buf[:IntSize])), nil
}

func (b *binaryReader) RWLong(int64) (int64, error) {
	if err := b.read(b.buf[:LongSize], "long"); err != nil {
		return 0, err
	}
	return int64(b.cfg.ByteOrder.Uint64(b.buf[:LongSize])), nil
}

func (b *binaryReader) RWFloat(float32) (float32, error) {
	if err := b.read(b.buf[:FloatSize], "float"); err != nil {
		return 0, err
	}
	return math.Float32frombits(b.cfg.ByteOrder.Uint32(b.buf[:FloatSize])), nil
}

func (b *binaryReader) RWDouble(float64) (float64, error) {
	if err := b.read(b.buf[:DoubleSize], "double"); err != nil {
		return 0, err
	}
	return math.Float64frombits(b.cfg.ByteOrder.Uint64(b.buf[:DoubleSize])), nil
}

func (b *binaryReader) RWString(_ string, width int) (string, error) {
	if width < 0 {
		return "", errors.Newf("negative string width %d", width)
	}
	p := make([]byte, width)
	if err := b.read(p, "string"); err != nil {
		return "", err
	}
	return strings.TrimRightFunc(string(p), unicode.IsSpace), nil
}

// binaryWriter accumulates one record and emits it on Close.
type binaryWriter struct {
	session
	w       io.Writer
	cfg     Config
	buf     [8]byte
	payload bytes.Buffer
}

// NewBinaryWriter returns a Record that encodes one record onto w.
// Nothing reaches w until Close.
func NewBinaryWriter(w io.Writer, cfg Config) Record {
	return &binaryWriter{w: w, cfg: cfg.withDefaults()}
}

func (b *binaryWriter) Reading() bool { return false }

func (b *binaryWriter) Open() error {
	if err := b.begin(); err != nil {
		return err
	}
	b.payload.Reset()
	return nil
}

func (b *binaryWriter) Close() error {
	if err := b.end(); err != nil {
		return err
	}
	defer b.payload.Reset()

	if !b.cfg.Markers {
		return writeChunked(b.w, b.payload.Bytes(), b.cfg.ChunkSize)
	}
	if b.count > math.MaxInt32 {
		return errors.Wrapf(ErrRecordTooLarge, "%d bytes", b.count)
	}

	b.cfg.ByteOrder.PutUint32(b.buf[:MarkerSize], uint32(b.count))
	marker := b.buf[:MarkerSize]
	if _, err := b.w.Write(marker); err != nil {
		return errors.Wrap(err, "writing leading record marker")
	}
	if err := writeChunked(b.w, b.payload.Bytes(), b.cfg.ChunkSize); err != nil {
		return errors.Wrap(err, "writing record payload")
	}
	if _, err := b.w.Write(marker); err != nil {
		return errors.Wrap(err, "writing trailing record marker")
	}
	return nil
}

func (b *binaryWriter) write(p []byte) error {
	if err := b.ready(); err != nil {
		return err
	}
	b.payload.Write(p)
	b.count += len(p)
	return nil
}

func (b *binaryWriter) RWInt(v int32) (int32, error) {
	b.cfg.ByteOrder.PutUint32(b.buf[:IntSize], uint32(v))
	return v, b.write(b.buf[:IntSize])
}

func (b *binaryWriter) RWLong(v int64) (int64, error) {
	b.cfg.ByteOrder.PutUint64(b.buf[:LongSize], uint64(v))
	return v, b.write(b.buf[:LongSize])
}

func (b *binaryWriter) RWFloat(v float32) (float32, error) {
	b.cfg.ByteOrder.PutUint32(b.buf[:FloatSize], math.Float32bits(v))
	return v, b.write(b.buf[:FloatSize])
}

func (b *binaryWriter) RWDouble(v float64) (float64, error) {
	b.cfg.ByteOrder.PutUint64(b.buf[:DoubleSize], math.Float64bits(v))
	return v, b.write(b.buf[:DoubleSize])
}

func (b *binaryWriter) RWString(v string, width int) (string, error) {
	padded, err := padString(v, width)
	if err != nil {
		return v, err
	}
	return v, b.write([]byte(padded))
}

// padString left-justifies v in a field of width bytes.
func padString(v string, width int) (string, error) {
	if width < 0 {
		return "", errors.Newf("negative string width %d", width)
	}
	if len(v) > width {
		return "", errors.Wrapf(ErrStringTooLong, "%q does not fit in %d", v, width)
	}
	return v + strings.Repeat(" ", width-len(v)), nil
}

var (
	_ Record = (*binaryReader)(nil)
	_ Record = (*binaryWriter)(nil)
)
