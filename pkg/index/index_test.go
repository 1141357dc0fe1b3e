package index

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/cccc/pkg/codec"
)

// writeRecords encodes one record per entry of sizes, each holding that many
// ints.
func writeRecords(t *testing.T, ascii bool, order binary.ByteOrder, sizes ...int) []byte {
	t.Helper()
	var buf bytes.Buffer
	cfg := codec.DefaultConfig()
	cfg.ByteOrder = order

	for _, n := range sizes {
		rec := codec.NewBinaryWriter(&buf, cfg)
		if ascii {
			rec = codec.NewASCIIWriter(&buf, cfg)
		}
		require.NoError(t, codec.Scoped(rec, func(rec codec.Record) error {
			_, err := codec.RWList(rec, make([]int32, n), n, 0)
			return err
		}))
	}
	return buf.Bytes()
}

func TestScanBinary(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		data := writeRecords(t, false, order, 1, 0, 3)

		entries, err := ScanBinary(bytes.NewReader(data), order)
		require.NoError(t, err)
		assert.Equal(t, []Entry{
			{Number: 0, Offset: 0, Length: 4},
			{Number: 1, Offset: 12, Length: 0},
			{Number: 2, Offset: 20, Length: 12},
		}, entries)
		assert.Equal(t, int64(len(data)), entries[2].End(Layout{ByteOrder: order}))
	}
}

func TestScanBinaryEmpty(t *testing.T) {
	entries, err := ScanBinary(bytes.NewReader(nil), nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestScanBinaryCorrupt(t *testing.T) {
	data := writeRecords(t, false, binary.LittleEndian, 2, 2)
	binary.LittleEndian.PutUint32(data[len(data)-4:], 7)

	entries, err := ScanBinary(bytes.NewReader(data), binary.LittleEndian)
	assert.Len(t, entries, 1)
	require.Error(t, err)

	var mismatch *codec.BoundaryMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, int32(8), mismatch.Leading)
	assert.Equal(t, int32(7), mismatch.Trailing)
	assert.Contains(t, err.Error(), "record 1")
}

func TestScanBinaryTruncated(t *testing.T) {
	data := writeRecords(t, false, binary.LittleEndian, 4)

	_, err := ScanBinary(bytes.NewReader(data[:10]), binary.LittleEndian)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, err = ScanBinary(bytes.NewReader(data[:2]), binary.LittleEndian)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestScanBinaryNegativeMarker(t *testing.T) {
	data := []byte{0xff, 0xff, 0xff, 0xff}
	_, err := ScanBinary(bytes.NewReader(data), binary.LittleEndian)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestScanASCII(t *testing.T) {
	data := writeRecords(t, true, nil, 2, 0, 1)

	entries, err := ScanASCII(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Number: 0, Offset: 0, Length: 24},
		{Number: 1, Offset: 49, Length: 0},
		{Number: 2, Offset: 74, Length: 12},
	}, entries)
	assert.Equal(t, int64(len(data)), entries[2].End(Layout{ASCII: true}))

	crlf := strings.ReplaceAll(string(data), "\n", "\r\n")
	entries, err = ScanASCII(strings.NewReader(crlf))
	require.NoError(t, err)
	assert.Equal(t, int64(50), entries[1].Offset)
}

func TestScanASCIIMalformed(t *testing.T) {
	_, err := ScanASCII(strings.NewReader("short\n"))
	assert.True(t, errors.Is(err, ErrMalformed))

	line := "          +4" + "   1" + "          +5\n"
	_, err = ScanASCII(strings.NewReader(line))
	assert.True(t, errors.Is(err, codec.ErrBoundaryMismatch))
}

func TestScanASCIILineBreakInPayload(t *testing.T) {
	var buf bytes.Buffer
	for _, name := range []string{"A\nB", "CD"} {
		require.NoError(t, codec.Scoped(codec.NewASCIIWriter(&buf, codec.DefaultConfig()), func(rec codec.Record) error {
			_, err := rec.RWString(name, 4)
			return err
		}))
	}

	entries, err := ScanASCII(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Number: 0, Offset: 0, Length: 5},
		{Number: 1, Offset: 30, Length: 5},
	}, entries)
}

func TestScanASCIITruncated(t *testing.T) {
	data := writeRecords(t, true, nil, 2)

	_, err := ScanASCII(bytes.NewReader(data[:20]))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, err = ScanASCII(bytes.NewReader(data[:len(data)-5]))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	entries, err := ScanASCII(bytes.NewReader(data[:len(data)-1]))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLayoutString(t *testing.T) {
	assert.Equal(t, "ascii", Layout{ASCII: true}.String())
	assert.Equal(t, "binary-little", Layout{}.String())
	assert.Equal(t, "binary-big", Layout{ByteOrder: binary.BigEndian}.String())
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "index"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorePutGet(t *testing.T) {
	s := newTestStore(t)
	fp := Fingerprint{Layout: "binary-little", Size: 40, ModTime: 123}
	entries := []Entry{{Number: 0, Offset: 0, Length: 4}, {Number: 1, Offset: 12, Length: 20}}

	_, err := s.Get("flux.bin", fp)
	assert.True(t, errors.Is(err, ErrNotIndexed))

	require.NoError(t, s.Put("flux.bin", fp, entries))
	got, err := s.Get("flux.bin", fp)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	stale := fp
	stale.Size = 41
	_, err = s.Get("flux.bin", stale)
	assert.True(t, errors.Is(err, ErrNotIndexed))

	require.NoError(t, s.Delete("flux.bin"))
	_, err = s.Get("flux.bin", fp)
	assert.True(t, errors.Is(err, ErrNotIndexed))
}

func TestStoreTOCRescansChangedFiles(t *testing.T) {
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "data.bin")
	layout := Layout{ByteOrder: binary.LittleEndian}

	require.NoError(t, os.WriteFile(path, writeRecords(t, false, binary.LittleEndian, 1, 2), 0o600))
	entries, err := s.TOC(path, layout)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	fp, err := FingerprintOf(path, layout)
	require.NoError(t, err)
	cached, err := s.Get(path, fp)
	require.NoError(t, err)
	assert.Equal(t, entries, cached)

	require.NoError(t, os.WriteFile(path, writeRecords(t, false, binary.LittleEndian, 1, 2, 3), 0o600))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	entries, err = s.TOC(path, layout)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestFileScanner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, writeRecords(t, true, nil, 3), 0o600))

	entries, err := FileScanner{}.TOC(path, Layout{ASCII: true})
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Number: 0, Offset: 0, Length: 36}}, entries)

	_, err = FileScanner{}.TOC(filepath.Join(t.TempDir(), "missing"), Layout{})
	assert.Error(t, err)
}
