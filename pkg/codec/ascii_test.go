package codec

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeASCII(t *testing.T, cfg Config, fn func(Record) error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Scoped(NewASCIIWriter(&buf, cfg), fn))
	return buf.String()
}

func TestASCIIFieldLayout(t *testing.T) {
	line := writeASCII(t, DefaultConfig(), func(rec Record) error {
		_, _ = rec.RWInt(42)
		_, _ = rec.RWFloat(1.5)
		_, err := rec.RWString("U235", 6)
		return err
	})

	payload := "         +42" + "  +1.50000000E+00" + " U235  "
	marker := "         +36"
	assert.Equal(t, marker+payload+marker+"\n", line)
	assert.Len(t, payload, 36)
}

func TestASCIIScalarRoundTrip(t *testing.T) {
	text := writeASCII(t, DefaultConfig(), func(rec Record) error {
		_, _ = rec.RWInt(math.MinInt32)
		_, _ = rec.RWLong(math.MinInt64)
		_, _ = rec.RWFloat(float32(math.Pi))
		_, _ = rec.RWFloat(-1e-38)
		_, _ = rec.RWDouble(6.02214076e23)
		_, _ = rec.RWDouble(1e-300)
		_, _ = RWBool(rec, false)
		_, err := rec.RWString("LFP35", 6)
		return err
	})

	rec := NewASCIIReader(strings.NewReader(text), DefaultConfig())
	require.NoError(t, rec.Open())

	i, err := rec.RWInt(0)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), i)

	l, err := rec.RWLong(0)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), l)

	f, err := rec.RWFloat(0)
	require.NoError(t, err)
	assert.Equal(t, float32(math.Pi), f)

	f, err = rec.RWFloat(0)
	require.NoError(t, err)
	assert.Equal(t, float32(-1e-38), f)

	d, err := rec.RWDouble(0)
	require.NoError(t, err)
	assert.InEpsilon(t, 6.02214076e23, d, 1e-8)

	d, err = rec.RWDouble(0)
	require.NoError(t, err)
	assert.InEpsilon(t, 1e-300, d, 1e-8)

	b, err := RWBool(rec, true)
	require.NoError(t, err)
	assert.False(t, b)

	s, err := rec.RWString("", 6)
	require.NoError(t, err)
	assert.Equal(t, "LFP35", s)

	require.NoError(t, rec.Close())
}

func TestASCIIDoubleKeepsTextPrecision(t *testing.T) {
	const v = 0.1234567890123
	text := writeASCII(t, DefaultConfig(), func(rec Record) error {
		_, err := rec.RWDouble(v)
		return err
	})

	var got float64
	require.NoError(t, Scoped(NewASCIIReader(strings.NewReader(text), DefaultConfig()), func(rec Record) error {
		var err error
		got, err = rec.RWDouble(0)
		return err
	}))
	assert.Equal(t, 0.123456789, got)
}

func TestASCIIBoundarySymmetry(t *testing.T) {
	text := writeASCII(t, DefaultConfig(), func(rec Record) error {
		_, err := RWList(rec, []string{"A", "BB", "CCC"}, 3, 8)
		return err
	})

	line := strings.TrimSuffix(text, "\n")
	leading := strings.TrimSpace(line[:ASCIIIntWidth])
	trailing := strings.TrimSpace(line[len(line)-ASCIIIntWidth:])
	assert.Equal(t, leading, trailing)
	assert.Equal(t, "+27", leading)
	assert.Len(t, line, 2*ASCIIIntWidth+27)
}

func TestASCIICRLF(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []int32{1, 2} {
		require.NoError(t, Scoped(NewASCIIWriter(&buf, DefaultConfig()), func(rec Record) error {
			_, err := rec.RWInt(v)
			return err
		}))
	}
	text := strings.ReplaceAll(buf.String(), "\n", "\r\n")

	r := strings.NewReader(text)
	for _, want := range []int32{1, 2} {
		var got int32
		require.NoError(t, Scoped(NewASCIIReader(r, DefaultConfig()), func(rec Record) error {
			var err error
			got, err = rec.RWInt(0)
			return err
		}))
		assert.Equal(t, want, got)
	}
	assert.Zero(t, r.Len())
}

func TestASCIICorruptTrailingMarker(t *testing.T) {
	text := writeASCII(t, DefaultConfig(), func(rec Record) error {
		_, err := rec.RWInt(3)
		return err
	})
	line := strings.TrimSuffix(text, "\n")
	corrupt := line[:len(line)-ASCIIIntWidth] + "         +13\n"

	err := Scoped(NewASCIIReader(strings.NewReader(corrupt), DefaultConfig()), func(rec Record) error {
		_, err := rec.RWInt(0)
		return err
	})
	require.Error(t, err)

	var mismatch *BoundaryMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, int32(12), mismatch.Leading)
	assert.Equal(t, int32(13), mismatch.Trailing)
}

func TestASCIIInvalidField(t *testing.T) {
	text := "         +12" + "       hello" + "         +12\n"
	err := Scoped(NewASCIIReader(strings.NewReader(text), DefaultConfig()), func(rec Record) error {
		_, err := rec.RWInt(0)
		return err
	})
	assert.True(t, errors.Is(err, ErrInvalidField))
}

func TestASCIIWithoutMarkers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = false

	text := writeASCII(t, cfg, func(rec Record) error {
		_, err := rec.RWInt(-8)
		return err
	})
	assert.Equal(t, "          -8\n", text)

	var got int32
	require.NoError(t, Scoped(NewASCIIReader(strings.NewReader(text), cfg), func(rec Record) error {
		var err error
		got, err = rec.RWInt(0)
		return err
	}))
	assert.Equal(t, int32(-8), got)
}

func TestASCIINaN(t *testing.T) {
	text := writeASCII(t, DefaultConfig(), func(rec Record) error {
		_, err := rec.RWFloat(float32(math.NaN()))
		return err
	})

	var got float32
	require.NoError(t, Scoped(NewASCIIReader(strings.NewReader(text), DefaultConfig()), func(rec Record) error {
		var err error
		got, err = rec.RWFloat(0)
		return err
	}))
	assert.True(t, math.IsNaN(float64(got)))
}
