package cccc

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"rb", ModeReadBinary},
		{"wb", ModeWriteBinary},
		{"r", ModeReadASCII},
		{"rt", ModeReadASCII},
		{"w", ModeWriteASCII},
		{"WT", ModeWriteASCII},
		{"read-binary", ModeReadBinary},
		{" write-ascii ", ModeWriteASCII},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseModeInvalid(t *testing.T) {
	for _, in := range []string{"", "a", "rw", "binary"} {
		_, err := ParseMode(in)
		assert.True(t, errors.Is(err, ErrInvalidMode), in)
		assert.Contains(t, err.Error(), "rb, wb")
	}
}

func TestModeProperties(t *testing.T) {
	assert.True(t, ModeReadBinary.Reading())
	assert.True(t, ModeReadBinary.Binary())
	assert.False(t, ModeWriteASCII.Reading())
	assert.False(t, ModeWriteASCII.Binary())
	assert.Equal(t, "read-ascii", ModeReadASCII.String())
	assert.Equal(t, "unknown", Mode(-1).String())
}
