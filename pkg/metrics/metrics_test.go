package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRecord("write-binary", 128, true)
	m.ObserveRecord("write-binary", 64, true)
	m.ObserveRecord("read-binary", 0, false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsTotal.WithLabelValues("write-binary", statusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsTotal.WithLabelValues("read-binary", statusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.recordBytes))
}

func TestFileLifecycle(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.FileOpened(time.Millisecond)
	m.FileOpened(time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.filesOpen))

	m.FileClosed(time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesOpen))

	m.ObserveBoundaryMismatch()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.boundaryMismatches))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRecord("read-ascii", 1, true)
		m.ObserveBoundaryMismatch()
		m.FileOpened(0)
		m.FileClosed(0)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRecord("read-ascii", 10, true)

	path := filepath.Join(t.TempDir(), "cccc.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cccc_records_total{mode="read-ascii",status="success"} 1`)
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
