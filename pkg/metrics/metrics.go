// Package metrics exposes Prometheus instrumentation for CCCC file sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the collectors for record and file activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	recordsTotal       *prometheus.CounterVec
	recordBytes        *prometheus.HistogramVec
	boundaryMismatches prometheus.Counter

	filesOpen             prometheus.Gauge
	fileOperationDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		recordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cccc_records_total",
				Help: "Total number of records closed, by file mode and outcome",
			},
			[]string{"mode", "status"},
		),

		recordBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cccc_record_bytes",
				Help:    "Payload size of closed records in bytes or characters",
				Buckets: prometheus.ExponentialBuckets(16, 4, 10),
			},
			[]string{"mode"},
		),

		boundaryMismatches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cccc_boundary_mismatches_total",
				Help: "Total number of records whose length markers disagreed",
			},
		),

		filesOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "cccc_files_open",
				Help: "Number of CCCC file sessions currently holding a handle",
			},
		),

		fileOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cccc_file_operation_duration_seconds",
				Help:    "Duration of file open and close operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// ObserveRecord records a closed record.
func (m *Metrics) ObserveRecord(mode string, size int, success bool) {
	if m == nil {
		return
	}
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.recordsTotal.WithLabelValues(mode, status).Inc()
	if success {
		m.recordBytes.WithLabelValues(mode).Observe(float64(size))
	}
}

// ObserveBoundaryMismatch counts a record rejected for disagreeing markers.
func (m *Metrics) ObserveBoundaryMismatch() {
	if m == nil {
		return
	}
	m.boundaryMismatches.Inc()
}

// FileOpened records a handle acquisition that took d.
func (m *Metrics) FileOpened(d time.Duration) {
	if m == nil {
		return
	}
	m.filesOpen.Inc()
	m.fileOperationDuration.WithLabelValues("open").Observe(d.Seconds())
}

// FileClosed records a handle release that took d.
func (m *Metrics) FileClosed(d time.Duration) {
	if m == nil {
		return
	}
	m.filesOpen.Dec()
	m.fileOperationDuration.WithLabelValues("close").Observe(d.Seconds())
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
