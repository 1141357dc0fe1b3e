package cccc

import (
	"encoding/binary"

	"github.com/rs/zerolog"

	"github.com/ssargent/cccc/pkg/codec"
	"github.com/ssargent/cccc/pkg/index"
	"github.com/ssargent/cccc/pkg/metrics"
)

const defaultBufferSize = 64 * 1024

// TOCSource supplies record tables of contents for random access.
type TOCSource interface {
	TOC(path string, layout index.Layout) ([]index.Entry, error)
}

type options struct {
	byteOrder  binary.ByteOrder
	chunkSize  int
	bufferSize int
	atomic     bool
	metrics    *metrics.Metrics
	toc        TOCSource
	logger     *zerolog.Logger
}

func defaultOptions() options {
	return options{
		byteOrder:  binary.LittleEndian,
		chunkSize:  codec.DefaultChunkSize,
		bufferSize: defaultBufferSize,
		toc:        index.FileScanner{},
	}
}

// Option configures a File.
type Option func(*options)

// WithByteOrder sets the byte order of binary records.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.byteOrder = order
		}
	}
}

// WithChunkSize bounds the size of each write issued for a record payload.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithBufferSize sets the size of the file's I/O buffer.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithAtomicWrite makes write sessions write to a temporary file that replaces
// the target only when the session closes.
func WithAtomicWrite(enabled bool) Option {
	return func(o *options) { o.atomic = enabled }
}

// WithMetrics records per-record and per-file metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithIndex sets where SeekRecord finds record offsets, typically an
// *index.Store.
func WithIndex(src TOCSource) Option {
	return func(o *options) {
		if src != nil {
			o.toc = src
		}
	}
}

// WithLogger overrides the package logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

type recordOptions struct {
	markers bool
}

// RecordOption configures a single record.
type RecordOption func(*recordOptions)

// WithoutBoundaries omits the leading and trailing markers.
func WithoutBoundaries() RecordOption {
	return func(o *recordOptions) { o.markers = false }
}
