package cccc

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/natefinch/atomic"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/cccc/pkg/codec"
	"github.com/ssargent/cccc/pkg/index"
	"github.com/ssargent/cccc/pkg/logging"
)

// File is a session over one CCCC file. It owns the OS handle between Open
// and Close and hands out one record at a time.
//
// A File is not safe for concurrent record I/O. Use Clone to give each
// goroutine its own session.
type File struct {
	path string
	mode Mode
	opts options
	id   ksuid.KSUID
	log  zerolog.Logger

	mu       sync.Mutex
	file     *os.File
	reader   *bufio.Reader
	writer   *bufio.Writer
	tmpPath  string
	active   *record
	closed   bool
	openedAt time.Time
	toc      []index.Entry
}

// NewFile describes a session without touching the filesystem. The mode is
// validated here so a bad mode never reaches I/O.
func NewFile(path string, mode Mode, opts ...Option) (*File, error) {
	if !mode.valid() {
		return nil, errors.Wrapf(ErrInvalidMode, "mode %d is not one of %s", int(mode), allowedModes)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newFile(path, mode, o), nil
}

func newFile(path string, mode Mode, o options) *File {
	base := o.logger
	if base == nil {
		base = logging.Logger()
	}
	id := ksuid.New()
	return &File{
		path: path,
		mode: mode,
		opts: o,
		id:   id,
		log: base.With().
			Str("session", id.String()).
			Str("path", path).
			Str("mode", mode.String()).
			Logger(),
	}
}

// OpenFile is NewFile followed by Open.
func OpenFile(path string, mode Mode, opts ...Option) (*File, error) {
	f, err := NewFile(path, mode, opts...)
	if err != nil {
		return nil, err
	}
	if err := f.Open(); err != nil {
		return nil, err
	}
	return f, nil
}

// Open acquires the OS handle: an existing file for reading, a truncated
// file for writing, or a temporary sibling when atomic writes are enabled.
func (f *File) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.file != nil {
		return errors.Newf("file %s is already open", f.path)
	}

	start := time.Now()
	file, err := f.openHandle()
	if err != nil {
		cwd, _ := os.Getwd()
		f.log.Error().Err(err).Str("cwd", cwd).Msg("failed to open CCCC file")
		return errors.Wrapf(err, "opening %s for %s (working directory %s)", f.path, f.mode, cwd)
	}

	f.file = file
	if f.mode.Reading() {
		f.reader = bufio.NewReaderSize(file, f.opts.bufferSize)
	} else {
		f.writer = bufio.NewWriterSize(file, f.opts.bufferSize)
	}
	f.openedAt = time.Now()
	f.opts.metrics.FileOpened(time.Since(start))
	f.log.Debug().Bool("atomic", f.tmpPath != "").Msg("opened CCCC file")
	return nil
}

func (f *File) openHandle() (*os.File, error) {
	switch {
	case f.mode.Reading():
		return os.Open(f.path)
	case f.opts.atomic:
		file, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+".tmp-*")
		if err != nil {
			return nil, err
		}
		if err := file.Chmod(0o644); err != nil {
			file.Close()
			os.Remove(file.Name())
			return nil, err
		}
		f.tmpPath = file.Name()
		return file, nil
	default:
		return os.Create(f.path)
	}
}

func (f *File) ready() error {
	if f.closed {
		return ErrClosed
	}
	if f.file == nil {
		return ErrNotOpen
	}
	return nil
}

// CreateRecord returns an unopened record positioned at the file's current
// offset. Only one record may be open on a file at a time.
func (f *File) CreateRecord(opts ...RecordOption) (codec.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ready(); err != nil {
		return nil, err
	}

	ro := recordOptions{markers: true}
	for _, opt := range opts {
		opt(&ro)
	}
	cfg := codec.Config{
		ByteOrder: f.opts.byteOrder,
		Markers:   ro.markers,
		ChunkSize: f.opts.chunkSize,
	}

	var rec codec.Record
	switch f.mode {
	case ModeReadBinary:
		rec = codec.NewBinaryReader(f.reader, cfg)
	case ModeWriteBinary:
		rec = codec.NewBinaryWriter(f.writer, cfg)
	case ModeReadASCII:
		rec = codec.NewASCIIReader(f.reader, cfg)
	case ModeWriteASCII:
		rec = codec.NewASCIIWriter(f.writer, cfg)
	}
	return &record{Record: rec, file: f}, nil
}

// Record runs fn inside a freshly created record that is closed on every exit
// path.
func (f *File) Record(fn func(codec.Record) error, opts ...RecordOption) error {
	rec, err := f.CreateRecord(opts...)
	if err != nil {
		return err
	}
	return codec.Scoped(rec, fn)
}

// Seek moves a read session to an absolute byte offset.
func (f *File) Seek(offset int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seek(offset)
}

func (f *File) seek(offset int64) error {
	if err := f.ready(); err != nil {
		return err
	}
	if !f.mode.Reading() {
		return errors.Wrapf(ErrWrongMode, "seek in %s", f.mode)
	}
	if f.active != nil {
		return ErrRecordInUse
	}
	if _, err := f.file.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seeking to %d", offset)
	}
	f.reader.Reset(f.file)
	return nil
}

// SeekRecord positions a read session at the leading marker of record n,
// counting from zero.
func (f *File) SeekRecord(n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, err := f.entry(n)
	if err != nil {
		return err
	}
	return f.seek(entry.Offset)
}

// Entry returns the location of record n in a read session. The table of
// contents comes from the configured index and is loaded once per session.
func (f *File) Entry(n int) (index.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entry(n)
}

func (f *File) entry(n int) (index.Entry, error) {
	if err := f.ready(); err != nil {
		return index.Entry{}, err
	}
	if !f.mode.Reading() {
		return index.Entry{}, errors.Wrapf(ErrWrongMode, "seek in %s", f.mode)
	}
	if f.toc == nil {
		toc, err := f.opts.toc.TOC(f.path, f.Layout())
		if err != nil {
			return index.Entry{}, errors.Wrap(err, "loading record index")
		}
		f.toc = toc
	}
	if n < 0 || n >= len(f.toc) {
		return index.Entry{}, errors.Newf("record %d out of range: %s has %d records", n, f.path, len(f.toc))
	}
	return f.toc[n], nil
}

// Flush writes buffered records to the OS.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return err
	}
	if f.writer == nil {
		return nil
	}
	return errors.Wrap(f.writer.Flush(), "flushing")
}

// Sync flushes and fsyncs a write session.
func (f *File) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ready(); err != nil {
		return err
	}
	if f.writer == nil {
		return nil
	}
	if err := f.writer.Flush(); err != nil {
		return errors.Wrap(err, "flushing")
	}
	return errors.Wrap(f.file.Sync(), "syncing")
}

// Close releases the handle. Records already closed are flushed and, for
// atomic sessions, moved over the target. Closing with a record still open
// drops that record, keeps the records before it in a plain write session,
// discards an atomic session's output and reports ErrRecordInUse.
// Close is idempotent.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	if f.file == nil {
		return nil
	}

	var err error
	if f.active != nil {
		f.log.Warn().Int("processed", f.active.Count()).Msg("closing CCCC file with an open record")
		err = errors.Wrap(ErrRecordInUse, "closing file")
		f.active = nil
	}
	return errors.CombineErrors(err, f.release(true, err == nil))
}

// Abort releases the handle and discards a write session's output.
func (f *File) Abort() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	f.active = nil
	if f.file == nil {
		return nil
	}

	partial := !f.mode.Reading() && f.tmpPath == ""
	err := f.release(false, false)
	if partial {
		if rmErr := os.Remove(f.path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = errors.CombineErrors(err, errors.Wrap(rmErr, "removing partial output"))
		}
	}
	f.log.Debug().Msg("aborted CCCC file")
	return err
}

// release closes the OS handle. With flush set, buffered output reaches the
// file; with commit set, an atomic temporary replaces the target.
func (f *File) release(flush, commit bool) error {
	var err error
	if f.writer != nil && flush {
		err = errors.Wrap(f.writer.Flush(), "flushing")
	}
	if closeErr := f.file.Close(); closeErr != nil {
		err = errors.CombineErrors(err, errors.Wrap(closeErr, "closing"))
	}

	if f.tmpPath != "" {
		if commit && err == nil {
			if replaceErr := atomic.ReplaceFile(f.tmpPath, f.path); replaceErr != nil {
				err = errors.Wrapf(replaceErr, "replacing %s", f.path)
				os.Remove(f.tmpPath)
			}
		} else {
			os.Remove(f.tmpPath)
		}
	}

	f.opts.metrics.FileClosed(time.Since(f.openedAt))
	if err != nil {
		f.log.Error().Err(err).Msg("failed to close CCCC file")
	} else {
		f.log.Debug().Bool("committed", commit).Msg("closed CCCC file")
	}

	f.file, f.reader, f.writer, f.tmpPath = nil, nil, nil, ""
	return err
}

// Clone returns an unopened session with the same path, mode and options and
// a new ID. The handle and position are not shared.
func (f *File) Clone() *File {
	return newFile(f.path, f.mode, f.opts)
}

// Path returns the target file path.
func (f *File) Path() string { return f.path }

// Mode returns the session's mode.
func (f *File) Mode() Mode { return f.mode }

// ID returns the session ID carried in the session's log lines.
func (f *File) ID() ksuid.KSUID { return f.id }

// IsOpen reports whether the session holds an OS handle.
func (f *File) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file != nil
}

// Layout describes the file's framing for the index package.
func (f *File) Layout() index.Layout {
	return index.Layout{ASCII: !f.mode.Binary(), ByteOrder: f.opts.byteOrder}
}

// record tracks the file's single open record and reports it to metrics.
type record struct {
	codec.Record
	file *File
}

func (r *record) Open() error {
	fresh, err := r.file.claim(r)
	if err != nil {
		return err
	}
	if err := r.Record.Open(); err != nil {
		if fresh {
			r.file.unclaim(r)
		}
		return err
	}
	return nil
}

func (r *record) Close() error {
	if err := r.file.held(); err != nil {
		return err
	}
	err := r.Record.Close()
	if errors.Is(err, codec.ErrRecordNotOpen) || errors.Is(err, codec.ErrRecordClosed) {
		return err
	}
	r.file.unclaim(r)
	r.file.observe(r.Count(), err)
	return err
}

func (f *File) claim(r *record) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ready(); err != nil {
		return false, err
	}
	switch f.active {
	case nil:
		f.active = r
		return true, nil
	case r:
		return false, nil
	default:
		return false, ErrRecordInUse
	}
}

// held fails when the file was closed or aborted under an open record, so
// the record's bytes cannot land in a released buffer.
func (f *File) held() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ready(); err != nil {
		return errors.Wrap(err, "closing record")
	}
	return nil
}

func (f *File) unclaim(r *record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == r {
		f.active = nil
	}
}

func (f *File) observe(size int, err error) {
	f.opts.metrics.ObserveRecord(f.mode.String(), size, err == nil)
	if errors.Is(err, codec.ErrBoundaryMismatch) {
		f.opts.metrics.ObserveBoundaryMismatch()
	}
	if err != nil {
		f.log.Warn().Err(err).Int("processed", size).Msg("CCCC record failed to close")
		return
	}
	f.log.Trace().Int("bytes", size).Msg("record closed")
}
