package index

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"

	"github.com/ssargent/cccc/pkg/codec"
	"github.com/ssargent/cccc/pkg/logging"
)

// ErrNotIndexed is returned when no current table of contents is cached for a
// file.
var ErrNotIndexed = errors.New("file not indexed")

const (
	keyPrefix   = "toc/"
	layoutWidth = 16
)

// Fingerprint identifies the version of a file a table of contents was built
// from.
type Fingerprint struct {
	Layout  string
	Size    int64
	ModTime int64 // unix nanoseconds
}

// FingerprintOf stats path.
func FingerprintOf(path string, layout Layout) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, errors.Wrap(err, "stat")
	}
	return Fingerprint{
		Layout:  layout.String(),
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
	}, nil
}

// Store caches tables of contents keyed by absolute file path.
type Store struct {
	db *pebble.DB
}

// OpenStore opens or creates the cache database in dir.
func OpenStore(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening index store at %s", dir)
	}
	return &Store{db: db}, nil
}

// TOC returns the table of contents for path, scanning and caching it when the
// cached copy is missing or stale.
func (s *Store) TOC(path string, layout Layout) ([]Entry, error) {
	fp, err := FingerprintOf(path, layout)
	if err != nil {
		return nil, err
	}

	entries, err := s.Get(path, fp)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, ErrNotIndexed) {
		return nil, err
	}

	log := logging.Logger()
	log.Debug().Str("path", path).Str("layout", fp.Layout).Msg("scanning file for index")

	entries, err = ScanFile(path, layout)
	if err != nil {
		return nil, err
	}
	if err := s.Put(path, fp, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Get returns the cached entries for path if they were built from fp.
func (s *Store) Get(path string, fp Fingerprint) ([]Entry, error) {
	key, err := storeKey(path)
	if err != nil {
		return nil, err
	}

	data, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrNotIndexed, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading index store")
	}
	defer closer.Close()

	stored, entries, err := decodeTOC(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding index for %s", path)
	}
	if stored != fp {
		return nil, errors.Wrapf(ErrNotIndexed, "%s changed since it was indexed", path)
	}
	return entries, nil
}

// Put stores entries for path.
func (s *Store) Put(path string, fp Fingerprint, entries []Entry) error {
	key, err := storeKey(path)
	if err != nil {
		return err
	}
	data, err := encodeTOC(fp, entries)
	if err != nil {
		return err
	}
	return errors.Wrap(s.db.Set(key, data, pebble.Sync), "writing index store")
}

// Delete drops the cached entries for path.
func (s *Store) Delete(path string) error {
	key, err := storeKey(path)
	if err != nil {
		return err
	}
	return errors.Wrap(s.db.Delete(key, pebble.Sync), "deleting from index store")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func storeKey(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolving path")
	}
	return []byte(keyPrefix + abs), nil
}

// encodeTOC stores a table of contents as two little-endian CCCC records: a
// header and the parallel offset and length lists.
func encodeTOC(fp Fingerprint, entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	cfg := codec.DefaultConfig()

	err := codec.Scoped(codec.NewBinaryWriter(&buf, cfg), func(rec codec.Record) error {
		if _, err := rec.RWString(fp.Layout, layoutWidth); err != nil {
			return err
		}
		if _, err := rec.RWLong(fp.Size); err != nil {
			return err
		}
		if _, err := rec.RWLong(fp.ModTime); err != nil {
			return err
		}
		_, err := rec.RWInt(int32(len(entries)))
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding index header")
	}

	offsets := make([]int64, len(entries))
	lengths := make([]int32, len(entries))
	for i, e := range entries {
		offsets[i] = e.Offset
		lengths[i] = e.Length
	}
	err = codec.Scoped(codec.NewBinaryWriter(&buf, cfg), func(rec codec.Record) error {
		if _, err := codec.RWList(rec, offsets, len(offsets), 0); err != nil {
			return err
		}
		_, err := codec.RWList(rec, lengths, len(lengths), 0)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding index entries")
	}
	return buf.Bytes(), nil
}

func decodeTOC(data []byte) (Fingerprint, []Entry, error) {
	var (
		fp    Fingerprint
		count int32
	)
	r := bytes.NewReader(data)
	cfg := codec.DefaultConfig()

	err := codec.Scoped(codec.NewBinaryReader(r, cfg), func(rec codec.Record) error {
		var err error
		if fp.Layout, err = rec.RWString("", layoutWidth); err != nil {
			return err
		}
		if fp.Size, err = rec.RWLong(0); err != nil {
			return err
		}
		if fp.ModTime, err = rec.RWLong(0); err != nil {
			return err
		}
		count, err = rec.RWInt(0)
		return err
	})
	if err != nil {
		return fp, nil, err
	}

	var (
		offsets []int64
		lengths []int32
	)
	err = codec.Scoped(codec.NewBinaryReader(r, cfg), func(rec codec.Record) error {
		var err error
		if offsets, err = codec.RWList[int64](rec, nil, int(count), 0); err != nil {
			return err
		}
		lengths, err = codec.RWList[int32](rec, nil, int(count), 0)
		return err
	})
	if err != nil {
		return fp, nil, err
	}

	entries := make([]Entry, count)
	for i := range entries {
		entries[i] = Entry{Number: i, Offset: offsets[i], Length: lengths[i]}
	}
	return fp, entries, nil
}

// FileScanner builds tables of contents without caching.
type FileScanner struct{}

func (FileScanner) TOC(path string, layout Layout) ([]Entry, error) {
	return ScanFile(path, layout)
}
