// Package cccc manages sessions over CCCC files: sequences of boundary-marked
// records in the binary or ASCII encoding of package codec.
//
// A File owns the OS handle and hands out records one at a time:
//
//	f, err := cccc.OpenFile("isotxs", cccc.ModeReadBinary)
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	err = f.Record(func(rec codec.Record) error {
//		name, err = rec.RWString("", 8)
//		return err
//	})
//
// A Format describes a whole file once and is used for both directions through
// ReadBinary, ReadASCII, WriteBinary and WriteASCII. Symmetric adapts a single
// read/write function into a Format.
//
// Write sessions can be made atomic with WithAtomicWrite: output goes to a
// temporary sibling that replaces the target only when the session closes
// cleanly. Read sessions support random access with SeekRecord, backed by an
// index.Store when one is configured with WithIndex.
package cccc
