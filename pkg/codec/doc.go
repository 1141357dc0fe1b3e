// Package codec reads and writes the records of CCCC interchange files.
//
// A CCCC file is a sequence of records, each holding an ordered payload of
// typed values. The codec knows how values are laid out; it does not know which
// values a record holds. File formats built on top of it (cross-section
// libraries, flux files) call the same sequence of operations to read and to
// write a record.
//
// # Record Format
//
// Binary records mirror sequential Fortran unformatted files:
//
//	[N(4)][payload(N)][N(4)]
//
// Fields:
//   - N: 32-bit signed payload length in bytes, repeated at both ends
//   - int: 32-bit two's complement (4 bytes)
//   - long: 64-bit two's complement (8 bytes)
//   - float: IEEE-754 single precision (4 bytes)
//   - double: IEEE-754 double precision (8 bytes)
//   - string(w): w bytes, left-justified and space padded
//
// The byte order defaults to little-endian and is set through [Config].
//
// ASCII records carry the same values as fixed-width text, one record per line:
//
//	[N field][field...][N field]\n
//
// Every field starts with one space. Integers use a signed 11 character field,
// longs a signed 20 character field, floats and doubles a signed 16 character
// scientific field with eight decimals, strings their declared width. N counts
// payload characters. Doubles are written and read through the float field, so
// text files hold nine significant digits.
//
// Direct-access layouts have no markers; set Config.Markers to false.
//
// # Usage
//
// Every operation is symmetric: a reader ignores its argument and returns the
// decoded value, a writer encodes its argument and returns it unchanged. A
// format written once therefore serves both directions:
//
//	func rwHeader(rec codec.Record, h *Header) error {
//	    var err error
//	    if h.Name, err = rec.RWString(h.Name, 8); err != nil {
//	        return err
//	    }
//	    if h.Groups, err = rec.RWInt(h.Groups); err != nil {
//	        return err
//	    }
//	    h.Energies, err = codec.RWList(rec, h.Energies, int(h.Groups), 0)
//	    return err
//	}
//
//	err := codec.Scoped(codec.NewBinaryWriter(w, codec.DefaultConfig()), func(rec codec.Record) error {
//	    return rwHeader(rec, &header)
//	})
//
// # Matrices
//
// [RWMatrix] and [RWDoubleMatrix] take the shape in caller order, (rows, cols)
// for a 2-D matrix, and store cells column-major as Fortran does: the first
// index varies fastest in the stream.
//
// # Error Handling
//
// Closing a reader compares the trailing marker with the leading marker and
// with the bytes actually read. Any disagreement is a [*BoundaryMismatchError]
// carrying all three counts. [Scoped] always closes the record; a close failure
// after a failing body is reported as "failed to close record" with the body's
// error attached as a secondary error.
//
// # Thread Safety
//
// Records are not safe for concurrent use, and only one record may be open on a
// stream at a time.
package codec
