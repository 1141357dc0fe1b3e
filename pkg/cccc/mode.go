package cccc

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Mode selects the direction and encoding of a file session.
type Mode int

const (
	ModeReadBinary Mode = iota
	ModeWriteBinary
	ModeReadASCII
	ModeWriteASCII
)

var modeNames = map[Mode]string{
	ModeReadBinary:  "read-binary",
	ModeWriteBinary: "write-binary",
	ModeReadASCII:   "read-ascii",
	ModeWriteASCII:  "write-ascii",
}

var modeAliases = map[string]Mode{
	"rb": ModeReadBinary,
	"wb": ModeWriteBinary,
	"rt": ModeReadASCII,
	"r":  ModeReadASCII,
	"wt": ModeWriteASCII,
	"w":  ModeWriteASCII,
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Reading reports whether the mode decodes from the file.
func (m Mode) Reading() bool {
	return m == ModeReadBinary || m == ModeReadASCII
}

// Binary reports whether the mode uses the binary encoding.
func (m Mode) Binary() bool {
	return m == ModeReadBinary || m == ModeWriteBinary
}

func (m Mode) valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts the long mode names and the short forms rb, wb, rt, wt, r
// and w.
func ParseMode(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if m, ok := modeAliases[key]; ok {
		return m, nil
	}
	for m, name := range modeNames {
		if name == key {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidMode, "%q is not one of %s", s, allowedModes)
}

const allowedModes = "rb, wb, rt, wt, r, w, read-binary, write-binary, read-ascii, write-ascii"
