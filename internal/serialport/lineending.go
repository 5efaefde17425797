// internal/serialport/lineending.go
package serialport

import (
	"fmt"
	"strings"
)

// LineEnding selects the terminator appended to outbound user input
type LineEnding string

const (
	LineEndingNone LineEnding = "none"
	LineEndingLF   LineEnding = "lf"
	LineEndingCR   LineEnding = "cr"
	LineEndingCRLF LineEnding = "crlf"
)

// LineEndings lists the recognised options in display order
var LineEndings = []LineEnding{LineEndingNone, LineEndingLF, LineEndingCR, LineEndingCRLF}

// ParseLineEnding accepts option names as well as literal and escaped terminators
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return LineEndingNone, nil
	case "lf", "\n", `\n`:
		return LineEndingLF, nil
	case "cr", "\r", `\r`:
		return LineEndingCR, nil
	case "crlf", "\r\n", `\r\n`:
		return LineEndingCRLF, nil
	default:
		return "", fmt.Errorf("unknown line ending %q", s)
	}
}

// Bytes returns the terminator bytes
func (e LineEnding) Bytes() []byte {
	switch e {
	case LineEndingLF:
		return []byte("\n")
	case LineEndingCR:
		return []byte("\r")
	case LineEndingCRLF:
		return []byte("\r\n")
	default:
		return nil
	}
}

// Append returns a new slice holding payload followed by the terminator
func (e LineEnding) Append(payload []byte) []byte {
	term := e.Bytes()
	out := make([]byte, 0, len(payload)+len(term))
	out = append(out, payload...)
	return append(out, term...)
}
