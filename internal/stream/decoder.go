// internal/stream/decoder.go
package stream

import (
	"fmt"
	"strings"
)

// LineDecoder splits a byte stream into LF-terminated lines. Carriage
// returns are dropped and text after the last LF is carried into the next
// Feed, so the output does not depend on how the stream was chunked.
type LineDecoder struct {
	text  TextDecoder
	carry string
}

// NewLineDecoder creates a decoder. A nil TextDecoder means strict UTF-8.
func NewLineDecoder(text TextDecoder) *LineDecoder {
	if text == nil {
		text = utf8Decoder{}
	}
	return &LineDecoder{text: text}
}

// Feed decodes chunk and returns the lines it completes. A chunk that cannot
// be decoded is dropped whole and the carry is left untouched.
func (d *LineDecoder) Feed(chunk []byte) ([]string, error) {
	s, err := d.text.Decode(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}

	s = strings.ReplaceAll(s, "\r", "")
	if !strings.Contains(s, "\n") {
		d.carry += s
		return nil, nil
	}

	parts := strings.Split(d.carry+s, "\n")
	d.carry = parts[len(parts)-1]
	return parts[:len(parts)-1], nil
}

// Reset discards the carry
func (d *LineDecoder) Reset() {
	d.carry = ""
}

// Carry returns the incomplete trailing line
func (d *LineDecoder) Carry() string {
	return d.carry
}
