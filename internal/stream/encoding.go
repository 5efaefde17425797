// internal/stream/encoding.go
package stream

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultEncoding is strict UTF-8
const DefaultEncoding = "utf-8"

// ErrUndecodable marks a chunk that was dropped because it is not valid text
var ErrUndecodable = errors.New("chunk is not valid text")

// TextDecoder turns one chunk of raw bytes into text
type TextDecoder interface {
	Decode(b []byte) (string, error)
}

type utf8Decoder struct{}

func (utf8Decoder) Decode(b []byte) (string, error) {
	out, _, err := transform.Bytes(encoding.UTF8Validator, b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type indexDecoder struct {
	name string
	dec  func([]byte) ([]byte, error)
}

func (d indexDecoder) Decode(b []byte) (string, error) {
	out, err := d.dec(b)
	if err != nil {
		return "", fmt.Errorf("%s: %w", d.name, err)
	}
	return string(out), nil
}

// NewTextDecoder returns a decoder for a WHATWG encoding label such as
// "utf-8", "latin1" or "windows-1252". UTF-8 is validated strictly.
func NewTextDecoder(name string) (TextDecoder, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" || label == "utf-8" || label == "utf8" {
		return utf8Decoder{}, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported text encoding %q: %w", name, err)
	}

	return indexDecoder{
		name: label,
		dec: func(b []byte) ([]byte, error) {
			return enc.NewDecoder().Bytes(b)
		},
	}, nil
}
