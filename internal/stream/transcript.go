// internal/stream/transcript.go
package stream

import (
	"fmt"
	"strings"

	"serial-plotter/internal/syncutil"
)

// DefaultMaxLines bounds the transcript unless configured otherwise
const DefaultMaxLines = 1000

// Transcript keeps the raw text received from the device for display. The
// last entry of lines is the line still being written.
type Transcript struct {
	mu       syncutil.RWMutex
	text     TextDecoder
	enabled  bool
	maxLines int
	lines    []string
}

// NewTranscript creates an enabled transcript. maxLines <= 0 keeps every line.
func NewTranscript(text TextDecoder, maxLines int) *Transcript {
	if text == nil {
		text = utf8Decoder{}
	}
	return &Transcript{
		text:     text,
		enabled:  true,
		maxLines: maxLines,
		lines:    []string{""},
	}
}

// Append decodes chunk and adds it to the transcript. It returns the text
// that was added, which is empty while the transcript is disabled.
func (t *Transcript) Append(chunk []byte) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.enabled {
		return "", nil
	}

	s, err := t.text.Decode(chunk)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	s = strings.ReplaceAll(s, "\r", "")

	parts := strings.Split(s, "\n")
	t.lines[len(t.lines)-1] += parts[0]
	t.lines = append(t.lines, parts[1:]...)
	t.trim()

	return s, nil
}

func (t *Transcript) trim() {
	if t.maxLines <= 0 {
		return
	}
	// The open line does not count until it is terminated
	if extra := len(t.lines) - 1 - t.maxLines; extra > 0 {
		t.lines = append([]string(nil), t.lines[extra:]...)
	}
}

// Text returns the transcript as one string
func (t *Transcript) Text() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return strings.Join(t.lines, "\n")
}

// Lines returns the completed lines followed by the open line, if any
func (t *Transcript) Lines() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := len(t.lines)
	if t.lines[n-1] == "" {
		n--
	}
	return append([]string(nil), t.lines[:n]...)
}

// Clear empties the transcript
func (t *Transcript) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines = []string{""}
}

// Enabled reports whether incoming text is recorded
func (t *Transcript) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetEnabled turns recording on or off. Existing text is kept.
func (t *Transcript) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// MaxLines returns the line limit
func (t *Transcript) MaxLines() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.maxLines
}

// SetMaxLines changes the line limit and trims immediately
func (t *Transcript) SetMaxLines(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maxLines = n
	t.trim()
}
