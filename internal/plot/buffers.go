// internal/plot/buffers.go
package plot

import (
	"fmt"

	"serial-plotter/internal/syncutil"
)

// MissingPolicy decides what a channel does when its field on a line is
// present but not a number
type MissingPolicy string

const (
	// PolicyHold advances x and repeats the previous value so x and y stay paired
	PolicyHold MissingPolicy = "hold"
	// PolicySkip leaves the channel untouched for that line
	PolicySkip MissingPolicy = "skip"
)

// ParseMissingPolicy validates a policy name. Empty means hold.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch MissingPolicy(s) {
	case "", PolicyHold:
		return PolicyHold, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown missing value policy %q", s)
	}
}

// Buffers holds one RingBuffer per channel. Writers are the session dispatch
// goroutine; readers are HTTP and WebSocket handlers.
type Buffers struct {
	mu    syncutil.RWMutex
	rings []*RingBuffer
	size  int
}

// NewBuffers creates channels buffers of size points each
func NewBuffers(channels, size int) *Buffers {
	size = max(size, 1)
	rings := make([]*RingBuffer, channels)
	for i := range rings {
		rings[i] = NewRingBuffer(size)
	}
	return &Buffers{rings: rings, size: size}
}

// Channels returns the number of channels
func (b *Buffers) Channels() int {
	return len(b.rings)
}

// Capacity returns the number of points per channel
func (b *Buffers) Capacity() int {
	return b.size
}

// Advance scrolls channel ch by one
func (b *Buffers) Advance(ch int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rings[ch].Advance()
}

// Push appends v to channel ch
func (b *Buffers) Push(ch int, v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rings[ch].Push(v)
}

// Step records one line's field for channel ch. ok is false when the field
// was malformed. It reports whether the buffer changed: under PolicyHold a
// malformed field repeats the last value and still reports a change, so
// the caller offers it to the rate limiter like any other sample.
func (b *Buffers) Step(ch int, v float64, ok bool, policy MissingPolicy) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := b.rings[ch]
	if !ok {
		if policy == PolicySkip {
			return false
		}
		v = r.Last()
	}
	r.Advance()
	r.Push(v)
	return true
}

// Snapshot copies channel ch
func (b *Buffers) Snapshot(ch int) (Snapshot, error) {
	if ch < 0 || ch >= len(b.rings) {
		return Snapshot{}, fmt.Errorf("channel %d out of range [0, %d)", ch, len(b.rings))
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rings[ch].Snapshot(ch), nil
}

// Snapshots copies every channel
func (b *Buffers) Snapshots() []Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Snapshot, len(b.rings))
	for i, r := range b.rings {
		out[i] = r.Snapshot(i)
	}
	return out
}

// Reset clears every channel
func (b *Buffers) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.rings {
		r.Reset()
	}
}
