// internal/plot/ringbuffer.go
package plot

import "time"

// RingBuffer holds exactly Capacity (x, y) points for one channel. The x
// axis is a synthetic scroll index starting at 1..N; y starts as zeros.
type RingBuffer struct {
	capacity int
	start    int64
	values   []float64
	head     int
	last     float64
}

// NewRingBuffer creates a buffer of n points, n >= 1
func NewRingBuffer(n int) *RingBuffer {
	if n < 1 {
		n = 1
	}
	return &RingBuffer{
		capacity: n,
		start:    1,
		values:   make([]float64, n),
	}
}

// Capacity returns N
func (r *RingBuffer) Capacity() int {
	return r.capacity
}

// Advance drops the oldest x and appends oldest+N, scrolling the window by one
func (r *RingBuffer) Advance() {
	r.start++
}

// Push appends v and evicts the oldest y value
func (r *RingBuffer) Push(v float64) {
	r.values[r.head] = v
	r.head = (r.head + 1) % r.capacity
	r.last = v
}

// Last returns the most recently pushed value, or 0
func (r *RingBuffer) Last() float64 {
	return r.last
}

// Values returns the y values, oldest first
func (r *RingBuffer) Values() []float64 {
	out := make([]float64, r.capacity)
	n := copy(out, r.values[r.head:])
	copy(out[n:], r.values[:r.head])
	return out
}

// Indices returns the x values, oldest first
func (r *RingBuffer) Indices() []int64 {
	out := make([]int64, r.capacity)
	for i := range out {
		out[i] = r.start + int64(i)
	}
	return out
}

// Reset restores the initial window and zero values
func (r *RingBuffer) Reset() {
	r.start = 1
	r.head = 0
	r.last = 0
	clear(r.values)
}

// Snapshot is a copy of one channel's buffer
type Snapshot struct {
	Channel    int       `json:"channel"`
	X          []int64   `json:"x"`
	Y          []float64 `json:"y"`
	RenderedAt time.Time `json:"rendered_at,omitempty"`
}

// Snapshot copies the buffer for channel ch
func (r *RingBuffer) Snapshot(ch int) Snapshot {
	return Snapshot{Channel: ch, X: r.Indices(), Y: r.Values()}
}
