// internal/plot/ratelimit.go
package plot

import (
	"time"

	"serial-plotter/internal/syncutil"
)

// DefaultMaxFPS caps redraws per channel
const DefaultMaxFPS = 60

// RateLimiter allows a channel to render when more than one frame interval
// has passed since it last rendered
type RateLimiter struct {
	mu       syncutil.Mutex
	interval time.Duration
	last     []time.Time
}

// NewRateLimiter creates a limiter whose channels count as rendered at now.
// maxFPS <= 0 disables limiting.
func NewRateLimiter(channels, maxFPS int, now time.Time) *RateLimiter {
	var interval time.Duration
	if maxFPS > 0 {
		interval = time.Second / time.Duration(maxFPS)
	}

	last := make([]time.Time, channels)
	for i := range last {
		last[i] = now
	}
	return &RateLimiter{interval: interval, last: last}
}

// ShouldRender reports whether ch may render at now and, if so, records now
func (l *RateLimiter) ShouldRender(ch int, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.interval > 0 && now.Sub(l.last[ch]) <= l.interval {
		return false
	}
	l.last[ch] = now
	return true
}

// LastRender returns when ch last rendered
func (l *RateLimiter) LastRender(ch int) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last[ch]
}

// Interval returns the minimum time between renders
func (l *RateLimiter) Interval() time.Duration {
	return l.interval
}
