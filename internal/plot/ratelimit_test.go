package plot

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_FirstFrameWaitsOneInterval(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := NewRateLimiter(1, 60, clock.Now())

	assert.False(t, l.ShouldRender(0, clock.Now()))

	clock.Advance(time.Second / 60)
	assert.False(t, l.ShouldRender(0, clock.Now()), "exactly one interval is not enough")

	clock.Advance(time.Millisecond)
	assert.True(t, l.ShouldRender(0, clock.Now()))
	assert.Equal(t, clock.Now(), l.LastRender(0))
	assert.False(t, l.ShouldRender(0, clock.Now()))
}

func TestRateLimiter_AtMost61PerSecond(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	start := clock.Now()
	l := NewRateLimiter(2, 60, start)

	renders := 0
	for clock.Now().Sub(start) <= time.Second {
		if l.ShouldRender(0, clock.Now()) {
			renders++
		}
		clock.Advance(100 * time.Microsecond)
	}

	assert.LessOrEqual(t, renders, 61)
	assert.Greater(t, renders, 50)
}

func TestRateLimiter_ChannelsIndependent(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := NewRateLimiter(2, 60, clock.Now())
	clock.Advance(20 * time.Millisecond)

	assert.True(t, l.ShouldRender(0, clock.Now()))
	assert.True(t, l.ShouldRender(1, clock.Now()))
	assert.False(t, l.ShouldRender(0, clock.Now()))
}

func TestRateLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := NewRateLimiter(1, -1, now)

	assert.Zero(t, l.Interval())
	assert.True(t, l.ShouldRender(0, now))
	assert.True(t, l.ShouldRender(0, now))
}
