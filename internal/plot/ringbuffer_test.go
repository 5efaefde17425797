package plot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_Initial(t *testing.T) {
	t.Parallel()

	r := NewRingBuffer(4)

	assert.Equal(t, 4, r.Capacity())
	assert.Equal(t, []int64{1, 2, 3, 4}, r.Indices())
	assert.Equal(t, []float64{0, 0, 0, 0}, r.Values())
}

func TestRingBuffer_FIFOEviction(t *testing.T) {
	t.Parallel()

	r := NewRingBuffer(3)
	for v := 1; v <= 5; v++ {
		r.Advance()
		r.Push(float64(v))

		assert.Len(t, r.Values(), 3)
		assert.Len(t, r.Indices(), 3)
	}

	assert.Equal(t, []float64{3, 4, 5}, r.Values())
	assert.Equal(t, []int64{6, 7, 8}, r.Indices())
	assert.Equal(t, 5.0, r.Last())
}

func TestRingBuffer_Reset(t *testing.T) {
	t.Parallel()

	r := NewRingBuffer(2)
	r.Advance()
	r.Push(9)
	r.Reset()

	assert.Equal(t, []int64{1, 2}, r.Indices())
	assert.Equal(t, []float64{0, 0}, r.Values())
	assert.Zero(t, r.Last())
}

func TestRingBuffer_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	r := NewRingBuffer(2)
	snap := r.Snapshot(1)
	snap.Y[0] = 42

	assert.Equal(t, 1, snap.Channel)
	assert.Equal(t, []float64{0, 0}, r.Values())
}

func TestBuffers_StepPolicies(t *testing.T) {
	t.Parallel()

	b := NewBuffers(2, 3)

	assert.True(t, b.Step(0, 5, true, PolicyHold))
	assert.True(t, b.Step(0, 0, false, PolicyHold))
	assert.False(t, b.Step(1, 0, false, PolicySkip))

	ch0, err := b.Snapshot(0)
	assert.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 5}, ch0.Y)
	assert.Equal(t, []int64{3, 4, 5}, ch0.X)

	ch1, err := b.Snapshot(1)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ch1.X)

	_, err = b.Snapshot(2)
	assert.Error(t, err)
}

func TestParseMissingPolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseMissingPolicy("")
	assert.NoError(t, err)
	assert.Equal(t, PolicyHold, p)

	p, err = ParseMissingPolicy("skip")
	assert.NoError(t, err)
	assert.Equal(t, PolicySkip, p)

	_, err = ParseMissingPolicy("interpolate")
	assert.Error(t, err)
}
