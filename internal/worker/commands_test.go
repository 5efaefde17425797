package worker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandQueue_FIFO(t *testing.T) {
	t.Parallel()

	q := NewCommandQueue()
	q.Push(Transmit([]byte("a")))
	q.Push(Transmit([]byte("b")))
	q.Push(Terminate())

	assert.Equal(t, 3, q.Len())

	cmds := q.DrainAll()
	require.Len(t, cmds, 3)
	assert.Equal(t, []byte("a"), cmds[0].Payload)
	assert.Equal(t, []byte("b"), cmds[1].Payload)
	assert.Equal(t, CommandTerminate, cmds[2].Kind)

	assert.Nil(t, q.DrainAll())
	assert.Equal(t, 0, q.Len())
}

func TestCommandQueue_ClearDropsWake(t *testing.T) {
	t.Parallel()

	q := NewCommandQueue()
	q.Push(Transmit([]byte("stale")))

	assert.Equal(t, 1, q.Clear())
	assert.Equal(t, 0, q.Len())

	select {
	case <-q.Wake():
		t.Fatal("wake signal should have been drained")
	default:
	}
}

func TestCommandQueue_ConcurrentProducers(t *testing.T) {
	t.Parallel()

	q := NewCommandQueue()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(Transmit([]byte{byte(j)}))
			}
		}()
	}
	wg.Wait()

	assert.Len(t, q.DrainAll(), 800)
}

func TestTransmit_CopiesPayload(t *testing.T) {
	t.Parallel()

	payload := []byte("ping")
	cmd := Transmit(payload)
	payload[0] = 'x'

	assert.Equal(t, []byte("ping"), cmd.Payload)
	assert.Equal(t, "transmit", cmd.Kind.String())
}
