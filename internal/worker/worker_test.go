package worker

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"serial-plotter/internal/serialport"
	"serial-plotter/internal/serialport/serialtest"
)

const waitTimeout = 2 * time.Second

func newTestWorker(t *testing.T, opener serialport.Opener) *Worker {
	t.Helper()
	return New(opener, zaptest.NewLogger(t), Options{})
}

func testConfig() serialport.PortConfig {
	return serialport.DefaultPortConfig("/dev/ttyTEST0")
}

// collect reads events until the stopped event of a run arrives
func collect(t *testing.T, w *Worker) []Event {
	t.Helper()

	var events []Event
	timeout := time.After(waitTimeout)
	for {
		select {
		case ev := <-w.Events():
			events = append(events, ev)
			if ev.Kind == EventStopped {
				return events
			}
		case <-timeout:
			t.Fatalf("timed out waiting for stop, got %d events", len(events))
			return nil
		}
	}
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func dataOf(events []Event) []byte {
	var buf bytes.Buffer
	for _, ev := range events {
		if ev.Kind == EventData {
			buf.Write(ev.Data)
		}
	}
	return buf.Bytes()
}

func waitReady(t *testing.T, w *Worker) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, w.WaitReady(ctx))
}

func TestWorker_IdleByDefault(t *testing.T) {
	t.Parallel()

	w := newTestWorker(t, serialtest.NewOpener())
	assert.Equal(t, DefaultIdleWait, w.opts.IdleWait)
	assert.Equal(t, DefaultChunkSize, w.opts.ChunkSize)

	assert.Equal(t, StateIdle, w.State())
	assert.False(t, w.IsRunning())
	assert.ErrorIs(t, w.Transmit([]byte("x")), ErrNotRunning)
	assert.ErrorIs(t, w.Terminate(), ErrNotRunning)
	assert.Equal(t, 0, w.commands.Len())

	select {
	case <-w.Done():
	default:
		t.Fatal("Done should be closed while idle")
	}
}

func TestWorker_OpenFailure(t *testing.T) {
	t.Parallel()

	opener := serialtest.NewOpener()
	opener.Err = errors.New("no such device")
	w := newTestWorker(t, opener)

	require.NoError(t, w.Start(testConfig()))
	events := collect(t, w)

	require.Equal(t, []EventKind{EventDisconnected, EventStopped}, kinds(events))
	assert.ErrorIs(t, events[0].Err, ErrOpenFailed)
	assert.True(t, IsDisconnect(events[0].Err))
	assert.Contains(t, events[0].Err.Error(), "no such device")

	require.NoError(t, w.Wait(context.Background()))
	assert.Equal(t, StateIdle, w.State())
	assert.EqualValues(t, 1, w.Stats().Disconnects)
	assert.ErrorIs(t, w.Err(), ErrOpenFailed)
}

func TestWorker_InvalidConfigRejectedSynchronously(t *testing.T) {
	t.Parallel()

	opener := serialtest.NewOpener(serialtest.NewMockPort())
	w := newTestWorker(t, opener)

	cfg := testConfig()
	cfg.BaudRate = 1234

	require.Error(t, w.Start(cfg))
	assert.Equal(t, StateIdle, w.State())
	assert.Empty(t, opener.Opened())
}

func TestWorker_ReadAndTerminate(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	port.QueueRead([]byte("10,20\n"), []byte("15,"), []byte("25\n"))
	w := newTestWorker(t, serialtest.NewOpener(port))

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)
	assert.True(t, w.IsRunning())

	require.Eventually(t, func() bool { return port.Pending() == 0 }, waitTimeout, time.Millisecond)
	require.NoError(t, w.Terminate())

	events := collect(t, w)
	assert.Equal(t, "10,20\n15,25\n", string(dataOf(events)))
	assert.NotContains(t, kinds(events), EventDisconnected)

	require.NoError(t, w.Wait(context.Background()))
	assert.Equal(t, StateIdle, w.State())
	assert.Equal(t, 1, port.CloseCount())
	assert.NoError(t, w.Err())

	stats := w.Stats()
	assert.EqualValues(t, 1, stats.Runs)
	assert.EqualValues(t, 12, stats.BytesRead)
	assert.EqualValues(t, 3, stats.Chunks)
}

func TestWorker_ChunkSizeLimitsReads(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	port.QueueRead(bytes.Repeat([]byte("a"), 250))
	w := New(serialtest.NewOpener(port), zap.NewNop(), Options{ChunkSize: 100})

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)
	require.Eventually(t, func() bool { return port.Pending() == 0 }, waitTimeout, time.Millisecond)
	require.NoError(t, w.Terminate())

	events := collect(t, w)
	var sizes []int
	for _, ev := range events {
		if ev.Kind == EventData {
			sizes = append(sizes, len(ev.Data))
		}
	}
	assert.Equal(t, []int{100, 100, 50}, sizes)
}

func TestWorker_TransmitBeforeTerminate(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	w := newTestWorker(t, serialtest.NewOpener(port))

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)

	require.NoError(t, w.Transmit([]byte("ping\n")))
	require.NoError(t, w.Terminate())
	collect(t, w)

	assert.Equal(t, [][]byte{[]byte("ping\n")}, port.Writes())
	assert.EqualValues(t, 5, w.Stats().BytesWritten)
	assert.Equal(t, 1, port.CloseCount())
}

func TestWorker_CommandsAfterTerminateAreDropped(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	w := newTestWorker(t, serialtest.NewOpener(port))

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)

	// Queue directly so both land in the same drain
	w.commands.Push(Terminate())
	w.commands.Push(Transmit([]byte("late")))
	collect(t, w)

	assert.Empty(t, port.Writes())
}

func TestWorker_AlreadyRunning(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	w := newTestWorker(t, serialtest.NewOpener(port))

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)

	err := w.Start(testConfig())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, w.Terminate())
	collect(t, w)
}

func TestWorker_ReadErrorDisconnectsOnce(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	port.QueueRead([]byte("1\n"))
	port.QueueError(errors.New("device reports readiness to read but returned no data"))
	w := newTestWorker(t, serialtest.NewOpener(port))

	require.NoError(t, w.Start(testConfig()))
	events := collect(t, w)

	assert.Equal(t, []EventKind{EventData, EventDisconnected, EventStopped}, kinds(events))
	assert.ErrorIs(t, events[1].Err, ErrDisconnected)

	require.NoError(t, w.Wait(context.Background()))
	assert.Equal(t, StateIdle, w.State())
	assert.Equal(t, 1, port.CloseCount())
	assert.ErrorIs(t, w.Transmit([]byte("x")), ErrNotRunning)
	assert.ErrorIs(t, w.Err(), ErrDisconnected)
}

func TestWorker_WriteErrorDisconnects(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	port.WriteError = errors.New("write failed")
	w := newTestWorker(t, serialtest.NewOpener(port))

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)
	require.NoError(t, w.Transmit([]byte("ping")))

	events := collect(t, w)
	assert.Equal(t, []EventKind{EventDisconnected, EventStopped}, kinds(events))
	assert.ErrorIs(t, events[0].Err, ErrDisconnected)
}

func TestWorker_StaleCommandsFlushedOnStart(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	w := newTestWorker(t, serialtest.NewOpener(port))

	// Left over from a previous run that ended before draining
	w.commands.Push(Transmit([]byte("stale")))
	w.commands.Push(Terminate())

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)
	assert.True(t, w.IsRunning())

	require.NoError(t, w.Transmit([]byte("fresh")))
	require.NoError(t, w.Terminate())
	collect(t, w)

	assert.Equal(t, [][]byte{[]byte("fresh")}, port.Writes())
}

func TestWorker_Restart(t *testing.T) {
	t.Parallel()

	first := serialtest.NewMockPort()
	second := serialtest.NewMockPort()
	second.QueueRead([]byte("second\n"))
	opener := serialtest.NewOpener(first, second)
	w := newTestWorker(t, opener)

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)
	require.NoError(t, w.Terminate())
	firstEvents := collect(t, w)

	cfg := testConfig()
	cfg.BaudRate = 9600
	require.NoError(t, w.Start(cfg))
	waitReady(t, w)
	require.Eventually(t, func() bool { return second.Pending() == 0 }, waitTimeout, time.Millisecond)
	require.NoError(t, w.Terminate())
	secondEvents := collect(t, w)

	assert.EqualValues(t, 1, firstEvents[0].Run)
	for _, ev := range secondEvents {
		assert.EqualValues(t, 2, ev.Run)
	}
	assert.Equal(t, "second\n", string(dataOf(secondEvents)))
	assert.Equal(t, 9600, w.Config().BaudRate)
	assert.Len(t, opener.Opened(), 2)
	assert.Equal(t, 1, first.CloseCount())
	assert.Equal(t, 1, second.CloseCount())
}

func TestWorker_YieldOnlyIdle(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	w := New(serialtest.NewOpener(port), zap.NewNop(), Options{IdleWait: -1})

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)
	require.Eventually(t, func() bool { return port.ReadCalls() > 10 }, waitTimeout, time.Millisecond)
	require.NoError(t, w.Terminate())
	collect(t, w)
}

func TestWorker_WaitHonoursContext(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	w := newTestWorker(t, serialtest.NewOpener(port))

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Wait(ctx), context.DeadlineExceeded)

	require.NoError(t, w.Terminate())
	collect(t, w)
}

func TestWorker_LostPortRejectsTransmitWhileClosing(t *testing.T) {
	t.Parallel()

	port := serialtest.NewMockPort()
	port.QueueRead([]byte("1\n"))
	port.QueueError(errors.New("input/output error"))
	w := New(serialtest.NewOpener(port), zaptest.NewLogger(t), Options{EventBuffer: 1})

	require.NoError(t, w.Start(testConfig()))

	// The data event fills the buffer so the disconnect is held back
	require.Eventually(t, func() bool { return w.State() == StateClosing }, waitTimeout, time.Millisecond)
	assert.ErrorIs(t, w.Transmit([]byte("late\n")), ErrNotRunning)

	events := collect(t, w)
	assert.Equal(t, []EventKind{EventData, EventDisconnected, EventStopped}, kinds(events))
	assert.Empty(t, port.Writes())
}

func TestWorker_StoppedEventCarriesRunDone(t *testing.T) {
	t.Parallel()

	first := serialtest.NewMockPort()
	second := serialtest.NewMockPort()
	w := newTestWorker(t, serialtest.NewOpener(first, second))

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)
	require.NoError(t, w.Terminate())
	require.NoError(t, w.Wait(context.Background()))

	require.NoError(t, w.Start(testConfig()))
	waitReady(t, w)

	events := collect(t, w)
	stopped := events[len(events)-1]
	require.Equal(t, uint64(1), stopped.Run)
	require.NotNil(t, stopped.Done)

	select {
	case <-stopped.Done:
	case <-time.After(waitTimeout):
		t.Fatal("first run's done channel was not closed")
	}
	assert.Equal(t, StateRunning, w.State())

	require.NoError(t, w.Terminate())
	events = collect(t, w)
	assert.Equal(t, uint64(2), events[len(events)-1].Run)
}
