// internal/worker/worker.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"serial-plotter/internal/serialport"
	"serial-plotter/internal/syncutil"
)

const (
	DefaultChunkSize   = 100
	DefaultIdleWait    = time.Millisecond
	DefaultEventBuffer = 256
)

// Options tunes the worker loop
type Options struct {
	// ChunkSize is the maximum number of bytes requested per read
	ChunkSize int
	// IdleWait bounds how long the loop sleeps after an empty read. A new
	// command cuts the wait short. Negative values only yield the processor.
	IdleWait time.Duration
	// EventBuffer is the capacity of the Events channel
	EventBuffer int
	Clock       clockwork.Clock
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.IdleWait == 0 {
		o.IdleWait = DefaultIdleWait
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = DefaultEventBuffer
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	return o
}

// Stats holds worker counters since construction
type Stats struct {
	Runs         uint64 `json:"runs"`
	Chunks       uint64 `json:"chunks"`
	BytesRead    uint64 `json:"bytes_read"`
	BytesWritten uint64 `json:"bytes_written"`
	Commands     uint64 `json:"commands"`
	Disconnects  uint64 `json:"disconnects"`
}

// Worker owns one serial port at a time. Start launches a goroutine that
// opens the port, polls it for data and executes queued commands. Results
// are published on Events, which must be drained by a single consumer.
type Worker struct {
	opener   serialport.Opener
	logger   *zap.Logger
	opts     Options
	commands *CommandQueue
	events   chan Event

	mu     syncutil.Mutex
	state  State
	run    uint64
	config serialport.PortConfig
	err    error
	ready  chan struct{}
	done   chan struct{}

	runs         atomic.Uint64
	chunks       atomic.Uint64
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
	handled      atomic.Uint64
	disconnects  atomic.Uint64
}

// New creates an idle worker
func New(opener serialport.Opener, logger *zap.Logger, opts Options) *Worker {
	opts = opts.withDefaults()

	closed := make(chan struct{})
	close(closed)

	return &Worker{
		opener:   opener,
		logger:   logger.With(zap.String("component", "port-worker")),
		opts:     opts,
		commands: NewCommandQueue(),
		events:   make(chan Event, opts.EventBuffer),
		ready:    closed,
		done:     closed,
	}
}

// Start validates cfg and launches a new run. It returns ErrAlreadyRunning
// unless the worker is idle.
func (w *Worker) Start(cfg serialport.PortConfig) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	if w.state != StateIdle {
		state := w.state
		w.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrAlreadyRunning, state)
	}
	w.run++
	run := w.run
	w.state = StateOpening
	w.config = cfg
	w.err = nil
	ready := make(chan struct{})
	done := make(chan struct{})
	w.ready = ready
	w.done = done
	w.mu.Unlock()

	w.runs.Add(1)
	go w.serve(run, cfg, ready, done)
	return nil
}

// Terminate asks the running loop to close the port
func (w *Worker) Terminate() error {
	return w.enqueue(Terminate())
}

// Transmit queues payload for writing. The bytes are sent as given.
func (w *Worker) Transmit(payload []byte) error {
	return w.enqueue(Transmit(payload))
}

func (w *Worker) enqueue(cmd Command) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateRunning {
		return ErrNotRunning
	}
	w.commands.Push(cmd)
	return nil
}

// State returns the current lifecycle state
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// IsRunning reports whether a port is open and being polled
func (w *Worker) IsRunning() bool {
	return w.State() == StateRunning
}

// Config returns the configuration of the current or last run
func (w *Worker) Config() serialport.PortConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.config
}

// Run returns the id of the current or last run
func (w *Worker) Run() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.run
}

// Err returns why the current or last run failed, or nil
func (w *Worker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Done is closed when the current run has finished. It is closed while idle.
func (w *Worker) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// Wait blocks until the current run has finished or ctx is done
func (w *Worker) Wait(ctx context.Context) error {
	select {
	case <-w.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitReady blocks until the current run leaves the opening state
func (w *Worker) WaitReady(ctx context.Context) error {
	w.mu.Lock()
	ready := w.ready
	w.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events delivers data, disconnect and stop notifications
func (w *Worker) Events() <-chan Event {
	return w.events
}

// Stats returns a snapshot of the counters
func (w *Worker) Stats() Stats {
	return Stats{
		Runs:         w.runs.Load(),
		Chunks:       w.chunks.Load(),
		BytesRead:    w.bytesRead.Load(),
		BytesWritten: w.bytesWritten.Load(),
		Commands:     w.handled.Load(),
		Disconnects:  w.disconnects.Load(),
	}
}

func (w *Worker) serve(run uint64, cfg serialport.PortConfig, ready, done chan struct{}) {
	logger := w.logger.With(zap.Uint64("run", run), zap.String("port", cfg.Port))

	defer func() {
		logger.Info("Serial worker stopped")
		w.emit(Event{Kind: EventStopped, Run: run, Done: done})

		w.mu.Lock()
		w.state = StateIdle
		w.mu.Unlock()

		close(done)
	}()

	logger.Info("Opening serial port", zap.String("settings", cfg.String()))

	port, err := w.opener.Open(cfg)
	if err != nil {
		logger.Error("Failed to open serial port", zap.Error(err))
		err = fmt.Errorf("%w: %w", ErrOpenFailed, err)
		w.setErr(err)
		close(ready)
		w.disconnect(run, err)
		return
	}

	if n := w.commands.Clear(); n > 0 {
		logger.Debug("Discarded stale commands", zap.Int("count", n))
	}

	w.mu.Lock()
	w.state = StateRunning
	w.mu.Unlock()
	close(ready)

	logger.Info("Serial port opened successfully")

	err = w.loop(run, port)

	w.mu.Lock()
	w.state = StateClosing
	w.mu.Unlock()

	if err != nil {
		logger.Warn("Serial port connection lost", zap.Error(err))
		w.setErr(err)
		w.disconnect(run, err)
	}

	if err := port.Close(); err != nil {
		logger.Warn("Failed to close serial port", zap.Error(err))
	}
}

// loop returns nil on terminate and a wrapped ErrDisconnected on I/O failure
func (w *Worker) loop(run uint64, port serialport.Port) error {
	buf := make([]byte, w.opts.ChunkSize)

	for {
		for _, cmd := range w.commands.DrainAll() {
			w.handled.Add(1)

			switch cmd.Kind {
			case CommandTerminate:
				return nil
			case CommandTransmit:
				if err := w.writeAll(port, cmd.Payload); err != nil {
					return fmt.Errorf("%w: %w", ErrDisconnected, err)
				}
			}
		}

		n, err := port.Read(buf)
		if n > 0 {
			w.chunks.Add(1)
			w.bytesRead.Add(uint64(n))
			w.emit(Event{Kind: EventData, Run: run, Data: append([]byte(nil), buf[:n]...)})
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDisconnected, err)
		}
		if n == 0 {
			w.idle()
		}
	}
}

func (w *Worker) writeAll(port serialport.Port, payload []byte) error {
	for len(payload) > 0 {
		n, err := port.Write(payload)
		w.bytesWritten.Add(uint64(n))
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		payload = payload[n:]
	}
	return nil
}

func (w *Worker) idle() {
	if w.opts.IdleWait < 0 {
		runtime.Gosched()
		return
	}

	timer := w.opts.Clock.NewTimer(w.opts.IdleWait)
	defer timer.Stop()

	select {
	case <-w.commands.Wake():
	case <-timer.Chan():
	}
}

func (w *Worker) setErr(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

func (w *Worker) disconnect(run uint64, err error) {
	w.disconnects.Add(1)
	w.emit(Event{Kind: EventDisconnected, Run: run, Err: err})
}

func (w *Worker) emit(ev Event) {
	ev.Time = w.opts.Clock.Now()
	w.events <- ev
}

// IsDisconnect reports whether err came from a failed open or a lost port
func IsDisconnect(err error) bool {
	return errors.Is(err, ErrDisconnected) || errors.Is(err, ErrOpenFailed)
}
