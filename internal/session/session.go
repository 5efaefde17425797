// internal/session/session.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"serial-plotter/internal/plot"
	"serial-plotter/internal/serialport"
	"serial-plotter/internal/stream"
	"serial-plotter/internal/utils"
	"serial-plotter/internal/worker"
)

// DefaultShutdownTimeout bounds how long Open and Close wait for a run to end
const DefaultShutdownTimeout = 3 * time.Second

// Worker is the serial worker driven by a Session
type Worker interface {
	Start(cfg serialport.PortConfig) error
	Terminate() error
	Transmit(payload []byte) error
	State() worker.State
	Config() serialport.PortConfig
	Err() error
	Wait(ctx context.Context) error
	WaitReady(ctx context.Context) error
	Events() <-chan worker.Event
	Stats() worker.Stats
}

// PortLister enumerates serial devices
type PortLister interface {
	ListDetailed() ([]serialport.PortInfo, error)
}

// Observer receives session notifications. Implementations must be safe
// for concurrent use.
type Observer interface {
	TextReceived(text string)
	Disconnected(err error)
	StateChanged(status Status)
	Rendered(snap plot.Snapshot)
}

type nopObserver struct{}

func (nopObserver) TextReceived(string) {}
func (nopObserver) Disconnected(error) {}
func (nopObserver) StateChanged(Status) {}
func (nopObserver) Rendered(plot.Snapshot) {}

// Options configures a Session
type Options struct {
	ShutdownTimeout time.Duration
}

// Status summarises the session for the API
type Status struct {
	State      worker.State           `json:"state"`
	Running    bool                   `json:"running"`
	Port       *serialport.PortConfig `json:"port,omitempty"`
	LastError  string                 `json:"last_error,omitempty"`
	Worker     worker.Stats           `json:"worker"`
	Plot       plot.Stats             `json:"plot"`
	Channels   int                    `json:"channels"`
	BufferSize int                    `json:"buffer_size"`
	Console    bool                   `json:"console_enabled"`
}

// Session is the control context. It owns one worker, the plot pipeline
// and the text transcript, and runs the single goroutine that consumes
// worker events.
type Session struct {
	worker     Worker
	plotter    *plot.Plotter
	transcript *stream.Transcript
	lister     PortLister
	observer   Observer
	logger     *zap.Logger
	base       *zap.Logger
	opts       Options
}

// New wires a session. observer may be nil.
func New(w Worker, plotter *plot.Plotter, transcript *stream.Transcript, lister PortLister, observer Observer, logger *zap.Logger, opts Options) *Session {
	if observer == nil {
		observer = nopObserver{}
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Session{
		worker:     w,
		plotter:    plotter,
		transcript: transcript,
		lister:     lister,
		observer:   observer,
		logger:     logger.With(zap.String("component", "session")),
		base:       logger,
		opts:       opts,
	}
	plotter.SetRenderer(s)
	return s
}

// Run consumes worker events until ctx is cancelled
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("Session dispatch loop started")
	defer s.logger.Info("Session dispatch loop stopped")

	var run uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.worker.Events():
			if ev.Run != run {
				// Partial lines never span connections
				s.plotter.Reset()
				run = ev.Run
			}
			s.dispatch(ctx, ev)
		}
	}
}

func (s *Session) dispatch(ctx context.Context, ev worker.Event) {
	switch ev.Kind {
	case worker.EventData:
		text, err := s.transcript.Append(ev.Data)
		if err != nil {
			s.logger.Debug("Transcript skipped chunk", zap.Error(err))
		} else if text != "" {
			s.observer.TextReceived(text)
		}
		s.plotter.Feed(ev.Data)

	case worker.EventDisconnected:
		s.logger.Warn("Serial connection ended abnormally",
			zap.Uint64("run", ev.Run),
			zap.Error(ev.Err),
		)
		s.observer.Disconnected(ev.Err)

	case worker.EventStopped:
		// Only this run's completion is awaited; a newer run may already be open
		if ev.Done != nil {
			select {
			case <-ev.Done:
			case <-ctx.Done():
			}
		}
		s.observer.StateChanged(s.Status())
	}
}

// Render forwards rate-limited plot updates to the observer
func (s *Session) Render(snap plot.Snapshot) {
	s.observer.Rendered(snap)
}

// Open starts a connection. A previous run that is still closing is
// awaited first.
func (s *Session) Open(ctx context.Context, cfg serialport.PortConfig) (err error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	conn := utils.NewConnectionLogger(s.base, cfg.Port, cfg.String())
	start := time.Now()
	defer func() { conn.LogConnection("open", time.Since(start), err) }()

	switch s.worker.State() {
	case worker.StateOpening, worker.StateRunning:
		return worker.ErrAlreadyRunning
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.worker.Wait(waitCtx); err != nil {
		return fmt.Errorf("previous connection is still closing: %w", err)
	}

	if err := s.worker.Start(cfg); err != nil {
		return err
	}

	if err := s.worker.WaitReady(waitCtx); err != nil {
		return fmt.Errorf("failed to wait for serial port: %w", err)
	}
	if err := s.worker.Err(); errors.Is(err, worker.ErrOpenFailed) {
		return err
	}

	s.observer.StateChanged(s.Status())
	return nil
}

// Close stops the connection and waits for the worker to finish. Closing
// an idle session is not an error.
func (s *Session) Close(ctx context.Context) (err error) {
	conn := s.connection()
	start := time.Now()
	defer func() { conn.LogConnection("close", time.Since(start), err) }()

	waitCtx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.worker.WaitReady(waitCtx); err != nil {
		return fmt.Errorf("failed to wait for serial port: %w", err)
	}

	if err := s.worker.Terminate(); err != nil {
		if !errors.Is(err, worker.ErrNotRunning) {
			return err
		}
		s.logger.Debug("Close requested with no open port")
	}

	if err := s.worker.Wait(waitCtx); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	return nil
}

// Send transmits text followed by the line terminator
func (s *Session) Send(text string, ending serialport.LineEnding) error {
	payload := ending.Append([]byte(text))
	err := s.worker.Transmit(payload)
	s.connection().LogTransmit(len(payload), string(ending), err)
	return err
}

func (s *Session) connection() *utils.ConnectionLogger {
	cfg := s.worker.Config()
	return utils.NewConnectionLogger(s.base, cfg.Port, cfg.String())
}

// SendBytes transmits payload unchanged
func (s *Session) SendBytes(payload []byte) error {
	return s.worker.Transmit(payload)
}

// ListPorts maps device names to descriptions
func (s *Session) ListPorts() (map[string]string, error) {
	ports, err := s.ListPortsDetailed()
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(ports))
	for _, p := range ports {
		out[p.Name] = p.Description
	}
	return out, nil
}

// ListPortsDetailed returns the available ports with USB details
func (s *Session) ListPortsDetailed() ([]serialport.PortInfo, error) {
	if s.lister == nil {
		return nil, errors.New("port enumeration is not available")
	}
	return s.lister.ListDetailed()
}

// Status returns the current state
func (s *Session) Status() Status {
	state := s.worker.State()
	st := Status{
		State:      state,
		Running:    state == worker.StateRunning,
		Worker:     s.worker.Stats(),
		Plot:       s.plotter.Stats(),
		Channels:   s.plotter.Channels(),
		BufferSize: s.plotter.BufferSize(),
		Console:    s.transcript.Enabled(),
	}

	if cfg := s.worker.Config(); cfg.Port != "" {
		st.Port = &cfg
	}
	if err := s.worker.Err(); err != nil {
		st.LastError = err.Error()
	}
	return st
}

// Snapshots copies every plot channel
func (s *Session) Snapshots() []plot.Snapshot {
	return s.plotter.Snapshots()
}

// Snapshot copies one plot channel
func (s *Session) Snapshot(ch int) (plot.Snapshot, error) {
	return s.plotter.Snapshot(ch)
}

// Transcript returns the text view
func (s *Session) Transcript() *stream.Transcript {
	return s.transcript
}

// Shutdown closes any open connection
func (s *Session) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down session")
	return s.Close(ctx)
}
