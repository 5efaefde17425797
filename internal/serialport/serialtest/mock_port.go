// internal/serialport/serialtest/mock_port.go

// Package serialtest provides in-memory serial ports for tests.
package serialtest

import (
	"errors"
	"sync"

	"serial-plotter/internal/serialport"
)

// ErrPortClosed is returned by a MockPort after Close
var ErrPortClosed = errors.New("port closed")

type readResult struct {
	data []byte
	err  error
}

// MockPort is a scripted, non-blocking serial port. Queued chunks are handed
// out one per Read; with nothing queued Read returns (0, nil).
type MockPort struct {
	// WriteError, when set, is returned by every Write
	WriteError error
	// CloseError, when set, is returned by Close
	CloseError error

	mu         sync.Mutex
	reads      []readResult
	writes     [][]byte
	closeCount int
	readCalls  int
	onWrite    func([]byte)
}

// NewMockPort creates an empty mock port
func NewMockPort() *MockPort {
	return &MockPort{}
}

// QueueRead schedules data to be returned by a future Read
func (m *MockPort) QueueRead(chunks ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.reads = append(m.reads, readResult{data: append([]byte(nil), c...)})
	}
}

// QueueError schedules a Read failure after the chunks already queued
func (m *MockPort) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, readResult{err: err})
}

// OnWrite registers a hook invoked with every written payload
func (m *MockPort) OnWrite(fn func([]byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWrite = fn
}

// Read implements serialport.Port
func (m *MockPort) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readCalls++
	if m.closeCount > 0 {
		return 0, ErrPortClosed
	}
	if len(m.reads) == 0 {
		return 0, nil
	}

	next := m.reads[0]
	if next.err != nil {
		m.reads = m.reads[1:]
		return 0, next.err
	}

	n := copy(p, next.data)
	if n < len(next.data) {
		m.reads[0].data = next.data[n:]
	} else {
		m.reads = m.reads[1:]
	}
	return n, nil
}

// Write implements serialport.Port
func (m *MockPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	if m.closeCount > 0 {
		m.mu.Unlock()
		return 0, ErrPortClosed
	}
	if m.WriteError != nil {
		err := m.WriteError
		m.mu.Unlock()
		return 0, err
	}
	m.writes = append(m.writes, append([]byte(nil), p...))
	hook := m.onWrite
	m.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	return len(p), nil
}

// Close implements serialport.Port
func (m *MockPort) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCount++
	return m.CloseError
}

// Writes returns a copy of every payload written, in order
func (m *MockPort) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.writes))
	for i, w := range m.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// CloseCount returns how many times Close was called
func (m *MockPort) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCount
}

// ReadCalls returns how many times Read was called
func (m *MockPort) ReadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCalls
}

// Pending returns the number of scripted reads not yet consumed
func (m *MockPort) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reads)
}

// Opener hands out Ports in order, or fails with Err
type Opener struct {
	// Err, when set, makes every Open fail
	Err error

	mu     sync.Mutex
	ports  []*MockPort
	opened []serialport.PortConfig
}

// NewOpener returns an opener that yields the given ports, one per Open.
// Once exhausted, the last port is reused.
func NewOpener(ports ...*MockPort) *Opener {
	return &Opener{ports: ports}
}

// Open implements serialport.Opener
func (o *Opener) Open(cfg serialport.PortConfig) (serialport.Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opened = append(o.opened, cfg)
	if o.Err != nil {
		return nil, o.Err
	}
	if len(o.ports) == 0 {
		return nil, errors.New("no mock port available")
	}

	port := o.ports[0]
	if len(o.ports) > 1 {
		o.ports = o.ports[1:]
	}
	return port, nil
}

// Opened returns the configurations passed to Open
func (o *Opener) Opened() []serialport.PortConfig {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]serialport.PortConfig(nil), o.opened...)
}
