// internal/worker/events.go
package worker

import "time"

// EventKind identifies a worker notification
type EventKind int

const (
	// EventData carries bytes read from the port
	EventData EventKind = iota
	// EventDisconnected reports that the port failed to open or was lost.
	// It is emitted at most once per run.
	EventDisconnected
	// EventStopped is the last event of every run
	EventStopped
)

func (k EventKind) String() string {
	switch k {
	case EventData:
		return "data"
	case EventDisconnected:
		return "disconnected"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event is delivered on Worker.Events in the order it happened
type Event struct {
	Kind EventKind
	// Run identifies the Start call that produced the event
	Run  uint64
	Data []byte
	Err  error
	Time time.Time
	// Done is set on EventStopped and is closed once the worker is idle
	Done <-chan struct{}
}
