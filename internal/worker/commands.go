// internal/worker/commands.go
package worker

import (
	"serial-plotter/internal/syncutil"
)

// CommandKind identifies a control message for the worker
type CommandKind int

const (
	// CommandTerminate asks the worker to close the port and stop
	CommandTerminate CommandKind = iota
	// CommandTransmit carries bytes to write to the port
	CommandTransmit
)

func (k CommandKind) String() string {
	switch k {
	case CommandTerminate:
		return "terminate"
	case CommandTransmit:
		return "transmit"
	default:
		return "unknown"
	}
}

// Command is one entry of the command channel
type Command struct {
	Kind    CommandKind
	Payload []byte
}

// Terminate builds a terminate command
func Terminate() Command {
	return Command{Kind: CommandTerminate}
}

// Transmit builds a transmit command holding a copy of payload
func Transmit(payload []byte) Command {
	return Command{Kind: CommandTransmit, Payload: append([]byte(nil), payload...)}
}

// CommandQueue is an unbounded FIFO safe for many producers and one consumer.
// Push never blocks; the consumer drains everything queued in one call.
type CommandQueue struct {
	mu    syncutil.Mutex
	items []Command
	wake  chan struct{}
}

// NewCommandQueue creates an empty queue
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{wake: make(chan struct{}, 1)}
}

// Push appends a command and signals the consumer
func (q *CommandQueue) Push(cmd Command) {
	q.mu.Lock()
	q.items = append(q.items, cmd)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// DrainAll removes and returns every queued command in FIFO order
func (q *CommandQueue) DrainAll() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	items := q.items
	q.items = nil
	return items
}

// Clear discards all queued commands and any pending wake signal
func (q *CommandQueue) Clear() int {
	q.mu.Lock()
	n := len(q.items)
	q.items = nil
	q.mu.Unlock()

	select {
	case <-q.wake:
	default:
	}
	return n
}

// Len returns the number of queued commands
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Wake is signalled after every Push
func (q *CommandQueue) Wake() <-chan struct{} {
	return q.wake
}
