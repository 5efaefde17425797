// internal/worker/state.go
package worker

// State is the lifecycle position of a Worker
type State int

const (
	StateIdle State = iota
	StateOpening
	StateRunning
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpening:
		return "opening"
	case StateRunning:
		return "running"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON payloads
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
