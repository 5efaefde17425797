// internal/worker/errors.go
package worker

import "errors"

var (
	// ErrAlreadyRunning is returned by Start while a previous run is active
	ErrAlreadyRunning = errors.New("serial worker already running")
	// ErrNotRunning is returned by commands sent while no port is open
	ErrNotRunning = errors.New("serial worker not running")
	// ErrOpenFailed wraps the driver error when the port cannot be opened
	ErrOpenFailed = errors.New("failed to open serial port")
	// ErrDisconnected wraps a read or write failure on an open port
	ErrDisconnected = errors.New("serial port disconnected")
)
