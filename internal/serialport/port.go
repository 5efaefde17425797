// internal/serialport/port.go
package serialport

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Port is an open serial connection. Read must return promptly with
// (0, nil) when no data is pending; any error means the link is gone.
type Port interface {
	io.ReadWriteCloser
}

// Opener opens a Port for a configuration
type Opener interface {
	Open(cfg PortConfig) (Port, error)
}

// OpenerFunc adapts a function to the Opener interface
type OpenerFunc func(cfg PortConfig) (Port, error)

// Open calls f(cfg)
func (f OpenerFunc) Open(cfg PortConfig) (Port, error) {
	return f(cfg)
}

// Driver names a serial backend
type Driver string

const (
	// DriverAuto uses the termios backend when RTS/CTS is requested on a
	// POSIX host and the native backend otherwise
	DriverAuto Driver = "auto"
	// DriverNative is go.bug.st/serial
	DriverNative Driver = "native"
	// DriverTermios is github.com/jacobsa/go-serial
	DriverTermios Driver = "termios"
)

// NewOpener returns the Opener for a driver. readTimeout is the per-read
// wait; zero keeps reads non-blocking.
func NewOpener(driver Driver, readTimeout time.Duration, logger *zap.Logger) (Opener, error) {
	native := &NativeOpener{ReadTimeout: readTimeout, Logger: logger}
	termios := &TermiosOpener{ReadTimeout: readTimeout, Logger: logger}

	switch driver {
	case DriverNative:
		return native, nil
	case DriverTermios:
		return termios, nil
	case DriverAuto, "":
		return OpenerFunc(func(cfg PortConfig) (Port, error) {
			if cfg.RTSCTS && runtime.GOOS != "windows" {
				return termios.Open(cfg)
			}
			return native.Open(cfg)
		}), nil
	default:
		return nil, fmt.Errorf("unknown serial driver %q", driver)
	}
}
