// internal/serialport/native.go
package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// NativeOpener opens ports through go.bug.st/serial
type NativeOpener struct {
	ReadTimeout time.Duration
	Logger      *zap.Logger
}

// Open opens the serial port
func (o *NativeOpener) Open(cfg PortConfig) (Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   nativeParity(cfg.Parity),
		StopBits: nativeStopBits(cfg.StopBits),
	}

	if o.Logger != nil && (cfg.XonXoff || cfg.RTSCTS || cfg.DSRDTR) {
		o.Logger.Warn("Flow control is not enforced by the native serial driver",
			zap.String("port", cfg.Port),
			zap.Bool("xonxoff", cfg.XonXoff),
			zap.Bool("rtscts", cfg.RTSCTS),
			zap.Bool("dsrdtr", cfg.DSRDTR),
		)
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}

	if err := port.SetReadTimeout(o.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return port, nil
}

func nativeParity(p Parity) serial.Parity {
	switch p {
	case ParityOdd:
		return serial.OddParity
	case ParityEven:
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}

func nativeStopBits(bits int) serial.StopBits {
	if bits == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}
