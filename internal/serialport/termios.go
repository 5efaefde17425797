// internal/serialport/termios.go
package serialport

import (
	"errors"
	"fmt"
	"io"
	"time"

	goserial "github.com/jacobsa/go-serial/serial"
	"go.uber.org/zap"
)

// TermiosOpener opens ports through github.com/jacobsa/go-serial, which
// supports hardware (RTS/CTS) flow control
type TermiosOpener struct {
	ReadTimeout time.Duration
	Logger      *zap.Logger
}

const (
	// termiosMinWait and termiosMaxWait bound VTIME, which the tty counts
	// in deciseconds. VMIN=0 needs at least one decisecond.
	termiosMinWait = 100 * time.Millisecond
	termiosMaxWait = 25500 * time.Millisecond
)

// termiosOptions builds non-blocking-style options: VMIN=0 so a read
// returns after at most the inter-character wait, even with no data.
func termiosOptions(cfg PortConfig, readTimeout time.Duration) goserial.OpenOptions {
	wait := readTimeout.Round(termiosMinWait)
	if wait < readTimeout {
		wait += termiosMinWait
	}
	wait = min(max(wait, termiosMinWait), termiosMaxWait)

	return goserial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              uint(cfg.BaudRate),
		DataBits:              uint(cfg.DataBits),
		StopBits:              uint(cfg.StopBits),
		ParityMode:            termiosParity(cfg.Parity),
		RTSCTSFlowControl:     cfg.RTSCTS,
		InterCharacterTimeout: uint(wait / time.Millisecond),
		MinimumReadSize:       0,
	}
}

// Open opens the serial port. An idle read blocks for at least 100ms, so
// commands queued on an idle port wait up to that long.
func (o *TermiosOpener) Open(cfg PortConfig) (Port, error) {
	options := termiosOptions(cfg, o.ReadTimeout)

	if o.Logger != nil && (cfg.XonXoff || cfg.DSRDTR) {
		o.Logger.Warn("Software and DSR/DTR flow control are not enforced by the termios driver",
			zap.String("port", cfg.Port),
			zap.Bool("xonxoff", cfg.XonXoff),
			zap.Bool("dsrdtr", cfg.DSRDTR),
		)
	}

	rwc, err := goserial.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}

	return &termiosPort{ReadWriteCloser: rwc}, nil
}

// termiosPort maps the empty-read EOF reported by a VMIN=0 tty to "no data"
type termiosPort struct {
	io.ReadWriteCloser
}

func (p *termiosPort) Read(b []byte) (int, error) {
	n, err := p.ReadWriteCloser.Read(b)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

func termiosParity(p Parity) goserial.ParityMode {
	switch p {
	case ParityOdd:
		return goserial.PARITY_ODD
	case ParityEven:
		return goserial.PARITY_EVEN
	default:
		return goserial.PARITY_NONE
	}
}
