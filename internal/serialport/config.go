// internal/serialport/config.go
package serialport

import (
	"fmt"
	"slices"
	"strings"
)

// Parity represents the parity mode of a serial line
type Parity string

const (
	ParityNone Parity = "none"
	ParityOdd  Parity = "odd"
	ParityEven Parity = "even"
)

const (
	DefaultBaudRate = 115200
	DefaultDataBits = 8
	DefaultStopBits = 1
)

// BaudRates lists the supported baud rates in ascending order
var BaudRates = []int{
	50, 75, 110, 134, 150, 200, 300, 600, 1200, 1800, 2400, 4800,
	9600, 19200, 38400, 57600, 115200, 230400, 460800, 500000,
	576000, 921600, 1000000, 1152000, 1500000, 2000000, 2500000,
	3000000, 3500000, 4000000,
}

// PortConfig represents the settings of one connection. A running worker never
// sees changes to a PortConfig; a new open takes a fresh value.
type PortConfig struct {
	Port     string `json:"port" mapstructure:"port" validate:"required"`
	BaudRate int    `json:"baud_rate" mapstructure:"baud_rate" validate:"baudrate"`
	Parity   Parity `json:"parity" mapstructure:"parity" validate:"oneof=none odd even"`
	DataBits int    `json:"data_bits" mapstructure:"data_bits" validate:"oneof=5 6 7 8"`
	StopBits int    `json:"stop_bits" mapstructure:"stop_bits" validate:"oneof=1 2"`

	// Flow control flags are passed through to the driver as-is
	XonXoff bool `json:"xonxoff" mapstructure:"xonxoff"`
	RTSCTS  bool `json:"rtscts" mapstructure:"rtscts"`
	DSRDTR  bool `json:"dsrdtr" mapstructure:"dsrdtr"`
}

// DefaultPortConfig returns 115200 8N1 settings for the given device
func DefaultPortConfig(port string) PortConfig {
	return PortConfig{
		Port:     port,
		BaudRate: DefaultBaudRate,
		Parity:   ParityNone,
		DataBits: DefaultDataBits,
		StopBits: DefaultStopBits,
	}
}

// WithDefaults fills zero-valued line settings from DefaultPortConfig
func (c PortConfig) WithDefaults() PortConfig {
	def := DefaultPortConfig(c.Port)
	if c.BaudRate == 0 {
		c.BaudRate = def.BaudRate
	}
	if c.Parity == "" {
		c.Parity = def.Parity
	}
	if c.DataBits == 0 {
		c.DataBits = def.DataBits
	}
	if c.StopBits == 0 {
		c.StopBits = def.StopBits
	}
	return c
}

// Validate checks the configuration against the supported value sets
func (c PortConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid port config: %w", err)
	}
	return nil
}

// String renders the configuration in the usual "COM3 115200 8N1" form
func (c PortConfig) String() string {
	parity := "N"
	if c.Parity != "" && c.Parity != ParityNone {
		parity = strings.ToUpper(string(c.Parity[:1]))
	}
	return fmt.Sprintf("%s %d %d%s%d", c.Port, c.BaudRate, c.DataBits, parity, c.StopBits)
}

// IsSupportedBaudRate reports whether rate is one of BaudRates
func IsSupportedBaudRate(rate int) bool {
	_, found := slices.BinarySearch(BaudRates, rate)
	return found
}

// ParseParity accepts the parity names used by the API and config files
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "n":
		return ParityNone, nil
	case "odd", "o":
		return ParityOdd, nil
	case "even", "e":
		return ParityEven, nil
	default:
		return "", fmt.Errorf("unknown parity %q", s)
	}
}
