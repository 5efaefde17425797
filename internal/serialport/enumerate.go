// internal/serialport/enumerate.go
package serialport

import (
	"fmt"
	"sort"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

// PortInfo describes one serial device found on the host
type PortInfo struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	IsUSB        bool   `json:"is_usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// Lister enumerates serial devices. It has no dependency on worker state.
type Lister struct {
	detailed func() ([]*enumerator.PortDetails, error)
	namer    USBNamer
	adapters *AdapterDatabase
	logger   *zap.Logger
}

// NewLister creates a lister backed by the OS enumerator. namer may be nil.
func NewLister(namer USBNamer, logger *zap.Logger) *Lister {
	return &Lister{
		detailed: enumerator.GetDetailedPortsList,
		namer:    namer,
		adapters: NewAdapterDatabase(),
		logger:   logger.With(zap.String("component", "port-lister")),
	}
}

// ListDetailed returns the available ports sorted by name
func (l *Lister) ListDetailed() ([]PortInfo, error) {
	details, err := l.detailed()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		info := PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
		}
		info.Description = l.describe(d)
		ports = append(ports, info)
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })

	l.logger.Debug("Serial ports enumerated", zap.Int("count", len(ports)))
	return ports, nil
}

// List returns a mapping of device name to description
func (l *Lister) List() (map[string]string, error) {
	ports, err := l.ListDetailed()
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(ports))
	for _, p := range ports {
		result[p.Name] = p.Description
	}
	return result, nil
}

func (l *Lister) describe(d *enumerator.PortDetails) string {
	if d.Product != "" {
		return d.Product
	}
	if !d.IsUSB {
		return "n/a"
	}

	if l.namer != nil {
		name, err := l.namer.Name(d.VID, d.PID)
		if err == nil && name != "" {
			return name
		}
		if err != nil {
			l.logger.Debug("USB product lookup failed",
				zap.String("port", d.Name),
				zap.String("vid", d.VID),
				zap.String("pid", d.PID),
				zap.Error(err),
			)
		}
	}

	if name, ok := l.adapters.Lookup(d.VID, d.PID); ok {
		return name
	}
	return fmt.Sprintf("USB VID:PID=%s:%s", d.VID, d.PID)
}
