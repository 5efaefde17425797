// internal/serialport/usb.go
package serialport

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// ErrUSBDeviceNotFound is returned when no attached device matches a VID/PID
var ErrUSBDeviceNotFound = errors.New("usb device not found")

// USBNamer resolves a human readable name for a USB serial adapter
type USBNamer interface {
	Name(vid, pid string) (string, error)
}

// GoUSBNamer reads manufacturer and product string descriptors through libusb
type GoUSBNamer struct{}

// Name returns "<manufacturer> <product>" for the first matching device
func (GoUSBNamer) Name(vid, pid string) (string, error) {
	vendorID, err := parseUSBID(vid)
	if err != nil {
		return "", err
	}
	productID, err := parseUSBID(pid)
	if err != nil {
		return "", err
	}

	ctx := gousb.NewContext()
	defer ctx.Close()

	devices, openErr := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorID && desc.Product == productID
	})
	defer func() {
		for _, d := range devices {
			d.Close()
		}
	}()

	if len(devices) == 0 {
		if openErr != nil {
			return "", fmt.Errorf("failed to open usb device %s:%s: %w", vid, pid, openErr)
		}
		return "", ErrUSBDeviceNotFound
	}

	device := devices[0]
	var parts []string
	if manufacturer, err := device.Manufacturer(); err == nil && manufacturer != "" {
		parts = append(parts, strings.TrimSpace(manufacturer))
	}
	product, err := device.Product()
	if err != nil && len(parts) == 0 {
		return "", fmt.Errorf("failed to read usb product string: %w", err)
	}
	if product != "" {
		parts = append(parts, strings.TrimSpace(product))
	}

	return strings.Join(parts, " "), nil
}

func parseUSBID(s string) (gousb.ID, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid usb id %q: %w", s, err)
	}
	return gousb.ID(v), nil
}
