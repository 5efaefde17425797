// internal/serialport/adapters.go
package serialport

import (
	"github.com/google/gousb"
)

// AdapterDatabase names common USB serial bridges and boards by VID/PID
type AdapterDatabase struct {
	vendors map[gousb.ID]*VendorInfo
}

// VendorInfo contains vendor-specific information
type VendorInfo struct {
	Name     string
	products map[gousb.ID]string
}

// NewAdapterDatabase creates and initializes the adapter database
func NewAdapterDatabase() *AdapterDatabase {
	db := &AdapterDatabase{
		vendors: make(map[gousb.ID]*VendorInfo),
	}
	db.initializeDatabase()
	return db
}

func (db *AdapterDatabase) addVendor(id gousb.ID, name string, products map[gousb.ID]string) {
	db.vendors[id] = &VendorInfo{Name: name, products: products}
}

// initializeDatabase populates the known adapters
func (db *AdapterDatabase) initializeDatabase() {
	db.addVendor(0x0403, "FTDI", map[gousb.ID]string{
		0x6001: "FT232R USB UART",
		0x6010: "FT2232 Dual UART",
		0x6011: "FT4232 Quad UART",
		0x6014: "FT232H Single HS USB-UART",
		0x6015: "FT-X Series USB UART",
	})

	db.addVendor(0x10C4, "Silicon Labs", map[gousb.ID]string{
		0xEA60: "CP210x UART Bridge",
		0xEA70: "CP2105 Dual UART Bridge",
		0xEA71: "CP2108 Quad UART Bridge",
	})

	db.addVendor(0x1A86, "QinHeng Electronics", map[gousb.ID]string{
		0x7523: "CH340 serial converter",
		0x5523: "CH341 serial converter",
		0x55D4: "CH9102 serial converter",
	})

	db.addVendor(0x067B, "Prolific Technology", map[gousb.ID]string{
		0x2303: "PL2303 Serial Port",
		0x23A3: "PL2303GC Serial Port",
	})

	db.addVendor(0x2341, "Arduino", map[gousb.ID]string{
		0x0043: "Uno",
		0x0042: "Mega 2560",
		0x0010: "Mega 2560",
		0x8036: "Leonardo",
		0x8037: "Micro",
		0x804D: "Zero",
		0x0058: "Nano Every",
	})

	db.addVendor(0x2E8A, "Raspberry Pi", map[gousb.ID]string{
		0x0005: "Pico",
		0x000A: "Pico SDK CDC UART",
	})

	db.addVendor(0x303A, "Espressif", map[gousb.ID]string{
		0x1001: "USB JTAG/serial debug unit",
	})

	db.addVendor(0x0483, "STMicroelectronics", map[gousb.ID]string{
		0x5740: "Virtual COM Port",
		0x374B: "ST-LINK/V2.1",
	})

	db.addVendor(0x16C0, "Van Ooijen Technische Informatica", map[gousb.ID]string{
		0x0483: "Teensyduino Serial",
	})
}

// IsKnownVendor checks if a vendor ID is in the database
func (db *AdapterDatabase) IsKnownVendor(vendorID gousb.ID) bool {
	_, exists := db.vendors[vendorID]
	return exists
}

// Lookup describes a VID/PID pair given as hex strings. A known vendor
// with an unknown product yields the vendor name alone.
func (db *AdapterDatabase) Lookup(vid, pid string) (string, bool) {
	vendorID, err := parseUSBID(vid)
	if err != nil {
		return "", false
	}
	vendor, ok := db.vendors[vendorID]
	if !ok {
		return "", false
	}

	productID, err := parseUSBID(pid)
	if err != nil {
		return vendor.Name, true
	}
	if product, ok := vendor.products[productID]; ok {
		return vendor.Name + " " + product, true
	}
	return vendor.Name, true
}
