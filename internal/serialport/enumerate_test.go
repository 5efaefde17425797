package serialport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

type fakeNamer struct {
	names map[string]string
	err   error
	calls int
}

func (f *fakeNamer) Name(vid, pid string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.names[vid+":"+pid], nil
}

func newTestLister(details []*enumerator.PortDetails, err error, namer USBNamer) *Lister {
	l := NewLister(namer, zap.NewNop())
	l.detailed = func() ([]*enumerator.PortDetails, error) { return details, err }
	return l
}

func TestLister_List(t *testing.T) {
	t.Parallel()

	namer := &fakeNamer{names: map[string]string{"2341:0043": "Arduino LLC Arduino Uno"}}
	lister := newTestLister([]*enumerator.PortDetails{
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", Product: "FT232R USB UART"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "2341", PID: "0043"},
		{Name: "/dev/ttyS0"},
		nil,
	}, nil, namer)

	ports, err := lister.List()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"/dev/ttyUSB0": "FT232R USB UART",
		"/dev/ttyACM0": "Arduino LLC Arduino Uno",
		"/dev/ttyS0":   "n/a",
	}, ports)
	assert.Equal(t, 1, namer.calls, "namer only consulted for USB ports without a product string")
}

func TestLister_ListDetailedSorted(t *testing.T) {
	t.Parallel()

	lister := newTestLister([]*enumerator.PortDetails{
		{Name: "COM7"},
		{Name: "COM10"},
		{Name: "COM1"},
	}, nil, nil)

	ports, err := lister.ListDetailed()
	require.NoError(t, err)
	require.Len(t, ports, 3)
	assert.Equal(t, "COM1", ports[0].Name)
	assert.Equal(t, "COM10", ports[1].Name)
	assert.Equal(t, "COM7", ports[2].Name)
}

func TestLister_FallbackDescriptionWhenNamerFails(t *testing.T) {
	t.Parallel()

	namer := &fakeNamer{err: ErrUSBDeviceNotFound}
	lister := newTestLister([]*enumerator.PortDetails{
		{Name: "/dev/ttyACM1", IsUSB: true, VID: "1a86", PID: "7523"},
		{Name: "/dev/ttyACM2", IsUSB: true, VID: "1234", PID: "5678"},
	}, nil, namer)

	ports, err := lister.List()
	require.NoError(t, err)
	assert.Equal(t, "QinHeng Electronics CH340 serial converter", ports["/dev/ttyACM1"])
	assert.Equal(t, "USB VID:PID=1234:5678", ports["/dev/ttyACM2"])
}

func TestAdapterDatabase_Lookup(t *testing.T) {
	t.Parallel()

	db := NewAdapterDatabase()

	tests := []struct {
		vid, pid string
		want     string
		ok       bool
	}{
		{"0403", "6001", "FTDI FT232R USB UART", true},
		{"10c4", "EA60", "Silicon Labs CP210x UART Bridge", true},
		{"2341", "ffff", "Arduino", true},
		{"2341", "", "Arduino", true},
		{"1234", "5678", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		got, ok := db.Lookup(tt.vid, tt.pid)
		assert.Equal(t, tt.ok, ok, tt.vid+":"+tt.pid)
		assert.Equal(t, tt.want, got, tt.vid+":"+tt.pid)
	}

	assert.True(t, db.IsKnownVendor(0x1A86))
	assert.False(t, db.IsKnownVendor(0x1234))
}

func TestLister_EnumeratorError(t *testing.T) {
	t.Parallel()

	lister := newTestLister(nil, errors.New("boom"), nil)

	ports, err := lister.List()
	require.Error(t, err)
	assert.Nil(t, ports)
	assert.Contains(t, err.Error(), "failed to enumerate serial ports")
}

func TestParseUSBID(t *testing.T) {
	t.Parallel()

	id, err := parseUSBID("0x2341")
	require.NoError(t, err)
	assert.EqualValues(t, 0x2341, id)

	id, err = parseUSBID("1A86")
	require.NoError(t, err)
	assert.EqualValues(t, 0x1a86, id)

	_, err = parseUSBID("zz")
	require.Error(t, err)
}

func TestNewOpener(t *testing.T) {
	t.Parallel()

	for _, d := range []Driver{DriverAuto, DriverNative, DriverTermios, ""} {
		opener, err := NewOpener(d, 0, zap.NewNop())
		require.NoError(t, err, d)
		assert.NotNil(t, opener, d)
	}

	_, err := NewOpener("bluetooth", 0, zap.NewNop())
	require.Error(t, err)
}
