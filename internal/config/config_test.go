package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serial-plotter/internal/serialport"
)

func writeConfig(t *testing.T, fs afero.Fs, path, body string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0o600))
}

func TestLoader_DefaultsWithoutFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	cfg, err := NewLoader(fs, "/etc/serial-plotter").Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.GetServerAddr())
	assert.Equal(t, "auto", cfg.Serial.Driver)
	assert.Equal(t, 100, cfg.Serial.ChunkSize)
	assert.Equal(t, time.Millisecond, cfg.Serial.IdleWait)
	assert.Equal(t, 3*time.Second, cfg.Serial.ShutdownTimeout)
	assert.Equal(t, "lf", cfg.Serial.LineEnding)
	assert.Equal(t, 115200, cfg.Serial.Default.BaudRate)
	assert.Equal(t, 2, cfg.Plot.Channels)
	assert.Equal(t, 300, cfg.Plot.BufferSize)
	assert.Equal(t, 60, cfg.Plot.MaxFPS)
	assert.Equal(t, "hold", cfg.Plot.MissingPolicy)
	assert.True(t, cfg.Console.Enabled)
	assert.Equal(t, 1000, cfg.Console.MaxLines)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsDebugEnabled())
}

func TestLoader_ReadsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "/etc/serial-plotter/config.yaml", `
server:
  port: "9090"
serial:
  driver: termios
  idle_wait: 5ms
  default:
    port: /dev/ttyACM0
    baud_rate: 9600
    parity: even
    data_bits: 7
    rtscts: true
plot:
  channels: 4
  missing_policy: skip
app:
  environment: production
`)

	loader := NewLoader(fs, "/etc/serial-plotter")
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "/etc/serial-plotter/config.yaml", loader.ConfigFileUsed())
	assert.Equal(t, "127.0.0.1:9090", cfg.GetServerAddr())
	assert.Equal(t, "termios", cfg.Serial.Driver)
	assert.Equal(t, 5*time.Millisecond, cfg.Serial.WorkerIdleWait())
	assert.Equal(t, 4, cfg.Plot.Channels)
	assert.Equal(t, "skip", cfg.Plot.MissingPolicy)
	assert.True(t, cfg.IsProduction())

	port := cfg.Serial.PortConfig("")
	assert.Equal(t, serialport.PortConfig{
		Port:     "/dev/ttyACM0",
		BaudRate: 9600,
		Parity:   serialport.ParityEven,
		DataBits: 7,
		StopBits: 1,
		RTSCTS:   true,
	}, port)
	require.NoError(t, port.Validate())

	assert.Equal(t, "COM9", cfg.Serial.PortConfig("COM9").Port)
}

func TestLoader_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERIAL_PLOTTER_PLOT_BUFFER_SIZE", "500")
	t.Setenv("SERIAL_PLOTTER_SERIAL_DEFAULT_BAUD_RATE", "57600")

	cfg, err := NewLoader(afero.NewMemMapFs(), "/nowhere").Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Plot.BufferSize)
	assert.Equal(t, 57600, cfg.Serial.Default.BaudRate)
}

func TestLoader_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "bad baud rate", body: "serial:\n  default:\n    baud_rate: 1234\n", want: "BaudRate"},
		{name: "bad driver", body: "serial:\n  driver: bluetooth\n", want: "Driver"},
		{name: "bad policy", body: "plot:\n  missing_policy: interpolate\n", want: "MissingPolicy"},
		{name: "zero channels", body: "plot:\n  channels: 0\n", want: "Channels"},
		{name: "bad log level", body: "logging:\n  level: verbose\n", want: "Level"},
		{name: "tls without cert", body: "server:\n  tls:\n    enabled: true\n", want: "CertFile"},
		{name: "bad line ending", body: "serial:\n  line_ending: nul\n", want: "LineEnding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			writeConfig(t, fs, "/cfg/config.yaml", tt.body)

			_, err := NewLoader(fs, "/cfg").Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoader_MalformedFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeConfig(t, fs, "/cfg/config.yaml", "server: [unterminated\n")

	_, err := NewLoader(fs, "/cfg").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestSerialConfig_ZeroIdleWaitYields(t *testing.T) {
	c := SerialConfig{}
	assert.Equal(t, time.Duration(-1), c.WorkerIdleWait())
}

func TestPlotConfig_ZeroMaxFPSUnlimited(t *testing.T) {
	c := PlotConfig{}
	assert.Equal(t, -1, c.PlotterMaxFPS())

	c.MaxFPS = 30
	assert.Equal(t, 30, c.PlotterMaxFPS())
}
