// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"serial-plotter/internal/serialport"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Serial   SerialConfig   `mapstructure:"serial"`
	Plot     PlotConfig     `mapstructure:"plot"`
	Console  ConsoleConfig  `mapstructure:"console"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLS          TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file" validate:"required_if=Enabled true"`
	KeyFile  string `mapstructure:"key_file" validate:"required_if=Enabled true"`
}

// SerialConfig represents the serial worker settings
type SerialConfig struct {
	Driver          string            `mapstructure:"driver" validate:"oneof=auto native termios"`
	ChunkSize       int               `mapstructure:"chunk_size" validate:"min=1,max=65536"`
	ReadTimeout     time.Duration     `mapstructure:"read_timeout" validate:"min=0"`
	IdleWait        time.Duration     `mapstructure:"idle_wait" validate:"min=0"`
	EventBuffer     int               `mapstructure:"event_buffer" validate:"min=1"`
	ShutdownTimeout time.Duration     `mapstructure:"shutdown_timeout" validate:"min=0"`
	LineEnding      string            `mapstructure:"line_ending" validate:"oneof=none lf cr crlf"`
	USBLookup       bool              `mapstructure:"usb_lookup"`
	Default         DefaultPortConfig `mapstructure:"default"`
}

// DefaultPortConfig holds the settings used when an open request leaves
// fields empty
type DefaultPortConfig struct {
	Port     string `mapstructure:"port"`
	BaudRate int    `mapstructure:"baud_rate" validate:"baudrate"`
	Parity   string `mapstructure:"parity" validate:"oneof=none odd even"`
	DataBits int    `mapstructure:"data_bits" validate:"oneof=5 6 7 8"`
	StopBits int    `mapstructure:"stop_bits" validate:"oneof=1 2"`
	XonXoff  bool   `mapstructure:"xonxoff"`
	RTSCTS   bool   `mapstructure:"rtscts"`
	DSRDTR   bool   `mapstructure:"dsrdtr"`
}

// PlotConfig represents the plot pipeline settings
type PlotConfig struct {
	Channels      int    `mapstructure:"channels" validate:"min=1,max=16"`
	BufferSize    int    `mapstructure:"buffer_size" validate:"min=1,max=100000"`
	MaxFPS        int    `mapstructure:"max_fps" validate:"min=0"`
	MissingPolicy string `mapstructure:"missing_policy" validate:"oneof=hold skip"`
	Encoding      string `mapstructure:"encoding"`
}

// ConsoleConfig represents the text view settings
type ConsoleConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	MaxLines int  `mapstructure:"max_lines" validate:"min=0"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error fatal"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"oneof=development staging production test"`
	Debug       bool   `mapstructure:"debug"`
}

// Loader reads configuration from a file system, environment variables and defaults
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader that searches paths for config.yaml. Without
// paths it looks in the working directory, ./configs and ./internal/config.
func NewLoader(fs afero.Fs, paths ...string) *Loader {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if len(paths) == 0 {
		paths = []string{".", "./configs", "./internal/config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable support
	v.SetEnvPrefix("SERIAL_PLOTTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return &Loader{v: v}
}

// Load loads configuration from the real file system
func Load() (*Config, error) {
	return NewLoader(afero.NewOsFs()).Load()
}

// Load reads the config file, if any, and returns the validated configuration
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// ConfigFileUsed returns the path of the loaded config file, or ""
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Watch reloads the configuration whenever the config file changes
func (l *Loader) Watch(onChange func(*Config, error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.decode())
	})
	l.v.WatchConfig()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls.enabled", false)
	v.SetDefault("server.tls.cert_file", "")
	v.SetDefault("server.tls.key_file", "")

	// Serial defaults
	v.SetDefault("serial.driver", string(serialport.DriverAuto))
	v.SetDefault("serial.chunk_size", 100)
	v.SetDefault("serial.read_timeout", "0s")
	v.SetDefault("serial.idle_wait", "1ms")
	v.SetDefault("serial.event_buffer", 256)
	v.SetDefault("serial.shutdown_timeout", "3s")
	v.SetDefault("serial.line_ending", string(serialport.LineEndingLF))
	v.SetDefault("serial.usb_lookup", false)
	v.SetDefault("serial.default.port", "")
	v.SetDefault("serial.default.baud_rate", serialport.DefaultBaudRate)
	v.SetDefault("serial.default.parity", string(serialport.ParityNone))
	v.SetDefault("serial.default.data_bits", serialport.DefaultDataBits)
	v.SetDefault("serial.default.stop_bits", serialport.DefaultStopBits)
	v.SetDefault("serial.default.xonxoff", false)
	v.SetDefault("serial.default.rtscts", false)
	v.SetDefault("serial.default.dsrdtr", false)

	// Plot defaults
	v.SetDefault("plot.channels", 2)
	v.SetDefault("plot.buffer_size", 300)
	v.SetDefault("plot.max_fps", 60)
	v.SetDefault("plot.missing_policy", "hold")
	v.SetDefault("plot.encoding", "utf-8")

	// Console defaults
	v.SetDefault("console.enabled", true)
	v.SetDefault("console.max_lines", 1000)

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"http://localhost:8080", "http://127.0.0.1:8080"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// App defaults
	v.SetDefault("app.name", "serial-plotter")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

var configValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("baudrate", func(fl validator.FieldLevel) bool {
		return serialport.IsSupportedBaudRate(int(fl.Field().Int()))
	})
	return v
}

// validate validates the configuration
func validate(config *Config) error {
	if err := configValidator.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on the '%s' rule", fe.Namespace(), fe.Tag())
		}
		return err
	}
	return nil
}

// PortConfig returns the default connection settings for port. An empty
// port falls back to serial.default.port.
func (c *SerialConfig) PortConfig(port string) serialport.PortConfig {
	if port == "" {
		port = c.Default.Port
	}
	return serialport.PortConfig{
		Port:     port,
		BaudRate: c.Default.BaudRate,
		Parity:   serialport.Parity(c.Default.Parity),
		DataBits: c.Default.DataBits,
		StopBits: c.Default.StopBits,
		XonXoff:  c.Default.XonXoff,
		RTSCTS:   c.Default.RTSCTS,
		DSRDTR:   c.Default.DSRDTR,
	}
}

// WorkerIdleWait maps the configured idle wait to the worker option, where
// a negative value means yield only
func (c *SerialConfig) WorkerIdleWait() time.Duration {
	if c.IdleWait == 0 {
		return -1
	}
	return c.IdleWait
}

// PlotterMaxFPS maps the configured frame rate to the plotter option.
// Zero disables rate limiting.
func (c *PlotConfig) PlotterMaxFPS() int {
	if c.MaxFPS == 0 {
		return -1
	}
	return c.MaxFPS
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
