// internal/utils/logger.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"serial-plotter/internal/config"
)

// LoggerManager manages application logging
type LoggerManager struct {
	logger *zap.Logger
	level  zap.AtomicLevel
	config *config.LoggingConfig
}

// NewLogger creates a new logger instance based on configuration
func NewLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	manager, err := NewLoggerManager(cfg)
	if err != nil {
		return nil, err
	}
	return manager.Logger(), nil
}

// NewLoggerManager creates a logger whose level can be changed at runtime
func NewLoggerManager(cfg *config.LoggingConfig) (*LoggerManager, error) {
	manager := &LoggerManager{
		config: cfg,
	}

	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	manager.level = zap.NewAtomicLevelAt(level)

	logger, err := manager.createLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	manager.logger = logger
	return manager, nil
}

// Logger returns the root logger
func (lm *LoggerManager) Logger() *zap.Logger {
	return lm.logger
}

// Level returns the current level name
func (lm *LoggerManager) Level() string {
	return lm.level.Level().String()
}

// SetLevel changes the level of every logger derived from the root
func (lm *LoggerManager) SetLevel(name string) error {
	level, err := parseLogLevel(name)
	if err != nil {
		return err
	}
	if level == lm.level.Level() {
		return nil
	}

	lm.logger.Info("Log level changed",
		zap.String("from", lm.level.Level().String()),
		zap.String("to", level.String()),
	)
	lm.level.SetLevel(level)
	return nil
}

// createLogger creates the zap logger with proper configuration
func (lm *LoggerManager) createLogger() (*zap.Logger, error) {
	encoderConfig := lm.getEncoderConfig()

	var encoder zapcore.Encoder
	switch lm.config.Format {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	writeSyncer, err := lm.getWriteSyncer()
	if err != nil {
		return nil, fmt.Errorf("failed to create write syncer: %w", err)
	}

	core := zapcore.NewCore(encoder, writeSyncer, lm.level)

	return zap.New(core, lm.getLoggerOptions()...), nil
}

// getEncoderConfig returns encoder configuration based on format
func (lm *LoggerManager) getEncoderConfig() zapcore.EncoderConfig {
	config := zap.NewProductionEncoderConfig()

	config.TimeKey = "timestamp"
	config.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339Nano)
	config.LevelKey = "level"
	config.EncodeLevel = zapcore.LowercaseLevelEncoder
	config.CallerKey = "caller"
	config.EncodeCaller = zapcore.ShortCallerEncoder
	config.MessageKey = "message"
	config.StacktraceKey = "stacktrace"

	// Console format customizations
	if lm.config.Format == "console" {
		config.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	}

	return config
}

// getWriteSyncer returns write syncer based on output configuration
func (lm *LoggerManager) getWriteSyncer() (zapcore.WriteSyncer, error) {
	switch lm.config.Output {
	case "stdout":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	}

	output := lm.config.Output
	if output == "" {
		output = "./logs/serial-plotter.log"
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// File output with rotation
	lumber := &lumberjack.Logger{
		Filename:   output,
		MaxSize:    lm.config.MaxSize, // MB
		MaxBackups: lm.config.MaxBackups,
		MaxAge:     lm.config.MaxAge, // days
		Compress:   lm.config.Compress,
	}

	return zapcore.AddSync(lumber), nil
}

func parseLogLevel(name string) (zapcore.Level, error) {
	switch name {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "fatal":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", name)
	}
}

// getLoggerOptions returns logger options
func (lm *LoggerManager) getLoggerOptions() []zap.Option {
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	}
}

// ConnectionLogger wraps zap.Logger with serial connection context
type ConnectionLogger struct {
	*zap.Logger
	port string
}

// NewConnectionLogger creates a logger scoped to one serial device
func NewConnectionLogger(baseLogger *zap.Logger, port, settings string) *ConnectionLogger {
	return &ConnectionLogger{
		Logger: baseLogger.With(
			zap.String("port", port),
			zap.String("settings", settings),
			zap.String("component", "connection"),
		),
		port: port,
	}
}

// LogConnection logs open and close requests
func (cl *ConnectionLogger) LogConnection(action string, duration time.Duration, err error) {
	fields := []zap.Field{
		zap.String("action", action),
		zap.Duration("duration", duration),
		zap.Bool("success", err == nil),
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		cl.Error("Serial connection event", fields...)
		return
	}
	cl.Info("Serial connection event", fields...)
}

// LogTransmit logs user input sent to the device
func (cl *ConnectionLogger) LogTransmit(bytes int, lineEnding string, err error) {
	if err != nil {
		cl.Warn("Transmit rejected",
			zap.Int("bytes", bytes),
			zap.String("line_ending", lineEnding),
			zap.Error(err),
		)
		return
	}
	cl.Debug("Transmit queued",
		zap.Int("bytes", bytes),
		zap.String("line_ending", lineEnding),
	)
}

// ServiceLogger provides service-level logging functionality
type ServiceLogger struct {
	*zap.Logger
	serviceName string
}

// NewServiceLogger creates a service-specific logger
func NewServiceLogger(baseLogger *zap.Logger, serviceName string) *ServiceLogger {
	logger := baseLogger.With(
		zap.String("service", serviceName),
		zap.String("component", "service"),
	)

	return &ServiceLogger{
		Logger:      logger,
		serviceName: serviceName,
	}
}

// LogServiceStart logs service startup
func (sl *ServiceLogger) LogServiceStart(version string, config interface{}) {
	sl.Info("Service starting",
		zap.String("version", version),
		zap.Any("config", config),
	)
}

// LogServiceStop logs service shutdown
func (sl *ServiceLogger) LogServiceStop(reason string) {
	sl.Info("Service stopping",
		zap.String("reason", reason),
	)
}

// LogAPIRequest logs HTTP API requests
func (sl *ServiceLogger) LogAPIRequest(requestID, method, path, clientIP string, statusCode int, duration time.Duration) {
	level := zapcore.DebugLevel
	if statusCode >= 400 {
		level = zapcore.WarnLevel
	}
	if statusCode >= 500 {
		level = zapcore.ErrorLevel
	}

	if ce := sl.Check(level, "API request"); ce != nil {
		ce.Write(
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("client_ip", clientIP),
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
		)
	}
}

// LoggerWithRequestID adds request ID to logger
func LoggerWithRequestID(logger *zap.Logger, requestID string) *zap.Logger {
	return logger.With(zap.String("request_id", requestID))
}

// CloseLogger flushes buffered log entries
func CloseLogger(logger *zap.Logger) error {
	return logger.Sync()
}
