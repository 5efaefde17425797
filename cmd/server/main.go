// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "serial-plotter/docs"
	"serial-plotter/internal/config"
	"serial-plotter/internal/handler"
	"serial-plotter/internal/plot"
	"serial-plotter/internal/routes"
	"serial-plotter/internal/serialport"
	"serial-plotter/internal/session"
	"serial-plotter/internal/stream"
	"serial-plotter/internal/utils"
	"serial-plotter/internal/worker"
)

// Application represents the main application
type Application struct {
	config *config.Config
	loader *config.Loader
	logs   *utils.LoggerManager
	logger *zap.Logger
	server *http.Server

	// Serial pipeline
	worker     *worker.Worker
	transcript *stream.Transcript
	session    *session.Session

	// Stream hub
	connections *handler.ConnectionManager
	events      *handler.EventBus
}

// @title Serial Plotter API
// @version 1.0.0
// @description Serial port monitor and live plotter: connection control, text console and plot buffers

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Initialize application
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Start the application
	if err := app.Start(); err != nil {
		app.logger.Fatal("Application stopped with error", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	// Load configuration
	loader := config.NewLoader(afero.NewOsFs())
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logs, err := utils.NewLoggerManager(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := logs.Logger()

	serviceLogger := utils.NewServiceLogger(logger, "serial-plotter")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)
	if file := loader.ConfigFileUsed(); file != "" {
		logger.Info("Configuration loaded", zap.String("file", file))
	}

	app := &Application{
		config: cfg,
		loader: loader,
		logs:   logs,
		logger: logger,
	}

	// Initialize components
	if err := app.initializeSerial(); err != nil {
		return nil, fmt.Errorf("failed to initialize serial pipeline: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeSerial builds the worker, plot pipeline and session
func (app *Application) initializeSerial() error {
	serialCfg := &app.config.Serial

	opener, err := serialport.NewOpener(serialport.Driver(serialCfg.Driver), serialCfg.ReadTimeout, app.logger)
	if err != nil {
		return err
	}

	var namer serialport.USBNamer
	if serialCfg.USBLookup {
		namer = serialport.GoUSBNamer{}
	}
	lister := serialport.NewLister(namer, app.logger)

	app.worker = worker.New(opener, app.logger, worker.Options{
		ChunkSize:   serialCfg.ChunkSize,
		IdleWait:    serialCfg.WorkerIdleWait(),
		EventBuffer: serialCfg.EventBuffer,
	})

	policy, err := plot.ParseMissingPolicy(app.config.Plot.MissingPolicy)
	if err != nil {
		return err
	}

	plotter, err := plot.New(plot.Options{
		Channels:   app.config.Plot.Channels,
		BufferSize: app.config.Plot.BufferSize,
		MaxFPS:     app.config.Plot.PlotterMaxFPS(),
		Policy:     policy,
		Encoding:   app.config.Plot.Encoding,
	}, app.logger)
	if err != nil {
		return err
	}

	text, err := stream.NewTextDecoder(app.config.Plot.Encoding)
	if err != nil {
		return err
	}
	app.transcript = stream.NewTranscript(text, app.config.Console.MaxLines)
	app.transcript.SetEnabled(app.config.Console.Enabled)

	app.connections = handler.NewConnectionManager()
	app.events = handler.NewEventBus(app.connections, app.logger)

	app.session = session.New(app.worker, plotter, app.transcript, lister, app.events, app.logger, session.Options{
		ShutdownTimeout: serialCfg.ShutdownTimeout,
	})

	app.logger.Info("Serial pipeline initialized",
		zap.String("driver", serialCfg.Driver),
		zap.Int("channels", plotter.Channels()),
		zap.Int("buffer_size", plotter.BufferSize()),
		zap.String("missing_policy", string(plotter.Policy())),
	)
	return nil
}

// initializeServer creates the HTTP server
func (app *Application) initializeServer() error {
	router, err := routes.NewRouter(app.config, app.logger, app.session, app.connections).SetupRouter()
	if err != nil {
		return err
	}

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized", zap.String("address", app.server.Addr))
	return nil
}

// watchConfig applies logging and console changes without a restart
func (app *Application) watchConfig() {
	if app.loader.ConfigFileUsed() == "" {
		return
	}

	app.loader.Watch(func(cfg *config.Config, err error) {
		if err != nil {
			app.logger.Warn("Ignoring invalid configuration change", zap.Error(err))
			return
		}

		if err := app.logs.SetLevel(cfg.Logging.Level); err != nil {
			app.logger.Warn("Failed to change log level", zap.Error(err))
		}
		app.transcript.SetEnabled(cfg.Console.Enabled)
		app.transcript.SetMaxLines(cfg.Console.MaxLines)

		app.logger.Info("Configuration reloaded",
			zap.String("log_level", cfg.Logging.Level),
			zap.Bool("console_enabled", cfg.Console.Enabled),
		)
	})
}

// Start runs the server and the session until a shutdown signal arrives
func (app *Application) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The pipeline outlives the signal so the port can be closed cleanly
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return app.connections.Run(runCtx) })
	g.Go(func() error { return app.events.Run(runCtx) })
	g.Go(func() error { return app.session.Run(runCtx) })

	g.Go(func() error {
		app.logger.Info("Starting HTTP server", zap.String("address", app.server.Addr))

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info("Shutdown requested")
		app.shutdown()
		cancelRun()
		return nil
	})

	app.watchConfig()

	err := g.Wait()

	app.logger.Info("Application shutdown completed")
	if closeErr := utils.CloseLogger(app.logger); closeErr != nil {
		fmt.Printf("Logger close error: %v\n", closeErr)
	}
	return err
}

// shutdown closes the serial port and stops the HTTP server
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "serial-plotter")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.session.Shutdown(ctx); err != nil {
		app.logger.Error("Serial session shutdown error", zap.Error(err))
	}

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}
}
