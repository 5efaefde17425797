package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"serial-plotter/internal/config"
	"serial-plotter/internal/handler"
	"serial-plotter/internal/middleware"
	"serial-plotter/internal/plot"
	"serial-plotter/internal/serialport/serialtest"
	"serial-plotter/internal/session"
	"serial-plotter/internal/stream"
	"serial-plotter/internal/worker"
)

func TestSetupRouter(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		App:    config.AppConfig{Name: "serial-plotter", Version: "test", Environment: "production"},
		Serial: config.SerialConfig{LineEnding: "lf"},
		Plot:   config.PlotConfig{Channels: 2, BufferSize: 10},
	}

	w := worker.New(serialtest.NewOpener(serialtest.NewMockPort()), logger, worker.Options{})
	plotter, err := plot.New(plot.Options{Channels: 2, BufferSize: 10}, logger)
	require.NoError(t, err)
	sess := session.New(w, plotter, stream.NewTranscript(nil, 0), nil, nil, logger, session.Options{})

	router, err := NewRouter(cfg, logger, sess, handler.NewConnectionManager()).SetupRouter()
	require.NoError(t, err)

	tests := []struct {
		path   string
		status int
	}{
		{"/", http.StatusOK},
		{"/live", http.StatusOK},
		{"/ready", http.StatusServiceUnavailable},
		{"/api/v1/session", http.StatusOK},
		{"/api/v1/plots/0", http.StatusOK},
		{"/api/v1/console", http.StatusOK},
		{"/api/v1/ports/baudrates", http.StatusOK},
		{"/docs", http.StatusMovedPermanently},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		})
	}
}
