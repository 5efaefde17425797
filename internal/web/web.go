// internal/web/web.go
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"serial-plotter/internal/config"
	"serial-plotter/internal/serialport"
)

//go:embed templates/index.html
var templates embed.FS

// PageData is rendered into the plotter page
type PageData struct {
	Title      string
	Version    string
	Channels   int
	BufferSize int
	BaudRates  []int
	Default    serialport.PortConfig
	LineEnding string
	APIBase    string
	StreamPath string
}

// Handler serves the browser front end
type Handler struct {
	page   []byte
	logger *zap.Logger
}

// NewHandler renders the page once for the given configuration
func NewHandler(cfg *config.Config, logger *zap.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	data := PageData{
		Title:      cfg.App.Name,
		Version:    cfg.App.Version,
		Channels:   cfg.Plot.Channels,
		BufferSize: cfg.Plot.BufferSize,
		BaudRates:  serialport.BaudRates,
		Default:    cfg.Serial.PortConfig("").WithDefaults(),
		LineEnding: cfg.Serial.LineEnding,
		APIBase:    "/api/v1",
		StreamPath: "/ws/stream",
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}

	return &Handler{
		page:   buf.Bytes(),
		logger: logger.With(zap.String("component", "web")),
	}, nil
}

// RegisterRoutes mounts the page at the root
func (h *Handler) RegisterRoutes(router gin.IRoutes) {
	router.GET("/", h.Index)
}

// Index serves the plotter page
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.page)
}
