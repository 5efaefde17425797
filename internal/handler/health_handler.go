// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"serial-plotter/internal/config"
	"serial-plotter/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	session     SerialSession
	connections *ConnectionManager
	config      *config.Config
	startedAt   time.Time
	logger      *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sess SerialSession, connections *ConnectionManager, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		session:     sess,
		connections: connections,
		config:      config,
		startedAt:   time.Now(),
		logger:      utils.NewServiceLogger(logger, "health-handler"),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/ready", h.ReadinessCheck)
	router.GET("/live", h.LivenessCheck)
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Get service health including the serial session and stream hub
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]CheckResult),
	}

	status := h.session.Status()
	serial := CheckResult{
		Status:  "healthy",
		Message: "Serial session " + status.State.String(),
		Data: map[string]interface{}{
			"state":       status.State,
			"bytes_read":  status.Worker.BytesRead,
			"disconnects": status.Worker.Disconnects,
		},
	}
	if status.Port != nil {
		serial.Data["port"] = status.Port.String()
	}
	if status.LastError != "" {
		serial.Data["last_error"] = status.LastError
	}
	health.Checks["serial"] = serial

	if h.connections.Running() {
		stats := h.connections.GetStats()
		health.Checks["stream"] = CheckResult{
			Status: "healthy",
			Data: map[string]interface{}{
				"clients": stats.TotalConnections,
			},
		}
	} else {
		health.Status = "unhealthy"
		health.Checks["stream"] = CheckResult{
			Status:  "unhealthy",
			Message: "Stream hub is not running",
		}
	}

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// ReadinessCheck for Kubernetes readiness probe
// @Summary Readiness check
// @Description Check if service is ready to accept traffic
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if !h.connections.Running() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "stream hub not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck for Kubernetes liveness probe
// @Summary Liveness check
// @Description Check if service is alive
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
