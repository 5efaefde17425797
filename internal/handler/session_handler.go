// internal/handler/session_handler.go
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"serial-plotter/internal/config"
	"serial-plotter/internal/plot"
	"serial-plotter/internal/serialport"
	"serial-plotter/internal/session"
	"serial-plotter/internal/stream"
	"serial-plotter/internal/utils"
	"serial-plotter/internal/worker"
)

// SerialSession is the part of session.Session the HTTP layer drives
type SerialSession interface {
	Open(ctx context.Context, cfg serialport.PortConfig) error
	Close(ctx context.Context) error
	Send(text string, ending serialport.LineEnding) error
	Status() session.Status
	ListPortsDetailed() ([]serialport.PortInfo, error)
	Snapshots() []plot.Snapshot
	Snapshot(ch int) (plot.Snapshot, error)
	Transcript() *stream.Transcript
}

var _ SerialSession = (*session.Session)(nil)

// OpenRequest selects a port. Omitted settings fall back to the
// configured defaults.
type OpenRequest struct {
	Port     string `json:"port" example:"/dev/ttyUSB0"`
	BaudRate int    `json:"baud_rate,omitempty" example:"115200"`
	Parity   string `json:"parity,omitempty" example:"none" enums:"none,odd,even"`
	DataBits int    `json:"data_bits,omitempty" example:"8"`
	StopBits int    `json:"stop_bits,omitempty" example:"1"`
	XonXoff  *bool  `json:"xonxoff,omitempty"`
	RTSCTS   *bool  `json:"rtscts,omitempty"`
	DSRDTR   *bool  `json:"dsrdtr,omitempty"`
}

// SendRequest is text to transmit
type SendRequest struct {
	Text       string `json:"text" example:"ping"`
	LineEnding string `json:"line_ending,omitempty" example:"lf" enums:"none,lf,cr,crlf"`
}

// SessionHandler handles connection control requests
type SessionHandler struct {
	session SerialSession
	serial  *config.SerialConfig
	logger  *utils.ServiceLogger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sess SerialSession, serial *config.SerialConfig, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		session: sess,
		serial:  serial,
		logger:  utils.NewServiceLogger(logger, "session-handler"),
	}
}

// RegisterRoutes registers session routes
func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/session")
	{
		sessions.GET("", h.GetStatus)
		sessions.POST("/open", h.Open)
		sessions.POST("/close", h.Close)
		sessions.POST("/send", h.Send)
	}
}

// GetStatus returns the session status
// @Summary Session status
// @Description Get connection state, port settings and pipeline counters
// @Tags Session
// @Produce json
// @Success 200 {object} utils.APIResponse{data=session.Status} "Session status"
// @Router /session [get]
func (h *SessionHandler) GetStatus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Session status retrieved", h.session.Status())
}

// Open connects to a serial port
// @Summary Open a serial port
// @Description Open a port with the given line settings. Fails if a connection is already active.
// @Tags Session
// @Accept json
// @Produce json
// @Param request body OpenRequest true "Port settings"
// @Success 200 {object} utils.APIResponse{data=session.Status} "Port opened"
// @Failure 400 {object} utils.APIResponse "Invalid settings"
// @Failure 409 {object} utils.APIResponse "Already connected"
// @Failure 503 {object} utils.APIResponse "Port could not be opened"
// @Failure 504 {object} utils.APIResponse "Port did not respond in time"
// @Router /session/open [post]
func (h *SessionHandler) Open(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}

	cfg, err := h.portConfig(&req)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid port settings", err)
		return
	}

	if err := h.session.Open(c.Request.Context(), cfg); err != nil {
		h.logger.Warn("Failed to open serial port",
			zap.String("port", cfg.Port),
			zap.Error(err),
		)
		h.sessionError(c, "Failed to open serial port", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Serial port opened", h.session.Status())
}

// portConfig merges the request onto the configured defaults
func (h *SessionHandler) portConfig(req *OpenRequest) (serialport.PortConfig, error) {
	cfg := h.serial.PortConfig(req.Port)

	if req.BaudRate != 0 {
		cfg.BaudRate = req.BaudRate
	}
	if req.DataBits != 0 {
		cfg.DataBits = req.DataBits
	}
	if req.StopBits != 0 {
		cfg.StopBits = req.StopBits
	}
	if req.Parity != "" {
		parity, err := serialport.ParseParity(req.Parity)
		if err != nil {
			return cfg, err
		}
		cfg.Parity = parity
	}
	if req.XonXoff != nil {
		cfg.XonXoff = *req.XonXoff
	}
	if req.RTSCTS != nil {
		cfg.RTSCTS = *req.RTSCTS
	}
	if req.DSRDTR != nil {
		cfg.DSRDTR = *req.DSRDTR
	}
	return cfg, nil
}

// Close disconnects the serial port
// @Summary Close the serial port
// @Description Stop the connection and wait for the port to be released. Closing an idle session succeeds.
// @Tags Session
// @Produce json
// @Success 200 {object} utils.APIResponse{data=session.Status} "Port closed"
// @Failure 504 {object} utils.APIResponse "Port did not close in time"
// @Router /session/close [post]
func (h *SessionHandler) Close(c *gin.Context) {
	if err := h.session.Close(c.Request.Context()); err != nil {
		h.logger.Error("Failed to close serial port", zap.Error(err))
		h.sessionError(c, "Failed to close serial port", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Serial port closed", h.session.Status())
}

// Send transmits text to the open port
// @Summary Send text
// @Description Queue text for transmission followed by the line ending
// @Tags Session
// @Accept json
// @Produce json
// @Param request body SendRequest true "Text to send"
// @Success 202 {object} utils.APIResponse{data=object{bytes=int}} "Queued for transmission"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 409 {object} utils.APIResponse "No open port"
// @Router /session/send [post]
func (h *SessionHandler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}

	ending := serialport.LineEnding(h.serial.LineEnding)
	if req.LineEnding != "" {
		parsed, err := serialport.ParseLineEnding(req.LineEnding)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid line ending", err)
			return
		}
		ending = parsed
	}

	if err := h.session.Send(req.Text, ending); err != nil {
		h.sessionError(c, "Failed to send", err)
		return
	}

	utils.SuccessResponse(c, http.StatusAccepted, "Queued for transmission", gin.H{
		"bytes": len(req.Text) + len(ending.Bytes()),
	})
}

// sessionError maps session errors onto HTTP statuses
func (h *SessionHandler) sessionError(c *gin.Context, message string, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		utils.BindErrorResponse(c, err)
	case errors.Is(err, worker.ErrAlreadyRunning), errors.Is(err, worker.ErrNotRunning):
		utils.ErrorResponse(c, http.StatusConflict, message, err)
	case errors.Is(err, worker.ErrOpenFailed):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, message, err)
	case errors.Is(err, context.DeadlineExceeded):
		utils.ErrorResponse(c, http.StatusGatewayTimeout, message, err)
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, message, err)
	}
}
