// internal/handler/console_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"serial-plotter/internal/utils"
)

// ConsoleSettings updates the text view
type ConsoleSettings struct {
	Enabled  *bool `json:"enabled,omitempty"`
	MaxLines *int  `json:"max_lines,omitempty" binding:"omitempty,min=1"`
}

// ConsoleHandler exposes the received text transcript
type ConsoleHandler struct {
	session SerialSession
	logger  *utils.ServiceLogger
}

// NewConsoleHandler creates a new console handler
func NewConsoleHandler(sess SerialSession, logger *zap.Logger) *ConsoleHandler {
	return &ConsoleHandler{
		session: sess,
		logger:  utils.NewServiceLogger(logger, "console-handler"),
	}
}

// RegisterRoutes registers console routes
func (h *ConsoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	console := router.Group("/console")
	{
		console.GET("", h.GetConsole)
		console.PUT("", h.UpdateConsole)
		console.DELETE("", h.ClearConsole)
	}
}

func (h *ConsoleHandler) view() gin.H {
	t := h.session.Transcript()
	return gin.H{
		"enabled":   t.Enabled(),
		"max_lines": t.MaxLines(),
		"lines":     t.Lines(),
	}
}

// GetConsole returns the retained text
// @Summary Received text
// @Tags Console
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{enabled=bool,max_lines=int,lines=[]string}} "Transcript"
// @Router /console [get]
func (h *ConsoleHandler) GetConsole(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Console retrieved", h.view())
}

// UpdateConsole toggles the text view or changes its length
// @Summary Update console settings
// @Tags Console
// @Accept json
// @Produce json
// @Param request body ConsoleSettings true "Settings"
// @Success 200 {object} utils.APIResponse "Console updated"
// @Failure 400 {object} utils.APIResponse "Invalid settings"
// @Router /console [put]
func (h *ConsoleHandler) UpdateConsole(c *gin.Context) {
	var req ConsoleSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BindErrorResponse(c, err)
		return
	}

	t := h.session.Transcript()
	if req.Enabled != nil {
		t.SetEnabled(*req.Enabled)
	}
	if req.MaxLines != nil {
		t.SetMaxLines(*req.MaxLines)
	}

	h.logger.Info("Console settings updated",
		zap.Bool("enabled", t.Enabled()),
		zap.Int("max_lines", t.MaxLines()),
	)
	utils.SuccessResponse(c, http.StatusOK, "Console updated", h.view())
}

// ClearConsole drops the retained text
// @Summary Clear console
// @Tags Console
// @Produce json
// @Success 200 {object} utils.APIResponse "Console cleared"
// @Router /console [delete]
func (h *ConsoleHandler) ClearConsole(c *gin.Context) {
	h.session.Transcript().Clear()
	utils.SuccessResponse(c, http.StatusOK, "Console cleared", h.view())
}
