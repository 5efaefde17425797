// internal/handler/plot_handler.go
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"serial-plotter/internal/utils"
)

// PlotHandler serves copies of the plot buffers
type PlotHandler struct {
	session SerialSession
	logger  *utils.ServiceLogger
}

// NewPlotHandler creates a new plot handler
func NewPlotHandler(sess SerialSession, logger *zap.Logger) *PlotHandler {
	return &PlotHandler{
		session: sess,
		logger:  utils.NewServiceLogger(logger, "plot-handler"),
	}
}

// RegisterRoutes registers plot routes
func (h *PlotHandler) RegisterRoutes(router *gin.RouterGroup) {
	plots := router.Group("/plots")
	{
		plots.GET("", h.ListPlots)
		plots.GET("/:channel", h.GetPlot)
	}
}

// ListPlots returns every channel's buffer
// @Summary All plot channels
// @Tags Plots
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{channels=[]plot.Snapshot}} "Plot buffers"
// @Router /plots [get]
func (h *PlotHandler) ListPlots(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Plot buffers retrieved", gin.H{
		"channels": h.session.Snapshots(),
	})
}

// GetPlot returns one channel's buffer
// @Summary One plot channel
// @Tags Plots
// @Produce json
// @Param channel path int true "Channel index, starting at 0"
// @Success 200 {object} utils.APIResponse{data=plot.Snapshot} "Plot buffer"
// @Failure 400 {object} utils.APIResponse "Invalid channel"
// @Failure 404 {object} utils.APIResponse "No such channel"
// @Router /plots/{channel} [get]
func (h *PlotHandler) GetPlot(c *gin.Context) {
	ch, err := strconv.Atoi(c.Param("channel"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid channel", err)
		return
	}

	snap, err := h.session.Snapshot(ch)
	if err != nil {
		utils.ErrorResponse(c, http.StatusNotFound, "Channel not found", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Plot buffer retrieved", snap)
}
