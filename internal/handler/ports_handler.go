// internal/handler/ports_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"serial-plotter/internal/serialport"
	"serial-plotter/internal/utils"
)

// PortsHandler lists serial devices and the supported line settings
type PortsHandler struct {
	session SerialSession
	logger  *utils.ServiceLogger
}

// NewPortsHandler creates a new ports handler
func NewPortsHandler(sess SerialSession, logger *zap.Logger) *PortsHandler {
	return &PortsHandler{
		session: sess,
		logger:  utils.NewServiceLogger(logger, "ports-handler"),
	}
}

// RegisterRoutes registers port routes
func (h *PortsHandler) RegisterRoutes(router *gin.RouterGroup) {
	ports := router.Group("/ports")
	{
		ports.GET("", h.ListPorts)
		ports.GET("/baudrates", h.GetBaudRates)
		ports.GET("/options", h.GetOptions)
	}
}

// ListPorts enumerates the available serial ports
// @Summary List serial ports
// @Description Enumerate serial devices with their descriptions. USB adapters include vendor and product IDs.
// @Tags Ports
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{ports=[]serialport.PortInfo,count=int}} "Ports listed"
// @Failure 500 {object} utils.APIResponse "Enumeration failed"
// @Router /ports [get]
func (h *PortsHandler) ListPorts(c *gin.Context) {
	ports, err := h.session.ListPortsDetailed()
	if err != nil {
		h.logger.Error("Failed to list serial ports", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list serial ports", err)
		return
	}
	if ports == nil {
		ports = []serialport.PortInfo{}
	}

	utils.SuccessResponse(c, http.StatusOK, "Serial ports listed", gin.H{
		"ports": ports,
		"count": len(ports),
	})
}

// GetBaudRates returns the supported baud rates
// @Summary Supported baud rates
// @Tags Ports
// @Produce json
// @Success 200 {object} utils.APIResponse{data=object{baud_rates=[]int,default=int}} "Baud rates"
// @Router /ports/baudrates [get]
func (h *PortsHandler) GetBaudRates(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Supported baud rates", gin.H{
		"baud_rates": serialport.BaudRates,
		"default":    serialport.DefaultBaudRate,
	})
}

// GetOptions returns the selectable line settings
// @Summary Line setting options
// @Description Parity, data bits, stop bits and line ending choices
// @Tags Ports
// @Produce json
// @Success 200 {object} utils.APIResponse "Options"
// @Router /ports/options [get]
func (h *PortsHandler) GetOptions(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Line setting options", gin.H{
		"parities":     []serialport.Parity{serialport.ParityNone, serialport.ParityOdd, serialport.ParityEven},
		"data_bits":    []int{5, 6, 7, 8},
		"stop_bits":    []int{1, 2},
		"line_endings": serialport.LineEndings,
	})
}
