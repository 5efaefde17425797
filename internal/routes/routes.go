// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"serial-plotter/internal/config"
	"serial-plotter/internal/handler"
	"serial-plotter/internal/middleware"
	"serial-plotter/internal/serialport"
	"serial-plotter/internal/utils"
	"serial-plotter/internal/web"
)

// Router holds all dependencies for routing
type Router struct {
	config      *config.Config
	logger      *zap.Logger
	session     handler.SerialSession
	connections *handler.ConnectionManager
}

// NewRouter creates a new router instance
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	session handler.SerialSession,
	connections *handler.ConnectionManager,
) *Router {
	return &Router{
		config:      config,
		logger:      logger,
		session:     session,
		connections: connections,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() (*gin.Engine, error) {
	// Set Gin mode
	if r.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Create Gin engine
	router := gin.New()

	// Add middleware
	r.addMiddleware(router)

	// Add routes
	if err := r.addRoutes(router); err != nil {
		return nil, err
	}

	return router, nil
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RecoveryMiddleware(r.logger))
	router.Use(middleware.RequestIDMiddleware())

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) error {
	// Create handlers
	healthHandler := handler.NewHealthHandler(r.session, r.connections, r.config, r.logger)
	sessionHandler := handler.NewSessionHandler(r.session, &r.config.Serial, r.logger)
	portsHandler := handler.NewPortsHandler(r.session, r.logger)
	plotHandler := handler.NewPlotHandler(r.session, r.logger)
	consoleHandler := handler.NewConsoleHandler(r.session, r.logger)
	wsHandler := handler.NewWebSocketHandler(
		r.connections,
		r.session,
		r.config.Security.AllowedOrigins,
		serialport.LineEnding(r.config.Serial.LineEnding),
		r.logger,
	)

	webHandler, err := web.NewHandler(r.config, r.logger)
	if err != nil {
		return err
	}

	// Health check routes
	healthHandler.RegisterRoutes(&router.RouterGroup)

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	sessionHandler.RegisterRoutes(apiV1)
	portsHandler.RegisterRoutes(apiV1)
	plotHandler.RegisterRoutes(apiV1)
	consoleHandler.RegisterRoutes(apiV1)

	// WebSocket routes
	r.addWebSocketRoutes(router, wsHandler)

	// Documentation routes
	r.addDocumentationRoutes(router)

	// Browser front end
	webHandler.RegisterRoutes(router)

	r.logger.Info("All routes configured successfully")
	return nil
}

// addWebSocketRoutes sets up WebSocket routes
func (r *Router) addWebSocketRoutes(router *gin.Engine, handler *handler.WebSocketHandler) {
	ws := router.Group("/ws")
	{
		ws.GET("/stream", handler.HandleStream)
	}
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	// Swagger redirect for convenience
	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
