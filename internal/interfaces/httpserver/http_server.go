package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"abby-server/internal/config"
	middleware "abby-server/internal/interfaces/httpserver/middlewares"
	"abby-server/internal/interfaces/httpserver/routes"
)

// HTTPServer hosts the API on a gin engine with the shared middleware stack.
type HTTPServer struct {
	engine *gin.Engine
	routes *routes.Routes
	config *config.Config
}

// NewHTTPServer assembles the engine, middlewares, and health endpoints.
func NewHTTPServer(apiRoutes *routes.Routes, cfg *config.Config, logger zerolog.Logger) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := HTTPServer{
		engine: gin.New(),
		routes: apiRoutes,
		config: cfg,
	}
	server.engine.Use(gin.Recovery())
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(logger))
	server.engine.Use(middleware.MetricsMiddleware())
	server.engine.Use(middleware.CORSMiddleware())

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server.engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	apiRoutes.RegisterRouter(server.engine.Group("/"))

	return &server
}

// Handler exposes the engine for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *HTTPServer) Run() error {
	if err := s.engine.Run(fmt.Sprintf(":%d", s.config.HTTPPort)); err != nil {
		return err
	}
	return nil
}
