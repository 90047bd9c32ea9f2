package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.Use(requestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(ErrorHandlingMiddleware())

	// Clients connect on whatever path they were configured with; / is what
	// shipped displays use.
	s.echo.GET("/", s.handleWebSocket)
	s.echo.GET("/ws", s.handleWebSocket)

	s.registerHealthRoutes()
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.echo.Group("/api")
	api.GET("/screens", s.handleListScreens)
	api.GET("/screens/:screenId/snapshot", s.handleGetSnapshot)
	api.PUT("/screens/:screenId/snapshot", s.handlePutSnapshot)
}
