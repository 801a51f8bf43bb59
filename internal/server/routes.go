package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Downstream push streams (no auth at this boundary)
	s.echo.GET("/stream/odds", s.handleOddsStream)
	s.echo.GET("/stream/stats", s.handleStatsStream)
}
