package server

import (
	"time"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// handleReadiness reports ready as soon as the process serves traffic:
// upstream connections are created lazily on the first subscribe, so there is
// no dependency to probe ahead of time.
func (s *Server) handleReadiness(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ready"})
}
