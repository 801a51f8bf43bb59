package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/epinusai/feedbridge/internal/config"
	"github.com/epinusai/feedbridge/internal/dispatch"
	"github.com/epinusai/feedbridge/internal/domain"
	"github.com/epinusai/feedbridge/internal/errors"
	"github.com/epinusai/feedbridge/internal/feed"
)

// oddsStreamer is the subset of the dispatcher the odds endpoint needs.
type oddsStreamer interface {
	RunOdds(ctx context.Context, sink dispatch.Sink, conditionIDs []string, env domain.Environment) error
}

// statsStreamer is the subset of the dispatcher the stats endpoint needs.
type statsStreamer interface {
	RunStats(ctx context.Context, sink dispatch.Sink, gameIDs []string) error
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	coordinator *feed.Coordinator
	odds        oddsStreamer
	stats       statsStreamer
	startTime   time.Time
}

func NewServer(cfg *config.Config, coordinator *feed.Coordinator, dispatcher *dispatch.Dispatcher) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(errors.Middleware())

	srv := &Server{
		echo:        e,
		config:      cfg,
		coordinator: coordinator,
		odds:        dispatcher,
		stats:       dispatcher,
		startTime:   time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
