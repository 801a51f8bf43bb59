package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/epinusai/feedbridge/internal/cache"
	"github.com/epinusai/feedbridge/internal/config"
	"github.com/epinusai/feedbridge/internal/dispatch"
	"github.com/epinusai/feedbridge/internal/domain"
	"github.com/epinusai/feedbridge/internal/feed"
	"github.com/epinusai/feedbridge/internal/logging"
	"github.com/epinusai/feedbridge/internal/server"
	"github.com/epinusai/feedbridge/internal/upstream"
)

func runGracefulShutdown(srv *server.Server, manager *upstream.Manager, stopEviction ...func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		manager.Shutdown()
		for _, stop := range stopEviction {
			stop()
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	oddsCache := cache.New[domain.OddsKey, float64](cfg.CacheTTL, clock)
	statsCache := cache.New[string, domain.StatsSnapshot](cfg.CacheTTL, clock)
	stopOddsEviction := oddsCache.StartEvictionTimer(cfg.CacheSweepInterval)
	stopStatsEviction := statsCache.StartEvictionTimer(cfg.CacheSweepInterval)

	manager := upstream.NewManager(
		upstream.Addresses{
			OddsLive: cfg.OddsFeedLiveURL,
			OddsTest: cfg.OddsFeedTestURL,
			Stats:    cfg.StatsFeedURL,
		},
		upstream.Caches{Odds: oddsCache, Stats: statsCache},
		clock,
		cfg.PingInterval,
	)

	coordinator := feed.NewCoordinator(manager, domain.Environment(cfg.DefaultEnvironment))
	dispatcher := dispatch.NewDispatcher(oddsCache, statsCache, clock, cfg.OddsTickInterval, cfg.StatsTickInterval)

	srv := server.NewServer(cfg, coordinator, dispatcher)

	done := runGracefulShutdown(srv, manager, stopOddsEviction, stopStatsEviction)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
