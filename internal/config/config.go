package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// Upstream feed addresses. The odds feed has one address per environment.
	OddsFeedLiveURL string `env:"ODDS_FEED_LIVE_URL"`
	OddsFeedTestURL string `env:"ODDS_FEED_TEST_URL"`
	StatsFeedURL    string `env:"STATS_FEED_URL"`

	// DefaultEnvironment is used for odds streams that do not name one.
	DefaultEnvironment string `env:"DEFAULT_ENVIRONMENT" default:"live"`

	// Dispatch cadences. Odds ticks faster than stats.
	OddsTickInterval  time.Duration `env:"ODDS_TICK_INTERVAL" default:"500ms"`
	StatsTickInterval time.Duration `env:"STATS_TICK_INTERVAL" default:"2s"`

	// Cache bound: entries expire this long after their last write.
	CacheTTL           time.Duration `env:"CACHE_TTL" default:"30m"`
	CacheSweepInterval time.Duration `env:"CACHE_SWEEP_INTERVAL" default:"1m"`

	// Upstream keepalive cadence.
	PingInterval time.Duration `env:"PING_INTERVAL" default:"30s"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"ODDS_FEED_LIVE_URL": cfg.OddsFeedLiveURL,
		"STATS_FEED_URL":     cfg.StatsFeedURL,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.DefaultEnvironment != "live" && cfg.DefaultEnvironment != "test" {
		return fmt.Errorf("DEFAULT_ENVIRONMENT must be live or test, got %q", cfg.DefaultEnvironment)
	}
	if cfg.OddsTickInterval <= 0 || cfg.StatsTickInterval <= 0 {
		return fmt.Errorf("tick intervals must be positive")
	}

	return nil
}
