package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/epinusai/feedbridge/internal/cache"
	"github.com/epinusai/feedbridge/internal/domain"
	"github.com/epinusai/feedbridge/internal/metrics"
)

// Sink receives push frames for one consumer. A send error means the consumer
// is gone: the session stops, nothing is retried, and no unsubscribe is sent
// upstream.
type Sink interface {
	Send(frame any) error
}

// Dispatcher runs per-consumer delta streams over the shared feed caches.
// One instance serves all consumers; every Run call owns exactly one session.
type Dispatcher struct {
	odds          *cache.Cache[domain.OddsKey, float64]
	stats         *cache.Cache[string, domain.StatsSnapshot]
	clock         clockwork.Clock
	oddsInterval  time.Duration
	statsInterval time.Duration
}

// NewDispatcher creates a dispatcher. The odds cadence is the faster of the
// two: odds move constantly while match statistics change in bursts.
func NewDispatcher(
	odds *cache.Cache[domain.OddsKey, float64],
	stats *cache.Cache[string, domain.StatsSnapshot],
	clock clockwork.Clock,
	oddsInterval, statsInterval time.Duration,
) *Dispatcher {
	return &Dispatcher{
		odds:          odds,
		stats:         stats,
		clock:         clock,
		oddsInterval:  oddsInterval,
		statsInterval: statsInterval,
	}
}

// RunOdds streams odds deltas for conditionIDs to sink until ctx is cancelled
// or a send fails. It blocks; run it on the request's goroutine.
func (d *Dispatcher) RunOdds(ctx context.Context, sink Sink, conditionIDs []string, env domain.Environment) error {
	session := newOddsSession(conditionIDs)
	sessionID := uuid.New()
	logger := slog.Default().With("feed", domain.FeedOdds, "session", sessionID.String())

	ack := ConnectedFrame{
		Type:        FrameConnected,
		Session:     sessionID.String(),
		Environment: string(env),
		Conditions:  conditionIDs,
	}
	if err := sink.Send(ack); err != nil {
		return nil
	}
	metrics.DispatcherFramesTotal.WithLabelValues(string(domain.FeedOdds), FrameConnected).Inc()

	metrics.DispatcherActiveSessions.WithLabelValues(string(domain.FeedOdds)).Inc()
	defer metrics.DispatcherActiveSessions.WithLabelValues(string(domain.FeedOdds)).Dec()
	logger.Info("Consumer stream open", "conditions", len(conditionIDs))

	ticker := d.clock.NewTicker(d.oddsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Consumer disconnected")
			return nil
		case <-ticker.Chan():
			start := d.clock.Now()
			deltas := session.diff(d.odds)
			metrics.DispatcherTickDuration.Observe(d.clock.Since(start).Seconds())

			if len(deltas) == 0 {
				continue
			}
			if err := sink.Send(OddsFrame{Type: FrameOddsUpdate, Updates: deltas}); err != nil {
				logger.Info("Consumer write failed, closing session", "error", err)
				return nil
			}
			metrics.DispatcherFramesTotal.WithLabelValues(string(domain.FeedOdds), FrameOddsUpdate).Inc()
		}
	}
}

// RunStats streams changed game snapshots for gameIDs to sink until ctx is
// cancelled or a send fails.
func (d *Dispatcher) RunStats(ctx context.Context, sink Sink, gameIDs []string) error {
	session := newStatsSession(gameIDs)
	sessionID := uuid.New()
	logger := slog.Default().With("feed", domain.FeedStats, "session", sessionID.String())

	ack := ConnectedFrame{
		Type:    FrameConnected,
		Session: sessionID.String(),
		Games:   gameIDs,
	}
	if err := sink.Send(ack); err != nil {
		return nil
	}
	metrics.DispatcherFramesTotal.WithLabelValues(string(domain.FeedStats), FrameConnected).Inc()

	metrics.DispatcherActiveSessions.WithLabelValues(string(domain.FeedStats)).Inc()
	defer metrics.DispatcherActiveSessions.WithLabelValues(string(domain.FeedStats)).Dec()
	logger.Info("Consumer stream open", "games", len(gameIDs))

	ticker := d.clock.NewTicker(d.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Consumer disconnected")
			return nil
		case <-ticker.Chan():
			start := d.clock.Now()
			changed := session.diff(d.stats)
			metrics.DispatcherTickDuration.Observe(d.clock.Since(start).Seconds())

			if len(changed) == 0 {
				continue
			}
			if err := sink.Send(StatsFrame{Type: FrameStatsUpdate, Games: changed}); err != nil {
				logger.Info("Consumer write failed, closing session", "error", err)
				return nil
			}
			metrics.DispatcherFramesTotal.WithLabelValues(string(domain.FeedStats), FrameStatsUpdate).Inc()
		}
	}
}
