// Package feed coordinates downstream subscription requests with the
// upstream connection registry.
package feed

import (
	"github.com/epinusai/feedbridge/internal/domain"
	"github.com/epinusai/feedbridge/internal/errors"
)

// Upstream is the subset of the connection manager the coordinator needs.
type Upstream interface {
	Subscribe(kind domain.FeedKind, env domain.Environment, keys []string) error
}

// Coordinator validates a consumer's requested key list and relays it on the
// shared upstream socket. Key lists are relayed per request, not merged: the
// upstream's effective subscribed set is the union of every request ever
// made, and nothing ever unsubscribes.
type Coordinator struct {
	upstream   Upstream
	defaultEnv domain.Environment
}

// NewCoordinator creates a coordinator. defaultEnv is used for odds requests
// that do not name an environment.
func NewCoordinator(upstream Upstream, defaultEnv domain.Environment) *Coordinator {
	return &Coordinator{upstream: upstream, defaultEnv: defaultEnv}
}

// SubscribeOdds relays a consumer's condition list to the odds feed for env.
// It returns the environment actually used, so the caller can report it back.
func (c *Coordinator) SubscribeOdds(conditionIDs []string, env domain.Environment) (domain.Environment, error) {
	if len(conditionIDs) == 0 {
		return "", errors.ValidationError("at least one condition id is required")
	}
	if env == "" {
		env = c.defaultEnv
	}
	if !env.Valid() {
		return "", errors.ValidationError("unknown environment").WithContext("environment", string(env))
	}

	if err := c.upstream.Subscribe(domain.FeedOdds, env, conditionIDs); err != nil {
		return "", errors.ExternalError("odds feed unavailable", err)
	}
	return env, nil
}

// SubscribeStats relays a consumer's game list to the stats feed.
func (c *Coordinator) SubscribeStats(gameIDs []string) error {
	if len(gameIDs) == 0 {
		return errors.ValidationError("at least one game id is required")
	}

	if err := c.upstream.Subscribe(domain.FeedStats, domain.EnvLive, gameIDs); err != nil {
		return errors.ExternalError("stats feed unavailable", err)
	}
	return nil
}
