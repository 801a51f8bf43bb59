package dispatch

import (
	"math"
	"sort"

	"github.com/epinusai/feedbridge/internal/cache"
	"github.com/epinusai/feedbridge/internal/domain"
)

// oddsSession is one consumer's view of the odds feed. The baseline maps each
// (condition, outcome) to the last two-decimal value sent to this consumer;
// it is mutated only by this session's own tick.
type oddsSession struct {
	conditions map[string]struct{}
	baseline   map[domain.OddsKey]float64
}

func newOddsSession(conditionIDs []string) *oddsSession {
	conditions := make(map[string]struct{}, len(conditionIDs))
	for _, id := range conditionIDs {
		conditions[id] = struct{}{}
	}
	return &oddsSession{
		conditions: conditions,
		baseline:   make(map[domain.OddsKey]float64),
	}
}

// diff compares the cache against the baseline and returns the movements.
// Values are compared rounded to two decimals: raw changes below display
// precision produce no delta.
func (s *oddsSession) diff(store *cache.Cache[domain.OddsKey, float64]) []domain.OddsDelta {
	var deltas []domain.OddsDelta

	store.Range(func(key domain.OddsKey, entry cache.Entry[float64]) bool {
		if _, wanted := s.conditions[key.ConditionID]; !wanted {
			return true
		}

		rounded := roundOdds(entry.Value)
		prev, seen := s.baseline[key]
		if seen && rounded == prev {
			return true
		}

		direction := domain.DirectionFirst
		switch {
		case seen && rounded > prev:
			direction = domain.DirectionUp
		case seen && rounded < prev:
			direction = domain.DirectionDown
		}

		deltas = append(deltas, domain.OddsDelta{
			ConditionID: key.ConditionID,
			OutcomeID:   key.OutcomeID,
			Odds:        rounded,
			Direction:   direction,
		})
		s.baseline[key] = rounded
		return true
	})

	// Stable frame order regardless of map iteration.
	sort.Slice(deltas, func(i, j int) bool {
		if deltas[i].ConditionID != deltas[j].ConditionID {
			return deltas[i].ConditionID < deltas[j].ConditionID
		}
		return deltas[i].OutcomeID < deltas[j].OutcomeID
	})
	return deltas
}

func roundOdds(v float64) float64 {
	return math.Round(v*100) / 100
}

// statsSession is one consumer's view of the stats feed: a baseline snapshot
// per requested game, replaced whenever a changed snapshot is sent.
type statsSession struct {
	games    []string
	baseline map[string]domain.StatsSnapshot
}

func newStatsSession(gameIDs []string) *statsSession {
	return &statsSession{
		games:    gameIDs,
		baseline: make(map[string]domain.StatsSnapshot),
	}
}

// diff returns every requested game whose cached snapshot differs from the
// baseline by full value equality. A consumer with an empty baseline gets the
// whole current snapshot: everything is "new" to it.
func (s *statsSession) diff(store *cache.Cache[string, domain.StatsSnapshot]) []domain.StatsSnapshot {
	var changed []domain.StatsSnapshot
	for _, gameID := range s.games {
		entry, ok := store.Get(gameID)
		if !ok {
			continue
		}
		prev, seen := s.baseline[gameID]
		if seen && entry.Value.Equal(prev) {
			continue
		}
		changed = append(changed, entry.Value)
		s.baseline[gameID] = entry.Value
	}
	return changed
}
