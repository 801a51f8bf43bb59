package dispatch

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epinusai/feedbridge/internal/cache"
	"github.com/epinusai/feedbridge/internal/domain"
)

func newOddsCache() *cache.Cache[domain.OddsKey, float64] {
	return cache.New[domain.OddsKey, float64](0, clockwork.NewFakeClock())
}

func newStatsCache() *cache.Cache[string, domain.StatsSnapshot] {
	return cache.New[string, domain.StatsSnapshot](0, clockwork.NewFakeClock())
}

func TestOddsSession_FirstObservation(t *testing.T) {
	store := newOddsCache()
	store.Put(domain.OddsKey{ConditionID: "10", OutcomeID: "1"}, 1.50)

	session := newOddsSession([]string{"10", "11"})
	deltas := session.diff(store)

	require.Len(t, deltas, 1)
	assert.Equal(t, domain.OddsDelta{
		ConditionID: "10",
		OutcomeID:   "1",
		Odds:        1.5,
		Direction:   domain.DirectionFirst,
	}, deltas[0])
}

func TestOddsSession_UpAndDownMovements(t *testing.T) {
	store := newOddsCache()
	key := domain.OddsKey{ConditionID: "10", OutcomeID: "1"}
	session := newOddsSession([]string{"10"})

	store.Put(key, 1.50)
	session.diff(store)

	store.Put(key, 1.60)
	deltas := session.diff(store)
	require.Len(t, deltas, 1)
	assert.Equal(t, 1.6, deltas[0].Odds)
	assert.Equal(t, domain.DirectionUp, deltas[0].Direction)

	store.Put(key, 1.45)
	deltas = session.diff(store)
	require.Len(t, deltas, 1)
	assert.Equal(t, domain.DirectionDown, deltas[0].Direction)
}

func TestOddsSession_QuietTickEmitsNothing(t *testing.T) {
	store := newOddsCache()
	key := domain.OddsKey{ConditionID: "10", OutcomeID: "1"}
	session := newOddsSession([]string{"10"})

	store.Put(key, 1.50)
	require.Len(t, session.diff(store), 1)
	assert.Empty(t, session.diff(store))
}

func TestOddsSession_SubDisplayPrecisionChangesAreSilent(t *testing.T) {
	store := newOddsCache()
	key := domain.OddsKey{ConditionID: "10", OutcomeID: "1"}
	session := newOddsSession([]string{"10"})

	store.Put(key, 1.601)
	require.Len(t, session.diff(store), 1)

	// Raw value moved, display value did not.
	store.Put(key, 1.6049)
	assert.Empty(t, session.diff(store))

	store.Put(key, 1.6051)
	deltas := session.diff(store)
	require.Len(t, deltas, 1)
	assert.Equal(t, 1.61, deltas[0].Odds)
}

func TestOddsSession_IgnoresUnrequestedConditions(t *testing.T) {
	store := newOddsCache()
	store.Put(domain.OddsKey{ConditionID: "10", OutcomeID: "1"}, 1.50)
	store.Put(domain.OddsKey{ConditionID: "99", OutcomeID: "1"}, 3.00)

	session := newOddsSession([]string{"10"})
	deltas := session.diff(store)

	require.Len(t, deltas, 1)
	assert.Equal(t, "10", deltas[0].ConditionID)
}

func TestOddsSession_DeltasSortedWithinFrame(t *testing.T) {
	store := newOddsCache()
	store.Put(domain.OddsKey{ConditionID: "11", OutcomeID: "2"}, 2.0)
	store.Put(domain.OddsKey{ConditionID: "10", OutcomeID: "2"}, 1.9)
	store.Put(domain.OddsKey{ConditionID: "10", OutcomeID: "1"}, 1.8)

	session := newOddsSession([]string{"10", "11"})
	deltas := session.diff(store)

	require.Len(t, deltas, 3)
	assert.Equal(t, "10", deltas[0].ConditionID)
	assert.Equal(t, "1", deltas[0].OutcomeID)
	assert.Equal(t, "10", deltas[1].ConditionID)
	assert.Equal(t, "2", deltas[1].OutcomeID)
	assert.Equal(t, "11", deltas[2].ConditionID)
}

func scoreSnapshot(gameID string, home, away int) domain.StatsSnapshot {
	return domain.StatsSnapshot{
		GameID:     gameID,
		ScoreBoard: &domain.ScoreBoard{Home: home, Away: away},
	}
}

func TestStatsSession_EmitsOnlyOnChange(t *testing.T) {
	store := newStatsCache()
	session := newStatsSession([]string{"100"})

	store.Put("100", scoreSnapshot("100", 0, 0))
	require.Len(t, session.diff(store), 1)
	assert.Empty(t, session.diff(store))

	store.Put("100", scoreSnapshot("100", 1, 0))
	changed := session.diff(store)
	require.Len(t, changed, 1)
	assert.Equal(t, 1, changed[0].ScoreBoard.Home)
}

func TestStatsSession_LateJoinerGetsFullSnapshot(t *testing.T) {
	store := newStatsCache()
	sessionA := newStatsSession([]string{"100"})

	store.Put("100", scoreSnapshot("100", 0, 0))
	sessionA.diff(store)
	store.Put("100", scoreSnapshot("100", 1, 0))
	sessionA.diff(store)

	// B connects after the change: empty baseline, everything is new.
	sessionB := newStatsSession([]string{"100"})
	fromB := sessionB.diff(store)
	require.Len(t, fromB, 1)
	assert.Equal(t, 1, fromB[0].ScoreBoard.Home)

	// A is already caught up and emits nothing.
	assert.Empty(t, sessionA.diff(store))
}

func TestStatsSession_UncachedGamesAreSkipped(t *testing.T) {
	store := newStatsCache()
	session := newStatsSession([]string{"100", "101"})

	store.Put("100", scoreSnapshot("100", 2, 2))
	changed := session.diff(store)

	require.Len(t, changed, 1)
	assert.Equal(t, "100", changed[0].GameID)
}
