package decode

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/epinusai/feedbridge/internal/domain"
)

// unavailable is the feed's sentinel for "no value": a pair whose home side
// equals it carries no usable data and is dropped as a whole.
const unavailable = -1

type rawStatsEntry struct {
	GameID string   `json:"gameId"`
	Live   *rawLive `json:"live"`
}

// rawPair is a home/guest value pair as sent by the feed. Absent fields stay
// nil so "missing" and "zero" remain distinguishable.
type rawPair struct {
	Home *int `json:"h"`
	Away *int `json:"g"`
}

func (p *rawPair) usable() bool {
	return p != nil && p.Home != nil && *p.Home != unavailable
}

func (p *rawPair) pair() domain.StatPair {
	sp := domain.StatPair{Home: *p.Home}
	if p.Away != nil {
		sp.Away = *p.Away
	}
	return sp
}

type rawLive struct {
	// Score families, probed in priority order.
	Goals       *rawPair `json:"goals"`
	Points      *rawPair `json:"points"`
	SeriesGames *rawPair `json:"gamesInSeries"`
	Sets        *rawPair `json:"sets"`
	Runs        *rawPair `json:"runs"`

	// Sub-period scores.
	H1 *rawPair `json:"h1"`
	H2 *rawPair `json:"h2"`
	Q1 *rawPair `json:"q1"`
	Q2 *rawPair `json:"q2"`
	Q3 *rawPair `json:"q3"`
	Q4 *rawPair `json:"q4"`
	G1 *rawPair `json:"g1"`
	G2 *rawPair `json:"g2"`
	G3 *rawPair `json:"g3"`
	G4 *rawPair `json:"g4"`
	G5 *rawPair `json:"g5"`
	G6 *rawPair `json:"g6"`
	G7 *rawPair `json:"g7"`

	// Clock.
	Seconds *int   `json:"seconds"`
	Timer   *bool  `json:"timer"`
	Period  string `json:"period"`
	State   string `json:"state"`

	// Counters.
	Possession    *rawPair `json:"possession"`
	Shots         *rawPair `json:"shots"`
	ShotsOnTarget *rawPair `json:"shotsOnTarget"`
	Corners       *rawPair `json:"corners"`
	Fouls         *rawPair `json:"fouls"`
	Cards         *rawPair `json:"cards"`
}

// scoreFamilies is the fixed probe order for the main score: the first family
// with a usable home value wins.
var scoreFamilies = []func(*rawLive) *rawPair{
	func(l *rawLive) *rawPair { return l.Goals },
	func(l *rawLive) *rawPair { return l.Points },
	func(l *rawLive) *rawPair { return l.SeriesGames },
	func(l *rawLive) *rawPair { return l.Sets },
	func(l *rawLive) *rawPair { return l.Runs },
}

// subPeriods is the bounded set of named sub-period fields: two halves, four
// quarters, seven series games. A sport populates at most one family, so the
// repeated period numbers never collide in practice.
var subPeriods = []struct {
	number int
	get    func(*rawLive) *rawPair
}{
	{1, func(l *rawLive) *rawPair { return l.H1 }},
	{2, func(l *rawLive) *rawPair { return l.H2 }},
	{1, func(l *rawLive) *rawPair { return l.Q1 }},
	{2, func(l *rawLive) *rawPair { return l.Q2 }},
	{3, func(l *rawLive) *rawPair { return l.Q3 }},
	{4, func(l *rawLive) *rawPair { return l.Q4 }},
	{1, func(l *rawLive) *rawPair { return l.G1 }},
	{2, func(l *rawLive) *rawPair { return l.G2 }},
	{3, func(l *rawLive) *rawPair { return l.G3 }},
	{4, func(l *rawLive) *rawPair { return l.G4 }},
	{5, func(l *rawLive) *rawPair { return l.G5 }},
	{6, func(l *rawLive) *rawPair { return l.G6 }},
	{7, func(l *rawLive) *rawPair { return l.G7 }},
}

// Stats decodes one raw stats-feed payload, an array of per-game entries,
// into snapshots. Entries without live data yield no snapshot so the prior
// cached state for those games stays untouched.
func Stats(payload []byte) ([]domain.StatsSnapshot, error) {
	var entries []rawStatsEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("stats payload: %w", err)
	}

	var snapshots []domain.StatsSnapshot
	for _, entry := range entries {
		if entry.GameID == "" || entry.Live == nil {
			continue
		}
		snapshots = append(snapshots, decodeLive(entry.GameID, entry.Live))
	}
	return snapshots, nil
}

func decodeLive(gameID string, live *rawLive) domain.StatsSnapshot {
	return domain.StatsSnapshot{
		GameID:     gameID,
		ScoreBoard: decodeScoreBoard(live),
		Clock:      decodeClock(live),
		Stats:      decodeCounters(live),
	}
}

func decodeScoreBoard(live *rawLive) *domain.ScoreBoard {
	var board *domain.ScoreBoard
	for _, family := range scoreFamilies {
		if p := family(live); p.usable() {
			score := p.pair()
			board = &domain.ScoreBoard{Home: score.Home, Away: score.Away}
			break
		}
	}
	if board == nil {
		return nil
	}

	for _, sub := range subPeriods {
		if p := sub.get(live); p.usable() {
			score := p.pair()
			board.Periods = append(board.Periods, domain.PeriodScore{
				Home:   score.Home,
				Away:   score.Away,
				Period: sub.number,
			})
		}
	}
	return board
}

func decodeClock(live *rawLive) *domain.MatchClock {
	if live.Seconds == nil && live.Timer == nil && live.Period == "" && live.State == "" {
		return nil
	}

	clock := &domain.MatchClock{}
	if live.Seconds != nil && *live.Seconds > 0 {
		clock.Minutes = *live.Seconds / 60
		clock.Seconds = *live.Seconds % 60
	}
	if live.Timer != nil {
		clock.Running = *live.Timer
	}
	clock.Period = matchPhase(live.Period)

	if clock.Running {
		clock.Status = "live"
	} else {
		clock.Status = "stopped"
	}
	if live.State != "" {
		clock.Status = live.State
	}
	return clock
}

// matchPhase maps the feed's status token vocabulary to a coarse phase
// number. Unrecognized tokens leave the phase unset.
func matchPhase(token string) *int {
	phase := func(n int) *int { return &n }

	switch strings.ToUpper(token) {
	case "H1", "1H":
		return phase(1)
	case "H2", "2H":
		return phase(2)
	case "HT":
		return phase(1)
	case "FT":
		return phase(2)
	}

	upper := strings.ToUpper(token)
	if len(upper) >= 2 && (upper[0] == 'Q' || upper[0] == 'P') {
		if n, err := strconv.Atoi(upper[1:]); err == nil {
			return phase(n)
		}
	}
	return nil
}

func decodeCounters(live *rawLive) *domain.MatchCounters {
	counters := &domain.MatchCounters{}
	found := false

	copyPair := func(raw *rawPair, dst **domain.StatPair) {
		if !raw.usable() {
			return
		}
		p := raw.pair()
		*dst = &p
		found = true
	}

	copyPair(live.Possession, &counters.Possession)
	copyPair(live.Shots, &counters.Shots)
	copyPair(live.ShotsOnTarget, &counters.ShotsOnTarget)
	copyPair(live.Corners, &counters.Corners)
	copyPair(live.Fouls, &counters.Fouls)
	copyPair(live.Cards, &counters.Cards)

	if !found {
		return nil
	}
	return counters
}
