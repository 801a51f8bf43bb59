package domain

// StatPair is a home/away value pair. A pair is always fully populated: the
// decoder emits it only when the home side carried a usable value.
type StatPair struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// PeriodScore is the score of one finished or running sub-period.
type PeriodScore struct {
	Home   int `json:"home"`
	Away   int `json:"away"`
	Period int `json:"period"`
}

// ScoreBoard is the main score plus any per-period breakdown.
type ScoreBoard struct {
	Home    int           `json:"home"`
	Away    int           `json:"away"`
	Periods []PeriodScore `json:"periods,omitempty"`
}

// MatchClock is the decomposed game clock. Period is nil when the upstream
// status token was not recognized.
type MatchClock struct {
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
	Running bool   `json:"running"`
	Period  *int   `json:"period,omitempty"`
	Status  string `json:"status,omitempty"`
}

// MatchCounters carries the per-match counter pairs. Each pointer is nil when
// the upstream lacked a usable home-side value for that counter.
type MatchCounters struct {
	Possession    *StatPair `json:"possession,omitempty"`
	Shots         *StatPair `json:"shots,omitempty"`
	ShotsOnTarget *StatPair `json:"shotsOnTarget,omitempty"`
	Corners       *StatPair `json:"corners,omitempty"`
	Fouls         *StatPair `json:"fouls,omitempty"`
	Cards         *StatPair `json:"cards,omitempty"`
}

// StatsSnapshot is the decoded live state of one game. ScoreBoard, Clock and
// Stats are independently optional: each is absent when the source entry had
// no usable data for it.
type StatsSnapshot struct {
	GameID     string         `json:"gameId"`
	ScoreBoard *ScoreBoard    `json:"scoreBoard,omitempty"`
	Clock      *MatchClock    `json:"clock,omitempty"`
	Stats      *MatchCounters `json:"stats,omitempty"`
}

// Equal reports whether two snapshots carry the same state. The dispatcher
// uses it to decide whether a consumer needs the snapshot re-sent.
func (s StatsSnapshot) Equal(o StatsSnapshot) bool {
	if s.GameID != o.GameID {
		return false
	}
	if !scoreBoardEqual(s.ScoreBoard, o.ScoreBoard) {
		return false
	}
	if !clockEqual(s.Clock, o.Clock) {
		return false
	}
	return countersEqual(s.Stats, o.Stats)
}

func scoreBoardEqual(a, b *ScoreBoard) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Home != b.Home || a.Away != b.Away || len(a.Periods) != len(b.Periods) {
		return false
	}
	for i := range a.Periods {
		if a.Periods[i] != b.Periods[i] {
			return false
		}
	}
	return true
}

func clockEqual(a, b *MatchClock) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Minutes != b.Minutes || a.Seconds != b.Seconds || a.Running != b.Running || a.Status != b.Status {
		return false
	}
	if a.Period == nil || b.Period == nil {
		return a.Period == b.Period
	}
	return *a.Period == *b.Period
}

func countersEqual(a, b *MatchCounters) bool {
	if a == nil || b == nil {
		return a == b
	}
	return pairEqual(a.Possession, b.Possession) &&
		pairEqual(a.Shots, b.Shots) &&
		pairEqual(a.ShotsOnTarget, b.ShotsOnTarget) &&
		pairEqual(a.Corners, b.Corners) &&
		pairEqual(a.Fouls, b.Fouls) &&
		pairEqual(a.Cards, b.Cards)
}

func pairEqual(a, b *StatPair) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
