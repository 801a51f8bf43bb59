package domain

// OutcomeOdds is one (outcome, odds) pair inside a decoded condition update.
type OutcomeOdds struct {
	OutcomeID string
	Odds      float64
}

// OddsUpdate is the decoded form of one condition-updated envelope.
type OddsUpdate struct {
	ConditionID string
	Outcomes    []OutcomeOdds
}

// Direction classifies an odds movement relative to the consumer's baseline.
type Direction string

const (
	DirectionUp Direction = "up"
	DirectionDown Direction = "down"
	// DirectionFirst marks the first time a consumer observes a sub-key;
	// there is no prior baseline value to compare against.
	DirectionFirst Direction = "first"
)

// OddsDelta is one emitted change in an odds_update frame. Odds carries the
// two-decimal display value the diff was computed on, not the raw feed value.
type OddsDelta struct {
	ConditionID string    `json:"conditionId"`
	OutcomeID   string    `json:"outcomeId"`
	Odds        float64   `json:"odds"`
	Direction   Direction `json:"direction"`
}
