package decode

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/epinusai/feedbridge/internal/domain"
)

// conditionUpdatedEvent is the only odds-feed event type that carries odds.
// Everything else on the socket (heartbeats, acks) is ignored without error.
const conditionUpdatedEvent = "ConditionUpdated"

type rawOddsEnvelope struct {
	Event       string       `json:"event"`
	ConditionID string       `json:"conditionId"`
	Outcomes    []rawOutcome `json:"outcomes"`
}

type rawOutcome struct {
	OutcomeID string `json:"outcomeId"`
	Odds      string `json:"odds"`
}

// Odds decodes one raw odds-feed payload into zero or one condition updates.
// Outcome entries whose odds value does not parse are skipped individually.
func Odds(payload []byte) ([]domain.OddsUpdate, error) {
	var env rawOddsEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("odds payload: %w", err)
	}

	if env.Event != conditionUpdatedEvent || len(env.Outcomes) == 0 {
		return nil, nil
	}

	outcomes := make([]domain.OutcomeOdds, 0, len(env.Outcomes))
	for _, o := range env.Outcomes {
		value, err := strconv.ParseFloat(o.Odds, 64)
		if err != nil {
			continue
		}
		outcomes = append(outcomes, domain.OutcomeOdds{OutcomeID: o.OutcomeID, Odds: value})
	}
	if len(outcomes) == 0 {
		return nil, nil
	}

	return []domain.OddsUpdate{{ConditionID: env.ConditionID, Outcomes: outcomes}}, nil
}
