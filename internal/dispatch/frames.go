package dispatch

import "github.com/epinusai/feedbridge/internal/domain"

// Frame type tags pushed in the SSE envelope.
const (
	FrameConnected   = "connected"
	FrameOddsUpdate  = "odds_update"
	FrameStatsUpdate = "stats_update"
)

// ConnectedFrame acknowledges a new stream and names the accepted keys.
type ConnectedFrame struct {
	Type        string   `json:"type"`
	Session     string   `json:"session"`
	Environment string   `json:"environment,omitempty"`
	Conditions  []string `json:"conditions,omitempty"`
	Games       []string `json:"games,omitempty"`
}

// OddsFrame batches every odds movement found in one tick.
type OddsFrame struct {
	Type    string             `json:"type"`
	Updates []domain.OddsDelta `json:"updates"`
}

// StatsFrame batches every changed game snapshot found in one tick.
type StatsFrame struct {
	Type  string                 `json:"type"`
	Games []domain.StatsSnapshot `json:"games"`
}
