package domain

// FeedKind identifies which upstream source a key belongs to.
type FeedKind string

const (
	FeedOdds  FeedKind = "odds"
	FeedStats FeedKind = "stats"
)

// Environment selects the deployment context of the odds feed's upstream
// address. The stats feed has a single address and ignores it.
type Environment string

const (
	EnvLive Environment = "live"
	EnvTest Environment = "test"
)

// Valid reports whether e is a known environment.
func (e Environment) Valid() bool {
	return e == EnvLive || e == EnvTest
}

// OddsKey addresses one outcome's odds within the odds feed.
type OddsKey struct {
	ConditionID string
	OutcomeID   string
}
