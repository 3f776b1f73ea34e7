package model

// BonusMetric selects which replay metric a bonus ranks players by
type BonusMetric string

const (
	// BonusInflictedLoss ranks by points taken from other players
	BonusInflictedLoss BonusMetric = "inflicted_loss"
	// BonusSufferedLoss ranks by points lost to other players
	BonusSufferedLoss BonusMetric = "suffered_loss"
	// BonusWeightedAttempts ranks by the summed point value of all
	// non-skipped attempts, correct or not
	BonusWeightedAttempts BonusMetric = "weighted_attempts"
)

// AllBonusMetrics lists every known bonus metric
var AllBonusMetrics = []BonusMetric{BonusInflictedLoss, BonusSufferedLoss, BonusWeightedAttempts}

// Valid reports whether m is a known bonus metric
func (m BonusMetric) Valid() bool {
	switch m {
	case BonusInflictedLoss, BonusSufferedLoss, BonusWeightedAttempts:
		return true
	}
	return false
}

// Description returns the catalog description for the metric
func (m BonusMetric) Description() string {
	switch m {
	case BonusInflictedLoss:
		return "Ranks players by points taken from others"
	case BonusSufferedLoss:
		return "Ranks players by points lost to others"
	case BonusWeightedAttempts:
		return "Ranks players by the difficulty-weighted number of questions attempted"
	}
	return ""
}

// BonusInstanceID identifies a bonus attached to a specific game
type BonusInstanceID string

// BonusInstance attaches one catalog bonus to a game. It has no persisted
// state of its own: placement awards are derived at results time.
type BonusInstance struct {
	ID     BonusInstanceID
	GameID GameID
	Metric BonusMetric
}
