package bonus

import (
	"sort"

	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/services/scoring"
)

// Placement points by competition rank; every other rank awards nothing
const (
	firstPlacePoints  = 5
	secondPlacePoints = 3
	thirdPlacePoints  = 1
)

// Service ranks players on replay metrics and awards placement bonuses at
// game end. Purely derived: no bonus state is ever persisted.
type Service struct{}

// New creates a new bonus Service
func New() *Service {
	return &Service{}
}

// Award is one player's standing for one bonus
type Award struct {
	PlayerID model.PlayerID
	Value    int // metric value the ranking used
	Rank     int // competition rank, 1-based
	Points   int // placement points awarded
}

// Breakdown is the resolution of a single bonus instance
type Breakdown struct {
	BonusID model.BonusInstanceID
	Metric  model.BonusMetric
	Awards  []Award
}

// Result aggregates all bonus resolutions for a game
type Result struct {
	// Totals is the summed placement points per player
	Totals map[model.PlayerID]int
	// Breakdown holds one entry per attached bonus, in input order
	Breakdown []Breakdown
}

// Resolve ranks every player for each attached bonus and sums the placement
// awards
func (s *Service) Resolve(bonuses []*model.BonusInstance, players []*model.Player, metrics map[model.PlayerID]scoring.Metrics) *Result {
	result := &Result{
		Totals: make(map[model.PlayerID]int, len(players)),
	}
	for _, p := range players {
		result.Totals[p.ID] = 0
	}

	for _, b := range bonuses {
		breakdown := Breakdown{
			BonusID: b.ID,
			Metric:  b.Metric,
			Awards:  rankPlayers(b.Metric, players, metrics),
		}
		for _, award := range breakdown.Awards {
			result.Totals[award.PlayerID] += award.Points
		}
		result.Breakdown = append(result.Breakdown, breakdown)
	}

	return result
}

// metricValue selects the ranked metric for one player
func metricValue(metric model.BonusMetric, m scoring.Metrics) int {
	switch metric {
	case model.BonusInflictedLoss:
		return m.InflictedLoss
	case model.BonusSufferedLoss:
		return m.SufferedLoss
	case model.BonusWeightedAttempts:
		return m.WeightedAttempts
	}
	return 0
}

// rankPlayers sorts players descending by metric value and assigns
// competition ranks: tied values share a rank and the next distinct value
// resumes at its list position plus one
func rankPlayers(metric model.BonusMetric, players []*model.Player, metrics map[model.PlayerID]scoring.Metrics) []Award {
	awards := make([]Award, 0, len(players))
	for _, p := range players {
		awards = append(awards, Award{
			PlayerID: p.ID,
			Value:    metricValue(metric, metrics[p.ID]),
		})
	}
	sort.SliceStable(awards, func(i, j int) bool { return awards[i].Value > awards[j].Value })

	for i := range awards {
		if i > 0 && awards[i].Value == awards[i-1].Value {
			awards[i].Rank = awards[i-1].Rank
		} else {
			awards[i].Rank = i + 1
		}
		awards[i].Points = placementPoints(awards[i].Rank)
	}
	return awards
}

// placementPoints maps a competition rank to its award
func placementPoints(rank int) int {
	switch rank {
	case 1:
		return firstPlacePoints
	case 2:
		return secondPlacePoints
	case 3:
		return thirdPlacePoints
	default:
		return 0
	}
}

// Interface for dependency injection
type ServiceInterface interface {
	Resolve(bonuses []*model.BonusInstance, players []*model.Player, metrics map[model.PlayerID]scoring.Metrics) *Result
}

var _ ServiceInterface = (*Service)(nil)
