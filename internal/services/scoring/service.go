package scoring

import (
	"sort"

	"github.com/Jilaskel/Quiz-Back/internal/model"
)

// Service derives all scores by replaying resolved cells and joker usages in
// round order. It never mutates game state, so mid-game state queries and
// end-of-game reports run the identical computation.
type Service struct {
	effects map[model.JokerKind]Effect
}

// New creates a new scoring Service with the full effect registry
func New() *Service {
	return &Service{
		effects: newEffectRegistry(),
	}
}

// Input is the committed history snapshot a replay runs over
type Input struct {
	Players   []*model.Player
	Rounds    []*model.Round
	Cells     []*model.GridCell
	Instances []*model.JokerInstance
	Usages    []*model.JokerUsage
	Questions map[model.QuestionID]*model.Question
}

// Metrics are the per-player counters bonuses rank by
type Metrics struct {
	// InflictedLoss is points taken from other players, excluding
	// self-inflicted losses
	InflictedLoss int
	// SufferedLoss is points taken by other players
	SufferedLoss int
	// WeightedAttempts is the summed point value of every non-skipped
	// attempt, correct or not
	WeightedAttempts int
}

// TurnScore is one timeline entry: the deltas a resolved cell produced and
// the cumulative standing after it
type TurnScore struct {
	RoundID     model.RoundID
	RoundNumber int
	PlayerID    model.PlayerID
	CellID      model.GridCellID
	Skipped     bool
	Delta       map[model.PlayerID]int
	Cumulative  map[model.PlayerID]int
}

// Result is the full replay output
type Result struct {
	// Totals is the cumulative score per player
	Totals map[model.PlayerID]int
	// Timeline holds one entry per resolved cell, in replay order
	Timeline []TurnScore
	// LastDelta is the delta of the most recently resolved round, nil when
	// nothing has been answered yet
	LastDelta map[model.PlayerID]int
	// JokerImpacts attributes score deltas to the usage that caused them
	JokerImpacts map[model.JokerUsageID]map[model.PlayerID]int
	// Metrics feeds the bonus ranking engine
	Metrics map[model.PlayerID]Metrics
}

// Replay recomputes all scores from history. Cells are visited in ascending
// round number (ties broken by row then column) so order-sensitive effects
// apply deterministically.
func (s *Service) Replay(in Input) *Result {
	result := &Result{
		Totals:       make(map[model.PlayerID]int, len(in.Players)),
		JokerImpacts: make(map[model.JokerUsageID]map[model.PlayerID]int),
		Metrics:      make(map[model.PlayerID]Metrics, len(in.Players)),
	}

	playerIDs := make([]model.PlayerID, 0, len(in.Players))
	themeOwner := make(map[model.ThemeID]model.PlayerID, len(in.Players))
	for _, p := range in.Players {
		playerIDs = append(playerIDs, p.ID)
		themeOwner[p.ThemeID] = p.ID
		result.Totals[p.ID] = 0
		result.Metrics[p.ID] = Metrics{}
	}

	rounds := make(map[model.RoundID]*model.Round, len(in.Rounds))
	for _, r := range in.Rounds {
		rounds[r.ID] = r
	}
	kinds := make(map[model.JokerInstanceID]model.JokerKind, len(in.Instances))
	for _, ji := range in.Instances {
		kinds[ji.ID] = ji.Kind
	}

	// Group usages: round-scoped jokers apply when their round's cell
	// resolves, gambles apply when their target cell resolves
	usagesByRound := make(map[model.RoundID][]*model.JokerUsage)
	gamblesByCell := make(map[model.GridCellID][]*model.JokerUsage)
	for _, u := range in.Usages {
		kind, ok := kinds[u.JokerInstanceID]
		if !ok {
			continue
		}
		if kind == model.JokerGamble {
			gamblesByCell[u.TargetCellID] = append(gamblesByCell[u.TargetCellID], u)
		} else {
			usagesByRound[u.RoundID] = append(usagesByRound[u.RoundID], u)
		}
	}

	resolved := make([]*model.GridCell, 0, len(in.Cells))
	for _, c := range in.Cells {
		if c.Resolved() {
			resolved = append(resolved, c)
		}
	}
	sort.Slice(resolved, func(i, j int) bool {
		ri, rj := rounds[resolved[i].RoundID], rounds[resolved[j].RoundID]
		ni, nj := 0, 0
		if ri != nil {
			ni = ri.Number
		}
		if rj != nil {
			nj = rj.Number
		}
		if ni != nj {
			return ni < nj
		}
		if resolved[i].Row != resolved[j].Row {
			return resolved[i].Row < resolved[j].Row
		}
		return resolved[i].Column < resolved[j].Column
	})

	cumulative := make(map[model.PlayerID]int, len(playerIDs))
	for _, id := range playerIDs {
		cumulative[id] = 0
	}

	for _, cell := range resolved {
		round := rounds[cell.RoundID]
		if round == nil {
			continue
		}
		actor := round.PlayerID

		points := 0
		if q := in.Questions[cell.QuestionID]; q != nil {
			points = q.Points
		}

		delta := make(map[model.PlayerID]int, len(playerIDs))
		for _, id := range playerIDs {
			delta[id] = 0
		}

		// A skipped cell scores zero and suppresses every joker effect that
		// would otherwise touch this round, including gambles on this cell
		if !cell.Skipped {
			m := result.Metrics[actor]
			m.WeightedAttempts += points
			result.Metrics[actor] = m

			var owner model.PlayerID
			if q := in.Questions[cell.QuestionID]; q != nil {
				if o, ok := themeOwner[q.ThemeID]; ok && o != actor {
					owner = o
				}
			}

			roundUsages := usagesByRound[cell.RoundID]

			// The owner's penalty is waived when the answerer called the
			// owner as their friend this round
			waived := false
			for _, u := range roundUsages {
				if kinds[u.JokerInstanceID] == model.JokerCallAFriend && owner != "" && u.TargetPlayerID == owner {
					waived = true
					break
				}
			}

			base := map[model.PlayerID]int{}
			if cell.Correct {
				base[actor] += points
				if owner != "" && !waived {
					base[owner] -= points
				}
			}
			s.applyOutcome(result, delta, Outcome{Source: actor, Deltas: base})

			ectx := EffectContext{
				Points:     points,
				Correct:    cell.Correct,
				Actor:      actor,
				ThemeOwner: owner,
				Base:       base,
				Players:    playerIDs,
			}

			for _, u := range roundUsages {
				effect, ok := s.effects[kinds[u.JokerInstanceID]]
				if !ok {
					continue
				}
				uctx := ectx
				uctx.Holder = actor
				uctx.TargetPlayer = u.TargetPlayerID
				out := effect.Apply(uctx)
				s.applyOutcome(result, delta, out)
				s.attribute(result, u.ID, out)
			}

			for _, u := range gamblesByCell[cell.ID] {
				gambleRound := rounds[u.RoundID]
				if gambleRound == nil {
					continue
				}
				uctx := ectx
				uctx.Holder = gambleRound.PlayerID
				out := s.effects[model.JokerGamble].Apply(uctx)
				s.applyOutcome(result, delta, out)
				s.attribute(result, u.ID, out)
			}
		}

		for id, d := range delta {
			cumulative[id] += d
		}
		snapshot := make(map[model.PlayerID]int, len(cumulative))
		for id, v := range cumulative {
			snapshot[id] = v
		}

		result.Timeline = append(result.Timeline, TurnScore{
			RoundID:     cell.RoundID,
			RoundNumber: round.Number,
			PlayerID:    actor,
			CellID:      cell.ID,
			Skipped:     cell.Skipped,
			Delta:       delta,
			Cumulative:  snapshot,
		})
	}

	for id, v := range cumulative {
		result.Totals[id] = v
	}
	if len(result.Timeline) > 0 {
		result.LastDelta = result.Timeline[len(result.Timeline)-1].Delta
	}

	return result
}

// applyOutcome merges an outcome into the round delta and updates the loss
// metrics: negative deltas on players other than the source count as loss
// inflicted by the source and suffered by the victim
func (s *Service) applyOutcome(result *Result, delta map[model.PlayerID]int, out Outcome) {
	for playerID, d := range out.Deltas {
		delta[playerID] += d
		if d < 0 && playerID != out.Source {
			src := result.Metrics[out.Source]
			src.InflictedLoss += -d
			result.Metrics[out.Source] = src

			victim := result.Metrics[playerID]
			victim.SufferedLoss += -d
			result.Metrics[playerID] = victim
		}
	}
}

// attribute records an effect's deltas against the usage that caused them
func (s *Service) attribute(result *Result, usageID model.JokerUsageID, out Outcome) {
	if len(out.Deltas) == 0 {
		return
	}
	impact := result.JokerImpacts[usageID]
	if impact == nil {
		impact = make(map[model.PlayerID]int, len(out.Deltas))
		result.JokerImpacts[usageID] = impact
	}
	for playerID, d := range out.Deltas {
		impact[playerID] += d
	}
}

// Interface for dependency injection
type ServiceInterface interface {
	Replay(in Input) *Result
}

var _ ServiceInterface = (*Service)(nil)
