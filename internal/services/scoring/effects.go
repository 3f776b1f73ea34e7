package scoring

import (
	"github.com/Jilaskel/Quiz-Back/internal/model"
)

// EffectContext carries everything a joker effect may inspect when a grid
// cell resolves
type EffectContext struct {
	// Points is the resolving cell's value
	Points int
	// Correct is the answer outcome (never called for skipped cells)
	Correct bool

	// Actor is the player who answered the cell
	Actor model.PlayerID
	// Holder is the player whose joker this is. Equal to Actor for jokers
	// used on the resolving round; the original gambler for a gamble that
	// targeted this cell.
	Holder model.PlayerID
	// ThemeOwner is the player owning the cell's theme, set only when that
	// player exists and is not the Actor
	ThemeOwner model.PlayerID

	// TargetPlayer is the usage's declared target, when its kind requires one
	TargetPlayer model.PlayerID

	// Base holds the already-applied base transfer for this cell
	Base map[model.PlayerID]int

	// Players lists every player in the game
	Players []model.PlayerID
}

// Outcome is one effect's score contribution for a resolving cell. Source
// identifies the player the contribution is charged to: negative deltas on
// other players count as loss inflicted by Source, while negative deltas on
// Source itself are self-inflicted and excluded from bonus metrics.
type Outcome struct {
	Source model.PlayerID
	Deltas map[model.PlayerID]int
}

// Effect computes a joker's score contribution when a cell resolves. The set
// of effects is closed: each joker kind registers exactly one implementation
// and the replay loop never special-cases kinds.
type Effect interface {
	Apply(ctx EffectContext) Outcome
}

// newEffectRegistry builds the effect table, one entry per joker kind
func newEffectRegistry() map[model.JokerKind]Effect {
	return map[model.JokerKind]Effect{
		model.JokerDouble:      doubleEffect{},
		model.JokerAllIn:       allInEffect{},
		model.JokerCallAFriend: callAFriendEffect{},
		model.JokerGamble:      gambleEffect{},
	}
}

// doubleEffect repeats the base transfer, doubling the answerer's gain and
// the theme owner's loss. The owner-penalty waiver carries over because the
// waived base contains no owner delta to repeat.
type doubleEffect struct{}

func (doubleEffect) Apply(ctx EffectContext) Outcome {
	out := Outcome{Source: ctx.Holder, Deltas: map[model.PlayerID]int{}}
	if !ctx.Correct {
		return out
	}
	for playerID, delta := range ctx.Base {
		out.Deltas[playerID] = delta
	}
	return out
}

// allInEffect drains the cell value from every other player on a correct
// answer; an incorrect answer costs the answerer alone.
type allInEffect struct{}

func (allInEffect) Apply(ctx EffectContext) Outcome {
	out := Outcome{Source: ctx.Holder, Deltas: map[model.PlayerID]int{}}
	if ctx.Correct {
		for _, playerID := range ctx.Players {
			if playerID != ctx.Actor {
				out.Deltas[playerID] -= ctx.Points
			}
		}
	} else {
		out.Deltas[ctx.Actor] -= ctx.Points
	}
	return out
}

// callAFriendEffect ties the target player's score to the round outcome.
// When the friend is the theme owner whose penalty the waiver removed, the
// friend gains nothing either: the waiver cancels the whole exchange.
type callAFriendEffect struct{}

func (callAFriendEffect) Apply(ctx EffectContext) Outcome {
	out := Outcome{Source: ctx.Holder, Deltas: map[model.PlayerID]int{}}
	friend := ctx.TargetPlayer
	if friend == "" {
		return out
	}
	if ctx.Correct {
		if friend == ctx.ThemeOwner {
			return out
		}
		out.Deltas[friend] += ctx.Points
	} else {
		out.Deltas[friend] -= ctx.Points
	}
	return out
}

// gambleEffect resolves a bet placed on this cell in an earlier round: the
// gambler gains the value if the answer is correct, loses it otherwise. Void
// when the gambler is the one answering.
type gambleEffect struct{}

func (gambleEffect) Apply(ctx EffectContext) Outcome {
	out := Outcome{Source: ctx.Holder, Deltas: map[model.PlayerID]int{}}
	if ctx.Holder == ctx.Actor {
		return out
	}
	if ctx.Correct {
		out.Deltas[ctx.Holder] += ctx.Points
	} else {
		out.Deltas[ctx.Holder] -= ctx.Points
	}
	return out
}
