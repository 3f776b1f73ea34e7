package model

import "time"

// JokerKind identifies a joker's effect. The set is closed: the scoring
// engine registers one effect per kind.
type JokerKind string

const (
	// JokerDouble doubles the base transfer of a correct answer
	JokerDouble JokerKind = "x2"
	// JokerAllIn makes every other player lose the cell value on a correct
	// answer, or the answerer alone on an incorrect one
	JokerAllIn JokerKind = "all_in"
	// JokerCallAFriend ties a target player's score to the round's outcome
	JokerCallAFriend JokerKind = "call_a_friend"
	// JokerGamble bets on the outcome of a not-yet-resolved cell
	JokerGamble JokerKind = "gamble"
)

// AllJokerKinds lists every known joker kind
var AllJokerKinds = []JokerKind{JokerDouble, JokerAllIn, JokerCallAFriend, JokerGamble}

// Valid reports whether k is a known joker kind
func (k JokerKind) Valid() bool {
	switch k {
	case JokerDouble, JokerAllIn, JokerCallAFriend, JokerGamble:
		return true
	}
	return false
}

// NeedsTargetPlayer reports whether using this joker requires a target player
func (k JokerKind) NeedsTargetPlayer() bool {
	return k == JokerCallAFriend
}

// NeedsTargetCell reports whether using this joker requires a target grid cell
func (k JokerKind) NeedsTargetCell() bool {
	return k == JokerGamble
}

// Description returns the catalog description for the kind
func (k JokerKind) Description() string {
	switch k {
	case JokerDouble:
		return "Doubles the points transferred by a correct answer"
	case JokerAllIn:
		return "Correct: everyone else loses the cell value. Incorrect: you lose it"
	case JokerCallAFriend:
		return "A chosen player gains the cell value if you answer correctly, loses it otherwise"
	case JokerGamble:
		return "Bet on an unanswered cell: gain its value if it resolves correctly, lose it otherwise"
	}
	return ""
}

// JokerInstanceID identifies a joker attached to a specific game
type JokerInstanceID string

// JokerInstance attaches one catalog joker to a game. Many games may carry
// the same kind; availability is tracked per player through usages.
type JokerInstance struct {
	ID     JokerInstanceID
	GameID GameID
	Kind   JokerKind
}

// JokerUsageID identifies a recorded joker activation
type JokerUsageID string

// JokerUsage records one activation of a joker instance during a round.
// Usages are append-only; all scoring effects are derived at replay time.
type JokerUsage struct {
	ID              JokerUsageID
	GameID          GameID
	JokerInstanceID JokerInstanceID
	RoundID         RoundID

	// TargetPlayerID is set for kinds with NeedsTargetPlayer
	TargetPlayerID PlayerID
	// TargetCellID is set for kinds with NeedsTargetCell
	TargetCellID GridCellID

	CreatedAt time.Time
}
