package model

import "time"

// RoundID uniquely identifies a round
type RoundID string

// Round is one player's turn slot. (PlayerID, Number) is unique within a
// game. A round is pending until exactly one grid cell references it, after
// which it is resolved and never changes hands.
type Round struct {
	ID     RoundID
	GameID GameID

	PlayerID PlayerID
	Number   int

	CreatedAt time.Time
}
