package model

import "time"

// GameID is the URL-facing slug that uniquely identifies a game (e.g. "g-8f3k1p9z")
type GameID string

// UserID identifies the external account that owns a game.
// Identity management lives outside this service; the engine only compares ids.
type UserID string

// Game represents one trivia board instance.
// Immutable after creation except for the Finished flag.
type Game struct {
	ID      GameID
	OwnerID UserID

	// Seed fixes all board-generation randomness
	Seed int64

	Rows    int
	Columns int

	// WithPawns enables board positions on players
	WithPawns bool

	Finished bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalCells returns the number of grid cells on the board
func (g *Game) TotalCells() int {
	return g.Rows * g.Columns
}

// AccessibleBy reports whether the caller may operate on this game
func (g *Game) AccessibleBy(user UserID, isAdmin bool) bool {
	return isAdmin || g.OwnerID == user
}

// FinishThreshold returns the number of resolved cells at which the game
// ends for the given player count. Only full rotations count: a trailing
// partial turn where not every player gets an equal number of turns never
// finishes the game.
func (g *Game) FinishThreshold(playerCount int) int {
	if playerCount <= 0 {
		return 0
	}
	return (g.TotalCells() / playerCount) * playerCount
}
