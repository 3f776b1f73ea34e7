package model

import "time"

// PlayerID uniquely identifies a player within the system
type PlayerID string

// Player represents a game participant. Each player owns a question theme;
// no two players in a game share a theme.
type Player struct {
	ID     PlayerID
	GameID GameID

	Name string

	// Order is the 1-based position in the circular turn sequence
	Order int

	ThemeID ThemeID

	// ColorHex is the player's display color (e.g. "#e63946")
	ColorHex string

	// Position is the pawn-mode board position; nil when the game does not
	// use pawns
	Position *int

	CreatedAt time.Time
}
