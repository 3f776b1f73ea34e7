package model

import "errors"

// Common errors used across the application
var (
	// Authorization
	ErrNotOwner = errors.New("caller is neither the game owner nor an admin")

	// Lookup errors
	ErrGameNotFound     = errors.New("game not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrRoundNotFound    = errors.New("round not found")
	ErrGridCellNotFound = errors.New("grid cell not found")
	ErrJokerNotFound    = errors.New("joker instance not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrThemeNotFound    = errors.New("theme not found")

	// Game creation errors
	ErrNoPlayers                    = errors.New("game requires at least one player")
	ErrDuplicateTheme               = errors.New("two players share the same theme")
	ErrGeneralThemeOwned            = errors.New("general theme belongs to a player")
	ErrGridTooSmall                 = errors.New("grid too small for requested per-player questions")
	ErrInsufficientQuestions        = errors.New("theme has fewer questions than requested")
	ErrInsufficientGeneralQuestions = errors.New("general themes exhausted before grid was filled")
	ErrSlugExhausted                = errors.New("could not generate a free game slug")
	ErrInvalidJokerKind             = errors.New("unknown joker kind")
	ErrInvalidBonusMetric           = errors.New("unknown bonus metric")

	// Answer errors
	ErrCellAlreadyAnswered = errors.New("grid cell is already resolved")
	ErrRoundAlreadyPlayed  = errors.New("round is already bound to a grid cell")

	// Joker errors
	ErrJokerAlreadyUsed    = errors.New("joker already used by this player")
	ErrTargetPlayerMissing = errors.New("joker requires a target player")
	ErrTargetCellMissing   = errors.New("joker requires a target grid cell")
	ErrTargetCellResolved  = errors.New("target grid cell is already resolved")
)
