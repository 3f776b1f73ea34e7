package joker

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Jilaskel/Quiz-Back/internal/dependencies/clock"
	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/storage"
)

// Gate validates and records joker activations. It never touches scores:
// every effect is derived later by the scoring replay, which keeps usage
// gating and effect computation independently replayable.
type Gate struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewGate creates a new joker Gate
func NewGate(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Gate {
	return &Gate{
		storage: storage,
		clock:   clock,
		logger:  logger,
	}
}

// UseRequest describes one joker activation
type UseRequest struct {
	GameID          model.GameID
	JokerInstanceID model.JokerInstanceID
	RoundID         model.RoundID

	// TargetPlayerID is required for kinds with NeedsTargetPlayer
	TargetPlayerID model.PlayerID
	// TargetCellID is required for kinds with NeedsTargetCell and must name
	// an unresolved cell
	TargetCellID model.GridCellID

	CallerID model.UserID
	IsAdmin  bool
}

// Use validates the activation and appends a usage row. A joker instance is
// usable once per player: a player who activated it in any earlier round
// gets ErrJokerAlreadyUsed, while other players may still activate the same
// instance.
func (g *Gate) Use(ctx context.Context, req UseRequest) (*model.JokerUsage, error) {
	game, err := g.storage.GetGame(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	if !game.AccessibleBy(req.CallerID, req.IsAdmin) {
		return nil, model.ErrNotOwner
	}

	instance, err := g.storage.GetJokerInstance(ctx, req.JokerInstanceID)
	if err != nil {
		return nil, err
	}
	if instance.GameID != game.ID {
		return nil, model.ErrJokerNotFound
	}

	round, err := g.storage.GetRound(ctx, req.RoundID)
	if err != nil {
		return nil, err
	}
	if round.GameID != game.ID {
		return nil, model.ErrRoundNotFound
	}

	// The acting player is whoever owns the round
	used, err := UsedByPlayerBefore(ctx, g.storage, game.ID, round.PlayerID, round.Number)
	if err != nil {
		return nil, err
	}
	if used[instance.ID] {
		return nil, model.ErrJokerAlreadyUsed
	}

	if err := g.validateTargets(ctx, game, instance.Kind, req); err != nil {
		return nil, err
	}

	usage := &model.JokerUsage{
		ID:              model.JokerUsageID(uuid.NewString()),
		GameID:          game.ID,
		JokerInstanceID: instance.ID,
		RoundID:         round.ID,
		TargetPlayerID:  req.TargetPlayerID,
		TargetCellID:    req.TargetCellID,
		CreatedAt:       g.clock.Now(),
	}

	err = g.storage.Atomic(ctx, func(b storage.Batch) error {
		b.SaveJokerUsage(usage)
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("joker used",
		slog.String("game_id", string(game.ID)),
		slog.String("joker_kind", string(instance.Kind)),
		slog.String("player_id", string(round.PlayerID)),
		slog.Int("round_number", round.Number),
	)

	return usage, nil
}

// validateTargets enforces the kind's declared target requirements
func (g *Gate) validateTargets(ctx context.Context, game *model.Game, kind model.JokerKind, req UseRequest) error {
	if kind.NeedsTargetPlayer() {
		if req.TargetPlayerID == "" {
			return model.ErrTargetPlayerMissing
		}
		players, err := g.storage.ListPlayersByGame(ctx, game.ID)
		if err != nil {
			return err
		}
		found := false
		for _, p := range players {
			if p.ID == req.TargetPlayerID {
				found = true
				break
			}
		}
		if !found {
			return model.ErrPlayerNotFound
		}
	}

	if kind.NeedsTargetCell() {
		if req.TargetCellID == "" {
			return model.ErrTargetCellMissing
		}
		cell, err := g.storage.GetGridCell(ctx, req.TargetCellID)
		if err != nil {
			return err
		}
		if cell.GameID != game.ID {
			return model.ErrGridCellNotFound
		}
		if cell.Resolved() {
			return model.ErrTargetCellResolved
		}
	}

	return nil
}

// UsedByPlayerBefore returns the set of joker instance ids the player
// activated in any round with a strictly smaller round number. Shared with
// the game state view so displayed availability matches what the gate will
// enforce.
func UsedByPlayerBefore(ctx context.Context, store storage.Storage, gameID model.GameID, playerID model.PlayerID, roundNumber int) (map[model.JokerInstanceID]bool, error) {
	usages, err := store.ListJokerUsagesByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	rounds, err := store.ListRoundsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	byID := make(map[model.RoundID]*model.Round, len(rounds))
	for _, r := range rounds {
		byID[r.ID] = r
	}

	used := make(map[model.JokerInstanceID]bool)
	for _, u := range usages {
		r := byID[u.RoundID]
		if r == nil {
			continue
		}
		if r.PlayerID == playerID && r.Number < roundNumber {
			used[u.JokerInstanceID] = true
		}
	}
	return used, nil
}

// Interface for dependency injection
type GateInterface interface {
	Use(ctx context.Context, req UseRequest) (*model.JokerUsage, error)
}

var _ GateInterface = (*Gate)(nil)
