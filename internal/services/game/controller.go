package game

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Jilaskel/Quiz-Back/internal/dependencies/clock"
	"github.com/Jilaskel/Quiz-Back/internal/dependencies/random"
	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/services/board"
	"github.com/Jilaskel/Quiz-Back/internal/services/bonus"
	"github.com/Jilaskel/Quiz-Back/internal/services/scoring"
	"github.com/Jilaskel/Quiz-Back/internal/storage"
)

const (
	// slug format: "g-" + 8 lowercase alphanumerics
	slugPrefix      = "g-"
	slugLength      = 8
	slugAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	maxSlugAttempts = 10
)

// Controller orchestrates game creation, turn flow and result computation.
// It assumes a single logical writer per game; atomicity of each mutation
// comes from the storage batch commit.
type Controller struct {
	storage        storage.Storage
	boardService   *board.Service
	scoringService *scoring.Service
	bonusService   *bonus.Service
	clock          clock.Clock
	random         random.Random
	logger         *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	boardService *board.Service,
	scoringService *scoring.Service,
	bonusService *bonus.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:        storage,
		boardService:   boardService,
		scoringService: scoringService,
		bonusService:   bonusService,
		clock:          clock,
		random:         random,
		logger:         logger,
	}
}

// CreateGameInput is the full game creation request
type CreateGameInput struct {
	OwnerID model.UserID

	Seed      int64
	Rows      int
	Columns   int
	WithPawns bool

	Players            []board.PlayerSpec
	QuestionsPerPlayer int
	GeneralThemeIDs    []model.ThemeID

	JokerKinds   []model.JokerKind
	BonusMetrics []model.BonusMetric
}

// CreateGame generates the board from the seed and commits the game, its
// players, all grid cells, the attached jokers/bonuses and the first round
// as one atomic unit. Any failure leaves nothing behind.
func (c *Controller) CreateGame(ctx context.Context, in CreateGameInput) (*model.Game, error) {
	for _, kind := range in.JokerKinds {
		if !kind.Valid() {
			return nil, model.ErrInvalidJokerKind
		}
	}
	for _, metric := range in.BonusMetrics {
		if !metric.Valid() {
			return nil, model.ErrInvalidBonusMetric
		}
	}

	gameID, err := c.generateSlug(ctx)
	if err != nil {
		return nil, err
	}

	layout, err := c.boardService.Generate(ctx, board.Spec{
		Seed:               in.Seed,
		Rows:               in.Rows,
		Columns:            in.Columns,
		Players:            in.Players,
		QuestionsPerPlayer: in.QuestionsPerPlayer,
		GeneralThemeIDs:    in.GeneralThemeIDs,
	})
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:        gameID,
		OwnerID:   in.OwnerID,
		Seed:      in.Seed,
		Rows:      in.Rows,
		Columns:   in.Columns,
		WithPawns: in.WithPawns,
		Finished:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	players := make([]*model.Player, len(layout.TurnOrder))
	for i, spec := range layout.TurnOrder {
		p := &model.Player{
			ID:        model.PlayerID(uuid.NewString()),
			GameID:    gameID,
			Name:      spec.Name,
			Order:     i + 1,
			ThemeID:   spec.ThemeID,
			ColorHex:  spec.ColorHex,
			CreatedAt: now,
		}
		if in.WithPawns {
			start := 0
			p.Position = &start
		}
		players[i] = p
	}

	cells := make([]*model.GridCell, len(layout.Cells))
	for i, assignment := range layout.Cells {
		cells[i] = &model.GridCell{
			ID:         model.GridCellID(uuid.NewString()),
			GameID:     gameID,
			Row:        assignment.Row,
			Column:     assignment.Column,
			QuestionID: assignment.QuestionID,
		}
	}

	instances := make([]*model.JokerInstance, len(in.JokerKinds))
	for i, kind := range in.JokerKinds {
		instances[i] = &model.JokerInstance{
			ID:     model.JokerInstanceID(uuid.NewString()),
			GameID: gameID,
			Kind:   kind,
		}
	}

	bonuses := make([]*model.BonusInstance, len(in.BonusMetrics))
	for i, metric := range in.BonusMetrics {
		bonuses[i] = &model.BonusInstance{
			ID:     model.BonusInstanceID(uuid.NewString()),
			GameID: gameID,
			Metric: metric,
		}
	}

	firstRound := &model.Round{
		ID:        model.RoundID(uuid.NewString()),
		GameID:    gameID,
		PlayerID:  players[0].ID,
		Number:    1,
		CreatedAt: now,
	}

	err = c.storage.Atomic(ctx, func(b storage.Batch) error {
		b.SaveGame(game)
		for _, p := range players {
			b.SavePlayer(p)
		}
		for _, cell := range cells {
			b.SaveGridCell(cell)
		}
		for _, ji := range instances {
			b.SaveJokerInstance(ji)
		}
		for _, bi := range bonuses {
			b.SaveBonusInstance(bi)
		}
		b.SaveRound(firstRound)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(gameID)),
		slog.Int64("seed", in.Seed),
		slog.Int("player_count", len(players)),
		slog.Int("cells", len(cells)),
	)

	return game, nil
}

// generateSlug draws random slugs until one is free, giving up after a
// bounded number of attempts
func (c *Controller) generateSlug(ctx context.Context) (model.GameID, error) {
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		id := model.GameID(slugPrefix + c.random.String(slugLength, slugAlphabet))
		exists, err := c.storage.GameExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", model.ErrSlugExhausted
}

// AnswerResult is the outcome of AnswerQuestion
type AnswerResult struct {
	ResolvedCell *model.GridCell
	// NextRound is the newly created round, nil when autoAdvance is off or
	// the next round already existed
	NextRound *model.Round
}

// AnswerQuestion binds a round to a grid cell with its outcome. The cell
// must be unresolved and both cell and round must belong to the game; once
// bound, the resolution is permanent. With autoAdvance the next player's
// round is created in the same commit, idempotently: a retry after the
// round exists resolves nothing twice and creates nothing new.
func (c *Controller) AnswerQuestion(ctx context.Context, gameID model.GameID, roundID model.RoundID, cellID model.GridCellID, correct, skipped, autoAdvance bool, callerID model.UserID, isAdmin bool) (*AnswerResult, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.AccessibleBy(callerID, isAdmin) {
		return nil, model.ErrNotOwner
	}

	cell, err := c.storage.GetGridCell(ctx, cellID)
	if err != nil {
		return nil, err
	}
	if cell.GameID != game.ID {
		return nil, model.ErrGridCellNotFound
	}
	if cell.Resolved() {
		return nil, model.ErrCellAlreadyAnswered
	}

	round, err := c.storage.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.GameID != game.ID {
		return nil, model.ErrRoundNotFound
	}

	// A round resolves exactly one cell
	cells, err := c.storage.ListGridCellsByGame(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	for _, other := range cells {
		if other.RoundID == round.ID {
			return nil, model.ErrRoundAlreadyPlayed
		}
	}

	resolved := *cell
	resolved.RoundID = round.ID
	resolved.Correct = correct
	resolved.Skipped = skipped

	var nextRound *model.Round
	if autoAdvance {
		nextRound, err = c.nextRoundAfter(ctx, game, round)
		if err != nil {
			return nil, err
		}
	}

	err = c.storage.Atomic(ctx, func(b storage.Batch) error {
		b.SaveGridCell(&resolved)
		if nextRound != nil {
			b.SaveRound(nextRound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("question answered",
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(round.PlayerID)),
		slog.Int("round_number", round.Number),
		slog.Bool("correct", correct),
		slog.Bool("skipped", skipped),
	)

	return &AnswerResult{ResolvedCell: &resolved, NextRound: nextRound}, nil
}

// nextRoundAfter builds round number+1 for the next player in circular
// order, or nil when that round already exists
func (c *Controller) nextRoundAfter(ctx context.Context, game *model.Game, played *model.Round) (*model.Round, error) {
	players, err := c.storage.ListPlayersByGame(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, nil
	}

	currentOrder := 0
	for _, p := range players {
		if p.ID == played.PlayerID {
			currentOrder = p.Order
			break
		}
	}

	next := nextByOrder(players, currentOrder)
	nextNumber := played.Number + 1

	exists, err := c.storage.RoundExists(ctx, next.ID, nextNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	return &model.Round{
		ID:        model.RoundID(uuid.NewString()),
		GameID:    game.ID,
		PlayerID:  next.ID,
		Number:    nextNumber,
		CreatedAt: c.clock.Now(),
	}, nil
}

// nextByOrder picks the player with the smallest order strictly greater
// than currentOrder, wrapping to the lowest order. Players are sorted by
// order.
func nextByOrder(players []*model.Player, currentOrder int) *model.Player {
	for _, p := range players {
		if p.Order > currentOrder {
			return p
		}
	}
	return players[0]
}
