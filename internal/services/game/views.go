package game

import (
	"context"
	"log/slog"
	"math"

	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/services/bonus"
	"github.com/Jilaskel/Quiz-Back/internal/services/joker"
	"github.com/Jilaskel/Quiz-Back/internal/services/scoring"
	"github.com/Jilaskel/Quiz-Back/internal/storage"
)

// QuestionView is the question info exposed per cell
type QuestionView struct {
	ID        model.QuestionID
	ThemeID   model.ThemeID
	ThemeName string
	Points    int
}

// CellView is one board square with its question context
type CellView struct {
	ID       model.GridCellID
	Row      int
	Column   int
	Question QuestionView
	RoundID  model.RoundID
	Correct  bool
	Skipped  bool
}

// TurnView names the pending round and its player
type TurnView struct {
	RoundID     model.RoundID
	RoundNumber int
	Player      *model.Player
}

// JokerAvailability marks whether a joker instance is still usable by a
// given player
type JokerAvailability struct {
	Instance  *model.JokerInstance
	Available bool
}

// State is the full mid-game view
type State struct {
	Game            *model.Game
	Players         []*model.Player
	Board           []CellView
	CurrentTurn     *TurnView // nil once every created round is resolved
	AvailableJokers map[model.PlayerID][]JokerAvailability
	Bonuses         []*model.BonusInstance
	Scores          map[model.PlayerID]int
	LastRoundDelta  map[model.PlayerID]int
}

// Results is the end-of-game report. Safe to request at any time: it is
// derived from the same replay as State.
type Results struct {
	Game            *model.Game
	FinalScores     map[model.PlayerID]int
	BonusTotals     map[model.PlayerID]int
	ScoresWithBonus map[model.PlayerID]int
	TurnHistory     []scoring.TurnScore
	JokerImpacts    map[model.JokerUsageID]map[model.PlayerID]int
	BonusBreakdown  []bonus.Breakdown
}

// history is one committed snapshot of everything the replay reads
type history struct {
	players   []*model.Player
	rounds    []*model.Round
	cells     []*model.GridCell
	instances []*model.JokerInstance
	usages    []*model.JokerUsage
	bonuses   []*model.BonusInstance
	questions map[model.QuestionID]*model.Question
}

// GetState assembles the full game view and lazily persists the finished
// flag the first time the end-of-game condition is observed
func (c *Controller) GetState(ctx context.Context, gameID model.GameID, callerID model.UserID, isAdmin bool) (*State, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.AccessibleBy(callerID, isAdmin) {
		return nil, model.ErrNotOwner
	}

	h, err := c.loadHistory(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	if err := c.evaluateFinished(ctx, game, h); err != nil {
		return nil, err
	}

	replay := c.scoringService.Replay(scoring.Input{
		Players:   h.players,
		Rounds:    h.rounds,
		Cells:     h.cells,
		Instances: h.instances,
		Usages:    h.usages,
		Questions: h.questions,
	})

	boardView, err := c.buildBoardView(ctx, h)
	if err != nil {
		return nil, err
	}

	currentTurn := pendingTurn(h)

	availability, err := c.jokerAvailability(ctx, game.ID, h, currentTurn)
	if err != nil {
		return nil, err
	}

	return &State{
		Game:            game,
		Players:         h.players,
		Board:           boardView,
		CurrentTurn:     currentTurn,
		AvailableJokers: availability,
		Bonuses:         h.bonuses,
		Scores:          replay.Totals,
		LastRoundDelta:  replay.LastDelta,
	}, nil
}

// GetResults runs the scoring replay and the bonus ranking over committed
// history. Idempotent; also evaluates the finished flag lazily.
func (c *Controller) GetResults(ctx context.Context, gameID model.GameID, callerID model.UserID, isAdmin bool) (*Results, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.AccessibleBy(callerID, isAdmin) {
		return nil, model.ErrNotOwner
	}

	h, err := c.loadHistory(ctx, game.ID)
	if err != nil {
		return nil, err
	}

	if err := c.evaluateFinished(ctx, game, h); err != nil {
		return nil, err
	}

	replay := c.scoringService.Replay(scoring.Input{
		Players:   h.players,
		Rounds:    h.rounds,
		Cells:     h.cells,
		Instances: h.instances,
		Usages:    h.usages,
		Questions: h.questions,
	})

	bonusResult := c.bonusService.Resolve(h.bonuses, h.players, replay.Metrics)

	withBonus := make(map[model.PlayerID]int, len(h.players))
	for _, p := range h.players {
		withBonus[p.ID] = replay.Totals[p.ID] + bonusResult.Totals[p.ID]
	}

	return &Results{
		Game:            game,
		FinalScores:     replay.Totals,
		BonusTotals:     bonusResult.Totals,
		ScoresWithBonus: withBonus,
		TurnHistory:     replay.Timeline,
		JokerImpacts:    replay.JokerImpacts,
		BonusBreakdown:  bonusResult.Breakdown,
	}, nil
}

// loadHistory reads the committed snapshot the views and the replay consume
func (c *Controller) loadHistory(ctx context.Context, gameID model.GameID) (*history, error) {
	h := &history{}
	var err error

	if h.players, err = c.storage.ListPlayersByGame(ctx, gameID); err != nil {
		return nil, err
	}
	if h.rounds, err = c.storage.ListRoundsByGame(ctx, gameID); err != nil {
		return nil, err
	}
	if h.cells, err = c.storage.ListGridCellsByGame(ctx, gameID); err != nil {
		return nil, err
	}
	if h.instances, err = c.storage.ListJokerInstancesByGame(ctx, gameID); err != nil {
		return nil, err
	}
	if h.usages, err = c.storage.ListJokerUsagesByGame(ctx, gameID); err != nil {
		return nil, err
	}
	if h.bonuses, err = c.storage.ListBonusInstancesByGame(ctx, gameID); err != nil {
		return nil, err
	}

	questionIDs := make([]model.QuestionID, 0, len(h.cells))
	for _, cell := range h.cells {
		questionIDs = append(questionIDs, cell.QuestionID)
	}
	if h.questions, err = c.storage.GetQuestionsByIDs(ctx, questionIDs); err != nil {
		return nil, err
	}

	return h, nil
}

// evaluateFinished flips the finished flag exactly once, when the count of
// resolved cells first reaches floor(total/players)×players
func (c *Controller) evaluateFinished(ctx context.Context, game *model.Game, h *history) error {
	if game.Finished || len(h.players) == 0 {
		return nil
	}

	resolvedCount := 0
	for _, cell := range h.cells {
		if cell.Resolved() {
			resolvedCount++
		}
	}
	if resolvedCount < game.FinishThreshold(len(h.players)) {
		return nil
	}

	game.Finished = true
	game.UpdatedAt = c.clock.Now()
	err := c.storage.Atomic(ctx, func(b storage.Batch) error {
		b.SaveGame(game)
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("game finished",
		slog.String("game_id", string(game.ID)),
		slog.Int("resolved_cells", resolvedCount),
	)
	return nil
}

// buildBoardView decorates cells with question theme and point info
func (c *Controller) buildBoardView(ctx context.Context, h *history) ([]CellView, error) {
	themeNames := make(map[model.ThemeID]string)
	for _, q := range h.questions {
		if _, ok := themeNames[q.ThemeID]; ok {
			continue
		}
		theme, err := c.storage.GetTheme(ctx, q.ThemeID)
		if err != nil {
			return nil, err
		}
		themeNames[q.ThemeID] = theme.Name
	}

	view := make([]CellView, 0, len(h.cells))
	for _, cell := range h.cells {
		cv := CellView{
			ID:      cell.ID,
			Row:     cell.Row,
			Column:  cell.Column,
			RoundID: cell.RoundID,
			Correct: cell.Correct,
			Skipped: cell.Skipped,
		}
		if q := h.questions[cell.QuestionID]; q != nil {
			cv.Question = QuestionView{
				ID:        q.ID,
				ThemeID:   q.ThemeID,
				ThemeName: themeNames[q.ThemeID],
				Points:    q.Points,
			}
		}
		view = append(view, cv)
	}
	return view, nil
}

// pendingTurn finds the round no cell references yet. Rounds are created
// one ahead, so at most one is pending; nil means the game has stopped
// producing turns.
func pendingTurn(h *history) *TurnView {
	resolved := make(map[model.RoundID]bool, len(h.cells))
	for _, cell := range h.cells {
		if cell.Resolved() {
			resolved[cell.RoundID] = true
		}
	}

	var pending *model.Round
	for _, r := range h.rounds {
		if !resolved[r.ID] && (pending == nil || r.Number > pending.Number) {
			pending = r
		}
	}
	if pending == nil {
		return nil
	}

	var player *model.Player
	for _, p := range h.players {
		if p.ID == pending.PlayerID {
			player = p
			break
		}
	}

	return &TurnView{
		RoundID:     pending.ID,
		RoundNumber: pending.Number,
		Player:      player,
	}
}

// jokerAvailability computes, per player, which joker instances the gate
// would still accept. The cutoff is the pending round's number so the view
// matches UseJoker's strictly-before rule; with no pending round everything
// used counts.
func (c *Controller) jokerAvailability(ctx context.Context, gameID model.GameID, h *history, currentTurn *TurnView) (map[model.PlayerID][]JokerAvailability, error) {
	cutoff := math.MaxInt
	if currentTurn != nil {
		cutoff = currentTurn.RoundNumber
	}

	availability := make(map[model.PlayerID][]JokerAvailability, len(h.players))
	for _, p := range h.players {
		used, err := joker.UsedByPlayerBefore(ctx, c.storage, gameID, p.ID, cutoff)
		if err != nil {
			return nil, err
		}
		entries := make([]JokerAvailability, 0, len(h.instances))
		for _, ji := range h.instances {
			entries = append(entries, JokerAvailability{
				Instance:  ji,
				Available: !used[ji.ID],
			})
		}
		availability[p.ID] = entries
	}
	return availability, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, in CreateGameInput) (*model.Game, error)
	AnswerQuestion(ctx context.Context, gameID model.GameID, roundID model.RoundID, cellID model.GridCellID, correct, skipped, autoAdvance bool, callerID model.UserID, isAdmin bool) (*AnswerResult, error)
	GetState(ctx context.Context, gameID model.GameID, callerID model.UserID, isAdmin bool) (*State, error)
	GetResults(ctx context.Context, gameID model.GameID, callerID model.UserID, isAdmin bool) (*Results, error)
}

var _ ControllerInterface = (*Controller)(nil)
