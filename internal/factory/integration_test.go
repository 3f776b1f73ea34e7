package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/services/board"
	"github.com/Jilaskel/Quiz-Back/internal/services/game"
	"github.com/Jilaskel/Quiz-Back/internal/services/joker"
)

const owner = model.UserID("owner")

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()

	s.Require().NoError(s.app.SeedCatalog(s.ctx, "history", "History", 3, 2))
	s.Require().NoError(s.app.SeedCatalog(s.ctx, "science", "Science", 3, 2))
	s.Require().NoError(s.app.SeedCatalog(s.ctx, "misc", "General Knowledge", 4, 2))
}

// createStandardGame sets up a 2x2 board for alice and bob, one themed
// question each plus two general ones, worth 2 points apiece.
func (s *IntegrationSuite) createStandardGame() *model.Game {
	s.app.MockRandom.QueueString("abcd1234")

	g, err := s.app.GameController.CreateGame(s.ctx, game.CreateGameInput{
		OwnerID: owner,
		Seed:    42,
		Rows:    2,
		Columns: 2,
		Players: []board.PlayerSpec{
			{Name: "Alice", ThemeID: "history"},
			{Name: "Bob", ThemeID: "science"},
		},
		QuestionsPerPlayer: 1,
		GeneralThemeIDs:    []model.ThemeID{"misc"},
		JokerKinds:         []model.JokerKind{model.JokerDouble, model.JokerGamble},
		BonusMetrics:       []model.BonusMetric{model.BonusWeightedAttempts, model.BonusInflictedLoss},
	})
	s.Require().NoError(err)
	return g
}

func (s *IntegrationSuite) getState(gameID model.GameID) *game.State {
	state, err := s.app.GameController.GetState(s.ctx, gameID, owner, false)
	s.Require().NoError(err)
	return state
}

// firstOpenCell returns the first board cell no round has resolved yet
func (s *IntegrationSuite) firstOpenCell(state *game.State) game.CellView {
	for _, cell := range state.Board {
		if cell.RoundID == "" {
			return cell
		}
	}
	s.Require().FailNow("no open cell left on the board")
	return game.CellView{}
}

func (s *IntegrationSuite) findInstance(state *game.State, playerID model.PlayerID, kind model.JokerKind) *model.JokerInstance {
	for _, avail := range state.AvailableJokers[playerID] {
		if avail.Instance.Kind == kind {
			return avail.Instance
		}
	}
	s.Require().FailNow("joker kind not offered", "kind %s", kind)
	return nil
}

// Test: complete game flow from creation through the finish threshold
func (s *IntegrationSuite) TestCompleteGameFlow() {
	g := s.createStandardGame()
	s.Equal(model.GameID("g-abcd1234"), g.ID)

	state := s.getState(g.ID)
	s.Require().Len(state.Players, 2)
	s.Require().Len(state.Board, 4)
	alice := state.Players[0]
	bob := state.Players[1]

	// Turn 1: alice answers correctly
	s.Require().NotNil(state.CurrentTurn)
	s.Equal(alice.ID, state.CurrentTurn.Player.ID)
	cell := s.firstOpenCell(state)
	_, err := s.app.GameController.AnswerQuestion(s.ctx, g.ID, state.CurrentTurn.RoundID, cell.ID, true, false, true, owner, false)
	s.Require().NoError(err)

	// Turn 2: bob plays a double joker before answering correctly
	state = s.getState(g.ID)
	s.Require().NotNil(state.CurrentTurn)
	s.Equal(bob.ID, state.CurrentTurn.Player.ID)

	double := s.findInstance(state, bob.ID, model.JokerDouble)
	usage, err := s.app.JokerGate.Use(s.ctx, joker.UseRequest{
		GameID:          g.ID,
		JokerInstanceID: double.ID,
		RoundID:         state.CurrentTurn.RoundID,
		CallerID:        owner,
	})
	s.Require().NoError(err)

	cell = s.firstOpenCell(state)
	_, err = s.app.GameController.AnswerQuestion(s.ctx, g.ID, state.CurrentTurn.RoundID, cell.ID, true, false, true, owner, false)
	s.Require().NoError(err)

	// Turn 3: back to alice, who answers incorrectly
	state = s.getState(g.ID)
	s.Equal(alice.ID, state.CurrentTurn.Player.ID)
	cell = s.firstOpenCell(state)
	_, err = s.app.GameController.AnswerQuestion(s.ctx, g.ID, state.CurrentTurn.RoundID, cell.ID, false, false, true, owner, false)
	s.Require().NoError(err)

	s.False(s.getState(g.ID).Game.Finished)

	// Turn 4: bob resolves the last cell, crossing the finish threshold
	state = s.getState(g.ID)
	s.Equal(bob.ID, state.CurrentTurn.Player.ID)
	cell = s.firstOpenCell(state)
	_, err = s.app.GameController.AnswerQuestion(s.ctx, g.ID, state.CurrentTurn.RoundID, cell.ID, true, false, false, owner, false)
	s.Require().NoError(err)

	state = s.getState(g.ID)
	s.True(state.Game.Finished)
	s.Nil(state.CurrentTurn)

	results, err := s.app.GameController.GetResults(s.ctx, g.ID, owner, false)
	s.Require().NoError(err)
	s.True(results.Game.Finished)
	s.Len(results.TurnHistory, 4)
	s.Len(results.BonusBreakdown, 2)

	// The double repeated the base transfer once in bob's favour
	s.Require().Contains(results.JokerImpacts, usage.ID)
	s.Equal(2, results.JokerImpacts[usage.ID][bob.ID])

	// Final scores are the sum of the per-turn deltas
	sums := map[model.PlayerID]int{}
	for _, turn := range results.TurnHistory {
		for id, delta := range turn.Delta {
			sums[id] += delta
		}
	}
	for _, p := range state.Players {
		s.Equal(sums[p.ID], results.FinalScores[p.ID])
		s.Equal(results.FinalScores[p.ID]+results.BonusTotals[p.ID], results.ScoresWithBonus[p.ID])
	}
}

// Test: a joker spent in one round stays spent for that player
func (s *IntegrationSuite) TestJokerSpentAcrossRounds() {
	g := s.createStandardGame()

	state := s.getState(g.ID)
	bob := state.Players[1]

	// Alice plays turn 1 so it becomes bob's round
	cell := s.firstOpenCell(state)
	_, err := s.app.GameController.AnswerQuestion(s.ctx, g.ID, state.CurrentTurn.RoundID, cell.ID, true, false, true, owner, false)
	s.Require().NoError(err)

	state = s.getState(g.ID)
	double := s.findInstance(state, bob.ID, model.JokerDouble)
	_, err = s.app.JokerGate.Use(s.ctx, joker.UseRequest{
		GameID:          g.ID,
		JokerInstanceID: double.ID,
		RoundID:         state.CurrentTurn.RoundID,
		CallerID:        owner,
	})
	s.Require().NoError(err)

	// Play through to bob's next round
	cell = s.firstOpenCell(state)
	_, err = s.app.GameController.AnswerQuestion(s.ctx, g.ID, state.CurrentTurn.RoundID, cell.ID, true, false, true, owner, false)
	s.Require().NoError(err)
	state = s.getState(g.ID)
	cell = s.firstOpenCell(state)
	_, err = s.app.GameController.AnswerQuestion(s.ctx, g.ID, state.CurrentTurn.RoundID, cell.ID, true, false, true, owner, false)
	s.Require().NoError(err)

	state = s.getState(g.ID)
	s.Equal(bob.ID, state.CurrentTurn.Player.ID)

	// The spent double shows unavailable for bob but not for alice
	for _, avail := range state.AvailableJokers[bob.ID] {
		if avail.Instance.ID == double.ID {
			s.False(avail.Available)
		}
	}
	for _, avail := range state.AvailableJokers[state.Players[0].ID] {
		if avail.Instance.ID == double.ID {
			s.True(avail.Available)
		}
	}

	_, err = s.app.JokerGate.Use(s.ctx, joker.UseRequest{
		GameID:          g.ID,
		JokerInstanceID: double.ID,
		RoundID:         state.CurrentTurn.RoundID,
		CallerID:        owner,
	})
	s.ErrorIs(err, model.ErrJokerAlreadyUsed)
}

// Test: a gamble placed on another player's future cell pays out on replay
func (s *IntegrationSuite) TestGambleFlow() {
	g := s.createStandardGame()

	state := s.getState(g.ID)
	alice := state.Players[0]
	bob := state.Players[1]

	// Alice gambles on a cell she will not answer herself
	gamble := s.findInstance(state, alice.ID, model.JokerGamble)
	target := state.Board[len(state.Board)-1]
	usage, err := s.app.JokerGate.Use(s.ctx, joker.UseRequest{
		GameID:          g.ID,
		JokerInstanceID: gamble.ID,
		RoundID:         state.CurrentTurn.RoundID,
		TargetCellID:    target.ID,
		CallerID:        owner,
	})
	s.Require().NoError(err)
	s.Equal(target.ID, usage.TargetCellID)

	// Alice answers a different cell, then bob resolves the target correctly
	var opening game.CellView
	for _, cell := range state.Board {
		if cell.RoundID == "" && cell.ID != target.ID {
			opening = cell
			break
		}
	}
	s.Require().NotEmpty(opening.ID)
	_, err = s.app.GameController.AnswerQuestion(s.ctx, g.ID, state.CurrentTurn.RoundID, opening.ID, true, false, true, owner, false)
	s.Require().NoError(err)

	state = s.getState(g.ID)
	s.Equal(bob.ID, state.CurrentTurn.Player.ID)
	_, err = s.app.GameController.AnswerQuestion(s.ctx, g.ID, state.CurrentTurn.RoundID, target.ID, true, false, false, owner, false)
	s.Require().NoError(err)

	results, err := s.app.GameController.GetResults(s.ctx, g.ID, owner, false)
	s.Require().NoError(err)

	// The wager equals the target cell's point value, won by alice
	s.Require().Contains(results.JokerImpacts, usage.ID)
	s.Equal(2, results.JokerImpacts[usage.ID][alice.ID])
}
