package game

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Jilaskel/Quiz-Back/internal/dependencies/mocks"
	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/services/board"
	"github.com/Jilaskel/Quiz-Back/internal/services/bonus"
	"github.com/Jilaskel/Quiz-Back/internal/services/scoring"
	"github.com/Jilaskel/Quiz-Back/internal/storage"
	"github.com/Jilaskel/Quiz-Back/internal/storage/memory"
	"github.com/Jilaskel/Quiz-Back/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()

	logger := testutil.NopLogger()
	s.controller = NewController(
		s.storage,
		board.New(s.storage, logger),
		scoring.New(),
		bonus.New(),
		s.clock,
		s.random,
		logger,
	)
	s.ctx = context.Background()

	s.seedCatalog()
}

func (s *ControllerSuite) seedCatalog() {
	for _, theme := range []model.ThemeID{"ta", "tb", "tc", "misc"} {
		err := s.storage.SaveTheme(s.ctx, &model.Theme{ID: theme, Name: string(theme)})
		s.Require().NoError(err)
		for i := 0; i < 3; i++ {
			err := s.storage.SaveQuestion(s.ctx, &model.Question{
				ID:      model.QuestionID(fmt.Sprintf("%s-q%d", theme, i+1)),
				ThemeID: theme,
				Text:    fmt.Sprintf("%s question %d", theme, i+1),
				Points:  2,
			})
			s.Require().NoError(err)
		}
	}
}

// defaultInput is a 2x2 board for three players: one theme question each
// plus one general cell. The finish threshold is 3 resolved cells.
func (s *ControllerSuite) defaultInput() CreateGameInput {
	return CreateGameInput{
		OwnerID: "owner",
		Seed:    42,
		Rows:    2,
		Columns: 2,
		Players: []board.PlayerSpec{
			{Name: "alice", ThemeID: "ta", ColorHex: "#ff0000"},
			{Name: "bob", ThemeID: "tb", ColorHex: "#00ff00"},
			{Name: "carol", ThemeID: "tc", ColorHex: "#0000ff"},
		},
		QuestionsPerPlayer: 1,
		GeneralThemeIDs:    []model.ThemeID{"misc"},
		JokerKinds:         []model.JokerKind{model.JokerDouble, model.JokerGamble},
		BonusMetrics:       []model.BonusMetric{model.BonusWeightedAttempts},
	}
}

func (s *ControllerSuite) createGame(slug string) *model.Game {
	s.random.QueueString(slug)
	game, err := s.controller.CreateGame(s.ctx, s.defaultInput())
	s.Require().NoError(err)
	return game
}

func (s *ControllerSuite) players(gameID model.GameID) []*model.Player {
	players, err := s.storage.ListPlayersByGame(s.ctx, gameID)
	s.Require().NoError(err)
	return players
}

func (s *ControllerSuite) openCell(gameID model.GameID) *model.GridCell {
	cells, err := s.storage.ListGridCellsByGame(s.ctx, gameID)
	s.Require().NoError(err)
	for _, c := range cells {
		if !c.Resolved() {
			return c
		}
	}
	s.FailNow("no open cell left")
	return nil
}

func (s *ControllerSuite) latestRound(gameID model.GameID) *model.Round {
	rounds, err := s.storage.ListRoundsByGame(s.ctx, gameID)
	s.Require().NoError(err)
	s.Require().NotEmpty(rounds)
	return rounds[len(rounds)-1]
}

// CreateGame tests

func (s *ControllerSuite) TestCreateGameSucceeds() {
	game := s.createGame("abcd1234")

	s.Equal(model.GameID("g-abcd1234"), game.ID)
	s.Equal(model.UserID("owner"), game.OwnerID)
	s.Equal(s.clock.Now(), game.CreatedAt)
	s.False(game.Finished)

	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.ID, stored.ID)

	players := s.players(game.ID)
	s.Require().Len(players, 3)
	for i, p := range players {
		s.Equal(i+1, p.Order)
		s.Nil(p.Position)
	}

	cells, err := s.storage.ListGridCellsByGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Len(cells, 4)
	for _, c := range cells {
		s.False(c.Resolved())
	}

	instances, err := s.storage.ListJokerInstancesByGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Len(instances, 2)

	bonuses, err := s.storage.ListBonusInstancesByGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Len(bonuses, 1)

	rounds, err := s.storage.ListRoundsByGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Require().Len(rounds, 1)
	s.Equal(1, rounds[0].Number)
	s.Equal(players[0].ID, rounds[0].PlayerID)
}

func (s *ControllerSuite) TestCreateGameWithPawns() {
	s.random.QueueString("abcd1234")
	in := s.defaultInput()
	in.WithPawns = true

	game, err := s.controller.CreateGame(s.ctx, in)
	s.Require().NoError(err)

	for _, p := range s.players(game.ID) {
		s.Require().NotNil(p.Position)
		s.Equal(0, *p.Position)
	}
}

func (s *ControllerSuite) TestCreateGameDeterministicTurnOrder() {
	first := s.createGame("aaaa1111")
	second := s.createGame("bbbb2222")

	firstPlayers := s.players(first.ID)
	secondPlayers := s.players(second.ID)
	for i := range firstPlayers {
		s.Equal(firstPlayers[i].Name, secondPlayers[i].Name)
	}
}

func (s *ControllerSuite) TestCreateGameRejectsInvalidJokerKind() {
	in := s.defaultInput()
	in.JokerKinds = []model.JokerKind{"x3"}

	_, err := s.controller.CreateGame(s.ctx, in)
	s.ErrorIs(err, model.ErrInvalidJokerKind)
}

func (s *ControllerSuite) TestCreateGameRejectsInvalidBonusMetric() {
	in := s.defaultInput()
	in.BonusMetrics = []model.BonusMetric{"charisma"}

	_, err := s.controller.CreateGame(s.ctx, in)
	s.ErrorIs(err, model.ErrInvalidBonusMetric)
}

func (s *ControllerSuite) TestCreateGameRetriesTakenSlug() {
	s.createGame("taken123")

	s.random.QueueString("taken123", "free4567")
	game, err := s.controller.CreateGame(s.ctx, s.defaultInput())
	s.Require().NoError(err)
	s.Equal(model.GameID("g-free4567"), game.ID)
}

func (s *ControllerSuite) TestCreateGameSlugExhausted() {
	// With no queued values the mock always yields the same slug
	err := s.storage.Atomic(s.ctx, func(b storage.Batch) error {
		b.SaveGame(&model.Game{ID: "g-", OwnerID: "owner"})
		return nil
	})
	s.Require().NoError(err)

	_, err = s.controller.CreateGame(s.ctx, s.defaultInput())
	s.ErrorIs(err, model.ErrSlugExhausted)
}

// AnswerQuestion tests

func (s *ControllerSuite) TestAnswerQuestionResolvesAndAdvances() {
	game := s.createGame("abcd1234")
	players := s.players(game.ID)
	round := s.latestRound(game.ID)
	cell := s.openCell(game.ID)

	result, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, cell.ID, true, false, true, "owner", false)
	s.Require().NoError(err)

	s.Equal(round.ID, result.ResolvedCell.RoundID)
	s.True(result.ResolvedCell.Correct)
	s.False(result.ResolvedCell.Skipped)

	stored, err := s.storage.GetGridCell(s.ctx, cell.ID)
	s.Require().NoError(err)
	s.True(stored.Resolved())

	s.Require().NotNil(result.NextRound)
	s.Equal(2, result.NextRound.Number)
	s.Equal(players[1].ID, result.NextRound.PlayerID)
}

func (s *ControllerSuite) TestAnswerQuestionWrapsTurnOrder() {
	game := s.createGame("abcd1234")
	players := s.players(game.ID)

	// Play a full lap
	for i := 0; i < 3; i++ {
		round := s.latestRound(game.ID)
		s.Equal(players[i].ID, round.PlayerID)
		_, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "owner", false)
		s.Require().NoError(err)
	}

	// Round 4 wraps back to the first player
	round := s.latestRound(game.ID)
	s.Equal(4, round.Number)
	s.Equal(players[0].ID, round.PlayerID)
}

func (s *ControllerSuite) TestAnswerQuestionCellIsWriteOnce() {
	game := s.createGame("abcd1234")
	round := s.latestRound(game.ID)
	cell := s.openCell(game.ID)

	_, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, cell.ID, true, false, true, "owner", false)
	s.Require().NoError(err)

	next := s.latestRound(game.ID)
	_, err = s.controller.AnswerQuestion(s.ctx, game.ID, next.ID, cell.ID, false, false, true, "owner", false)
	s.ErrorIs(err, model.ErrCellAlreadyAnswered)
}

func (s *ControllerSuite) TestAnswerQuestionRoundPlaysOnce() {
	game := s.createGame("abcd1234")
	round := s.latestRound(game.ID)

	_, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "owner", false)
	s.Require().NoError(err)

	_, err = s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "owner", false)
	s.ErrorIs(err, model.ErrRoundAlreadyPlayed)
}

func (s *ControllerSuite) TestAnswerQuestionAdvanceIsIdempotent() {
	game := s.createGame("abcd1234")
	players := s.players(game.ID)
	round := s.latestRound(game.ID)

	// The next round already exists, e.g. a concurrent retry landed first
	err := s.storage.Atomic(s.ctx, func(b storage.Batch) error {
		b.SaveRound(&model.Round{ID: "r-existing", GameID: game.ID, PlayerID: players[1].ID, Number: 2, CreatedAt: s.clock.Now()})
		return nil
	})
	s.Require().NoError(err)

	result, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "owner", false)
	s.Require().NoError(err)
	s.Nil(result.NextRound)

	rounds, err := s.storage.ListRoundsByGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Len(rounds, 2)
}

func (s *ControllerSuite) TestAnswerQuestionWithoutAdvance() {
	game := s.createGame("abcd1234")
	round := s.latestRound(game.ID)

	result, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, false, "owner", false)
	s.Require().NoError(err)
	s.Nil(result.NextRound)

	rounds, err := s.storage.ListRoundsByGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Len(rounds, 1)
}

func (s *ControllerSuite) TestAnswerQuestionDeniedForNonOwner() {
	game := s.createGame("abcd1234")
	round := s.latestRound(game.ID)

	_, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "stranger", false)
	s.ErrorIs(err, model.ErrNotOwner)
}

func (s *ControllerSuite) TestAnswerQuestionAllowedForAdmin() {
	game := s.createGame("abcd1234")
	round := s.latestRound(game.ID)

	_, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "stranger", true)
	s.NoError(err)
}

// GetState tests

func (s *ControllerSuite) TestGetStateInitial() {
	game := s.createGame("abcd1234")
	players := s.players(game.ID)

	state, err := s.controller.GetState(s.ctx, game.ID, "owner", false)
	s.Require().NoError(err)

	s.False(state.Game.Finished)
	s.Len(state.Players, 3)
	s.Len(state.Board, 4)
	for _, cv := range state.Board {
		s.NotEmpty(cv.Question.ID)
		s.NotEmpty(cv.Question.ThemeName)
		s.Equal(2, cv.Question.Points)
	}

	s.Require().NotNil(state.CurrentTurn)
	s.Equal(1, state.CurrentTurn.RoundNumber)
	s.Require().NotNil(state.CurrentTurn.Player)
	s.Equal(players[0].ID, state.CurrentTurn.Player.ID)

	for _, p := range players {
		s.Equal(0, state.Scores[p.ID])
		for _, ja := range state.AvailableJokers[p.ID] {
			s.True(ja.Available)
		}
	}
}

func (s *ControllerSuite) TestGetStateDeniedForNonOwner() {
	game := s.createGame("abcd1234")

	_, err := s.controller.GetState(s.ctx, game.ID, "stranger", false)
	s.ErrorIs(err, model.ErrNotOwner)
}

func (s *ControllerSuite) TestGetStateMarksUsedJokers() {
	game := s.createGame("abcd1234")
	players := s.players(game.ID)
	round := s.latestRound(game.ID)

	instances, err := s.storage.ListJokerInstancesByGame(s.ctx, game.ID)
	s.Require().NoError(err)

	// First player used a joker in round 1, then the turn advanced
	err = s.storage.Atomic(s.ctx, func(b storage.Batch) error {
		b.SaveJokerUsage(&model.JokerUsage{
			ID:              "u1",
			GameID:          game.ID,
			JokerInstanceID: instances[0].ID,
			RoundID:         round.ID,
			CreatedAt:       s.clock.Now(),
		})
		return nil
	})
	s.Require().NoError(err)

	_, err = s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "owner", false)
	s.Require().NoError(err)

	state, err := s.controller.GetState(s.ctx, game.ID, "owner", false)
	s.Require().NoError(err)

	for _, ja := range state.AvailableJokers[players[0].ID] {
		if ja.Instance.ID == instances[0].ID {
			s.False(ja.Available)
		} else {
			s.True(ja.Available)
		}
	}
	// Other players still have the instance available
	for _, ja := range state.AvailableJokers[players[1].ID] {
		s.True(ja.Available)
	}
}

func (s *ControllerSuite) TestGetStateScoresReflectAnswers() {
	game := s.createGame("abcd1234")
	round := s.latestRound(game.ID)
	actor := round.PlayerID

	_, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "owner", false)
	s.Require().NoError(err)

	state, err := s.controller.GetState(s.ctx, game.ID, "owner", false)
	s.Require().NoError(err)

	s.Equal(2, state.Scores[actor])
	s.Require().NotNil(state.LastRoundDelta)
	s.Equal(2, state.LastRoundDelta[actor])
}

// Finish threshold tests

func (s *ControllerSuite) TestGameFinishesAtThreshold() {
	game := s.createGame("abcd1234")

	// 4 cells, 3 players: the game ends after floor(4/3)*3 = 3 resolutions
	for i := 0; i < 2; i++ {
		round := s.latestRound(game.ID)
		_, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "owner", false)
		s.Require().NoError(err)
	}

	state, err := s.controller.GetState(s.ctx, game.ID, "owner", false)
	s.Require().NoError(err)
	s.False(state.Game.Finished)

	round := s.latestRound(game.ID)
	_, err = s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "owner", false)
	s.Require().NoError(err)

	state, err = s.controller.GetState(s.ctx, game.ID, "owner", false)
	s.Require().NoError(err)
	s.True(state.Game.Finished)

	// The flip is persisted
	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.True(stored.Finished)
}

// GetResults tests

func (s *ControllerSuite) TestGetResults() {
	game := s.createGame("abcd1234")

	for i := 0; i < 3; i++ {
		round := s.latestRound(game.ID)
		_, err := s.controller.AnswerQuestion(s.ctx, game.ID, round.ID, s.openCell(game.ID).ID, true, false, true, "owner", false)
		s.Require().NoError(err)
	}

	results, err := s.controller.GetResults(s.ctx, game.ID, "owner", false)
	s.Require().NoError(err)

	s.True(results.Game.Finished)
	s.Len(results.TurnHistory, 3)
	s.Require().Len(results.BonusBreakdown, 1)
	s.Equal(model.BonusWeightedAttempts, results.BonusBreakdown[0].Metric)

	for _, p := range s.players(game.ID) {
		s.Equal(results.FinalScores[p.ID]+results.BonusTotals[p.ID], results.ScoresWithBonus[p.ID])
	}
}

func (s *ControllerSuite) TestGetResultsMidGame() {
	game := s.createGame("abcd1234")

	results, err := s.controller.GetResults(s.ctx, game.ID, "owner", false)
	s.Require().NoError(err)

	s.False(results.Game.Finished)
	s.Empty(results.TurnHistory)
	for _, p := range s.players(game.ID) {
		s.Equal(0, results.FinalScores[p.ID])
	}
}
