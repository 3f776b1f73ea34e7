package storage

import (
	"context"

	"github.com/Jilaskel/Quiz-Back/internal/model"
)

// Batch stages writes inside one atomic unit of work. Nothing staged is
// visible until Storage.Atomic commits; a returned error discards the batch.
type Batch interface {
	SaveGame(game *model.Game)
	SavePlayer(player *model.Player)
	SaveRound(round *model.Round)
	SaveGridCell(cell *model.GridCell)
	SaveJokerInstance(instance *model.JokerInstance)
	SaveJokerUsage(usage *model.JokerUsage)
	SaveBonusInstance(bonus *model.BonusInstance)
}

// Storage defines the interface for data persistence. Reads return committed
// state only; every engine mutation goes through Atomic so it either fully
// commits or leaves no trace.
type Storage interface {
	// Game operations
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	GameExists(ctx context.Context, id model.GameID) (bool, error)

	// Player operations
	ListPlayersByGame(ctx context.Context, gameID model.GameID) ([]*model.Player, error)

	// Round operations
	GetRound(ctx context.Context, id model.RoundID) (*model.Round, error)
	ListRoundsByGame(ctx context.Context, gameID model.GameID) ([]*model.Round, error)
	RoundExists(ctx context.Context, playerID model.PlayerID, number int) (bool, error)

	// Grid cell operations
	GetGridCell(ctx context.Context, id model.GridCellID) (*model.GridCell, error)
	ListGridCellsByGame(ctx context.Context, gameID model.GameID) ([]*model.GridCell, error)

	// Joker operations
	GetJokerInstance(ctx context.Context, id model.JokerInstanceID) (*model.JokerInstance, error)
	ListJokerInstancesByGame(ctx context.Context, gameID model.GameID) ([]*model.JokerInstance, error)
	ListJokerUsagesByGame(ctx context.Context, gameID model.GameID) ([]*model.JokerUsage, error)

	// Bonus operations
	ListBonusInstancesByGame(ctx context.Context, gameID model.GameID) ([]*model.BonusInstance, error)

	// Catalog operations. Theme/question management is an external concern;
	// the engine reads the catalog and the CLI seeds it.
	SaveTheme(ctx context.Context, theme *model.Theme) error
	GetTheme(ctx context.Context, id model.ThemeID) (*model.Theme, error)
	SaveQuestion(ctx context.Context, question *model.Question) error
	GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error)
	GetQuestionsByIDs(ctx context.Context, ids []model.QuestionID) (map[model.QuestionID]*model.Question, error)
	ListQuestionsByTheme(ctx context.Context, themeID model.ThemeID, offset, limit int) ([]*model.Question, error)

	// Atomic runs fn with a write batch and commits everything it staged as
	// one all-or-nothing unit
	Atomic(ctx context.Context, fn func(b Batch) error) error
}
