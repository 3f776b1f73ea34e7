package board

import (
	"context"
	"log/slog"

	"github.com/Jilaskel/Quiz-Back/internal/dependencies/random"
	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/storage"
)

// catalogPageSize is how many questions are fetched per catalog page
const catalogPageSize = 200

// Service generates deterministic board layouts from a game seed
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new board Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// PlayerSpec describes one requested player before ids are assigned
type PlayerSpec struct {
	Name     string
	ThemeID  model.ThemeID
	ColorHex string
}

// Spec is the board generation input. Identical specs always produce
// identical layouts.
type Spec struct {
	Seed    int64
	Rows    int
	Columns int

	// Players in submission order; Generate shuffles them into turn order
	Players []PlayerSpec

	// QuestionsPerPlayer is how many cells each player theme fills
	QuestionsPerPlayer int

	// GeneralThemeIDs fill the cells left over after player allocations.
	// Must not include any player theme.
	GeneralThemeIDs []model.ThemeID
}

// CellAssignment binds one question to one coordinate
type CellAssignment struct {
	Row        int
	Column     int
	QuestionID model.QuestionID
}

// Layout is a fully generated board: shuffled turn order plus one question
// per cell, all unanswered
type Layout struct {
	// TurnOrder holds the players in play order; index i gets order i+1 and
	// TurnOrder[0] receives the first round
	TurnOrder []PlayerSpec

	Cells []CellAssignment
}

// Generate produces the board layout for the given spec. All randomness
// comes from a source seeded with spec.Seed.
func (s *Service) Generate(ctx context.Context, spec Spec) (*Layout, error) {
	if len(spec.Players) == 0 {
		return nil, model.ErrNoPlayers
	}

	playerThemes := make(map[model.ThemeID]bool, len(spec.Players))
	for _, p := range spec.Players {
		if playerThemes[p.ThemeID] {
			return nil, model.ErrDuplicateTheme
		}
		playerThemes[p.ThemeID] = true
	}
	for _, tid := range spec.GeneralThemeIDs {
		if playerThemes[tid] {
			return nil, model.ErrGeneralThemeOwned
		}
	}

	totalCells := spec.Rows * spec.Columns
	remaining := totalCells - len(spec.Players)*spec.QuestionsPerPlayer
	if remaining < 0 {
		return nil, model.ErrGridTooSmall
	}

	rng := random.NewSeeded(spec.Seed)

	// Turn order
	turnOrder := make([]PlayerSpec, len(spec.Players))
	copy(turnOrder, spec.Players)
	rng.Shuffle(len(turnOrder), func(i, j int) {
		turnOrder[i], turnOrder[j] = turnOrder[j], turnOrder[i]
	})

	// Player theme draws, in turn order so the sequence of rng calls is fixed
	questionIDs := make([]model.QuestionID, 0, totalCells)
	for _, p := range turnOrder {
		pool, err := s.loadThemePool(ctx, p.ThemeID)
		if err != nil {
			return nil, err
		}
		if len(pool) < spec.QuestionsPerPlayer {
			s.logger.Warn("theme pool too small",
				slog.String("theme_id", string(p.ThemeID)),
				slog.Int("pool", len(pool)),
				slog.Int("requested", spec.QuestionsPerPlayer),
			)
			return nil, model.ErrInsufficientQuestions
		}
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		questionIDs = append(questionIDs, pool[:spec.QuestionsPerPlayer]...)
	}

	// General fill: each general pool is shuffled once, then cells draw from
	// a randomly chosen theme, falling back to any theme with supply left
	generalPools := make([][]model.QuestionID, len(spec.GeneralThemeIDs))
	for i, tid := range spec.GeneralThemeIDs {
		pool, err := s.loadThemePool(ctx, tid)
		if err != nil {
			return nil, err
		}
		rng.Shuffle(len(pool), func(a, b int) { pool[a], pool[b] = pool[b], pool[a] })
		generalPools[i] = pool
	}

	for n := 0; n < remaining; n++ {
		id, ok := drawGeneral(rng, generalPools)
		if !ok {
			return nil, model.ErrInsufficientGeneralQuestions
		}
		questionIDs = append(questionIDs, id)
	}

	// Shuffle questions and coordinates independently, then zip 1:1
	rng.Shuffle(len(questionIDs), func(i, j int) {
		questionIDs[i], questionIDs[j] = questionIDs[j], questionIDs[i]
	})

	coords := make([][2]int, 0, totalCells)
	for row := 0; row < spec.Rows; row++ {
		for col := 0; col < spec.Columns; col++ {
			coords = append(coords, [2]int{row, col})
		}
	}
	rng.Shuffle(len(coords), func(i, j int) { coords[i], coords[j] = coords[j], coords[i] })

	cells := make([]CellAssignment, len(questionIDs))
	for i, qid := range questionIDs {
		cells[i] = CellAssignment{
			Row:        coords[i][0],
			Column:     coords[i][1],
			QuestionID: qid,
		}
	}

	return &Layout{
		TurnOrder: turnOrder,
		Cells:     cells,
	}, nil
}

// drawGeneral pops one question id from a randomly chosen general pool,
// scanning forward to any non-empty pool when the chosen one is exhausted
func drawGeneral(rng *random.Seeded, pools [][]model.QuestionID) (model.QuestionID, bool) {
	if len(pools) == 0 {
		return "", false
	}
	start := rng.Intn(len(pools))
	for offset := 0; offset < len(pools); offset++ {
		idx := (start + offset) % len(pools)
		if len(pools[idx]) == 0 {
			continue
		}
		id := pools[idx][0]
		pools[idx] = pools[idx][1:]
		return id, true
	}
	return "", false
}

// loadThemePool pages through the catalog and returns every question id for
// the theme
func (s *Service) loadThemePool(ctx context.Context, themeID model.ThemeID) ([]model.QuestionID, error) {
	var ids []model.QuestionID
	offset := 0
	for {
		page, err := s.storage.ListQuestionsByTheme(ctx, themeID, offset, catalogPageSize)
		if err != nil {
			return nil, err
		}
		for _, q := range page {
			ids = append(ids, q.ID)
		}
		if len(page) < catalogPageSize {
			return ids, nil
		}
		offset += catalogPageSize
	}
}

// Interface for dependency injection
type ServiceInterface interface {
	Generate(ctx context.Context, spec Spec) (*Layout, error)
}

var _ ServiceInterface = (*Service)(nil)
