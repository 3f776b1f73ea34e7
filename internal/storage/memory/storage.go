package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	games          map[model.GameID]*model.Game
	players        map[model.PlayerID]*model.Player
	rounds         map[model.RoundID]*model.Round
	cells          map[model.GridCellID]*model.GridCell
	jokerInstances map[model.JokerInstanceID]*model.JokerInstance
	jokerUsages    map[model.JokerUsageID]*model.JokerUsage
	bonusInstances map[model.BonusInstanceID]*model.BonusInstance

	themes    map[model.ThemeID]*model.Theme
	questions map[model.QuestionID]*model.Question
	// insertion order per theme, for stable pagination
	questionsByTheme map[model.ThemeID][]model.QuestionID

	roundsByPlayerNumber map[playerRoundKey]model.RoundID
}

type playerRoundKey struct {
	playerID model.PlayerID
	number   int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:                make(map[model.GameID]*model.Game),
		players:              make(map[model.PlayerID]*model.Player),
		rounds:               make(map[model.RoundID]*model.Round),
		cells:                make(map[model.GridCellID]*model.GridCell),
		jokerInstances:       make(map[model.JokerInstanceID]*model.JokerInstance),
		jokerUsages:          make(map[model.JokerUsageID]*model.JokerUsage),
		bonusInstances:       make(map[model.BonusInstanceID]*model.BonusInstance),
		themes:               make(map[model.ThemeID]*model.Theme),
		questions:            make(map[model.QuestionID]*model.Question),
		questionsByTheme:     make(map[model.ThemeID][]model.QuestionID),
		roundsByPlayerNumber: make(map[playerRoundKey]model.RoundID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

func (s *Storage) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.games[id]
	return ok, nil
}

// Player operations

func (s *Storage) ListPlayersByGame(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var players []*model.Player
	for _, p := range s.players {
		if p.GameID == gameID {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Order < players[j].Order })
	return players, nil
}

// Round operations

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	round, ok := s.rounds[id]
	if !ok {
		return nil, model.ErrRoundNotFound
	}
	return round, nil
}

func (s *Storage) ListRoundsByGame(ctx context.Context, gameID model.GameID) ([]*model.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rounds []*model.Round
	for _, r := range s.rounds {
		if r.GameID == gameID {
			rounds = append(rounds, r)
		}
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
	return rounds, nil
}

func (s *Storage) RoundExists(ctx context.Context, playerID model.PlayerID, number int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.roundsByPlayerNumber[playerRoundKey{playerID: playerID, number: number}]
	return ok, nil
}

// Grid cell operations

func (s *Storage) GetGridCell(ctx context.Context, id model.GridCellID) (*model.GridCell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cell, ok := s.cells[id]
	if !ok {
		return nil, model.ErrGridCellNotFound
	}
	return cell, nil
}

func (s *Storage) ListGridCellsByGame(ctx context.Context, gameID model.GameID) ([]*model.GridCell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var cells []*model.GridCell
	for _, c := range s.cells {
		if c.GameID == gameID {
			cells = append(cells, c)
		}
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Column < cells[j].Column
	})
	return cells, nil
}

// Joker operations

func (s *Storage) GetJokerInstance(ctx context.Context, id model.JokerInstanceID) (*model.JokerInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	instance, ok := s.jokerInstances[id]
	if !ok {
		return nil, model.ErrJokerNotFound
	}
	return instance, nil
}

func (s *Storage) ListJokerInstancesByGame(ctx context.Context, gameID model.GameID) ([]*model.JokerInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var instances []*model.JokerInstance
	for _, ji := range s.jokerInstances {
		if ji.GameID == gameID {
			instances = append(instances, ji)
		}
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].ID < instances[j].ID })
	return instances, nil
}

func (s *Storage) ListJokerUsagesByGame(ctx context.Context, gameID model.GameID) ([]*model.JokerUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var usages []*model.JokerUsage
	for _, u := range s.jokerUsages {
		if u.GameID == gameID {
			usages = append(usages, u)
		}
	}
	sort.Slice(usages, func(i, j int) bool { return usages[i].ID < usages[j].ID })
	return usages, nil
}

// Bonus operations

func (s *Storage) ListBonusInstancesByGame(ctx context.Context, gameID model.GameID) ([]*model.BonusInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var bonuses []*model.BonusInstance
	for _, b := range s.bonusInstances {
		if b.GameID == gameID {
			bonuses = append(bonuses, b)
		}
	}
	sort.Slice(bonuses, func(i, j int) bool { return bonuses[i].ID < bonuses[j].ID })
	return bonuses, nil
}

// Catalog operations

func (s *Storage) SaveTheme(ctx context.Context, theme *model.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.themes[theme.ID] = theme
	return nil
}

func (s *Storage) GetTheme(ctx context.Context, id model.ThemeID) (*model.Theme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	theme, ok := s.themes[id]
	if !ok {
		return nil, model.ErrThemeNotFound
	}
	return theme, nil
}

func (s *Storage) SaveQuestion(ctx context.Context, question *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[question.ID]; !ok {
		s.questionsByTheme[question.ThemeID] = append(s.questionsByTheme[question.ThemeID], question.ID)
	}
	s.questions[question.ID] = question
	return nil
}

func (s *Storage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return nil, model.ErrQuestionNotFound
	}
	return question, nil
}

func (s *Storage) GetQuestionsByIDs(ctx context.Context, ids []model.QuestionID) (map[model.QuestionID]*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[model.QuestionID]*model.Question, len(ids))
	for _, id := range ids {
		if q, ok := s.questions[id]; ok {
			result[id] = q
		}
	}
	return result, nil
}

func (s *Storage) ListQuestionsByTheme(ctx context.Context, themeID model.ThemeID, offset, limit int) ([]*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.questionsByTheme[themeID]
	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(ids) {
		end = len(ids)
	}
	questions := make([]*model.Question, 0, end-offset)
	for _, id := range ids[offset:end] {
		questions = append(questions, s.questions[id])
	}
	return questions, nil
}

// Atomic runs fn with a batch and applies all staged writes under one lock
// acquisition. An error from fn discards the batch.
func (s *Storage) Atomic(ctx context.Context, fn func(b storage.Batch) error) error {
	batch := &memoryBatch{}
	if err := fn(batch); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, game := range batch.games {
		s.games[game.ID] = game
	}
	for _, player := range batch.players {
		s.players[player.ID] = player
	}
	for _, round := range batch.rounds {
		s.rounds[round.ID] = round
		s.roundsByPlayerNumber[playerRoundKey{playerID: round.PlayerID, number: round.Number}] = round.ID
	}
	for _, cell := range batch.cells {
		s.cells[cell.ID] = cell
	}
	for _, instance := range batch.jokerInstances {
		s.jokerInstances[instance.ID] = instance
	}
	for _, usage := range batch.jokerUsages {
		s.jokerUsages[usage.ID] = usage
	}
	for _, bonus := range batch.bonusInstances {
		s.bonusInstances[bonus.ID] = bonus
	}
	return nil
}

// memoryBatch buffers writes until Atomic commits them
type memoryBatch struct {
	games          []*model.Game
	players        []*model.Player
	rounds         []*model.Round
	cells          []*model.GridCell
	jokerInstances []*model.JokerInstance
	jokerUsages    []*model.JokerUsage
	bonusInstances []*model.BonusInstance
}

var _ storage.Batch = (*memoryBatch)(nil)

func (b *memoryBatch) SaveGame(game *model.Game)                    { b.games = append(b.games, game) }
func (b *memoryBatch) SavePlayer(player *model.Player)              { b.players = append(b.players, player) }
func (b *memoryBatch) SaveRound(round *model.Round)                 { b.rounds = append(b.rounds, round) }
func (b *memoryBatch) SaveGridCell(cell *model.GridCell)            { b.cells = append(b.cells, cell) }
func (b *memoryBatch) SaveJokerInstance(ji *model.JokerInstance)    { b.jokerInstances = append(b.jokerInstances, ji) }
func (b *memoryBatch) SaveJokerUsage(usage *model.JokerUsage)       { b.jokerUsages = append(b.jokerUsages, usage) }
func (b *memoryBatch) SaveBonusInstance(bi *model.BonusInstance)    { b.bonusInstances = append(b.bonusInstances, bi) }
