package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Game history is append-only and kept forever, so no TTLs are applied.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getJSON loads one key and unmarshals it into dst, mapping a missing key to
// notFound
func (s *Storage) getJSON(ctx context.Context, key string, dst any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dst)
}

// mgetMembers loads every JSON value indexed by the given set key and calls
// decode for each present value
func (s *Storage) mgetMembers(ctx context.Context, indexKey string, entityKey func(member string) string, decode func(data []byte) error) error {
	members, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = entityKey(m)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return err
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // entry vanished between SMEMBERS and MGET
		}
		if err := decode([]byte(str)); err != nil {
			return err
		}
	}
	return nil
}

// Game operations

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var game model.Game
	if err := s.getJSON(ctx, gameKey(id), &game, model.ErrGameNotFound); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	n, err := s.client.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Player operations

func (s *Storage) ListPlayersByGame(ctx context.Context, gameID model.GameID) ([]*model.Player, error) {
	var players []*model.Player
	err := s.mgetMembers(ctx, playersForGameKey(gameID),
		func(m string) string { return playerKey(model.PlayerID(m)) },
		func(data []byte) error {
			var p model.Player
			if err := json.Unmarshal(data, &p); err != nil {
				return err
			}
			players = append(players, &p)
			return nil
		})
	if err != nil {
		return nil, err
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Order < players[j].Order })
	return players, nil
}

// Round operations

func (s *Storage) GetRound(ctx context.Context, id model.RoundID) (*model.Round, error) {
	var round model.Round
	if err := s.getJSON(ctx, roundKey(id), &round, model.ErrRoundNotFound); err != nil {
		return nil, err
	}
	return &round, nil
}

func (s *Storage) ListRoundsByGame(ctx context.Context, gameID model.GameID) ([]*model.Round, error) {
	var rounds []*model.Round
	err := s.mgetMembers(ctx, roundsForGameKey(gameID),
		func(m string) string { return roundKey(model.RoundID(m)) },
		func(data []byte) error {
			var r model.Round
			if err := json.Unmarshal(data, &r); err != nil {
				return err
			}
			rounds = append(rounds, &r)
			return nil
		})
	if err != nil {
		return nil, err
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].Number < rounds[j].Number })
	return rounds, nil
}

func (s *Storage) RoundExists(ctx context.Context, playerID model.PlayerID, number int) (bool, error) {
	n, err := s.client.Exists(ctx, roundByTurnKey(playerID, number)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Grid cell operations

func (s *Storage) GetGridCell(ctx context.Context, id model.GridCellID) (*model.GridCell, error) {
	var cell model.GridCell
	if err := s.getJSON(ctx, cellKey(id), &cell, model.ErrGridCellNotFound); err != nil {
		return nil, err
	}
	return &cell, nil
}

func (s *Storage) ListGridCellsByGame(ctx context.Context, gameID model.GameID) ([]*model.GridCell, error) {
	var cells []*model.GridCell
	err := s.mgetMembers(ctx, cellsForGameKey(gameID),
		func(m string) string { return cellKey(model.GridCellID(m)) },
		func(data []byte) error {
			var c model.GridCell
			if err := json.Unmarshal(data, &c); err != nil {
				return err
			}
			cells = append(cells, &c)
			return nil
		})
	if err != nil {
		return nil, err
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
	var instance model.JokerInstance
	if err := s.getJSON(ctx, jokerInstanceKey(id), &instance, model.ErrJokerNotFound); err != nil {
		return nil, err
	}
	return &instance, nil
}

func (s *Storage) ListJokerInstancesByGame(ctx context.Context, gameID model.GameID) ([]*model.JokerInstance, error) {
	var instances []*model.JokerInstance
	err := s.mgetMembers(ctx, jokersForGameKey(gameID),
		func(m string) string { return jokerInstanceKey(model.JokerInstanceID(m)) },
		func(data []byte) error {
			var ji model.JokerInstance
			if err := json.Unmarshal(data, &ji); err != nil {
				return err
			}
			instances = append(instances, &ji)
			return nil
		})
	if err != nil {
		return nil, err
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].ID < instances[j].ID })
	return instances, nil
}

func (s *Storage) ListJokerUsagesByGame(ctx context.Context, gameID model.GameID) ([]*model.JokerUsage, error) {
	var usages []*model.JokerUsage
	err := s.mgetMembers(ctx, usagesForGameKey(gameID),
		func(m string) string { return jokerUsageKey(model.JokerUsageID(m)) },
		func(data []byte) error {
			var u model.JokerUsage
			if err := json.Unmarshal(data, &u); err != nil {
				return err
			}
			usages = append(usages, &u)
			return nil
		})
	if err != nil {
		return nil, err
	}
	sort.Slice(usages, func(i, j int) bool { return usages[i].ID < usages[j].ID })
	return usages, nil
}

// Bonus operations

func (s *Storage) ListBonusInstancesByGame(ctx context.Context, gameID model.GameID) ([]*model.BonusInstance, error) {
	var bonuses []*model.BonusInstance
	err := s.mgetMembers(ctx, bonusesForGameKey(gameID),
		func(m string) string { return bonusInstanceKey(model.BonusInstanceID(m)) },
		func(data []byte) error {
			var b model.BonusInstance
			if err := json.Unmarshal(data, &b); err != nil {
				return err
			}
			bonuses = append(bonuses, &b)
			return nil
		})
	if err != nil {
		return nil, err
	}
	sort.Slice(bonuses, func(i, j int) bool { return bonuses[i].ID < bonuses[j].ID })
	return bonuses, nil
}

// Catalog operations

func (s *Storage) SaveTheme(ctx context.Context, theme *model.Theme) error {
	data, err := json.Marshal(theme)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, themeKey(theme.ID), data, 0).Err()
}

func (s *Storage) GetTheme(ctx context.Context, id model.ThemeID) (*model.Theme, error) {
	var theme model.Theme
	if err := s.getJSON(ctx, themeKey(id), &theme, model.ErrThemeNotFound); err != nil {
		return nil, err
	}
	return &theme, nil
}

func (s *Storage) SaveQuestion(ctx context.Context, question *model.Question) error {
	data, err := json.Marshal(question)
	if err != nil {
		return err
	}

	// Append to the theme index only on first save
	exists, err := s.client.Exists(ctx, questionKey(question.ID)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, questionKey(question.ID), data, 0)
	if exists == 0 {
		pipe.RPush(ctx, questionsForThemeKey(question.ThemeID), string(question.ID))
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	var question model.Question
	if err := s.getJSON(ctx, questionKey(id), &question, model.ErrQuestionNotFound); err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *Storage) GetQuestionsByIDs(ctx context.Context, ids []model.QuestionID) (map[model.QuestionID]*model.Question, error) {
	result := make(map[model.QuestionID]*model.Question, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = questionKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var q model.Question
		if err := json.Unmarshal([]byte(str), &q); err != nil {
			return nil, err
		}
		result[q.ID] = &q
	}
	return result, nil
}

func (s *Storage) ListQuestionsByTheme(ctx context.Context, themeID model.ThemeID, offset, limit int) ([]*model.Question, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(offset + limit - 1)
	}
	ids, err := s.client.LRange(ctx, questionsForThemeKey(themeID), int64(offset), stop).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = questionKey(model.QuestionID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	questions := make([]*model.Question, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var q model.Question
		if err := json.Unmarshal([]byte(str), &q); err != nil {
			return nil, err
		}
		questions = append(questions, &q)
	}
	return questions, nil
}

// Atomic runs fn with a batch and commits every staged write in a single
// MULTI/EXEC pipeline, so a partial game mutation is never observable
func (s *Storage) Atomic(ctx context.Context, fn func(b storage.Batch) error) error {
	batch := &redisBatch{}
	if err := fn(batch); err != nil {
		return err
	}
	if batch.marshalErr != nil {
		return batch.marshalErr
	}
	if len(batch.ops) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, op := range batch.ops {
		op(ctx, pipe)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// redisBatch stages pipeline commands until Atomic commits them
type redisBatch struct {
	ops        []func(ctx context.Context, pipe redis.Pipeliner)
	marshalErr error
}

var _ storage.Batch = (*redisBatch)(nil)

func (b *redisBatch) set(key string, entity any) {
	data, err := json.Marshal(entity)
	if err != nil {
		if b.marshalErr == nil {
			b.marshalErr = err
		}
		return
	}
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, 0)
	})
}

func (b *redisBatch) index(indexKey, member string) {
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.SAdd(ctx, indexKey, member)
	})
}

func (b *redisBatch) SaveGame(game *model.Game) {
	b.set(gameKey(game.ID), game)
}

func (b *redisBatch) SavePlayer(player *model.Player) {
	b.set(playerKey(player.ID), player)
	b.index(playersForGameKey(player.GameID), string(player.ID))
}

func (b *redisBatch) SaveRound(round *model.Round) {
	b.set(roundKey(round.ID), round)
	b.index(roundsForGameKey(round.GameID), string(round.ID))
	key := roundByTurnKey(round.PlayerID, round.Number)
	id := string(round.ID)
	b.ops = append(b.ops, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, id, 0)
	})
}

func (b *redisBatch) SaveGridCell(cell *model.GridCell) {
	b.set(cellKey(cell.ID), cell)
	b.index(cellsForGameKey(cell.GameID), string(cell.ID))
}

func (b *redisBatch) SaveJokerInstance(instance *model.JokerInstance) {
	b.set(jokerInstanceKey(instance.ID), instance)
	b.index(jokersForGameKey(instance.GameID), string(instance.ID))
}

func (b *redisBatch) SaveJokerUsage(usage *model.JokerUsage) {
	b.set(jokerUsageKey(usage.ID), usage)
	b.index(usagesForGameKey(usage.GameID), string(usage.ID))
}

func (b *redisBatch) SaveBonusInstance(bonus *model.BonusInstance) {
	b.set(bonusInstanceKey(bonus.ID), bonus)
	b.index(bonusesForGameKey(bonus.GameID), string(bonus.ID))
}
