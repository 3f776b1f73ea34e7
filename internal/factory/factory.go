package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/Jilaskel/Quiz-Back/internal/dependencies/clock"
	"github.com/Jilaskel/Quiz-Back/internal/dependencies/random"
	"github.com/Jilaskel/Quiz-Back/internal/services/board"
	"github.com/Jilaskel/Quiz-Back/internal/services/bonus"
	"github.com/Jilaskel/Quiz-Back/internal/services/game"
	"github.com/Jilaskel/Quiz-Back/internal/services/joker"
	"github.com/Jilaskel/Quiz-Back/internal/services/scoring"
	"github.com/Jilaskel/Quiz-Back/internal/storage"
	"github.com/Jilaskel/Quiz-Back/internal/storage/memory"
	redisstorage "github.com/Jilaskel/Quiz-Back/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	BoardService   *board.Service
	ScoringService *scoring.Service
	BonusService   *bonus.Service
	JokerGate      *joker.Gate
	GameController *game.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	return newWithDependencies(store, clk, rnd, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	// Create services
	boardService := board.New(store, logger)
	scoringService := scoring.New()
	bonusService := bonus.New()
	jokerGate := joker.NewGate(store, clk, logger)
	gameController := game.NewController(store, boardService, scoringService, bonusService, clk, rnd, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		BoardService:   boardService,
		ScoringService: scoringService,
		BonusService:   bonusService,
		JokerGate:      jokerGate,
		GameController: gameController,
	}
}
