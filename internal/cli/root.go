package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jilaskel/Quiz-Back/internal/factory"
	redisstorage "github.com/Jilaskel/Quiz-Back/internal/storage/redis"
)

var (
	cfg *Config
	app *factory.App
	out *Output
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "quizback",
		Short: "CLI tool for the quiz game engine",
		Long: `quizback manages grid quiz games directly against the storage backend.

It supports game creation, answering and skipping questions, joker activation,
state inspection, and end-of-game results with bonuses.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel := slog.LevelWarn
			if cfg.Verbose {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			}))

			redisCfg := redisstorage.DefaultConfig()
			redisCfg.URL = cfg.RedisURL

			var err error
			app, err = factory.New(factory.Config{
				Logger:      logger,
				StorageType: cfg.StorageType,
				RedisConfig: &redisCfg,
			})
			if err != nil {
				return err
			}

			out = NewOutput(cfg.Output)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.StorageType, "storage", cfg.StorageType, "Storage backend: memory, redis (env: QUIZBACK_STORAGE)")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL (env: QUIZBACK_REDIS_URL)")
	rootCmd.PersistentFlags().StringVarP(&cfg.UserID, "user", "u", cfg.UserID, "Acting user ID (env: QUIZBACK_USER)")
	rootCmd.PersistentFlags().BoolVar(&cfg.Admin, "admin", cfg.Admin, "Act with admin access")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newCatalogCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
