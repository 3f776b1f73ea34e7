package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/services/board"
	"github.com/Jilaskel/Quiz-Back/internal/services/game"
	"github.com/Jilaskel/Quiz-Back/internal/services/joker"
)

func newGameCmd() *cobra.Command {
	gameCmd := &cobra.Command{
		Use:   "game",
		Short: "Game operations",
	}

	gameCmd.AddCommand(newGameCreateCmd())
	gameCmd.AddCommand(newGameStateCmd())
	gameCmd.AddCommand(newGameAnswerCmd())
	gameCmd.AddCommand(newGameJokerCmd())
	gameCmd.AddCommand(newGameResultsCmd())

	return gameCmd
}

func newGameCreateCmd() *cobra.Command {
	var (
		seed               int64
		rows               int
		columns            int
		withPawns          bool
		playerSpecs        []string
		questionsPerPlayer int
		generalThemes      []string
		jokerKinds         []string
		bonusMetrics       []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game with a generated board",
		Long: `Create a game. Players are given as name:theme-id[:color], e.g.

  quizback game create --rows 4 --cols 4 --seed 42 \
    --player alice:history:#ff0000 --player bob:science \
    --questions-per-player 4 --general-theme misc \
    --joker x2 --joker gamble --bonus inflicted_loss`,
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := parsePlayerSpecs(playerSpecs)
			if err != nil {
				return err
			}

			in := game.CreateGameInput{
				OwnerID:            model.UserID(cfg.UserID),
				Seed:               seed,
				Rows:               rows,
				Columns:            columns,
				WithPawns:          withPawns,
				Players:            players,
				QuestionsPerPlayer: questionsPerPlayer,
			}
			for _, t := range generalThemes {
				in.GeneralThemeIDs = append(in.GeneralThemeIDs, model.ThemeID(t))
			}
			for _, k := range jokerKinds {
				in.JokerKinds = append(in.JokerKinds, model.JokerKind(k))
			}
			for _, m := range bonusMetrics {
				in.BonusMetrics = append(in.BonusMetrics, model.BonusMetric(m))
			}

			created, err := app.GameController.CreateGame(cmd.Context(), in)
			if err != nil {
				out.PrintError(err)
				return err
			}

			out.PrintGame(created)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Board generation seed")
	cmd.Flags().IntVar(&rows, "rows", 4, "Grid rows")
	cmd.Flags().IntVar(&columns, "cols", 4, "Grid columns")
	cmd.Flags().BoolVar(&withPawns, "pawns", false, "Enable pawn positions")
	cmd.Flags().StringArrayVar(&playerSpecs, "player", nil, "Player as name:theme-id[:color] (repeatable)")
	cmd.Flags().IntVar(&questionsPerPlayer, "questions-per-player", 0, "Cells drawn from each player's theme")
	cmd.Flags().StringArrayVar(&generalThemes, "general-theme", nil, "General theme ID for leftover cells (repeatable)")
	cmd.Flags().StringArrayVar(&jokerKinds, "joker", nil, "Joker kind to include (repeatable)")
	cmd.Flags().StringArrayVar(&bonusMetrics, "bonus", nil, "Bonus metric to include (repeatable)")
	_ = cmd.MarkFlagRequired("player")

	return cmd
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <game-id>",
		Short: "Show the full game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := app.GameController.GetState(cmd.Context(), model.GameID(args[0]), model.UserID(cfg.UserID), cfg.Admin)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintState(state)
			return nil
		},
	}
}

func newGameAnswerCmd() *cobra.Command {
	var (
		roundID   string
		cellID    string
		correct   bool
		skip      bool
		noAdvance bool
	)

	cmd := &cobra.Command{
		Use:   "answer <game-id>",
		Short: "Resolve the round's cell with an answer or a skip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.GameController.AnswerQuestion(
				cmd.Context(),
				model.GameID(args[0]),
				model.RoundID(roundID),
				model.GridCellID(cellID),
				correct,
				skip,
				!noAdvance,
				model.UserID(cfg.UserID),
				cfg.Admin,
			)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintAnswerResult(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&roundID, "round", "", "Round being played")
	cmd.Flags().StringVar(&cellID, "cell", "", "Grid cell to resolve")
	cmd.Flags().BoolVar(&correct, "correct", false, "The answer was correct")
	cmd.Flags().BoolVar(&skip, "skip", false, "Skip the question instead of answering")
	cmd.Flags().BoolVar(&noAdvance, "no-advance", false, "Do not create the next round")
	_ = cmd.MarkFlagRequired("round")
	_ = cmd.MarkFlagRequired("cell")

	return cmd
}

func newGameJokerCmd() *cobra.Command {
	var (
		instanceID   string
		roundID      string
		targetPlayer string
		targetCell   string
	)

	cmd := &cobra.Command{
		Use:   "joker <game-id>",
		Short: "Activate a joker instance on a round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := joker.UseRequest{
				GameID:          model.GameID(args[0]),
				JokerInstanceID: model.JokerInstanceID(instanceID),
				RoundID:         model.RoundID(roundID),
				CallerID:        model.UserID(cfg.UserID),
				IsAdmin:         cfg.Admin,
			}
			if targetPlayer != "" {
				req.TargetPlayerID = model.PlayerID(targetPlayer)
			}
			if targetCell != "" {
				req.TargetCellID = model.GridCellID(targetCell)
			}

			usage, err := app.JokerGate.Use(cmd.Context(), req)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintJokerUsage(usage)
			return nil
		},
	}

	cmd.Flags().StringVar(&instanceID, "instance", "", "Joker instance to use")
	cmd.Flags().StringVar(&roundID, "round", "", "Round the joker applies to")
	cmd.Flags().StringVar(&targetPlayer, "target-player", "", "Target player (call_a_friend)")
	cmd.Flags().StringVar(&targetCell, "target-cell", "", "Target cell (gamble)")
	_ = cmd.MarkFlagRequired("instance")
	_ = cmd.MarkFlagRequired("round")

	return cmd
}

func newGameResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <game-id>",
		Short: "Show final scores, bonuses and the turn history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := app.GameController.GetResults(cmd.Context(), model.GameID(args[0]), model.UserID(cfg.UserID), cfg.Admin)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintResults(results)
			return nil
		},
	}
}

// parsePlayerSpecs parses name:theme-id[:color] entries. Colors may contain
// ':' only if given last, which hex colors never do.
func parsePlayerSpecs(specs []string) ([]board.PlayerSpec, error) {
	players := make([]board.PlayerSpec, 0, len(specs))
	for _, s := range specs {
		parts := strings.SplitN(s, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid player spec %q: want name:theme-id[:color]", s)
		}
		p := board.PlayerSpec{
			Name:    parts[0],
			ThemeID: model.ThemeID(parts[1]),
		}
		if len(parts) == 3 {
			p.ColorHex = parts[2]
		}
		players = append(players, p)
	}
	return players, nil
}
