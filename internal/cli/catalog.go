package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jilaskel/Quiz-Back/internal/model"
)

func newCatalogCmd() *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Question catalog and game option listings",
	}

	catalogCmd.AddCommand(newCatalogQuestionsCmd())
	catalogCmd.AddCommand(newCatalogJokersCmd())
	catalogCmd.AddCommand(newCatalogBonusesCmd())
	catalogCmd.AddCommand(newCatalogSeedDemoCmd())

	return catalogCmd
}

func newCatalogQuestionsCmd() *cobra.Command {
	var (
		offset int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "questions <theme-id>",
		Short: "List a theme's questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			themeID := model.ThemeID(args[0])
			theme, err := app.Storage.GetTheme(cmd.Context(), themeID)
			if err != nil {
				out.PrintError(err)
				return err
			}
			questions, err := app.Storage.ListQuestionsByTheme(cmd.Context(), themeID, offset, limit)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintQuestions(theme, questions)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Pagination offset")
	cmd.Flags().IntVar(&limit, "limit", 50, "Pagination limit")

	return cmd
}

func newCatalogJokersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "jokers",
		Short: "List the supported joker kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			out.PrintJokerKinds(model.AllJokerKinds)
			return nil
		},
	}
}

func newCatalogBonusesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bonuses",
		Short: "List the supported bonus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			out.PrintBonusMetrics(model.AllBonusMetrics)
			return nil
		},
	}
}

func newCatalogSeedDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-demo",
		Short: "Load a small demo catalog for trying the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			themes := []struct {
				id        model.ThemeID
				name      string
				questions int
			}{
				{"history", "History", 12},
				{"science", "Science", 12},
				{"movies", "Movies", 12},
				{"misc", "Miscellaneous", 20},
			}
			for _, t := range themes {
				err := app.Storage.SaveTheme(ctx, &model.Theme{ID: t.id, Name: t.name})
				if err != nil {
					out.PrintError(err)
					return err
				}
				for i := 0; i < t.questions; i++ {
					q := &model.Question{
						ID:      model.QuestionID(fmt.Sprintf("%s-q%d", t.id, i+1)),
						ThemeID: t.id,
						Text:    fmt.Sprintf("%s question %d", t.name, i+1),
						Points:  1 + i%3,
					}
					if err := app.Storage.SaveQuestion(ctx, q); err != nil {
						out.PrintError(err)
						return err
					}
				}
			}
			out.PrintMessage("demo catalog loaded: history, science, movies, misc")
			return nil
		},
	}
}
