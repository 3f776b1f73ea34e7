package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/services/game"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

// PrintGame outputs a created game
func (o *Output) PrintGame(g *model.Game) {
	if o.format == "json" {
		o.printJSON(g)
		return
	}
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Owner: %s\n", g.OwnerID)
	fmt.Printf("Grid: %dx%d\n", g.Rows, g.Columns)
	fmt.Printf("Seed: %d\n", g.Seed)
	if g.WithPawns {
		fmt.Println("Pawns: enabled")
	}
}

// PrintState outputs the full game state
func (o *Output) PrintState(s *game.State) {
	if o.format == "json" {
		o.printJSON(s)
		return
	}

	fmt.Printf("Game: %s\n", s.Game.ID)
	if s.Game.Finished {
		fmt.Println("Status: finished")
	} else {
		fmt.Println("Status: in progress")
	}

	fmt.Printf("Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		fmt.Printf("  %d. %s (%s) theme=%s score=%d", p.Order, p.Name, p.ID, p.ThemeID, s.Scores[p.ID])
		if delta, ok := s.LastRoundDelta[p.ID]; ok && delta != 0 {
			fmt.Printf(" last=%+d", delta)
		}
		if p.Position != nil {
			fmt.Printf(" pos=%d", *p.Position)
		}
		fmt.Println()
	}

	if s.CurrentTurn != nil {
		fmt.Printf("Current turn: round %d", s.CurrentTurn.RoundNumber)
		if s.CurrentTurn.Player != nil {
			fmt.Printf(" (%s)", s.CurrentTurn.Player.Name)
		}
		fmt.Printf(" [%s]\n", s.CurrentTurn.RoundID)
	}

	fmt.Println("\nBoard:")
	o.printBoard(s.Game, s.Board)

	fmt.Println("\nCells:")
	for _, c := range s.Board {
		status := "open"
		switch {
		case c.Skipped:
			status = "skipped"
		case c.RoundID != "" && c.Correct:
			status = "correct"
		case c.RoundID != "":
			status = "incorrect"
		}
		fmt.Printf("  (%d,%d) %s %dpt [%s] %s\n", c.Row, c.Column, c.Question.ThemeName, c.Question.Points, c.ID, status)
	}

	if len(s.AvailableJokers) > 0 {
		fmt.Println("\nJokers:")
		playerNames := make(map[model.PlayerID]string, len(s.Players))
		for _, p := range s.Players {
			playerNames[p.ID] = p.Name
		}
		playerIDs := make([]model.PlayerID, 0, len(s.AvailableJokers))
		for id := range s.AvailableJokers {
			playerIDs = append(playerIDs, id)
		}
		sort.Slice(playerIDs, func(i, j int) bool { return playerIDs[i] < playerIDs[j] })
		for _, id := range playerIDs {
			fmt.Printf("  %s:\n", playerNames[id])
			for _, ja := range s.AvailableJokers[id] {
				mark := "available"
				if !ja.Available {
					mark = "used"
				}
				fmt.Printf("    %s [%s] %s\n", ja.Instance.Kind, ja.Instance.ID, mark)
			}
		}
	}

	if len(s.Bonuses) > 0 {
		fmt.Println("\nBonuses:")
		for _, b := range s.Bonuses {
			fmt.Printf("  %s [%s]\n", b.Metric, b.ID)
		}
	}
}

func (o *Output) printBoard(g *model.Game, cells []game.CellView) {
	marks := make(map[[2]int]string, len(cells))
	for _, c := range cells {
		mark := " . "
		switch {
		case c.Skipped:
			mark = " - "
		case c.RoundID != "" && c.Correct:
			mark = " + "
		case c.RoundID != "":
			mark = " x "
		}
		marks[[2]int{c.Row, c.Column}] = mark
	}

	fmt.Print("    ")
	for col := 0; col < g.Columns; col++ {
		fmt.Printf(" %d ", col)
	}
	fmt.Println()

	fmt.Print("   +")
	for col := 0; col < g.Columns; col++ {
		fmt.Print("---")
	}
	fmt.Println("+")

	for row := 0; row < g.Rows; row++ {
		fmt.Printf(" %d |", row)
		for col := 0; col < g.Columns; col++ {
			mark, ok := marks[[2]int{row, col}]
			if !ok {
				mark = "   "
			}
			fmt.Print(mark)
		}
		fmt.Println("|")
	}

	fmt.Print("   +")
	for col := 0; col < g.Columns; col++ {
		fmt.Print("---")
	}
	fmt.Println("+")
}

// PrintAnswerResult outputs a cell resolution
func (o *Output) PrintAnswerResult(r *game.AnswerResult) {
	if o.format == "json" {
		o.printJSON(r)
		return
	}
	cell := r.ResolvedCell
	switch {
	case cell.Skipped:
		fmt.Printf("Skipped cell (%d,%d)\n", cell.Row, cell.Column)
	case cell.Correct:
		fmt.Printf("Correct answer on cell (%d,%d)\n", cell.Row, cell.Column)
	default:
		fmt.Printf("Incorrect answer on cell (%d,%d)\n", cell.Row, cell.Column)
	}
	if r.NextRound != nil {
		fmt.Printf("Next round: %d [%s]\n", r.NextRound.Number, r.NextRound.ID)
	}
}

// PrintJokerUsage outputs a joker activation
func (o *Output) PrintJokerUsage(u *model.JokerUsage) {
	if o.format == "json" {
		o.printJSON(u)
		return
	}
	fmt.Printf("Joker used: %s on round %s [usage %s]\n", u.JokerInstanceID, u.RoundID, u.ID)
	if u.TargetPlayerID != "" {
		fmt.Printf("Target player: %s\n", u.TargetPlayerID)
	}
	if u.TargetCellID != "" {
		fmt.Printf("Target cell: %s\n", u.TargetCellID)
	}
}

// PrintResults outputs end-of-game results
func (o *Output) PrintResults(r *game.Results) {
	if o.format == "json" {
		o.printJSON(r)
		return
	}

	fmt.Printf("Game: %s\n", r.Game.ID)

	fmt.Println("\nFinal scores:")
	playerIDs := make([]model.PlayerID, 0, len(r.ScoresWithBonus))
	for id := range r.ScoresWithBonus {
		playerIDs = append(playerIDs, id)
	}
	sort.Slice(playerIDs, func(i, j int) bool {
		if r.ScoresWithBonus[playerIDs[i]] != r.ScoresWithBonus[playerIDs[j]] {
			return r.ScoresWithBonus[playerIDs[i]] > r.ScoresWithBonus[playerIDs[j]]
		}
		return playerIDs[i] < playerIDs[j]
	})
	for _, id := range playerIDs {
		fmt.Printf("  %s: %d (game %d, bonus %d)\n", id, r.ScoresWithBonus[id], r.FinalScores[id], r.BonusTotals[id])
	}

	if len(r.BonusBreakdown) > 0 {
		fmt.Println("\nBonuses:")
		for _, b := range r.BonusBreakdown {
			fmt.Printf("  %s:\n", b.Metric)
			for _, a := range b.Awards {
				fmt.Printf("    #%d %s: value %d, %d pts\n", a.Rank, a.PlayerID, a.Value, a.Points)
			}
		}
	}

	if len(r.TurnHistory) > 0 {
		fmt.Println("\nTurn history:")
		for _, t := range r.TurnHistory {
			outcome := fmt.Sprintf("%+d", t.Delta[t.PlayerID])
			if t.Skipped {
				outcome = "skip"
			}
			fmt.Printf("  round %d: %s %s (total %d)\n", t.RoundNumber, t.PlayerID, outcome, t.Cumulative[t.PlayerID])
		}
	}
}

// PrintQuestions outputs a theme's question list
func (o *Output) PrintQuestions(theme *model.Theme, questions []*model.Question) {
	if o.format == "json" {
		o.printJSON(map[string]any{"theme": theme, "questions": questions})
		return
	}
	fmt.Printf("Theme: %s (%s)\n", theme.Name, theme.ID)
	for _, q := range questions {
		fmt.Printf("  [%s] %dpt %s\n", q.ID, q.Points, q.Text)
	}
}

// PrintJokerKinds outputs the supported joker kinds
func (o *Output) PrintJokerKinds(kinds []model.JokerKind) {
	if o.format == "json" {
		o.printJSON(kinds)
		return
	}
	for _, k := range kinds {
		fmt.Printf("%s: %s\n", k, k.Description())
	}
}

// PrintBonusMetrics outputs the supported bonus metrics
func (o *Output) PrintBonusMetrics(metrics []model.BonusMetric) {
	if o.format == "json" {
		o.printJSON(metrics)
		return
	}
	for _, m := range metrics {
		fmt.Printf("%s: %s\n", m, m.Description())
	}
}
