package model

// GridCellID uniquely identifies a grid cell
type GridCellID string

// GridCell is one board square, bound to exactly one question.
// (GameID, Row, Column) is unique. RoundID is empty until the cell is
// answered; once set it is never cleared or reassigned.
type GridCell struct {
	ID     GridCellID
	GameID GameID

	Row    int
	Column int

	QuestionID QuestionID

	// Resolution. RoundID == "" means unanswered.
	RoundID RoundID
	Correct bool
	Skipped bool
}

// Resolved reports whether the cell has been answered or skipped
func (c *GridCell) Resolved() bool {
	return c.RoundID != ""
}
