package model

// ThemeID identifies a question theme
type ThemeID string

// QuestionID identifies a question in the catalog
type QuestionID string

// Theme is a question category. Theme CRUD lives in the catalog service;
// the engine only reads themes when generating boards.
type Theme struct {
	ID   ThemeID
	Name string
}

// Question is a catalog entry the engine binds to grid cells. Points is the
// cell's value for scoring.
type Question struct {
	ID      QuestionID
	ThemeID ThemeID
	Text    string
	Points  int
}
