package redis

import (
	"fmt"

	"github.com/Jilaskel/Quiz-Back/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "quizback"

// Key generation functions for each entity type

func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

func playersForGameKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:players_for_game:%s", keyPrefix, gameID)
}

func roundKey(id model.RoundID) string {
	return fmt.Sprintf("%s:round:%s", keyPrefix, id)
}

func roundsForGameKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:rounds_for_game:%s", keyPrefix, gameID)
}

// roundByTurnKey indexes (player, round_number) -> round id, backing the
// uniqueness check for turn advancement
func roundByTurnKey(playerID model.PlayerID, number int) string {
	return fmt.Sprintf("%s:idx:round_by_turn:%s:%d", keyPrefix, playerID, number)
}

func cellKey(id model.GridCellID) string {
	return fmt.Sprintf("%s:cell:%s", keyPrefix, id)
}

func cellsForGameKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:cells_for_game:%s", keyPrefix, gameID)
}

func jokerInstanceKey(id model.JokerInstanceID) string {
	return fmt.Sprintf("%s:joker:%s", keyPrefix, id)
}

func jokersForGameKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:jokers_for_game:%s", keyPrefix, gameID)
}

func jokerUsageKey(id model.JokerUsageID) string {
	return fmt.Sprintf("%s:joker_usage:%s", keyPrefix, id)
}

func usagesForGameKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:usages_for_game:%s", keyPrefix, gameID)
}

func bonusInstanceKey(id model.BonusInstanceID) string {
	return fmt.Sprintf("%s:bonus:%s", keyPrefix, id)
}

func bonusesForGameKey(gameID model.GameID) string {
	return fmt.Sprintf("%s:idx:bonuses_for_game:%s", keyPrefix, gameID)
}

func themeKey(id model.ThemeID) string {
	return fmt.Sprintf("%s:theme:%s", keyPrefix, id)
}

func questionKey(id model.QuestionID) string {
	return fmt.Sprintf("%s:question:%s", keyPrefix, id)
}

// questionsForThemeKey is a LIST preserving insertion order so catalog
// pagination is stable
func questionsForThemeKey(themeID model.ThemeID) string {
	return fmt.Sprintf("%s:idx:questions_for_theme:%s", keyPrefix, themeID)
}
