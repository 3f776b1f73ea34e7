package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/Jilaskel/Quiz-Back/internal/dependencies/mocks"
	"github.com/Jilaskel/Quiz-Back/internal/model"
	"github.com/Jilaskel/Quiz-Back/internal/storage/memory"
	"github.com/Jilaskel/Quiz-Back/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// SeedCatalog creates a theme with the given number of questions, each worth
// the point value at its index mod len(points). Question IDs are
// "<themeID>-q<n>" so tests can reference them directly.
func (t *TestApp) SeedCatalog(ctx context.Context, themeID model.ThemeID, name string, count int, points ...int) error {
	if len(points) == 0 {
		points = []int{1}
	}
	err := t.Storage.SaveTheme(ctx, &model.Theme{ID: themeID, Name: name})
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		q := &model.Question{
			ID:      model.QuestionID(fmt.Sprintf("%s-q%d", themeID, i+1)),
			ThemeID: themeID,
			Text:    fmt.Sprintf("%s question %d", name, i+1),
			Points:  points[i%len(points)],
		}
		if err := t.Storage.SaveQuestion(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
