package progress

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"resolveAPI/internal/completion"
	modelCompletion "resolveAPI/internal/types/completion"
)

func index(rows ...modelCompletion.HabitCompletion) *completion.Index {
	return completion.BuildIndex(rows)
}

func c(habitID, date string, value float64) modelCompletion.HabitCompletion {
	return modelCompletion.HabitCompletion{HabitID: habitID, Date: date, Value: value}
}

func TestAggregate_NumericGoal(t *testing.T) {
	ix := index(
		c("h1", "2024-01-01", 2),
		c("h1", "2024-01-02", 3),
		c("h2", "2024-01-01", 2),
	)

	got := Aggregate(10, []string{"h1", "h2"}, ix)

	assert.True(t, got.Numeric)
	assert.Equal(t, 70, got.Progress)
	assert.Equal(t, 7.0, got.TotalValue)
	assert.InDelta(t, 7.0, got.CurrentValue, 1e-9)
}

func TestAggregate_NumericCurrentValueIsRescaledPercentage(t *testing.T) {
	ix := index(c("h1", "2024-01-01", 1))

	got := Aggregate(3, []string{"h1"}, ix)

	// 1/3 rounds to 33%, so the stored value is 0.99 rather than 1.
	assert.Equal(t, 33, got.Progress)
	assert.InDelta(t, 0.99, got.CurrentValue, 1e-9)
	assert.Equal(t, 1.0, got.TotalValue)
}

func TestAggregate_NumericCapsAtHundred(t *testing.T) {
	ix := index(c("h1", "2024-01-01", 50), c("h1", "2024-01-02", 80))

	got := Aggregate(10, []string{"h1"}, ix)

	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 10.0, got.CurrentValue)
}

func TestAggregate_IgnoresCompletionsOfOtherHabits(t *testing.T) {
	ix := index(c("h1", "2024-01-01", 2), c("other", "2024-01-01", 8))

	got := Aggregate(10, []string{"h1"}, ix)

	assert.Equal(t, 20, got.Progress)
}

func TestAggregate_NonNumericGoal(t *testing.T) {
	ix := index(
		c("h1", "2024-01-01", 1),
		c("h1", "2024-01-02", 1),
		c("h2", "2024-01-05", 1),
		c("h3", "2023-12-31", 1),
	)

	got := Aggregate(0, []string{"h1", "h2", "h3", "h4"}, ix)

	assert.False(t, got.Numeric)
	assert.Equal(t, 75, got.Progress)
	assert.Equal(t, 3, got.CompletedHabits)
	assert.Equal(t, 4, got.TotalHabits)
	assert.Zero(t, got.CurrentValue)
}

func TestAggregate_NoHabits(t *testing.T) {
	assert.Equal(t, 0, Aggregate(0, nil, nil).Progress)
	assert.Equal(t, 0, Aggregate(10, nil, nil).Progress)
}

func TestAggregate_AlwaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	habits := []string{"a", "b", "c"}

	for i := 0; i < 200; i++ {
		var rows []modelCompletion.HabitCompletion
		for j := 0; j < rng.Intn(20); j++ {
			rows = append(rows, c(habits[rng.Intn(3)], "2024-01-0"+string(rune('1'+rng.Intn(9))), rng.Float64()*100))
		}
		goalValue := []float64{0, -5, 0.5, 10, 1000}[rng.Intn(5)]

		got := Aggregate(goalValue, habits, index(rows...))
		assert.GreaterOrEqual(t, got.Progress, 0)
		assert.LessOrEqual(t, got.Progress, 100)
	}
}

func TestPercentAndClamp(t *testing.T) {
	assert.Equal(t, 0, Percent(5, 0))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(3, 2))
	assert.Equal(t, 0, Clamp(-4))
	assert.Equal(t, 100, Clamp(140))
}
