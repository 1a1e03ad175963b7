package progress

import (
	"math"

	"resolveAPI/internal/completion"
)

// Result is the derived state written back onto a goal.
type Result struct {
	Progress        int     `json:"progress"`
	CurrentValue    float64 `json:"current_value"`
	TotalValue      float64 `json:"total_value"`
	CompletedHabits int     `json:"completed_habits"`
	TotalHabits     int     `json:"total_habits"`
	Numeric         bool    `json:"numeric"`
}

// Aggregate computes goal progress from every completion of the goal's habits.
//
// Numeric goals (goalValue > 0) sum completion values; CurrentValue is the
// percentage rescaled onto goalValue, so it is rounded to whole percents.
// Other goals count habits with at least one completion.
func Aggregate(goalValue float64, habitIDs []string, ix *completion.Index) Result {
	res := Result{TotalHabits: len(habitIDs)}
	if ix == nil {
		ix = completion.BuildIndex(nil)
	}

	for _, id := range habitIDs {
		res.TotalValue += ix.Total(id)
		if ix.Count(id) > 0 {
			res.CompletedHabits++
		}
	}

	if goalValue > 0 && !math.IsInf(goalValue, 0) && !math.IsNaN(goalValue) {
		res.Numeric = true
		res.Progress = Percent(res.TotalValue, goalValue)
		res.CurrentValue = float64(res.Progress) / 100 * goalValue
		return res
	}

	res.Progress = Percent(float64(res.CompletedHabits), float64(res.TotalHabits))
	return res
}

// Percent returns round(min(100, part/whole*100)) clamped to [0, 100].
// A non-positive whole yields 0.
func Percent(part, whole float64) int {
	if whole <= 0 || math.IsNaN(part) || math.IsNaN(whole) {
		return 0
	}
	p := math.Round(math.Min(100, part/whole*100))
	return Clamp(int(p))
}

// Clamp bounds a progress value to [0, 100].
func Clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
