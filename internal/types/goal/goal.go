package goal

import (
	"time"

	"resolveAPI/internal/types/habit"
)

type Goal struct {
	ID           string        `json:"id" db:"id"`
	UserID       string        `json:"user_id" db:"user_id"`
	Name         string        `json:"name" db:"name"`
	Description  string        `json:"description" db:"description"`
	Category     string        `json:"category" db:"category"`
	Icon         string        `json:"icon" db:"icon"`
	Deadline     *string       `json:"deadline" db:"deadline"` // YYYY-MM-DD
	GoalValue    float64       `json:"goal_value" db:"goal_value"`
	GoalUnit     string        `json:"goal_unit" db:"goal_unit"`
	Progress     int           `json:"progress" db:"progress"`
	CurrentValue float64       `json:"current_value" db:"current_value"`
	Habits       []habit.Habit `json:"habits,omitempty"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// IsNumeric reports whether progress is measured against GoalValue.
func (g Goal) IsNumeric() bool {
	return g.GoalValue > 0
}

type Filter string

const (
	FilterAll        Filter = "all"
	FilterNotStarted Filter = "notStarted"
	FilterInProgress Filter = "inProgress"
	FilterCompleted  Filter = "completed"
)

// Matches applies the goal list filter to a progress value.
func (f Filter) Matches(progress int) bool {
	switch f {
	case FilterNotStarted:
		return progress == 0
	case FilterInProgress:
		return progress > 0 && progress < 100
	case FilterCompleted:
		return progress == 100
	default:
		return true
	}
}
