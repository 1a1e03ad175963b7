package completion

import "time"

// HabitCompletion is unique per (HabitID, Date). A zero or negative value is
// represented by the row not existing.
type HabitCompletion struct {
	HabitID   string    `json:"habit_id" db:"habit_id"`
	Date      string    `json:"date" db:"date"` // YYYY-MM-DD
	Value     float64   `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ToggleRequest struct {
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type SetValueRequest struct {
	Value float64 `json:"value"`
}

type TrackRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Date   string  `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ToggleResult reports what changed. When the goal recompute failed the
// completion change is still in place and GoalProgressStale is set.
type ToggleResult struct {
	HabitID           string  `json:"habit_id"`
	Date              string  `json:"date"`
	Completed         bool    `json:"completed"`
	Value             float64 `json:"value"`
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
	GoalID            *string `json:"goal_id,omitempty"`
	GoalProgress      *int    `json:"goal_progress,omitempty"`
	GoalProgressStale bool    `json:"goal_progress_stale"`
	Warning           string  `json:"warning,omitempty"`
}
