package habit

import (
	"time"

	"resolveAPI/internal/schedule"
)

// DefaultTargetValue is the amount that counts as done when a habit has no
// usable target.
const DefaultTargetValue = 1.0

type GoalSummary struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type Habit struct {
	ID          string            `json:"id" db:"id"`
	UserID      string            `json:"user_id" db:"user_id"`
	GoalID      *string           `json:"goal_id" db:"goal_id"`
	Name        string            `json:"name" db:"name"`
	Description *string           `json:"description,omitempty" db:"description"`
	Schedule    schedule.Schedule `json:"schedule" db:"schedule"`
	TargetValue float64           `json:"target_value" db:"target_value"`
	// CurrentValue is derived from the completion log for the reference day.
	CurrentValue float64      `json:"current_value"`
	Goal         *GoalSummary `json:"goal,omitempty"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Target returns the per-occurrence target, never zero.
func (h Habit) Target() float64 {
	if h.TargetValue <= 0 {
		return DefaultTargetValue
	}
	return h.TargetValue
}

// IsDue reports whether the habit is scheduled on day. Custom schedules
// without an explicit anchor count from the creation day.
func (h Habit) IsDue(day time.Time) bool {
	return h.Schedule.WithAnchor(h.CreatedAt).IsDue(day)
}
