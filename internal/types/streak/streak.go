package streak

type HabitStreak struct {
	HabitID           string  `json:"habit_id"`
	HabitName         string  `json:"habit_name"`
	GoalName          *string `json:"goal_name,omitempty"`
	GoalIcon          *string `json:"goal_icon,omitempty"`
	CurrentStreak     int     `json:"current_streak"`
	LongestStreak     int     `json:"longest_streak"`
	TotalCompletions  int     `json:"total_completions"`
	LastCompletedDate *string `json:"last_completed_date"`
}
