package routine

type HabitStatus struct {
	HabitID       string  `json:"habit_id"`
	Name          string  `json:"name"`
	GoalID        *string `json:"goal_id,omitempty"`
	GoalName      *string `json:"goal_name,omitempty"`
	GoalIcon      *string `json:"goal_icon,omitempty"`
	TargetValue   float64 `json:"target_value"`
	CurrentValue  float64 `json:"current_value"`
	Completed     bool    `json:"completed"`
	CurrentStreak int     `json:"current_streak"`
}

type Day struct {
	Weekday string        `json:"weekday"`
	Date    string        `json:"date"`
	IsToday bool          `json:"is_today"`
	Habits  []HabitStatus `json:"habits"`
}

type Week struct {
	WeekOffset int    `json:"week_offset"`
	StartDate  string `json:"start_date"`
	Days       []Day  `json:"days"`
}

type Today struct {
	Date           string        `json:"date"`
	Habits         []HabitStatus `json:"habits"`
	CompletedCount int           `json:"completed_count"`
	DueCount       int           `json:"due_count"`
}
