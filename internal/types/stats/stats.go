package stats

// DaysStat counts completed days of one habit inside a calendar period.
type DaysStat struct {
	Period        string `json:"period"` // "week", "month", "year", "all_time"
	DaysCompleted int    `json:"days_completed"`
	TotalDays     int    `json:"total_days"`
}

type HabitStats struct {
	HabitID       string     `json:"habit_id"`
	TodayStatus   bool       `json:"today_status"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	TotalValue    float64    `json:"total_value"`
	Periods       []DaysStat `json:"periods"`
}
