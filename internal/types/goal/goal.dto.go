package goal

type CreateGoalRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Category    string  `json:"category" validate:"max=100"`
	Icon        string  `json:"icon" validate:"max=32"`
	Deadline    *string `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GoalValue   float64 `json:"goal_value" validate:"gte=0"`
	GoalUnit    string  `json:"goal_unit" validate:"max=50"`
}

// UpdateGoalRequest is the full edit form. Progress may only be set here.
type UpdateGoalRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Icon        *string  `json:"icon,omitempty" validate:"omitempty,max=32"`
	Deadline    *string  `json:"deadline,omitempty" validate:"omitempty,datetime=2006-01-02"`
	GoalValue   *float64 `json:"goal_value,omitempty" validate:"omitempty,gte=0"`
	GoalUnit    *string  `json:"goal_unit,omitempty" validate:"omitempty,max=50"`
	Progress    *int     `json:"progress,omitempty"`
}

type ProgressResponse struct {
	GoalID       string  `json:"goal_id"`
	Progress     int     `json:"progress"`
	CurrentValue float64 `json:"current_value"`
	TotalValue   float64 `json:"total_value"`
	Numeric      bool    `json:"numeric"`
}
