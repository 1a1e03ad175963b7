package habit

import "resolveAPI/internal/schedule"

// CreateHabitRequest accepts either a structured schedule or the older
// frequency/days/frequency_details form fields.
type CreateHabitRequest struct {
	Name             string             `json:"name" validate:"required,max=200"`
	Description      *string            `json:"description,omitempty" validate:"omitempty,max=2000"`
	GoalID           *string            `json:"goal_id,omitempty" validate:"omitempty,uuid"`
	Schedule         *schedule.Schedule `json:"schedule,omitempty"`
	Frequency        string             `json:"frequency,omitempty"`
	Days             []int              `json:"days,omitempty"`
	FrequencyDetails string             `json:"frequency_details,omitempty"`
	TargetValue      float64            `json:"target_value" validate:"gte=0"`
}

type UpdateHabitRequest struct {
	Name             *string            `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description      *string            `json:"description,omitempty" validate:"omitempty,max=2000"`
	GoalID           *string            `json:"goal_id,omitempty" validate:"omitempty,uuid"`
	ClearGoal        bool               `json:"clear_goal,omitempty"`
	Schedule         *schedule.Schedule `json:"schedule,omitempty"`
	Frequency        string             `json:"frequency,omitempty"`
	Days             []int              `json:"days,omitempty"`
	FrequencyDetails string             `json:"frequency_details,omitempty"`
	TargetValue      *float64           `json:"target_value,omitempty" validate:"omitempty,gte=0"`
}

// resolveSchedule picks the structured schedule when present and otherwise
// normalizes the legacy fields. ok is false when neither was supplied.
func resolveSchedule(s *schedule.Schedule, frequency string, days []int, details string) (schedule.Schedule, bool) {
	if s != nil {
		return *s, true
	}
	if frequency == "" && len(days) == 0 && details == "" {
		return schedule.Schedule{}, false
	}
	return schedule.FromLegacy(frequency, days, details), true
}

func (r CreateHabitRequest) ResolveSchedule() schedule.Schedule {
	s, ok := resolveSchedule(r.Schedule, r.Frequency, r.Days, r.FrequencyDetails)
	if !ok {
		return schedule.Daily()
	}
	return s
}

func (r UpdateHabitRequest) ResolveSchedule() (schedule.Schedule, bool) {
	return resolveSchedule(r.Schedule, r.Frequency, r.Days, r.FrequencyDetails)
}
