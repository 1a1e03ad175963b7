package store

import (
	"context"
	"errors"

	modelCompletion "resolveAPI/internal/types/completion"
	"resolveAPI/internal/types/goal"
	"resolveAPI/internal/types/habit"
	"resolveAPI/internal/types/notification"
	"resolveAPI/internal/types/profile"
)

var ErrNotFound = errors.New("not found")

// Store is the persistence boundary. Completions are keyed by
// (habit_id, date) and rows with a non-positive value are never kept.
type Store interface {
	GetProfile(ctx context.Context, id string) (*profile.Profile, error)
	UpsertProfile(ctx context.Context, p *profile.Profile) error
	UpdateProfileName(ctx context.Context, id, name string) (*profile.Profile, error)

	ListGoals(ctx context.Context, userID string) ([]*goal.Goal, error)
	GetGoal(ctx context.Context, id string) (*goal.Goal, error)
	CreateGoal(ctx context.Context, g *goal.Goal) error
	UpdateGoal(ctx context.Context, g *goal.Goal) error
	UpdateGoalProgress(ctx context.Context, goalID string, progress int, currentValue float64) error

	// ListHabits returns the user's habits with the joined goal summary.
	ListHabits(ctx context.Context, userID string) ([]*habit.Habit, error)
	ListHabitsByGoal(ctx context.Context, goalID string) ([]*habit.Habit, error)
	GetHabit(ctx context.Context, id string) (*habit.Habit, error)
	CreateHabit(ctx context.Context, h *habit.Habit) error
	UpdateHabit(ctx context.Context, h *habit.Habit) error

	// ListCompletions returns completions of the given habits. Empty from/to
	// leave that side of the date range open.
	ListCompletions(ctx context.Context, habitIDs []string, from, to string) ([]modelCompletion.HabitCompletion, error)
	GetCompletion(ctx context.Context, habitID, date string) (*modelCompletion.HabitCompletion, error)
	UpsertCompletion(ctx context.Context, c modelCompletion.HabitCompletion) error
	DeleteCompletion(ctx context.Context, habitID, date string) (bool, error)

	RegisterDevice(ctx context.Context, d notification.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID string) ([]notification.DeviceToken, error)
	DeleteDeviceToken(ctx context.Context, token string) error

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
