package services

import (
	"context"
	"errors"
	"fmt"

	"resolveAPI/internal/apierr"
	"resolveAPI/internal/store"
	"resolveAPI/internal/types/goal"
	"resolveAPI/internal/types/habit"
)

// loadOwnedHabit returns the habit if userID owns it: 404 when missing,
// 403 when it belongs to someone else.
func loadOwnedHabit(ctx context.Context, st store.Store, userID, habitID string) (*habit.Habit, error) {
	h, err := st.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierr.NotFound("habit")
		}
		return nil, fmt.Errorf("failed to load habit: %w", err)
	}
	if h.UserID != userID {
		return nil, apierr.Forbidden("habit")
	}
	return h, nil
}

func loadOwnedGoal(ctx context.Context, st store.Store, userID, goalID string) (*goal.Goal, error) {
	g, err := st.GetGoal(ctx, goalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierr.NotFound("goal")
		}
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}
	if g.UserID != userID {
		return nil, apierr.Forbidden("goal")
	}
	return g, nil
}

func habitIDs(habits []*habit.Habit) []string {
	ids := make([]string, len(habits))
	for i, h := range habits {
		ids[i] = h.ID
	}
	return ids
}
