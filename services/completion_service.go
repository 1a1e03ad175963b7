package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"resolveAPI/internal/apierr"
	"resolveAPI/internal/lock"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/store"
	modelCompletion "resolveAPI/internal/types/completion"
	"resolveAPI/internal/types/habit"
	"resolveAPI/utils"
)

const staleProgressWarning = "Completion saved, but goal progress could not be updated. It will refresh on the next change or when the goal is opened."

// CompletionService owns every write to the completion log. Each write runs
// as: ownership check, per-habit guard, upsert-or-delete, goal recompute,
// streak milestone check. Only the first three can fail the request.
type CompletionService struct {
	store    store.Store
	locker   lock.Locker
	goals    *GoalService
	streaks  *StreakService
	notifier utils.NotificationEnqueuer
	clock    Clock
	log      *logger.Logger
}

func NewCompletionService(
	st store.Store,
	locker lock.Locker,
	goals *GoalService,
	streaks *StreakService,
	notifier utils.NotificationEnqueuer,
	clock Clock,
	log *logger.Logger,
) *CompletionService {
	return &CompletionService{
		store:    st,
		locker:   locker,
		goals:    goals,
		streaks:  streaks,
		notifier: notifier,
		clock:    clock,
		log:      log.With("service", "CompletionService"),
	}
}

// Toggle flips the day between done (value = target) and not done (no row).
// A partially tracked day counts as not done and is completed by the toggle.
func (s *CompletionService) Toggle(ctx context.Context, userID, habitID string, req *modelCompletion.ToggleRequest) (*modelCompletion.ToggleResult, error) {
	return s.mutate(ctx, "toggle", userID, habitID, req.Date, func(h *habit.Habit, current float64) float64 {
		if current >= h.Target() {
			return 0
		}
		return h.Target()
	})
}

// SetValue stores an explicit value for the day. Zero or less removes the row.
func (s *CompletionService) SetValue(ctx context.Context, userID, habitID, date string, req *modelCompletion.SetValueRequest) (*modelCompletion.ToggleResult, error) {
	if date == "" {
		return nil, apierr.BadRequest(fmt.Errorf("date is required"))
	}
	if math.IsNaN(req.Value) || math.IsInf(req.Value, 0) {
		return nil, apierr.BadRequest(fmt.Errorf("value must be a finite number"))
	}
	return s.mutate(ctx, "set", userID, habitID, date, func(*habit.Habit, float64) float64 {
		return req.Value
	})
}

func (s *CompletionService) Remove(ctx context.Context, userID, habitID, date string) (*modelCompletion.ToggleResult, error) {
	if date == "" {
		return nil, apierr.BadRequest(fmt.Errorf("date is required"))
	}
	return s.mutate(ctx, "remove", userID, habitID, date, func(*habit.Habit, float64) float64 {
		return 0
	})
}

// Track adds amount to the day's value, capped at the habit's target. A value
// already above target is left as it is.
func (s *CompletionService) Track(ctx context.Context, userID, habitID string, req *modelCompletion.TrackRequest) (*modelCompletion.ToggleResult, error) {
	if req.Amount <= 0 || math.IsInf(req.Amount, 0) || math.IsNaN(req.Amount) {
		return nil, apierr.BadRequest(fmt.Errorf("amount must be positive"))
	}
	return s.mutate(ctx, "track", userID, habitID, req.Date, func(h *habit.Habit, current float64) float64 {
		return math.Max(current, math.Min(current+req.Amount, h.Target()))
	})
}

func (s *CompletionService) mutate(
	ctx context.Context,
	action, userID, habitID, date string,
	next func(h *habit.Habit, current float64) float64,
) (*modelCompletion.ToggleResult, error) {
	day, err := s.clock.resolveDate(date)
	if err != nil {
		return nil, apierr.BadRequest(err)
	}

	h, err := loadOwnedHabit(ctx, s.store, userID, habitID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.TryAcquire(ctx, lock.HabitKey(h.ID))
	if err != nil {
		if errors.Is(err, lock.ErrBusy) {
			completionMutations.WithLabelValues(action, "busy").Inc()
			return nil, apierr.Conflict("habit_busy", fmt.Errorf("another update to this habit is in progress"))
		}
		return nil, fmt.Errorf("failed to acquire habit lock: %w", err)
	}
	defer release()

	current, err := s.currentValue(ctx, h.ID, day)
	if err != nil {
		completionMutations.WithLabelValues(action, "error").Inc()
		return nil, err
	}

	value := next(h, current)
	if value > 0 {
		err = s.store.UpsertCompletion(ctx, modelCompletion.HabitCompletion{HabitID: h.ID, Date: day, Value: value})
	} else {
		value = 0
		_, err = s.store.DeleteCompletion(ctx, h.ID, day)
	}
	if err != nil {
		completionMutations.WithLabelValues(action, "error").Inc()
		return nil, fmt.Errorf("failed to save completion: %w", err)
	}
	completionMutations.WithLabelValues(action, "ok").Inc()

	result := &modelCompletion.ToggleResult{
		HabitID:   h.ID,
		Date:      day,
		Completed: value >= h.Target(),
		Value:     value,
		GoalID:    h.GoalID,
	}

	if h.GoalID != nil {
		res, err := s.goals.RecomputeProgress(ctx, *h.GoalID)
		if err != nil {
			goalRecomputeFailures.Inc()
			s.log.Warn("goal progress recompute failed after completion change",
				"habit_id", h.ID, "goal_id", *h.GoalID, "date", day, "error", err)
			result.GoalProgressStale = true
			result.Warning = staleProgressWarning
		} else {
			p := res.Progress
			result.GoalProgress = &p
		}
	}

	st, err := s.streaks.Calculate(ctx, h.ID)
	if err != nil {
		s.log.Warn("streak calculation failed", "habit_id", h.ID, "error", err)
		return result, nil
	}
	result.CurrentStreak = st.Current
	result.LongestStreak = st.Longest

	// Only a new completion of today earns a milestone; backfills do not.
	if current <= 0 && value > 0 && day == s.clock.TodayString() {
		utils.StreakMilestoneReached(s.notifier, userID, h.ID, h.Name, st.Current)
	}
	return result, nil
}

func (s *CompletionService) currentValue(ctx context.Context, habitID, date string) (float64, error) {
	c, err := s.store.GetCompletion(ctx, habitID, date)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read completion: %w", err)
	}
	return c.Value, nil
}
