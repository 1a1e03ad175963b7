package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resolveAPI/internal/apierr"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/schedule"
	"resolveAPI/internal/store"
	"resolveAPI/internal/types/calendar"
	"resolveAPI/internal/types/habit"
	"resolveAPI/utils"
)

type HabitService struct {
	store store.Store
	goals *GoalService
	clock Clock
	log   *logger.Logger
}

func NewHabitService(st store.Store, goals *GoalService, clock Clock, log *logger.Logger) *HabitService {
	return &HabitService{store: st, goals: goals, clock: clock, log: log.With("service", "HabitService")}
}

// ListHabits returns the user's habits with their goal summary and today's value.
func (s *HabitService) ListHabits(ctx context.Context, userID string) ([]*habit.Habit, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := attachDayValues(ctx, s.store, habits, s.clock.TodayString()); err != nil {
		return nil, err
	}
	return habits, nil
}

func (s *HabitService) GetHabit(ctx context.Context, userID, habitID string) (*habit.Habit, error) {
	h, err := loadOwnedHabit(ctx, s.store, userID, habitID)
	if err != nil {
		return nil, err
	}
	if err := attachDayValues(ctx, s.store, []*habit.Habit{h}, s.clock.TodayString()); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HabitService) CreateHabit(ctx context.Context, userID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apierr.BadRequest(fmt.Errorf("name is required"))
	}
	sched := req.ResolveSchedule()
	if err := sched.Validate(); err != nil {
		return nil, apierr.BadRequest(err)
	}
	if req.GoalID != nil {
		if _, err := loadOwnedGoal(ctx, s.store, userID, *req.GoalID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	h := &habit.Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		GoalID:      req.GoalID,
		Name:        name,
		Description: req.Description,
		Schedule:    pinAnchor(sched, s.clock.Today()),
		TargetValue: normalizeTarget(req.TargetValue),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateHabit(ctx, h); err != nil {
		return nil, err
	}

	if h.GoalID != nil {
		s.refreshGoal(ctx, *h.GoalID)
		if created, err := s.store.GetHabit(ctx, h.ID); err == nil {
			h.Goal = created.Goal
		}
	}
	return h, nil
}

// UpdateHabit edits a habit. Moving it between goals refreshes both goals.
func (s *HabitService) UpdateHabit(ctx context.Context, userID, habitID string, req *habit.UpdateHabitRequest) (*habit.Habit, error) {
	h, err := loadOwnedHabit(ctx, s.store, userID, habitID)
	if err != nil {
		return nil, err
	}
	oldGoal := h.GoalID

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apierr.BadRequest(fmt.Errorf("name must not be empty"))
		}
		h.Name = name
	}
	if req.Description != nil {
		h.Description = req.Description
	}
	if sched, ok := req.ResolveSchedule(); ok {
		if err := sched.Validate(); err != nil {
			return nil, apierr.BadRequest(err)
		}
		h.Schedule = pinAnchor(sched, utils.DayOf(h.CreatedAt, s.clock.loc))
	}
	if req.TargetValue != nil {
		h.TargetValue = normalizeTarget(*req.TargetValue)
	}
	switch {
	case req.ClearGoal:
		h.GoalID = nil
	case req.GoalID != nil:
		if _, err := loadOwnedGoal(ctx, s.store, userID, *req.GoalID); err != nil {
			return nil, err
		}
		h.GoalID = req.GoalID
	}
	h.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateHabit(ctx, h); err != nil {
		return nil, err
	}

	if !sameGoal(oldGoal, h.GoalID) {
		if oldGoal != nil {
			s.refreshGoal(ctx, *oldGoal)
		}
		if h.GoalID != nil {
			s.refreshGoal(ctx, *h.GoalID)
		}
	}

	return s.GetHabit(ctx, userID, habitID)
}

// GetCalendar lays out one month of a habit: value, due flag and whether the
// day met the target.
func (s *HabitService) GetCalendar(ctx context.Context, userID, habitID string, year, month int) (*calendar.CalendarResponse, error) {
	if month < 1 || month > 12 {
		return nil, apierr.BadRequest(fmt.Errorf("month must be between 1 and 12"))
	}
	if year < 1970 || year > 9999 {
		return nil, apierr.BadRequest(fmt.Errorf("year out of range"))
	}
	h, err := loadOwnedHabit(ctx, s.store, userID, habitID)
	if err != nil {
		return nil, err
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	rows, err := s.store.ListCompletions(ctx, []string{h.ID}, utils.FormatDate(startDate), utils.FormatDate(endDate))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	values := make(map[string]float64, len(rows))
	for _, r := range rows {
		values[r.Date] = r.Value
	}

	today := s.clock.TodayString()
	target := h.Target()
	days := make([]*calendar.CalendarDay, 0, utils.DaysInMonth(year, time.Month(month)))
	for d := startDate; !d.After(endDate); d = utils.AddDays(d, 1) {
		dateStr := utils.FormatDate(d)
		v := values[dateStr]
		days = append(days, &calendar.CalendarDay{
			Date:      d,
			Completed: v >= target,
			Value:     v,
			Due:       h.IsDue(d),
			IsToday:   dateStr == today,
		})
	}

	return &calendar.CalendarResponse{
		HabitID: h.ID,
		Year:    year,
		Month:   month,
		Days:    days,
	}, nil
}

// refreshGoal recomputes a goal after its habit set changed. Failures are logged only.
func (s *HabitService) refreshGoal(ctx context.Context, goalID string) {
	if _, err := s.goals.RecomputeProgress(ctx, goalID); err != nil {
		goalRecomputeFailures.Inc()
		s.log.Warn("goal progress recompute failed", "goal_id", goalID, "error", err)
	}
}

// attachDayValues sets CurrentValue on each habit from the completion log for date.
func attachDayValues(ctx context.Context, st store.Store, habits []*habit.Habit, date string) error {
	if len(habits) == 0 {
		return nil
	}
	rows, err := st.ListCompletions(ctx, habitIDs(habits), date, date)
	if err != nil {
		return err
	}
	byHabit := make(map[string]float64, len(rows))
	for _, r := range rows {
		byHabit[r.HabitID] = r.Value
	}
	for _, h := range habits {
		h.CurrentValue = byHabit[h.ID]
	}
	return nil
}

// pinAnchor stores the anchor of an unanchored custom schedule so later
// edits to the habit cannot move its occurrences.
func pinAnchor(s schedule.Schedule, anchor time.Time) schedule.Schedule {
	return s.WithAnchor(anchor)
}

func normalizeTarget(v float64) float64 {
	if v <= 0 {
		return habit.DefaultTargetValue
	}
	return v
}

func sameGoal(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
