package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"resolveAPI/internal/apierr"
	"resolveAPI/internal/completion"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/store"
	"resolveAPI/internal/streak"
	"resolveAPI/internal/types/habit"
	"resolveAPI/internal/types/routine"
	"resolveAPI/utils"
)

// maxWeekOffset bounds how far the routine view may page.
const maxWeekOffset = 520

type RoutineService struct {
	store store.Store
	clock Clock
	log   *logger.Logger
}

func NewRoutineService(st store.Store, clock Clock, log *logger.Logger) *RoutineService {
	return &RoutineService{store: st, clock: clock, log: log.With("service", "RoutineService")}
}

// Today lists the habits due today with their completion state and streak.
func (s *RoutineService) Today(ctx context.Context, userID string) (*routine.Today, error) {
	today := s.clock.Today()
	todayStr := utils.FormatDate(today)

	habits, values, history, err := s.load(ctx, userID, todayStr, todayStr)
	if err != nil {
		return nil, err
	}

	out := &routine.Today{Date: todayStr, Habits: make([]routine.HabitStatus, 0)}
	for _, h := range habits {
		if !h.IsDue(today) {
			continue
		}
		st := status(h, values.Value(h.ID, todayStr), streak.Current(history.Presence(h.ID), today))
		out.Habits = append(out.Habits, st)
		out.DueCount++
		if st.Completed {
			out.CompletedCount++
		}
	}
	return out, nil
}

// Week builds the Monday-first week weekOffset weeks away from the current one.
func (s *RoutineService) Week(ctx context.Context, userID string, weekOffset int) (*routine.Week, error) {
	if weekOffset > maxWeekOffset || weekOffset < -maxWeekOffset {
		return nil, apierr.BadRequest(fmt.Errorf("week_offset must be within ±%d", maxWeekOffset))
	}

	today := s.clock.Today()
	todayStr := utils.FormatDate(today)
	start := utils.AddDays(utils.StartOfWeek(today), 7*weekOffset)
	end := utils.AddDays(start, 6)

	habits, values, history, err := s.load(ctx, userID, utils.FormatDate(start), utils.FormatDate(end))
	if err != nil {
		return nil, err
	}

	streaks := make(map[string]int, len(habits))
	for _, h := range habits {
		streaks[h.ID] = streak.Current(history.Presence(h.ID), today)
	}

	week := &routine.Week{
		WeekOffset: weekOffset,
		StartDate:  utils.FormatDate(start),
		Days:       make([]routine.Day, 0, 7),
	}
	for i := 0; i < 7; i++ {
		d := utils.AddDays(start, i)
		dateStr := utils.FormatDate(d)
		day := routine.Day{
			Weekday: d.Weekday().String(),
			Date:    dateStr,
			IsToday: dateStr == todayStr,
			Habits:  make([]routine.HabitStatus, 0),
		}
		for _, h := range habits {
			if h.IsDue(d) {
				day.Habits = append(day.Habits, status(h, values.Value(h.ID, dateStr), streaks[h.ID]))
			}
		}
		week.Days = append(week.Days, day)
	}
	return week, nil
}

// load fetches the user's habits, then the in-range completions and the full
// history (for streaks) concurrently.
func (s *RoutineService) load(ctx context.Context, userID, from, to string) ([]*habit.Habit, *completion.Index, *completion.Index, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	ids := habitIDs(habits)

	var values, history *completion.Index
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.store.ListCompletions(gctx, ids, from, to)
		if err != nil {
			return fmt.Errorf("failed to load completions for %s..%s: %w", from, to, err)
		}
		values = completion.BuildIndex(rows)
		return nil
	})
	g.Go(func() error {
		rows, err := s.store.ListCompletions(gctx, ids, "", "")
		if err != nil {
			return fmt.Errorf("failed to load completion history: %w", err)
		}
		history = completion.BuildIndex(rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return habits, values, history, nil
}

func status(h *habit.Habit, value float64, currentStreak int) routine.HabitStatus {
	st := routine.HabitStatus{
		HabitID:       h.ID,
		Name:          h.Name,
		GoalID:        h.GoalID,
		TargetValue:   h.Target(),
		CurrentValue:  value,
		Completed:     value >= h.Target(),
		CurrentStreak: currentStreak,
	}
	if h.Goal != nil {
		name, icon := h.Goal.Name, h.Goal.Icon
		st.GoalName = &name
		st.GoalIcon = &icon
	}
	return st
}
