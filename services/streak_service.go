package services

import (
	"context"
	"sort"
	"time"

	"resolveAPI/internal/completion"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/store"
	"resolveAPI/internal/streak"
	"resolveAPI/internal/types/habit"
	"resolveAPI/internal/types/stats"
	modelStreak "resolveAPI/internal/types/streak"
	"resolveAPI/utils"
)

type StreakService struct {
	store store.Store
	clock Clock
	log   *logger.Logger
}

func NewStreakService(st store.Store, clock Clock, log *logger.Logger) *StreakService {
	return &StreakService{store: st, clock: clock, log: log.With("service", "StreakService")}
}

func (s *StreakService) GetHabitStreak(ctx context.Context, userID, habitID string) (*modelStreak.HabitStreak, error) {
	h, err := loadOwnedHabit(ctx, s.store, userID, habitID)
	if err != nil {
		return nil, err
	}
	ix, err := s.index(ctx, []*habit.Habit{h})
	if err != nil {
		return nil, err
	}
	return s.summarize(h, ix), nil
}

// GetAllStreaks returns one entry per habit of the user, longest current streak first.
func (s *StreakService) GetAllStreaks(ctx context.Context, userID string) ([]*modelStreak.HabitStreak, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	ix, err := s.index(ctx, habits)
	if err != nil {
		return nil, err
	}

	out := make([]*modelStreak.HabitStreak, 0, len(habits))
	for _, h := range habits {
		out = append(out, s.summarize(h, ix))
	}
	sortStreaks(out)
	return out, nil
}

// Calculate computes the streak of one habit without an ownership check.
func (s *StreakService) Calculate(ctx context.Context, habitID string) (streak.Result, error) {
	rows, err := s.store.ListCompletions(ctx, []string{habitID}, "", "")
	if err != nil {
		return streak.Result{}, err
	}
	return streak.Calculate(completion.BuildIndex(rows).Presence(habitID), s.clock.Today()), nil
}

// GetHabitStats counts fully completed days of a habit this week (Monday
// first), month, year and since the earlier of creation and first completion.
// Days after today are ignored.
func (s *StreakService) GetHabitStats(ctx context.Context, userID, habitID string) (*stats.HabitStats, error) {
	h, err := loadOwnedHabit(ctx, s.store, userID, habitID)
	if err != nil {
		return nil, err
	}
	ix, err := s.index(ctx, []*habit.Habit{h})
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	todayStr := utils.FormatDate(today)
	weekStart := utils.FormatDate(utils.StartOfWeek(today))
	monthStart := utils.FormatDate(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC))
	yearStart := utils.FormatDate(time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC))

	daysInYear := utils.DaysBetween(
		time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(today.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	week := stats.DaysStat{Period: "week", TotalDays: 7}
	month := stats.DaysStat{Period: "month", TotalDays: utils.DaysInMonth(today.Year(), today.Month())}
	year := stats.DaysStat{Period: "year", TotalDays: daysInYear}
	allTime := stats.DaysStat{Period: "all_time"}

	first := utils.FormatDate(utils.DayOf(h.CreatedAt, s.clock.loc))
	target := h.Target()
	for date, v := range ix.Values(h.ID) {
		if date > todayStr {
			continue
		}
		if date < first {
			first = date
		}
		if v < target {
			continue
		}
		allTime.DaysCompleted++
		if date >= yearStart {
			year.DaysCompleted++
		}
		if date >= monthStart {
			month.DaysCompleted++
		}
		if date >= weekStart {
			week.DaysCompleted++
		}
	}
	if firstDay, err := utils.ParseDate(first); err == nil {
		allTime.TotalDays = max(1, utils.DaysBetween(firstDay, today)+1)
	}

	res := streak.Calculate(ix.Presence(h.ID), today)
	return &stats.HabitStats{
		HabitID:       h.ID,
		TodayStatus:   ix.Value(h.ID, todayStr) >= target,
		CurrentStreak: res.Current,
		LongestStreak: res.Longest,
		TotalValue:    ix.Total(h.ID),
		Periods:       []stats.DaysStat{week, month, year, allTime},
	}, nil
}

func (s *StreakService) index(ctx context.Context, habits []*habit.Habit) (*completion.Index, error) {
	rows, err := s.store.ListCompletions(ctx, habitIDs(habits), "", "")
	if err != nil {
		return nil, err
	}
	return completion.BuildIndex(rows), nil
}

func (s *StreakService) summarize(h *habit.Habit, ix *completion.Index) *modelStreak.HabitStreak {
	res := streak.Calculate(ix.Presence(h.ID), s.clock.Today())
	out := &modelStreak.HabitStreak{
		HabitID:          h.ID,
		HabitName:        h.Name,
		CurrentStreak:    res.Current,
		LongestStreak:    res.Longest,
		TotalCompletions: ix.Count(h.ID),
	}
	if h.Goal != nil {
		name, icon := h.Goal.Name, h.Goal.Icon
		out.GoalName = &name
		out.GoalIcon = &icon
	}
	if last := ix.LastDate(h.ID); last != "" {
		out.LastCompletedDate = &last
	}
	return out
}

func sortStreaks(list []*modelStreak.HabitStreak) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CurrentStreak > list[j].CurrentStreak
	})
}
