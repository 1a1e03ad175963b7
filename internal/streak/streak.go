package streak

import (
	"sort"
	"time"

	"resolveAPI/utils"
)

// Result holds streak lengths in days.
type Result struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// Calculate derives the current and longest streak from a habit's
// date -> present map. today is the reference calendar day.
//
// The current streak is anchored on today when today has a completion,
// otherwise on yesterday; a streak only drops to zero after two missed days.
func Calculate(presence map[string]bool, today time.Time) Result {
	return Result{
		Current: Current(presence, today),
		Longest: Longest(presence),
	}
}

func Current(presence map[string]bool, today time.Time) int {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	if !presence[utils.FormatDate(day)] {
		day = utils.AddDays(day, -1)
		if !presence[utils.FormatDate(day)] {
			return 0
		}
	}

	count := 0
	for presence[utils.FormatDate(day)] {
		count++
		day = utils.AddDays(day, -1)
	}
	return count
}

func Longest(presence map[string]bool) int {
	days := make([]int64, 0, len(presence))
	for d, ok := range presence {
		if !ok {
			continue
		}
		t, err := utils.ParseDate(d)
		if err != nil {
			continue
		}
		days = append(days, utils.DayNumber(t))
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
