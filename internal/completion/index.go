// Package completion shapes raw completion rows into per-habit, per-day
// lookups for the streak and progress calculations.
package completion

import (
	"sort"

	modelCompletion "resolveAPI/internal/types/completion"
	"resolveAPI/utils"
)

// Index maps habit id -> date (YYYY-MM-DD) -> completed value.
type Index struct {
	byHabit map[string]map[string]float64
}

// BuildIndex never fails. Rows with a non-positive value or an unparsable
// date are dropped; duplicate (habit, date) rows resolve last-write-wins.
func BuildIndex(rows []modelCompletion.HabitCompletion) *Index {
	ix := &Index{byHabit: make(map[string]map[string]float64)}
	for _, r := range rows {
		ix.Add(r)
	}
	return ix
}

// Add folds one row into the index with the same rules as BuildIndex.
func (ix *Index) Add(r modelCompletion.HabitCompletion) {
	if r.Value <= 0 {
		return
	}
	if _, err := utils.ParseDate(r.Date); err != nil {
		return
	}
	days, ok := ix.byHabit[r.HabitID]
	if !ok {
		days = make(map[string]float64)
		ix.byHabit[r.HabitID] = days
	}
	days[r.Date] = r.Value
}

func (ix *Index) Has(habitID, date string) bool {
	_, ok := ix.byHabit[habitID][date]
	return ok
}

// Value is the recorded amount for the day, 0 when absent.
func (ix *Index) Value(habitID, date string) float64 {
	return ix.byHabit[habitID][date]
}

// Presence returns a fresh date -> true map for one habit.
func (ix *Index) Presence(habitID string) map[string]bool {
	days := ix.byHabit[habitID]
	out := make(map[string]bool, len(days))
	for d := range days {
		out[d] = true
	}
	return out
}

// Values returns a copy of the date -> value map for one habit.
func (ix *Index) Values(habitID string) map[string]float64 {
	days := ix.byHabit[habitID]
	out := make(map[string]float64, len(days))
	for d, v := range days {
		out[d] = v
	}
	return out
}

// Dates returns the habit's completion dates in ascending order.
func (ix *Index) Dates(habitID string) []string {
	days := ix.byHabit[habitID]
	out := make([]string, 0, len(days))
	for d := range days {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (ix *Index) Count(habitID string) int {
	return len(ix.byHabit[habitID])
}

// Total sums every recorded value of the habit across all dates.
func (ix *Index) Total(habitID string) float64 {
	var sum float64
	for _, v := range ix.byHabit[habitID] {
		sum += v
	}
	return sum
}

// LastDate returns the most recent completion date, or "" if none.
func (ix *Index) LastDate(habitID string) string {
	var last string
	for d := range ix.byHabit[habitID] {
		if d > last {
			last = d
		}
	}
	return last
}
