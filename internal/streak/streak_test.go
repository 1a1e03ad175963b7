package streak

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolveAPI/utils"
)

func dates(ds ...string) map[string]bool {
	m := make(map[string]bool, len(ds))
	for _, d := range ds {
		m[d] = true
	}
	return m
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestCalculate_NoCompletions(t *testing.T) {
	assert.Equal(t, Result{0, 0}, Calculate(nil, mustDay(t, "2024-01-03")))
	assert.Equal(t, Result{0, 0}, Calculate(map[string]bool{}, mustDay(t, "2024-01-03")))
}

func TestCalculate_ThreeDayRunEndingToday(t *testing.T) {
	got := Calculate(dates("2024-01-01", "2024-01-02", "2024-01-03"), mustDay(t, "2024-01-03"))
	assert.Equal(t, Result{Current: 3, Longest: 3}, got)
}

func TestCalculate_GapIsolatesEarlierCompletion(t *testing.T) {
	got := Calculate(dates("2024-01-01", "2024-01-03"), mustDay(t, "2024-01-03"))
	assert.Equal(t, Result{Current: 1, Longest: 1}, got)
}

func TestCurrent_GraceDay(t *testing.T) {
	presence := dates("2024-01-08", "2024-01-09", "2024-01-10")

	// Today (the 11th) is missing but yesterday extends a run of three.
	assert.Equal(t, 3, Current(presence, mustDay(t, "2024-01-11")))

	// Today and yesterday both missing.
	assert.Equal(t, 0, Current(presence, mustDay(t, "2024-01-12")))
}

func TestCurrent_IgnoresTimeOfDay(t *testing.T) {
	presence := dates("2024-01-02", "2024-01-03")
	lateEvening := time.Date(2024, 1, 3, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, 2, Current(presence, lateEvening))
}

func TestCurrent_CrossesMonthAndLeapDay(t *testing.T) {
	presence := dates("2024-02-28", "2024-02-29", "2024-03-01")
	assert.Equal(t, 3, Current(presence, mustDay(t, "2024-03-01")))
	assert.Equal(t, 3, Longest(presence))
}

func TestLongest_PicksMaximumRun(t *testing.T) {
	presence := dates(
		"2024-01-01", "2024-01-02",
		"2024-01-05", "2024-01-06", "2024-01-07", "2024-01-08",
		"2024-01-10",
	)
	assert.Equal(t, 4, Longest(presence))
	assert.Equal(t, 1, Longest(dates("2023-06-01")))
}

func TestLongest_IgnoresFalseAndMalformedEntries(t *testing.T) {
	presence := map[string]bool{
		"2024-01-01": true,
		"2024-01-02": false,
		"2024-01-03": true,
		"garbage":    true,
	}
	assert.Equal(t, 1, Longest(presence))
}

func TestLongest_MonotonicAsCompletionsAreAdded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	start := mustDay(t, "2024-01-01")
	presence := map[string]bool{}

	prev := 0
	for i := 0; i < 200; i++ {
		d := utils.AddDays(start, rng.Intn(90))
		presence[utils.FormatDate(d)] = true

		got := Longest(presence)
		require.GreaterOrEqual(t, got, prev, "longest streak shrank after adding %s", utils.FormatDate(d))
		prev = got
	}
}

func TestCurrentNeverExceedsLongest(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := mustDay(t, "2024-01-01")

	for trial := 0; trial < 50; trial++ {
		presence := map[string]bool{}
		for i := 0; i < 20; i++ {
			presence[utils.FormatDate(utils.AddDays(start, rng.Intn(30)))] = true
		}
		today := utils.AddDays(start, rng.Intn(32))

		r := Calculate(presence, today)
		assert.LessOrEqual(t, r.Current, r.Longest)
	}
}
