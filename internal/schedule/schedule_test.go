package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resolveAPI/utils"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestIsDue_Daily(t *testing.T) {
	assert.True(t, Daily().IsDue(day(t, "2024-01-02")))
	assert.True(t, Daily().IsDue(day(t, "2024-02-29")))
}

func TestIsDue_WeeklyMonWedFri(t *testing.T) {
	s := Weekly(0, 2, 4)

	assert.True(t, s.IsDue(day(t, "2024-01-03")), "Wednesday should be due")
	assert.False(t, s.IsDue(day(t, "2024-01-02")), "Tuesday should not be due")
	assert.True(t, s.IsDue(day(t, "2024-01-01")), "Monday should be due")
	assert.True(t, s.IsDue(day(t, "2024-01-05")), "Friday should be due")
	assert.False(t, s.IsDue(day(t, "2024-01-07")), "Sunday should not be due")
}

func TestIsDue_Monthly(t *testing.T) {
	s := Monthly(15)
	assert.True(t, s.IsDue(day(t, "2024-01-15")))
	assert.False(t, s.IsDue(day(t, "2024-01-14")))

	// The 31st is skipped in short months.
	s31 := Monthly(31)
	assert.False(t, s31.IsDue(day(t, "2024-02-29")))
	assert.True(t, s31.IsDue(day(t, "2024-03-31")))
}

func TestIsDue_Custom(t *testing.T) {
	everyThreeDays := Custom(3, PeriodDays, "2024-01-01")
	assert.True(t, everyThreeDays.IsDue(day(t, "2024-01-01")))
	assert.False(t, everyThreeDays.IsDue(day(t, "2024-01-02")))
	assert.True(t, everyThreeDays.IsDue(day(t, "2024-01-04")))
	assert.False(t, everyThreeDays.IsDue(day(t, "2023-12-29")), "days before the anchor are never due")

	everyOtherWeek := Custom(2, PeriodWeeks, "2024-01-01")
	assert.True(t, everyOtherWeek.IsDue(day(t, "2024-01-15")))
	assert.False(t, everyOtherWeek.IsDue(day(t, "2024-01-08")))

	quarterly := Custom(3, PeriodMonths, "2024-01-10")
	assert.True(t, quarterly.IsDue(day(t, "2024-04-10")))
	assert.False(t, quarterly.IsDue(day(t, "2024-03-10")))
	assert.False(t, quarterly.IsDue(day(t, "2024-04-11")))
}

func TestIsDue_MalformedIsNeverDue(t *testing.T) {
	d := day(t, "2024-01-03")

	assert.False(t, Weekly().IsDue(d))
	assert.False(t, Monthly(0).IsDue(d))
	assert.False(t, Custom(0, PeriodDays, "2024-01-01").IsDue(d))
	assert.False(t, Custom(2, PeriodDays, "").IsDue(d))
	assert.False(t, Custom(2, PeriodDays, "not-a-date").IsDue(d))
	assert.False(t, Custom(2, "fortnights", "2024-01-01").IsDue(d))
	assert.False(t, Schedule{}.IsDue(d))
	assert.False(t, Schedule{Frequency: "hourly"}.IsDue(d))
}

func TestWithAnchor(t *testing.T) {
	created := time.Date(2024, 5, 6, 13, 0, 0, 0, time.UTC)

	s := Custom(2, PeriodDays, "").WithAnchor(created)
	assert.Equal(t, "2024-05-06", s.Anchor)

	kept := Custom(2, PeriodDays, "2024-01-01").WithAnchor(created)
	assert.Equal(t, "2024-01-01", kept.Anchor)

	weekly := Weekly(1).WithAnchor(created)
	assert.Empty(t, weekly.Anchor)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Daily().Validate())
	assert.NoError(t, Weekly(0, 6).Validate())
	assert.NoError(t, Monthly(31).Validate())
	assert.NoError(t, Custom(1, PeriodMonths, "").Validate())

	assert.ErrorIs(t, Weekly().Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, Weekly(7).Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, Monthly(32).Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, Custom(0, PeriodDays, "").Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, Custom(1, "years", "").Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, Custom(1, PeriodDays, "2024/01/01").Validate(), ErrInvalidSchedule)
	assert.ErrorIs(t, Schedule{Frequency: "sometimes"}.Validate(), ErrInvalidSchedule)
}

func TestFromLegacy(t *testing.T) {
	tests := []struct {
		name      string
		frequency string
		days      []int
		details   string
		want      Schedule
	}{
		{"daily", "daily", nil, "", Daily()},
		{"empty frequency", "", nil, "", Daily()},
		{"days without frequency", "", []int{2}, "", Weekly(2)},
		{"weekly days array", "weekly", []int{1, 3}, "", Weekly(1, 3)},
		{"weekly single index", "weekly", nil, "4", Weekly(4)},
		{"custom string array", "custom", nil, `["0","2","4"]`, Weekly(0, 2, 4)},
		{"custom int array", "custom", nil, `[5,6]`, Weekly(5, 6)},
		{"custom garbage", "custom", nil, `{oops`, Weekly()},
		{"monthly", "monthly", nil, "12", Monthly(12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromLegacy(tt.frequency, tt.days, tt.details)
			assert.Equal(t, tt.want.Frequency, got.Frequency)
			assert.ElementsMatch(t, tt.want.Days, got.Days)
			assert.Equal(t, tt.want.DayOfMonth, got.DayOfMonth)
		})
	}
}
