package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("03/10/2024")
	assert.Error(t, err)
}

func TestDayOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 02:00 UTC on the 11th is still the 10th five hours west.
	instant := time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-10", FormatDate(DayOf(instant, loc)))
	assert.Equal(t, "2024-03-11", FormatDate(DayOf(instant, nil)))
}

func TestDaysBetween(t *testing.T) {
	a, _ := ParseDate("2024-02-27")
	b, _ := ParseDate("2024-03-01")

	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestMondayIndexAndStartOfWeek(t *testing.T) {
	wed, _ := ParseDate("2024-01-03")
	sun, _ := ParseDate("2024-01-07")

	assert.Equal(t, 2, MondayIndex(wed))
	assert.Equal(t, 6, MondayIndex(sun))
	assert.Equal(t, "2024-01-01", FormatDate(StartOfWeek(wed)))
	assert.Equal(t, "2024-01-01", FormatDate(StartOfWeek(sun)))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))
}
