package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"resolveAPI/utils"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"
)

type Period string

const (
	PeriodDays   Period = "days"
	PeriodWeeks  Period = "weeks"
	PeriodMonths Period = "months"
)

// Schedule is a tagged union keyed by Frequency. Only the fields of the
// active variant are meaningful:
//
//	daily   -
//	weekly  Days (Monday-indexed, 0=Monday … 6=Sunday)
//	monthly DayOfMonth (1..31)
//	custom  Interval, Period, Anchor (YYYY-MM-DD)
type Schedule struct {
	Frequency  Frequency `json:"frequency"`
	Days       []int     `json:"days,omitempty"`
	DayOfMonth int       `json:"day_of_month,omitempty"`
	Interval   int       `json:"interval,omitempty"`
	Period     Period    `json:"period,omitempty"`
	Anchor     string    `json:"anchor,omitempty"`
}

func Daily() Schedule {
	return Schedule{Frequency: FrequencyDaily}
}

func Weekly(days ...int) Schedule {
	return Schedule{Frequency: FrequencyWeekly, Days: days}
}

func Monthly(dayOfMonth int) Schedule {
	return Schedule{Frequency: FrequencyMonthly, DayOfMonth: dayOfMonth}
}

func Custom(interval int, period Period, anchor string) Schedule {
	return Schedule{Frequency: FrequencyCustom, Interval: interval, Period: period, Anchor: anchor}
}

// IsDue reports whether the calendar day of `day` is a scheduled occurrence.
// Missing or malformed schedule data is never due.
func (s Schedule) IsDue(day time.Time) bool {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	switch s.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		idx := utils.MondayIndex(day)
		for _, d := range s.Days {
			if d == idx {
				return true
			}
		}
		return false
	case FrequencyMonthly:
		if s.DayOfMonth < 1 || s.DayOfMonth > 31 {
			return false
		}
		// Months without that day are skipped rather than clamped.
		return day.Day() == s.DayOfMonth
	case FrequencyCustom:
		return s.customDue(day)
	default:
		return false
	}
}

func (s Schedule) customDue(day time.Time) bool {
	if s.Interval <= 0 || s.Anchor == "" {
		return false
	}
	anchor, err := utils.ParseDate(s.Anchor)
	if err != nil {
		return false
	}
	diff := utils.DaysBetween(anchor, day)
	if diff < 0 {
		return false
	}

	switch s.Period {
	case PeriodDays:
		return diff%s.Interval == 0
	case PeriodWeeks:
		return diff%(7*s.Interval) == 0
	case PeriodMonths:
		months := (day.Year()-anchor.Year())*12 + int(day.Month()) - int(anchor.Month())
		return months%s.Interval == 0 && day.Day() == anchor.Day()
	default:
		return false
	}
}

// WithAnchor fills in the anchor of a custom schedule that has none.
// Habits anchor on their creation day.
func (s Schedule) WithAnchor(fallback time.Time) Schedule {
	if s.Frequency == FrequencyCustom && s.Anchor == "" {
		s.Anchor = utils.FormatDate(fallback)
	}
	return s
}

var ErrInvalidSchedule = errors.New("invalid schedule")

// Validate is the strict check applied to schedules submitted by clients.
func (s Schedule) Validate() error {
	switch s.Frequency {
	case FrequencyDaily:
		return nil
	case FrequencyWeekly:
		if len(s.Days) == 0 {
			return fmt.Errorf("%w: weekly schedule needs at least one day", ErrInvalidSchedule)
		}
		for _, d := range s.Days {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: day index %d out of range 0-6", ErrInvalidSchedule, d)
			}
		}
		return nil
	case FrequencyMonthly:
		if s.DayOfMonth < 1 || s.DayOfMonth > 31 {
			return fmt.Errorf("%w: day_of_month must be between 1 and 31", ErrInvalidSchedule)
		}
		return nil
	case FrequencyCustom:
		if s.Interval <= 0 {
			return fmt.Errorf("%w: interval must be positive", ErrInvalidSchedule)
		}
		switch s.Period {
		case PeriodDays, PeriodWeeks, PeriodMonths:
		default:
			return fmt.Errorf("%w: unknown period %q", ErrInvalidSchedule, s.Period)
		}
		if s.Anchor != "" {
			if _, err := utils.ParseDate(s.Anchor); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidSchedule, s.Frequency)
	}
}

// FromLegacy normalizes the older form payloads: a bare frequency string,
// an integer `days` array, and a `frequency_details` string holding either a
// single weekday index ("3") or a JSON array of indices (`["0","2"]`, `[0,2]`).
// The old "custom" frequency was a weekday set and maps onto Weekly.
func FromLegacy(frequency string, days []int, details string) Schedule {
	switch Frequency(strings.ToLower(strings.TrimSpace(frequency))) {
	case FrequencyDaily:
		return Daily()
	case "":
		if len(days) > 0 {
			return Weekly(days...)
		}
		return Daily()
	case FrequencyWeekly, FrequencyCustom:
		if len(days) > 0 {
			return Weekly(days...)
		}
		return Weekly(parseDetails(details)...)
	case FrequencyMonthly:
		if n, err := strconv.Atoi(strings.TrimSpace(details)); err == nil {
			return Monthly(n)
		}
		return Schedule{Frequency: FrequencyMonthly}
	default:
		return Schedule{Frequency: Frequency(frequency)}
	}
}

func parseDetails(details string) []int {
	details = strings.TrimSpace(details)
	if details == "" {
		return nil
	}
	if n, err := strconv.Atoi(details); err == nil {
		return []int{n}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(details), &raw); err != nil {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, r := range raw {
		var n int
		if err := json.Unmarshal(r, &n); err == nil {
			out = append(out, n)
			continue
		}
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			if n, err := strconv.Atoi(s); err == nil {
				out = append(out, n)
			}
		}
	}
	return out
}
