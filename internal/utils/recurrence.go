package utils

import (
	"strings"
	"time"

	"github.com/julianstephens/lifeos/internal/constants"
)

// IntervalUnit is the unit of an every-N / in-N interval
type IntervalUnit string

const (
	UnitDay   IntervalUnit = "day"
	UnitWeek  IntervalUnit = "week"
	UnitMonth IntervalUnit = "month"
)

var weekdayNames = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses a full or three-letter weekday name, case-insensitively.
func ParseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

// ParseIntervalUnit accepts singular or plural unit names (day/days, week/weeks, month/months).
func ParseIntervalUnit(s string) (IntervalUnit, bool) {
	switch strings.TrimSuffix(strings.ToLower(s), "s") {
	case "day":
		return UnitDay, true
	case "week":
		return UnitWeek, true
	case "month":
		return UnitMonth, true
	}
	return "", false
}

// Days returns the number of calendar days in n units. A month is always 30 days.
func (u IntervalUnit) Days(n int) int {
	switch u {
	case UnitWeek:
		return n * 7
	case UnitMonth:
		return n * constants.MonthDays
	default:
		return n
	}
}

// NextWeekdayOccurrence returns the next date-time on weekday at hour:minute
// after now. When now already falls on weekday the result is a week later,
// even if the time of day has not passed yet.
func NextWeekdayOccurrence(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	daysAhead := (int(weekday) - int(now.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	day := StartOfDay(now).AddDate(0, 0, daysAhead)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location())
}

// NextWeekdayOnOrAfter returns the date of the first weekday on or after today (midnight).
func NextWeekdayOnOrAfter(today time.Time, weekday time.Weekday) time.Time {
	daysAhead := (int(weekday) - int(today.Weekday()) + 7) % 7
	return StartOfDay(today).AddDate(0, 0, daysAhead)
}

// AddInterval adds n units to today's date using calendar-day arithmetic.
func AddInterval(today time.Time, n int, unit IntervalUnit) time.Time {
	return StartOfDay(today).AddDate(0, 0, unit.Days(n))
}
