package dateutil

import (
	"fmt"
	"time"
)

// DateLayout is the storage and display layout for calendar dates
const DateLayout = "2006-01-02"

var japaneseWeekdays = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthDates returns every date of the month at midnight in loc
func MonthDates(year int, month time.Month, loc *time.Location) []time.Time {
	n := DaysInMonth(year, month)
	dates := make([]time.Time, 0, n)
	for day := 1; day <= n; day++ {
		dates = append(dates, time.Date(year, month, day, 0, 0, 0, 0, loc))
	}
	return dates
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// JapaneseWeekday returns the single-character weekday label (月, 火, ...)
func JapaneseWeekday(date time.Time) string {
	return japaneseWeekdays[date.Weekday()]
}

// FormatDate formats the date as YYYY-MM-DD
func FormatDate(date time.Time) string {
	return date.Format(DateLayout)
}

// ParseMonth parses a YYYY-MM string
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return t.Year(), t.Month(), nil
}
