// Package timecalc implements the time-of-day arithmetic behind the attendance grid:
// normalizing hand-typed time text, parsing clock times and computing worked hours.
package timecalc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
}

var fullWidthReplacer = strings.NewReplacer(
	"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
	"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
	"：", ":", "．", ".",
)

// NormalizeTimeText converts full-width digits and colons to ASCII and trims
// surrounding whitespace, including the ideographic space. It is idempotent.
func NormalizeTimeText(s string) string {
	return strings.TrimSpace(fullWidthReplacer.Replace(s))
}

// ParseClockTime parses H:MM or HH:MM after normalization.
// It reports false for empty or malformed input.
func ParseClockTime(s string) (TimeOfDay, bool) {
	s = NormalizeTimeText(s)
	hourStr, minuteStr, ok := strings.Cut(s, ":")
	if !ok || len(hourStr) < 1 || len(hourStr) > 2 || len(minuteStr) != 2 {
		return TimeOfDay{}, false
	}

	hour, ok := parseDigits(hourStr)
	if !ok || hour > 23 {
		return TimeOfDay{}, false
	}
	minute, ok := parseDigits(minuteStr)
	if !ok || minute > 59 {
		return TimeOfDay{}, false
	}

	return TimeOfDay{Hour: hour, Minute: minute}, true
}

func parseDigits(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// MustParseClockTime is like ParseClockTime but panics on malformed input.
// Intended for constants and tests.
func MustParseClockTime(s string) TimeOfDay {
	t, ok := ParseClockTime(s)
	if !ok {
		panic(fmt.Sprintf("timecalc: malformed clock time %q", s))
	}
	return t
}

// TimeOfDayOf extracts the wall-clock time of t, dropping seconds
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Minutes returns minutes since midnight
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// On places the time of day on the date, in the date's location
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// String formats as HH:MM
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ComputeDuration returns worked hours between start and end minus the break.
// Either bound absent yields 0. Overnight spans are not supported: a negative
// result clamps to 0.
func ComputeDuration(start, end *TimeOfDay, breakMinutes float64) float64 {
	if start == nil || end == nil {
		return 0
	}
	hours := float64(end.Minutes()-start.Minutes())/60 - breakMinutes/60
	return math.Max(0, hours)
}

// ParseHours leniently parses an hour amount such as "1.0" or "１．５".
// Malformed, negative or non-finite input yields 0.
func ParseHours(s string) float64 {
	s = NormalizeTimeText(s)
	if s == "" {
		return 0
	}
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	return h
}

// HoursToMinutes converts hours to whole minutes, truncating
func HoursToMinutes(h float64) int {
	// Round off float noise first so 454/60 hours converts back to 454 minutes.
	return int(math.Trunc(math.Round(h*60*1e6) / 1e6))
}

// MinutesToHours converts minutes to hours
func MinutesToHours(m int) float64 {
	return float64(m) / 60
}

// FormatHours renders hours with two decimals
func FormatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}
