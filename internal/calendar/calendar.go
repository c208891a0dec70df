package calendar

import (
	"time"

	"github.com/username/staff-attendance/pkg/dateutil"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
)

func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	default:
		return "unknown"
	}
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date      time.Time
	Type      DayType
	IsHoliday bool
	IsWeekend bool
	Note      string // holiday name
}

// MonthInfo represents calendar information for a month. Days[i] is day i+1.
type MonthInfo struct {
	Year     int
	Month    time.Month
	WorkDays int
	Weekends int
	Holidays int
	Days     []DayInfo
}

// Calendar answers holiday questions for business dates
type Calendar interface {
	// IsHoliday reports whether the date is a public holiday or company closure
	IsHoliday(date time.Time) bool

	// HolidayName returns the holiday name, if the date is a holiday
	HolidayName(date time.Time) (string, bool)

	// GetMonthInfo classifies every day of the month and counts workdays,
	// weekends and holidays
	GetMonthInfo(year int, month time.Month) MonthInfo
}

type nameLookup func(date time.Time) (string, bool)

// describeDay classifies a date. A holiday that falls on a weekend counts as a holiday.
func describeDay(date time.Time, lookup nameLookup) DayInfo {
	info := DayInfo{
		Date:      dateutil.StartOfDay(date),
		IsWeekend: dateutil.IsWeekend(date),
	}

	if name, ok := lookup(date); ok {
		info.Type = DayTypeHoliday
		info.IsHoliday = true
		info.Note = name
		return info
	}

	if info.IsWeekend {
		info.Type = DayTypeWeekend
	} else {
		info.Type = DayTypeWorkday
	}
	return info
}

func describeMonth(year int, month time.Month, lookup nameLookup) MonthInfo {
	info := MonthInfo{Year: year, Month: month}

	for _, date := range dateutil.MonthDates(year, month, time.UTC) {
		day := describeDay(date, lookup)
		info.Days = append(info.Days, day)

		switch day.Type {
		case DayTypeWorkday:
			info.WorkDays++
		case DayTypeWeekend:
			info.Weekends++
		case DayTypeHoliday:
			info.Holidays++
		}
	}

	return info
}

func dateKey(date time.Time) string {
	return dateutil.FormatDate(date)
}
