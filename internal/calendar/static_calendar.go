package calendar

import "time"

// japaneseHolidays holds national holidays and company year-end closures, keyed YYYY-MM-DD
var japaneseHolidays = map[string]string{
	// 2024
	"2024-01-01": "元日",
	"2024-01-08": "成人の日",
	"2024-02-11": "建国記念の日",
	"2024-02-12": "振替休日",
	"2024-02-23": "天皇誕生日",
	"2024-03-20": "春分の日",
	"2024-04-29": "昭和の日",
	"2024-05-03": "憲法記念日",
	"2024-05-04": "みどりの日",
	"2024-05-05": "こどもの日",
	"2024-05-06": "振替休日",
	"2024-07-15": "海の日",
	"2024-08-11": "山の日",
	"2024-08-12": "振替休日",
	"2024-09-16": "敬老の日",
	"2024-09-22": "秋分の日",
	"2024-09-23": "振替休日",
	"2024-10-14": "スポーツの日",
	"2024-11-03": "文化の日",
	"2024-11-04": "振替休日",
	"2024-11-23": "勤労感謝の日",
	"2024-12-28": "年末年始",
	"2024-12-29": "年末年始",
	"2024-12-30": "年末年始",
	"2024-12-31": "年末年始",

	// 2025
	"2025-01-01": "元日",
	"2025-01-02": "正月",
	"2025-01-03": "正月",
	"2025-01-13": "成人の日",
	"2025-02-11": "建国記念の日",
	"2025-02-23": "天皇誕生日",
	"2025-02-24": "振替休日",
	"2025-03-20": "春分の日",
	"2025-04-29": "昭和の日",
	"2025-05-03": "憲法記念日",
	"2025-05-04": "みどりの日",
	"2025-05-05": "こどもの日",
	"2025-05-06": "振替休日",
	"2025-07-21": "海の日",
	"2025-08-11": "山の日",
	"2025-09-15": "敬老の日",
	"2025-09-23": "秋分の日",
	"2025-10-13": "スポーツの日",
	"2025-11-03": "文化の日",
	"2025-11-23": "勤労感謝の日",
	"2025-11-24": "振替休日",
}

// StaticCalendar implements Calendar with the built-in holiday table.
// Dates outside the table are never holidays.
type StaticCalendar struct {
	holidays map[string]string
}

// NewStaticCalendar creates a calendar backed by the built-in table
func NewStaticCalendar() *StaticCalendar {
	return &StaticCalendar{holidays: japaneseHolidays}
}

// IsHoliday checks if the given date is in the table
func (sc *StaticCalendar) IsHoliday(date time.Time) bool {
	_, ok := sc.HolidayName(date)
	return ok
}

// HolidayName returns the table entry for the date
func (sc *StaticCalendar) HolidayName(date time.Time) (string, bool) {
	name, ok := sc.holidays[dateKey(date)]
	return name, ok
}

// GetMonthInfo returns calendar info for the entire month
func (sc *StaticCalendar) GetMonthInfo(year int, month time.Month) MonthInfo {
	return describeMonth(year, month, sc.HolidayName)
}
