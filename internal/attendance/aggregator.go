package attendance

import (
	"fmt"
	"time"

	"github.com/username/staff-attendance/internal/calendar"
	"github.com/username/staff-attendance/internal/timecalc"
	"github.com/username/staff-attendance/pkg/dateutil"
)

// Aggregator turns stored records plus uncommitted edits into the monthly grid,
// and converts a grid back into records.
type Aggregator struct {
	calendar calendar.Calendar
	loc      *time.Location
}

// NewAggregator creates a new Aggregator
func NewAggregator(cal calendar.Calendar, loc *time.Location) *Aggregator {
	return &Aggregator{calendar: cal, loc: loc}
}

// BuildMonthView resolves every day of the month. Edited text wins over the
// stored value; breaks default to 60 minutes when nothing is stored. Actual
// hours come from the actual times when both parse, otherwise from manual hours.
func (a *Aggregator) BuildMonthView(employeeID string, year int, month time.Month, records map[int]*Record, edits *EditState) *MonthView {
	view := &MonthView{
		EmployeeID: employeeID,
		Year:       year,
		Month:      int(month),
	}

	calInfo := a.calendar.GetMonthInfo(year, month)
	view.Totals.WorkDays = calInfo.WorkDays
	view.Totals.Weekends = calInfo.Weekends
	view.Totals.Holidays = calInfo.Holidays

	for _, date := range dateutil.MonthDates(year, month, a.loc) {
		day := date.Day()
		rec := records[day]
		if rec == nil {
			rec = &Record{}
		}
		in := edits.day(day)

		info := calInfo.Days[day-1]
		dv := DayView{
			Day:         day,
			Date:        dateutil.FormatDate(date),
			Weekday:     dateutil.JapaneseWeekday(date),
			IsWeekend:   info.IsWeekend,
			IsHoliday:   info.IsHoliday,
			HolidayName: info.Note,
			WorkTag:     rec.WorkTag,
		}

		dv.ScheduledStart = resolveTimeText(in.ScheduledStart, rec.ScheduledStart)
		dv.ScheduledEnd = resolveTimeText(in.ScheduledEnd, rec.ScheduledEnd)
		dv.ScheduledBreakHours = resolveBreakHours(in.ScheduledBreakHours, rec.ScheduledBreakMinutes)
		dv.PlannedHours = durationOf(dv.ScheduledStart, dv.ScheduledEnd, dv.ScheduledBreakHours)

		dv.ActualStart = resolveTimeText(in.ActualStart, rec.ActualStart)
		dv.ActualEnd = resolveTimeText(in.ActualEnd, rec.ActualEnd)
		dv.ActualBreakHours = resolveBreakHours(in.ActualBreakHours, rec.ActualBreakMinutes)
		if hasBothTimes(dv.ActualStart, dv.ActualEnd) {
			dv.ActualHours = durationOf(dv.ActualStart, dv.ActualEnd, dv.ActualBreakHours)
		} else {
			dv.ActualHours = resolveManualHours(in.ManualWorkHours, rec.ManualWorkMinutes)
		}

		dv.LeaveType = string(rec.LeaveType)
		if in.LeaveType != nil {
			dv.LeaveType = *in.LeaveType
		}
		dv.Note = rec.Note
		if in.Note != nil {
			dv.Note = *in.Note
		}

		view.Days = append(view.Days, dv)
		view.Totals.ScheduledBreakHours += dv.ScheduledBreakHours
		view.Totals.PlannedHours += dv.PlannedHours
		view.Totals.ActualBreakHours += dv.ActualBreakHours
		view.Totals.ActualHours += dv.ActualHours
	}

	return view
}

// BuildRecords converts every day of view into a full record for overwrite.
// Malformed times become absent. Manual minutes hold the day's actual hours.
func (a *Aggregator) BuildRecords(employeeID string, year int, month time.Month, view *MonthView) ([]*Record, error) {
	records := make([]*Record, 0, len(view.Days))

	for _, dv := range view.Days {
		if dv.Day < 1 || dv.Day > dateutil.DaysInMonth(year, month) {
			return nil, fmt.Errorf("%w: day %d", ErrInvalidPeriod, dv.Day)
		}
		date := time.Date(year, month, dv.Day, 0, 0, 0, 0, a.loc)

		leave, err := ParseLeaveType(dv.LeaveType)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", dv.Day, err)
		}

		records = append(records, &Record{
			EmployeeID:            employeeID,
			Date:                  date,
			ScheduledStart:        timeOn(dv.ScheduledStart, date),
			ScheduledEnd:          timeOn(dv.ScheduledEnd, date),
			ScheduledBreakMinutes: IntPtr(timecalc.HoursToMinutes(dv.ScheduledBreakHours)),
			ActualStart:           timeOn(dv.ActualStart, date),
			ActualEnd:             timeOn(dv.ActualEnd, date),
			ActualBreakMinutes:    IntPtr(timecalc.HoursToMinutes(dv.ActualBreakHours)),
			ManualWorkMinutes:     IntPtr(timecalc.HoursToMinutes(dv.ActualHours)),
			LeaveType:             leave,
			Note:                  dv.Note,
			WorkTag:               dv.WorkTag,
		})
	}

	return records, nil
}

// Summarize aggregates a year of stored records by month
func (a *Aggregator) Summarize(records []*Record) []MonthSummary {
	summaries := make([]MonthSummary, 12)
	for i := range summaries {
		summaries[i].Month = i + 1
	}

	for _, rec := range records {
		s := &summaries[rec.Date.Month()-1]

		s.PlannedHours += recordHours(rec.ScheduledStart, rec.ScheduledEnd, rec.ScheduledBreakMinutes)

		actual := 0.0
		if rec.HasActualTimes() {
			actual = recordHours(rec.ActualStart, rec.ActualEnd, rec.ActualBreakMinutes)
		} else if rec.ManualWorkMinutes != nil {
			actual = timecalc.MinutesToHours(*rec.ManualWorkMinutes)
		}
		s.ActualHours += actual
		if actual > 0 {
			s.WorkedDays++
		}
		if rec.ActualBreakMinutes != nil {
			s.ActualBreakHours += timecalc.MinutesToHours(*rec.ActualBreakMinutes)
		}
	}

	return summaries
}

func resolveTimeText(edit *string, stored *time.Time) string {
	if edit != nil {
		return timecalc.NormalizeTimeText(*edit)
	}
	if stored == nil {
		return ""
	}
	return timecalc.TimeOfDayOf(*stored).String()
}

func resolveBreakHours(edit *string, stored *int) float64 {
	if edit != nil {
		return timecalc.ParseHours(*edit)
	}
	if stored == nil {
		return timecalc.MinutesToHours(DefaultBreakMinutes)
	}
	return timecalc.MinutesToHours(*stored)
}

func resolveManualHours(edit *string, stored *int) float64 {
	if edit != nil {
		return timecalc.ParseHours(*edit)
	}
	if stored == nil {
		return 0
	}
	return timecalc.MinutesToHours(*stored)
}

func parseTime(s string) *timecalc.TimeOfDay {
	t, ok := timecalc.ParseClockTime(s)
	if !ok {
		return nil
	}
	return &t
}

func hasBothTimes(start, end string) bool {
	return parseTime(start) != nil && parseTime(end) != nil
}

func durationOf(start, end string, breakHours float64) float64 {
	return timecalc.ComputeDuration(parseTime(start), parseTime(end), breakHours*60)
}

func timeOn(s string, date time.Time) *time.Time {
	t := parseTime(s)
	if t == nil {
		return nil
	}
	return TimePtr(t.On(date))
}

func recordHours(start, end *time.Time, breakMinutes *int) float64 {
	if start == nil || end == nil {
		return 0
	}
	b := DefaultBreakMinutes
	if breakMinutes != nil {
		b = *breakMinutes
	}
	s, e := timecalc.TimeOfDayOf(*start), timecalc.TimeOfDayOf(*end)
	return timecalc.ComputeDuration(&s, &e, float64(b))
}
