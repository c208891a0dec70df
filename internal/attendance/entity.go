package attendance

import (
	"fmt"
	"time"

	"github.com/username/staff-attendance/pkg/dateutil"
)

// LeaveType classifies a day of leave. The empty value means no leave.
type LeaveType string

const (
	LeaveNone              LeaveType = ""
	LeavePublicHoliday     LeaveType = "public_holiday"
	LeavePaid              LeaveType = "paid_leave"
	LeaveSpecial           LeaveType = "special_leave"
	LeaveAbsence           LeaveType = "absence"
	LeaveSubstituteHoliday LeaveType = "substitute_holiday"
)

// IsValid reports whether l is a known leave type
func (l LeaveType) IsValid() bool {
	switch l {
	case LeaveNone, LeavePublicHoliday, LeavePaid, LeaveSpecial, LeaveAbsence, LeaveSubstituteHoliday:
		return true
	default:
		return false
	}
}

// ParseLeaveType validates a leave type string
func ParseLeaveType(s string) (LeaveType, error) {
	l := LeaveType(s)
	if !l.IsValid() {
		return "", ErrInvalidLeaveType
	}
	return l, nil
}

// DefaultBreakMinutes is the break applied by seeding and clock-out, and shown
// for days whose break was never recorded.
const DefaultBreakMinutes = 60

// Record is one employee's attendance on one date. Every field other than the
// key may be absent.
type Record struct {
	EmployeeID string
	Date       time.Time // midnight in the business location

	ScheduledStart        *time.Time
	ScheduledEnd          *time.Time
	ScheduledBreakMinutes *int

	ActualStart        *time.Time
	ActualEnd          *time.Time
	ActualBreakMinutes *int
	ManualWorkMinutes  *int

	LeaveType LeaveType
	Note      string
	WorkTag   string
}

// HasActualTimes reports whether both actual start and end are recorded
func (r *Record) HasActualTimes() bool {
	return r.ActualStart != nil && r.ActualEnd != nil
}

// Clone returns a deep copy of r
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.ScheduledStart = cloneTime(r.ScheduledStart)
	c.ScheduledEnd = cloneTime(r.ScheduledEnd)
	c.ScheduledBreakMinutes = cloneInt(r.ScheduledBreakMinutes)
	c.ActualStart = cloneTime(r.ActualStart)
	c.ActualEnd = cloneTime(r.ActualEnd)
	c.ActualBreakMinutes = cloneInt(r.ActualBreakMinutes)
	c.ManualWorkMinutes = cloneInt(r.ManualWorkMinutes)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

// IntPtr returns a pointer to n
func IntPtr(n int) *int {
	return &n
}

// TimePtr returns a pointer to t
func TimePtr(t time.Time) *time.Time {
	return &t
}

// Status is today's clock state
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusWorking    Status = "working"
	StatusClockedOut Status = "clocked_out"
)

// StatusOf derives the clock state of a record. A nil record has not started.
func StatusOf(r *Record) Status {
	switch {
	case r == nil || r.ActualStart == nil:
		return StatusNotStarted
	case r.ActualEnd == nil:
		return StatusWorking
	default:
		return StatusClockedOut
	}
}

// TodayRecord is today's record together with its clock state
type TodayRecord struct {
	Record *Record
	Status Status
}

// DayInput holds raw grid text for one day. A nil field was not edited and
// falls back to the persisted value.
type DayInput struct {
	ScheduledStart      *string `json:"scheduled_start,omitempty"`
	ScheduledEnd        *string `json:"scheduled_end,omitempty"`
	ScheduledBreakHours *string `json:"scheduled_break_hours,omitempty"`
	ActualStart         *string `json:"actual_start,omitempty"`
	ActualEnd           *string `json:"actual_end,omitempty"`
	ActualBreakHours    *string `json:"actual_break_hours,omitempty"`
	ManualWorkHours     *string `json:"manual_work_hours,omitempty"`
	LeaveType           *string `json:"leave_type,omitempty"`
	Note                *string `json:"note,omitempty"`
}

// EditState is the per-request set of uncommitted grid edits, keyed by day of month
type EditState struct {
	Days map[int]DayInput `json:"days"`
}

// Validate rejects edits keyed by a day the month does not have
func (e *EditState) Validate(year int, month time.Month) error {
	if e == nil {
		return nil
	}
	n := dateutil.DaysInMonth(year, month)
	for d := range e.Days {
		if d < 1 || d > n {
			return fmt.Errorf("%w: day %d outside %04d-%02d", ErrInvalidPeriod, d, year, int(month))
		}
	}
	return nil
}

func (e *EditState) day(d int) DayInput {
	if e == nil || e.Days == nil {
		return DayInput{}
	}
	return e.Days[d]
}

// DayView is one resolved grid row
type DayView struct {
	Day         int    `json:"day" yaml:"day"`
	Date        string `json:"date" yaml:"date"`
	Weekday     string `json:"weekday" yaml:"weekday"`
	IsWeekend   bool   `json:"is_weekend" yaml:"is_weekend"`
	IsHoliday   bool   `json:"is_holiday" yaml:"is_holiday"`
	HolidayName string `json:"holiday_name,omitempty" yaml:"holiday_name,omitempty"`

	ScheduledStart      string  `json:"scheduled_start" yaml:"scheduled_start"`
	ScheduledEnd        string  `json:"scheduled_end" yaml:"scheduled_end"`
	ScheduledBreakHours float64 `json:"scheduled_break_hours" yaml:"scheduled_break_hours"`
	PlannedHours        float64 `json:"planned_hours" yaml:"planned_hours"`

	ActualStart      string  `json:"actual_start" yaml:"actual_start"`
	ActualEnd        string  `json:"actual_end" yaml:"actual_end"`
	ActualBreakHours float64 `json:"actual_break_hours" yaml:"actual_break_hours"`
	ActualHours      float64 `json:"actual_hours" yaml:"actual_hours"`

	LeaveType string `json:"leave_type,omitempty" yaml:"leave_type,omitempty"`
	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
	WorkTag   string `json:"work_tag,omitempty" yaml:"work_tag,omitempty"`
}

// IsRedDay reports whether the day is rendered as a day off
func (d DayView) IsRedDay() bool {
	return d.IsWeekend || d.IsHoliday
}

// Totals are the running sums shown under the grid, plus the month's calendar
// day counts. A holiday on a weekend counts as a holiday only.
type Totals struct {
	ScheduledBreakHours float64 `json:"scheduled_break_hours" yaml:"scheduled_break_hours"`
	PlannedHours        float64 `json:"planned_hours" yaml:"planned_hours"`
	ActualBreakHours    float64 `json:"actual_break_hours" yaml:"actual_break_hours"`
	ActualHours         float64 `json:"actual_hours" yaml:"actual_hours"`

	WorkDays int `json:"work_days" yaml:"work_days"`
	Weekends int `json:"weekends" yaml:"weekends"`
	Holidays int `json:"holidays" yaml:"holidays"`
}

// MonthView is the derived grid for one employee and month. It is never stored.
type MonthView struct {
	EmployeeID string    `json:"employee_id" yaml:"employee_id"`
	Year       int       `json:"year" yaml:"year"`
	Month      int       `json:"month" yaml:"month"`
	Days       []DayView `json:"days" yaml:"days"`
	Totals     Totals    `json:"totals" yaml:"totals"`
}

// MonthSummary aggregates one month of persisted records
type MonthSummary struct {
	Month            int     `json:"month" yaml:"month"`
	PlannedHours     float64 `json:"planned_hours" yaml:"planned_hours"`
	ActualHours      float64 `json:"actual_hours" yaml:"actual_hours"`
	ActualBreakHours float64 `json:"actual_break_hours" yaml:"actual_break_hours"`
	WorkedDays       int     `json:"worked_days" yaml:"worked_days"`
}
