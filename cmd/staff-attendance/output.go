package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/username/staff-attendance/internal/annualplan"
	"github.com/username/staff-attendance/internal/attendance"
	"github.com/username/staff-attendance/pkg/dateutil"
)

func renderSeedResult(w io.Writer, r *attendance.SeedResult) {
	if !r.Changed() {
		fmt.Fprintf(w, "⏭  %s %04d-%02d: nothing to seed (%d existing, %d day(s) off)\n",
			r.EmployeeID, r.Year, r.Month, len(r.Existing), len(r.Skipped))
		return
	}
	fmt.Fprintf(w, "🌱 %s %04d-%02d: seeded %d day(s), %d existing, %d day(s) off\n",
		r.EmployeeID, r.Year, r.Month, len(r.Seeded), len(r.Existing), len(r.Skipped))
}

func renderToday(w io.Writer, employeeID string, date time.Time, today *attendance.TodayRecord) {
	fmt.Fprintf(w, "📅 %s (%s) %s\n", dateutil.FormatDate(date), dateutil.JapaneseWeekday(date), employeeID)

	switch today.Status {
	case attendance.StatusNotStarted:
		fmt.Fprintln(w, "  Status: not started")
	case attendance.StatusWorking:
		fmt.Fprintf(w, "  Status: working since %s\n", today.Record.ActualStart.Format("15:04"))
	case attendance.StatusClockedOut:
		fmt.Fprintf(w, "  Status: clocked out (%s - %s)\n",
			today.Record.ActualStart.Format("15:04"), today.Record.ActualEnd.Format("15:04"))
	}
}

func renderMonthTable(w io.Writer, v *attendance.MonthView) {
	fmt.Fprintf(w, "\n📊 %s %04d-%02d\n", v.EmployeeID, v.Year, v.Month)
	fmt.Fprintln(w, "  Date        Day | Plan  start-end   brk   hours | Actual start-end brk   hours | Leave / Note")

	for _, d := range v.Days {
		marker := " "
		if d.IsRedDay() {
			marker = "*"
		}
		remark := d.LeaveType
		if d.HolidayName != "" {
			remark = joinRemark(remark, d.HolidayName)
		}
		if d.Note != "" {
			remark = joinRemark(remark, d.Note)
		}
		fmt.Fprintf(w, "%s %s %s  | %5s-%-5s %5.2f %5.2f | %5s-%-5s %5.2f %5.2f | %s\n",
			marker, d.Date, d.Weekday,
			d.ScheduledStart, d.ScheduledEnd, d.ScheduledBreakHours, d.PlannedHours,
			d.ActualStart, d.ActualEnd, d.ActualBreakHours, d.ActualHours,
			remark)
	}

	t := v.Totals
	fmt.Fprintf(w, "  Total           |             %5.2f %6.2f |             %5.2f %6.2f |\n",
		t.ScheduledBreakHours, t.PlannedHours, t.ActualBreakHours, t.ActualHours)
	fmt.Fprintf(w, "  Calendar: %d workday(s), %d weekend day(s), %d holiday(s)\n",
		t.WorkDays, t.Weekends, t.Holidays)
}

func joinRemark(a, b string) string {
	if a == "" {
		return b
	}
	return a + " / " + b
}

func renderPlans(w io.Writer, year int, plans map[string]int) {
	fmt.Fprintf(w, "🎯 Annual plans %d\n", year)
	if len(plans) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}

	ids := make([]string, 0, len(plans))
	for id := range plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Fprintf(w, "  %-12s %6dh\n", id, plans[id])
	}
}

func renderProgress(w io.Writer, p *annualplan.Progress) {
	fmt.Fprintf(w, "\n📈 %s %d\n", p.EmployeeID, p.Year)
	for _, m := range p.Months {
		fmt.Fprintf(w, "  %2d月 | %6.2fh worked | %6.2fh break | %2d day(s)\n",
			m.Month, m.ActualHours, m.ActualBreakHours, m.WorkedDays)
	}

	fmt.Fprintf(w, "  Actual:    %.2fh\n", p.ActualHours)
	if !p.HasPlan {
		fmt.Fprintln(w, "  Target:    not set")
		return
	}
	fmt.Fprintf(w, "  Target:    %.2fh\n", p.TargetHours)
	if p.Remaining < 0 {
		fmt.Fprintf(w, "  Overage:   %.2fh\n", -p.Remaining)
	} else {
		fmt.Fprintf(w, "  Remaining: %.2fh\n", p.Remaining)
	}
}

// writeStructured encodes v as json or yaml
func writeStructured(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}
