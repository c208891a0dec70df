package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/username/staff-attendance/internal/calendar"
	"github.com/username/staff-attendance/internal/shift"
	"github.com/username/staff-attendance/pkg/dateutil"
	"go.uber.org/zap"
)

// SeedResult describes what a SeedMonth run did, day by day
type SeedResult struct {
	EmployeeID string     `json:"employee_id"`
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	Seeded     []int      `json:"seeded"`
	Existing   []int      `json:"existing"`
	Skipped    []int      `json:"skipped"`
}

// Changed reports whether any record was written
func (r *SeedResult) Changed() bool {
	return r != nil && len(r.Seeded) > 0
}

// Reconciler fills a month with scheduled hours from the employee's default
// shift without touching days that already have a record.
type Reconciler struct {
	repo     Repository
	calendar calendar.Calendar
	shifts   *shift.Registry
	loc      *time.Location
	logger   *zap.Logger
}

// NewReconciler creates a new schedule reconciler
func NewReconciler(
	repo Repository,
	cal calendar.Calendar,
	shifts *shift.Registry,
	loc *time.Location,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		repo:     repo,
		calendar: cal,
		shifts:   shifts,
		loc:      loc,
		logger:   logger,
	}
}

// SeedMonth inserts scheduled start, end and a 60 minute break for every day
// of the month that has no record and is not skipped by the shift policy.
// Any existing row blocks seeding for its day, so repeated runs write nothing.
func (r *Reconciler) SeedMonth(ctx context.Context, employeeID string, year int, month time.Month) (*SeedResult, error) {
	result := &SeedResult{EmployeeID: employeeID, Year: year, Month: month}

	tmpl, ok := r.shifts.Lookup(employeeID)
	if !ok {
		r.logger.Debug("No default shift, skipping seed",
			zap.String("employee_id", employeeID))
		return result, nil
	}

	existing, err := r.repo.ListMonth(ctx, employeeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list month records: %w", err)
	}

	for _, date := range dateutil.MonthDates(year, month, r.loc) {
		day := date.Day()

		if _, ok := existing[day]; ok {
			result.Existing = append(result.Existing, day)
			continue
		}

		if shift.ShouldSkip(date, tmpl.Policy, r.calendar.IsHoliday) {
			result.Skipped = append(result.Skipped, day)
			continue
		}

		record := &Record{
			EmployeeID:            employeeID,
			Date:                  date,
			ScheduledStart:        TimePtr(tmpl.Start.On(date)),
			ScheduledEnd:          TimePtr(tmpl.End.On(date)),
			ScheduledBreakMinutes: IntPtr(DefaultBreakMinutes),
		}

		// A row created since ListMonth makes this a no-op.
		inserted, err := r.repo.InsertIfAbsent(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", dateutil.FormatDate(date), err)
		}
		if inserted {
			result.Seeded = append(result.Seeded, day)
		} else {
			result.Existing = append(result.Existing, day)
		}
	}

	if result.Changed() {
		r.logger.Info("Seeded scheduled hours",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Int("seeded", len(result.Seeded)),
			zap.Int("existing", len(result.Existing)),
			zap.Int("skipped", len(result.Skipped)))
	}

	return result, nil
}
