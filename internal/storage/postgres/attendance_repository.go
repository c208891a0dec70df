package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/username/staff-attendance/internal/attendance"
)

const dateLayout = "2006-01-02"

const attendanceColumns = `employee_id, date,
	scheduled_start_time, scheduled_end_time, scheduled_break_duration,
	start_time, end_time, break_duration, manual_work_time,
	leave_type, note, work_tag`

const attendanceValues = `$1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12`

const (
	getAttendanceQuery = `SELECT ` + attendanceColumns + ` FROM attendance WHERE employee_id = $1 AND date = $2::date`

	listAttendanceQuery = `SELECT ` + attendanceColumns + ` FROM attendance
	 WHERE employee_id = $1 AND date >= $2::date AND date < $3::date
	 ORDER BY date`

	upsertAttendanceQuery = `INSERT INTO attendance (` + attendanceColumns + `) VALUES (` + attendanceValues + `)
	 ON CONFLICT (employee_id, date) DO UPDATE SET
		scheduled_start_time = EXCLUDED.scheduled_start_time,
		scheduled_end_time = EXCLUDED.scheduled_end_time,
		scheduled_break_duration = EXCLUDED.scheduled_break_duration,
		start_time = EXCLUDED.start_time,
		end_time = EXCLUDED.end_time,
		break_duration = EXCLUDED.break_duration,
		manual_work_time = EXCLUDED.manual_work_time,
		leave_type = EXCLUDED.leave_type,
		note = EXCLUDED.note,
		work_tag = EXCLUDED.work_tag`

	insertAttendanceIfAbsentQuery = `INSERT INTO attendance (` + attendanceColumns + `) VALUES (` + attendanceValues + `)
	 ON CONFLICT (employee_id, date) DO NOTHING`
)

// AttendanceRepository implements attendance.Repository on PostgreSQL.
// Timestamps are stored as wall clock in the business location.
type AttendanceRepository struct {
	pool Queryer
	loc  *time.Location
}

// NewAttendanceRepository creates an AttendanceRepository
func NewAttendanceRepository(pool Queryer, loc *time.Location) *AttendanceRepository {
	return &AttendanceRepository{pool: pool, loc: loc}
}

var _ attendance.Repository = (*AttendanceRepository)(nil)

// Get returns the record for the employee and date
func (r *AttendanceRepository) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	exec := QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, getAttendanceQuery, employeeID, date.Format(dateLayout))

	rec, err := r.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, attendance.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return rec, nil
}

// ListMonth returns the month's records keyed by day
func (r *AttendanceRepository) ListMonth(ctx context.Context, employeeID string, year int, month time.Month) (map[int]*attendance.Record, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	records, err := r.list(ctx, employeeID, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	out := make(map[int]*attendance.Record, len(records))
	for _, rec := range records {
		out[rec.Date.Day()] = rec
	}
	return out, nil
}

// ListYear returns the year's records ordered by date
func (r *AttendanceRepository) ListYear(ctx context.Context, employeeID string, year int) ([]*attendance.Record, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return r.list(ctx, employeeID, from, from.AddDate(1, 0, 0))
}

func (r *AttendanceRepository) list(ctx context.Context, employeeID string, from, to time.Time) ([]*attendance.Record, error) {
	exec := QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, listAttendanceQuery, employeeID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var out []*attendance.Record
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return out, nil
}

// Upsert writes every column of the record
func (r *AttendanceRepository) Upsert(ctx context.Context, rec *attendance.Record) error {
	exec := QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, upsertAttendanceQuery, attendanceArgs(rec)...); err != nil {
		return fmt.Errorf("failed to upsert attendance record: %w", err)
	}
	return nil
}

// InsertIfAbsent inserts the record unless one exists for the key
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, rec *attendance.Record) (bool, error) {
	exec := QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, insertAttendanceIfAbsentQuery, attendanceArgs(rec)...)
	if err != nil {
		return false, fmt.Errorf("failed to insert attendance record: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AttendanceRepository) scan(row pgx.Row) (*attendance.Record, error) {
	var (
		rec                              attendance.Record
		date                             time.Time
		schedStart, schedEnd, start, end sql.NullTime
		schedBreak, breakMin, manualMin  sql.NullInt64
		leave, note, workTag             sql.NullString
	)

	if err := row.Scan(
		&rec.EmployeeID, &date,
		&schedStart, &schedEnd, &schedBreak,
		&start, &end, &breakMin, &manualMin,
		&leave, &note, &workTag,
	); err != nil {
		return nil, err
	}

	rec.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, r.loc)
	rec.ScheduledStart = r.inLocation(schedStart)
	rec.ScheduledEnd = r.inLocation(schedEnd)
	rec.ScheduledBreakMinutes = nullableInt(schedBreak)
	rec.ActualStart = r.inLocation(start)
	rec.ActualEnd = r.inLocation(end)
	rec.ActualBreakMinutes = nullableInt(breakMin)
	rec.ManualWorkMinutes = nullableInt(manualMin)
	rec.LeaveType = attendance.LeaveType(leave.String)
	rec.Note = note.String
	rec.WorkTag = workTag.String

	return &rec, nil
}

// inLocation relabels a TIMESTAMP wall clock into the business location
func (r *AttendanceRepository) inLocation(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	local := time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), r.loc)
	return &local
}

func attendanceArgs(rec *attendance.Record) []any {
	return []any{
		rec.EmployeeID,
		rec.Date.Format(dateLayout),
		wallClock(rec.ScheduledStart),
		wallClock(rec.ScheduledEnd),
		nullableIntArg(rec.ScheduledBreakMinutes),
		wallClock(rec.ActualStart),
		wallClock(rec.ActualEnd),
		nullableIntArg(rec.ActualBreakMinutes),
		nullableIntArg(rec.ManualWorkMinutes),
		nullableString(string(rec.LeaveType)),
		nullableString(rec.Note),
		nullableString(rec.WorkTag),
	}
}

// wallClock drops the zone so TIMESTAMP columns keep local wall time
func wallClock(t *time.Time) any {
	if t == nil {
		return nil
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func nullableIntArg(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
