package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/staff-attendance/internal/attendance"
)

const attendanceColumns = `employee_id, date,
	scheduled_start_time, scheduled_end_time, scheduled_break_duration,
	start_time, end_time, break_duration, manual_work_time,
	leave_type, note, work_tag`

const attendancePlaceholders = `?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?`

// AttendanceRepository implements attendance.Repository
type AttendanceRepository struct {
	store *Store
}

// Attendance returns the attendance repository
func (s *Store) Attendance() *AttendanceRepository {
	return &AttendanceRepository{store: s}
}

var _ attendance.Repository = (*AttendanceRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *AttendanceRepository) scan(row rowScanner) (*attendance.Record, error) {
	var (
		rec                              attendance.Record
		date                             string
		schedStart, schedEnd, start, end sql.NullString
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

	d, err := time.ParseInLocation(dateLayout, date, r.store.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date %q: %w", date, err)
	}
	rec.Date = d

	for _, f := range []struct {
		src sql.NullString
		dst **time.Time
	}{
		{schedStart, &rec.ScheduledStart},
		{schedEnd, &rec.ScheduledEnd},
		{start, &rec.ActualStart},
		{end, &rec.ActualEnd},
	} {
		t, err := r.store.parseTimestamp(f.src)
		if err != nil {
			return nil, err
		}
		*f.dst = t
	}

	rec.ScheduledBreakMinutes = intPtr(schedBreak)
	rec.ActualBreakMinutes = intPtr(breakMin)
	rec.ManualWorkMinutes = intPtr(manualMin)
	rec.LeaveType = attendance.LeaveType(leave.String)
	rec.Note = note.String
	rec.WorkTag = workTag.String

	return &rec, nil
}

func (r *AttendanceRepository) args(rec *attendance.Record) []any {
	s := r.store
	return []any{
		rec.EmployeeID,
		rec.Date.Format(dateLayout),
		s.formatTimestamp(rec.ScheduledStart),
		s.formatTimestamp(rec.ScheduledEnd),
		nullInt(rec.ScheduledBreakMinutes),
		s.formatTimestamp(rec.ActualStart),
		s.formatTimestamp(rec.ActualEnd),
		nullInt(rec.ActualBreakMinutes),
		nullInt(rec.ManualWorkMinutes),
		nullString(string(rec.LeaveType)),
		nullString(rec.Note),
		nullString(rec.WorkTag),
	}
}

// Get returns the record for the employee and date
func (r *AttendanceRepository) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	row := r.store.queryer(ctx).QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance WHERE employee_id = ? AND date = ?`,
		employeeID, date.Format(dateLayout))

	rec, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
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
	rows, err := r.store.queryer(ctx).QueryContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance
		 WHERE employee_id = ? AND date >= ? AND date < ?
		 ORDER BY date`,
		employeeID, from.Format(dateLayout), to.Format(dateLayout))
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
	_, err := r.store.queryer(ctx).ExecContext(ctx,
		`INSERT INTO attendance (`+attendanceColumns+`) VALUES (`+attendancePlaceholders+`)
		 ON CONFLICT (employee_id, date) DO UPDATE SET
			scheduled_start_time = excluded.scheduled_start_time,
			scheduled_end_time = excluded.scheduled_end_time,
			scheduled_break_duration = excluded.scheduled_break_duration,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			break_duration = excluded.break_duration,
			manual_work_time = excluded.manual_work_time,
			leave_type = excluded.leave_type,
			note = excluded.note,
			work_tag = excluded.work_tag`,
		r.args(rec)...)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance record: %w", err)
	}
	return nil
}

// InsertIfAbsent inserts the record unless one exists for the key
func (r *AttendanceRepository) InsertIfAbsent(ctx context.Context, rec *attendance.Record) (bool, error) {
	res, err := r.store.queryer(ctx).ExecContext(ctx,
		`INSERT INTO attendance (`+attendanceColumns+`) VALUES (`+attendancePlaceholders+`)
		 ON CONFLICT (employee_id, date) DO NOTHING`,
		r.args(rec)...)
	if err != nil {
		return false, fmt.Errorf("failed to insert attendance record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}
