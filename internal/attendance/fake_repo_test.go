package attendance

import (
	"context"
	"sync"
	"time"

	"github.com/username/staff-attendance/pkg/dateutil"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[string]*Record
	writes  int
	// beforeInsert runs inside InsertIfAbsent before the existence check
	beforeInsert func(r *fakeRecordRepo, rec *Record)
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]*Record)}
}

func recordKey(employeeID string, date time.Time) string {
	return employeeID + "|" + dateutil.FormatDate(date)
}

func (r *fakeRecordRepo) put(rec *Record) {
	r.records[recordKey(rec.EmployeeID, rec.Date)] = rec.Clone()
}

func (r *fakeRecordRepo) Get(_ context.Context, employeeID string, date time.Time) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[recordKey(employeeID, date)]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (r *fakeRecordRepo) ListMonth(_ context.Context, employeeID string, year int, month time.Month) (map[int]*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int]*Record)
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Date.Year() == year && rec.Date.Month() == month {
			out[rec.Date.Day()] = rec.Clone()
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) ListYear(_ context.Context, employeeID string, year int) ([]*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Record
	for _, rec := range r.records {
		if rec.EmployeeID == employeeID && rec.Date.Year() == year {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) Upsert(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writes++
	r.put(rec)
	return nil
}

func (r *fakeRecordRepo) InsertIfAbsent(_ context.Context, rec *Record) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.beforeInsert != nil {
		r.beforeInsert(r, rec)
	}
	if _, ok := r.records[recordKey(rec.EmployeeID, rec.Date)]; ok {
		return false, nil
	}
	r.writes++
	r.put(rec)
	return true, nil
}
