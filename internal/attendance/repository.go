package attendance

import (
	"context"
	"time"
)

// Repository persists attendance records keyed by (employee, date)
type Repository interface {
	// Get returns ErrRecordNotFound when no row exists
	Get(ctx context.Context, employeeID string, date time.Time) (*Record, error)
	// ListMonth returns the month's records keyed by day of month
	ListMonth(ctx context.Context, employeeID string, year int, month time.Month) (map[int]*Record, error)
	ListYear(ctx context.Context, employeeID string, year int) ([]*Record, error)
	// Upsert writes every field; absent fields clear stored values
	Upsert(ctx context.Context, record *Record) error
	// InsertIfAbsent inserts only when no row exists for the key, atomically.
	// It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, record *Record) (bool, error)
}

// TransactionManager runs fn inside a storage transaction carried by ctx
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
