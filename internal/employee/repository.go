package employee

import "context"

// Repository persists the roster
type Repository interface {
	// FindByID returns ErrEmployeeNotFound when absent
	FindByID(ctx context.Context, id string) (*Employee, error)
	// CreateIfAbsent inserts e unless the ID exists and reports whether it did
	CreateIfAbsent(ctx context.Context, e *Employee) (bool, error)
	List(ctx context.Context) ([]*Employee, error)
}
