package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/username/staff-attendance/internal/employee"
)

// EmployeeRepository implements employee.Repository
type EmployeeRepository struct {
	store *Store
}

// Employees returns the employee repository
func (s *Store) Employees() *EmployeeRepository {
	return &EmployeeRepository{store: s}
}

var _ employee.Repository = (*EmployeeRepository)(nil)

const employeeColumns = `id, display_name, department, role, password_hash, created_at`

func scanEmployee(row rowScanner) (*employee.Employee, error) {
	var (
		e         employee.Employee
		role      string
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.DisplayName, &e.Department, &role, &e.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	e.Role = employee.Role(role)

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	e.CreatedAt = t
	return &e, nil
}

// FindByID returns the employee with the given ID
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	row := r.store.queryer(ctx).QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, employee.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return e, nil
}

// CreateIfAbsent inserts the employee unless the ID is taken
func (r *EmployeeRepository) CreateIfAbsent(ctx context.Context, e *employee.Employee) (bool, error) {
	res, err := r.store.queryer(ctx).ExecContext(ctx,
		`INSERT INTO employees (`+employeeColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		e.ID, e.DisplayName, e.Department, string(e.Role), e.PasswordHash,
		e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("failed to create employee: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// List returns all employees ordered by creation
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	rows, err := r.store.queryer(ctx).QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []*employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return out, nil
}
