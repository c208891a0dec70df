package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/username/staff-attendance/internal/employee"
)

const (
	employeeColumns = `id, display_name, department, role, password_hash, created_at`

	findEmployeeQuery = `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	createEmployeeIfAbsentQuery = `INSERT INTO employees (` + employeeColumns + `)
	 VALUES ($1, $2, $3, $4, $5, $6)
	 ON CONFLICT (id) DO NOTHING`

	listEmployeesQuery = `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at, id`
)

// EmployeeRepository implements employee.Repository on PostgreSQL
type EmployeeRepository struct {
	pool Queryer
}

// NewEmployeeRepository creates an EmployeeRepository
func NewEmployeeRepository(pool Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

var _ employee.Repository = (*EmployeeRepository)(nil)

// FindByID returns the employee with the given ID
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := QueryerFromContext(ctx, r.pool)
	e, err := scanEmployee(exec.QueryRow(ctx, findEmployeeQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, employee.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return e, nil
}

// CreateIfAbsent inserts the employee unless the ID is taken
func (r *EmployeeRepository) CreateIfAbsent(ctx context.Context, e *employee.Employee) (bool, error) {
	exec := QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, createEmployeeIfAbsentQuery,
		e.ID, e.DisplayName, e.Department, string(e.Role), e.PasswordHash, e.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create employee: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// List returns all employees ordered by creation
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	exec := QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, listEmployeesQuery)
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

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e    employee.Employee
		role string
	)
	if err := row.Scan(&e.ID, &e.DisplayName, &e.Department, &role, &e.PasswordHash, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Role = employee.Role(role)
	return &e, nil
}
