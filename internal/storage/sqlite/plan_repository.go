package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/staff-attendance/internal/annualplan"
)

// PlanRepository implements annualplan.Repository
type PlanRepository struct {
	store *Store
}

// Plans returns the annual plan repository
func (s *Store) Plans() *PlanRepository {
	return &PlanRepository{store: s}
}

var _ annualplan.Repository = (*PlanRepository)(nil)

// Set inserts or replaces the plan
func (r *PlanRepository) Set(ctx context.Context, p annualplan.Plan) error {
	_, err := r.store.queryer(ctx).ExecContext(ctx,
		`INSERT INTO annual_plans (employee_id, year, annual_hours) VALUES (?, ?, ?)
		 ON CONFLICT (employee_id, year) DO UPDATE SET annual_hours = excluded.annual_hours`,
		p.EmployeeID, p.Year, p.AnnualHours)
	if err != nil {
		return fmt.Errorf("failed to set annual plan: %w", err)
	}
	return nil
}

// Get returns the plan for the employee and year
func (r *PlanRepository) Get(ctx context.Context, employeeID string, year int) (*annualplan.Plan, error) {
	p := annualplan.Plan{EmployeeID: employeeID, Year: year}
	err := r.store.queryer(ctx).QueryRowContext(ctx,
		`SELECT annual_hours FROM annual_plans WHERE employee_id = ? AND year = ?`,
		employeeID, year).Scan(&p.AnnualHours)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, annualplan.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get annual plan: %w", err)
	}
	return &p, nil
}

// ListByYear returns every plan for the year ordered by employee
func (r *PlanRepository) ListByYear(ctx context.Context, year int) ([]annualplan.Plan, error) {
	rows, err := r.store.queryer(ctx).QueryContext(ctx,
		`SELECT employee_id, year, annual_hours FROM annual_plans WHERE year = ? ORDER BY employee_id`,
		year)
	if err != nil {
		return nil, fmt.Errorf("failed to list annual plans: %w", err)
	}
	defer rows.Close()

	var out []annualplan.Plan
	for rows.Next() {
		var p annualplan.Plan
		if err := rows.Scan(&p.EmployeeID, &p.Year, &p.AnnualHours); err != nil {
			return nil, fmt.Errorf("failed to scan annual plan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate annual plans: %w", err)
	}
	return out, nil
}
