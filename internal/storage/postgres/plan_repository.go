package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/username/staff-attendance/internal/annualplan"
)

const (
	setPlanQuery = `INSERT INTO annual_plans (employee_id, year, annual_hours) VALUES ($1, $2, $3)
	 ON CONFLICT (employee_id, year) DO UPDATE SET annual_hours = EXCLUDED.annual_hours`

	getPlanQuery = `SELECT annual_hours FROM annual_plans WHERE employee_id = $1 AND year = $2`

	listPlansQuery = `SELECT employee_id, year, annual_hours FROM annual_plans WHERE year = $1 ORDER BY employee_id`
)

// PlanRepository implements annualplan.Repository on PostgreSQL
type PlanRepository struct {
	pool Queryer
}

// NewPlanRepository creates a PlanRepository
func NewPlanRepository(pool Queryer) *PlanRepository {
	return &PlanRepository{pool: pool}
}

var _ annualplan.Repository = (*PlanRepository)(nil)

// Set inserts or replaces the plan
func (r *PlanRepository) Set(ctx context.Context, p annualplan.Plan) error {
	exec := QueryerFromContext(ctx, r.pool)
	if _, err := exec.Exec(ctx, setPlanQuery, p.EmployeeID, p.Year, p.AnnualHours); err != nil {
		return fmt.Errorf("failed to set annual plan: %w", err)
	}
	return nil
}

// Get returns the plan for the employee and year
func (r *PlanRepository) Get(ctx context.Context, employeeID string, year int) (*annualplan.Plan, error) {
	p := annualplan.Plan{EmployeeID: employeeID, Year: year}
	exec := QueryerFromContext(ctx, r.pool)
	err := exec.QueryRow(ctx, getPlanQuery, employeeID, year).Scan(&p.AnnualHours)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, annualplan.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get annual plan: %w", err)
	}
	return &p, nil
}

// ListByYear returns every plan for the year ordered by employee
func (r *PlanRepository) ListByYear(ctx context.Context, year int) ([]annualplan.Plan, error) {
	exec := QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, listPlansQuery, year)
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
