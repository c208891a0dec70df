// Package annualplan tracks each employee's target working hours per year.
package annualplan

import (
	"context"
	"errors"
	"fmt"

	"github.com/username/staff-attendance/internal/attendance"
	"go.uber.org/zap"
)

var (
	ErrPlanNotFound  = errors.New("annualplan: not found")
	ErrInvalidHours  = errors.New("annualplan: invalid hours")
	ErrInvalidTarget = errors.New("annualplan: invalid employee or year")
)

// Plan is an employee's target hours for a year
type Plan struct {
	EmployeeID  string `json:"employee_id"`
	Year        int    `json:"year"`
	AnnualHours int    `json:"annual_hours"`
}

// Repository persists annual plans
type Repository interface {
	// Set inserts or replaces the plan
	Set(ctx context.Context, plan Plan) error
	// Get returns ErrPlanNotFound when absent
	Get(ctx context.Context, employeeID string, year int) (*Plan, error)
	ListByYear(ctx context.Context, year int) ([]Plan, error)
}

// YearSummarizer yields per-month totals for an employee's year
type YearSummarizer interface {
	YearBreakdown(ctx context.Context, employeeID string, year int) ([]attendance.MonthSummary, error)
}

// Progress compares actual hours against the plan. Remaining is negative on overage.
type Progress struct {
	EmployeeID  string                    `json:"employee_id"`
	Year        int                       `json:"year"`
	TargetHours float64                   `json:"target_hours"`
	ActualHours float64                   `json:"actual_hours"`
	Remaining   float64                   `json:"remaining_hours"`
	HasPlan     bool                      `json:"has_plan"`
	Months      []attendance.MonthSummary `json:"months"`
}

// Service manages annual plans
type Service struct {
	repo    Repository
	summary YearSummarizer
	logger  *zap.Logger
}

// NewService creates a new annual plan service
func NewService(repo Repository, summary YearSummarizer, logger *zap.Logger) *Service {
	return &Service{repo: repo, summary: summary, logger: logger}
}

// Set stores the target hours for an employee and year
func (s *Service) Set(ctx context.Context, employeeID string, year, hours int) error {
	if employeeID == "" || year <= 0 {
		return ErrInvalidTarget
	}
	if hours < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHours, hours)
	}

	if err := s.repo.Set(ctx, Plan{EmployeeID: employeeID, Year: year, AnnualHours: hours}); err != nil {
		return fmt.Errorf("failed to save annual plan: %w", err)
	}

	s.logger.Info("Annual plan set",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("hours", hours))

	return nil
}

// ListYear returns target hours keyed by employee ID
func (s *Service) ListYear(ctx context.Context, year int) (map[string]int, error) {
	plans, err := s.repo.ListByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list annual plans: %w", err)
	}

	out := make(map[string]int, len(plans))
	for _, p := range plans {
		out[p.EmployeeID] = p.AnnualHours
	}
	return out, nil
}

// Progress sums the year's actual hours and compares them with the plan.
// Without a plan the target is zero.
func (s *Service) Progress(ctx context.Context, employeeID string, year int) (*Progress, error) {
	months, err := s.summary.YearBreakdown(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize year: %w", err)
	}

	p := &Progress{EmployeeID: employeeID, Year: year, Months: months}
	for _, m := range months {
		p.ActualHours += m.ActualHours
	}

	plan, err := s.repo.Get(ctx, employeeID, year)
	switch {
	case errors.Is(err, ErrPlanNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load annual plan: %w", err)
	default:
		p.HasPlan = true
		p.TargetHours = float64(plan.AnnualHours)
	}

	p.Remaining = p.TargetHours - p.ActualHours
	return p, nil
}
