package annualplan

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/staff-attendance/internal/attendance"
)

type fakePlanRepo struct {
	plans map[string]Plan
}

func planKey(employeeID string, year int) string {
	return fmt.Sprintf("%s|%d", employeeID, year)
}

func (r *fakePlanRepo) Set(_ context.Context, p Plan) error {
	r.plans[planKey(p.EmployeeID, p.Year)] = p
	return nil
}

func (r *fakePlanRepo) Get(_ context.Context, employeeID string, year int) (*Plan, error) {
	p, ok := r.plans[planKey(employeeID, year)]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return &p, nil
}

func (r *fakePlanRepo) ListByYear(_ context.Context, year int) ([]Plan, error) {
	var out []Plan
	for _, p := range r.plans {
		if p.Year == year {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeSummarizer struct {
	months []attendance.MonthSummary
}

func (f fakeSummarizer) YearBreakdown(_ context.Context, _ string, _ int) ([]attendance.MonthSummary, error) {
	return f.months, nil
}

func newTestService() (*Service, *fakePlanRepo) {
	repo := &fakePlanRepo{plans: make(map[string]Plan)}
	summary := fakeSummarizer{months: []attendance.MonthSummary{
		{Month: 1, ActualHours: 120.5},
		{Month: 2, ActualHours: 100},
	}}
	return NewService(repo, summary, zap.NewNop()), repo
}

func TestSetAndListYear(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	require.NoError(t, svc.Set(ctx, "古賀", 2025, 1800))
	require.NoError(t, svc.Set(ctx, "森岡", 2025, 1600))
	require.NoError(t, svc.Set(ctx, "古賀", 2024, 1700))
	require.NoError(t, svc.Set(ctx, "古賀", 2025, 1850))

	plans, err := svc.ListYear(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"古賀": 1850, "森岡": 1600}, plans)
}

func TestSet_Validation(t *testing.T) {
	svc, _ := newTestService()

	assert.ErrorIs(t, svc.Set(context.Background(), "古賀", 2025, -1), ErrInvalidHours)
	assert.ErrorIs(t, svc.Set(context.Background(), "", 2025, 10), ErrInvalidTarget)
}

func TestProgress(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	p, err := svc.Progress(ctx, "古賀", 2025)
	require.NoError(t, err)
	assert.False(t, p.HasPlan)
	assert.InDelta(t, 220.5, p.ActualHours, 1e-9)
	assert.InDelta(t, -220.5, p.Remaining, 1e-9)

	require.NoError(t, svc.Set(ctx, "古賀", 2025, 1800))
	p, err = svc.Progress(ctx, "古賀", 2025)
	require.NoError(t, err)
	assert.True(t, p.HasPlan)
	assert.InDelta(t, 1800.0, p.TargetHours, 1e-9)
	assert.InDelta(t, 1579.5, p.Remaining, 1e-9)
	assert.Len(t, p.Months, 2)
}
