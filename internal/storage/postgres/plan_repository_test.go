package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"

	"github.com/username/staff-attendance/internal/annualplan"
)

func TestPlanRepository(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewPlanRepository(mock)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(setPlanQuery)).
		WithArgs("古賀", 2025, 1800).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta(getPlanQuery)).
		WithArgs("古賀", 2025).
		WillReturnRows(pgxmock.NewRows([]string{"annual_hours"}).AddRow(1800))
	mock.ExpectQuery(regexp.QuoteMeta(getPlanQuery)).
		WithArgs("森岡", 2025).
		WillReturnRows(pgxmock.NewRows([]string{"annual_hours"}))
	mock.ExpectQuery(regexp.QuoteMeta(listPlansQuery)).
		WithArgs(2025).
		WillReturnRows(pgxmock.NewRows([]string{"employee_id", "year", "annual_hours"}).
			AddRow("古賀", 2025, 1800).
			AddRow("矢野", 2025, 1600))

	if err := repo.Set(ctx, annualplan.Plan{EmployeeID: "古賀", Year: 2025, AnnualHours: 1800}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	p, err := repo.Get(ctx, "古賀", 2025)
	if err != nil || p.AnnualHours != 1800 {
		t.Fatalf("Get = %+v, %v", p, err)
	}

	if _, err := repo.Get(ctx, "森岡", 2025); !errors.Is(err, annualplan.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}

	plans, err := repo.ListByYear(ctx, 2025)
	if err != nil || len(plans) != 2 {
		t.Fatalf("ListByYear = %+v, %v", plans, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
