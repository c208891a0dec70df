package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/staff-attendance/internal/annualplan"
	"github.com/username/staff-attendance/internal/attendance"
	"github.com/username/staff-attendance/internal/config"
	"github.com/username/staff-attendance/internal/employee"
	"github.com/username/staff-attendance/internal/storage/postgres"
	"github.com/username/staff-attendance/internal/storage/sqlite"
)

// Backend bundles the repositories of one database
type Backend struct {
	Attendance attendance.Repository
	Employees  employee.Repository
	Plans      annualplan.Repository
	Tx         attendance.TransactionManager

	close func() error
}

// Close releases the database
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to the configured driver. PostgreSQL schemas are migrated up first.
func Open(ctx context.Context, cfg config.StorageConfig, loc *time.Location, logger *zap.Logger) (*Backend, error) {
	switch cfg.Driver {
	case "sqlite":
		store, err := sqlite.Open(cfg.SQLitePath, loc, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Attendance: store.Attendance(),
			Employees:  store.Employees(),
			Plans:      store.Plans(),
			Tx:         store,
			close:      store.Close,
		}, nil

	case "postgres":
		if err := postgres.MigrateUp(cfg.Postgres.DSN(), logger); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		logger.Info("Connected to PostgreSQL",
			zap.String("host", cfg.Postgres.Host),
			zap.String("database", cfg.Postgres.Name))

		return &Backend{
			Attendance: postgres.NewAttendanceRepository(pool, loc),
			Employees:  postgres.NewEmployeeRepository(pool),
			Plans:      postgres.NewPlanRepository(pool),
			Tx:         postgres.NewTransactionManager(pool),
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
