package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/staff-attendance/internal/attendance"
	"github.com/username/staff-attendance/internal/export"
	"github.com/username/staff-attendance/internal/httpapi"
	"github.com/username/staff-attendance/internal/server"
	"github.com/username/staff-attendance/internal/storage/postgres"
	"github.com/username/staff-attendance/pkg/dateutil"
	"go.uber.org/zap"
)

func parseMonthFlag(s string) (int, time.Month, error) {
	return dateutil.ParseMonth(s)
}

func requireEmployee(id string) error {
	if id == "" {
		return errors.New("--employee is required")
	}
	return nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateForServe(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx := context.Background()
			a, err := initializeApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			tokens := httpapi.NewTokenService(cfg.Server.JWTSecret, cfg.Server.GetTokenTTL())
			handler := httpapi.NewHandler(a.attendance, a.plans, a.backend.Employees, a.auth, tokens, logger)
			router := httpapi.NewRouter(handler, cfg.Server.AllowedOrigins, logger)

			srv := server.New(cfg.Server.ListenAddr, router, cfg.Server.GetShutdownTimeout(), logger)
			return srv.Run(ctx)
		},
	}
}

func seedCmd() *cobra.Command {
	var employeeID, month string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a month with scheduled hours from default shifts",
		Long:  "Seed a month for one employee, or for every roster member when --employee is omitted. Existing days are never touched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				year, mon, err := monthOrCurrent(month, a.attendance)
				if err != nil {
					return err
				}

				ids := []string{employeeID}
				if employeeID == "" {
					ids = ids[:0]
					for _, m := range a.cfg.Members() {
						ids = append(ids, m.ID)
					}
				}

				for _, id := range ids {
					result, err := a.reconciler.SeedMonth(ctx, id, year, mon)
					if err != nil {
						return fmt.Errorf("failed to seed %s: %w", id, err)
					}
					renderSeedResult(out, result)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID (default: all roster members)")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	return cmd
}

func clockInCmd() *cobra.Command {
	var employeeID string

	cmd := &cobra.Command{
		Use:   "clock-in",
		Short: "Record the start of today's work",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEmployee(employeeID); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				rec, err := a.attendance.ClockIn(ctx, employeeID)
				if err != nil {
					return err
				}
				outPrintf("✅ %s clocked in at %s\n", employeeID, rec.ActualStart.Format("15:04"))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID")
	return cmd
}

func clockOutCmd() *cobra.Command {
	var employeeID string

	cmd := &cobra.Command{
		Use:   "clock-out",
		Short: "Record the end of today's work",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEmployee(employeeID); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				rec, err := a.attendance.ClockOut(ctx, employeeID)
				if err != nil {
					return err
				}
				outPrintf("✅ %s clocked out at %s\n", employeeID, rec.ActualEnd.Format("15:04"))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID")
	return cmd
}

func statusCmd() *cobra.Command {
	var employeeID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's clock state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEmployee(employeeID); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				today, err := a.attendance.Today(ctx, employeeID)
				if err != nil {
					return err
				}
				renderToday(out, employeeID, a.attendance.CurrentDate(), today)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID")
	return cmd
}

func resetTodayCmd() *cobra.Command {
	var employeeID string

	cmd := &cobra.Command{
		Use:   "reset-today",
		Short: "Clear every field of today's record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEmployee(employeeID); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.attendance.ResetToday(ctx, employeeID); err != nil {
					return err
				}
				outPrintf("🔄 Today's record for %s was reset\n", employeeID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID")
	return cmd
}

func monthCmd() *cobra.Command {
	var employeeID, month, format string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Show a month's timesheet (seeding it first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEmployee(employeeID); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				year, mon, err := monthOrCurrent(month, a.attendance)
				if err != nil {
					return err
				}

				view, _, err := a.attendance.ViewMonth(ctx, employeeID, year, mon, nil)
				if err != nil {
					return err
				}

				if format == "table" {
					renderMonthTable(out, view)
					return nil
				}
				return writeStructured(out, format, view)
			})
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	return cmd
}

func exportCmd() *cobra.Command {
	var employeeID, month, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a month's timesheet as xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireEmployee(employeeID); err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				year, mon, err := monthOrCurrent(month, a.attendance)
				if err != nil {
					return err
				}

				view, _, err := a.attendance.ViewMonth(ctx, employeeID, year, mon, nil)
				if err != nil {
					return err
				}

				displayName := employeeID
				if e, err := a.backend.Employees.FindByID(ctx, employeeID); err == nil {
					displayName = e.DisplayName
				}

				path := outPath
				if path == "" {
					path = fmt.Sprintf("attendance-%s-%04d-%02d.xlsx", employeeID, year, int(mon))
				}

				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", path, err)
				}
				defer f.Close()

				if err := export.WriteMonth(f, view, displayName); err != nil {
					return err
				}

				logger.Info("Timesheet exported",
					zap.String("employee_id", employeeID),
					zap.String("path", path))
				outPrintf("📄 Wrote %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID")
	cmd.Flags().StringVarP(&month, "month", "m", "", "Month as YYYY-MM (default: current month)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: attendance-<employee>-<YYYY>-<MM>.xlsx)")
	return cmd
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage annual target hours",
	}

	var year int

	setCmd := &cobra.Command{
		Use:   "set <employee> <hours>",
		Short: "Set an employee's annual target hours",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid hours %q: %w", args[1], err)
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if _, err := a.backend.Employees.FindByID(ctx, args[0]); err != nil {
					return err
				}
				if err := a.plans.Set(ctx, args[0], yearOrCurrent(year, a.attendance), hours); err != nil {
					return err
				}
				outPrintf("✅ Plan for %s set to %dh\n", args[0], hours)
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "List every plan of the year",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				y := yearOrCurrent(year, a.attendance)
				plans, err := a.plans.ListYear(ctx, y)
				if err != nil {
					return err
				}
				renderPlans(out, y, plans)
				return nil
			})
		},
	}

	progressCmd := &cobra.Command{
		Use:   "progress <employee>",
		Short: "Compare a year's actual hours with the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				progress, err := a.plans.Progress(ctx, args[0], yearOrCurrent(year, a.attendance))
				if err != nil {
					return err
				}
				renderProgress(out, progress)
				return nil
			})
		},
	}

	cmd.PersistentFlags().IntVarP(&year, "year", "y", 0, "Year (default: current year)")
	cmd.AddCommand(setCmd, showCmd, progressCmd)
	return cmd
}

func yearOrCurrent(year int, svc *attendance.Service) int {
	if year != 0 {
		return year
	}
	return svc.CurrentDate().Year()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|drop|version]",
		Short:     "Apply PostgreSQL schema migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "drop", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) > 0 {
				action = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate requires storage.driver postgres, got %q", cfg.Storage.Driver)
			}

			m, err := postgres.NewMigrator(cfg.Storage.Postgres.DSN())
			if err != nil {
				return err
			}
			defer m.Close()

			if err := postgres.RunMigration(m, action, logger); err != nil {
				return fmt.Errorf("migration %s failed: %w", action, err)
			}
			return nil
		},
	}
}
