package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/staff-attendance/internal/annualplan"
	"github.com/username/staff-attendance/internal/attendance"
	"github.com/username/staff-attendance/internal/calendar"
	"github.com/username/staff-attendance/internal/config"
	"github.com/username/staff-attendance/internal/employee"
	"github.com/username/staff-attendance/internal/shift"
	"github.com/username/staff-attendance/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
	out        io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "staff-attendance",
		Short: "Staff attendance tracker",
		Long:  "Clock-in/out, monthly timesheets with default shifts and holidays, and annual hour plans",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: search ., $HOME/.staff-attendance, /etc/staff-attendance)")

	rootCmd.AddCommand(
		serveCmd(),
		seedCmd(),
		clockInCmd(),
		clockOutCmd(),
		statusCmd(),
		resetTodayCmd(),
		monthCmd(),
		exportCmd(),
		planCmd(),
		migrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired services for one command run
type app struct {
	cfg        *config.Config
	backend    *storage.Backend
	reconciler *attendance.Reconciler
	attendance *attendance.Service
	plans      *annualplan.Service
	auth       *employee.Authenticator
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		logger.Warn("Failed to close storage", zap.Error(err))
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func initializeApp(ctx context.Context, cfg *config.Config) (*app, error) {
	loc := cfg.App.Location()

	backend, err := storage.Open(ctx, cfg.Storage, loc, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	created, err := employee.Bootstrap(ctx, backend.Employees, cfg.Members())
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if created > 0 {
		logger.Info("Roster members created", zap.Int("count", created))
	}

	// Initialize calendar
	cal, err := calendar.New(cfg.Calendar.ExtraHolidaysFile, logger)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	templates, err := cfg.ShiftTemplates()
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	reconciler := attendance.NewReconciler(backend.Attendance, cal, shift.NewRegistry(templates), loc, logger)
	svc := attendance.NewService(
		backend.Attendance,
		reconciler,
		attendance.NewAggregator(cal, loc),
		attendance.NewFixedOffsetClock(cfg.App.UTCOffsetHours),
		backend.Tx,
		attendance.Options{
			WorkTag: cfg.App.WorkTag,
			MinYear: cfg.App.MinYear,
			MaxYear: cfg.App.MaxYear,
		},
		logger,
	)

	return &app{
		cfg:        cfg,
		backend:    backend,
		reconciler: reconciler,
		attendance: svc,
		plans:      annualplan.NewService(backend.Plans, svc, logger),
		auth:       employee.NewAuthenticator(backend.Employees, logger),
	}, nil
}

// withApp loads config, wires the services and runs fn
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := initializeApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     90, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}

func outPrintf(format string, a ...interface{}) {
	fmt.Fprintf(out, format, a...)
}

// monthOrCurrent parses a YYYY-MM flag, defaulting to the current business month
func monthOrCurrent(s string, svc *attendance.Service) (int, time.Month, error) {
	if s == "" {
		today := svc.CurrentDate()
		return today.Year(), today.Month(), nil
	}
	return parseMonthFlag(s)
}
