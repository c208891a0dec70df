package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMinYear = 2024
	DefaultMaxYear = 2030
)

// Options tune the attendance service
type Options struct {
	// WorkTag is stamped on records created by clock-in
	WorkTag string
	MinYear int
	MaxYear int
}

// Service implements the attendance use cases: clocking, the monthly grid and
// yearly summaries.
type Service struct {
	repo       Repository
	reconciler *Reconciler
	aggregator *Aggregator
	clock      Clock
	tx         TransactionManager
	opts       Options
	logger     *zap.Logger
}

// NewService creates a new attendance service
func NewService(
	repo Repository,
	reconciler *Reconciler,
	aggregator *Aggregator,
	clock Clock,
	tx TransactionManager,
	opts Options,
	logger *zap.Logger,
) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if opts.MinYear == 0 {
		opts.MinYear = DefaultMinYear
	}
	if opts.MaxYear == 0 {
		opts.MaxYear = DefaultMaxYear
	}
	return &Service{
		repo:       repo,
		reconciler: reconciler,
		aggregator: aggregator,
		clock:      clock,
		tx:         tx,
		opts:       opts,
		logger:     logger,
	}
}

// Location returns the business timezone
func (s *Service) Location() *time.Location {
	return s.aggregator.loc
}

// CurrentDate returns the current business date
func (s *Service) CurrentDate() time.Time {
	return BusinessDate(s.clock.Now(), s.Location())
}

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.Location()).Truncate(time.Second)
}

// ClockIn stamps the actual start on today's record, creating the record if needed
func (s *Service) ClockIn(ctx context.Context, employeeID string) (*Record, error) {
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	now := s.now()
	date := BusinessDate(now, s.Location())

	var out *Record
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.repo.Get(ctx, employeeID, date)
		switch {
		case errors.Is(err, ErrRecordNotFound):
			rec = &Record{EmployeeID: employeeID, Date: date, WorkTag: s.opts.WorkTag}
		case err != nil:
			return fmt.Errorf("failed to load today's record: %w", err)
		case rec.ActualStart != nil:
			return ErrAlreadyClockedIn
		}

		rec.ActualStart = TimePtr(now)
		if err := s.repo.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("failed to save clock-in: %w", err)
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clocked in",
		zap.String("employee_id", employeeID),
		zap.Time("at", now))

	return out, nil
}

// ClockOut stamps the actual end on today's record with the default break
func (s *Service) ClockOut(ctx context.Context, employeeID string) (*Record, error) {
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	now := s.now()
	date := BusinessDate(now, s.Location())

	var out *Record
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.repo.Get(ctx, employeeID, date)
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return ErrNotClockedIn
		case err != nil:
			return fmt.Errorf("failed to load today's record: %w", err)
		case rec.ActualStart == nil:
			return ErrNotClockedIn
		case rec.ActualEnd != nil:
			return ErrAlreadyClockedOut
		}

		rec.ActualEnd = TimePtr(now)
		rec.ActualBreakMinutes = IntPtr(DefaultBreakMinutes)
		if err := s.repo.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("failed to save clock-out: %w", err)
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clocked out",
		zap.String("employee_id", employeeID),
		zap.Time("at", now))

	return out, nil
}

// Today returns today's record, if any, and the clock state
func (s *Service) Today(ctx context.Context, employeeID string) (*TodayRecord, error) {
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	rec, err := s.repo.Get(ctx, employeeID, s.CurrentDate())
	if errors.Is(err, ErrRecordNotFound) {
		return &TodayRecord{Status: StatusNotStarted}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load today's record: %w", err)
	}

	return &TodayRecord{Record: rec, Status: StatusOf(rec)}, nil
}

// ResetToday clears every field of today's record
func (s *Service) ResetToday(ctx context.Context, employeeID string) error {
	if employeeID == "" {
		return ErrInvalidEmployeeID
	}

	date := s.CurrentDate()
	if err := s.repo.Upsert(ctx, &Record{EmployeeID: employeeID, Date: date}); err != nil {
		return fmt.Errorf("failed to reset today's record: %w", err)
	}

	s.logger.Info("Reset today's record",
		zap.String("employee_id", employeeID),
		zap.Time("date", date))

	return nil
}

// ViewMonth seeds the month from the default shift, then builds the grid
func (s *Service) ViewMonth(ctx context.Context, employeeID string, year int, month time.Month, edits *EditState) (*MonthView, *SeedResult, error) {
	if err := s.validate(employeeID, year, month); err != nil {
		return nil, nil, err
	}
	if err := edits.Validate(year, month); err != nil {
		return nil, nil, err
	}

	seed, err := s.reconciler.SeedMonth(ctx, employeeID, year, month)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to seed month: %w", err)
	}

	view, err := s.buildView(ctx, employeeID, year, month, edits)
	if err != nil {
		return nil, nil, err
	}

	return view, seed, nil
}

// PreviewMonth recomputes the grid with edits applied, without writing anything
func (s *Service) PreviewMonth(ctx context.Context, employeeID string, year int, month time.Month, edits *EditState) (*MonthView, error) {
	if err := s.validate(employeeID, year, month); err != nil {
		return nil, err
	}
	if err := edits.Validate(year, month); err != nil {
		return nil, err
	}
	return s.buildView(ctx, employeeID, year, month, edits)
}

// SaveMonth overwrites every day of the month with the edited grid and
// returns the grid as persisted.
func (s *Service) SaveMonth(ctx context.Context, employeeID string, year int, month time.Month, edits *EditState) (*MonthView, error) {
	if err := s.validate(employeeID, year, month); err != nil {
		return nil, err
	}
	if err := edits.Validate(year, month); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		view, err := s.buildView(ctx, employeeID, year, month, edits)
		if err != nil {
			return err
		}

		records, err := s.aggregator.BuildRecords(employeeID, year, month, view)
		if err != nil {
			return err
		}

		for _, rec := range records {
			if err := s.repo.Upsert(ctx, rec); err != nil {
				return fmt.Errorf("failed to save day %d: %w", rec.Date.Day(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Saved month",
		zap.String("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("month", int(month)))

	return s.buildView(ctx, employeeID, year, month, nil)
}

// YearBreakdown summarizes each month of the year from stored records
func (s *Service) YearBreakdown(ctx context.Context, employeeID string, year int) ([]MonthSummary, error) {
	if err := s.validate(employeeID, year, time.January); err != nil {
		return nil, err
	}

	records, err := s.repo.ListYear(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list year records: %w", err)
	}

	return s.aggregator.Summarize(records), nil
}

func (s *Service) buildView(ctx context.Context, employeeID string, year int, month time.Month, edits *EditState) (*MonthView, error) {
	records, err := s.repo.ListMonth(ctx, employeeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list month records: %w", err)
	}
	return s.aggregator.BuildMonthView(employeeID, year, month, records, edits), nil
}

func (s *Service) validate(employeeID string, year int, month time.Month) error {
	if employeeID == "" {
		return ErrInvalidEmployeeID
	}
	if month < time.January || month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if year < s.opts.MinYear || year > s.opts.MaxYear {
		return fmt.Errorf("%w: year %d outside %d-%d", ErrInvalidPeriod, year, s.opts.MinYear, s.opts.MaxYear)
	}
	return nil
}
