package calendar

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CompositeCalendar merges a primary calendar with extra closures.
// A date is a holiday when either calendar says so; the name comes from the primary first.
type CompositeCalendar struct {
	primary Calendar
	extra   Calendar
	logger  *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, extra Calendar, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary: primary,
		extra:   extra,
		logger:  logger,
	}
}

// IsHoliday checks both calendars
func (cc *CompositeCalendar) IsHoliday(date time.Time) bool {
	_, ok := cc.HolidayName(date)
	return ok
}

// HolidayName returns the first known name for the date
func (cc *CompositeCalendar) HolidayName(date time.Time) (string, bool) {
	if name, ok := cc.primary.HolidayName(date); ok {
		return name, true
	}
	return cc.extra.HolidayName(date)
}

// GetMonthInfo returns calendar info for the entire month
func (cc *CompositeCalendar) GetMonthInfo(year int, month time.Month) MonthInfo {
	return describeMonth(year, month, cc.HolidayName)
}

// LoadExtra loads the extra calendar (if FileCalendar)
func (cc *CompositeCalendar) LoadExtra() error {
	if fc, ok := cc.extra.(*FileCalendar); ok {
		if err := fc.Load(); err != nil {
			return fmt.Errorf("failed to load extra holidays: %w", err)
		}
		cc.logger.Info("Extra holiday calendar loaded", zap.String("file", fc.filePath))
	}
	return nil
}

// New builds the calendar used by the application: the static table, plus the
// extra closures file when one is configured.
func New(extraHolidaysFile string, logger *zap.Logger) (Calendar, error) {
	static := NewStaticCalendar()
	if extraHolidaysFile == "" {
		return static, nil
	}

	cc := NewCompositeCalendar(static, NewFileCalendar(extraHolidaysFile, logger), logger)
	if err := cc.LoadExtra(); err != nil {
		return nil, err
	}
	return cc, nil
}
