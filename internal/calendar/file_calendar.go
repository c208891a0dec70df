package calendar

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// FileCalendar implements Calendar using a local text file of extra closures
type FileCalendar struct {
	filePath string
	logger   *zap.Logger
	data     map[string]string // key: "YYYY-MM-DD"
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
		data:     make(map[string]string),
	}
}

// Load loads calendar data from file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: YYYY-MM-DD name
		// Example: 2025-08-13 お盆休み
		// Any whitespace separates the fields, including tabs and U+3000.
		dateStr := strings.Fields(line)[0]
		name := strings.TrimSpace(strings.TrimPrefix(line, dateStr))
		if name == "" {
			fc.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			fc.logger.Warn("Failed to parse date", zap.String("date", dateStr), zap.Error(err))
			continue
		}

		fc.data[dateKey(date)] = name
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("days", len(fc.data)))

	return nil
}

// IsHoliday checks if the file lists the date
func (fc *FileCalendar) IsHoliday(date time.Time) bool {
	_, ok := fc.HolidayName(date)
	return ok
}

// HolidayName returns the closure name from the file
func (fc *FileCalendar) HolidayName(date time.Time) (string, bool) {
	name, ok := fc.data[dateKey(date)]
	return name, ok
}

// GetMonthInfo returns calendar info for the entire month
func (fc *FileCalendar) GetMonthInfo(year int, month time.Month) MonthInfo {
	return describeMonth(year, month, fc.HolidayName)
}
