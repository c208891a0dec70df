package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/username/staff-attendance/internal/attendance"
)

var headers = []any{
	"日付", "曜日", "祝日",
	"予定開始", "予定終了", "予定休憩", "予定時間",
	"実績開始", "実績終了", "実績休憩", "実績時間",
	"休暇", "備考",
}

var leaveLabels = map[string]string{
	string(attendance.LeavePublicHoliday):     "公休",
	string(attendance.LeavePaid):              "有給",
	string(attendance.LeaveSpecial):           "特別休暇",
	string(attendance.LeaveAbsence):           "欠勤",
	string(attendance.LeaveSubstituteHoliday): "振替休日",
}

// SheetName returns the worksheet name used for a month
func SheetName(year, month int) string {
	return fmt.Sprintf("%d年%d月", year, month)
}

// MonthWorkbook renders a month view as a printable timesheet. The caller closes the file.
func MonthWorkbook(view *attendance.MonthView, displayName string) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := SheetName(view.Year, view.Month)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeMonth(f, sheet, view, displayName); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// WriteMonth writes the month view as xlsx to w
func WriteMonth(w io.Writer, view *attendance.MonthView, displayName string) error {
	f, err := MonthWorkbook(view, displayName)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeMonth(f *excelize.File, sheet string, view *attendance.MonthView, displayName string) error {
	title := fmt.Sprintf("勤務表 %d年%d月 %s", view.Year, view.Month, displayName)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return fmt.Errorf("failed to write title: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A2", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	redDayStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#C00000"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FDE9E9"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create holiday style: %w", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheet, "A2", lastCol+"2", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 3
	for _, d := range view.Days {
		values := []any{
			d.Date, d.Weekday, d.HolidayName,
			d.ScheduledStart, d.ScheduledEnd, round2(d.ScheduledBreakHours), round2(d.PlannedHours),
			d.ActualStart, d.ActualEnd, round2(d.ActualBreakHours), round2(d.ActualHours),
			leaveLabel(d.LeaveType), d.Note,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write day %d: %w", d.Day, err)
		}
		if d.IsRedDay() {
			end, _ := excelize.CoordinatesToCellName(len(headers), row)
			if err := f.SetCellStyle(sheet, cell, end, redDayStyle); err != nil {
				return fmt.Errorf("failed to style day %d: %w", d.Day, err)
			}
		}
		row++
	}

	totals := []any{
		"合計", "", "",
		"", "", round2(view.Totals.ScheduledBreakHours), round2(view.Totals.PlannedHours),
		"", "", round2(view.Totals.ActualBreakHours), round2(view.Totals.ActualHours),
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}
	end, _ := excelize.CoordinatesToCellName(len(headers), row)
	if err := f.SetCellStyle(sheet, cell, end, headerStyle); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}

	if err := f.SetColWidth(sheet, "A", "A", 12); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(sheet, lastCol, lastCol, 30); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	return nil
}

func leaveLabel(leave string) string {
	if label, ok := leaveLabels[leave]; ok {
		return label
	}
	return leave
}

func round2(h float64) float64 {
	return math.Round(h*100) / 100
}
