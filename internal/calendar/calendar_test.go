package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestStaticCalendar_HolidayName(t *testing.T) {
	cal := NewStaticCalendar()

	tests := []struct {
		name     string
		date     time.Time
		wantName string
		wantOK   bool
	}{
		{"New Year 2025", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "元日", true},
		{"Company closure Jan 2", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "正月", true},
		{"Year-end closure", time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "年末年始", true},
		{"Substitute holiday", time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC), "振替休日", true},
		{"Ordinary workday", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), "", false},
		{"Outside table", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "", false},
		{"Time of day ignored", time.Date(2025, 5, 5, 23, 59, 0, 0, time.FixedZone("JST", 9*3600)), "こどもの日", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := cal.HolidayName(tt.date)
			if ok != tt.wantOK || name != tt.wantName {
				t.Errorf("HolidayName(%v) = (%q, %v), want (%q, %v)",
					tt.date.Format("2006-01-02"), name, ok, tt.wantName, tt.wantOK)
			}
			if cal.IsHoliday(tt.date) != tt.wantOK {
				t.Errorf("IsHoliday(%v) = %v, want %v", tt.date.Format("2006-01-02"), !tt.wantOK, tt.wantOK)
			}
		})
	}
}

func TestStaticCalendar_GetMonthInfo_DayTypes(t *testing.T) {
	info := NewStaticCalendar().GetMonthInfo(2025, time.February)

	tests := []struct {
		name string
		day  int
		want DayType
	}{
		{"Weekday", 3, DayTypeWorkday},
		{"Saturday", 1, DayTypeWeekend},
		{"Holiday on weekday", 11, DayTypeHoliday},
		{"Holiday on Sunday", 23, DayTypeHoliday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := info.Days[tt.day-1].Type; got != tt.want {
				t.Errorf("Days[%d].Type = %v, want %v", tt.day, got, tt.want)
			}
		})
	}

	sunday := info.Days[22]
	if !sunday.IsWeekend || !sunday.IsHoliday || sunday.Note != "天皇誕生日" {
		t.Errorf("2025-02-23 = %+v, want weekend holiday 天皇誕生日", sunday)
	}
}

func TestStaticCalendar_GetMonthInfo(t *testing.T) {
	cal := NewStaticCalendar()

	// January 2025: 31 days, 8 weekend days, holidays 1/1, 1/2, 1/3, 1/13 all on weekdays.
	info := cal.GetMonthInfo(2025, time.January)

	if len(info.Days) != 31 {
		t.Fatalf("Days count = %d, want 31", len(info.Days))
	}
	if info.Holidays != 4 {
		t.Errorf("Holidays = %d, want 4", info.Holidays)
	}
	if info.Weekends != 8 {
		t.Errorf("Weekends = %d, want 8", info.Weekends)
	}
	if info.WorkDays != 19 {
		t.Errorf("WorkDays = %d, want 19", info.WorkDays)
	}
}

func writeHolidayFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holidays.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write holiday file: %v", err)
	}
	return path
}

func TestFileCalendar_Load(t *testing.T) {
	path := writeHolidayFile(t, `# company closures
2025-08-13 お盆休み
2025-08-14  お盆休み

not-a-date 休み
2025-08-15
`)

	fc := NewFileCalendar(path, zap.NewNop())
	if err := fc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if name, ok := fc.HolidayName(time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC)); !ok || name != "お盆休み" {
		t.Errorf("HolidayName(2025-08-13) = (%q, %v), want (お盆休み, true)", name, ok)
	}
	if name, ok := fc.HolidayName(time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)); !ok || name != "お盆休み" {
		t.Errorf("HolidayName(2025-08-14) = (%q, %v), want (お盆休み, true)", name, ok)
	}
	// Line without a name is skipped.
	if fc.IsHoliday(time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)) {
		t.Error("IsHoliday(2025-08-15) = true, want false for a malformed line")
	}
}

func TestFileCalendar_LoadWhitespaceSeparators(t *testing.T) {
	path := writeHolidayFile(t, "2025-08-13\tお盆休み\n2025-08-14\u3000お盆休み\n2025-12-29 年末 休業\n")

	fc := NewFileCalendar(path, zap.NewNop())
	if err := fc.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC), "お盆休み"},
		{time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC), "お盆休み"},
		{time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC), "年末 休業"},
	}

	for _, tt := range tests {
		if name, ok := fc.HolidayName(tt.date); !ok || name != tt.want {
			t.Errorf("HolidayName(%v) = (%q, %v), want (%q, true)", tt.date.Format("2006-01-02"), name, ok, tt.want)
		}
	}
}

func TestFileCalendar_LoadMissingFile(t *testing.T) {
	fc := NewFileCalendar(filepath.Join(t.TempDir(), "missing.txt"), zap.NewNop())
	if err := fc.Load(); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestCompositeCalendar(t *testing.T) {
	path := writeHolidayFile(t, "2025-08-13 お盆休み\n2025-01-01 創立記念日\n")

	cal, err := New(path, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !cal.IsHoliday(time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC)) {
		t.Error("IsHoliday(2025-08-13) = false, want true from extra file")
	}
	if !cal.IsHoliday(time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)) {
		t.Error("IsHoliday(2025-03-20) = false, want true from static table")
	}
	if name, _ := cal.HolidayName(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)); name != "元日" {
		t.Errorf("HolidayName(2025-01-01) = %q, want primary name 元日", name)
	}
	if cal.IsHoliday(time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC)) {
		t.Error("IsHoliday(2025-08-12) = true, want false")
	}
}

func TestNew_WithoutExtraFile(t *testing.T) {
	cal, err := New("", zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := cal.(*StaticCalendar); !ok {
		t.Errorf("New(\"\") = %T, want *StaticCalendar", cal)
	}
}
