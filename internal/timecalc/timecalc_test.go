package timecalc

import (
	"math"
	"testing"
	"time"
)

func TestNormalizeTimeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"０９：３０", "09:30"},
		{"09:30", "09:30"},
		{"  8:15 ", "8:15"},
		{"　１７：００　", "17:00"},
		{"１．５", "1.5"},
		{"", ""},
	}

	for _, tt := range tests {
		got := NormalizeTimeText(tt.input)
		if got != tt.want {
			t.Errorf("NormalizeTimeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if again := NormalizeTimeText(got); again != got {
			t.Errorf("NormalizeTimeText not idempotent: %q -> %q", got, again)
		}
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		input  string
		want   TimeOfDay
		wantOK bool
	}{
		{"09:00", TimeOfDay{9, 0}, true},
		{"9:00", TimeOfDay{9, 0}, true},
		{"０８：３０", TimeOfDay{8, 30}, true},
		{" 17:15 ", TimeOfDay{17, 15}, true},
		{"00:00", TimeOfDay{0, 0}, true},
		{"23:59", TimeOfDay{23, 59}, true},
		{"24:00", TimeOfDay{}, false},
		{"12:60", TimeOfDay{}, false},
		{"8:5", TimeOfDay{}, false},
		{"0930", TimeOfDay{}, false},
		{"-1:00", TimeOfDay{}, false},
		{"ab:cd", TimeOfDay{}, false},
		{"123:00", TimeOfDay{}, false},
		{"", TimeOfDay{}, false},
	}

	for _, tt := range tests {
		got, ok := ParseClockTime(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseClockTime(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func tod(s string) *TimeOfDay {
	t := MustParseClockTime(s)
	return &t
}

func TestComputeDuration(t *testing.T) {
	tests := []struct {
		name         string
		start, end   *TimeOfDay
		breakMinutes float64
		want         float64
	}{
		{"Regular day", tod("09:00"), tod("17:00"), 60, 7.0},
		{"No break", tod("08:30"), tod("17:15"), 0, 8.75},
		{"Clock in/out example", tod("08:58"), tod("17:32"), 60, 454.0 / 60},
		{"Break longer than span", tod("09:00"), tod("09:30"), 60, 0},
		{"End before start clamps", tod("17:00"), tod("09:00"), 0, 0},
		{"Missing start", nil, tod("17:00"), 60, 0},
		{"Missing end", tod("09:00"), nil, 60, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDuration(tt.start, tt.end, tt.breakMinutes)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeDuration() = %v, want %v", got, tt.want)
			}
			if got < 0 {
				t.Errorf("ComputeDuration() = %v, must never be negative", got)
			}
		})
	}

	if got := FormatHours(ComputeDuration(tod("08:58"), tod("17:32"), 60)); got != "7.57" {
		t.Errorf("FormatHours(ComputeDuration(08:58, 17:32, 60)) = %q, want \"7.57\"", got)
	}
}

func TestParseHours(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1.0", 1.0},
		{"0.75", 0.75},
		{"１．５", 1.5},
		{" 2 ", 2},
		{"", 0},
		{"abc", 0},
		{"-1", 0},
		{"NaN", 0},
		{"Inf", 0},
	}

	for _, tt := range tests {
		if got := ParseHours(tt.input); got != tt.want {
			t.Errorf("ParseHours(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHoursToMinutes(t *testing.T) {
	tests := []struct {
		hours float64
		want  int
	}{
		{1.0, 60},
		{0.5, 30},
		{454.0 / 60, 454},
		{7.0, 420},
		{0.999, 59},
		{0, 0},
	}

	for _, tt := range tests {
		if got := HoursToMinutes(tt.hours); got != tt.want {
			t.Errorf("HoursToMinutes(%v) = %d, want %d", tt.hours, got, tt.want)
		}
	}
}

func TestTimeOfDay_OnAndOf(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, jst)

	got := TimeOfDay{8, 30}.On(date)
	want := time.Date(2025, 1, 15, 8, 30, 0, 0, jst)
	if !got.Equal(want) {
		t.Errorf("On() = %v, want %v", got, want)
	}

	if of := TimeOfDayOf(time.Date(2025, 1, 15, 17, 32, 45, 0, jst)); of != (TimeOfDay{17, 32}) {
		t.Errorf("TimeOfDayOf() = %v, want 17:32", of)
	}
	if s := (TimeOfDay{8, 5}).String(); s != "08:05" {
		t.Errorf("String() = %q, want \"08:05\"", s)
	}
}
