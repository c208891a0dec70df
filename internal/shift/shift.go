// Package shift holds per-employee default shift templates and the rules
// deciding which days a template applies to.
package shift

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/username/staff-attendance/internal/timecalc"
)

// ErrUnknownSkipPolicy is returned for an unrecognized skip policy tag
var ErrUnknownSkipPolicy = errors.New("shift: unknown skip policy")

// SkipPolicy names the days on which a default shift is not scheduled
type SkipPolicy string

const (
	SkipSatSunHolidays   SkipPolicy = "sh"
	SkipSunday           SkipPolicy = "sun"
	SkipSundayHolidays   SkipPolicy = "sun-holi"
	SkipSaturday         SkipPolicy = "sat"
	SkipSaturdayHolidays SkipPolicy = "sat-holi"
	NoDefault            SkipPolicy = "none"
)

// ParseSkipPolicy parses a configuration tag. An empty tag means NoDefault.
func ParseSkipPolicy(tag string) (SkipPolicy, error) {
	switch p := SkipPolicy(strings.ToLower(strings.TrimSpace(tag))); p {
	case "", NoDefault:
		return NoDefault, nil
	case SkipSatSunHolidays, SkipSunday, SkipSundayHolidays, SkipSaturday, SkipSaturdayHolidays:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSkipPolicy, tag)
	}
}

// ShouldSkip reports whether no shift is scheduled on date under policy.
// NoDefault skips every day.
func ShouldSkip(date time.Time, policy SkipPolicy, isHoliday func(time.Time) bool) bool {
	weekday := date.Weekday()

	switch policy {
	case SkipSatSunHolidays:
		return weekday == time.Saturday || weekday == time.Sunday || isHoliday(date)
	case SkipSunday:
		return weekday == time.Sunday
	case SkipSundayHolidays:
		return weekday == time.Sunday || isHoliday(date)
	case SkipSaturday:
		return weekday == time.Saturday
	case SkipSaturdayHolidays:
		return weekday == time.Saturday || isHoliday(date)
	default:
		return true
	}
}

// Template is an employee's default shift
type Template struct {
	EmployeeID string
	Start      *timecalc.TimeOfDay
	End        *timecalc.TimeOfDay
	Policy     SkipPolicy
}

// Schedulable reports whether the template can produce scheduled records
func (t Template) Schedulable() bool {
	return t.Policy != NoDefault && t.Policy != "" && t.Start != nil && t.End != nil
}

// Registry is the read-only set of templates loaded from configuration
type Registry struct {
	templates map[string]Template
}

// NewRegistry indexes templates by employee ID. Later duplicates win.
func NewRegistry(templates []Template) *Registry {
	r := &Registry{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		r.templates[t.EmployeeID] = t
	}
	return r
}

// Lookup returns the employee's template. It reports false when the employee
// is unknown or has no schedulable default shift.
func (r *Registry) Lookup(employeeID string) (Template, bool) {
	t, ok := r.templates[employeeID]
	if !ok || !t.Schedulable() {
		return Template{}, false
	}
	return t, true
}

// ParseTemplate builds a template from configuration text. Empty start or end
// leaves the time absent; malformed times are an error.
func ParseTemplate(employeeID, start, end, skip string) (Template, error) {
	policy, err := ParseSkipPolicy(skip)
	if err != nil {
		return Template{}, fmt.Errorf("employee %s: %w", employeeID, err)
	}

	t := Template{EmployeeID: employeeID, Policy: policy}

	if t.Start, err = parseOptional(start); err != nil {
		return Template{}, fmt.Errorf("employee %s: shift start: %w", employeeID, err)
	}
	if t.End, err = parseOptional(end); err != nil {
		return Template{}, fmt.Errorf("employee %s: shift end: %w", employeeID, err)
	}

	return t, nil
}

func parseOptional(s string) (*timecalc.TimeOfDay, error) {
	if timecalc.NormalizeTimeText(s) == "" {
		return nil, nil
	}
	t, ok := timecalc.ParseClockTime(s)
	if !ok {
		return nil, fmt.Errorf("malformed time %q", s)
	}
	return &t, nil
}
