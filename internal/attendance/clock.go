package attendance

import (
	"fmt"
	"time"
)

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// DefaultUTCOffsetHours is the business timezone offset (JST)
const DefaultUTCOffsetHours = 9

type fixedOffsetClock struct {
	loc *time.Location
}

// NewFixedOffsetClock returns a clock reporting wall time at a fixed UTC offset
func NewFixedOffsetClock(offsetHours int) Clock {
	return fixedOffsetClock{loc: FixedZone(offsetHours)}
}

func (c fixedOffsetClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// FixedZone returns the business location for a UTC offset in hours
func FixedZone(offsetHours int) *time.Location {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	if offsetHours == DefaultUTCOffsetHours {
		name = "JST"
	}
	return time.FixedZone(name, offsetHours*60*60)
}

// BusinessDate truncates t to midnight in loc
func BusinessDate(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
