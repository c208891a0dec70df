package attendance

import "errors"

var (
	ErrRecordNotFound    = errors.New("attendance: record not found")
	ErrInvalidEmployeeID = errors.New("attendance: invalid employee id")
	ErrInvalidPeriod     = errors.New("attendance: invalid year or month")
	ErrInvalidLeaveType  = errors.New("attendance: invalid leave type")
	ErrAlreadyClockedIn  = errors.New("attendance: already clocked in")
	ErrNotClockedIn      = errors.New("attendance: not clocked in")
	ErrAlreadyClockedOut = errors.New("attendance: already clocked out")
)
