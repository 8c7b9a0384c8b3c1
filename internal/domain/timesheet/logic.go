package timesheet

import (
	"errors"
	"fmt"
)

var (
	ErrEndBeforeStart    = errors.New("end time must be after start time")
	ErrBreakExceedsShift = errors.New("break duration exceeds the worked span")
)

// WorkingMinutes returns the worked minutes of an entry: the start-to-end
// span minus the break. Entries ending at or before their start are rejected
// rather than producing a negative duration.
func WorkingMinutes(entry WorkLogEntry) (int, error) {
	if !entry.EndTime.After(entry.StartTime) {
		return 0, ErrEndBeforeStart
	}
	if entry.BreakMinutes < 0 {
		return 0, fmt.Errorf("break minutes must not be negative")
	}
	span := int(entry.EndTime.Sub(entry.StartTime).Minutes())
	worked := span - entry.BreakMinutes
	if worked < 0 {
		return 0, ErrBreakExceedsShift
	}
	return worked, nil
}

// CanTransitionStatus reports whether a work-log entry may move between the
// given statuses. Only pending entries are open for a decision.
func CanTransitionStatus(current, target string) bool {
	if current != StatusPending {
		return false
	}
	return target == StatusApproved || target == StatusRejected
}
