package timesheet

import (
	"errors"
	"testing"
	"time"
)

func entryAt(startHour, endHour, breakMinutes int) WorkLogEntry {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return WorkLogEntry{
		Date:         day,
		StartTime:    day.Add(time.Duration(startHour) * time.Hour),
		EndTime:      day.Add(time.Duration(endHour) * time.Hour),
		BreakMinutes: breakMinutes,
	}
}

func TestWorkingMinutes(t *testing.T) {
	minutes, err := WorkingMinutes(entryAt(9, 18, 60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minutes != 480 {
		t.Fatalf("expected 480 minutes, got %d", minutes)
	}
}

func TestWorkingMinutesEndBeforeStart(t *testing.T) {
	_, err := WorkingMinutes(entryAt(18, 9, 0))
	if !errors.Is(err, ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}

	_, err = WorkingMinutes(entryAt(9, 9, 0))
	if !errors.Is(err, ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart for zero span, got %v", err)
	}
}

func TestWorkingMinutesBreakTooLong(t *testing.T) {
	_, err := WorkingMinutes(entryAt(9, 10, 120))
	if !errors.Is(err, ErrBreakExceedsShift) {
		t.Fatalf("expected ErrBreakExceedsShift, got %v", err)
	}
}

func TestCanTransitionStatus(t *testing.T) {
	if !CanTransitionStatus(StatusPending, StatusApproved) {
		t.Fatal("pending -> approved should be allowed")
	}
	if !CanTransitionStatus(StatusPending, StatusRejected) {
		t.Fatal("pending -> rejected should be allowed")
	}
	if CanTransitionStatus(StatusApproved, StatusRejected) {
		t.Fatal("approved entries must not transition again")
	}
	if CanTransitionStatus(StatusRejected, StatusApproved) {
		t.Fatal("rejected entries must not transition again")
	}
	if CanTransitionStatus(StatusPending, "archived") {
		t.Fatal("unknown target must be rejected")
	}
}
