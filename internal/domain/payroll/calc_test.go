package payroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrcrm/internal/domain/timesheet"
)

func approvedEntry(workedMinutes, breakMinutes int, multiplier float64) timesheet.WorkLogEntry {
	day := time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)
	start := day.Add(9 * time.Hour)
	return timesheet.WorkLogEntry{
		Date:         day,
		StartTime:    start,
		EndTime:      start.Add(time.Duration(workedMinutes+breakMinutes) * time.Minute),
		BreakMinutes: breakMinutes,
		Multiplier:   multiplier,
		Status:       timesheet.StatusApproved,
	}
}

func TestComputeOvertimeStandardDayIsZero(t *testing.T) {
	entries := []timesheet.WorkLogEntry{
		approvedEntry(480, 0, 1.5),
		approvedEntry(300, 30, 2),
	}
	total, err := ComputeOvertime(entries, 4400)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestComputeOvertimeSingleEntry(t *testing.T) {
	// 600 worked minutes, no break, x1.5 on base 4400:
	// hourly rate 4400/176 = 25, 120 overtime minutes = 2h * 25 * 1.5 = 75.
	total, err := ComputeOvertime([]timesheet.WorkLogEntry{approvedEntry(600, 0, 1.5)}, 4400)
	require.NoError(t, err)
	assert.Equal(t, 75.0, total)
}

func TestComputeOvertimeSumsEntries(t *testing.T) {
	entries := []timesheet.WorkLogEntry{
		approvedEntry(600, 0, 1.5), // 75
		approvedEntry(540, 0, 2),   // 1h * 25 * 2 = 50
		approvedEntry(480, 0, 1),   // 0
	}
	total, err := ComputeOvertime(entries, 4400)
	require.NoError(t, err)
	assert.Equal(t, 125.0, total)
}

func TestComputeOvertimeSkipsUnapproved(t *testing.T) {
	pending := approvedEntry(600, 0, 1.5)
	pending.Status = timesheet.StatusPending
	rejected := approvedEntry(600, 0, 1.5)
	rejected.Status = timesheet.StatusRejected

	total, err := ComputeOvertime([]timesheet.WorkLogEntry{pending, rejected}, 4400)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestComputeOvertimeRejectsBadInputs(t *testing.T) {
	_, err := ComputeOvertime([]timesheet.WorkLogEntry{approvedEntry(600, 0, 1.5)}, 0)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "baseSalary", vErr.Field)

	_, err = ComputeOvertime([]timesheet.WorkLogEntry{approvedEntry(600, 0, -1)}, 4400)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "multiplier", vErr.Field)
}

func TestComputeOvertimeRejectsNegativeDuration(t *testing.T) {
	entry := approvedEntry(600, 0, 1.5)
	entry.EndTime = entry.StartTime.Add(-time.Hour)

	_, err := ComputeOvertime([]timesheet.WorkLogEntry{entry}, 4400)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "workLog", vErr.Field)
}

func TestComputeNet(t *testing.T) {
	assert.Equal(t, 1125.0, ComputeNet(1000, 100, 75, 50))
	assert.Equal(t, 1000.0, ComputeNet(1000, 0, 0, 0))
	assert.Equal(t, 900.0, ComputeNet(1000, 0, 0, 100))
}
