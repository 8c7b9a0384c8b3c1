package payroll

import (
	"math"

	"hrcrm/internal/domain/timesheet"
)

// ComputeOvertime sums overtime pay across a period's work-log entries.
// Only approved entries count. Per entry, minutes worked beyond the standard
// day are paid at the contract's derived hourly rate times the entry's
// schedule multiplier. The computation is all-or-nothing: any invalid entry
// fails the whole period instead of producing a partial total.
func ComputeOvertime(entries []timesheet.WorkLogEntry, baseSalary float64) (float64, error) {
	if baseSalary <= 0 || math.IsNaN(baseSalary) || math.IsInf(baseSalary, 0) {
		return 0, &ValidationError{Field: "baseSalary", Reason: "must be a positive number"}
	}

	hourlyRate := baseSalary / (AssumedWorkingDaysPerMonth * (StandardDailyMinutes / 60))

	total := 0.0
	for _, entry := range entries {
		if entry.Status != timesheet.StatusApproved {
			continue
		}
		if entry.Multiplier <= 0 || math.IsNaN(entry.Multiplier) {
			return 0, &ValidationError{Field: "multiplier", Reason: "must be a positive number"}
		}
		worked, err := timesheet.WorkingMinutes(entry)
		if err != nil {
			return 0, &ValidationError{Field: "workLog", Reason: err.Error()}
		}
		overtimeMinutes := worked - StandardDailyMinutes
		if overtimeMinutes <= 0 {
			continue
		}
		total += float64(overtimeMinutes) / 60 * hourlyRate * entry.Multiplier
	}
	return roundCents(total), nil
}

// ComputeNet applies the payslip invariant
// net = base + allowances + overtime - deductions.
func ComputeNet(baseSalary, allowances, overtime, deductions float64) float64 {
	return roundCents(baseSalary + allowances + overtime - deductions)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
