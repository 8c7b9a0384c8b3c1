package timesheet

import "time"

// WorkLogEntry is one submitted day of work. Entries are created by the
// employee, transitioned by an approver, and never deleted.
type WorkLogEntry struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	Date         time.Time  `json:"date"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      time.Time  `json:"endTime"`
	BreakMinutes int        `json:"breakMinutes"`
	Multiplier   float64    `json:"multiplier"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes,omitempty"`
	DecidedBy    string     `json:"decidedBy,omitempty"`
	DecidedAt    *time.Time `json:"decidedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
