package payroll

const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
	StatusPaid     = "paid"

	// StandardDailyMinutes is the threshold above which a work-log entry
	// accrues overtime.
	StandardDailyMinutes = 480

	// AssumedWorkingDaysPerMonth converts a monthly base salary into an
	// hourly rate together with the 8-hour standard day.
	AssumedWorkingDaysPerMonth = 22
)
