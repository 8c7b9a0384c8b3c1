package payroll

// transitions is the full payslip status table: draft -> approved -> paid,
// one-directional, paid terminal.
var transitions = map[string]string{
	StatusDraft:    StatusApproved,
	StatusApproved: StatusPaid,
}

// CanTransition reports whether a payslip may move from current to target.
// Paid payslips never transition anywhere.
func CanTransition(current, target string) bool {
	next, ok := transitions[current]
	return ok && next == target
}

// ValidateTransition returns nil when the move is legal and an
// InvalidTransitionError naming the pair otherwise. A same-status move is
// reported as allowed no-op via the second return value; callers skip the
// write in that case.
func ValidateTransition(current, target string) (noop bool, err error) {
	if current == target {
		return true, nil
	}
	if !CanTransition(current, target) {
		return false, &InvalidTransitionError{From: current, To: target}
	}
	return false, nil
}
