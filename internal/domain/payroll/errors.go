package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrPayslipNotFound  = errors.New("payslip not found")
	ErrPayslipImmutable = errors.New("paid payslips are immutable")
	ErrNoContract       = errors.New("no active contract for the payslip period")
)

// InvalidTransitionError names the rejected source/target status pair.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("payslip status cannot move from %s to %s", e.From, e.To)
}

// ValidationError marks bad numeric or date input to a payroll computation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
