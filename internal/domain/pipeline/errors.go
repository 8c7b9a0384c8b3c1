package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrLeadNotFound         = errors.New("lead not found")
	ErrStageNotFound        = errors.New("pipeline stage not found")
	ErrStageInUse           = errors.New("pipeline stage still has leads assigned")
	ErrLeadAlreadyConverted = errors.New("lead is already converted")
)

// StaleStageError rejects a transition whose caller saw an outdated stage
// assignment, typically a drag against a lead another user already moved.
// The caller should reload the lead and retry.
type StaleStageError struct {
	LeadID          string
	ExpectedStageID string
	CurrentStageID  string
}

func (e *StaleStageError) Error() string {
	return fmt.Sprintf("lead %s is in stage %s, not %s; reload and retry", e.LeadID, e.CurrentStageID, e.ExpectedStageID)
}
