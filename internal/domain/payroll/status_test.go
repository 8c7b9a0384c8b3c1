package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusApproved))
	assert.True(t, CanTransition(StatusApproved, StatusPaid))

	assert.False(t, CanTransition(StatusApproved, StatusDraft))
	assert.False(t, CanTransition(StatusDraft, StatusPaid))
	assert.False(t, CanTransition(StatusDraft, StatusDraft))
}

func TestPaidIsTerminal(t *testing.T) {
	for _, target := range []string{StatusDraft, StatusApproved, StatusPaid, "anything"} {
		assert.False(t, CanTransition(StatusPaid, target), "paid -> %s must be rejected", target)
	}
}

func TestValidateTransitionSelfIsNoop(t *testing.T) {
	noop, err := ValidateTransition(StatusDraft, StatusDraft)
	require.NoError(t, err)
	assert.True(t, noop)
}

func TestValidateTransitionNamesThePair(t *testing.T) {
	_, err := ValidateTransition(StatusApproved, StatusDraft)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, StatusApproved, invalid.From)
	assert.Equal(t, StatusDraft, invalid.To)
}
