package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePercentages(t *testing.T) {
	ok := &WBSElementProgress{PreviousPct: 0, CurrentPct: 100}
	assert.NoError(t, ok.ValidatePercentages())

	tooHigh := &WBSElementProgress{CurrentPct: 100.01}
	var outOfRange *OutOfRangeError
	require.ErrorAs(t, tooHigh.ValidatePercentages(), &outOfRange)
	assert.ErrorIs(t, tooHigh.ValidatePercentages(), ErrValidation)

	negative := &WBSElementProgress{PreviousPct: -1}
	assert.Error(t, negative.ValidatePercentages())
}

func TestProgressApprove(t *testing.T) {
	now := time.Now()
	p := &WBSElementProgress{ID: "p1", Status: ApprovalPending, RequiresReview: true}

	require.NoError(t, p.Approve("reviewer", "looks right", now))
	assert.Equal(t, ApprovalApproved, p.Status)
	assert.Equal(t, "reviewer", p.ApprovedBy)
	assert.False(t, p.RequiresReview)
	require.NotNil(t, p.ApprovalDate)
}

func TestProgressApprove_Twice(t *testing.T) {
	p := &WBSElementProgress{ID: "p1", Status: ApprovalPending}
	require.NoError(t, p.Approve("a", "", time.Now()))

	err := p.Approve("b", "", time.Now())
	var already *AlreadyApprovedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, "a", p.ApprovedBy, "second approval must not overwrite the first")
}

func TestProgressReject(t *testing.T) {
	p := &WBSElementProgress{ID: "p1", Status: ApprovalPending}

	require.NoError(t, p.Reject("reviewer", "quantity mismatch", time.Now()))
	assert.Equal(t, ApprovalRejected, p.Status)
	assert.True(t, p.RequiresReview)
	assert.Equal(t, "quantity mismatch", p.ApprovalComment)
}

func TestProgressReject_RequiresReason(t *testing.T) {
	p := &WBSElementProgress{ID: "p1", Status: ApprovalPending}
	err := p.Reject("reviewer", "", time.Now())
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, ApprovalPending, p.Status)
}
