package domain

import (
	"fmt"
	"time"
)

// WBSElementProgress is one dated progress observation for a WBS element.
// The ledger is append-only: rejection tags the entry, it is never
// removed, and the element's current state is the latest approved entry.
type WBSElementProgress struct {
	ID        string
	ElementID string
	Date      time.Time

	PreviousPct float64
	CurrentPct  float64
	Method      MeasurementMethod
	ReportedBy  string

	// Costs at observation time. Not monotonic.
	ActualCost    float64
	CommittedCost float64
	ForecastToGo  float64 // estimate to complete at this date

	// Optional physical corroboration (installed quantity vs total).
	PhysicalQty      *float64
	PhysicalQtyTotal *float64

	// Optional schedule actuals.
	ActualStart    *time.Time
	ForecastFinish *time.Time
	DelayDays      *int

	// Metric snapshot computed at observation time.
	EarnedValue      float64
	PlannedValue     float64
	CostVariance     float64
	ScheduleVariance float64
	CPI              float64
	SPI              float64

	// Roll-up metadata, set only for summary-level observations.
	IsRollup          bool
	RollupBasis       RollupBasis
	ChildCount        int
	CompletedChildren int

	Status          ApprovalStatus
	ApprovedBy      string
	ApprovalDate    *time.Time
	ApprovalComment string
	RequiresReview  bool
	Justification   string // set by the regression override path

	CreatedAt time.Time
}

// ValidatePercentages checks both percentages are within [0,100].
func (p *WBSElementProgress) ValidatePercentages() error {
	if p.PreviousPct < 0 || p.PreviousPct > 100 {
		return &OutOfRangeError{Field: "previous percentage", Value: p.PreviousPct}
	}
	if p.CurrentPct < 0 || p.CurrentPct > 100 {
		return &OutOfRangeError{Field: "current percentage", Value: p.CurrentPct}
	}
	return nil
}

// Approve marks the observation approved. Approving twice is rejected so
// the approval audit trail stays unambiguous.
func (p *WBSElementProgress) Approve(approver, comment string, now time.Time) error {
	if p.Status == ApprovalApproved {
		return &AlreadyApprovedError{Kind: "progress observation", ID: p.ID}
	}
	p.Status = ApprovalApproved
	p.ApprovedBy = approver
	p.ApprovalDate = &now
	p.ApprovalComment = comment
	p.RequiresReview = false
	return nil
}

// Reject marks the observation rejected and flags it for review. The
// entry stays in the ledger.
func (p *WBSElementProgress) Reject(approver, reason string, now time.Time) error {
	if reason == "" {
		return fmt.Errorf("rejecting observation %s: a reason is required: %w", p.ID, ErrValidation)
	}
	p.Status = ApprovalRejected
	p.ApprovedBy = approver
	p.ApprovalDate = &now
	p.ApprovalComment = reason
	p.RequiresReview = true
	return nil
}
