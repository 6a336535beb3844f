package domain

import "time"

// CostControlReportItem is one line of a cost control report: the
// 9-column metric snapshot for a single WBS element.
type CostControlReportItem struct {
	ID        string
	ReportID  string
	ElementID string
	Code      string
	Name      string

	ResponsibleParty string
	CostCategory     ResourceCategory

	BudgetedCost float64
	ProgressPct  float64
	EarnedValue  float64
	ActualCost   float64
	PlannedValue float64

	CostVariance     float64
	ScheduleVariance float64
	CPI              float64
	EAC              float64

	IsCritical          bool
	VarianceExplanation string

	CreatedAt time.Time
}

// CostControlReport is a dated snapshot at control-account granularity.
// Approved reports are immutable; a new generation run inserts a new
// report row.
type CostControlReport struct {
	ID               string
	ControlAccountID string
	ProjectID        string
	ReportDate       time.Time
	PeriodType       PeriodType
	BudgetRevision   int

	// Aggregate 9-column metrics across the items.
	BAC              float64
	ProgressPct      float64
	EarnedValue      float64
	ActualCost       float64
	PlannedValue     float64
	CostVariance     float64
	ScheduleVariance float64
	CPI              float64
	SPI              float64
	EAC              float64
	VAC              float64
	ETC              float64
	TCPI             *float64 // nil when remaining funding <= 0

	// Chilean-context metadata, informational only.
	ExchangeRateUF float64
	InflationIdx   float64

	Status       ReportStatus
	ApprovedBy   string
	ApprovedAt   *time.Time
	GeneratedBy  string
	CreatedAt    time.Time

	Items []*CostControlReportItem
}

// Approve freezes the report. Every critical item must carry a variance
// explanation first.
func (r *CostControlReport) Approve(approver string, now time.Time) error {
	if r.Status == ReportApproved {
		return &AlreadyApprovedError{Kind: "report", ID: r.ID}
	}
	for _, it := range r.Items {
		if it.IsCritical && it.VarianceExplanation == "" {
			return &MissingExplanationError{ReportID: r.ID, ItemID: it.ID, Code: it.Code}
		}
	}
	r.Status = ReportApproved
	r.ApprovedBy = approver
	r.ApprovedAt = &now
	return nil
}
