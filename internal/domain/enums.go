package domain

type ElementType string

const (
	ElementLevel           ElementType = "level"
	ElementWorkPackage     ElementType = "work_package"
	ElementPlanningPackage ElementType = "planning_package"
)

// ValidElementTypes is the canonical set of accepted element type strings.
var ValidElementTypes = map[string]bool{
	"level": true, "work_package": true, "planning_package": true,
}

type PeriodType string

const (
	PeriodDaily     PeriodType = "daily"
	PeriodWeekly    PeriodType = "weekly"
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
)

var ValidPeriodTypes = map[string]bool{
	"daily": true, "weekly": true, "monthly": true, "quarterly": true,
}

type DistributionMethod string

const (
	MethodLinear      DistributionMethod = "linear"
	MethodFrontLoaded DistributionMethod = "front_loaded"
	MethodBackLoaded  DistributionMethod = "back_loaded"
)

var ValidDistributionMethods = map[string]bool{
	"linear": true, "front_loaded": true, "back_loaded": true,
}

type MeasurementMethod string

const (
	MeasurePercentComplete MeasurementMethod = "percent_complete"
	MeasureMilestone       MeasurementMethod = "weighted_milestone"
	MeasureUnitsComplete   MeasurementMethod = "units_complete"
	MeasureLevelOfEffort   MeasurementMethod = "level_of_effort"
	MeasureRollup          MeasurementMethod = "rollup"
)

type ApprovalStatus string

const (
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalApproved    ApprovalStatus = "approved"
	ApprovalRejected    ApprovalStatus = "rejected"
	ApprovalNeedsReview ApprovalStatus = "needs_review"
)

type RollupBasis string

const (
	RollupBudgetWeighted RollupBasis = "budget"
	RollupCountWeighted  RollupBasis = "count"
	RollupNone           RollupBasis = ""
)

type ReportStatus string

const (
	ReportDraft    ReportStatus = "draft"
	ReportApproved ReportStatus = "approved"
)

type ResourceCategory string

const (
	ResourceLabor       ResourceCategory = "labor"
	ResourceMaterial    ResourceCategory = "material"
	ResourceEquipment   ResourceCategory = "equipment"
	ResourceSubcontract ResourceCategory = "subcontract"
	ResourceOther       ResourceCategory = "other"
)

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectOnHold   ProjectStatus = "on_hold"
	ProjectClosed   ProjectStatus = "closed"
	ProjectArchived ProjectStatus = "archived"
)
