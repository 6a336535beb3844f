package service

import (
	"context"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/evm"
	"github.com/cvergaras/obracost/internal/phasing"
)

// ProjectService owns project-level structure: the project record, its
// phases, and its control accounts.
type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error

	CreatePhase(ctx context.Context, ph *domain.Phase) error
	ListPhases(ctx context.Context, projectID string) ([]*domain.Phase, error)

	CreateControlAccount(ctx context.Context, ca *domain.ControlAccount) error
	GetControlAccount(ctx context.Context, id string) (*domain.ControlAccount, error)
	GetControlAccountByCode(ctx context.Context, projectID, code string) (*domain.ControlAccount, error)
	ListControlAccounts(ctx context.Context, projectID string) ([]*domain.ControlAccount, error)
	SetControlAccountBAC(ctx context.Context, id string, bac float64) (*domain.ControlAccount, error)
}

// CreateElementInput carries the caller-supplied fields of a new WBS
// element; level and sequence are computed from the parent.
type CreateElementInput struct {
	ProjectID string
	Code      string
	Name      string
	Type      domain.ElementType
	ParentID  *string
	ActorID   string
}

// TreeNode is a WBS element with its display path ("1.2.3" built from
// ancestor codes) and resolved children, as returned by GetTree.
type TreeNode struct {
	Element  *domain.WBSElement
	Path     string
	Children []*TreeNode
}

// HierarchyService owns the WBS tree and its element-type state machine.
// All mutating operations on the same project are serialized.
type HierarchyService interface {
	CreateElement(ctx context.Context, in CreateElementInput) (*domain.WBSElement, error)
	GetByID(ctx context.Context, id string) (*domain.WBSElement, error)
	GetByCode(ctx context.Context, projectID, code string) (*domain.WBSElement, error)
	GetTree(ctx context.Context, projectID string) ([]*TreeNode, error)
	Rename(ctx context.Context, id, name, actorID string) (*domain.WBSElement, error)
	UpdateDictionary(ctx context.Context, id string, deliverable, acceptance, assumptions, constraints string, actorID string) (*domain.WBSElement, error)
	AssignControlAccount(ctx context.Context, id, controlAccountID, actorID string) (*domain.WBSElement, error)
	ConvertToWorkPackage(ctx context.Context, id, actorID string) (*domain.WBSElement, error)
	ConvertToPlanningPackage(ctx context.Context, id, actorID string) (*domain.WBSElement, error)
	ConvertPlanningToWorkPackage(ctx context.Context, id, actorID string) (*domain.WBSElement, error)
	Reorder(ctx context.Context, parentID *string, projectID string, orderedIDs []string, actorID string) error
	Move(ctx context.Context, id string, newParentID *string, actorID string) (*domain.WBSElement, error)
	Delete(ctx context.Context, id, actorID string) error
}

// DistributeInput describes one budget distribution run.
type DistributeInput struct {
	ControlAccountID string
	Start            time.Time
	End              time.Time
	TotalBudget      float64
	PeriodType       domain.PeriodType
	Method           domain.DistributionMethod
	ActorID          string
}

// BudgetService owns time-phased budget revisions for control accounts.
type BudgetService interface {
	Distribute(ctx context.Context, in DistributeInput) ([]*domain.TimePhasedBudget, error)
	SetAsBaseline(ctx context.Context, controlAccountID string, revision int, actorID string) error
	DistributeResources(ctx context.Context, controlAccountID string, revision int, fractions phasing.ResourceFractions, actorID string) ([]*domain.TimePhasedBudget, error)
	ListRevision(ctx context.Context, controlAccountID string, revision int) ([]*domain.TimePhasedBudget, error)
	LatestRevision(ctx context.Context, controlAccountID string) (int, error)
	PlannedValueAsOf(ctx context.Context, controlAccountID string, asOf time.Time) (float64, int, error)
}

// RecordProgressInput carries one progress observation.
type RecordProgressInput struct {
	ElementID     string
	Date          time.Time
	PreviousPct   float64
	CurrentPct    float64
	Method        domain.MeasurementMethod
	ReportedBy    string
	ActualCost    float64
	CommittedCost float64
	ForecastToGo  float64

	PhysicalQty      *float64
	PhysicalQtyTotal *float64
	ActualStart      *time.Time
	ForecastFinish   *time.Time
	DelayDays        *int

	// Justification is required by the override path only.
	Justification string
}

// ProgressService owns the append-only progress ledger and its roll-ups.
type ProgressService interface {
	RecordProgress(ctx context.Context, in RecordProgressInput) (*domain.WBSElementProgress, error)
	// RecordProgressOverride accepts a regression when a justification
	// is supplied. It is the only path that does.
	RecordProgressOverride(ctx context.Context, in RecordProgressInput) (*domain.WBSElementProgress, error)
	Approve(ctx context.Context, observationID, approver, comments string) (*domain.WBSElementProgress, error)
	Reject(ctx context.Context, observationID, approver, reason string) (*domain.WBSElementProgress, error)
	Current(ctx context.Context, elementID string, approvedOnly bool) (*domain.WBSElementProgress, error)
	History(ctx context.Context, elementID string) ([]*domain.WBSElementProgress, error)
	Rollup(ctx context.Context, elementID string) (evm.RollupResult, error)
}

// GenerateReportInput describes one report generation run.
type GenerateReportInput struct {
	ControlAccountID string
	Date             time.Time
	PeriodType       domain.PeriodType
	ExchangeRateUF   float64
	InflationIdx     float64
	GeneratedBy      string
}

// ReportService assembles, persists, and approves cost control reports.
type ReportService interface {
	Generate(ctx context.Context, in GenerateReportInput) (*domain.CostControlReport, error)
	GetByID(ctx context.Context, id string) (*domain.CostControlReport, error)
	ListByControlAccount(ctx context.Context, controlAccountID string) ([]*domain.CostControlReport, error)
	SetItemExplanation(ctx context.Context, reportID, itemID, explanation string) error
	Approve(ctx context.Context, reportID, approver string) (*domain.CostControlReport, error)
}
