package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
)

// ErrNotFound is wrapped by all repositories when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByCode(ctx context.Context, code string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

type PhaseRepo interface {
	Create(ctx context.Context, ph *domain.Phase) error
	GetByID(ctx context.Context, id string) (*domain.Phase, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Phase, error)
	Update(ctx context.Context, ph *domain.Phase) error
	Delete(ctx context.Context, id string) error
}

type ControlAccountRepo interface {
	Create(ctx context.Context, ca *domain.ControlAccount) error
	GetByID(ctx context.Context, id string) (*domain.ControlAccount, error)
	GetByCode(ctx context.Context, projectID, code string) (*domain.ControlAccount, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.ControlAccount, error)
	Update(ctx context.Context, ca *domain.ControlAccount) error
	Delete(ctx context.Context, id string) error
}

type WBSElementRepo interface {
	Create(ctx context.Context, e *domain.WBSElement) error
	GetByID(ctx context.Context, id string) (*domain.WBSElement, error)
	GetByCode(ctx context.Context, projectID, code string) (*domain.WBSElement, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.WBSElement, error)
	ListChildren(ctx context.Context, parentID string) ([]*domain.WBSElement, error)
	ListRoots(ctx context.Context, projectID string) ([]*domain.WBSElement, error)
	CountChildren(ctx context.Context, elementID string) (int, error)
	ListByControlAccount(ctx context.Context, controlAccountID string) ([]*domain.WBSElement, error)
	Update(ctx context.Context, e *domain.WBSElement) error
	Delete(ctx context.Context, id string) error
}

type TimePhasedBudgetRepo interface {
	CreateBatch(ctx context.Context, slices []*domain.TimePhasedBudget) error
	ListByRevision(ctx context.Context, controlAccountID string, revision int) ([]*domain.TimePhasedBudget, error)
	LatestRevision(ctx context.Context, controlAccountID string) (int, error)
	BaselineRevision(ctx context.Context, controlAccountID string) (int, error)
	MarkBaseline(ctx context.Context, controlAccountID string, revision int) error
	UpdateResourceBreakdown(ctx context.Context, slice *domain.TimePhasedBudget) error
	// CumulativePlannedValue returns the cumulative PV of the given
	// revision through asOf (periods whose end is on or before asOf,
	// plus a pro-rata share of the period containing asOf).
	CumulativePlannedValue(ctx context.Context, controlAccountID string, revision int, asOf time.Time) (float64, error)
	DeleteRevision(ctx context.Context, controlAccountID string, revision int) error
}

type ProgressRepo interface {
	Create(ctx context.Context, p *domain.WBSElementProgress) error
	GetByID(ctx context.Context, id string) (*domain.WBSElementProgress, error)
	ListByElement(ctx context.Context, elementID string) ([]*domain.WBSElementProgress, error)
	// LatestByElement returns the most recent observation by date. When
	// approvedOnly is set, rejected and pending entries are skipped.
	LatestByElement(ctx context.Context, elementID string, approvedOnly bool) (*domain.WBSElementProgress, error)
	HasEntries(ctx context.Context, elementID string) (bool, error)
	Update(ctx context.Context, p *domain.WBSElementProgress) error
}

type ReportRepo interface {
	Create(ctx context.Context, r *domain.CostControlReport) error
	GetByID(ctx context.Context, id string) (*domain.CostControlReport, error)
	ListByControlAccount(ctx context.Context, controlAccountID string) ([]*domain.CostControlReport, error)
	Update(ctx context.Context, r *domain.CostControlReport) error
	UpdateItem(ctx context.Context, it *domain.CostControlReportItem) error
}
