package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/google/uuid"
)

var testCodeCounter atomic.Int64

func nextCode(prefix string) string {
	return fmt.Sprintf("%s%02d", prefix, testCodeCounter.Add(1))
}

// Project options
type ProjectOption func(*domain.Project)

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithProjectCode(code string) ProjectOption {
	return func(p *domain.Project) {
		p.Code = code
	}
}

func WithEndDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.EndDate = &d
	}
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:        uuid.New().String(),
		Code:      nextCode("PRJ"),
		Name:      name,
		Currency:  "CLP",
		StartDate: now.AddDate(0, -1, 0),
		Status:    domain.ProjectActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func NewTestPhase(projectID, name string, sequence int) *domain.Phase {
	now := time.Now().UTC()
	return &domain.Phase{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		Sequence:  sequence,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ControlAccount options
type ControlAccountOption func(*domain.ControlAccount)

func WithBAC(bac float64) ControlAccountOption {
	return func(ca *domain.ControlAccount) {
		ca.BAC = bac
	}
}

func WithPhaseID(id string) ControlAccountOption {
	return func(ca *domain.ControlAccount) {
		ca.PhaseID = &id
	}
}

func WithBaseline(rev int) ControlAccountOption {
	return func(ca *domain.ControlAccount) {
		ca.Baselined = true
		ca.BaselineRevision = rev
	}
}

func NewTestControlAccount(projectID, name string, opts ...ControlAccountOption) *domain.ControlAccount {
	now := time.Now().UTC()
	ca := &domain.ControlAccount{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Code:      nextCode("CA"),
		Name:      name,
		Manager:   "test manager",
		BAC:       100000,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(ca)
	}
	return ca
}

// WBSElement options
type ElementOption func(*domain.WBSElement)

func WithElementType(t domain.ElementType) ElementOption {
	return func(e *domain.WBSElement) {
		e.Type = t
	}
}

func WithParent(parent *domain.WBSElement) ElementOption {
	return func(e *domain.WBSElement) {
		e.ParentID = &parent.ID
		e.Level = parent.Level + 1
	}
}

func WithControlAccountID(id string) ElementOption {
	return func(e *domain.WBSElement) {
		e.ControlAccountID = &id
	}
}

func WithSequence(seq int) ElementOption {
	return func(e *domain.WBSElement) {
		e.Sequence = seq
	}
}

func NewTestElement(projectID, code, name string, opts ...ElementOption) *domain.WBSElement {
	now := time.Now().UTC()
	e := &domain.WBSElement{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Code:      code,
		Name:      name,
		Type:      domain.ElementLevel,
		Level:     1,
		Sequence:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Progress options
type ProgressOption func(*domain.WBSElementProgress)

func WithProgressStatus(s domain.ApprovalStatus) ProgressOption {
	return func(p *domain.WBSElementProgress) {
		p.Status = s
	}
}

func WithActualCost(ac float64) ProgressOption {
	return func(p *domain.WBSElementProgress) {
		p.ActualCost = ac
	}
}

func WithProgressDate(d time.Time) ProgressOption {
	return func(p *domain.WBSElementProgress) {
		p.Date = d
	}
}

func WithPreviousPct(pct float64) ProgressOption {
	return func(p *domain.WBSElementProgress) {
		p.PreviousPct = pct
	}
}

func NewTestProgress(elementID string, currentPct float64, opts ...ProgressOption) *domain.WBSElementProgress {
	now := time.Now().UTC()
	p := &domain.WBSElementProgress{
		ID:         uuid.New().String(),
		ElementID:  elementID,
		Date:       now,
		CurrentPct: currentPct,
		Method:     domain.MeasurePercentComplete,
		ReportedBy: "test reporter",
		Status:     domain.ApprovalPending,
		CreatedAt:  now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewTestBudgetSlice builds one time-phased slice. Cumulative must be set
// by the caller when building multi-period revisions.
func NewTestBudgetSlice(controlAccountID string, period int, start, end time.Time, pv float64, revision int) *domain.TimePhasedBudget {
	return &domain.TimePhasedBudget{
		ID:               uuid.New().String(),
		ControlAccountID: controlAccountID,
		PeriodType:       domain.PeriodMonthly,
		PeriodNumber:     period,
		PeriodStart:      start,
		PeriodEnd:        end,
		PlannedValue:     pv,
		CumulativeValue:  pv,
		Revision:         revision,
		CreatedAt:        time.Now().UTC(),
	}
}
