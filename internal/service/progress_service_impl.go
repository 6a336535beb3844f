package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/evm"
	"github.com/cvergaras/obracost/internal/repository"
	"github.com/google/uuid"
)

type progressService struct {
	progress repository.ProgressRepo
	elements repository.WBSElementRepo
	accounts repository.ControlAccountRepo
	budgets  repository.TimePhasedBudgetRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewProgressService(
	progress repository.ProgressRepo,
	elements repository.WBSElementRepo,
	accounts repository.ControlAccountRepo,
	budgets repository.TimePhasedBudgetRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) ProgressService {
	return &progressService{
		progress: progress,
		elements: elements,
		accounts: accounts,
		budgets:  budgets,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *progressService) RecordProgress(ctx context.Context, in RecordProgressInput) (*domain.WBSElementProgress, error) {
	return s.record(ctx, in, false)
}

func (s *progressService) RecordProgressOverride(ctx context.Context, in RecordProgressInput) (*domain.WBSElementProgress, error) {
	if in.Justification == "" {
		return nil, fmt.Errorf("progress override for element %s requires a justification: %w",
			in.ElementID, domain.ErrValidation)
	}
	return s.record(ctx, in, true)
}

func (s *progressService) record(ctx context.Context, in RecordProgressInput, allowRegression bool) (obs *domain.WBSElementProgress, err error) {
	startedAt := s.now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "progress-record",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"element": in.ElementID, "pct": in.CurrentPct, "override": allowRegression},
		})
	}()

	element, err := s.elements.GetByID(ctx, in.ElementID)
	if err != nil {
		return nil, err
	}
	if in.Method == "" {
		in.Method = domain.MeasurePercentComplete
	}

	now := s.now()
	obs = &domain.WBSElementProgress{
		ID:               uuid.New().String(),
		ElementID:        in.ElementID,
		Date:             in.Date,
		PreviousPct:      in.PreviousPct,
		CurrentPct:       in.CurrentPct,
		Method:           in.Method,
		ReportedBy:       in.ReportedBy,
		ActualCost:       in.ActualCost,
		CommittedCost:    in.CommittedCost,
		ForecastToGo:     in.ForecastToGo,
		PhysicalQty:      in.PhysicalQty,
		PhysicalQtyTotal: in.PhysicalQtyTotal,
		ActualStart:      in.ActualStart,
		ForecastFinish:   in.ForecastFinish,
		DelayDays:        in.DelayDays,
		Status:           domain.ApprovalPending,
		Justification:    in.Justification,
		CreatedAt:        now,
	}
	if err = obs.ValidatePercentages(); err != nil {
		return nil, err
	}

	// The ledger's latest entry is the authoritative previous value;
	// the caller-supplied one only seeds a fresh ledger.
	latest, err := s.progress.LatestByElement(ctx, in.ElementID, false)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if latest != nil {
		obs.PreviousPct = latest.CurrentPct
	}
	if obs.CurrentPct < obs.PreviousPct {
		if !allowRegression {
			return nil, &domain.RegressionError{
				ElementID:   in.ElementID,
				PreviousPct: obs.PreviousPct,
				CurrentPct:  obs.CurrentPct,
			}
		}
		// An overridden regression enters the ledger flagged for review
		// rather than plain pending.
		obs.Status = domain.ApprovalNeedsReview
		obs.RequiresReview = true
	}

	// Summary nodes accept only derived roll-up observations.
	children, err := s.elements.CountChildren(ctx, in.ElementID)
	if err != nil {
		return nil, err
	}
	if children > 0 {
		if in.Method != domain.MeasureRollup {
			return nil, fmt.Errorf("element %s (%s) has children; progress is derived by roll-up, not recorded directly: %w",
				element.Code, element.ID, domain.ErrStateConflict)
		}
		rollup, rollupErr := s.Rollup(ctx, in.ElementID)
		if rollupErr != nil {
			return nil, rollupErr
		}
		obs.CurrentPct = rollup.ProgressPct
		obs.IsRollup = true
		obs.RollupBasis = rollup.Basis
		obs.ChildCount = rollup.ChildCount
		obs.CompletedChildren = rollup.CompletedChildren
	}

	// Metric snapshot at observation time.
	bac, pv, err := s.budgetContext(ctx, element, in.Date)
	if err != nil {
		return nil, err
	}
	m := evm.Compute(evm.Input{BAC: bac, ProgressPct: obs.CurrentPct, ActualCost: obs.ActualCost, PlannedValue: pv})
	obs.EarnedValue = m.EarnedValue
	obs.PlannedValue = m.PlannedValue
	obs.CostVariance = m.CostVariance
	obs.ScheduleVariance = m.ScheduleVariance
	obs.CPI = m.CPI
	obs.SPI = m.SPI

	if err = s.progress.Create(ctx, obs); err != nil {
		return nil, err
	}
	return obs, nil
}

// budgetContext resolves the BAC and cumulative PV for an element's
// control account as of the given date. Elements without a control
// account report zeros, which the calculator treats as early-project
// state.
func (s *progressService) budgetContext(ctx context.Context, element *domain.WBSElement, asOf time.Time) (bac, pv float64, err error) {
	if element.ControlAccountID == nil {
		return 0, 0, nil
	}
	ca, err := s.accounts.GetByID(ctx, *element.ControlAccountID)
	if err != nil {
		return 0, 0, err
	}
	revision, err := s.budgets.BaselineRevision(ctx, ca.ID)
	if err != nil {
		return 0, 0, err
	}
	if revision == 0 {
		revision, err = s.budgets.LatestRevision(ctx, ca.ID)
		if err != nil {
			return 0, 0, err
		}
	}
	if revision == 0 {
		return ca.BAC, 0, nil
	}
	pv, err = s.budgets.CumulativePlannedValue(ctx, ca.ID, revision, asOf)
	if err != nil {
		return 0, 0, err
	}
	return ca.BAC, pv, nil
}

func (s *progressService) Approve(ctx context.Context, observationID, approver, comments string) (*domain.WBSElementProgress, error) {
	obs, err := s.progress.GetByID(ctx, observationID)
	if err != nil {
		return nil, err
	}
	if err := obs.Approve(approver, comments, s.now()); err != nil {
		return nil, err
	}
	if err := s.progress.Update(ctx, obs); err != nil {
		return nil, err
	}
	return obs, nil
}

func (s *progressService) Reject(ctx context.Context, observationID, approver, reason string) (*domain.WBSElementProgress, error) {
	obs, err := s.progress.GetByID(ctx, observationID)
	if err != nil {
		return nil, err
	}
	if err := obs.Reject(approver, reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.progress.Update(ctx, obs); err != nil {
		return nil, err
	}
	return obs, nil
}

// Current returns the element's latest observation. With approvedOnly
// set, only approved entries count; an element with none is not found.
func (s *progressService) Current(ctx context.Context, elementID string, approvedOnly bool) (*domain.WBSElementProgress, error) {
	return s.progress.LatestByElement(ctx, elementID, approvedOnly)
}

func (s *progressService) History(ctx context.Context, elementID string) ([]*domain.WBSElementProgress, error) {
	return s.progress.ListByElement(ctx, elementID)
}

// Rollup derives a summary element's progress from its children,
// recursing through nested summary levels. Leaves contribute their
// latest ledger entry.
func (s *progressService) Rollup(ctx context.Context, elementID string) (evm.RollupResult, error) {
	children, err := s.elements.ListChildren(ctx, elementID)
	if err != nil {
		return evm.RollupResult{}, err
	}
	if len(children) == 0 {
		return evm.RollupResult{}, fmt.Errorf("element %s has no children to roll up: %w", elementID, domain.ErrValidation)
	}

	inputs := make([]evm.ChildProgress, 0, len(children))
	for _, c := range children {
		pct, pctErr := s.progressOf(ctx, c)
		if pctErr != nil {
			return evm.RollupResult{}, pctErr
		}
		var bac float64
		if c.ControlAccountID != nil {
			ca, caErr := s.accounts.GetByID(ctx, *c.ControlAccountID)
			if caErr != nil {
				return evm.RollupResult{}, caErr
			}
			bac = ca.BAC
		}
		inputs = append(inputs, evm.ChildProgress{BAC: bac, ProgressPct: pct, Complete: pct >= 100})
	}
	return evm.Rollup(inputs), nil
}

func (s *progressService) progressOf(ctx context.Context, e *domain.WBSElement) (float64, error) {
	count, err := s.elements.CountChildren(ctx, e.ID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		res, err := s.Rollup(ctx, e.ID)
		if err != nil {
			return 0, err
		}
		return res.ProgressPct, nil
	}
	latest, err := s.progress.LatestByElement(ctx, e.ID, false)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return latest.CurrentPct, nil
}
