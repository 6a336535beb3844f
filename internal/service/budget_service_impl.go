package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/phasing"
	"github.com/cvergaras/obracost/internal/repository"
	"github.com/google/uuid"
)

type budgetService struct {
	budgets  repository.TimePhasedBudgetRepo
	accounts repository.ControlAccountRepo
	uow      db.UnitOfWork
	locks    *LockRegistry
	observer UseCaseObserver
	now      func() time.Time
}

// NewBudgetService creates the time-phased budget service. The locks
// registry is shared with the report service so baselining never races a
// report generation on the same control account.
func NewBudgetService(
	budgets repository.TimePhasedBudgetRepo,
	accounts repository.ControlAccountRepo,
	uow db.UnitOfWork,
	locks *LockRegistry,
	observers ...UseCaseObserver,
) BudgetService {
	if locks == nil {
		locks = NewLockRegistry()
	}
	return &budgetService{
		budgets:  budgets,
		accounts: accounts,
		uow:      uow,
		locks:    locks,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Distribute slices the budget into periods and persists them as the next
// revision. The first distribution is revision 1; later runs append a new
// revision and leave existing rows untouched.
func (s *budgetService) Distribute(ctx context.Context, in DistributeInput) (result []*domain.TimePhasedBudget, err error) {
	startedAt := s.now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "budget-distribute",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"control_account": in.ControlAccountID, "budget": in.TotalBudget},
		})
	}()

	if in.PeriodType == "" {
		in.PeriodType = domain.PeriodMonthly
	}
	if in.Method == "" {
		in.Method = domain.MethodLinear
	}
	if !domain.ValidPeriodTypes[string(in.PeriodType)] {
		return nil, fmt.Errorf("unknown period type %q: %w", in.PeriodType, domain.ErrValidation)
	}
	if !domain.ValidDistributionMethods[string(in.Method)] {
		return nil, fmt.Errorf("unknown distribution method %q: %w", in.Method, domain.ErrValidation)
	}

	lock := s.locks.get(in.ControlAccountID)
	lock.Lock()
	defer lock.Unlock()

	slices, err := phasing.Distribute(in.Start, in.End, in.TotalBudget, in.PeriodType, in.Method)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBudgets := repository.NewSQLiteTimePhasedBudgetRepo(tx)
		txAccounts := repository.NewSQLiteControlAccountRepo(tx)

		// The account is resolved under the lock so a baseline set by a
		// concurrent caller is never overwritten from a stale read.
		ca, txErr := txAccounts.GetByID(ctx, in.ControlAccountID)
		if txErr != nil {
			return txErr
		}

		latest, txErr := txBudgets.LatestRevision(ctx, in.ControlAccountID)
		if txErr != nil {
			return txErr
		}
		revision := latest + 1

		now := s.now()
		result = make([]*domain.TimePhasedBudget, len(slices))
		for i, sl := range slices {
			result[i] = &domain.TimePhasedBudget{
				ID:               uuid.New().String(),
				ControlAccountID: in.ControlAccountID,
				PeriodType:       in.PeriodType,
				PeriodNumber:     sl.Period.Number,
				PeriodStart:      sl.Period.Start,
				PeriodEnd:        sl.Period.End,
				PlannedValue:     sl.PlannedValue,
				CumulativeValue:  sl.CumulativeValue,
				Revision:         revision,
				CreatedAt:        now,
			}
		}
		if txErr := txBudgets.CreateBatch(ctx, result); txErr != nil {
			return txErr
		}

		// The distribution total becomes the account's BAC unless a
		// baseline already fixed it.
		if !ca.Baselined && math.Abs(ca.BAC-in.TotalBudget) > 1e-9 {
			if txErr := ca.SetBAC(in.TotalBudget, now); txErr != nil {
				return txErr
			}
			if txErr := txAccounts.Update(ctx, ca); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetAsBaseline freezes a revision as the EVM comparison baseline.
func (s *budgetService) SetAsBaseline(ctx context.Context, controlAccountID string, revision int, actorID string) (err error) {
	startedAt := s.now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "budget-baseline",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"control_account": controlAccountID, "revision": revision},
		})
	}()

	lock := s.locks.get(controlAccountID)
	lock.Lock()
	defer lock.Unlock()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBudgets := repository.NewSQLiteTimePhasedBudgetRepo(tx)
		txAccounts := repository.NewSQLiteControlAccountRepo(tx)

		slices, txErr := txBudgets.ListByRevision(ctx, controlAccountID, revision)
		if txErr != nil {
			return txErr
		}
		if len(slices) == 0 {
			return fmt.Errorf("control account %s has no revision %d: %w", controlAccountID, revision, repository.ErrNotFound)
		}
		if slices[0].IsBaseline {
			return &domain.BaselineImmutableError{ControlAccountID: controlAccountID, Revision: revision}
		}
		if txErr := txBudgets.MarkBaseline(ctx, controlAccountID, revision); txErr != nil {
			return txErr
		}

		ca, txErr := txAccounts.GetByID(ctx, controlAccountID)
		if txErr != nil {
			return txErr
		}
		ca.MarkBaselined(revision, s.now())
		return txAccounts.Update(ctx, ca)
	})
}

// DistributeResources apportions each period's planned value across cost
// categories. Baselined revisions stay editable here: the breakdown is
// reporting detail and never feeds the EVM formulas.
func (s *budgetService) DistributeResources(ctx context.Context, controlAccountID string, revision int, fractions phasing.ResourceFractions, actorID string) ([]*domain.TimePhasedBudget, error) {
	if sum := fractions.Sum(); math.Abs(sum-1) > 1e-6 {
		return nil, fmt.Errorf("resource fractions sum to %.6f, want 1: %w", sum, domain.ErrValidation)
	}
	if fractions.Labor < 0 || fractions.Material < 0 || fractions.Equipment < 0 ||
		fractions.Subcontract < 0 || fractions.Other < 0 {
		return nil, fmt.Errorf("resource fractions must not be negative: %w", domain.ErrValidation)
	}

	slices, err := s.budgets.ListByRevision(ctx, controlAccountID, revision)
	if err != nil {
		return nil, err
	}
	if len(slices) == 0 {
		return nil, fmt.Errorf("control account %s has no revision %d: %w", controlAccountID, revision, repository.ErrNotFound)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txBudgets := repository.NewSQLiteTimePhasedBudgetRepo(tx)
		for _, sl := range slices {
			sl.LaborCost, sl.MaterialCost, sl.EquipmentCost, sl.SubcontractCost, sl.OtherCost =
				phasing.ApportionResources(sl.PlannedValue, fractions)
			if txErr := txBudgets.UpdateResourceBreakdown(ctx, sl); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slices, nil
}

func (s *budgetService) ListRevision(ctx context.Context, controlAccountID string, revision int) ([]*domain.TimePhasedBudget, error) {
	return s.budgets.ListByRevision(ctx, controlAccountID, revision)
}

func (s *budgetService) LatestRevision(ctx context.Context, controlAccountID string) (int, error) {
	return s.budgets.LatestRevision(ctx, controlAccountID)
}

// PlannedValueAsOf returns the cumulative PV through asOf and the
// revision it came from: the baseline when one exists, the latest
// revision otherwise.
func (s *budgetService) PlannedValueAsOf(ctx context.Context, controlAccountID string, asOf time.Time) (float64, int, error) {
	revision, err := s.budgets.BaselineRevision(ctx, controlAccountID)
	if err != nil {
		return 0, 0, err
	}
	if revision == 0 {
		revision, err = s.budgets.LatestRevision(ctx, controlAccountID)
		if err != nil {
			return 0, 0, err
		}
	}
	if revision == 0 {
		return 0, 0, nil
	}
	pv, err := s.budgets.CumulativePlannedValue(ctx, controlAccountID, revision, asOf)
	if err != nil {
		return 0, 0, err
	}
	return pv, revision, nil
}
