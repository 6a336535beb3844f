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

type reportService struct {
	reports   repository.ReportRepo
	accounts  repository.ControlAccountRepo
	elements  repository.WBSElementRepo
	budgets   repository.TimePhasedBudgetRepo
	progress  repository.ProgressRepo
	uow       db.UnitOfWork
	locks     *LockRegistry
	threshold float64
	observer  UseCaseObserver
	now       func() time.Time
}

// NewReportService wires the report assembler. locks must be the same
// registry the budget service uses so report generation and budget
// redistribution on one control account never interleave. threshold is
// the critical-variance fraction of BAC; pass 0 for the default.
func NewReportService(
	reports repository.ReportRepo,
	accounts repository.ControlAccountRepo,
	elements repository.WBSElementRepo,
	budgets repository.TimePhasedBudgetRepo,
	progress repository.ProgressRepo,
	uow db.UnitOfWork,
	locks *LockRegistry,
	threshold float64,
	observers ...UseCaseObserver,
) ReportService {
	if locks == nil {
		locks = NewLockRegistry()
	}
	if threshold <= 0 {
		threshold = evm.DefaultCriticalThreshold
	}
	return &reportService{
		reports:   reports,
		accounts:  accounts,
		elements:  elements,
		budgets:   budgets,
		progress:  progress,
		uow:       uow,
		locks:     locks,
		threshold: threshold,
		observer:  useCaseObserverOrNoop(observers),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate assembles a dated cost control report for one control
// account. The whole run happens inside a single transaction: either the
// full report with all items lands, or nothing does.
func (s *reportService) Generate(ctx context.Context, in GenerateReportInput) (report *domain.CostControlReport, err error) {
	startedAt := s.now()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "report-generate",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"control_account": in.ControlAccountID, "date": in.Date.Format("2006-01-02")},
		})
	}()

	if in.PeriodType == "" {
		in.PeriodType = domain.PeriodMonthly
	}
	if !domain.ValidPeriodTypes[string(in.PeriodType)] {
		return nil, fmt.Errorf("period type %q is not valid: %w", in.PeriodType, domain.ErrValidation)
	}

	mu := s.locks.get(in.ControlAccountID)
	mu.Lock()
	defer mu.Unlock()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		accounts := repository.NewSQLiteControlAccountRepo(tx)
		elements := repository.NewSQLiteWBSElementRepo(tx)
		budgets := repository.NewSQLiteTimePhasedBudgetRepo(tx)
		progress := repository.NewSQLiteProgressRepo(tx)
		reports := repository.NewSQLiteReportRepo(tx)

		ca, caErr := accounts.GetByID(ctx, in.ControlAccountID)
		if caErr != nil {
			return caErr
		}

		revision, revErr := budgets.BaselineRevision(ctx, ca.ID)
		if revErr != nil {
			return revErr
		}
		if revision == 0 {
			revision, revErr = budgets.LatestRevision(ctx, ca.ID)
			if revErr != nil {
				return revErr
			}
		}

		members, memErr := elements.ListByControlAccount(ctx, ca.ID)
		if memErr != nil {
			return memErr
		}
		if len(members) == 0 {
			return fmt.Errorf("control account %s has no assigned WBS elements: %w", ca.Code, domain.ErrValidation)
		}

		var accountPV float64
		if revision > 0 {
			accountPV, revErr = budgets.CumulativePlannedValue(ctx, ca.ID, revision, in.Date)
			if revErr != nil {
				return revErr
			}
		}

		now := s.now()
		report = &domain.CostControlReport{
			ID:               uuid.New().String(),
			ControlAccountID: ca.ID,
			ProjectID:        ca.ProjectID,
			ReportDate:       in.Date,
			PeriodType:       in.PeriodType,
			BudgetRevision:   revision,
			ExchangeRateUF:   in.ExchangeRateUF,
			InflationIdx:     in.InflationIdx,
			Status:           domain.ReportDraft,
			GeneratedBy:      in.GeneratedBy,
			CreatedAt:        now,
		}

		// Budgets live at control-account granularity, so each member
		// element gets an even share of the account budget and planned
		// value.
		inputs := make([]evm.Input, 0, len(members))
		share := 1.0 / float64(len(members))
		for _, e := range members {
			obs, obsErr := progress.LatestByElement(ctx, e.ID, false)
			if obsErr != nil && !errors.Is(obsErr, repository.ErrNotFound) {
				return obsErr
			}

			item := &domain.CostControlReportItem{
				ID:               uuid.New().String(),
				ReportID:         report.ID,
				ElementID:        e.ID,
				Code:             e.Code,
				Name:             e.Name,
				ResponsibleParty: ca.Manager,
				CostCategory:     domain.ResourceOther,
				CreatedAt:        now,
			}

			line := evm.Input{
				BAC:          ca.BAC * share,
				PlannedValue: accountPV * share,
			}
			if obs != nil {
				line.ProgressPct = obs.CurrentPct
				line.ActualCost = obs.ActualCost
			}
			m := evm.Compute(line)

			item.BudgetedCost = line.BAC
			item.ProgressPct = line.ProgressPct
			item.EarnedValue = m.EarnedValue
			item.ActualCost = m.ActualCost
			item.PlannedValue = m.PlannedValue
			item.CostVariance = m.CostVariance
			item.ScheduleVariance = m.ScheduleVariance
			item.CPI = m.CPI
			item.EAC = m.EAC
			item.IsCritical = evm.Classify(line.BAC, m.CostVariance, m.ScheduleVariance, s.threshold).Critical

			report.Items = append(report.Items, item)
			inputs = append(inputs, line)
		}

		total, agg := evm.Aggregate(inputs)
		report.BAC = total.BAC
		report.ProgressPct = total.ProgressPct
		report.EarnedValue = agg.EarnedValue
		report.ActualCost = agg.ActualCost
		report.PlannedValue = agg.PlannedValue
		report.CostVariance = agg.CostVariance
		report.ScheduleVariance = agg.ScheduleVariance
		report.CPI = agg.CPI
		report.SPI = agg.SPI
		report.EAC = agg.EAC
		report.VAC = agg.VAC
		report.ETC = agg.ETC
		report.TCPI = agg.TCPI

		return reports.Create(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) GetByID(ctx context.Context, id string) (*domain.CostControlReport, error) {
	return s.reports.GetByID(ctx, id)
}

func (s *reportService) ListByControlAccount(ctx context.Context, controlAccountID string) ([]*domain.CostControlReport, error) {
	return s.reports.ListByControlAccount(ctx, controlAccountID)
}

func (s *reportService) SetItemExplanation(ctx context.Context, reportID, itemID, explanation string) error {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return err
	}
	if report.Status == domain.ReportApproved {
		return &domain.ReportImmutableError{ReportID: reportID}
	}
	for _, it := range report.Items {
		if it.ID == itemID {
			it.VarianceExplanation = explanation
			return s.reports.UpdateItem(ctx, it)
		}
	}
	return fmt.Errorf("report %s has no item %s: %w", reportID, itemID, repository.ErrNotFound)
}

func (s *reportService) Approve(ctx context.Context, reportID, approver string) (*domain.CostControlReport, error) {
	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := report.Approve(approver, s.now()); err != nil {
		return nil, err
	}
	if err := s.reports.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
