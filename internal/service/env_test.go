package service

import (
	"context"
	"testing"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/repository"
	"github.com/cvergaras/obracost/internal/testutil"
	"github.com/stretchr/testify/require"
)

// svcEnv wires every service over one in-memory database so tests can
// cross the module the way the CLI does.
type svcEnv struct {
	projects repository.ProjectRepo
	phases   repository.PhaseRepo
	accounts repository.ControlAccountRepo
	elements repository.WBSElementRepo
	budgets  repository.TimePhasedBudgetRepo
	ledger   repository.ProgressRepo
	reports  repository.ReportRepo

	projectSvc ProjectService
	hierarchy  HierarchyService
	budget     BudgetService
	progress   ProgressService
	report     ReportService

	// locks is the registry shared by the budget and report services so
	// tests can stall a service call on a held account lock.
	locks *LockRegistry
}

func setupServices(t *testing.T) *svcEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)

	env := &svcEnv{
		projects: repository.NewSQLiteProjectRepo(database),
		phases:   repository.NewSQLitePhaseRepo(database),
		accounts: repository.NewSQLiteControlAccountRepo(database),
		elements: repository.NewSQLiteWBSElementRepo(database),
		budgets:  repository.NewSQLiteTimePhasedBudgetRepo(database),
		ledger:   repository.NewSQLiteProgressRepo(database),
		reports:  repository.NewSQLiteReportRepo(database),
	}

	env.locks = NewLockRegistry()
	locks := env.locks
	env.projectSvc = NewProjectService(env.projects, env.phases, env.accounts)
	env.hierarchy = NewHierarchyService(env.elements, env.accounts, env.budgets, env.ledger, uow)
	env.budget = NewBudgetService(env.budgets, env.accounts, uow, locks)
	env.progress = NewProgressService(env.ledger, env.elements, env.accounts, env.budgets, uow)
	env.report = NewReportService(env.reports, env.accounts, env.elements, env.budgets, env.ledger, uow, locks, 0)
	return env
}

func (e *svcEnv) newProject(t *testing.T, name string) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(name)
	require.NoError(t, e.projects.Create(context.Background(), p))
	return p
}

func (e *svcEnv) newAccount(t *testing.T, projectID string, opts ...testutil.ControlAccountOption) *domain.ControlAccount {
	t.Helper()
	ca := testutil.NewTestControlAccount(projectID, "Cuenta de control", opts...)
	require.NoError(t, e.accounts.Create(context.Background(), ca))
	return ca
}

func (e *svcEnv) newElement(t *testing.T, in CreateElementInput) *domain.WBSElement {
	t.Helper()
	if in.ActorID == "" {
		in.ActorID = "tester"
	}
	el, err := e.hierarchy.CreateElement(context.Background(), in)
	require.NoError(t, err)
	return el
}

// monthRange returns the first day of a month and the first day of the
// month n months later, both UTC.
func monthRange(year int, month time.Month, n int) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, n, 0)
}
