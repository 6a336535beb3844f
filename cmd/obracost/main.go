package main

import (
	"fmt"
	"os"

	"github.com/cvergaras/obracost/internal/cli"
	"github.com/cvergaras/obracost/internal/cli/formatter"
	"github.com/cvergaras/obracost/internal/config"
	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/repository"
	"github.com/cvergaras/obracost/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		formatter.DisableColor()
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	projectRepo := repository.NewSQLiteProjectRepo(database)
	phaseRepo := repository.NewSQLitePhaseRepo(database)
	accountRepo := repository.NewSQLiteControlAccountRepo(database)
	elementRepo := repository.NewSQLiteWBSElementRepo(database)
	budgetRepo := repository.NewSQLiteTimePhasedBudgetRepo(database)
	progressRepo := repository.NewSQLiteProgressRepo(database)
	reportRepo := repository.NewSQLiteReportRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Observe use cases on stderr in debug mode
	var observers []service.UseCaseObserver
	if cfg.LogLevel == "debug" {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	// Budget baselining and report generation serialize per control
	// account through a shared lock registry.
	accountLocks := service.NewLockRegistry()

	app := &cli.App{
		Projects:  service.NewProjectService(projectRepo, phaseRepo, accountRepo),
		Hierarchy: service.NewHierarchyService(elementRepo, accountRepo, budgetRepo, progressRepo, uow, observers...),
		Budget:    service.NewBudgetService(budgetRepo, accountRepo, uow, accountLocks, observers...),
		Progress:  service.NewProgressService(progressRepo, elementRepo, accountRepo, budgetRepo, uow, observers...),
		Reports: service.NewReportService(reportRepo, accountRepo, elementRepo, budgetRepo, progressRepo,
			uow, accountLocks, cfg.VarianceThreshold, observers...),
		RequireApproval: cfg.RequireApproval,
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
