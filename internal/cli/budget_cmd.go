package cli

import (
	"context"
	"fmt"

	"github.com/cvergaras/obracost/internal/cli/formatter"
	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/phasing"
	"github.com/cvergaras/obracost/internal/service"
	"github.com/spf13/cobra"
)

func newBudgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage time-phased budgets",
	}

	cmd.AddCommand(
		newBudgetDistributeCmd(app),
		newBudgetBaselineCmd(app),
		newBudgetResourcesCmd(app),
		newBudgetShowCmd(app),
		newBudgetPVCmd(app),
	)

	return cmd
}

func newBudgetDistributeCmd(app *App) *cobra.Command {
	var project, start, end, period, method string
	var total float64

	cmd := &cobra.Command{
		Use:   "distribute <account>",
		Short: "Distribute a budget over calendar periods as a new revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			accountID, err := resolveAccountID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			startDate, err := parseDate(start)
			if err != nil {
				return err
			}
			endDate, err := parseDate(end)
			if err != nil {
				return err
			}

			slices, err := app.Budget.Distribute(ctx, service.DistributeInput{
				ControlAccountID: accountID,
				Start:            startDate,
				End:              endDate,
				TotalBudget:      total,
				PeriodType:       domain.PeriodType(period),
				Method:           domain.DistributionMethod(method),
				ActorID:          currentActor(),
			})
			if err != nil {
				return err
			}

			fmt.Printf("Distributed %s over %d periods (revision %d)\n",
				formatter.Money(total), len(slices), slices[0].Revision)
			printSlices(slices)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&start, "start", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Range end (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&total, "total", 0, "Total budget to distribute")
	cmd.Flags().StringVar(&period, "period", "monthly", "Period type (daily, weekly, monthly, quarterly)")
	cmd.Flags().StringVar(&method, "method", "linear", "Distribution method (linear, front_loaded, back_loaded)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}

func printSlices(slices []*domain.TimePhasedBudget) {
	headers := []string{"#", "START", "END", "PLANNED", "CUMULATIVE", "BASELINE"}
	rows := make([][]string, 0, len(slices))
	for _, s := range slices {
		baseline := ""
		if s.IsBaseline {
			baseline = formatter.StyleGreen.Render("yes")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.PeriodNumber),
			s.PeriodStart.Format("2006-01-02"),
			s.PeriodEnd.Format("2006-01-02"),
			formatter.Money(s.PlannedValue),
			formatter.Money(s.CumulativeValue),
			baseline,
		})
	}
	fmt.Print(formatter.RenderTable(headers, rows))
}

func newBudgetBaselineCmd(app *App) *cobra.Command {
	var project string
	var revision int

	cmd := &cobra.Command{
		Use:   "baseline <account>",
		Short: "Freeze a budget revision as the EVM baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			accountID, err := resolveAccountID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			if revision == 0 {
				revision, err = app.Budget.LatestRevision(ctx, accountID)
				if err != nil {
					return err
				}
			}
			if err := app.Budget.SetAsBaseline(ctx, accountID, revision, currentActor()); err != nil {
				return err
			}
			fmt.Printf("Revision %d is now the baseline\n", revision)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().IntVar(&revision, "revision", 0, "Revision to baseline (defaults to latest)")
	return cmd
}

func newBudgetResourcesCmd(app *App) *cobra.Command {
	var project string
	var revision int
	var labor, material, equipment, subcontract, other float64

	cmd := &cobra.Command{
		Use:   "resources <account>",
		Short: "Apportion a revision's planned value across resource categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			accountID, err := resolveAccountID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			if revision == 0 {
				revision, err = app.Budget.LatestRevision(ctx, accountID)
				if err != nil {
					return err
				}
			}

			fractions := phasing.ResourceFractions{
				Labor:       labor,
				Material:    material,
				Equipment:   equipment,
				Subcontract: subcontract,
				Other:       other,
			}
			slices, err := app.Budget.DistributeResources(ctx, accountID, revision, fractions, currentActor())
			if err != nil {
				return err
			}
			fmt.Printf("Apportioned resources across %d periods of revision %d\n", len(slices), revision)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().IntVar(&revision, "revision", 0, "Budget revision (defaults to latest)")
	cmd.Flags().Float64Var(&labor, "labor", 0, "Labor fraction")
	cmd.Flags().Float64Var(&material, "material", 0, "Material fraction")
	cmd.Flags().Float64Var(&equipment, "equipment", 0, "Equipment fraction")
	cmd.Flags().Float64Var(&subcontract, "subcontract", 0, "Subcontract fraction")
	cmd.Flags().Float64Var(&other, "other", 0, "Other fraction")
	return cmd
}

func newBudgetShowCmd(app *App) *cobra.Command {
	var project string
	var revision int

	cmd := &cobra.Command{
		Use:   "show <account>",
		Short: "Show a budget revision's period slices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			accountID, err := resolveAccountID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			if revision == 0 {
				revision, err = app.Budget.LatestRevision(ctx, accountID)
				if err != nil {
					return err
				}
			}
			slices, err := app.Budget.ListRevision(ctx, accountID, revision)
			if err != nil {
				return err
			}
			printSlices(slices)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().IntVar(&revision, "revision", 0, "Budget revision (defaults to latest)")
	return cmd
}

func newBudgetPVCmd(app *App) *cobra.Command {
	var project, date string

	cmd := &cobra.Command{
		Use:   "pv <account>",
		Short: "Show cumulative planned value as of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			accountID, err := resolveAccountID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			asOf, err := parseDate(date)
			if err != nil {
				return err
			}
			pv, revision, err := app.Budget.PlannedValueAsOf(ctx, accountID, asOf)
			if err != nil {
				return err
			}
			fmt.Printf("PV through %s: %s (revision %d)\n", asOf.Format("2006-01-02"), formatter.Money(pv), revision)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&date, "date", "", "Data date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
