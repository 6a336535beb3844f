package cli

import (
	"context"
	"fmt"

	"github.com/cvergaras/obracost/internal/cli/formatter"
	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/service"
	"github.com/spf13/cobra"
)

func newProgressCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Record and review physical progress",
	}

	cmd.AddCommand(
		newProgressRecordCmd(app),
		newProgressApproveCmd(app),
		newProgressRejectCmd(app),
		newProgressShowCmd(app),
		newProgressHistoryCmd(app),
		newProgressRollupCmd(app),
	)

	return cmd
}

func newProgressRecordCmd(app *App) *cobra.Command {
	var project, date, method, justification string
	var pct, actualCost, committed, toGo float64
	var override bool

	cmd := &cobra.Command{
		Use:   "record <element>",
		Short: "Record a progress observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			obsDate, err := parseDate(date)
			if err != nil {
				return err
			}

			in := service.RecordProgressInput{
				ElementID:     id,
				Date:          obsDate,
				CurrentPct:    pct,
				Method:        domain.MeasurementMethod(method),
				ReportedBy:    currentActor(),
				ActualCost:    actualCost,
				CommittedCost: committed,
				ForecastToGo:  toGo,
				Justification: justification,
			}

			var obs *domain.WBSElementProgress
			if override {
				obs, err = app.Progress.RecordProgressOverride(ctx, in)
			} else {
				obs, err = app.Progress.RecordProgress(ctx, in)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Recorded %s -> %s (EV %s, CV %s)\n",
				formatter.Pct(obs.PreviousPct), formatter.Pct(obs.CurrentPct),
				formatter.Money(obs.EarnedValue),
				formatter.VarianceStyle(obs.CostVariance).Render(formatter.Money(obs.CostVariance)))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&date, "date", "", "Observation date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&pct, "pct", 0, "Current progress percentage [0,100]")
	cmd.Flags().StringVar(&method, "method", "percent_complete", "Measurement method")
	cmd.Flags().Float64Var(&actualCost, "actual", 0, "Actual cost to date")
	cmd.Flags().Float64Var(&committed, "committed", 0, "Committed cost")
	cmd.Flags().Float64Var(&toGo, "to-go", 0, "Forecast cost to go")
	cmd.Flags().BoolVar(&override, "override", false, "Allow a progress regression")
	cmd.Flags().StringVar(&justification, "justification", "", "Reason for the regression (required with --override)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("pct")

	return cmd
}

func newProgressApproveCmd(app *App) *cobra.Command {
	var comments string

	cmd := &cobra.Command{
		Use:   "approve <observation-id>",
		Short: "Approve a pending observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obs, err := app.Progress.Approve(context.Background(), args[0], currentActor(), comments)
			if err != nil {
				return err
			}
			fmt.Printf("Approved observation at %s\n", formatter.Pct(obs.CurrentPct))
			return nil
		},
	}

	cmd.Flags().StringVar(&comments, "comments", "", "Approval comments")
	return cmd
}

func newProgressRejectCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <observation-id>",
		Short: "Reject a pending observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := app.Progress.Reject(context.Background(), args[0], currentActor(), reason)
			if err != nil {
				return err
			}
			fmt.Println("Rejected observation; it stays in the ledger flagged for review")
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Rejection reason")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newProgressShowCmd(app *App) *cobra.Command {
	var project string
	var approvedOnly bool

	cmd := &cobra.Command{
		Use:   "show <element>",
		Short: "Show an element's latest observation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			obs, err := app.Progress.Current(ctx, id, approvedOnly)
			if err != nil {
				return err
			}
			printObservation(obs)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().BoolVar(&approvedOnly, "approved", app.RequireApproval, "Only consider approved observations")
	return cmd
}

func printObservation(obs *domain.WBSElementProgress) {
	fmt.Printf("%s %s  %s %s  %s %s\n",
		formatter.Dim("date"), obs.Date.Format("2006-01-02"),
		formatter.Dim("progress"), formatter.Bold(formatter.Pct(obs.CurrentPct)),
		formatter.Dim("status"), string(obs.Status))
	fmt.Printf("%s %s  %s %s  %s %s  %s %s\n",
		formatter.Dim("EV"), formatter.Money(obs.EarnedValue),
		formatter.Dim("PV"), formatter.Money(obs.PlannedValue),
		formatter.Dim("CV"), formatter.VarianceStyle(obs.CostVariance).Render(formatter.Money(obs.CostVariance)),
		formatter.Dim("CPI"), formatter.IndexStyle(obs.CPI).Render(formatter.Index(obs.CPI)))
	if obs.IsRollup {
		fmt.Printf("%s %s over %d children (%d complete)\n",
			formatter.Dim("roll-up"), string(obs.RollupBasis), obs.ChildCount, obs.CompletedChildren)
	}
	if obs.Justification != "" {
		fmt.Printf("%s %s\n", formatter.Dim("justification"), obs.Justification)
	}
}

func newProgressHistoryCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "history <element>",
		Short: "Show an element's progress ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			entries, err := app.Progress.History(ctx, id)
			if err != nil {
				return err
			}

			headers := []string{"DATE", "FROM", "TO", "METHOD", "AC", "STATUS", "BY"}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				status := string(e.Status)
				switch e.Status {
				case domain.ApprovalApproved:
					status = formatter.StyleGreen.Render(status)
				case domain.ApprovalRejected:
					status = formatter.StyleRed.Render(status)
				}
				rows = append(rows, []string{
					e.Date.Format("2006-01-02"),
					formatter.Pct(e.PreviousPct),
					formatter.Bold(formatter.Pct(e.CurrentPct)),
					string(e.Method),
					formatter.Money(e.ActualCost),
					status,
					e.ReportedBy,
				})
			}
			fmt.Print(formatter.RenderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	return cmd
}

func newProgressRollupCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "rollup <element>",
		Short: "Compute a summary element's progress from its children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			res, err := app.Progress.Rollup(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s-weighted over %d children, %d complete)\n",
				formatter.Bold(formatter.Pct(res.ProgressPct)),
				string(res.Basis), res.ChildCount, res.CompletedChildren)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	return cmd
}
