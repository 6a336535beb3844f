package cli

import (
	"context"
	"fmt"

	"github.com/cvergaras/obracost/internal/cli/formatter"
	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/service"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate and approve cost control reports",
	}

	cmd.AddCommand(
		newReportGenerateCmd(app),
		newReportShowCmd(app),
		newReportListCmd(app),
		newReportExplainCmd(app),
		newReportApproveCmd(app),
	)

	return cmd
}

func newReportGenerateCmd(app *App) *cobra.Command {
	var project, date, period string
	var ufRate, inflation float64

	cmd := &cobra.Command{
		Use:   "generate <account>",
		Short: "Generate a cost control report for a control account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			accountID, err := resolveAccountID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			reportDate, err := parseDate(date)
			if err != nil {
				return err
			}

			r, err := app.Reports.Generate(ctx, service.GenerateReportInput{
				ControlAccountID: accountID,
				Date:             reportDate,
				PeriodType:       domain.PeriodType(period),
				ExchangeRateUF:   ufRate,
				InflationIdx:     inflation,
				GeneratedBy:      currentActor(),
			})
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatReport(r))
			fmt.Printf("\n%s %s\n", formatter.Dim("report id"), r.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&date, "date", "", "Report data date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&period, "period", "monthly", "Reporting period type")
	cmd.Flags().Float64Var(&ufRate, "uf", 0, "UF exchange rate at the data date")
	cmd.Flags().Float64Var(&inflation, "inflation", 0, "Inflation index at the data date")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newReportShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show a stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Reports.GetByID(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Print(formatter.FormatReport(r))
			return nil
		},
	}
	return cmd
}

func newReportListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list <account>",
		Short: "List reports of a control account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			accountID, err := resolveAccountID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			reports, err := app.Reports.ListByControlAccount(ctx, accountID)
			if err != nil {
				return err
			}

			headers := []string{"DATE", "STATUS", "CPI", "SPI", "EAC", "ID"}
			rows := make([][]string, 0, len(reports))
			for _, r := range reports {
				status := formatter.StyleYellow.Render(string(r.Status))
				if r.Status == domain.ReportApproved {
					status = formatter.StyleGreen.Render(string(r.Status))
				}
				rows = append(rows, []string{
					r.ReportDate.Format("2006-01-02"),
					status,
					formatter.IndexStyle(r.CPI).Render(formatter.Index(r.CPI)),
					formatter.IndexStyle(r.SPI).Render(formatter.Index(r.SPI)),
					formatter.Money(r.EAC),
					formatter.Dim(r.ID),
				})
			}
			fmt.Print(formatter.RenderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	return cmd
}

func newReportExplainCmd(app *App) *cobra.Command {
	var item, explanation string

	cmd := &cobra.Command{
		Use:   "explain <report-id>",
		Short: "Attach a variance explanation to a report line item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			reportID := args[0]

			// Accept either an item ID or a WBS code.
			r, err := app.Reports.GetByID(ctx, reportID)
			if err != nil {
				return err
			}
			itemID := item
			for _, it := range r.Items {
				if it.Code == item {
					itemID = it.ID
					break
				}
			}

			if err := app.Reports.SetItemExplanation(ctx, reportID, itemID, explanation); err != nil {
				return err
			}
			fmt.Println("Explanation recorded")
			return nil
		},
	}

	cmd.Flags().StringVar(&item, "item", "", "Line item ID or WBS code")
	cmd.Flags().StringVar(&explanation, "text", "", "Variance explanation")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newReportApproveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <report-id>",
		Short: "Approve a report, freezing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := app.Reports.Approve(context.Background(), args[0], currentActor())
			if err != nil {
				return err
			}
			fmt.Printf("Report %s approved by %s\n", r.ReportDate.Format("2006-01-02"), r.ApprovedBy)
			return nil
		},
	}
	return cmd
}
