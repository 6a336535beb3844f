package cli

import (
	"context"
	"fmt"

	"github.com/cvergaras/obracost/internal/cli/formatter"
	"github.com/cvergaras/obracost/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects and phases",
	}

	cmd.AddCommand(
		newProjectAddCmd(app),
		newProjectListCmd(app),
		newProjectInspectCmd(app),
		newPhaseAddCmd(app),
	)

	return cmd
}

func newProjectAddCmd(app *App) *cobra.Command {
	var code, name, currency, start, end string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new project",
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate(start)
			if err != nil {
				return err
			}

			p := &domain.Project{
				Code:      code,
				Name:      name,
				Currency:  currency,
				StartDate: startDate,
			}
			if end != "" {
				endDate, err := parseDate(end)
				if err != nil {
					return err
				}
				p.EndDate = &endDate
			}

			if err := app.Projects.Create(context.Background(), p); err != nil {
				return err
			}
			fmt.Printf("Created project %s [%s]\n", p.Name, p.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Project code")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&currency, "currency", "CLP", "Currency (ISO 4217)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Planned end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("start")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(context.Background(), all)
			if err != nil {
				return err
			}

			headers := []string{"CODE", "NAME", "CURRENCY", "START", "STATUS"}
			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, []string{
					formatter.Bold(p.Code),
					p.Name,
					p.Currency,
					p.StartDate.Format("2006-01-02"),
					string(p.Status),
				})
			}
			fmt.Print(formatter.RenderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include archived projects")
	return cmd
}

func newProjectInspectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <project>",
		Short: "Show a project with its phases and control accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			phases, err := app.Projects.ListPhases(ctx, id)
			if err != nil {
				return err
			}
			accounts, err := app.Projects.ListControlAccounts(ctx, id)
			if err != nil {
				return err
			}

			fmt.Println(formatter.Header(fmt.Sprintf("%s %s", p.Code, p.Name)))
			fmt.Printf("%s %s   %s %s\n\n",
				formatter.Dim("status"), string(p.Status),
				formatter.Dim("start"), p.StartDate.Format("2006-01-02"))

			for _, ph := range phases {
				fmt.Printf("  %d. %s\n", ph.Sequence, ph.Name)
			}
			if len(phases) > 0 {
				fmt.Println()
			}

			headers := []string{"CODE", "NAME", "MANAGER", "BAC", "BASELINE"}
			rows := make([][]string, 0, len(accounts))
			for _, ca := range accounts {
				baseline := formatter.Dim("none")
				if ca.Baselined {
					baseline = formatter.StyleGreen.Render(fmt.Sprintf("rev %d", ca.BaselineRevision))
				}
				rows = append(rows, []string{
					formatter.Bold(ca.Code),
					ca.Name,
					ca.Manager,
					formatter.Money(ca.BAC),
					baseline,
				})
			}
			fmt.Print(formatter.RenderTable(headers, rows))
			return nil
		},
	}
	return cmd
}

func newPhaseAddCmd(app *App) *cobra.Command {
	var project, name string
	var sequence int

	cmd := &cobra.Command{
		Use:   "phase-add",
		Short: "Add a phase to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			ph := &domain.Phase{ProjectID: projectID, Name: name, Sequence: sequence}
			if err := app.Projects.CreatePhase(ctx, ph); err != nil {
				return err
			}
			fmt.Printf("Added phase %s (#%d)\n", ph.Name, ph.Sequence)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&name, "name", "", "Phase name")
	cmd.Flags().IntVar(&sequence, "seq", 0, "Phase sequence (defaults to next)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
