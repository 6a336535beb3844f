package cli

import (
	"context"
	"fmt"

	"github.com/cvergaras/obracost/internal/cli/formatter"
	"github.com/cvergaras/obracost/internal/domain"
	"github.com/spf13/cobra"
)

func newAccountCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage control accounts",
	}

	cmd.AddCommand(
		newAccountAddCmd(app),
		newAccountListCmd(app),
		newAccountSetBACCmd(app),
	)

	return cmd
}

func newAccountAddCmd(app *App) *cobra.Command {
	var project, code, name, manager, phase string
	var bac float64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a control account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}

			ca := &domain.ControlAccount{
				ProjectID: projectID,
				Code:      code,
				Name:      name,
				Manager:   manager,
				BAC:       bac,
			}
			if phase != "" {
				phases, err := app.Projects.ListPhases(ctx, projectID)
				if err != nil {
					return err
				}
				for _, ph := range phases {
					if ph.Name == phase || ph.ID == phase {
						ca.PhaseID = &ph.ID
						break
					}
				}
				if ca.PhaseID == nil {
					return fmt.Errorf("phase not found: %q", phase)
				}
			}

			if err := app.Projects.CreateControlAccount(ctx, ca); err != nil {
				return err
			}
			fmt.Printf("Created control account %s [%s] BAC %s\n", ca.Name, ca.Code, formatter.Money(ca.BAC))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&code, "code", "", "Control account code")
	cmd.Flags().StringVar(&name, "name", "", "Control account name")
	cmd.Flags().StringVar(&manager, "manager", "", "Responsible manager")
	cmd.Flags().StringVar(&phase, "phase", "", "Phase name or ID")
	cmd.Flags().Float64Var(&bac, "bac", 0, "Budget at completion")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAccountListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List control accounts of a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}
			accounts, err := app.Projects.ListControlAccounts(ctx, projectID)
			if err != nil {
				return err
			}

			headers := []string{"CODE", "NAME", "MANAGER", "BAC", "BASELINE"}
			rows := make([][]string, 0, len(accounts))
			for _, ca := range accounts {
				baseline := formatter.Dim("none")
				if ca.Baselined {
					baseline = formatter.StyleGreen.Render(fmt.Sprintf("rev %d", ca.BaselineRevision))
				}
				rows = append(rows, []string{
					formatter.Bold(ca.Code), ca.Name, ca.Manager, formatter.Money(ca.BAC), baseline,
				})
			}
			fmt.Print(formatter.RenderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newAccountSetBACCmd(app *App) *cobra.Command {
	var project string
	var bac float64

	cmd := &cobra.Command{
		Use:   "set-bac <account>",
		Short: "Set a control account's budget at completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveAccountID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			ca, err := app.Projects.SetControlAccountBAC(ctx, id, bac)
			if err != nil {
				return err
			}
			fmt.Printf("Control account %s BAC set to %s\n", ca.Code, formatter.Money(ca.BAC))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().Float64Var(&bac, "bac", 0, "Budget at completion")
	_ = cmd.MarkFlagRequired("bac")
	return cmd
}
