package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cvergaras/obracost/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects  service.ProjectService
	Hierarchy service.HierarchyService
	Budget    service.BudgetService
	Progress  service.ProgressService
	Reports   service.ReportService

	// RequireApproval makes progress queries default to approved
	// observations only.
	RequireApproval bool
}

// NewRootCmd creates the top-level "obracost" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "obracost",
		Short: "Earned-value cost control for construction projects",
	}

	root.AddCommand(
		newProjectCmd(app),
		newAccountCmd(app),
		newWBSCmd(app),
		newBudgetCmd(app),
		newProgressCmd(app),
		newReportCmd(app),
	)

	return root
}

// currentActor is the identity recorded on mutating operations.
func currentActor() string {
	if v := os.Getenv("OBRACOST_ACTOR"); v != "" {
		return v
	}
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	return "unknown"
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// resolveProjectID accepts a project code or a UUID (or UUID prefix).
func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project is required")
	}
	if p, err := app.Projects.GetByCode(ctx, input); err == nil {
		return p.ID, nil
	}

	projects, err := app.Projects.List(ctx, true)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, p := range projects {
		if p.ID == input {
			return p.ID, nil
		}
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveElementID accepts a WBS code within a project or an element UUID.
func resolveElementID(ctx context.Context, app *App, projectRef, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("element is required")
	}
	if projectRef != "" {
		projectID, err := resolveProjectID(ctx, app, projectRef)
		if err != nil {
			return "", err
		}
		if e, err := app.Hierarchy.GetByCode(ctx, projectID, input); err == nil {
			return e.ID, nil
		}
	}
	if e, err := app.Hierarchy.GetByID(ctx, input); err == nil {
		return e.ID, nil
	}
	return "", fmt.Errorf("wbs element not found: %q", input)
}

// resolveAccountID accepts a control account code within a project or a UUID.
func resolveAccountID(ctx context.Context, app *App, projectRef, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("control account is required")
	}
	if projectRef != "" {
		projectID, err := resolveProjectID(ctx, app, projectRef)
		if err != nil {
			return "", err
		}
		if ca, err := app.Projects.GetControlAccountByCode(ctx, projectID, input); err == nil {
			return ca.ID, nil
		}
	}
	if ca, err := app.Projects.GetControlAccount(ctx, input); err == nil {
		return ca.ID, nil
	}
	return "", fmt.Errorf("control account not found: %q", input)
}
