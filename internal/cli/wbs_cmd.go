package cli

import (
	"context"
	"fmt"

	"github.com/cvergaras/obracost/internal/cli/formatter"
	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/service"
	"github.com/spf13/cobra"
)

func newWBSCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wbs",
		Short: "Manage the work breakdown structure",
	}

	cmd.AddCommand(
		newWBSAddCmd(app),
		newWBSTreeCmd(app),
		newWBSRenameCmd(app),
		newWBSDictCmd(app),
		newWBSAssignCmd(app),
		newWBSConvertCmd(app),
		newWBSMoveCmd(app),
		newWBSRemoveCmd(app),
	)

	return cmd
}

func newWBSAddCmd(app *App) *cobra.Command {
	var project, code, name, elemType, parent string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a WBS element",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, project)
			if err != nil {
				return err
			}

			in := service.CreateElementInput{
				ProjectID: projectID,
				Code:      code,
				Name:      name,
				Type:      domain.ElementType(elemType),
				ActorID:   currentActor(),
			}
			if parent != "" {
				parentID, err := resolveElementID(ctx, app, project, parent)
				if err != nil {
					return err
				}
				in.ParentID = &parentID
			}

			e, err := app.Hierarchy.CreateElement(ctx, in)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s element %s [%s] at level %d\n", e.Type, e.Name, e.Code, e.Level)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&code, "code", "", "WBS code (dot-separated, e.g. 1.2.3)")
	cmd.Flags().StringVar(&name, "name", "", "Element name")
	cmd.Flags().StringVar(&elemType, "type", "level", "Element type (level, work_package, planning_package)")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent element code or ID")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func flattenTree(nodes []*service.TreeNode, items []formatter.WBSTreeItem) []formatter.WBSTreeItem {
	for i, n := range nodes {
		items = append(items, formatter.WBSTreeItem{
			Code:   n.Element.Code,
			Name:   n.Element.Name,
			Type:   string(n.Element.Type),
			Level:  n.Element.Level,
			IsLast: i == len(nodes)-1,
		})
		items = flattenTree(n.Children, items)
	}
	return items
}

func newWBSTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <project>",
		Short: "Show the WBS tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			roots, err := app.Hierarchy.GetTree(ctx, projectID)
			if err != nil {
				return err
			}
			fmt.Print(formatter.RenderWBSTree(flattenTree(roots, nil)))
			return nil
		},
	}
	return cmd
}

func newWBSRenameCmd(app *App) *cobra.Command {
	var project, name string

	cmd := &cobra.Command{
		Use:   "rename <element>",
		Short: "Rename a WBS element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			e, err := app.Hierarchy.Rename(ctx, id, name, currentActor())
			if err != nil {
				return err
			}
			fmt.Printf("Renamed %s to %q\n", e.Code, e.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&name, "name", "", "New name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newWBSDictCmd(app *App) *cobra.Command {
	var project, deliverable, acceptance, assumptions, constraints string

	cmd := &cobra.Command{
		Use:   "dict <element>",
		Short: "Update a WBS element's dictionary entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			e, err := app.Hierarchy.UpdateDictionary(ctx, id, deliverable, acceptance, assumptions, constraints, currentActor())
			if err != nil {
				return err
			}
			fmt.Printf("Updated dictionary for %s\n", e.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&deliverable, "deliverable", "", "Deliverable description")
	cmd.Flags().StringVar(&acceptance, "acceptance", "", "Acceptance criteria")
	cmd.Flags().StringVar(&assumptions, "assumptions", "", "Assumptions")
	cmd.Flags().StringVar(&constraints, "constraints", "", "Constraints")
	return cmd
}

func newWBSAssignCmd(app *App) *cobra.Command {
	var project, account string

	cmd := &cobra.Command{
		Use:   "assign <element>",
		Short: "Assign a WBS element to a control account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			accountID, err := resolveAccountID(ctx, app, project, account)
			if err != nil {
				return err
			}
			e, err := app.Hierarchy.AssignControlAccount(ctx, id, accountID, currentActor())
			if err != nil {
				return err
			}
			fmt.Printf("Assigned %s to control account\n", e.Code)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&account, "account", "", "Control account code or ID")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}

func newWBSConvertCmd(app *App) *cobra.Command {
	var project, to string

	cmd := &cobra.Command{
		Use:   "convert <element>",
		Short: "Convert a WBS element's type",
		Long: `Convert a WBS element's type. Permitted transitions:
  level -> work package       (--to wp)
  level -> planning package   (--to pp)
  planning -> work package    (--to wp, finalizes the planning package)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}

			current, err := app.Hierarchy.GetByID(ctx, id)
			if err != nil {
				return err
			}

			var e *domain.WBSElement
			switch to {
			case "wp", "work_package":
				if current.Type == domain.ElementPlanningPackage {
					e, err = app.Hierarchy.ConvertPlanningToWorkPackage(ctx, id, currentActor())
				} else {
					e, err = app.Hierarchy.ConvertToWorkPackage(ctx, id, currentActor())
				}
			case "pp", "planning_package":
				e, err = app.Hierarchy.ConvertToPlanningPackage(ctx, id, currentActor())
			default:
				return fmt.Errorf("unknown target type %q, want wp or pp", to)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Converted %s to %s\n", e.Code, e.Type)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&to, "to", "", "Target type (wp or pp)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newWBSMoveCmd(app *App) *cobra.Command {
	var project, parent string
	var toRoot bool

	cmd := &cobra.Command{
		Use:   "move <element>",
		Short: "Move a WBS element under a new parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}

			var newParentID *string
			if !toRoot {
				parentID, err := resolveElementID(ctx, app, project, parent)
				if err != nil {
					return err
				}
				newParentID = &parentID
			}

			e, err := app.Hierarchy.Move(ctx, id, newParentID, currentActor())
			if err != nil {
				return err
			}
			fmt.Printf("Moved %s to level %d\n", e.Code, e.Level)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	cmd.Flags().StringVar(&parent, "parent", "", "New parent element code or ID")
	cmd.Flags().BoolVar(&toRoot, "root", false, "Move to the root level")
	return cmd
}

func newWBSRemoveCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "remove <element>",
		Short: "Delete a WBS element without children or execution data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveElementID(ctx, app, project, args[0])
			if err != nil {
				return err
			}
			if err := app.Hierarchy.Delete(ctx, id, currentActor()); err != nil {
				return err
			}
			fmt.Println("Deleted element")
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project code or ID")
	return cmd
}
