package formatter

import (
	"fmt"
	"strings"
)

// WBSTreeItem is one row of a flattened WBS tree display.
type WBSTreeItem struct {
	Code        string
	Name        string
	Type        string // level, work_package, planning_package
	Level       int    // root = 1
	IsLast      bool   // last sibling at its level
	ProgressPct *float64
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderWBSTree renders the flattened tree with box-drawing connectors.
// Package elements get a colored type badge; progress, when present, is
// right of the name.
func RenderWBSTree(items []WBSTreeItem) string {
	if len(items) == 0 {
		return Dim("(empty tree)")
	}

	var b strings.Builder
	for _, item := range items {
		var prefix string
		if item.Level > 1 {
			prefix = strings.Repeat(treePipe, item.Level-2)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		line := prefix + StyleDim.Render(item.Code) + " " + Bold(item.Name)

		switch item.Type {
		case "work_package":
			line += " " + StyleBlue.Render("[WP]")
		case "planning_package":
			line += " " + StyleYellow.Render("[PP]")
		}
		if item.ProgressPct != nil {
			line += " " + StyleGreen.Render(fmt.Sprintf("(%s)", Pct(*item.ProgressPct)))
		}

		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
