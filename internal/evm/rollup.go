package evm

import "github.com/cvergaras/obracost/internal/domain"

// ChildProgress is one leaf contribution to a summary-level roll-up.
type ChildProgress struct {
	BAC         float64
	ProgressPct float64
	Complete    bool
}

// RollupResult is the derived progress of a non-leaf element plus the
// weighting basis actually used, recorded for auditability.
type RollupResult struct {
	ProgressPct       float64
	Basis             domain.RollupBasis
	ChildCount        int
	CompletedChildren int
}

// Rollup derives a summary-level progress percentage from its children.
// Budget weighting (Σ childEV / Σ childBAC) applies only when every child
// carries a positive BAC; a single unbudgeted child drops the whole level
// to count weighting, because partial weighting would silently overweight
// the budgeted children.
func Rollup(children []ChildProgress) RollupResult {
	res := RollupResult{Basis: domain.RollupNone, ChildCount: len(children)}
	if len(children) == 0 {
		return res
	}

	budgetWeighted := true
	var bacSum, evSum float64
	for _, c := range children {
		if c.Complete {
			res.CompletedChildren++
		}
		if c.BAC <= 0 {
			budgetWeighted = false
			continue
		}
		bacSum += c.BAC
		evSum += c.BAC * (c.ProgressPct / 100)
	}

	if budgetWeighted && bacSum > 0 {
		res.Basis = domain.RollupBudgetWeighted
		res.ProgressPct = evSum / bacSum * 100
		return res
	}

	res.Basis = domain.RollupCountWeighted
	res.ProgressPct = float64(res.CompletedChildren) / float64(res.ChildCount) * 100
	return res
}
