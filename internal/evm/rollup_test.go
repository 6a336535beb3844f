package evm

import (
	"testing"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRollup_BudgetWeighted(t *testing.T) {
	res := Rollup([]ChildProgress{
		{BAC: 75000, ProgressPct: 40},
		{BAC: 25000, ProgressPct: 80},
	})

	assert.Equal(t, domain.RollupBudgetWeighted, res.Basis)
	// (75000*0.4 + 25000*0.8) / 100000 = 50%
	assert.InDelta(t, 50.0, res.ProgressPct, 0.001)
	assert.Equal(t, 2, res.ChildCount)
	assert.Equal(t, 0, res.CompletedChildren)
}

func TestRollup_FallsBackOnUnbudgetedChild(t *testing.T) {
	res := Rollup([]ChildProgress{
		{BAC: 75000, ProgressPct: 100, Complete: true},
		{BAC: 0, ProgressPct: 50},
	})

	assert.Equal(t, domain.RollupCountWeighted, res.Basis,
		"one unbudgeted child drops the level to count weighting")
	assert.InDelta(t, 50.0, res.ProgressPct, 0.001)
	assert.Equal(t, 1, res.CompletedChildren)
}

func TestRollup_NoChildren(t *testing.T) {
	res := Rollup(nil)
	assert.Equal(t, domain.RollupNone, res.Basis)
	assert.Zero(t, res.ProgressPct)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		cv, sv   float64
		critical bool
	}{
		{"within threshold", -9000, 5000, false},
		{"cost variance over", -10001, 0, true},
		{"schedule variance over", 0, -10001, true},
		{"favorable variance still critical", 12000, 0, true},
		{"exactly at threshold", -10000, -10000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(100000, tt.cv, tt.sv, 0.10)
			assert.Equal(t, tt.critical, c.Critical)
		})
	}
}

func TestClassify_DefaultThreshold(t *testing.T) {
	c := Classify(100000, -15000, 0, 0)
	assert.True(t, c.Critical)
	assert.True(t, c.CostCritical)
	assert.False(t, c.ScheduleCritical)
}
