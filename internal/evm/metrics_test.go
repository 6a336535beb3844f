package evm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_BehindScheduleOverBudget(t *testing.T) {
	m := Compute(Input{
		BAC:          100000,
		ProgressPct:  35,
		ActualCost:   38000,
		PlannedValue: 40000,
	})

	assert.InDelta(t, 35000, m.EarnedValue, 0.01)
	assert.InDelta(t, -3000, m.CostVariance, 0.01)
	assert.InDelta(t, -5000, m.ScheduleVariance, 0.01)
	assert.InDelta(t, 0.921, m.CPI, 0.001)
	assert.InDelta(t, 0.875, m.SPI, 0.001)
	assert.InDelta(t, 108571.43, m.EAC, 1.0)
	assert.InDelta(t, -8571.43, m.VAC, 1.0)
	assert.InDelta(t, 70571.43, m.ETC, 1.0)
	require.NotNil(t, m.TCPI)
	assert.InDelta(t, 1.048, *m.TCPI, 0.001)
}

func TestCompute_NoActualsYet(t *testing.T) {
	m := Compute(Input{BAC: 100000, ProgressPct: 0, ActualCost: 0, PlannedValue: 0})

	assert.Zero(t, m.EarnedValue)
	assert.Zero(t, m.CPI)
	assert.Zero(t, m.SPI)
	assert.InDelta(t, 100000, m.EAC, 0.01, "EAC falls back to BAC before any actuals")
	assert.Zero(t, m.VAC)
	require.NotNil(t, m.TCPI)
	assert.InDelta(t, 1.0, *m.TCPI, 0.001)
}

func TestCompute_TCPIUndefinedAtOverrun(t *testing.T) {
	m := Compute(Input{BAC: 100000, ProgressPct: 80, ActualCost: 110000, PlannedValue: 90000})
	assert.Nil(t, m.TCPI, "remaining funding is negative, TCPI has no defined value")
}

func TestCompute_AheadAndUnderBudget(t *testing.T) {
	m := Compute(Input{BAC: 50000, ProgressPct: 60, ActualCost: 25000, PlannedValue: 27500})

	assert.InDelta(t, 30000, m.EarnedValue, 0.01)
	assert.InDelta(t, 5000, m.CostVariance, 0.01)
	assert.InDelta(t, 2500, m.ScheduleVariance, 0.01)
	assert.InDelta(t, 1.2, m.CPI, 0.001)
	assert.Greater(t, m.SPI, 1.0)
	assert.Less(t, m.EAC, 50000.0, "efficient execution forecasts an underrun")
	assert.Greater(t, m.VAC, 0.0)
}

func TestCompute_EACIdentities(t *testing.T) {
	m := Compute(Input{BAC: 200000, ProgressPct: 45, ActualCost: 95000, PlannedValue: 88000})

	assert.InDelta(t, 200000-m.EAC, m.VAC, 0.01)
	assert.InDelta(t, m.EAC-m.ActualCost, m.ETC, 0.01)
}

func TestAggregate_MatchesSummedTuple(t *testing.T) {
	inputs := []Input{
		{BAC: 60000, ProgressPct: 50, ActualCost: 32000, PlannedValue: 30000},
		{BAC: 40000, ProgressPct: 25, ActualCost: 9000, PlannedValue: 12000},
	}

	total, m := Aggregate(inputs)

	assert.InDelta(t, 100000, total.BAC, 0.01)
	assert.InDelta(t, 40000, m.EarnedValue, 0.01, "Σ(EV), not an average of percentages")
	assert.InDelta(t, 40.0, total.ProgressPct, 0.001)
	assert.InDelta(t, 41000, m.ActualCost, 0.01)
	assert.InDelta(t, 42000, m.PlannedValue, 0.01)

	// Ratios come from the sums, never from averaging child ratios.
	assert.InDelta(t, 40000.0/41000.0, m.CPI, 0.0001)
	assert.InDelta(t, 40000.0/42000.0, m.SPI, 0.0001)
}

func TestAggregate_Empty(t *testing.T) {
	total, m := Aggregate(nil)
	assert.Zero(t, total.BAC)
	assert.Zero(t, m.EarnedValue)
	assert.Zero(t, m.CPI)
}
