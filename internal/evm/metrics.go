// Package evm implements the standard earned-value metric set as pure
// functions over (budget, progress, actual cost, planned value) inputs.
// The same formula path serves line items, control accounts, and project
// roll-ups: aggregation sums the inputs, never the ratios.
package evm

// Input is the minimal tuple the metric set is derived from. PlannedValue
// is the cumulative planned value through the data date, sourced from the
// time-phased budget, not recomputed here.
type Input struct {
	BAC          float64
	ProgressPct  float64 // physical progress, [0,100]
	ActualCost   float64
	PlannedValue float64
}

// Metrics is the full computed metric set. TCPI is nil when remaining
// funding (BAC - AC) is zero or negative: the index is undefined there,
// which is a legitimate EVM state, not an error.
type Metrics struct {
	EarnedValue      float64
	PlannedValue     float64
	ActualCost       float64
	CostVariance     float64
	ScheduleVariance float64
	CPI              float64
	SPI              float64
	EAC              float64
	VAC              float64
	ETC              float64
	TCPI             *float64
}

// Compute derives the metric set from in. Zero denominators yield 0 for
// CPI/SPI (a normal early-project state) and BAC for EAC.
func Compute(in Input) Metrics {
	ev := in.BAC * (in.ProgressPct / 100)

	var cpi float64
	if in.ActualCost > 0 {
		cpi = ev / in.ActualCost
	}
	var spi float64
	if in.PlannedValue > 0 {
		spi = ev / in.PlannedValue
	}

	eac := in.BAC
	if cpi > 0 {
		eac = in.ActualCost + (in.BAC-ev)/cpi
	}

	m := Metrics{
		EarnedValue:      ev,
		PlannedValue:     in.PlannedValue,
		ActualCost:       in.ActualCost,
		CostVariance:     ev - in.ActualCost,
		ScheduleVariance: ev - in.PlannedValue,
		CPI:              cpi,
		SPI:              spi,
		EAC:              eac,
		VAC:              in.BAC - eac,
		ETC:              eac - in.ActualCost,
	}

	if remaining := in.BAC - in.ActualCost; remaining > 0 {
		tcpi := (in.BAC - ev) / remaining
		m.TCPI = &tcpi
	}
	return m
}

// Aggregate sums the inputs and computes one metric set for the total.
// The aggregate progress percentage is Σ(EV)/Σ(BAC), so the result is
// identical to Compute over the summed tuple.
func Aggregate(inputs []Input) (Input, Metrics) {
	var total Input
	var evSum float64
	for _, in := range inputs {
		total.BAC += in.BAC
		total.ActualCost += in.ActualCost
		total.PlannedValue += in.PlannedValue
		evSum += in.BAC * (in.ProgressPct / 100)
	}
	if total.BAC > 0 {
		total.ProgressPct = evSum / total.BAC * 100
	}
	return total, Compute(total)
}
