package evm

import "math"

// DefaultCriticalThreshold is the fraction of BAC beyond which a cost or
// schedule variance makes a line item critical.
const DefaultCriticalThreshold = 0.10

// Classification says whether an item needs a variance explanation, and
// which variance tripped the threshold.
type Classification struct {
	Critical         bool
	CostCritical     bool
	ScheduleCritical bool
}

// Classify flags an item as critical when |CV| or |SV| exceeds
// threshold x BAC. A non-positive threshold falls back to the default.
func Classify(bac, costVariance, scheduleVariance, threshold float64) Classification {
	if threshold <= 0 {
		threshold = DefaultCriticalThreshold
	}
	limit := bac * threshold
	c := Classification{
		CostCritical:     math.Abs(costVariance) > limit,
		ScheduleCritical: math.Abs(scheduleVariance) > limit,
	}
	c.Critical = c.CostCritical || c.ScheduleCritical
	return c
}
