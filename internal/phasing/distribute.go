package phasing

import (
	"math"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
)

// Slice is one period's share of a distribution before persistence wraps
// it into a domain.TimePhasedBudget.
type Slice struct {
	Period          Period
	PlannedValue    float64
	CumulativeValue float64
}

// ResourceFractions apportions a period's planned value across cost
// categories. Fractions must be non-negative and sum to 1.
type ResourceFractions struct {
	Labor       float64
	Material    float64
	Equipment   float64
	Subcontract float64
	Other       float64
}

// Sum returns the total of all fractions.
func (f ResourceFractions) Sum() float64 {
	return f.Labor + f.Material + f.Equipment + f.Subcontract + f.Other
}

// Distribute splits totalBudget across the periods of [start, end] using
// the given method. Per-period values are rounded to cents; the final
// period absorbs the rounding remainder so the slices sum to totalBudget
// exactly.
func Distribute(start, end time.Time, totalBudget float64, periodType domain.PeriodType, method domain.DistributionMethod) ([]Slice, error) {
	if totalBudget < 0 {
		return nil, &domain.InvalidRangeError{
			Start:  start.Format("2006-01-02"),
			End:    end.Format("2006-01-02"),
			Budget: totalBudget,
			Reason: "total budget must not be negative",
		}
	}
	periods, err := EnumeratePeriods(start, end, periodType)
	if err != nil {
		return nil, err
	}

	weights := methodWeights(method, len(periods))

	slices := make([]Slice, len(periods))
	var assigned, cum float64
	for i, p := range periods {
		var v float64
		if i == len(periods)-1 {
			v = roundCents(totalBudget - assigned)
		} else {
			v = roundCents(totalBudget * weights[i])
		}
		assigned += v
		cum += v
		slices[i] = Slice{Period: p, PlannedValue: v, CumulativeValue: cum}
	}
	return slices, nil
}

// methodWeights returns normalized per-period weights. Front/back loading
// uses triangular weights (n..1 and 1..n).
func methodWeights(method domain.DistributionMethod, n int) []float64 {
	w := make([]float64, n)
	switch method {
	case domain.MethodFrontLoaded:
		total := float64(n) * float64(n+1) / 2
		for i := range w {
			w[i] = float64(n-i) / total
		}
	case domain.MethodBackLoaded:
		total := float64(n) * float64(n+1) / 2
		for i := range w {
			w[i] = float64(i+1) / total
		}
	default: // linear
		for i := range w {
			w[i] = 1 / float64(n)
		}
	}
	return w
}

// ApportionResources splits a planned value across resource categories.
// The "other" category absorbs the rounding remainder so the breakdown
// sums to plannedValue exactly.
func ApportionResources(plannedValue float64, f ResourceFractions) (labor, material, equipment, subcontract, other float64) {
	labor = roundCents(plannedValue * f.Labor)
	material = roundCents(plannedValue * f.Material)
	equipment = roundCents(plannedValue * f.Equipment)
	subcontract = roundCents(plannedValue * f.Subcontract)
	other = roundCents(plannedValue - labor - material - equipment - subcontract)
	return
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
