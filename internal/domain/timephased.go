package domain

import "time"

// TimePhasedBudget is one calendar period's planned-value slice for a
// control account. Slices are immutable value records: redistribution
// after baselining writes a new revision rather than editing rows.
type TimePhasedBudget struct {
	ID               string
	ControlAccountID string
	PeriodType       PeriodType
	PeriodNumber     int // 1-based within the revision
	PeriodStart      time.Time
	PeriodEnd        time.Time
	PlannedValue     float64
	CumulativeValue  float64

	// Resource-category breakdown of PlannedValue. Zero when no
	// resource distribution has been applied; sums to PlannedValue
	// otherwise.
	LaborCost       float64
	MaterialCost    float64
	EquipmentCost   float64
	SubcontractCost float64
	OtherCost       float64

	IsBaseline bool
	Revision   int

	CreatedAt time.Time
}

// ResourceTotal returns the sum of the category breakdown.
func (t *TimePhasedBudget) ResourceTotal() float64 {
	return t.LaborCost + t.MaterialCost + t.EquipmentCost + t.SubcontractCost + t.OtherCost
}
