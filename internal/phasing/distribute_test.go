package phasing

import (
	"testing"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEnumeratePeriods_Monthly(t *testing.T) {
	periods, err := EnumeratePeriods(date(2026, 1, 1), date(2026, 7, 1), domain.PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, periods, 6)

	assert.Equal(t, 1, periods[0].Number)
	assert.Equal(t, date(2026, 1, 1), periods[0].Start)
	assert.Equal(t, date(2026, 2, 1), periods[0].End)
	assert.Equal(t, date(2026, 7, 1), periods[5].End)
}

func TestEnumeratePeriods_ClampsShortTail(t *testing.T) {
	periods, err := EnumeratePeriods(date(2026, 1, 1), date(2026, 2, 15), domain.PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, date(2026, 2, 15), periods[1].End, "tail period is clamped, not dropped")
}

func TestEnumeratePeriods_InvalidRange(t *testing.T) {
	_, err := EnumeratePeriods(date(2026, 3, 1), date(2026, 3, 1), domain.PeriodMonthly)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEnumeratePeriods_WeeklyAndQuarterly(t *testing.T) {
	weekly, err := EnumeratePeriods(date(2026, 1, 5), date(2026, 2, 2), domain.PeriodWeekly)
	require.NoError(t, err)
	assert.Len(t, weekly, 4)

	quarterly, err := EnumeratePeriods(date(2026, 1, 1), date(2027, 1, 1), domain.PeriodQuarterly)
	require.NoError(t, err)
	assert.Len(t, quarterly, 4)
}

func TestDistribute_ConservesAcrossPeriodTypes(t *testing.T) {
	cases := []struct {
		periodType domain.PeriodType
		end        time.Time
	}{
		{domain.PeriodDaily, date(2026, 1, 11)},
		{domain.PeriodWeekly, date(2026, 2, 26)},
		{domain.PeriodMonthly, date(2026, 8, 1)},
		{domain.PeriodQuarterly, date(2027, 1, 1)},
	}
	for _, tc := range cases {
		t.Run(string(tc.periodType), func(t *testing.T) {
			slices, err := Distribute(date(2026, 1, 1), tc.end, 99999.97, tc.periodType, domain.MethodLinear)
			require.NoError(t, err)
			require.NotEmpty(t, slices)

			var sum float64
			for _, s := range slices {
				sum += s.PlannedValue
			}
			assert.InDelta(t, 99999.97, sum, 1e-6)
		})
	}
}

func TestDistribute_ConservesTotalExactly(t *testing.T) {
	// 100000/7 does not round cleanly; the final period must absorb the
	// remainder so the slices sum back to the total.
	methods := []domain.DistributionMethod{
		domain.MethodLinear, domain.MethodFrontLoaded, domain.MethodBackLoaded,
	}
	for _, method := range methods {
		t.Run(string(method), func(t *testing.T) {
			slices, err := Distribute(date(2026, 1, 1), date(2026, 8, 1), 100000, domain.PeriodMonthly, method)
			require.NoError(t, err)
			require.Len(t, slices, 7)

			var sum float64
			for _, s := range slices {
				sum += s.PlannedValue
			}
			assert.InDelta(t, 100000.0, sum, 1e-6)
			assert.InDelta(t, 100000.0, slices[len(slices)-1].CumulativeValue, 1e-6)
		})
	}
}

func TestDistribute_Linear(t *testing.T) {
	slices, err := Distribute(date(2026, 1, 1), date(2026, 5, 1), 40000, domain.PeriodMonthly, domain.MethodLinear)
	require.NoError(t, err)
	require.Len(t, slices, 4)

	for _, s := range slices {
		assert.InDelta(t, 10000, s.PlannedValue, 0.01)
	}
	assert.InDelta(t, 20000, slices[1].CumulativeValue, 0.01)
}

func TestDistribute_FrontLoadedDecreases(t *testing.T) {
	slices, err := Distribute(date(2026, 1, 1), date(2026, 5, 1), 100000, domain.PeriodMonthly, domain.MethodFrontLoaded)
	require.NoError(t, err)

	for i := 1; i < len(slices); i++ {
		assert.Less(t, slices[i].PlannedValue, slices[i-1].PlannedValue)
	}
}

func TestDistribute_BackLoadedIncreases(t *testing.T) {
	slices, err := Distribute(date(2026, 1, 1), date(2026, 5, 1), 100000, domain.PeriodMonthly, domain.MethodBackLoaded)
	require.NoError(t, err)

	for i := 1; i < len(slices); i++ {
		assert.Greater(t, slices[i].PlannedValue, slices[i-1].PlannedValue)
	}
}

func TestDistribute_NegativeBudget(t *testing.T) {
	_, err := Distribute(date(2026, 1, 1), date(2026, 5, 1), -1, domain.PeriodMonthly, domain.MethodLinear)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDistribute_ZeroBudget(t *testing.T) {
	slices, err := Distribute(date(2026, 1, 1), date(2026, 4, 1), 0, domain.PeriodMonthly, domain.MethodLinear)
	require.NoError(t, err)
	for _, s := range slices {
		assert.Zero(t, s.PlannedValue)
	}
}

func TestApportionResources_SumsExactly(t *testing.T) {
	f := ResourceFractions{Labor: 0.4, Material: 0.3, Equipment: 0.1, Subcontract: 0.15, Other: 0.05}
	require.InDelta(t, 1.0, f.Sum(), 1e-9)

	labor, material, equipment, subcontract, other := ApportionResources(33333.33, f)
	total := labor + material + equipment + subcontract + other
	assert.InDelta(t, 33333.33, total, 1e-6, "the other category absorbs the rounding remainder")
	assert.InDelta(t, 13333.33, labor, 0.01)
}
