package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBudgetRepo(t *testing.T) (*SQLiteTimePhasedBudgetRepo, *domain.ControlAccount) {
	t.Helper()
	db := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(db)
	accounts := NewSQLiteControlAccountRepo(db)
	repo := NewSQLiteTimePhasedBudgetRepo(db)
	ctx := context.Background()

	p := testutil.NewTestProject("Budget")
	require.NoError(t, projects.Create(ctx, p))
	ca := testutil.NewTestControlAccount(p.ID, "Hormigones")
	require.NoError(t, accounts.Create(ctx, ca))
	return repo, ca
}

func monthlySlices(t *testing.T, caID string, revision int, values []float64) []*domain.TimePhasedBudget {
	t.Helper()
	slices := make([]*domain.TimePhasedBudget, 0, len(values))
	var cum float64
	for i, v := range values {
		start := time.Date(2026, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		s := testutil.NewTestBudgetSlice(caID, i+1, start, end, v, revision)
		cum += v
		s.CumulativeValue = cum
		slices = append(slices, s)
	}
	return slices
}

func TestTimePhasedRepo_CreateAndList(t *testing.T) {
	repo, ca := setupBudgetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, monthlySlices(t, ca.ID, 1, []float64{10000, 20000, 30000})))

	slices, err := repo.ListByRevision(ctx, ca.ID, 1)
	require.NoError(t, err)
	require.Len(t, slices, 3)
	assert.Equal(t, 1, slices[0].PeriodNumber)
	assert.Equal(t, 60000.0, slices[2].CumulativeValue)
	assert.False(t, slices[0].IsBaseline)
}

func TestTimePhasedRepo_Revisions(t *testing.T) {
	repo, ca := setupBudgetRepo(t)
	ctx := context.Background()

	rev, err := repo.LatestRevision(ctx, ca.ID)
	require.NoError(t, err)
	assert.Zero(t, rev, "no distribution yet")

	require.NoError(t, repo.CreateBatch(ctx, monthlySlices(t, ca.ID, 1, []float64{50000})))
	require.NoError(t, repo.CreateBatch(ctx, monthlySlices(t, ca.ID, 2, []float64{60000})))

	rev, err = repo.LatestRevision(ctx, ca.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rev)

	baseline, err := repo.BaselineRevision(ctx, ca.ID)
	require.NoError(t, err)
	assert.Zero(t, baseline)

	require.NoError(t, repo.MarkBaseline(ctx, ca.ID, 1))
	baseline, err = repo.BaselineRevision(ctx, ca.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, baseline)

	slices, err := repo.ListByRevision(ctx, ca.ID, 1)
	require.NoError(t, err)
	assert.True(t, slices[0].IsBaseline)
}

func TestTimePhasedRepo_CumulativePlannedValue(t *testing.T) {
	repo, ca := setupBudgetRepo(t)
	ctx := context.Background()

	// Jan, Feb, Mar 2026 at 10k each.
	require.NoError(t, repo.CreateBatch(ctx, monthlySlices(t, ca.ID, 1, []float64{10000, 10000, 10000})))

	// Through end of February: two full periods.
	pv, err := repo.CumulativePlannedValue(ctx, ca.ID, 1,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 20000, pv, 0.01)

	// Mid-January: pro-rata share of the first period.
	pv, err = repo.CumulativePlannedValue(ctx, ca.ID, 1,
		time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Greater(t, pv, 4000.0)
	assert.Less(t, pv, 6000.0)

	// Past the last period: full total.
	pv, err = repo.CumulativePlannedValue(ctx, ca.ID, 1,
		time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 30000, pv, 0.01)
}

func TestTimePhasedRepo_UpdateResourceBreakdown(t *testing.T) {
	repo, ca := setupBudgetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, monthlySlices(t, ca.ID, 1, []float64{10000})))
	slices, err := repo.ListByRevision(ctx, ca.ID, 1)
	require.NoError(t, err)

	s := slices[0]
	s.LaborCost = 4000
	s.MaterialCost = 3000
	s.EquipmentCost = 1000
	s.SubcontractCost = 1500
	s.OtherCost = 500
	require.NoError(t, repo.UpdateResourceBreakdown(ctx, s))

	again, err := repo.ListByRevision(ctx, ca.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, again[0].LaborCost)
	assert.InDelta(t, 10000.0, again[0].ResourceTotal(), 0.01)
	assert.Equal(t, 10000.0, again[0].PlannedValue, "planned value untouched")
}

func TestTimePhasedRepo_DeleteRevision(t *testing.T) {
	repo, ca := setupBudgetRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, monthlySlices(t, ca.ID, 1, []float64{10000})))
	require.NoError(t, repo.CreateBatch(ctx, monthlySlices(t, ca.ID, 2, []float64{12000})))

	require.NoError(t, repo.DeleteRevision(ctx, ca.ID, 1))

	gone, err := repo.ListByRevision(ctx, ca.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := repo.ListByRevision(ctx, ca.ID, 2)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
