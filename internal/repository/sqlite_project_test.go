package repository

import (
	"context"
	"testing"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	p := testutil.NewTestProject("Edificio Central")
	require.NoError(t, repo.Create(ctx, p))

	fetched, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edificio Central", fetched.Name)
	assert.Equal(t, "CLP", fetched.Currency)

	byCode, err := repo.GetByCode(ctx, p.Code)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)
}

func TestProjectRepo_GetMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepo_ListSkipsArchived(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	active := testutil.NewTestProject("Active")
	archived := testutil.NewTestProject("Archived", testutil.WithProjectStatus(domain.ProjectArchived))
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, archived))

	visible, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPhaseRepo_ListByProject(t *testing.T) {
	db := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(db)
	phases := NewSQLitePhaseRepo(db)
	ctx := context.Background()

	p := testutil.NewTestProject("Phased")
	require.NoError(t, projects.Create(ctx, p))

	require.NoError(t, phases.Create(ctx, testutil.NewTestPhase(p.ID, "Obra gruesa", 2)))
	require.NoError(t, phases.Create(ctx, testutil.NewTestPhase(p.ID, "Fundaciones", 1)))

	list, err := phases.ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Fundaciones", list[0].Name, "phases come back in sequence order")
}

func TestControlAccountRepo_RoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(db)
	accounts := NewSQLiteControlAccountRepo(db)
	ctx := context.Background()

	p := testutil.NewTestProject("CA Project")
	require.NoError(t, projects.Create(ctx, p))

	ca := testutil.NewTestControlAccount(p.ID, "Movimiento de tierras", testutil.WithBAC(500000))
	require.NoError(t, accounts.Create(ctx, ca))

	fetched, err := accounts.GetByID(ctx, ca.ID)
	require.NoError(t, err)
	assert.Equal(t, 500000.0, fetched.BAC)
	assert.False(t, fetched.Baselined)

	fetched.MarkBaselined(2, fetched.UpdatedAt)
	require.NoError(t, accounts.Update(ctx, fetched))

	again, err := accounts.GetByCode(ctx, p.ID, ca.Code)
	require.NoError(t, err)
	assert.True(t, again.Baselined)
	assert.Equal(t, 2, again.BaselineRevision)
}
