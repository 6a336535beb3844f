package service

import (
	"context"
	"testing"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHierarchyService_CreateElement_Levels(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Edificio Las Condes")

	root := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1", Name: "Obra gruesa"})
	assert.Equal(t, 1, root.Level)
	assert.Equal(t, 1, root.Sequence)
	assert.Equal(t, domain.ElementLevel, root.Type)

	second := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "2", Name: "Terminaciones"})
	assert.Equal(t, 1, second.Level)
	assert.Equal(t, 2, second.Sequence, "roots sequence in creation order")

	child := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1.1", Name: "Fundaciones", ParentID: &root.ID})
	assert.Equal(t, 2, child.Level)
	assert.Equal(t, 1, child.Sequence)

	sibling := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1.2", Name: "Estructura", ParentID: &root.ID})
	assert.Equal(t, 2, sibling.Sequence)

	_, err := env.hierarchy.CreateElement(ctx, CreateElementInput{ProjectID: p.ID, Code: "1.1", Name: "Duplicado"})
	var dup *domain.DuplicateCodeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "1.1", dup.Code)
}

func TestHierarchyService_CreateElement_RejectsPackageParent(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Bodega")

	leaf := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1", Name: "Radier"})
	_, err := env.hierarchy.ConvertToWorkPackage(ctx, leaf.ID, "tester")
	require.NoError(t, err)

	_, err = env.hierarchy.CreateElement(ctx, CreateElementInput{ProjectID: p.ID, Code: "1.1", Name: "Bajo paquete", ParentID: &leaf.ID})
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestHierarchyService_GetTree_Paths(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Planta")

	root := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "CIV", Name: "Civil"})
	child := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "MT", Name: "Movimiento de tierra", ParentID: &root.ID})
	env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "EXC", Name: "Excavaciones", ParentID: &child.ID})
	env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "MON", Name: "Montaje"})

	tree, err := env.hierarchy.GetTree(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tree, 2)

	assert.Equal(t, "CIV", tree[0].Path)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "CIV.MT", tree[0].Children[0].Path)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "CIV.MT.EXC", tree[0].Children[0].Children[0].Path, "path chains ancestor codes")
	assert.Equal(t, "MON", tree[1].Path)
	assert.Empty(t, tree[1].Children)
}

func TestHierarchyService_Convert_StateMachine(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Conversiones")

	root := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1", Name: "Sumario"})
	env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1.1", Name: "Hoja", ParentID: &root.ID})

	// Summary nodes never convert.
	_, err := env.hierarchy.ConvertToWorkPackage(ctx, root.ID, "tester")
	var hasChildren *domain.HasChildrenError
	require.ErrorAs(t, err, &hasChildren)

	stored, err := env.hierarchy.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ElementLevel, stored.Type, "failed conversion leaves the stored type unchanged")

	leaf, err := env.hierarchy.GetByCode(ctx, p.ID, "1.1")
	require.NoError(t, err)
	converted, err := env.hierarchy.ConvertToPlanningPackage(ctx, leaf.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, domain.ElementPlanningPackage, converted.Type)

	_, err = env.hierarchy.ConvertToPlanningPackage(ctx, leaf.ID, "tester")
	var already *domain.AlreadyConvertedError
	assert.ErrorAs(t, err, &already)
}

func TestHierarchyService_ConvertPlanningToWorkPackage_KeepsAccount(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Paquetes")
	ca := env.newAccount(t, p.ID)

	leaf := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1", Name: "Enfierradura"})
	_, err := env.hierarchy.ConvertToPlanningPackage(ctx, leaf.ID, "tester")
	require.NoError(t, err)
	_, err = env.hierarchy.AssignControlAccount(ctx, leaf.ID, ca.ID, "tester")
	require.NoError(t, err)

	final, err := env.hierarchy.ConvertPlanningToWorkPackage(ctx, leaf.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, domain.ElementWorkPackage, final.Type)
	require.NotNil(t, final.ControlAccountID)
	assert.Equal(t, ca.ID, *final.ControlAccountID)

	// Work packages never go back to planning.
	_, err = env.hierarchy.ConvertToPlanningPackage(ctx, leaf.ID, "tester")
	assert.Error(t, err)
}

func TestHierarchyService_RenameAndDictionary(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Diccionario")
	e := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1", Name: "Losa"})

	renamed, err := env.hierarchy.Rename(ctx, e.ID, "Losa nivel 2", "tester")
	require.NoError(t, err)
	assert.Equal(t, "Losa nivel 2", renamed.Name)

	_, err = env.hierarchy.UpdateDictionary(ctx, e.ID,
		"Losa hormigonada y curada", "Resistencia a 28 dias", "Acceso con bomba", "Sin trabajos nocturnos", "tester")
	require.NoError(t, err)

	fresh, err := env.hierarchy.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Losa hormigonada y curada", fresh.Deliverable)
	assert.Equal(t, "Resistencia a 28 dias", fresh.AcceptanceCriteria)
	assert.Equal(t, "Sin trabajos nocturnos", fresh.Constraints)
}

func TestHierarchyService_AssignControlAccount_LevelsRejected(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Asignaciones")
	ca := env.newAccount(t, p.ID)

	level := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1", Name: "Nivel"})
	_, err := env.hierarchy.AssignControlAccount(ctx, level.ID, ca.ID, "tester")
	assert.ErrorIs(t, err, domain.ErrStateConflict)
}

func TestHierarchyService_Move(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Reubicaciones")

	a := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "A", Name: "A"})
	b := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "B", Name: "B", ParentID: &a.ID})
	c := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "C", Name: "C", ParentID: &b.ID})
	d := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "D", Name: "D"})

	// B (with its subtree) moves under D.
	moved, err := env.hierarchy.Move(ctx, b.ID, &d.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Level)

	freshC, err := env.hierarchy.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, freshC.Level, "descendants relevel with the subtree")

	// Moving D under its own descendant C is a cycle.
	_, err = env.hierarchy.Move(ctx, d.ID, &c.ID, "tester")
	var cycle *domain.CycleError
	require.ErrorAs(t, err, &cycle)

	_, err = env.hierarchy.Move(ctx, d.ID, &d.ID, "tester")
	assert.ErrorAs(t, err, &cycle, "self-parenting is the trivial cycle")

	// Moving to the root reparents and relevels.
	moved, err = env.hierarchy.Move(ctx, b.ID, nil, "tester")
	require.NoError(t, err)
	assert.Nil(t, moved.ParentID)
	assert.Equal(t, 1, moved.Level)

	freshC, err = env.hierarchy.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, freshC.Level)
}

func TestHierarchyService_Reorder(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Orden")

	root := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1", Name: "Root"})
	x := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1.1", Name: "X", ParentID: &root.ID})
	y := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1.2", Name: "Y", ParentID: &root.ID})

	require.NoError(t, env.hierarchy.Reorder(ctx, &root.ID, p.ID, []string{y.ID, x.ID}, "tester"))

	freshY, err := env.hierarchy.GetByID(ctx, y.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, freshY.Sequence)
	freshX, err := env.hierarchy.GetByID(ctx, x.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, freshX.Sequence)

	other := env.newProject(t, "Otro proyecto")
	foreign := env.newElement(t, CreateElementInput{ProjectID: other.ID, Code: "1", Name: "Ajeno"})
	err = env.hierarchy.Reorder(ctx, &root.ID, p.ID, []string{foreign.ID}, "tester")
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Elements outside the named sibling group cannot be reordered.
	err = env.hierarchy.Reorder(ctx, nil, p.ID, []string{x.ID}, "tester")
	assert.ErrorIs(t, err, domain.ErrValidation, "x is not a root")
	err = env.hierarchy.Reorder(ctx, &x.ID, p.ID, []string{y.ID}, "tester")
	assert.ErrorIs(t, err, domain.ErrValidation, "y is not a child of x")
}

func TestHierarchyService_Move_SequencesStayDense(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Secuencias")

	a := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "A", Name: "A"})
	b := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "B", Name: "B"})
	c := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "C", Name: "C"})

	// Sending the first root to the back keeps the roots numbered 1..n.
	moved, err := env.hierarchy.Move(ctx, a.ID, nil, "tester")
	require.NoError(t, err)
	assert.Equal(t, 3, moved.Sequence)

	roots, err := env.elements.ListRoots(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, roots, 3)
	for i, e := range roots {
		assert.Equal(t, i+1, e.Sequence)
	}
	assert.Equal(t, b.ID, roots[0].ID)
	assert.Equal(t, c.ID, roots[1].ID)
	assert.Equal(t, a.ID, roots[2].ID)

	// Reparenting away closes the vacated root position too.
	movedC, err := env.hierarchy.Move(ctx, c.ID, &b.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, movedC.Sequence)

	roots, err = env.elements.ListRoots(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, 1, roots[0].Sequence)
	assert.Equal(t, 2, roots[1].Sequence)
	assert.Equal(t, a.ID, roots[1].ID)
}

func TestHierarchyService_Delete_Guards(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Bajas")

	root := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1", Name: "Root"})
	leaf := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1.1", Name: "Hoja", ParentID: &root.ID})

	err := env.hierarchy.Delete(ctx, root.ID, "tester")
	var hasChildren *domain.HasChildrenError
	require.ErrorAs(t, err, &hasChildren)

	// A leaf with ledger entries cannot be removed.
	_, err = env.hierarchy.ConvertToWorkPackage(ctx, leaf.ID, "tester")
	require.NoError(t, err)
	obs := testutil.NewTestProgress(leaf.ID, 10)
	require.NoError(t, env.ledger.Create(ctx, obs))

	err = env.hierarchy.Delete(ctx, leaf.ID, "tester")
	var hasData *domain.HasExecutionDataError
	require.ErrorAs(t, err, &hasData)

	// A bare leaf goes away.
	clean := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1.2", Name: "Limpia", ParentID: &root.ID})
	require.NoError(t, env.hierarchy.Delete(ctx, clean.ID, "tester"))
	_, err = env.hierarchy.GetByID(ctx, clean.ID)
	assert.Error(t, err)
}

func TestHierarchyService_Delete_BudgetedAccountBlocks(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	p := env.newProject(t, "Presupuestados")
	ca := env.newAccount(t, p.ID)

	leaf := env.newElement(t, CreateElementInput{ProjectID: p.ID, Code: "1", Name: "Techumbre"})
	_, err := env.hierarchy.ConvertToWorkPackage(ctx, leaf.ID, "tester")
	require.NoError(t, err)
	_, err = env.hierarchy.AssignControlAccount(ctx, leaf.ID, ca.ID, "tester")
	require.NoError(t, err)

	start, end := monthRange(2026, time.January, 3)
	_, err = env.budget.Distribute(ctx, DistributeInput{
		ControlAccountID: ca.ID,
		Start:            start,
		End:              end,
		TotalBudget:      30000,
		ActorID:          "tester",
	})
	require.NoError(t, err)

	err = env.hierarchy.Delete(ctx, leaf.ID, "tester")
	var hasData *domain.HasExecutionDataError
	assert.ErrorAs(t, err, &hasData)
}
