package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCode(t *testing.T) {
	valid := []string{"1", "1.2.3", "CIV", "CIV.01", "A1.B2.C3"}
	for _, code := range valid {
		e := &WBSElement{Code: code}
		assert.NoError(t, e.ValidateCode(), code)
	}

	invalid := []string{"", "1..2", ".1", "1.", "1 2", "1-2", "1.2.3."}
	for _, code := range invalid {
		e := &WBSElement{Code: code}
		assert.ErrorIs(t, e.ValidateCode(), ErrValidation, "%q should be rejected", code)
	}
}

func TestConvertToWorkPackage(t *testing.T) {
	now := time.Now()

	e := &WBSElement{ID: "e1", Code: "1.1", Type: ElementLevel}
	require.NoError(t, e.ConvertToWorkPackage(false, now))
	assert.Equal(t, ElementWorkPackage, e.Type)
	assert.Equal(t, now, e.UpdatedAt)
}

func TestConvertToWorkPackage_RejectsChildren(t *testing.T) {
	e := &WBSElement{ID: "e1", Code: "1.1", Type: ElementLevel}
	err := e.ConvertToWorkPackage(true, time.Now())

	var hasChildren *HasChildrenError
	require.ErrorAs(t, err, &hasChildren)
	assert.ErrorIs(t, err, ErrStateConflict)
	assert.Equal(t, ElementLevel, e.Type, "failed conversion leaves the type unchanged")
}

func TestConvertToWorkPackage_Idempotence(t *testing.T) {
	e := &WBSElement{ID: "e1", Code: "1.1", Type: ElementWorkPackage}
	err := e.ConvertToWorkPackage(false, time.Now())

	var already *AlreadyConvertedError
	assert.ErrorAs(t, err, &already)
}

func TestConvertToPlanningPackage(t *testing.T) {
	e := &WBSElement{ID: "e1", Code: "2", Type: ElementLevel}
	require.NoError(t, e.ConvertToPlanningPackage(false, time.Now()))
	assert.Equal(t, ElementPlanningPackage, e.Type)
}

func TestConvertPlanningToWorkPackage(t *testing.T) {
	caID := "ca1"
	e := &WBSElement{ID: "e1", Code: "2", Type: ElementPlanningPackage, ControlAccountID: &caID}
	require.NoError(t, e.ConvertPlanningToWorkPackage(time.Now()))
	assert.Equal(t, ElementWorkPackage, e.Type)
	require.NotNil(t, e.ControlAccountID)
	assert.Equal(t, "ca1", *e.ControlAccountID, "finalization keeps the control account link")
}

func TestConvertPlanningToWorkPackage_RequiresPlanning(t *testing.T) {
	e := &WBSElement{ID: "e1", Code: "2", Type: ElementLevel}
	err := e.ConvertPlanningToWorkPackage(time.Now())

	var illegal *IllegalConversionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, ElementLevel, illegal.From)
}

func TestNoReverseConversion(t *testing.T) {
	// work_package -> planning_package has no path in the state machine.
	e := &WBSElement{ID: "e1", Code: "3", Type: ElementWorkPackage}
	err := e.ConvertToPlanningPackage(false, time.Now())

	var illegal *IllegalConversionError
	require.ErrorAs(t, err, &illegal)
}

func TestCanDelete(t *testing.T) {
	e := &WBSElement{ID: "e1", Code: "1.1"}

	assert.NoError(t, e.CanDelete(false, false))

	var hasChildren *HasChildrenError
	assert.ErrorAs(t, e.CanDelete(true, false), &hasChildren)

	var hasData *HasExecutionDataError
	assert.ErrorAs(t, e.CanDelete(false, true), &hasData)
}
