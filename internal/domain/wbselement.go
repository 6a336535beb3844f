package domain

import (
	"fmt"
	"regexp"
	"time"
)

var wbsCodePattern = regexp.MustCompile(`^[A-Za-z0-9]+(\.[A-Za-z0-9]+)*$`)

// WBSElement is one node of a project's work breakdown structure.
// Level and Sequence are derived from the parent at creation time and
// recomputed on move/reorder; the element type state machine lives in
// the conversion methods below.
type WBSElement struct {
	ID               string
	ProjectID        string
	Code             string
	Name             string
	Type             ElementType
	Level            int // root = 1
	Sequence         int // 1-based position among siblings
	ParentID         *string
	ControlAccountID *string // only for work/planning packages

	// WBS dictionary
	Deliverable        string
	AcceptanceCriteria string
	Assumptions        string
	Constraints        string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateCode checks the code is non-empty and dot-separated alphanumeric
// segments (e.g. "1.2.3" or "CIV.01").
func (e *WBSElement) ValidateCode() error {
	if e.Code == "" {
		return fmt.Errorf("wbs code is required: %w", ErrValidation)
	}
	if !wbsCodePattern.MatchString(e.Code) {
		return fmt.Errorf("wbs code %q must be dot-separated alphanumeric segments: %w", e.Code, ErrValidation)
	}
	return nil
}

// IsPackage reports whether the element is a leaf-only package type.
func (e *WBSElement) IsPackage() bool {
	return e.Type == ElementWorkPackage || e.Type == ElementPlanningPackage
}

// ConvertToWorkPackage transitions a summary-level element to a work
// package. hasChildren is the caller-supplied child count check; package
// types are leaf-only.
func (e *WBSElement) ConvertToWorkPackage(hasChildren bool, now time.Time) error {
	if e.Type == ElementWorkPackage {
		return &AlreadyConvertedError{ElementID: e.ID, Code: e.Code, Type: ElementWorkPackage}
	}
	if e.Type != ElementLevel {
		return &IllegalConversionError{ElementID: e.ID, Code: e.Code, From: e.Type, To: ElementWorkPackage}
	}
	if hasChildren {
		return &HasChildrenError{ElementID: e.ID, Code: e.Code, Operation: "convert"}
	}
	e.Type = ElementWorkPackage
	e.UpdatedAt = now
	return nil
}

// ConvertToPlanningPackage transitions a summary-level element to a
// planning package.
func (e *WBSElement) ConvertToPlanningPackage(hasChildren bool, now time.Time) error {
	if e.Type == ElementPlanningPackage {
		return &AlreadyConvertedError{ElementID: e.ID, Code: e.Code, Type: ElementPlanningPackage}
	}
	if e.Type != ElementLevel {
		return &IllegalConversionError{ElementID: e.ID, Code: e.Code, From: e.Type, To: ElementPlanningPackage}
	}
	if hasChildren {
		return &HasChildrenError{ElementID: e.ID, Code: e.Code, Operation: "convert"}
	}
	e.Type = ElementPlanningPackage
	e.UpdatedAt = now
	return nil
}

// ConvertPlanningToWorkPackage finalizes a planning package into a work
// package, carrying the control account link forward.
func (e *WBSElement) ConvertPlanningToWorkPackage(now time.Time) error {
	if e.Type == ElementWorkPackage {
		return &AlreadyConvertedError{ElementID: e.ID, Code: e.Code, Type: ElementWorkPackage}
	}
	if e.Type != ElementPlanningPackage {
		return &IllegalConversionError{ElementID: e.ID, Code: e.Code, From: e.Type, To: ElementWorkPackage}
	}
	e.Type = ElementWorkPackage
	e.UpdatedAt = now
	return nil
}

// CanDelete checks deletion preconditions. Execution data means budget
// slices or progress observations recorded against the element.
func (e *WBSElement) CanDelete(hasChildren, hasExecutionData bool) error {
	if hasChildren {
		return &HasChildrenError{ElementID: e.ID, Code: e.Code, Operation: "delete"}
	}
	if hasExecutionData {
		return &HasExecutionDataError{ElementID: e.ID, Code: e.Code}
	}
	return nil
}
