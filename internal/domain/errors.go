package domain

import (
	"errors"
	"fmt"
)

// Error categories. Concrete errors below unwrap to one of these so
// callers can branch with errors.Is without matching concrete types.
var (
	ErrValidation         = errors.New("validation failed")
	ErrStateConflict      = errors.New("state conflict")
	ErrHierarchyIntegrity = errors.New("hierarchy integrity violation")
)

// DuplicateCodeError reports a WBS code collision within a project.
type DuplicateCodeError struct {
	ProjectID string
	Code      string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("wbs code %q already exists in project %s", e.Code, e.ProjectID)
}

func (e *DuplicateCodeError) Unwrap() error { return ErrHierarchyIntegrity }

// HasChildrenError reports an operation that is illegal on a node with children.
type HasChildrenError struct {
	ElementID string
	Code      string
	Operation string
}

func (e *HasChildrenError) Error() string {
	return fmt.Sprintf("cannot %s element %s (%s): element has children", e.Operation, e.Code, e.ElementID)
}

func (e *HasChildrenError) Unwrap() error { return ErrStateConflict }

// HasExecutionDataError reports a delete attempt on an element carrying
// budget or actual-cost data.
type HasExecutionDataError struct {
	ElementID string
	Code      string
}

func (e *HasExecutionDataError) Error() string {
	return fmt.Sprintf("cannot delete element %s (%s): element carries execution data", e.Code, e.ElementID)
}

func (e *HasExecutionDataError) Unwrap() error { return ErrStateConflict }

// AlreadyConvertedError reports a conversion to a type the element already has.
type AlreadyConvertedError struct {
	ElementID string
	Code      string
	Type      ElementType
}

func (e *AlreadyConvertedError) Error() string {
	return fmt.Sprintf("element %s (%s) is already of type %s", e.Code, e.ElementID, e.Type)
}

func (e *AlreadyConvertedError) Unwrap() error { return ErrStateConflict }

// IllegalConversionError reports a type transition the state machine forbids.
type IllegalConversionError struct {
	ElementID string
	Code      string
	From      ElementType
	To        ElementType
}

func (e *IllegalConversionError) Error() string {
	return fmt.Sprintf("element %s (%s): conversion %s -> %s is not permitted", e.Code, e.ElementID, e.From, e.To)
}

func (e *IllegalConversionError) Unwrap() error { return ErrStateConflict }

// CycleError reports a move that would make a node its own ancestor.
type CycleError struct {
	ElementID   string
	NewParentID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("moving element %s under %s would create a cycle", e.ElementID, e.NewParentID)
}

func (e *CycleError) Unwrap() error { return ErrHierarchyIntegrity }

// OutOfRangeError reports a progress percentage outside [0,100].
type OutOfRangeError struct {
	Field string
	Value float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s %.2f is outside [0,100]", e.Field, e.Value)
}

func (e *OutOfRangeError) Unwrap() error { return ErrValidation }

// RegressionError reports a plain progress record whose current percentage
// is below the previous one. Regressing requires the override path.
type RegressionError struct {
	ElementID   string
	PreviousPct float64
	CurrentPct  float64
}

func (e *RegressionError) Error() string {
	return fmt.Sprintf("element %s: progress regression %.2f%% -> %.2f%% requires an override with justification",
		e.ElementID, e.PreviousPct, e.CurrentPct)
}

func (e *RegressionError) Unwrap() error { return ErrValidation }

// InvalidRangeError reports a malformed distribution request.
type InvalidRangeError struct {
	Start  string
	End    string
	Budget float64
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid distribution range [%s, %s] budget %.2f: %s", e.Start, e.End, e.Budget, e.Reason)
}

func (e *InvalidRangeError) Unwrap() error { return ErrValidation }

// AlreadyApprovedError reports re-approval of an approved observation or report.
type AlreadyApprovedError struct {
	Kind string // "progress" or "report"
	ID   string
}

func (e *AlreadyApprovedError) Error() string {
	return fmt.Sprintf("%s %s is already approved", e.Kind, e.ID)
}

func (e *AlreadyApprovedError) Unwrap() error { return ErrStateConflict }

// MissingExplanationError blocks report approval while a critical item
// lacks a variance explanation.
type MissingExplanationError struct {
	ReportID string
	ItemID   string
	Code     string
}

func (e *MissingExplanationError) Error() string {
	return fmt.Sprintf("report %s: critical item %s (%s) has no variance explanation", e.ReportID, e.ItemID, e.Code)
}

func (e *MissingExplanationError) Unwrap() error { return ErrStateConflict }

// ReportImmutableError reports mutation of an approved report.
type ReportImmutableError struct {
	ReportID string
}

func (e *ReportImmutableError) Error() string {
	return fmt.Sprintf("report %s is approved and immutable; regenerate instead", e.ReportID)
}

func (e *ReportImmutableError) Unwrap() error { return ErrStateConflict }

// BaselineImmutableError reports mutation of baselined budget slices.
type BaselineImmutableError struct {
	ControlAccountID string
	Revision         int
}

func (e *BaselineImmutableError) Error() string {
	return fmt.Sprintf("control account %s: baseline revision %d is immutable; redistribute as a new revision",
		e.ControlAccountID, e.Revision)
}

func (e *BaselineImmutableError) Unwrap() error { return ErrStateConflict }
