package domain

import (
	"fmt"
	"time"
)

// ControlAccount is the budget and authority unit where earned value is
// formally measured. BAC is immutable once a baseline exists; changes go
// through a new time-phased budget revision.
type ControlAccount struct {
	ID               string
	ProjectID        string
	PhaseID          *string
	Code             string
	Name             string
	Manager          string // responsible party
	BAC              float64
	BaselineRevision int  // 0 = never baselined
	Baselined        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks creation inputs.
func (c *ControlAccount) Validate() error {
	if c.Code == "" {
		return fmt.Errorf("control account code is required: %w", ErrValidation)
	}
	if c.BAC < 0 {
		return fmt.Errorf("control account %s: BAC %.2f must not be negative: %w", c.Code, c.BAC, ErrValidation)
	}
	return nil
}

// SetBAC updates the budget at completion. Rejected once baselined;
// formal change control creates a new revision instead.
func (c *ControlAccount) SetBAC(bac float64, now time.Time) error {
	if c.Baselined {
		return &BaselineImmutableError{ControlAccountID: c.ID, Revision: c.BaselineRevision}
	}
	if bac < 0 {
		return fmt.Errorf("control account %s: BAC %.2f must not be negative: %w", c.Code, bac, ErrValidation)
	}
	c.BAC = bac
	c.UpdatedAt = now
	return nil
}

// MarkBaselined records that revision rev of the time-phased budget is
// now the EVM comparison baseline.
func (c *ControlAccount) MarkBaselined(rev int, now time.Time) {
	c.Baselined = true
	c.BaselineRevision = rev
	c.UpdatedAt = now
}
