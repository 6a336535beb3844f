package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cvergaras/obracost/internal/db"
	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/repository"
	"github.com/google/uuid"
)

type hierarchyService struct {
	elements repository.WBSElementRepo
	accounts repository.ControlAccountRepo
	budgets  repository.TimePhasedBudgetRepo
	progress repository.ProgressRepo
	uow      db.UnitOfWork
	locks    *LockRegistry
	observer UseCaseObserver
	now      func() time.Time
}

func NewHierarchyService(
	elements repository.WBSElementRepo,
	accounts repository.ControlAccountRepo,
	budgets repository.TimePhasedBudgetRepo,
	progress repository.ProgressRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) HierarchyService {
	return &hierarchyService{
		elements: elements,
		accounts: accounts,
		budgets:  budgets,
		progress: progress,
		uow:      uow,
		locks:    NewLockRegistry(),
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *hierarchyService) CreateElement(ctx context.Context, in CreateElementInput) (element *domain.WBSElement, err error) {
	defer s.observe(ctx, "wbs-create", s.now(), map[string]any{"project": in.ProjectID, "code": in.Code}, &err)

	if in.Type == "" {
		in.Type = domain.ElementLevel
	}
	if !domain.ValidElementTypes[string(in.Type)] {
		return nil, fmt.Errorf("unknown element type %q: %w", in.Type, domain.ErrValidation)
	}

	lock := s.locks.get(in.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	element = &domain.WBSElement{
		ID:        uuid.New().String(),
		ProjectID: in.ProjectID,
		Code:      in.Code,
		Name:      in.Name,
		Type:      in.Type,
		ParentID:  in.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = element.ValidateCode(); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txElements := repository.NewSQLiteWBSElementRepo(tx)

		if _, lookupErr := txElements.GetByCode(ctx, in.ProjectID, in.Code); lookupErr == nil {
			return &domain.DuplicateCodeError{ProjectID: in.ProjectID, Code: in.Code}
		} else if !errors.Is(lookupErr, repository.ErrNotFound) {
			return lookupErr
		}

		if in.ParentID != nil {
			parent, parentErr := txElements.GetByID(ctx, *in.ParentID)
			if parentErr != nil {
				return fmt.Errorf("resolving parent %s: %w", *in.ParentID, parentErr)
			}
			if parent.IsPackage() {
				return fmt.Errorf("element %s (%s) is a %s and cannot have children: %w",
					parent.Code, parent.ID, parent.Type, domain.ErrStateConflict)
			}
			siblings, countErr := txElements.CountChildren(ctx, parent.ID)
			if countErr != nil {
				return countErr
			}
			element.Level = parent.Level + 1
			element.Sequence = siblings + 1
		} else {
			roots, rootsErr := txElements.ListRoots(ctx, in.ProjectID)
			if rootsErr != nil {
				return rootsErr
			}
			element.Level = 1
			element.Sequence = len(roots) + 1
		}

		return txElements.Create(ctx, element)
	})
	if err != nil {
		return nil, err
	}
	return element, nil
}

func (s *hierarchyService) GetByID(ctx context.Context, id string) (*domain.WBSElement, error) {
	return s.elements.GetByID(ctx, id)
}

func (s *hierarchyService) GetByCode(ctx context.Context, projectID, code string) (*domain.WBSElement, error) {
	return s.elements.GetByCode(ctx, projectID, code)
}

// GetTree returns the project's WBS as a forest with display paths built
// from ancestor codes. Paths are derived on read, never stored.
func (s *hierarchyService) GetTree(ctx context.Context, projectID string) ([]*TreeNode, error) {
	elements, err := s.elements.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*TreeNode, len(elements))
	for _, e := range elements {
		nodes[e.ID] = &TreeNode{Element: e}
	}

	var roots []*TreeNode
	for _, e := range elements {
		n := nodes[e.ID]
		if e.ParentID == nil {
			n.Path = e.Code
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*e.ParentID]
		if !ok {
			return nil, fmt.Errorf("element %s references missing parent %s: %w",
				e.Code, *e.ParentID, domain.ErrHierarchyIntegrity)
		}
		parent.Children = append(parent.Children, n)
	}

	// ListByProject orders by (level, sequence), so parents precede
	// children and paths resolve in one pass.
	for _, e := range elements {
		if e.ParentID != nil {
			nodes[e.ID].Path = nodes[*e.ParentID].Path + "." + e.Code
		}
	}
	return roots, nil
}

func (s *hierarchyService) Rename(ctx context.Context, id, name, actorID string) (*domain.WBSElement, error) {
	e, err := s.elements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Name = name
	e.UpdatedAt = s.now()
	if err := s.elements.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *hierarchyService) UpdateDictionary(ctx context.Context, id string, deliverable, acceptance, assumptions, constraints string, actorID string) (*domain.WBSElement, error) {
	e, err := s.elements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Deliverable = deliverable
	e.AcceptanceCriteria = acceptance
	e.Assumptions = assumptions
	e.Constraints = constraints
	e.UpdatedAt = s.now()
	if err := s.elements.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *hierarchyService) AssignControlAccount(ctx context.Context, id, controlAccountID, actorID string) (*domain.WBSElement, error) {
	e, err := s.elements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.IsPackage() {
		return nil, fmt.Errorf("element %s (%s) is a %s; only work and planning packages carry a control account: %w",
			e.Code, e.ID, e.Type, domain.ErrStateConflict)
	}
	if _, err := s.accounts.GetByID(ctx, controlAccountID); err != nil {
		return nil, fmt.Errorf("resolving control account %s: %w", controlAccountID, err)
	}
	e.ControlAccountID = &controlAccountID
	e.UpdatedAt = s.now()
	if err := s.elements.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *hierarchyService) ConvertToWorkPackage(ctx context.Context, id, actorID string) (*domain.WBSElement, error) {
	return s.convert(ctx, id, "wbs-convert-wp", func(e *domain.WBSElement, hasChildren bool, now time.Time) error {
		return e.ConvertToWorkPackage(hasChildren, now)
	})
}

func (s *hierarchyService) ConvertToPlanningPackage(ctx context.Context, id, actorID string) (*domain.WBSElement, error) {
	return s.convert(ctx, id, "wbs-convert-pp", func(e *domain.WBSElement, hasChildren bool, now time.Time) error {
		return e.ConvertToPlanningPackage(hasChildren, now)
	})
}

func (s *hierarchyService) ConvertPlanningToWorkPackage(ctx context.Context, id, actorID string) (*domain.WBSElement, error) {
	return s.convert(ctx, id, "wbs-finalize-pp", func(e *domain.WBSElement, hasChildren bool, now time.Time) error {
		return e.ConvertPlanningToWorkPackage(now)
	})
}

func (s *hierarchyService) convert(ctx context.Context, id, useCase string, transition func(e *domain.WBSElement, hasChildren bool, now time.Time) error) (element *domain.WBSElement, err error) {
	defer s.observe(ctx, useCase, s.now(), map[string]any{"element": id}, &err)

	e, err := s.elements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lock := s.locks.get(e.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txElements := repository.NewSQLiteWBSElementRepo(tx)
		fresh, txErr := txElements.GetByID(ctx, id)
		if txErr != nil {
			return txErr
		}
		children, txErr := txElements.CountChildren(ctx, id)
		if txErr != nil {
			return txErr
		}
		if txErr := transition(fresh, children > 0, s.now()); txErr != nil {
			return txErr
		}
		element = fresh
		return txElements.Update(ctx, fresh)
	})
	if err != nil {
		return nil, err
	}
	return element, nil
}

// Reorder reassigns sequence numbers to the given elements in order.
// Parentage is untouched.
func (s *hierarchyService) Reorder(ctx context.Context, parentID *string, projectID string, orderedIDs []string, actorID string) (err error) {
	defer s.observe(ctx, "wbs-reorder", s.now(), map[string]any{"project": projectID, "count": len(orderedIDs)}, &err)

	lock := s.locks.get(projectID)
	lock.Lock()
	defer lock.Unlock()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txElements := repository.NewSQLiteWBSElementRepo(tx)
		now := s.now()
		for i, id := range orderedIDs {
			e, txErr := txElements.GetByID(ctx, id)
			if txErr != nil {
				return txErr
			}
			if e.ProjectID != projectID {
				return fmt.Errorf("element %s belongs to project %s, not %s: %w",
					e.Code, e.ProjectID, projectID, domain.ErrValidation)
			}
			if !sameParent(e.ParentID, parentID) {
				return fmt.Errorf("element %s is not a child of the given parent: %w",
					e.Code, domain.ErrValidation)
			}
			e.Sequence = i + 1
			e.UpdatedAt = now
			if txErr := txElements.Update(ctx, e); txErr != nil {
				return txErr
			}
		}
		return nil
	})
}

// Move reparents an element and recomputes levels for its whole subtree.
// The target must not be the element itself or any of its descendants.
func (s *hierarchyService) Move(ctx context.Context, id string, newParentID *string, actorID string) (element *domain.WBSElement, err error) {
	defer s.observe(ctx, "wbs-move", s.now(), map[string]any{"element": id}, &err)

	e, err := s.elements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lock := s.locks.get(e.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txElements := repository.NewSQLiteWBSElementRepo(tx)
		fresh, txErr := txElements.GetByID(ctx, id)
		if txErr != nil {
			return txErr
		}
		oldParentID := fresh.ParentID

		now := s.now()
		if newParentID == nil {
			roots, rootsErr := txElements.ListRoots(ctx, fresh.ProjectID)
			if rootsErr != nil {
				return rootsErr
			}
			fresh.ParentID = nil
			fresh.Level = 1
			// Append past every current root; the renumber below closes
			// the gap this leaves when the element was already a root.
			fresh.Sequence = len(roots) + 1
		} else {
			if *newParentID == id {
				return &domain.CycleError{ElementID: id, NewParentID: *newParentID}
			}
			parent, parentErr := txElements.GetByID(ctx, *newParentID)
			if parentErr != nil {
				return fmt.Errorf("resolving new parent %s: %w", *newParentID, parentErr)
			}
			if parent.IsPackage() {
				return fmt.Errorf("element %s (%s) is a %s and cannot have children: %w",
					parent.Code, parent.ID, parent.Type, domain.ErrStateConflict)
			}
			// Walking up from the target terminates within Level steps
			// unless the move would create the cycle we reject here.
			for cur := parent; cur.ParentID != nil; {
				if *cur.ParentID == id {
					return &domain.CycleError{ElementID: id, NewParentID: *newParentID}
				}
				next, ancestorErr := txElements.GetByID(ctx, *cur.ParentID)
				if ancestorErr != nil {
					return ancestorErr
				}
				cur = next
			}
			siblings, sibErr := txElements.ListChildren(ctx, parent.ID)
			if sibErr != nil {
				return sibErr
			}
			fresh.ParentID = newParentID
			fresh.Level = parent.Level + 1
			fresh.Sequence = len(siblings) + 1
		}
		fresh.UpdatedAt = now
		if txErr := txElements.Update(ctx, fresh); txErr != nil {
			return txErr
		}
		if txErr := s.relevel(ctx, txElements, fresh, now); txErr != nil {
			return txErr
		}
		// Renumber the group the element left so its vacated position
		// does not linger as a sequence gap. When the move stays within
		// the same group this also settles the appended position.
		if txErr := s.resequenceSiblings(ctx, txElements, fresh.ProjectID, oldParentID, now); txErr != nil {
			return txErr
		}
		element, txErr = txElements.GetByID(ctx, id)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return element, nil
}

// relevel recomputes Level for all descendants of e.
func (s *hierarchyService) relevel(ctx context.Context, txElements repository.WBSElementRepo, e *domain.WBSElement, now time.Time) error {
	children, err := txElements.ListChildren(ctx, e.ID)
	if err != nil {
		return err
	}
	for _, c := range children {
		c.Level = e.Level + 1
		c.UpdatedAt = now
		if err := txElements.Update(ctx, c); err != nil {
			return err
		}
		if err := s.relevel(ctx, txElements, c, now); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a leaf element that carries no execution data.
func (s *hierarchyService) Delete(ctx context.Context, id, actorID string) (err error) {
	defer s.observe(ctx, "wbs-delete", s.now(), map[string]any{"element": id}, &err)

	e, err := s.elements.GetByID(ctx, id)
	if err != nil {
		return err
	}

	lock := s.locks.get(e.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txElements := repository.NewSQLiteWBSElementRepo(tx)
		txProgress := repository.NewSQLiteProgressRepo(tx)
		txBudgets := repository.NewSQLiteTimePhasedBudgetRepo(tx)

		children, txErr := txElements.CountChildren(ctx, id)
		if txErr != nil {
			return txErr
		}
		hasProgress, txErr := txProgress.HasEntries(ctx, id)
		if txErr != nil {
			return txErr
		}
		hasBudget := false
		if e.ControlAccountID != nil {
			rev, revErr := txBudgets.LatestRevision(ctx, *e.ControlAccountID)
			if revErr != nil {
				return revErr
			}
			hasBudget = rev > 0
		}
		if txErr := e.CanDelete(children > 0, hasProgress || hasBudget); txErr != nil {
			return txErr
		}
		return txElements.Delete(ctx, id)
	})
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// resequenceSiblings renumbers one sibling group to 1..n in its current
// sequence order.
func (s *hierarchyService) resequenceSiblings(ctx context.Context, txElements repository.WBSElementRepo, projectID string, parentID *string, now time.Time) error {
	var (
		siblings []*domain.WBSElement
		err      error
	)
	if parentID == nil {
		siblings, err = txElements.ListRoots(ctx, projectID)
	} else {
		siblings, err = txElements.ListChildren(ctx, *parentID)
	}
	if err != nil {
		return err
	}
	for i, e := range siblings {
		if e.Sequence == i+1 {
			continue
		}
		e.Sequence = i + 1
		e.UpdatedAt = now
		if err := txElements.Update(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *hierarchyService) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, err *error) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   *err == nil,
		Err:       *err,
		Fields:    fields,
	})
}
