package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cvergaras/obracost/internal/domain"
	"github.com/cvergaras/obracost/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	phases   repository.PhaseRepo
	accounts repository.ControlAccountRepo
	now      func() time.Time
}

func NewProjectService(
	projects repository.ProjectRepo,
	phases repository.PhaseRepo,
	accounts repository.ControlAccountRepo,
) ProjectService {
	return &projectService{
		projects: projects,
		phases:   phases,
		accounts: accounts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) error {
	if p.Code == "" {
		return fmt.Errorf("project code is required: %w", domain.ErrValidation)
	}
	if p.Name == "" {
		return fmt.Errorf("project name is required: %w", domain.ErrValidation)
	}
	if _, err := s.projects.GetByCode(ctx, p.Code); err == nil {
		return fmt.Errorf("project code %q already exists: %w", p.Code, domain.ErrStateConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	now := s.now()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}
	if p.Currency == "" {
		p.Currency = "CLP"
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.projects.Create(ctx, p)
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) GetByCode(ctx context.Context, code string) (*domain.Project, error) {
	return s.projects.GetByCode(ctx, code)
}

func (s *projectService) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	return s.projects.List(ctx, includeArchived)
}

func (s *projectService) Update(ctx context.Context, p *domain.Project) error {
	p.UpdatedAt = s.now()
	return s.projects.Update(ctx, p)
}

func (s *projectService) CreatePhase(ctx context.Context, ph *domain.Phase) error {
	if ph.Name == "" {
		return fmt.Errorf("phase name is required: %w", domain.ErrValidation)
	}
	if _, err := s.projects.GetByID(ctx, ph.ProjectID); err != nil {
		return err
	}
	now := s.now()
	if ph.ID == "" {
		ph.ID = uuid.New().String()
	}
	if ph.Sequence == 0 {
		existing, err := s.phases.ListByProject(ctx, ph.ProjectID)
		if err != nil {
			return err
		}
		ph.Sequence = len(existing) + 1
	}
	ph.CreatedAt = now
	ph.UpdatedAt = now
	return s.phases.Create(ctx, ph)
}

func (s *projectService) ListPhases(ctx context.Context, projectID string) ([]*domain.Phase, error) {
	return s.phases.ListByProject(ctx, projectID)
}

func (s *projectService) CreateControlAccount(ctx context.Context, ca *domain.ControlAccount) error {
	if err := ca.Validate(); err != nil {
		return err
	}
	if _, err := s.projects.GetByID(ctx, ca.ProjectID); err != nil {
		return err
	}
	if _, err := s.accounts.GetByCode(ctx, ca.ProjectID, ca.Code); err == nil {
		return fmt.Errorf("control account code %q already exists in project %s: %w",
			ca.Code, ca.ProjectID, domain.ErrStateConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	now := s.now()
	if ca.ID == "" {
		ca.ID = uuid.New().String()
	}
	ca.CreatedAt = now
	ca.UpdatedAt = now
	return s.accounts.Create(ctx, ca)
}

func (s *projectService) GetControlAccount(ctx context.Context, id string) (*domain.ControlAccount, error) {
	return s.accounts.GetByID(ctx, id)
}

func (s *projectService) GetControlAccountByCode(ctx context.Context, projectID, code string) (*domain.ControlAccount, error) {
	return s.accounts.GetByCode(ctx, projectID, code)
}

func (s *projectService) ListControlAccounts(ctx context.Context, projectID string) ([]*domain.ControlAccount, error) {
	return s.accounts.ListByProject(ctx, projectID)
}

func (s *projectService) SetControlAccountBAC(ctx context.Context, id string, bac float64) (*domain.ControlAccount, error) {
	ca, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ca.SetBAC(bac, s.now()); err != nil {
		return nil, err
	}
	if err := s.accounts.Update(ctx, ca); err != nil {
		return nil, err
	}
	return ca, nil
}
