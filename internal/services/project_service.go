package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cantiere/internal/core"
)

// ProjectService owns the project lifecycle.
type ProjectService struct {
	store ProjectStore
}

func NewProjectService(store ProjectStore) *ProjectService {
	return &ProjectService{store: store}
}

func (s *ProjectService) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}

	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.store.CreateProject(ctx, p); err != nil {
		return core.Project{}, fmt.Errorf("save project: %w", err)
	}

	slog.InfoContext(ctx, "Project created",
		"project_id", p.ID,
		"name", p.Name,
		"total_budget_cents", p.TotalBudget.Cents)

	return p, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (core.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return core.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]core.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, p core.Project) (core.Project, error) {
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateProject(ctx, p); err != nil {
		return core.Project{}, fmt.Errorf("update project: %w", err)
	}

	updated, err := s.store.GetProject(ctx, p.ID)
	if err != nil {
		return core.Project{}, fmt.Errorf("reload project: %w", err)
	}
	return updated, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if err := s.store.DeleteProject(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	slog.InfoContext(ctx, "Project deleted", "project_id", id)
	return nil
}
