package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cantiere/internal/core"
)

// TaxonomyService owns the labels around a project: categories, change
// orders, and the employee roster.
type TaxonomyService struct {
	store TaxonomyStore
}

func NewTaxonomyService(store TaxonomyStore) *TaxonomyService {
	return &TaxonomyService{store: store}
}

func (s *TaxonomyService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if _, err := s.store.GetProject(ctx, c.ProjectID); err != nil {
		return core.Category{}, fmt.Errorf("get project: %w", err)
	}

	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.store.CreateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}

	slog.InfoContext(ctx, "Category created",
		"category_id", c.ID,
		"project_id", c.ProjectID,
		"name", c.Name)

	return c, nil
}

func (s *TaxonomyService) GetCategory(ctx context.Context, id string) (core.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *TaxonomyService) ListCategories(ctx context.Context, projectID string) ([]core.Category, error) {
	categories, err := s.store.ListCategories(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *TaxonomyService) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	updated, err := s.store.GetCategory(ctx, c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("reload category: %w", err)
	}
	return updated, nil
}

// DeleteCategory removes a category. Entries that pointed at it drop back
// into the uncategorized bucket, never onto a dangling reference.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.DeleteCategory(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *TaxonomyService) CreateChangeOrder(ctx context.Context, c core.ChangeOrder) (core.ChangeOrder, error) {
	if c.Status == "" {
		c.Status = core.ChangeOrderPending
	}
	if err := c.Validate(); err != nil {
		return core.ChangeOrder{}, err
	}
	if _, err := s.store.GetProject(ctx, c.ProjectID); err != nil {
		return core.ChangeOrder{}, fmt.Errorf("get project: %w", err)
	}

	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.store.CreateChangeOrder(ctx, c); err != nil {
		return core.ChangeOrder{}, fmt.Errorf("save change order: %w", err)
	}

	slog.InfoContext(ctx, "Change order created",
		"change_order_id", c.ID,
		"project_id", c.ProjectID,
		"amount_cents", c.Amount.Cents,
		"status", string(c.Status))

	return c, nil
}

func (s *TaxonomyService) GetChangeOrder(ctx context.Context, id string) (core.ChangeOrder, error) {
	c, err := s.store.GetChangeOrder(ctx, id)
	if err != nil {
		return core.ChangeOrder{}, fmt.Errorf("get change order: %w", err)
	}
	return c, nil
}

func (s *TaxonomyService) ListChangeOrders(ctx context.Context, projectID string) ([]core.ChangeOrder, error) {
	orders, err := s.store.ListChangeOrders(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list change orders: %w", err)
	}
	return orders, nil
}

func (s *TaxonomyService) UpdateChangeOrder(ctx context.Context, c core.ChangeOrder) (core.ChangeOrder, error) {
	if err := c.Validate(); err != nil {
		return core.ChangeOrder{}, err
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateChangeOrder(ctx, c); err != nil {
		return core.ChangeOrder{}, fmt.Errorf("update change order: %w", err)
	}
	updated, err := s.store.GetChangeOrder(ctx, c.ID)
	if err != nil {
		return core.ChangeOrder{}, fmt.Errorf("reload change order: %w", err)
	}
	return updated, nil
}

func (s *TaxonomyService) DeleteChangeOrder(ctx context.Context, id string) error {
	if err := s.store.DeleteChangeOrder(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete change order: %w", err)
	}
	return nil
}

func (s *TaxonomyService) CreateEmployee(ctx context.Context, e core.Employee) (core.Employee, error) {
	if err := e.Validate(); err != nil {
		return core.Employee{}, err
	}

	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.store.CreateEmployee(ctx, e); err != nil {
		return core.Employee{}, fmt.Errorf("save employee: %w", err)
	}

	slog.InfoContext(ctx, "Employee created",
		"employee_id", e.ID,
		"name", e.Name,
		"pay_rate_cents", e.PayRate.Cents)

	return e, nil
}

func (s *TaxonomyService) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	e, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return core.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

func (s *TaxonomyService) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

func (s *TaxonomyService) UpdateEmployee(ctx context.Context, e core.Employee) (core.Employee, error) {
	if err := e.Validate(); err != nil {
		return core.Employee{}, err
	}
	e.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateEmployee(ctx, e); err != nil {
		return core.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	updated, err := s.store.GetEmployee(ctx, e.ID)
	if err != nil {
		return core.Employee{}, fmt.Errorf("reload employee: %w", err)
	}
	return updated, nil
}

func (s *TaxonomyService) DeleteEmployee(ctx context.Context, id string) error {
	if err := s.store.DeleteEmployee(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}
