package storage

import (
	"context"
	"database/sql"
	"time"

	"cantiere/internal/core"
)

const projectColumns = `id, name, total_budget_cents, labor_budget_cents, materials_budget_cents,
	equipment_budget_cents, subcontractors_budget_cents, overhead_budget_cents,
	start_date, end_date, notes, created_at, updated_at`

const createProject = `
INSERT INTO projects (
	id, name, total_budget_cents, labor_budget_cents, materials_budget_cents,
	equipment_budget_cents, subcontractors_budget_cents, overhead_budget_cents,
	start_date, end_date, notes, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateProject(ctx context.Context, p core.Project) error {
	_, err := q.db.ExecContext(ctx, createProject,
		p.ID, p.Name, p.TotalBudget.Cents, p.LaborBudget.Cents, p.MaterialsBudget.Cents,
		p.EquipmentBudget.Cents, p.SubcontractorsBudget.Cents, p.OverheadBudget.Cents,
		p.StartDate.String(), nullDate(p.EndDate), p.Notes, p.CreatedAt, p.UpdatedAt)
	return err
}

const getProject = `
SELECT ` + projectColumns + `
FROM projects WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetProject(ctx context.Context, id string) (core.Project, error) {
	return scanProject(q.db.QueryRowContext(ctx, getProject, id))
}

const listProjects = `
SELECT ` + projectColumns + `
FROM projects WHERE deleted_at IS NULL ORDER BY created_at DESC, id`

func (q *Queries) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := q.db.QueryContext(ctx, listProjects)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

const updateProject = `
UPDATE projects SET
	name = ?, total_budget_cents = ?, labor_budget_cents = ?, materials_budget_cents = ?,
	equipment_budget_cents = ?, subcontractors_budget_cents = ?, overhead_budget_cents = ?,
	start_date = ?, end_date = ?, notes = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateProject(ctx context.Context, p core.Project) error {
	return requireAffected(q.db.ExecContext(ctx, updateProject,
		p.Name, p.TotalBudget.Cents, p.LaborBudget.Cents, p.MaterialsBudget.Cents,
		p.EquipmentBudget.Cents, p.SubcontractorsBudget.Cents, p.OverheadBudget.Cents,
		p.StartDate.String(), nullDate(p.EndDate), p.Notes, p.UpdatedAt, p.ID))
}

const deleteProject = `
UPDATE projects SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) DeleteProject(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteProject, now, now, id))
}

func scanProject(row rowScanner) (core.Project, error) {
	var p core.Project
	var start string
	var end sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.TotalBudget.Cents, &p.LaborBudget.Cents, &p.MaterialsBudget.Cents,
		&p.EquipmentBudget.Cents, &p.SubcontractorsBudget.Cents, &p.OverheadBudget.Cents,
		&start, &end, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return core.Project{}, notFoundIfNoRows(err)
	}
	if p.StartDate, err = core.ParseDate(start); err != nil {
		return core.Project{}, err
	}
	if p.EndDate, err = dateFromNull(end); err != nil {
		return core.Project{}, err
	}
	return p, nil
}

const createEmployee = `
INSERT INTO employees (id, name, role, pay_rate_cents, active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateEmployee(ctx context.Context, e core.Employee) error {
	_, err := q.db.ExecContext(ctx, createEmployee,
		e.ID, e.Name, e.Role, e.PayRate.Cents, e.Active, e.CreatedAt, e.UpdatedAt)
	return err
}

const getEmployee = `
SELECT id, name, role, pay_rate_cents, active, created_at, updated_at
FROM employees WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	return scanEmployee(q.db.QueryRowContext(ctx, getEmployee, id))
}

const listEmployees = `
SELECT id, name, role, pay_rate_cents, active, created_at, updated_at
FROM employees WHERE deleted_at IS NULL ORDER BY name, id`

func (q *Queries) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	rows, err := q.db.QueryContext(ctx, listEmployees)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []core.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

const updateEmployee = `
UPDATE employees SET name = ?, role = ?, pay_rate_cents = ?, active = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateEmployee(ctx context.Context, e core.Employee) error {
	return requireAffected(q.db.ExecContext(ctx, updateEmployee,
		e.Name, e.Role, e.PayRate.Cents, e.Active, e.UpdatedAt, e.ID))
}

const deleteEmployee = `
UPDATE employees SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) DeleteEmployee(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteEmployee, now, now, id))
}

func scanEmployee(row rowScanner) (core.Employee, error) {
	var e core.Employee
	err := row.Scan(&e.ID, &e.Name, &e.Role, &e.PayRate.Cents, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return core.Employee{}, notFoundIfNoRows(err)
	}
	return e, nil
}

const createCategory = `
INSERT INTO categories (id, project_id, name, color, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := q.db.ExecContext(ctx, createCategory,
		c.ID, c.ProjectID, c.Name, c.Color, c.CreatedAt, c.UpdatedAt)
	return err
}

const getCategory = `
SELECT id, project_id, name, color, created_at, updated_at
FROM categories WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetCategory(ctx context.Context, id string) (core.Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
}

const listCategories = `
SELECT id, project_id, name, color, created_at, updated_at
FROM categories WHERE project_id = ? AND deleted_at IS NULL ORDER BY name, id`

func (q *Queries) ListCategories(ctx context.Context, projectID string) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

const updateCategory = `
UPDATE categories SET name = ?, color = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	return requireAffected(q.db.ExecContext(ctx, updateCategory,
		c.Name, c.Color, c.UpdatedAt, c.ID))
}

const deleteCategory = `
UPDATE categories SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) deleteCategoryRow(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteCategory, now, now, id))
}

// clearCategoryRefs nulls the category on every entry that points at it.
func (q *Queries) clearCategoryRefs(ctx context.Context, categoryID string, now time.Time) error {
	for _, table := range []string{"timesheets", "equipment_logs", "subcontractor_entries", "overhead_entries", "materials"} {
		stmt := `UPDATE ` + table + ` SET category_id = NULL, updated_at = ? WHERE category_id = ?`
		if _, err := q.db.ExecContext(ctx, stmt, now, categoryID); err != nil {
			return err
		}
	}
	return nil
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	err := row.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.Category{}, notFoundIfNoRows(err)
	}
	return c, nil
}

const createChangeOrder = `
INSERT INTO change_orders (id, project_id, date, description, amount_cents, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateChangeOrder(ctx context.Context, c core.ChangeOrder) error {
	_, err := q.db.ExecContext(ctx, createChangeOrder,
		c.ID, c.ProjectID, c.Date.String(), c.Description, c.Amount.Cents, string(c.Status), c.CreatedAt, c.UpdatedAt)
	return err
}

const getChangeOrder = `
SELECT id, project_id, date, description, amount_cents, status, created_at, updated_at
FROM change_orders WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetChangeOrder(ctx context.Context, id string) (core.ChangeOrder, error) {
	return scanChangeOrder(q.db.QueryRowContext(ctx, getChangeOrder, id))
}

const listChangeOrders = `
SELECT id, project_id, date, description, amount_cents, status, created_at, updated_at
FROM change_orders WHERE project_id = ? AND deleted_at IS NULL ORDER BY date, created_at, id`

func (q *Queries) ListChangeOrders(ctx context.Context, projectID string) ([]core.ChangeOrder, error) {
	rows, err := q.db.QueryContext(ctx, listChangeOrders, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []core.ChangeOrder
	for rows.Next() {
		c, err := scanChangeOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, c)
	}
	return orders, rows.Err()
}

const updateChangeOrder = `
UPDATE change_orders SET date = ?, description = ?, amount_cents = ?, status = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateChangeOrder(ctx context.Context, c core.ChangeOrder) error {
	return requireAffected(q.db.ExecContext(ctx, updateChangeOrder,
		c.Date.String(), c.Description, c.Amount.Cents, string(c.Status), c.UpdatedAt, c.ID))
}

const deleteChangeOrder = `
UPDATE change_orders SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) DeleteChangeOrder(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteChangeOrder, now, now, id))
}

func scanChangeOrder(row rowScanner) (core.ChangeOrder, error) {
	var c core.ChangeOrder
	var date string
	var status string
	err := row.Scan(&c.ID, &c.ProjectID, &date, &c.Description, &c.Amount.Cents, &status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return core.ChangeOrder{}, notFoundIfNoRows(err)
	}
	if c.Date, err = core.ParseDate(date); err != nil {
		return core.ChangeOrder{}, err
	}
	c.Status = core.ChangeOrderStatus(status)
	return c, nil
}
