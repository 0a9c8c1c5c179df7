package storage

import (
	"context"
	"database/sql"
	"time"

	"cantiere/internal/core"
)

const createTimesheet = `
INSERT INTO timesheets (id, project_id, employee_id, date, hours_hundredths, pay_rate_cents, category_id, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTimesheet(ctx context.Context, t core.Timesheet) error {
	_, err := q.db.ExecContext(ctx, createTimesheet,
		t.ID, t.ProjectID, nullString(t.EmployeeID), t.Date.String(), t.Hours.Hundredths,
		t.PayRate.Cents, nullString(t.CategoryID), t.Notes, t.CreatedAt, t.UpdatedAt)
	return err
}

const getTimesheet = `
SELECT id, project_id, employee_id, date, hours_hundredths, pay_rate_cents, category_id, notes, created_at, updated_at
FROM timesheets WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetTimesheet(ctx context.Context, id string) (core.Timesheet, error) {
	return scanTimesheet(q.db.QueryRowContext(ctx, getTimesheet, id))
}

const listTimesheets = `
SELECT id, project_id, employee_id, date, hours_hundredths, pay_rate_cents, category_id, notes, created_at, updated_at
FROM timesheets WHERE project_id = ? AND deleted_at IS NULL ORDER BY date, created_at, id`

func (q *Queries) ListTimesheets(ctx context.Context, projectID string) ([]core.Timesheet, error) {
	rows, err := q.db.QueryContext(ctx, listTimesheets, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []core.Timesheet
	for rows.Next() {
		t, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, t)
	}
	return sheets, rows.Err()
}

const updateTimesheet = `
UPDATE timesheets SET employee_id = ?, date = ?, hours_hundredths = ?, pay_rate_cents = ?, category_id = ?, notes = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateTimesheet(ctx context.Context, t core.Timesheet) error {
	return requireAffected(q.db.ExecContext(ctx, updateTimesheet,
		nullString(t.EmployeeID), t.Date.String(), t.Hours.Hundredths, t.PayRate.Cents,
		nullString(t.CategoryID), t.Notes, t.UpdatedAt, t.ID))
}

const deleteTimesheet = `
UPDATE timesheets SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) DeleteTimesheet(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteTimesheet, now, now, id))
}

func scanTimesheet(row rowScanner) (core.Timesheet, error) {
	var t core.Timesheet
	var employee, category sql.NullString
	var date string
	err := row.Scan(&t.ID, &t.ProjectID, &employee, &date, &t.Hours.Hundredths,
		&t.PayRate.Cents, &category, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Timesheet{}, notFoundIfNoRows(err)
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Timesheet{}, err
	}
	t.EmployeeID = fromNull(employee)
	t.CategoryID = fromNull(category)
	return t, nil
}

const createEquipmentLog = `
INSERT INTO equipment_logs (id, project_id, date, equipment_name, fuel_cost_cents, rental_cost_cents, category_id, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateEquipmentLog(ctx context.Context, e core.EquipmentLog) error {
	_, err := q.db.ExecContext(ctx, createEquipmentLog,
		e.ID, e.ProjectID, e.Date.String(), e.EquipmentName, e.FuelCost.Cents,
		e.RentalCost.Cents, nullString(e.CategoryID), e.Notes, e.CreatedAt, e.UpdatedAt)
	return err
}

const getEquipmentLog = `
SELECT id, project_id, date, equipment_name, fuel_cost_cents, rental_cost_cents, category_id, notes, created_at, updated_at
FROM equipment_logs WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetEquipmentLog(ctx context.Context, id string) (core.EquipmentLog, error) {
	return scanEquipmentLog(q.db.QueryRowContext(ctx, getEquipmentLog, id))
}

const listEquipmentLogs = `
SELECT id, project_id, date, equipment_name, fuel_cost_cents, rental_cost_cents, category_id, notes, created_at, updated_at
FROM equipment_logs WHERE project_id = ? AND deleted_at IS NULL ORDER BY date, created_at, id`

func (q *Queries) ListEquipmentLogs(ctx context.Context, projectID string) ([]core.EquipmentLog, error) {
	rows, err := q.db.QueryContext(ctx, listEquipmentLogs, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []core.EquipmentLog
	for rows.Next() {
		e, err := scanEquipmentLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

const updateEquipmentLog = `
UPDATE equipment_logs SET date = ?, equipment_name = ?, fuel_cost_cents = ?, rental_cost_cents = ?, category_id = ?, notes = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateEquipmentLog(ctx context.Context, e core.EquipmentLog) error {
	return requireAffected(q.db.ExecContext(ctx, updateEquipmentLog,
		e.Date.String(), e.EquipmentName, e.FuelCost.Cents, e.RentalCost.Cents,
		nullString(e.CategoryID), e.Notes, e.UpdatedAt, e.ID))
}

const deleteEquipmentLog = `
UPDATE equipment_logs SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) DeleteEquipmentLog(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteEquipmentLog, now, now, id))
}

func scanEquipmentLog(row rowScanner) (core.EquipmentLog, error) {
	var e core.EquipmentLog
	var category sql.NullString
	var date string
	err := row.Scan(&e.ID, &e.ProjectID, &date, &e.EquipmentName, &e.FuelCost.Cents,
		&e.RentalCost.Cents, &category, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return core.EquipmentLog{}, notFoundIfNoRows(err)
	}
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.EquipmentLog{}, err
	}
	e.CategoryID = fromNull(category)
	return e, nil
}

const createSubcontractorEntry = `
INSERT INTO subcontractor_entries (id, project_id, date, company, description, cost_cents, category_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateSubcontractorEntry(ctx context.Context, s core.SubcontractorEntry) error {
	_, err := q.db.ExecContext(ctx, createSubcontractorEntry,
		s.ID, s.ProjectID, s.Date.String(), s.Company, s.Description, s.Cost.Cents,
		nullString(s.CategoryID), s.CreatedAt, s.UpdatedAt)
	return err
}

const getSubcontractorEntry = `
SELECT id, project_id, date, company, description, cost_cents, category_id, created_at, updated_at
FROM subcontractor_entries WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetSubcontractorEntry(ctx context.Context, id string) (core.SubcontractorEntry, error) {
	return scanSubcontractorEntry(q.db.QueryRowContext(ctx, getSubcontractorEntry, id))
}

const listSubcontractorEntries = `
SELECT id, project_id, date, company, description, cost_cents, category_id, created_at, updated_at
FROM subcontractor_entries WHERE project_id = ? AND deleted_at IS NULL ORDER BY date, created_at, id`

func (q *Queries) ListSubcontractorEntries(ctx context.Context, projectID string) ([]core.SubcontractorEntry, error) {
	rows, err := q.db.QueryContext(ctx, listSubcontractorEntries, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []core.SubcontractorEntry
	for rows.Next() {
		s, err := scanSubcontractorEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, s)
	}
	return entries, rows.Err()
}

const updateSubcontractorEntry = `
UPDATE subcontractor_entries SET date = ?, company = ?, description = ?, cost_cents = ?, category_id = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateSubcontractorEntry(ctx context.Context, s core.SubcontractorEntry) error {
	return requireAffected(q.db.ExecContext(ctx, updateSubcontractorEntry,
		s.Date.String(), s.Company, s.Description, s.Cost.Cents,
		nullString(s.CategoryID), s.UpdatedAt, s.ID))
}

const deleteSubcontractorEntry = `
UPDATE subcontractor_entries SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) DeleteSubcontractorEntry(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteSubcontractorEntry, now, now, id))
}

func scanSubcontractorEntry(row rowScanner) (core.SubcontractorEntry, error) {
	var s core.SubcontractorEntry
	var category sql.NullString
	var date string
	err := row.Scan(&s.ID, &s.ProjectID, &date, &s.Company, &s.Description,
		&s.Cost.Cents, &category, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return core.SubcontractorEntry{}, notFoundIfNoRows(err)
	}
	if s.Date, err = core.ParseDate(date); err != nil {
		return core.SubcontractorEntry{}, err
	}
	s.CategoryID = fromNull(category)
	return s, nil
}

const createOverheadEntry = `
INSERT INTO overhead_entries (id, project_id, date, description, cost_cents, category_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateOverheadEntry(ctx context.Context, o core.OverheadEntry) error {
	_, err := q.db.ExecContext(ctx, createOverheadEntry,
		o.ID, o.ProjectID, o.Date.String(), o.Description, o.Cost.Cents,
		nullString(o.CategoryID), o.CreatedAt, o.UpdatedAt)
	return err
}

const getOverheadEntry = `
SELECT id, project_id, date, description, cost_cents, category_id, created_at, updated_at
FROM overhead_entries WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetOverheadEntry(ctx context.Context, id string) (core.OverheadEntry, error) {
	return scanOverheadEntry(q.db.QueryRowContext(ctx, getOverheadEntry, id))
}

const listOverheadEntries = `
SELECT id, project_id, date, description, cost_cents, category_id, created_at, updated_at
FROM overhead_entries WHERE project_id = ? AND deleted_at IS NULL ORDER BY date, created_at, id`

func (q *Queries) ListOverheadEntries(ctx context.Context, projectID string) ([]core.OverheadEntry, error) {
	rows, err := q.db.QueryContext(ctx, listOverheadEntries, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []core.OverheadEntry
	for rows.Next() {
		o, err := scanOverheadEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, o)
	}
	return entries, rows.Err()
}

const updateOverheadEntry = `
UPDATE overhead_entries SET date = ?, description = ?, cost_cents = ?, category_id = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateOverheadEntry(ctx context.Context, o core.OverheadEntry) error {
	return requireAffected(q.db.ExecContext(ctx, updateOverheadEntry,
		o.Date.String(), o.Description, o.Cost.Cents, nullString(o.CategoryID), o.UpdatedAt, o.ID))
}

const deleteOverheadEntry = `
UPDATE overhead_entries SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) DeleteOverheadEntry(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteOverheadEntry, now, now, id))
}

func scanOverheadEntry(row rowScanner) (core.OverheadEntry, error) {
	var o core.OverheadEntry
	var category sql.NullString
	var date string
	err := row.Scan(&o.ID, &o.ProjectID, &date, &o.Description, &o.Cost.Cents,
		&category, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return core.OverheadEntry{}, notFoundIfNoRows(err)
	}
	if o.Date, err = core.ParseDate(date); err != nil {
		return core.OverheadEntry{}, err
	}
	o.CategoryID = fromNull(category)
	return o, nil
}

const createProgressReport = `
INSERT INTO progress_reports (id, project_id, date, percent_complete, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) createProgressReportRow(ctx context.Context, r core.ProgressReport) error {
	_, err := q.db.ExecContext(ctx, createProgressReport,
		r.ID, r.ProjectID, r.Date.String(), r.PercentComplete, r.Notes, r.CreatedAt, r.UpdatedAt)
	return err
}

const getProgressReport = `
SELECT id, project_id, date, percent_complete, notes, created_at, updated_at
FROM progress_reports WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetProgressReport(ctx context.Context, id string) (core.ProgressReport, error) {
	return scanProgressReport(q.db.QueryRowContext(ctx, getProgressReport, id))
}

const listProgressReports = `
SELECT id, project_id, date, percent_complete, notes, created_at, updated_at
FROM progress_reports WHERE project_id = ? AND deleted_at IS NULL ORDER BY date, created_at, id`

func (q *Queries) ListProgressReports(ctx context.Context, projectID string) ([]core.ProgressReport, error) {
	rows, err := q.db.QueryContext(ctx, listProgressReports, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []core.ProgressReport
	for rows.Next() {
		r, err := scanProgressReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

const updateProgressReport = `
UPDATE progress_reports SET date = ?, percent_complete = ?, notes = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateProgressReport(ctx context.Context, r core.ProgressReport) error {
	return requireAffected(q.db.ExecContext(ctx, updateProgressReport,
		r.Date.String(), r.PercentComplete, r.Notes, r.UpdatedAt, r.ID))
}

const deleteProgressReport = `
UPDATE progress_reports SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) deleteProgressReportRow(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteProgressReport, now, now, id))
}

func scanProgressReport(row rowScanner) (core.ProgressReport, error) {
	var r core.ProgressReport
	var date string
	err := row.Scan(&r.ID, &r.ProjectID, &date, &r.PercentComplete, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return core.ProgressReport{}, notFoundIfNoRows(err)
	}
	if r.Date, err = core.ParseDate(date); err != nil {
		return core.ProgressReport{}, err
	}
	return r, nil
}

const createMaterial = `
INSERT INTO materials (id, report_id, project_id, name, quantity, unit, cost_cents, category_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateMaterial(ctx context.Context, m core.Material) error {
	_, err := q.db.ExecContext(ctx, createMaterial,
		m.ID, m.ReportID, m.ProjectID, m.Name, m.Quantity, m.Unit, m.Cost.Cents,
		nullString(m.CategoryID), m.CreatedAt, m.UpdatedAt)
	return err
}

const getMaterial = `
SELECT id, report_id, project_id, name, quantity, unit, cost_cents, category_id, created_at, updated_at
FROM materials WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetMaterial(ctx context.Context, id string) (core.Material, error) {
	return scanMaterial(q.db.QueryRowContext(ctx, getMaterial, id))
}

const listMaterials = `
SELECT id, report_id, project_id, name, quantity, unit, cost_cents, category_id, created_at, updated_at
FROM materials WHERE project_id = ? AND deleted_at IS NULL ORDER BY created_at, id`

func (q *Queries) ListMaterials(ctx context.Context, projectID string) ([]core.Material, error) {
	rows, err := q.db.QueryContext(ctx, listMaterials, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaterials(rows)
}

const listMaterialsByReport = `
SELECT id, report_id, project_id, name, quantity, unit, cost_cents, category_id, created_at, updated_at
FROM materials WHERE report_id = ? AND deleted_at IS NULL ORDER BY created_at, id`

func (q *Queries) ListMaterialsByReport(ctx context.Context, reportID string) ([]core.Material, error) {
	rows, err := q.db.QueryContext(ctx, listMaterialsByReport, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaterials(rows)
}

const updateMaterial = `
UPDATE materials SET name = ?, quantity = ?, unit = ?, cost_cents = ?, category_id = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateMaterial(ctx context.Context, m core.Material) error {
	return requireAffected(q.db.ExecContext(ctx, updateMaterial,
		m.Name, m.Quantity, m.Unit, m.Cost.Cents, nullString(m.CategoryID), m.UpdatedAt, m.ID))
}

const deleteMaterial = `
UPDATE materials SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) DeleteMaterial(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteMaterial, now, now, id))
}

const deleteMaterialsByReport = `
UPDATE materials SET deleted_at = ?, updated_at = ? WHERE report_id = ? AND deleted_at IS NULL`

func (q *Queries) deleteMaterialsForReport(ctx context.Context, reportID string, now time.Time) error {
	_, err := q.db.ExecContext(ctx, deleteMaterialsByReport, now, now, reportID)
	return err
}

func collectMaterials(rows *sql.Rows) ([]core.Material, error) {
	var materials []core.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func scanMaterial(row rowScanner) (core.Material, error) {
	var m core.Material
	var category sql.NullString
	err := row.Scan(&m.ID, &m.ReportID, &m.ProjectID, &m.Name, &m.Quantity, &m.Unit,
		&m.Cost.Cents, &category, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return core.Material{}, notFoundIfNoRows(err)
	}
	m.CategoryID = fromNull(category)
	return m, nil
}
