package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cantiere/internal/core"
)

// EntryService owns the cost entries of a project: timesheets, equipment
// logs, subcontractor entries, overhead entries, and progress reports with
// their materials.
type EntryService struct {
	store EntryStore
}

func NewEntryService(store EntryStore) *EntryService {
	return &EntryService{store: store}
}

func (s *EntryService) requireProject(ctx context.Context, projectID string) error {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	return nil
}

func (s *EntryService) CreateTimesheet(ctx context.Context, t core.Timesheet) (core.Timesheet, error) {
	if err := s.requireProject(ctx, t.ProjectID); err != nil {
		return core.Timesheet{}, err
	}
	if t.EmployeeID != "" {
		employee, err := s.store.GetEmployee(ctx, t.EmployeeID)
		if err != nil {
			return core.Timesheet{}, fmt.Errorf("get employee: %w", err)
		}
		// An omitted pay rate falls back to the employee's.
		if t.PayRate.Cents == 0 {
			t.PayRate = employee.PayRate
		}
	}
	if err := t.Validate(); err != nil {
		return core.Timesheet{}, err
	}

	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.store.CreateTimesheet(ctx, t); err != nil {
		return core.Timesheet{}, fmt.Errorf("save timesheet: %w", err)
	}

	slog.InfoContext(ctx, "Timesheet created",
		"timesheet_id", t.ID,
		"project_id", t.ProjectID,
		"hours_hundredths", t.Hours.Hundredths,
		"pay_rate_cents", t.PayRate.Cents)

	return t, nil
}

func (s *EntryService) GetTimesheet(ctx context.Context, id string) (core.Timesheet, error) {
	t, err := s.store.GetTimesheet(ctx, id)
	if err != nil {
		return core.Timesheet{}, fmt.Errorf("get timesheet: %w", err)
	}
	return t, nil
}

func (s *EntryService) ListTimesheets(ctx context.Context, projectID string) ([]core.Timesheet, error) {
	sheets, err := s.store.ListTimesheets(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list timesheets: %w", err)
	}
	return sheets, nil
}

func (s *EntryService) UpdateTimesheet(ctx context.Context, t core.Timesheet) (core.Timesheet, error) {
	if err := t.Validate(); err != nil {
		return core.Timesheet{}, err
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateTimesheet(ctx, t); err != nil {
		return core.Timesheet{}, fmt.Errorf("update timesheet: %w", err)
	}
	updated, err := s.store.GetTimesheet(ctx, t.ID)
	if err != nil {
		return core.Timesheet{}, fmt.Errorf("reload timesheet: %w", err)
	}
	return updated, nil
}

func (s *EntryService) DeleteTimesheet(ctx context.Context, id string) error {
	if err := s.store.DeleteTimesheet(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete timesheet: %w", err)
	}
	return nil
}

func (s *EntryService) CreateEquipmentLog(ctx context.Context, e core.EquipmentLog) (core.EquipmentLog, error) {
	if err := s.requireProject(ctx, e.ProjectID); err != nil {
		return core.EquipmentLog{}, err
	}
	if err := e.Validate(); err != nil {
		return core.EquipmentLog{}, err
	}

	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.store.CreateEquipmentLog(ctx, e); err != nil {
		return core.EquipmentLog{}, fmt.Errorf("save equipment log: %w", err)
	}

	slog.InfoContext(ctx, "Equipment log created",
		"equipment_log_id", e.ID,
		"project_id", e.ProjectID,
		"equipment", e.EquipmentName,
		"fuel_cost_cents", e.FuelCost.Cents,
		"rental_cost_cents", e.RentalCost.Cents)

	return e, nil
}

func (s *EntryService) GetEquipmentLog(ctx context.Context, id string) (core.EquipmentLog, error) {
	e, err := s.store.GetEquipmentLog(ctx, id)
	if err != nil {
		return core.EquipmentLog{}, fmt.Errorf("get equipment log: %w", err)
	}
	return e, nil
}

func (s *EntryService) ListEquipmentLogs(ctx context.Context, projectID string) ([]core.EquipmentLog, error) {
	logs, err := s.store.ListEquipmentLogs(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list equipment logs: %w", err)
	}
	return logs, nil
}

func (s *EntryService) UpdateEquipmentLog(ctx context.Context, e core.EquipmentLog) (core.EquipmentLog, error) {
	if err := e.Validate(); err != nil {
		return core.EquipmentLog{}, err
	}
	e.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateEquipmentLog(ctx, e); err != nil {
		return core.EquipmentLog{}, fmt.Errorf("update equipment log: %w", err)
	}
	updated, err := s.store.GetEquipmentLog(ctx, e.ID)
	if err != nil {
		return core.EquipmentLog{}, fmt.Errorf("reload equipment log: %w", err)
	}
	return updated, nil
}

func (s *EntryService) DeleteEquipmentLog(ctx context.Context, id string) error {
	if err := s.store.DeleteEquipmentLog(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete equipment log: %w", err)
	}
	return nil
}

func (s *EntryService) CreateSubcontractorEntry(ctx context.Context, e core.SubcontractorEntry) (core.SubcontractorEntry, error) {
	if err := s.requireProject(ctx, e.ProjectID); err != nil {
		return core.SubcontractorEntry{}, err
	}
	if err := e.Validate(); err != nil {
		return core.SubcontractorEntry{}, err
	}

	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.store.CreateSubcontractorEntry(ctx, e); err != nil {
		return core.SubcontractorEntry{}, fmt.Errorf("save subcontractor entry: %w", err)
	}

	slog.InfoContext(ctx, "Subcontractor entry created",
		"entry_id", e.ID,
		"project_id", e.ProjectID,
		"company", e.Company,
		"cost_cents", e.Cost.Cents)

	return e, nil
}

func (s *EntryService) GetSubcontractorEntry(ctx context.Context, id string) (core.SubcontractorEntry, error) {
	e, err := s.store.GetSubcontractorEntry(ctx, id)
	if err != nil {
		return core.SubcontractorEntry{}, fmt.Errorf("get subcontractor entry: %w", err)
	}
	return e, nil
}

func (s *EntryService) ListSubcontractorEntries(ctx context.Context, projectID string) ([]core.SubcontractorEntry, error) {
	entries, err := s.store.ListSubcontractorEntries(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list subcontractor entries: %w", err)
	}
	return entries, nil
}

func (s *EntryService) UpdateSubcontractorEntry(ctx context.Context, e core.SubcontractorEntry) (core.SubcontractorEntry, error) {
	if err := e.Validate(); err != nil {
		return core.SubcontractorEntry{}, err
	}
	e.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateSubcontractorEntry(ctx, e); err != nil {
		return core.SubcontractorEntry{}, fmt.Errorf("update subcontractor entry: %w", err)
	}
	updated, err := s.store.GetSubcontractorEntry(ctx, e.ID)
	if err != nil {
		return core.SubcontractorEntry{}, fmt.Errorf("reload subcontractor entry: %w", err)
	}
	return updated, nil
}

func (s *EntryService) DeleteSubcontractorEntry(ctx context.Context, id string) error {
	if err := s.store.DeleteSubcontractorEntry(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete subcontractor entry: %w", err)
	}
	return nil
}

func (s *EntryService) CreateOverheadEntry(ctx context.Context, e core.OverheadEntry) (core.OverheadEntry, error) {
	if err := s.requireProject(ctx, e.ProjectID); err != nil {
		return core.OverheadEntry{}, err
	}
	if err := e.Validate(); err != nil {
		return core.OverheadEntry{}, err
	}

	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.store.CreateOverheadEntry(ctx, e); err != nil {
		return core.OverheadEntry{}, fmt.Errorf("save overhead entry: %w", err)
	}

	slog.InfoContext(ctx, "Overhead entry created",
		"entry_id", e.ID,
		"project_id", e.ProjectID,
		"cost_cents", e.Cost.Cents)

	return e, nil
}

func (s *EntryService) GetOverheadEntry(ctx context.Context, id string) (core.OverheadEntry, error) {
	e, err := s.store.GetOverheadEntry(ctx, id)
	if err != nil {
		return core.OverheadEntry{}, fmt.Errorf("get overhead entry: %w", err)
	}
	return e, nil
}

func (s *EntryService) ListOverheadEntries(ctx context.Context, projectID string) ([]core.OverheadEntry, error) {
	entries, err := s.store.ListOverheadEntries(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list overhead entries: %w", err)
	}
	return entries, nil
}

func (s *EntryService) UpdateOverheadEntry(ctx context.Context, e core.OverheadEntry) (core.OverheadEntry, error) {
	if err := e.Validate(); err != nil {
		return core.OverheadEntry{}, err
	}
	e.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateOverheadEntry(ctx, e); err != nil {
		return core.OverheadEntry{}, fmt.Errorf("update overhead entry: %w", err)
	}
	updated, err := s.store.GetOverheadEntry(ctx, e.ID)
	if err != nil {
		return core.OverheadEntry{}, fmt.Errorf("reload overhead entry: %w", err)
	}
	return updated, nil
}

func (s *EntryService) DeleteOverheadEntry(ctx context.Context, id string) error {
	if err := s.store.DeleteOverheadEntry(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete overhead entry: %w", err)
	}
	return nil
}

// CreateProgressReport stores a report and its materials in one transaction.
func (s *EntryService) CreateProgressReport(ctx context.Context, r core.ProgressReport) (core.ProgressReport, error) {
	if err := s.requireProject(ctx, r.ProjectID); err != nil {
		return core.ProgressReport{}, err
	}
	if err := r.Validate(); err != nil {
		return core.ProgressReport{}, err
	}

	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	for i := range r.Materials {
		m := &r.Materials[i]
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.ReportID = r.ID
		m.ProjectID = r.ProjectID
		m.CreatedAt = now
		m.UpdatedAt = now
	}

	if err := s.store.CreateProgressReport(ctx, r); err != nil {
		return core.ProgressReport{}, fmt.Errorf("save progress report: %w", err)
	}
	return r, nil
}

func (s *EntryService) GetProgressReport(ctx context.Context, id string) (core.ProgressReport, error) {
	r, err := s.store.GetProgressReport(ctx, id)
	if err != nil {
		return core.ProgressReport{}, fmt.Errorf("get progress report: %w", err)
	}
	return r, nil
}

func (s *EntryService) ListProgressReports(ctx context.Context, projectID string) ([]core.ProgressReport, error) {
	reports, err := s.store.ListProgressReports(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list progress reports: %w", err)
	}
	return reports, nil
}

// UpdateProgressReport updates the report row itself. Materials are managed
// through report creation and are not touched here.
func (s *EntryService) UpdateProgressReport(ctx context.Context, r core.ProgressReport) (core.ProgressReport, error) {
	r.Materials = nil
	if err := r.Validate(); err != nil {
		return core.ProgressReport{}, err
	}
	r.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateProgressReport(ctx, r); err != nil {
		return core.ProgressReport{}, fmt.Errorf("update progress report: %w", err)
	}
	updated, err := s.store.GetProgressReport(ctx, r.ID)
	if err != nil {
		return core.ProgressReport{}, fmt.Errorf("reload progress report: %w", err)
	}
	return updated, nil
}

func (s *EntryService) DeleteProgressReport(ctx context.Context, id string) error {
	if err := s.store.DeleteProgressReport(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete progress report: %w", err)
	}
	return nil
}

// ListMaterials returns every material across all reports of a project.
func (s *EntryService) ListMaterials(ctx context.Context, projectID string) ([]core.Material, error) {
	materials, err := s.store.ListMaterials(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}
