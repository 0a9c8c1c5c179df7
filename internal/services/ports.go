package services

import (
	"context"
	"time"

	"cantiere/internal/core"
)

// Ports for the storage backend, split by consumer so each service declares
// only the slice of persistence it actually touches. All of them are
// implemented by *storage.SQLiteRepository.
type (
	ProjectStore interface {
		CreateProject(ctx context.Context, p core.Project) error
		GetProject(ctx context.Context, id string) (core.Project, error)
		ListProjects(ctx context.Context) ([]core.Project, error)
		UpdateProject(ctx context.Context, p core.Project) error
		DeleteProject(ctx context.Context, id string, now time.Time) error
	}

	EntryStore interface {
		GetProject(ctx context.Context, id string) (core.Project, error)
		GetEmployee(ctx context.Context, id string) (core.Employee, error)

		CreateTimesheet(ctx context.Context, t core.Timesheet) error
		GetTimesheet(ctx context.Context, id string) (core.Timesheet, error)
		ListTimesheets(ctx context.Context, projectID string) ([]core.Timesheet, error)
		UpdateTimesheet(ctx context.Context, t core.Timesheet) error
		DeleteTimesheet(ctx context.Context, id string, now time.Time) error

		CreateEquipmentLog(ctx context.Context, e core.EquipmentLog) error
		GetEquipmentLog(ctx context.Context, id string) (core.EquipmentLog, error)
		ListEquipmentLogs(ctx context.Context, projectID string) ([]core.EquipmentLog, error)
		UpdateEquipmentLog(ctx context.Context, e core.EquipmentLog) error
		DeleteEquipmentLog(ctx context.Context, id string, now time.Time) error

		CreateSubcontractorEntry(ctx context.Context, s core.SubcontractorEntry) error
		GetSubcontractorEntry(ctx context.Context, id string) (core.SubcontractorEntry, error)
		ListSubcontractorEntries(ctx context.Context, projectID string) ([]core.SubcontractorEntry, error)
		UpdateSubcontractorEntry(ctx context.Context, s core.SubcontractorEntry) error
		DeleteSubcontractorEntry(ctx context.Context, id string, now time.Time) error

		CreateOverheadEntry(ctx context.Context, o core.OverheadEntry) error
		GetOverheadEntry(ctx context.Context, id string) (core.OverheadEntry, error)
		ListOverheadEntries(ctx context.Context, projectID string) ([]core.OverheadEntry, error)
		UpdateOverheadEntry(ctx context.Context, o core.OverheadEntry) error
		DeleteOverheadEntry(ctx context.Context, id string, now time.Time) error

		CreateProgressReport(ctx context.Context, r core.ProgressReport) error
		GetProgressReport(ctx context.Context, id string) (core.ProgressReport, error)
		ListProgressReports(ctx context.Context, projectID string) ([]core.ProgressReport, error)
		UpdateProgressReport(ctx context.Context, r core.ProgressReport) error
		DeleteProgressReport(ctx context.Context, id string, now time.Time) error

		ListMaterials(ctx context.Context, projectID string) ([]core.Material, error)
	}

	TaxonomyStore interface {
		GetProject(ctx context.Context, id string) (core.Project, error)

		CreateCategory(ctx context.Context, c core.Category) error
		GetCategory(ctx context.Context, id string) (core.Category, error)
		ListCategories(ctx context.Context, projectID string) ([]core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) error
		DeleteCategory(ctx context.Context, id string, now time.Time) error

		CreateChangeOrder(ctx context.Context, c core.ChangeOrder) error
		GetChangeOrder(ctx context.Context, id string) (core.ChangeOrder, error)
		ListChangeOrders(ctx context.Context, projectID string) ([]core.ChangeOrder, error)
		UpdateChangeOrder(ctx context.Context, c core.ChangeOrder) error
		DeleteChangeOrder(ctx context.Context, id string, now time.Time) error

		CreateEmployee(ctx context.Context, e core.Employee) error
		GetEmployee(ctx context.Context, id string) (core.Employee, error)
		ListEmployees(ctx context.Context) ([]core.Employee, error)
		UpdateEmployee(ctx context.Context, e core.Employee) error
		DeleteEmployee(ctx context.Context, id string, now time.Time) error
	}

	// StatsStore is everything the aggregator fans out over.
	StatsStore interface {
		GetProject(ctx context.Context, id string) (core.Project, error)
		ListTimesheets(ctx context.Context, projectID string) ([]core.Timesheet, error)
		ListEquipmentLogs(ctx context.Context, projectID string) ([]core.EquipmentLog, error)
		ListSubcontractorEntries(ctx context.Context, projectID string) ([]core.SubcontractorEntry, error)
		ListOverheadEntries(ctx context.Context, projectID string) ([]core.OverheadEntry, error)
		ListProgressReports(ctx context.Context, projectID string) ([]core.ProgressReport, error)
		ListMaterials(ctx context.Context, projectID string) ([]core.Material, error)
		ListCategories(ctx context.Context, projectID string) ([]core.Category, error)
	}

	ReceiptStore interface {
		GetProject(ctx context.Context, id string) (core.Project, error)

		CreateReceipt(ctx context.Context, r core.Receipt) error
		GetReceipt(ctx context.Context, id string) (core.Receipt, error)
		ListReceipts(ctx context.Context, projectID string) ([]core.Receipt, error)
		UpdateReceipt(ctx context.Context, r core.Receipt) error
		DeleteReceipt(ctx context.Context, id string, now time.Time) error

		CreateReceiptLink(ctx context.Context, l core.ReceiptLink) error
		ListReceiptLinks(ctx context.Context, receiptID string) ([]core.ReceiptLink, error)
		DeleteReceiptLink(ctx context.Context, id string) error
		EntryExists(ctx context.Context, entryType core.EntryType, id string) (bool, error)
	}

	ConnectionStore interface {
		CreateActiveConnection(ctx context.Context, g core.GmailConnection) error
		GetActiveConnection(ctx context.Context) (core.GmailConnection, error)
		GetConnection(ctx context.Context, id string) (core.GmailConnection, error)
		ListConnections(ctx context.Context) ([]core.GmailConnection, error)
		UpdateConnection(ctx context.Context, g core.GmailConnection) error
		DeactivateConnection(ctx context.Context, id string, now time.Time) error
		MarkSyncStarted(ctx context.Context, id string, now time.Time) error
		MarkSyncResult(ctx context.Context, id string, status core.SyncStatus, lastError string, now time.Time) error
		ResetStuckSyncs(ctx context.Context, lastError string, now time.Time) (int64, error)
	}
)
