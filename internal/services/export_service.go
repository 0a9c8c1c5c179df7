package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"cantiere/internal/core"
)

// ExportService writes a project's cost entries as a flat CSV ledger, one
// row per entry across all five categories.
type ExportService struct {
	store StatsStore
}

func NewExportService(store StatsStore) *ExportService {
	return &ExportService{store: store}
}

type ledgerRow struct {
	entryType core.EntryType
	date      core.Date
	name      string
	category  string
	amount    core.Money
}

// ExportCSV streams the ledger for one project. Rows are ordered by date,
// then by entry type, and close with a total line.
func (s *ExportService) ExportCSV(ctx context.Context, projectID string, w io.Writer) error {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return fmt.Errorf("get project: %w", err)
	}

	rows, err := s.collectRows(ctx, projectID)
	if err != nil {
		return err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].date.SameDay(rows[j].date) {
			return rows[i].date.Before(rows[j].date.Time)
		}
		return rows[i].entryType < rows[j].entryType
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "date", "description", "category", "amount"}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	var total int64
	for _, row := range rows {
		total += row.amount.Cents
		record := []string{
			string(row.entryType),
			row.date.String(),
			row.name,
			row.category,
			core.FormatCents(row.amount.Cents),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	if err := cw.Write([]string{"total", "", "", "", core.FormatCents(total)}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	slog.InfoContext(ctx, "Ledger exported",
		"project_id", projectID,
		"rows", len(rows))
	return nil
}

func (s *ExportService) collectRows(ctx context.Context, projectID string) ([]ledgerRow, error) {
	categories, err := s.store.ListCategories(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	categoryName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return core.UncategorizedBucket
	}

	var rows []ledgerRow

	timesheets, err := s.store.ListTimesheets(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list timesheets: %w", err)
	}
	for _, ts := range timesheets {
		name := ts.Notes
		if name == "" {
			name = fmt.Sprintf("%.2f h @ %s", ts.Hours.Float(), ts.PayRate)
		}
		rows = append(rows, ledgerRow{
			entryType: core.EntryTimesheet,
			date:      ts.Date,
			name:      name,
			category:  categoryName(ts.CategoryID),
			amount:    core.LaborCost(ts.Hours, ts.PayRate),
		})
	}

	logs, err := s.store.ListEquipmentLogs(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list equipment logs: %w", err)
	}
	for _, l := range logs {
		rows = append(rows, ledgerRow{
			entryType: core.EntryEquipment,
			date:      l.Date,
			name:      l.EquipmentName,
			category:  categoryName(l.CategoryID),
			amount:    l.FuelCost.Add(l.RentalCost),
		})
	}

	subs, err := s.store.ListSubcontractorEntries(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list subcontractor entries: %w", err)
	}
	for _, e := range subs {
		rows = append(rows, ledgerRow{
			entryType: core.EntrySubcontractor,
			date:      e.Date,
			name:      e.Company,
			category:  categoryName(e.CategoryID),
			amount:    e.Cost,
		})
	}

	overhead, err := s.store.ListOverheadEntries(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list overhead entries: %w", err)
	}
	for _, e := range overhead {
		rows = append(rows, ledgerRow{
			entryType: core.EntryOverhead,
			date:      e.Date,
			name:      e.Description,
			category:  categoryName(e.CategoryID),
			amount:    e.Cost,
		})
	}

	reports, err := s.store.ListProgressReports(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list progress reports: %w", err)
	}
	reportDates := make(map[string]core.Date, len(reports))
	for _, r := range reports {
		reportDates[r.ID] = r.Date
	}
	materials, err := s.store.ListMaterials(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	for _, m := range materials {
		rows = append(rows, ledgerRow{
			entryType: core.EntryMaterial,
			date:      reportDates[m.ReportID],
			name:      m.Name,
			category:  categoryName(m.CategoryID),
			amount:    m.Cost,
		})
	}

	return rows, nil
}
