package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"cantiere/internal/core"
)

// StatsService computes the budget picture for a project.
type StatsService struct {
	store StatsStore
	today func() core.Date
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{
		store: store,
		today: core.Today,
	}
}

// ProjectStats fetches every entry collection concurrently and folds them
// into BudgetStats. Any single fetch failure fails the whole call; there are
// no partial results.
func (s *StatsService) ProjectStats(ctx context.Context, projectID string) (core.BudgetStats, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return core.BudgetStats{}, fmt.Errorf("get project: %w", err)
	}

	in := core.BudgetInputs{Project: project}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if in.Timesheets, err = s.store.ListTimesheets(gctx, projectID); err != nil {
			return fmt.Errorf("list timesheets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.Equipment, err = s.store.ListEquipmentLogs(gctx, projectID); err != nil {
			return fmt.Errorf("list equipment logs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.Subcontractors, err = s.store.ListSubcontractorEntries(gctx, projectID); err != nil {
			return fmt.Errorf("list subcontractor entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.Overhead, err = s.store.ListOverheadEntries(gctx, projectID); err != nil {
			return fmt.Errorf("list overhead entries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.Reports, err = s.store.ListProgressReports(gctx, projectID); err != nil {
			return fmt.Errorf("list progress reports: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.Materials, err = s.store.ListMaterials(gctx, projectID); err != nil {
			return fmt.Errorf("list materials: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if in.Categories, err = s.store.ListCategories(gctx, projectID); err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.BudgetStats{}, err
	}

	stats := core.ComputeBudgetStats(in, s.today())

	slog.InfoContext(ctx, "Project stats computed",
		"project_id", projectID,
		"total_spent_cents", stats.TotalSpent.Cents,
		"remaining_cents", stats.Remaining.Cents,
		"percent_complete", stats.PercentComplete)

	return stats, nil
}
