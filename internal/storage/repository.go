package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cantiere/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the single persistence backend. Plain row operations
// are promoted from Queries; multi-step operations that need a transaction
// live on the repository itself.
type SQLiteRepository struct {
	*Queries
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		Queries: New(db),
		db:      db,
	}

	return repo, nil
}

// dsn enables foreign keys, WAL for concurrent readers, and a busy timeout
// so writers queue instead of failing immediately.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.Queries.WithTx(tx)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CreateProgressReport inserts a report together with its materials. Either
// everything lands or nothing does.
func (r *SQLiteRepository) CreateProgressReport(ctx context.Context, report core.ProgressReport) error {
	err := r.withTx(ctx, func(q *Queries) error {
		if err := q.createProgressReportRow(ctx, report); err != nil {
			return fmt.Errorf("create progress report: %w", err)
		}
		for _, m := range report.Materials {
			if err := q.CreateMaterial(ctx, m); err != nil {
				return fmt.Errorf("create material %q: %w", m.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Progress report saved",
		"id", report.ID,
		"project_id", report.ProjectID,
		"percent_complete", report.PercentComplete,
		"materials", len(report.Materials))
	return nil
}

// GetProgressReport loads a report with its materials attached.
func (r *SQLiteRepository) GetProgressReport(ctx context.Context, id string) (core.ProgressReport, error) {
	report, err := r.Queries.GetProgressReport(ctx, id)
	if err != nil {
		return core.ProgressReport{}, err
	}
	materials, err := r.Queries.ListMaterialsByReport(ctx, id)
	if err != nil {
		return core.ProgressReport{}, fmt.Errorf("load report materials: %w", err)
	}
	report.Materials = materials
	return report, nil
}

// DeleteProgressReport soft-deletes a report and every material on it.
func (r *SQLiteRepository) DeleteProgressReport(ctx context.Context, id string, now time.Time) error {
	return r.withTx(ctx, func(q *Queries) error {
		if err := q.deleteProgressReportRow(ctx, id, now); err != nil {
			return err
		}
		return q.deleteMaterialsForReport(ctx, id, now)
	})
}

// DeleteCategory soft-deletes a category and nulls the reference on every
// entry that pointed at it, in one transaction.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string, now time.Time) error {
	err := r.withTx(ctx, func(q *Queries) error {
		if err := q.deleteCategoryRow(ctx, id, now); err != nil {
			return err
		}
		return q.clearCategoryRefs(ctx, id, now)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted, entry references cleared", "category_id", id)
	return nil
}
