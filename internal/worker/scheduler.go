package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"cantiere/internal/core"
	"cantiere/internal/log"
	"cantiere/internal/services"
)

// Scheduler runs periodic inbox scans for the active connection against a
// default project. Without a schedule or a default project it stays idle.
type Scheduler struct {
	cron        *cron.Cron
	scans       *services.IngestionService
	connections services.ConnectionStore
	schedule    string
	projectID   string
}

func NewScheduler(scans *services.IngestionService, connections services.ConnectionStore, schedule, projectID string) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLocation(time.Local)),
		scans:       scans,
		connections: connections,
		schedule:    schedule,
		projectID:   projectID,
	}
}

// Start registers the scan entry and launches the cron loop.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		slog.Warn("No scan schedule configured, periodic scans disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.runScheduledScan); err != nil {
		return fmt.Errorf("register scan schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	slog.Info("Scan scheduler started",
		"schedule", s.schedule,
		log.FieldProjectID, s.projectID)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Scan scheduler stopped")
}

func (s *Scheduler) runScheduledScan() {
	ctx := context.Background()
	if s.projectID == "" {
		slog.WarnContext(ctx, "No default project configured, skipping scheduled scan")
		return
	}

	conn, err := s.connections.GetActiveConnection(ctx)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.InfoContext(ctx, "No active Gmail connection, skipping scheduled scan")
			return
		}
		slog.ErrorContext(ctx, "Failed to load active connection", log.FieldError, err)
		return
	}

	// Pick up where the last successful sync left off.
	since := conn.LastSyncAt
	if since.IsZero() {
		since = time.Now().Add(-24 * time.Hour)
	}

	report, err := s.scans.Scan(ctx, services.ScanJob{
		ConnectionID: conn.ID,
		ProjectID:    s.projectID,
		Since:        since,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled scan failed", log.FieldError, err)
		return
	}
	slog.InfoContext(ctx, "Scheduled scan completed",
		"emails_scanned", report.EmailsScanned,
		"receipts_found", report.ReceiptsFound,
		"receipts_processed", report.ReceiptsProcessed,
		"receipts_failed", report.ReceiptsFailed)
}
