// Package worker runs inbox scans in the background, from queued jobs and
// on a periodic schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cantiere/internal/amqp"
	"cantiere/internal/core"
	"cantiere/internal/log"
	"cantiere/internal/services"
)

// ScanWorker executes queued scan jobs.
type ScanWorker struct {
	scans       *services.IngestionService
	connections services.ConnectionStore
}

func NewScanWorker(scans *services.IngestionService, connections services.ConnectionStore) *ScanWorker {
	return &ScanWorker{
		scans:       scans,
		connections: connections,
	}
}

// HandleScanJob processes a single scan job from the queue. A job whose
// connection or project disappeared since it was queued is dropped, not
// requeued.
func (w *ScanWorker) HandleScanJob(ctx context.Context, msg *amqp.ScanJobMessage) error {
	slog.InfoContext(ctx, "Processing scan job",
		log.FieldConnectionID, msg.ConnectionID,
		log.FieldProjectID, msg.ProjectID)

	report, err := w.scans.Scan(ctx, services.ScanJob{
		ConnectionID: msg.ConnectionID,
		ProjectID:    msg.ProjectID,
		Since:        msg.Since,
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Scan job target gone, dropping job",
				log.FieldConnectionID, msg.ConnectionID,
				log.FieldProjectID, msg.ProjectID,
				log.FieldError, err)
			return nil
		}
		return fmt.Errorf("run scan: %w", err)
	}

	for _, e := range report.Errors {
		slog.WarnContext(ctx, "Attachment failed during scan", "detail", e)
	}
	slog.InfoContext(ctx, "Scan job completed",
		"emails_scanned", report.EmailsScanned,
		"receipts_found", report.ReceiptsFound,
		"receipts_processed", report.ReceiptsProcessed,
		"receipts_failed", report.ReceiptsFailed)
	return nil
}

// StartupCheck recovers connections a crashed worker left in the syncing
// state, so they do not block future scans.
func (w *ScanWorker) StartupCheck(ctx context.Context) error {
	n, err := w.connections.ResetStuckSyncs(ctx, "scan interrupted by restart", time.Now().UTC())
	if err != nil {
		return fmt.Errorf("reset stuck syncs: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Reset interrupted scans", "count", n)
	}
	return nil
}
