package services

import (
	"context"
	"fmt"
	"log/slog"

	"cantiere/internal/amqp"
)

// QueueDispatcher hands scan jobs to RabbitMQ for the worker process.
type QueueDispatcher struct {
	client *amqp.Client
}

func NewQueueDispatcher(client *amqp.Client) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

func (d *QueueDispatcher) DispatchScan(ctx context.Context, job ScanJob) error {
	if d.client == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping scan job")
		return nil
	}
	msg := amqp.NewScanJobMessage(job.ConnectionID, job.ProjectID, job.Since)
	if err := d.client.PublishScanJob(ctx, msg); err != nil {
		return fmt.Errorf("publish scan job: %w", err)
	}
	return nil
}

// LocalDispatcher runs scans in-process when no queue is configured. The
// caller returns immediately; the outcome lands on the connection row the
// same way it does for queued jobs.
type LocalDispatcher struct {
	scans *IngestionService
}

func NewLocalDispatcher(scans *IngestionService) *LocalDispatcher {
	return &LocalDispatcher{scans: scans}
}

func (d *LocalDispatcher) DispatchScan(ctx context.Context, job ScanJob) error {
	go func() {
		// Detached from the request context; Scan bounds its own runtime.
		if _, err := d.scans.Scan(context.Background(), job); err != nil {
			slog.Error("Scan job failed",
				"project_id", job.ProjectID,
				"error", err)
		}
	}()
	return nil
}

var (
	_ ScanDispatcher = (*QueueDispatcher)(nil)
	_ ScanDispatcher = (*LocalDispatcher)(nil)
)
