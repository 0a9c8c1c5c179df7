package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cantiere/internal/core"
	"cantiere/internal/mail"
)

// scanTimeout bounds a single inbox scan so a wedged upstream cannot hold
// the syncing flag forever.
const scanTimeout = 10 * time.Minute

const defaultScanBatch = 25

type (
	// ScanJob asks for one inbox scan. ConnectionID may be empty, meaning
	// whichever connection is active when the job runs.
	ScanJob struct {
		ConnectionID string    `json:"connectionId,omitempty"`
		ProjectID    string    `json:"projectId"`
		Since        time.Time `json:"since"`
	}

	// ScanDispatcher hands a scan job off for asynchronous execution.
	ScanDispatcher interface {
		DispatchScan(ctx context.Context, job ScanJob) error
	}
)

// IngestionService pulls receipt attachments out of the connected mailbox
// and feeds them through the receipt pipeline.
type IngestionService struct {
	connections ConnectionStore
	receipts    *ReceiptService
	inbox       mail.Inbox
	batchSize   int64
}

// NewIngestionService wires the service. batchSize caps how many messages a
// single scan pulls; zero means the default.
func NewIngestionService(connections ConnectionStore, receipts *ReceiptService, inbox mail.Inbox, batchSize int64) *IngestionService {
	if batchSize <= 0 {
		batchSize = defaultScanBatch
	}
	return &IngestionService{
		connections: connections,
		receipts:    receipts,
		inbox:       inbox,
		batchSize:   batchSize,
	}
}

// Scan searches the mailbox for receipts received after since and ingests
// every matching attachment into the given project. Per-attachment failures
// are collected in the report and never abort the scan.
func (s *IngestionService) Scan(ctx context.Context, job ScanJob) (core.ScanReport, error) {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	conn, err := s.resolveConnection(ctx, job.ConnectionID)
	if err != nil {
		return core.ScanReport{}, err
	}
	if s.inbox == nil {
		return core.ScanReport{}, fmt.Errorf("%w: no inbox configured", core.ErrUpstream)
	}

	if err := s.connections.MarkSyncStarted(ctx, conn.ID, time.Now().UTC()); err != nil {
		return core.ScanReport{}, fmt.Errorf("mark sync started: %w", err)
	}
	slog.InfoContext(ctx, "Inbox scan started",
		"connection_id", conn.ID,
		"project_id", job.ProjectID,
		"since", job.Since.Format(time.RFC3339))

	report, scanErr := s.scanInbox(ctx, job)
	s.finishSync(ctx, conn.ID, scanErr)
	if scanErr != nil {
		return report, scanErr
	}

	slog.InfoContext(ctx, "Inbox scan finished",
		"connection_id", conn.ID,
		"emails_scanned", report.EmailsScanned,
		"receipts_found", report.ReceiptsFound,
		"receipts_processed", report.ReceiptsProcessed,
		"receipts_failed", report.ReceiptsFailed)
	return report, nil
}

func (s *IngestionService) resolveConnection(ctx context.Context, id string) (core.GmailConnection, error) {
	if id == "" {
		conn, err := s.connections.GetActiveConnection(ctx)
		if err != nil {
			return core.GmailConnection{}, fmt.Errorf("get active connection: %w", err)
		}
		return conn, nil
	}
	conn, err := s.connections.GetConnection(ctx, id)
	if err != nil {
		return core.GmailConnection{}, fmt.Errorf("get connection: %w", err)
	}
	if !conn.IsActive {
		return core.GmailConnection{}, fmt.Errorf("connection %s: %w", id, core.ErrNotFound)
	}
	return conn, nil
}

func (s *IngestionService) scanInbox(ctx context.Context, job ScanJob) (core.ScanReport, error) {
	var report core.ScanReport

	messages, err := s.inbox.SearchReceipts(ctx, job.Since, s.batchSize)
	if err != nil {
		return report, fmt.Errorf("search inbox: %w", err)
	}

	for _, msg := range messages {
		report.EmailsScanned++
		for _, att := range msg.Attachments {
			if !receiptAttachment(att) {
				continue
			}
			report.ReceiptsFound++

			receipt, err := s.receipts.IngestAttachment(ctx, job.ProjectID, att.Filename, att.Data)
			if err != nil {
				report.ReceiptsFailed++
				report.Errors = append(report.Errors,
					fmt.Sprintf("message %s attachment %s: %v", msg.ID, att.Filename, err))
				continue
			}
			if receipt.Status == core.ReceiptFailed {
				report.ReceiptsFailed++
				report.Errors = append(report.Errors,
					fmt.Sprintf("message %s attachment %s: %s", msg.ID, att.Filename, receipt.ErrorMessage))
				continue
			}
			report.ReceiptsProcessed++
		}
	}
	return report, nil
}

// finishSync records the scan outcome on the connection row. It runs on a
// fresh context because the scan context may already be expired, and a
// failure here only gets logged.
func (s *IngestionService) finishSync(ctx context.Context, connectionID string, scanErr error) {
	status := core.SyncSuccess
	lastError := ""
	if scanErr != nil {
		status = core.SyncError
		lastError = scanErr.Error()
	}
	if err := s.connections.MarkSyncResult(context.Background(), connectionID, status, lastError, time.Now().UTC()); err != nil {
		slog.ErrorContext(ctx, "Failed to record sync result",
			"connection_id", connectionID,
			"error", err)
	}
}

// receiptAttachment reports whether an attachment looks like a receipt
// document rather than an inline logo or signature image.
func receiptAttachment(att mail.Attachment) bool {
	if len(att.Data) == 0 {
		return false
	}
	mt := strings.ToLower(att.MIMEType)
	return strings.HasPrefix(mt, "image/") || mt == "application/pdf"
}
