package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cantiere/internal/core"
	"cantiere/internal/vision"
)

// ReceiptService stores receipt files on disk and runs them through the
// document analyzer. Analysis failures mark the receipt failed instead of
// failing the request, so the original file is never lost.
type ReceiptService struct {
	store    ReceiptStore
	analyzer vision.Analyzer
	dataDir  string
}

// NewReceiptService wires the service. analyzer may be nil, in which case
// uploads are stored and left pending until reprocessed.
func NewReceiptService(store ReceiptStore, analyzer vision.Analyzer, dataDir string) *ReceiptService {
	return &ReceiptService{store: store, analyzer: analyzer, dataDir: dataDir}
}

// Upload stores a receipt file for a project and analyzes it.
func (s *ReceiptService) Upload(ctx context.Context, projectID, filename string, data []byte) (core.Receipt, error) {
	return s.ingest(ctx, projectID, filename, data, core.SourceUpload)
}

// IngestAttachment stores a receipt pulled from the connected mailbox.
func (s *ReceiptService) IngestAttachment(ctx context.Context, projectID, filename string, data []byte) (core.Receipt, error) {
	return s.ingest(ctx, projectID, filename, data, core.SourceGmail)
}

func (s *ReceiptService) ingest(ctx context.Context, projectID, filename string, data []byte, source core.ReceiptSource) (core.Receipt, error) {
	if len(data) == 0 {
		return core.Receipt{}, core.ErrEmptyFile
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return core.Receipt{}, fmt.Errorf("get project: %w", err)
	}

	now := time.Now().UTC()
	receipt := core.Receipt{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Status:    core.ReceiptPending,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	receipt.FilePath = filepath.Join("receipts", receipt.ID+fileExt(filename))

	if err := s.writeFile(receipt.FilePath, data); err != nil {
		return core.Receipt{}, fmt.Errorf("store receipt file: %w", err)
	}
	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		return core.Receipt{}, fmt.Errorf("create receipt: %w", err)
	}
	slog.InfoContext(ctx, "Receipt stored",
		"receipt_id", receipt.ID,
		"project_id", projectID,
		"source", string(source),
		"bytes", len(data))

	return s.analyze(ctx, receipt, data, mimeTypeForFile(filename))
}

// Reprocess reads the stored file back from disk and runs analysis again.
// It is how pending and failed receipts get another chance.
func (s *ReceiptService) Reprocess(ctx context.Context, id string) (core.Receipt, error) {
	receipt, err := s.store.GetReceipt(ctx, id)
	if err != nil {
		return core.Receipt{}, err
	}
	data, err := os.ReadFile(s.AbsolutePath(receipt))
	if err != nil {
		return core.Receipt{}, fmt.Errorf("read receipt file: %w", err)
	}
	return s.analyze(ctx, receipt, data, mimeTypeForFile(receipt.FilePath))
}

// analyze runs the analyzer and persists the outcome on the receipt row.
// Analyzer errors come back as a failed receipt, not as an error.
func (s *ReceiptService) analyze(ctx context.Context, receipt core.Receipt, data []byte, mimeType string) (core.Receipt, error) {
	if s.analyzer == nil {
		slog.WarnContext(ctx, "No analyzer configured, receipt left pending", "receipt_id", receipt.ID)
		return receipt, nil
	}

	extraction, err := s.analyzer.AnalyzeReceipt(ctx, data, mimeType)
	receipt.UpdatedAt = time.Now().UTC()
	if err != nil {
		receipt.Status = core.ReceiptFailed
		receipt.ErrorMessage = err.Error()
		receipt.Extraction = nil
		slog.WarnContext(ctx, "Receipt analysis failed",
			"receipt_id", receipt.ID,
			"error", err)
	} else {
		receipt.Status = core.ReceiptProcessed
		receipt.ErrorMessage = ""
		receipt.Extraction = &extraction
		receipt.Vendor = extraction.Vendor
		receipt.Subtotal = extraction.Subtotal
		receipt.Tax = extraction.Tax
		receipt.Total = extraction.Total
		if d, derr := core.ParseDate(extraction.Date); derr == nil {
			receipt.ReceiptDate = d
		}
		slog.InfoContext(ctx, "Receipt analyzed",
			"receipt_id", receipt.ID,
			"vendor", receipt.Vendor,
			"total_cents", receipt.Total.Cents)
	}

	if uerr := s.store.UpdateReceipt(ctx, receipt); uerr != nil {
		return core.Receipt{}, fmt.Errorf("update receipt: %w", uerr)
	}
	return receipt, nil
}

func (s *ReceiptService) Get(ctx context.Context, id string) (core.Receipt, error) {
	return s.store.GetReceipt(ctx, id)
}

func (s *ReceiptService) List(ctx context.Context, projectID string) ([]core.Receipt, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return s.store.ListReceipts(ctx, projectID)
}

// Delete soft deletes the receipt row. The file stays on disk.
func (s *ReceiptService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteReceipt(ctx, id, time.Now().UTC()); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Receipt deleted", "receipt_id", id)
	return nil
}

// Link attaches a receipt to a cost entry as documentation. The entry must
// exist and the same receipt cannot be linked to the same entry twice.
func (s *ReceiptService) Link(ctx context.Context, receiptID string, entryType core.EntryType, entryID string) (core.ReceiptLink, error) {
	link := core.ReceiptLink{
		ID:        uuid.NewString(),
		ReceiptID: receiptID,
		EntryType: entryType,
		EntryID:   entryID,
		CreatedAt: time.Now().UTC(),
	}
	if err := link.Validate(); err != nil {
		return core.ReceiptLink{}, err
	}
	if _, err := s.store.GetReceipt(ctx, receiptID); err != nil {
		return core.ReceiptLink{}, fmt.Errorf("get receipt: %w", err)
	}
	exists, err := s.store.EntryExists(ctx, entryType, entryID)
	if err != nil {
		return core.ReceiptLink{}, fmt.Errorf("check entry: %w", err)
	}
	if !exists {
		return core.ReceiptLink{}, fmt.Errorf("%s %s: %w", entryType, entryID, core.ErrNotFound)
	}
	if err := s.store.CreateReceiptLink(ctx, link); err != nil {
		return core.ReceiptLink{}, fmt.Errorf("create link: %w", err)
	}
	slog.InfoContext(ctx, "Receipt linked",
		"receipt_id", receiptID,
		"entry_type", string(entryType),
		"entry_id", entryID)
	return link, nil
}

func (s *ReceiptService) Links(ctx context.Context, receiptID string) ([]core.ReceiptLink, error) {
	if _, err := s.store.GetReceipt(ctx, receiptID); err != nil {
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return s.store.ListReceiptLinks(ctx, receiptID)
}

func (s *ReceiptService) Unlink(ctx context.Context, linkID string) error {
	return s.store.DeleteReceiptLink(ctx, linkID)
}

// AbsolutePath resolves the stored relative path against the data directory.
func (s *ReceiptService) AbsolutePath(r core.Receipt) string {
	return filepath.Join(s.dataDir, r.FilePath)
}

func (s *ReceiptService) writeFile(relPath string, data []byte) error {
	abs := filepath.Join(s.dataDir, relPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return os.WriteFile(abs, data, 0o644)
}

func fileExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".pdf":
		return ext
	default:
		return ".bin"
	}
}

// mimeTypeForFile maps the stored extension to the content type the analyzer
// expects.
func mimeTypeForFile(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
