package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cantiere/internal/core"
)

const createReceipt = `
INSERT INTO receipts (id, project_id, vendor, receipt_date, subtotal_cents, tax_cents, total_cents, status, error_message, source, file_path, extraction_json, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateReceipt(ctx context.Context, r core.Receipt) error {
	extraction, err := marshalExtraction(r.Extraction)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx, createReceipt,
		r.ID, r.ProjectID, r.Vendor, nullDate(r.ReceiptDate), r.Subtotal.Cents, r.Tax.Cents,
		r.Total.Cents, string(r.Status), r.ErrorMessage, string(r.Source), r.FilePath,
		extraction, r.CreatedAt, r.UpdatedAt)
	return err
}

const getReceipt = `
SELECT id, project_id, vendor, receipt_date, subtotal_cents, tax_cents, total_cents, status, error_message, source, file_path, extraction_json, created_at, updated_at
FROM receipts WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) GetReceipt(ctx context.Context, id string) (core.Receipt, error) {
	return scanReceipt(q.db.QueryRowContext(ctx, getReceipt, id))
}

const listReceipts = `
SELECT id, project_id, vendor, receipt_date, subtotal_cents, tax_cents, total_cents, status, error_message, source, file_path, extraction_json, created_at, updated_at
FROM receipts WHERE project_id = ? AND deleted_at IS NULL ORDER BY created_at DESC, id`

func (q *Queries) ListReceipts(ctx context.Context, projectID string) ([]core.Receipt, error) {
	rows, err := q.db.QueryContext(ctx, listReceipts, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []core.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

const updateReceipt = `
UPDATE receipts SET vendor = ?, receipt_date = ?, subtotal_cents = ?, tax_cents = ?, total_cents = ?, status = ?, error_message = ?, file_path = ?, extraction_json = ?, updated_at = ?
WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) UpdateReceipt(ctx context.Context, r core.Receipt) error {
	extraction, err := marshalExtraction(r.Extraction)
	if err != nil {
		return err
	}
	return requireAffected(q.db.ExecContext(ctx, updateReceipt,
		r.Vendor, nullDate(r.ReceiptDate), r.Subtotal.Cents, r.Tax.Cents, r.Total.Cents,
		string(r.Status), r.ErrorMessage, r.FilePath, extraction, r.UpdatedAt, r.ID))
}

const deleteReceipt = `
UPDATE receipts SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

func (q *Queries) DeleteReceipt(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deleteReceipt, now, now, id))
}

func scanReceipt(row rowScanner) (core.Receipt, error) {
	var r core.Receipt
	var date, extraction sql.NullString
	var status, source string
	err := row.Scan(&r.ID, &r.ProjectID, &r.Vendor, &date, &r.Subtotal.Cents, &r.Tax.Cents,
		&r.Total.Cents, &status, &r.ErrorMessage, &source, &r.FilePath, &extraction,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return core.Receipt{}, notFoundIfNoRows(err)
	}
	if r.ReceiptDate, err = dateFromNull(date); err != nil {
		return core.Receipt{}, err
	}
	r.Status = core.ReceiptStatus(status)
	r.Source = core.ReceiptSource(source)
	if extraction.Valid && extraction.String != "" {
		var parsed core.ReceiptExtraction
		if err := json.Unmarshal([]byte(extraction.String), &parsed); err != nil {
			return core.Receipt{}, fmt.Errorf("decode extraction: %w", err)
		}
		r.Extraction = &parsed
	}
	return r, nil
}

func marshalExtraction(e *core.ReceiptExtraction) (sql.NullString, error) {
	if e == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode extraction: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

const createReceiptLink = `
INSERT INTO receipt_links (id, receipt_id, entry_type, entry_id, created_at)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateReceiptLink(ctx context.Context, l core.ReceiptLink) error {
	_, err := q.db.ExecContext(ctx, createReceiptLink,
		l.ID, l.ReceiptID, string(l.EntryType), l.EntryID, l.CreatedAt)
	if isUniqueViolation(err) {
		return core.ErrDuplicateLink
	}
	return err
}

const listReceiptLinks = `
SELECT id, receipt_id, entry_type, entry_id, created_at
FROM receipt_links WHERE receipt_id = ? ORDER BY created_at, id`

func (q *Queries) ListReceiptLinks(ctx context.Context, receiptID string) ([]core.ReceiptLink, error) {
	rows, err := q.db.QueryContext(ctx, listReceiptLinks, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []core.ReceiptLink
	for rows.Next() {
		var l core.ReceiptLink
		var entryType string
		if err := rows.Scan(&l.ID, &l.ReceiptID, &entryType, &l.EntryID, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.EntryType = core.EntryType(entryType)
		links = append(links, l)
	}
	return links, rows.Err()
}

const deleteReceiptLink = `
DELETE FROM receipt_links WHERE id = ?`

func (q *Queries) DeleteReceiptLink(ctx context.Context, id string) error {
	return requireAffected(q.db.ExecContext(ctx, deleteReceiptLink, id))
}

// entryTables maps each linkable kind onto its table. Lookups never build SQL
// from request input directly.
var entryTables = map[core.EntryType]string{
	core.EntryTimesheet:     "timesheets",
	core.EntryEquipment:     "equipment_logs",
	core.EntrySubcontractor: "subcontractor_entries",
	core.EntryOverhead:      "overhead_entries",
	core.EntryMaterial:      "materials",
}

// EntryExists reports whether a live row of the given kind exists.
func (q *Queries) EntryExists(ctx context.Context, entryType core.EntryType, id string) (bool, error) {
	table, ok := entryTables[entryType]
	if !ok {
		return false, core.ErrInvalidEntryType
	}
	stmt := `SELECT EXISTS (SELECT 1 FROM ` + table + ` WHERE id = ? AND deleted_at IS NULL)`
	var exists bool
	if err := q.db.QueryRowContext(ctx, stmt, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
