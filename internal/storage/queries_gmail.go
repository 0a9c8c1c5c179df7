package storage

import (
	"context"
	"database/sql"
	"time"

	"cantiere/internal/core"
)

const connectionColumns = `id, gmail_email, is_active, sync_status, last_sync_at, last_error, created_at, updated_at`

const insertConnection = `
INSERT INTO gmail_connections (id, gmail_email, is_active, sync_status, last_sync_at, last_error, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) insertConnectionRow(ctx context.Context, g core.GmailConnection) error {
	var lastSync sql.NullTime
	if !g.LastSyncAt.IsZero() {
		lastSync = sql.NullTime{Time: g.LastSyncAt, Valid: true}
	}
	_, err := q.db.ExecContext(ctx, insertConnection,
		g.ID, g.GmailEmail, g.IsActive, string(g.SyncStatus), lastSync, g.LastError, g.CreatedAt, g.UpdatedAt)
	return err
}

const getActiveConnection = `
SELECT ` + connectionColumns + `
FROM gmail_connections WHERE is_active = 1`

func (q *Queries) GetActiveConnection(ctx context.Context) (core.GmailConnection, error) {
	return scanConnection(q.db.QueryRowContext(ctx, getActiveConnection))
}

const getConnection = `
SELECT ` + connectionColumns + `
FROM gmail_connections WHERE id = ?`

func (q *Queries) GetConnection(ctx context.Context, id string) (core.GmailConnection, error) {
	return scanConnection(q.db.QueryRowContext(ctx, getConnection, id))
}

const listConnections = `
SELECT ` + connectionColumns + `
FROM gmail_connections ORDER BY created_at DESC, id`

func (q *Queries) ListConnections(ctx context.Context) ([]core.GmailConnection, error) {
	rows, err := q.db.QueryContext(ctx, listConnections)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var connections []core.GmailConnection
	for rows.Next() {
		g, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		connections = append(connections, g)
	}
	return connections, rows.Err()
}

const updateConnection = `
UPDATE gmail_connections SET gmail_email = ?, updated_at = ? WHERE id = ?`

func (q *Queries) UpdateConnection(ctx context.Context, g core.GmailConnection) error {
	return requireAffected(q.db.ExecContext(ctx, updateConnection, g.GmailEmail, g.UpdatedAt, g.ID))
}

const deactivateAllConnections = `
UPDATE gmail_connections SET is_active = 0, updated_at = ? WHERE is_active = 1`

func (q *Queries) deactivateAll(ctx context.Context, now time.Time) error {
	_, err := q.db.ExecContext(ctx, deactivateAllConnections, now)
	return err
}

const deactivateConnection = `
UPDATE gmail_connections SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1`

func (q *Queries) DeactivateConnection(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, deactivateConnection, now, id))
}

const markSyncStarted = `
UPDATE gmail_connections SET sync_status = ?, updated_at = ? WHERE id = ?`

func (q *Queries) MarkSyncStarted(ctx context.Context, id string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, markSyncStarted, string(core.SyncRunning), now, id))
}

const markSyncResult = `
UPDATE gmail_connections SET
	sync_status = ?,
	last_error = ?,
	last_sync_at = CASE WHEN ? THEN ? ELSE last_sync_at END,
	updated_at = ?
WHERE id = ?`

// MarkSyncResult records the outcome of a scan. The last sync time only
// advances on success.
func (q *Queries) MarkSyncResult(ctx context.Context, id string, status core.SyncStatus, lastError string, now time.Time) error {
	return requireAffected(q.db.ExecContext(ctx, markSyncResult,
		string(status), lastError, status == core.SyncSuccess, now, now, id))
}

const resetStuckSyncs = `
UPDATE gmail_connections SET sync_status = ?, last_error = ?, updated_at = ?
WHERE sync_status = ?`

// ResetStuckSyncs flips connections left in the syncing state, for example
// after a crash mid-scan, into the error state. Returns how many were reset.
func (q *Queries) ResetStuckSyncs(ctx context.Context, lastError string, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, resetStuckSyncs,
		string(core.SyncError), lastError, now, string(core.SyncRunning))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanConnection(row rowScanner) (core.GmailConnection, error) {
	var g core.GmailConnection
	var status string
	var lastSync sql.NullTime
	err := row.Scan(&g.ID, &g.GmailEmail, &g.IsActive, &status, &lastSync, &g.LastError, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return core.GmailConnection{}, notFoundIfNoRows(err)
	}
	g.SyncStatus = core.SyncStatus(status)
	if lastSync.Valid {
		g.LastSyncAt = lastSync.Time
	}
	return g, nil
}
