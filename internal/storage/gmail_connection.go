package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cantiere/internal/core"
)

const (
	activateAttempts  = 3
	activateBaseDelay = 100 * time.Millisecond
)

// CreateActiveConnection makes g the only active connection. Any currently
// active connection is deactivated and the new row inserted inside a single
// immediate transaction, so two concurrent activations serialize at the
// database. After bounded retries on lock contention the caller gets
// ErrConnectionBusy. The partial unique index on is_active backstops the
// single-active invariant regardless.
func (r *SQLiteRepository) CreateActiveConnection(ctx context.Context, g core.GmailConnection) error {
	var lastErr error
	for attempt := 1; attempt <= activateAttempts; attempt++ {
		err := r.activateInTx(ctx, g)
		if err == nil {
			slog.InfoContext(ctx, "Gmail connection activated",
				"connection_id", g.ID,
				"gmail_email", g.GmailEmail,
				"attempt", attempt)
			return nil
		}
		if !isBusyError(err) {
			return err
		}
		lastErr = err
		slog.WarnContext(ctx, "Gmail connection activation contended, retrying",
			"attempt", attempt,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * activateBaseDelay):
		}
	}
	return fmt.Errorf("%w: %v", core.ErrConnectionBusy, lastErr)
}

// activateInTx runs deactivate-all plus insert on a dedicated connection
// under BEGIN IMMEDIATE, which takes the write lock up front and holds it
// until commit or rollback.
func (r *SQLiteRepository) activateInTx(ctx context.Context, g core.GmailConnection) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			// Roll back with a fresh context so a canceled request
			// cannot leave the transaction open on the pooled session.
			conn.ExecContext(context.Background(), "ROLLBACK")
		}
		conn.Close()
	}()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin immediate: %w", err)
	}

	q := New(conn)
	if err := q.deactivateAll(ctx, g.UpdatedAt); err != nil {
		return fmt.Errorf("deactivate connections: %w", err)
	}
	if err := q.insertConnectionRow(ctx, g); err != nil {
		return fmt.Errorf("insert connection: %w", err)
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// isBusyError matches the SQLite lock and constraint failures that a retry
// can resolve.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, fragment := range []string{
		"database is locked",
		"SQLITE_BUSY",
		"UNIQUE constraint failed",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
