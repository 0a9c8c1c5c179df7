package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cantiere/internal/core"
)

// ConnectionService manages the Gmail connection used for receipt ingestion.
// Activation is exclusive: connecting a mailbox deactivates whichever one was
// active before, in the same database transaction.
type ConnectionService struct {
	store ConnectionStore
}

func NewConnectionService(store ConnectionStore) *ConnectionService {
	return &ConnectionService{store: store}
}

// Connect activates a mailbox for scanning. When another request races this
// one, the loser gets core.ErrConnectionBusy and should simply retry.
func (s *ConnectionService) Connect(ctx context.Context, email string) (core.GmailConnection, error) {
	now := time.Now().UTC()
	conn := core.GmailConnection{
		ID:         uuid.NewString(),
		GmailEmail: email,
		IsActive:   true,
		SyncStatus: core.SyncPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := conn.Validate(); err != nil {
		return core.GmailConnection{}, err
	}
	if err := s.store.CreateActiveConnection(ctx, conn); err != nil {
		return core.GmailConnection{}, fmt.Errorf("activate connection: %w", err)
	}
	slog.InfoContext(ctx, "Gmail connection activated",
		"connection_id", conn.ID,
		"email", conn.GmailEmail)
	return conn, nil
}

// Active returns the currently active connection, core.ErrNotFound when no
// mailbox is connected.
func (s *ConnectionService) Active(ctx context.Context) (core.GmailConnection, error) {
	return s.store.GetActiveConnection(ctx)
}

func (s *ConnectionService) Get(ctx context.Context, id string) (core.GmailConnection, error) {
	return s.store.GetConnection(ctx, id)
}

func (s *ConnectionService) List(ctx context.Context) ([]core.GmailConnection, error) {
	return s.store.ListConnections(ctx)
}

// Disconnect deactivates the connection. The row and its sync history stay.
func (s *ConnectionService) Disconnect(ctx context.Context, id string) error {
	if err := s.store.DeactivateConnection(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate connection: %w", err)
	}
	slog.InfoContext(ctx, "Gmail connection deactivated", "connection_id", id)
	return nil
}

// UpdateEmail changes the address recorded on an existing connection.
func (s *ConnectionService) UpdateEmail(ctx context.Context, id, email string) (core.GmailConnection, error) {
	conn, err := s.store.GetConnection(ctx, id)
	if err != nil {
		return core.GmailConnection{}, err
	}
	conn.GmailEmail = email
	conn.UpdatedAt = time.Now().UTC()
	if err := conn.Validate(); err != nil {
		return core.GmailConnection{}, err
	}
	if err := s.store.UpdateConnection(ctx, conn); err != nil {
		return core.GmailConnection{}, fmt.Errorf("update connection: %w", err)
	}
	return s.store.GetConnection(ctx, id)
}
