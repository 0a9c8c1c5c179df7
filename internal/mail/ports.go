// Package mail defines the inbox access ports used by receipt ingestion.
package mail

import (
	"context"
	"time"
)

type (
	// Attachment is a single downloadable file on a message.
	Attachment struct {
		Filename string
		MIMEType string
		Data     []byte
	}

	// Message is an email narrowed down to what ingestion needs.
	Message struct {
		ID          string
		From        string
		Subject     string
		Received    time.Time
		Attachments []Attachment
	}

	// Inbox reads receipt candidates from a mailbox.
	Inbox interface {
		// Profile returns the address of the authenticated mailbox.
		Profile(ctx context.Context) (string, error)
		// SearchReceipts returns messages with image or PDF attachments
		// received after since, newest first, up to max messages.
		SearchReceipts(ctx context.Context, since time.Time, max int64) ([]Message, error)
	}
)
