// Package memory provides an in-memory Inbox for development and tests,
// used when no Gmail credentials are configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cantiere/internal/mail"
)

type Inbox struct {
	mu       sync.Mutex
	address  string
	messages []mail.Message
}

var _ mail.Inbox = (*Inbox)(nil)

func New(address string, messages ...mail.Message) *Inbox {
	if address == "" {
		address = "inbox@localhost"
	}
	return &Inbox{address: address, messages: messages}
}

// Add seeds a message into the inbox.
func (i *Inbox) Add(msg mail.Message) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.messages = append(i.messages, msg)
}

func (i *Inbox) Profile(_ context.Context) (string, error) {
	return i.address, nil
}

// SearchReceipts returns seeded messages received after since, newest
// first, up to max.
func (i *Inbox) SearchReceipts(_ context.Context, since time.Time, max int64) ([]mail.Message, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var out []mail.Message
	for _, msg := range i.messages {
		if !since.IsZero() && !msg.Received.After(since) {
			continue
		}
		out = append(out, msg)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Received.After(out[b].Received)
	})
	if max > 0 && int64(len(out)) > max {
		out = out[:max]
	}
	return out, nil
}
