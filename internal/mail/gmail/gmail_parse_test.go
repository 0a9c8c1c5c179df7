package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	ggmail "google.golang.org/api/gmail/v1"
)

func TestAttachmentParts(t *testing.T) {
	payload := &ggmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*ggmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*ggmail.MessagePart{
					{MimeType: "text/plain", Body: &ggmail.MessagePartBody{Data: "aGk"}},
					{MimeType: "text/html", Body: &ggmail.MessagePartBody{Data: "aGk"}},
				},
			},
			{Filename: "receipt.pdf", MimeType: "application/pdf", Body: &ggmail.MessagePartBody{AttachmentId: "att-1"}},
			{Filename: "site.jpg", MimeType: "image/jpeg", Body: &ggmail.MessagePartBody{Data: "aW1n"}},
			{Filename: "stub.png", MimeType: "image/png", Body: &ggmail.MessagePartBody{}},
		},
	}

	parts := attachmentParts(payload)
	if len(parts) != 2 {
		t.Fatalf("attachmentParts returned %d parts, want 2", len(parts))
	}
	if parts[0].Filename != "receipt.pdf" {
		t.Fatalf("first part = %q, want receipt.pdf", parts[0].Filename)
	}
	if parts[1].Filename != "site.jpg" {
		t.Fatalf("second part = %q, want site.jpg", parts[1].Filename)
	}
}

func TestAttachmentPartsNilPayload(t *testing.T) {
	if parts := attachmentParts(nil); parts != nil {
		t.Fatalf("attachmentParts(nil) = %v, want nil", parts)
	}
}

func TestHeaderValue(t *testing.T) {
	payload := &ggmail.MessagePart{
		Headers: []*ggmail.MessagePartHeader{
			{Name: "Subject", Value: "Fattura 2025-104"},
			{Name: "from", Value: "billing@edilenord.it"},
		},
	}
	if got := headerValue(payload, "From"); got != "billing@edilenord.it" {
		t.Fatalf("headerValue(From) = %q", got)
	}
	if got := headerValue(payload, "subject"); got != "Fattura 2025-104" {
		t.Fatalf("headerValue(subject) = %q", got)
	}
	if got := headerValue(payload, "Date"); got != "" {
		t.Fatalf("headerValue(Date) = %q, want empty", got)
	}
	if got := headerValue(nil, "From"); got != "" {
		t.Fatalf("headerValue(nil) = %q, want empty", got)
	}
}

func TestDecodeBody(t *testing.T) {
	want := []byte("receipt bytes")

	raw := base64.RawURLEncoding.EncodeToString(want)
	got, err := decodeBody(raw)
	if err != nil {
		t.Fatalf("decode unpadded: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("decode unpadded = %q, want %q", got, want)
	}

	padded := base64.URLEncoding.EncodeToString(want)
	got, err = decodeBody(padded)
	if err != nil {
		t.Fatalf("decode padded: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("decode padded = %q, want %q", got, want)
	}

	if _, err := decodeBody("%%not-base64%%"); err == nil {
		t.Fatal("expected error for invalid data")
	}
}

func TestReceiptQuery(t *testing.T) {
	q := receiptQuery(time.Time{})
	if !strings.Contains(q, "has:attachment") {
		t.Fatalf("query missing attachment filter: %q", q)
	}
	if strings.Contains(q, "after:") {
		t.Fatalf("zero since should not add after: %q", q)
	}

	since := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	q = receiptQuery(since)
	if !strings.Contains(q, fmt.Sprintf("after:%d", since.Unix())) {
		t.Fatalf("query missing after filter: %q", q)
	}
}
