package gmail

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	ggmail "google.golang.org/api/gmail/v1"
)

// receiptQuery builds the Gmail search string for receipt candidates:
// anything with an image or PDF attachment, optionally bounded by since.
func receiptQuery(since time.Time) string {
	q := "has:attachment (filename:pdf OR filename:jpg OR filename:jpeg OR filename:png)"
	if !since.IsZero() {
		// Gmail accepts a Unix timestamp for after:, which keeps the
		// boundary exact instead of rounding to a calendar day.
		q = fmt.Sprintf("%s after:%d", q, since.Unix())
	}
	return q
}

// attachmentParts walks the MIME tree and returns every named part that
// carries data, either inline or by attachment ID.
func attachmentParts(payload *ggmail.MessagePart) []*ggmail.MessagePart {
	var out []*ggmail.MessagePart
	var walk func(p *ggmail.MessagePart)
	walk = func(p *ggmail.MessagePart) {
		if p == nil {
			return
		}
		if p.Filename != "" && p.Body != nil && (p.Body.AttachmentId != "" || p.Body.Data != "") {
			out = append(out, p)
		}
		for _, child := range p.Parts {
			walk(child)
		}
	}
	walk(payload)
	return out
}

// headerValue returns the first header with the given name. Header names
// are matched case-insensitively per RFC 5322.
func headerValue(payload *ggmail.MessagePart, name string) string {
	if payload == nil {
		return ""
	}
	for _, h := range payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// decodeBody decodes base64url body data. Gmail usually omits padding but
// some payloads arrive padded, so both forms are accepted.
func decodeBody(data string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode attachment body: %w", err)
	}
	return b, nil
}
