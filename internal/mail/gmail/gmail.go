package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"cantiere/internal/mail"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	ggmail "google.golang.org/api/gmail/v1"
	goption "google.golang.org/api/option"
)

// Gmail addresses the authenticated mailbox as "me".
const gmailUser = "me"

type Client struct {
	svc *ggmail.Service
}

// Ensure interface conformance
var _ mail.Inbox = (*Client)(nil)

// NewFromEnv creates a Gmail client from environment variables.
// Required: GMAIL_OAUTH_CLIENT_JSON or GMAIL_OAUTH_CLIENT_FILE (OAuth client secret),
// plus a token obtained via the gmail-auth command: GMAIL_TOKEN_JSON or
// GMAIL_TOKEN_FILE (default "token.json").
func NewFromEnv(ctx context.Context) (*Client, error) {
	svc, err := newGmailService(ctx)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// newGmailService initializes a read-only Gmail service from the OAuth
// client secret and a previously saved user token.
func newGmailService(ctx context.Context) (*ggmail.Service, error) {
	clientJSON := strings.TrimSpace(os.Getenv("GMAIL_OAUTH_CLIENT_JSON"))
	clientFile := strings.TrimSpace(os.Getenv("GMAIL_OAUTH_CLIENT_FILE"))

	var credentialsJSON []byte
	var err error

	switch {
	case clientJSON != "":
		credentialsJSON = []byte(clientJSON)
	case clientFile != "":
		credentialsJSON, err = os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
	default:
		return nil, errors.New("missing oauth client credentials (set GMAIL_OAUTH_CLIENT_JSON or GMAIL_OAUTH_CLIENT_FILE)")
	}

	cfg, err := google.ConfigFromJSON(credentialsJSON, ggmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client config: %w", err)
	}

	tok, err := loadToken()
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Creating Gmail service",
		"scope", ggmail.GmailReadonlyScope,
		"token_expiry", tok.Expiry)

	svc, err := ggmail.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

// loadToken reads the saved OAuth token from GMAIL_TOKEN_JSON or
// GMAIL_TOKEN_FILE. The token is produced by the gmail-auth command.
func loadToken() (*oauth2.Token, error) {
	if inline := strings.TrimSpace(os.Getenv("GMAIL_TOKEN_JSON")); inline != "" {
		var tok oauth2.Token
		if err := json.Unmarshal([]byte(inline), &tok); err != nil {
			return nil, fmt.Errorf("parse GMAIL_TOKEN_JSON: %w", err)
		}
		return &tok, nil
	}
	path := strings.TrimSpace(os.Getenv("GMAIL_TOKEN_FILE"))
	if path == "" {
		path = "token.json"
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read token file %s (run gmail-auth first): %w", path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	return &tok, nil
}

func (c *Client) Profile(ctx context.Context) (string, error) {
	if c.svc == nil {
		return "", errors.New("gmail service not initialized")
	}
	prof, err := c.svc.Users.GetProfile(gmailUser).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get gmail profile: %w", err)
	}
	return prof.EmailAddress, nil
}

func (c *Client) SearchReceipts(ctx context.Context, since time.Time, max int64) ([]mail.Message, error) {
	if c.svc == nil {
		return nil, errors.New("gmail service not initialized")
	}
	query := receiptQuery(since)
	call := c.svc.Users.Messages.List(gmailUser).Q(query).Context(ctx)
	if max > 0 {
		call = call.MaxResults(max)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	out := make([]mail.Message, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := c.fetchMessage(ctx, ref.Id)
		if err != nil {
			// One broken message should not sink the whole scan.
			slog.WarnContext(ctx, "Skipping unreadable message", "message_id", ref.Id, "error", err)
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}

func (c *Client) fetchMessage(ctx context.Context, id string) (mail.Message, error) {
	full, err := c.svc.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		return mail.Message{}, fmt.Errorf("get message %s: %w", id, err)
	}

	msg := mail.Message{
		ID:       id,
		From:     headerValue(full.Payload, "From"),
		Subject:  headerValue(full.Payload, "Subject"),
		Received: time.UnixMilli(full.InternalDate).UTC(),
	}
	for _, part := range attachmentParts(full.Payload) {
		data, err := c.partData(ctx, id, part)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable attachment",
				"message_id", id,
				"filename", part.Filename,
				"error", err)
			continue
		}
		msg.Attachments = append(msg.Attachments, mail.Attachment{
			Filename: part.Filename,
			MIMEType: part.MimeType,
			Data:     data,
		})
	}
	return msg, nil
}

// partData returns the decoded bytes of an attachment part. Small parts
// carry their data inline; larger ones only carry an attachment ID that
// has to be fetched separately.
func (c *Client) partData(ctx context.Context, messageID string, part *ggmail.MessagePart) ([]byte, error) {
	if part.Body == nil {
		return nil, errors.New("attachment part has no body")
	}
	if part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	if part.Body.AttachmentId == "" {
		return nil, errors.New("attachment part has no data reference")
	}
	body, err := c.svc.Users.Messages.Attachments.Get(gmailUser, messageID, part.Body.AttachmentId).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return decodeBody(body.Data)
}
