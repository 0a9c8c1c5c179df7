// Package anthropic extracts structured receipt data from scanned
// documents with the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"cantiere/internal/core"
	"cantiere/internal/vision"
)

const (
	baseURL        = "https://api.anthropic.com/v1"
	apiVersion     = "2023-06-01"
	requestTimeout = 60 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	maxTokens      = 1024
	keyPrefix      = "sk-ant-"
	defaultModel   = "claude-sonnet-4-20250514"
)

// ErrUnauthorized indicates the API key was rejected.
var ErrUnauthorized = errors.New("anthropic: unauthorized (api key rejected)")

const extractionPrompt = `This document is a receipt or invoice from a construction supplier or subcontractor. Extract its contents and reply with a single JSON object and nothing else:
{"vendor": string, "date": "YYYY-MM-DD", "line_items": [{"description": string, "quantity": number, "unit": string, "price": number, "total": number}], "subtotal": number, "tax": number, "total": number}
Amounts are decimal numbers in the document currency. Use 0 or "" for anything you cannot read.`

// Client analyzes receipt documents through the Messages API.
type Client struct {
	apiKey string
	model  string
	http   *http.Client
}

var _ vision.Analyzer = (*Client)(nil)

// NewClient creates a client for the given API key.
// Returns nil if the key is empty or has the wrong prefix, so callers
// can treat a missing key as "no analyzer configured".
func NewClient(apiKey, model string) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if !strings.HasPrefix(apiKey, keyPrefix) {
		return nil
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{},
	}
}

// NewFromEnv creates a client from ANTHROPIC_API_KEY and ANTHROPIC_MODEL.
func NewFromEnv() *Client {
	return NewClient(os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("ANTHROPIC_MODEL"))
}

func (c *Client) AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (core.ReceiptExtraction, error) {
	if len(image) == 0 {
		return core.ReceiptExtraction{}, errors.New("anthropic: empty document")
	}

	// PDFs go in a document block, everything else as an image.
	docBlock := contentBlock{
		Type: "image",
		Source: &blockSource{
			Type:      "base64",
			MediaType: mimeType,
			Data:      base64.StdEncoding.EncodeToString(image),
		},
	}
	if mimeType == "application/pdf" {
		docBlock.Type = "document"
	}

	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []message{{
			Role:    "user",
			Content: []contentBlock{docBlock, {Type: "text", Text: extractionPrompt}},
		}},
	}

	body, err := c.post(ctx, "/messages", reqBody)
	if err != nil {
		return core.ReceiptExtraction{}, err
	}

	var resp messageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return core.ReceiptExtraction{}, fmt.Errorf("anthropic: parsing response: %w", err)
	}

	text := firstText(resp.Content)
	if text == "" {
		return core.ReceiptExtraction{}, errors.New("anthropic: response has no text content")
	}
	return parseExtraction(text)
}

// post performs an authenticated POST request and returns the response body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("anthropic: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("anthropic: creating request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w: %v", core.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("anthropic: reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("anthropic: rate limited: %w", core.ErrUpstream)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("anthropic: status %d: %w", resp.StatusCode, core.ErrUpstream)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("anthropic: %s (status %d)", errorMessage(body), resp.StatusCode)
	}
	return body, nil
}

func firstText(blocks []contentBlock) string {
	for _, b := range blocks {
		if b.Type == "text" && strings.TrimSpace(b.Text) != "" {
			return b.Text
		}
	}
	return ""
}

func errorMessage(body []byte) string {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		return ae.Error.Message
	}
	return "unexpected response"
}
