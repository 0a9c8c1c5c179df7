package backend

import (
	"context"

	"cantiere/internal/mail"
	"cantiere/internal/vision"
)

// Result contains the assembled ingestion adapters. A nil Inbox disables
// inbox scans; a nil Analyzer leaves uploaded receipts pending.
type Result struct {
	Inbox    mail.Inbox
	Analyzer vision.Analyzer
}

// Factory assembles the pluggable adapters behind receipt ingestion
type Factory interface {
	// CreateAdapters creates inbox and analyzer instances based on the provided config
	CreateAdapters(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for adapter creation
type Config struct {
	Inbox    InboxType
	Analyzer AnalyzerType

	// Memory inbox specific
	InboxAddress string

	// Anthropic specific
	AnthropicAPIKey string
	AnthropicModel  string
}

// InboxType selects the mail adapter behind receipt ingestion
type InboxType string

const (
	GmailInbox  InboxType = "gmail"
	MemoryInbox InboxType = "memory"
	NoInbox     InboxType = "none"
)

// String implements fmt.Stringer
func (t InboxType) String() string {
	return string(t)
}

// IsValid returns true if the inbox type is valid
func (t InboxType) IsValid() bool {
	switch t {
	case GmailInbox, MemoryInbox, NoInbox:
		return true
	default:
		return false
	}
}

// AnalyzerType selects the document analysis adapter
type AnalyzerType string

const (
	AnthropicAnalyzer AnalyzerType = "anthropic"
	MemoryAnalyzer    AnalyzerType = "memory"
	NoAnalyzer        AnalyzerType = "none"
)

// String implements fmt.Stringer
func (t AnalyzerType) String() string {
	return string(t)
}

// IsValid returns true if the analyzer type is valid
func (t AnalyzerType) IsValid() bool {
	switch t {
	case AnthropicAnalyzer, MemoryAnalyzer, NoAnalyzer:
		return true
	default:
		return false
	}
}
