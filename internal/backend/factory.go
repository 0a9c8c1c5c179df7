package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cantiere/internal/core"
	"cantiere/internal/mail"
	"cantiere/internal/mail/gmail"
	mailmem "cantiere/internal/mail/memory"
	"cantiere/internal/vision"
	"cantiere/internal/vision/anthropic"
	visionmem "cantiere/internal/vision/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new adapter factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateAdapters implements Factory.CreateAdapters
func (f *DefaultFactory) CreateAdapters(ctx context.Context, config Config) (*Result, error) {
	inbox, err := f.createInbox(ctx, config)
	if err != nil {
		return nil, err
	}
	analyzer, err := f.createAnalyzer(config)
	if err != nil {
		return nil, err
	}
	return &Result{Inbox: inbox, Analyzer: analyzer}, nil
}

func (f *DefaultFactory) createInbox(ctx context.Context, config Config) (mail.Inbox, error) {
	switch config.Inbox {
	case GmailInbox:
		cli, err := gmail.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gmail client: %w", err)
		}
		f.logger.Info("Initialized Gmail inbox")
		return cli, nil

	case MemoryInbox:
		inbox := mailmem.New(config.InboxAddress)
		f.logger.Info("Initialized memory inbox")
		return inbox, nil

	case NoInbox:
		f.logger.Info("No inbox configured, inbox scans disabled")
		return nil, nil

	default:
		return nil, fmt.Errorf("invalid inbox type: %s", config.Inbox)
	}
}

func (f *DefaultFactory) createAnalyzer(config Config) (vision.Analyzer, error) {
	switch config.Analyzer {
	case AnthropicAnalyzer:
		cli := anthropic.NewClient(config.AnthropicAPIKey, config.AnthropicModel)
		if cli == nil {
			return nil, errors.New("failed to initialize Anthropic client: invalid API key")
		}
		f.logger.Info("Initialized Anthropic analyzer")
		return cli, nil

	case MemoryAnalyzer:
		f.logger.Info("Initialized memory analyzer")
		return visionmem.New(demoExtraction), nil

	case NoAnalyzer:
		f.logger.Info("No analyzer configured, receipts will stay pending")
		return nil, nil

	default:
		return nil, fmt.Errorf("invalid analyzer type: %s", config.Analyzer)
	}
}

// demoExtraction is what the memory analyzer returns for every document.
var demoExtraction = core.ReceiptExtraction{
	Vendor: "Demo Building Supply",
	Date:   "2025-01-15",
	LineItems: []core.ReceiptLineItem{
		{Description: "Lumber 2x4", Quantity: 24, Unit: "pc", Price: core.Money{Cents: 450}, Total: core.Money{Cents: 10800}},
	},
	Subtotal: core.Money{Cents: 10800},
	Tax:      core.Money{Cents: 2376},
	Total:    core.Money{Cents: 13176},
}
