// Package memory provides a canned Analyzer for development and tests,
// used when no Anthropic API key is configured.
package memory

import (
	"context"
	"sync"

	"cantiere/internal/core"
	"cantiere/internal/vision"
)

type Analyzer struct {
	mu         sync.Mutex
	extraction core.ReceiptExtraction
	err        error
	calls      int
}

var _ vision.Analyzer = (*Analyzer)(nil)

func New(extraction core.ReceiptExtraction) *Analyzer {
	return &Analyzer{extraction: extraction}
}

// Fail makes every following analysis return err instead of the canned
// extraction. Pass nil to clear.
func (a *Analyzer) Fail(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

func (a *Analyzer) AnalyzeReceipt(_ context.Context, image []byte, _ string) (core.ReceiptExtraction, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return core.ReceiptExtraction{}, a.err
	}
	if len(image) == 0 {
		return core.ReceiptExtraction{}, core.ErrEmptyFile
	}
	return a.extraction, nil
}

// Calls reports how many analyses were requested.
func (a *Analyzer) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}
