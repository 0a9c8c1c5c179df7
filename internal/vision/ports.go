// Package vision defines the document analysis port used to turn receipt
// images into structured extractions.
package vision

import (
	"context"

	"cantiere/internal/core"
)

// Analyzer extracts vendor, totals and line items from a receipt image.
type Analyzer interface {
	AnalyzeReceipt(ctx context.Context, image []byte, mimeType string) (core.ReceiptExtraction, error)
}
