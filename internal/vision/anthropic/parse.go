package anthropic

import (
	"encoding/json"
	"fmt"
	"strings"

	"cantiere/internal/core"
)

// parseExtraction decodes the model's reply into a ReceiptExtraction.
// The prompt asks for bare JSON but replies sometimes arrive wrapped in
// a markdown code fence, so fences are stripped first.
func parseExtraction(text string) (core.ReceiptExtraction, error) {
	cleaned := stripFences(text)

	var payload extractionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return core.ReceiptExtraction{}, fmt.Errorf("anthropic: parsing extraction: %w", err)
	}
	return payload.toCore(), nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
