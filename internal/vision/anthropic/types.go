package anthropic

import "cantiere/internal/core"

// Messages API request and response shapes, narrowed to what receipt
// analysis needs.

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *blockSource `json:"source,omitempty"`
}

type blockSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type messageResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// extractionPayload is the JSON shape the model is instructed to reply
// with. Amounts arrive as decimal numbers and are converted to cents.
type extractionPayload struct {
	Vendor    string            `json:"vendor"`
	Date      string            `json:"date"`
	LineItems []lineItemPayload `json:"line_items"`
	Subtotal  float64           `json:"subtotal"`
	Tax       float64           `json:"tax"`
	Total     float64           `json:"total"`
}

type lineItemPayload struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Total       float64 `json:"total"`
}

func (p extractionPayload) toCore() core.ReceiptExtraction {
	out := core.ReceiptExtraction{
		Vendor:   p.Vendor,
		Date:     p.Date,
		Subtotal: core.Money{Cents: toCents(p.Subtotal)},
		Tax:      core.Money{Cents: toCents(p.Tax)},
		Total:    core.Money{Cents: toCents(p.Total)},
	}
	for _, li := range p.LineItems {
		out.LineItems = append(out.LineItems, core.ReceiptLineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			Unit:        li.Unit,
			Price:       core.Money{Cents: toCents(li.Price)},
			Total:       core.Money{Cents: toCents(li.Total)},
		})
	}
	return out
}

func toCents(amount float64) int64 {
	if amount < 0 {
		return -int64((-amount * 100.0) + 0.5)
	}
	return int64((amount * 100.0) + 0.5)
}
