package app

import "quote-to-cash/internal/core"

// QuoteRequest is the input for creating or updating a quote.
// ValidUntil is RFC 3339 or YYYY-MM-DD; empty keeps the default (create)
// or the current date (update).
type QuoteRequest struct {
	CustomerID string           `json:"customer_id"`
	Lines      []core.LineInput `json:"lines"`
	ValidUntil string           `json:"valid_until"`
}

// CreateOrderRequest is the input for converting a quote into an order.
type CreateOrderRequest struct {
	QuoteRef string `json:"quote_id"`
	Status   string `json:"status"` // empty means pending
}

// CreateInvoiceRequest is the input for billing an order.
type CreateInvoiceRequest struct {
	OrderRef string `json:"order_id"`
	DueDate  string `json:"due_date"` // empty means now plus the configured payment terms
	Status   string `json:"status"`   // empty means draft
}
