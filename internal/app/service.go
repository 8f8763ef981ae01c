package app

import (
	"context"
	"errors"

	"quote-to-cash/internal/core"
)

// ErrAIUnavailable is returned by DraftQuote when no drafting model is configured.
var ErrAIUnavailable = errors.New("AI drafting is not configured")

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Document refs accept either the internal id or the display number
// (Q-2024-001, ORD-2024-001, INV-2024-001). Status arguments are parsed
// case-insensitively; an empty status on a list means all statuses.
type ApplicationService interface {
	// ListCustomers returns every customer, newest first.
	ListCustomers(ctx context.Context) (*CustomerListResult, error)
	GetCustomer(ctx context.Context, id string) (*CustomerResult, error)
	CreateCustomer(ctx context.Context, req core.CustomerInput) (*CustomerResult, error)
	UpdateCustomer(ctx context.Context, id string, req core.CustomerInput) (*CustomerResult, error)
	DeleteCustomer(ctx context.Context, id string) error

	// ListProducts returns the catalog, optionally narrowed to one category.
	ListProducts(ctx context.Context, category string) (*ProductListResult, error)
	GetProduct(ctx context.Context, id string) (*ProductResult, error)
	CreateProduct(ctx context.Context, req core.ProductInput) (*ProductResult, error)
	UpdateProduct(ctx context.Context, id string, req core.ProductInput) (*ProductResult, error)
	DeleteProduct(ctx context.Context, id string) error

	ListQuotes(ctx context.Context, status string) (*QuoteListResult, error)
	GetQuote(ctx context.Context, ref string) (*QuoteResult, error)

	// CreateQuote creates a draft quote priced from the current catalog.
	CreateQuote(ctx context.Context, req QuoteRequest) (*QuoteResult, error)

	// UpdateQuote replaces the customer, lines and validity of a quote and reprices it.
	UpdateQuote(ctx context.Context, ref string, req QuoteRequest) (*QuoteResult, error)

	// TransitionQuote moves a quote along its lifecycle.
	TransitionQuote(ctx context.Context, ref, status string) (*QuoteResult, error)
	DeleteQuote(ctx context.Context, ref string) error

	// PreviewQuote prices lines without persisting anything.
	PreviewQuote(ctx context.Context, lines []core.LineInput) (*core.Preview, error)

	// DraftQuote sends a natural language request to the AI agent and returns
	// either a resolved, priced draft or a clarification request.
	// Nothing is stored; the caller confirms by calling CreateQuote.
	DraftQuote(ctx context.Context, text string) (*DraftResult, error)

	ListOrders(ctx context.Context, status string) (*OrderListResult, error)
	GetOrder(ctx context.Context, ref string) (*OrderResult, error)

	// CreateOrder converts a quote into an order, subject to the creation policy.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)
	TransitionOrder(ctx context.Context, ref, status string) (*OrderResult, error)
	DeleteOrder(ctx context.Context, ref string) error

	ListInvoices(ctx context.Context, status string) (*InvoiceListResult, error)
	GetInvoice(ctx context.Context, ref string) (*InvoiceResult, error)

	// CreateInvoice bills an order, subject to the creation policy.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error)

	// TransitionInvoice moves an invoice along its lifecycle. Paying stamps paid_at.
	TransitionInvoice(ctx context.Context, ref, status string) (*InvoiceResult, error)

	// UpdateInvoiceDueDate changes the due date of an open invoice.
	// dueDate is RFC 3339 or YYYY-MM-DD (end of that day).
	UpdateInvoiceDueDate(ctx context.Context, ref, dueDate string) (*InvoiceResult, error)
	DeleteInvoice(ctx context.Context, ref string) error

	// GetDashboard returns the headline metrics for the current month.
	GetDashboard(ctx context.Context) (*DashboardResult, error)

	// GetSalesChart returns per-month figures for the last months months.
	GetSalesChart(ctx context.Context, months int) (*SalesChartResult, error)

	// GetRecentActivity returns the newest document events.
	GetRecentActivity(ctx context.Context, limit int) (*ActivityResult, error)

	// SweepExpired applies time-driven transitions as of now.
	SweepExpired(ctx context.Context) (*core.SweepResult, error)

	// Seed loads the demo data set into an empty store.
	Seed(ctx context.Context) (*SeedResult, error)
}
