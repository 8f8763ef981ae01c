package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quote-to-cash/internal/ai"
	"quote-to-cash/internal/core"
	"quote-to-cash/internal/logger"

	"go.uber.org/zap"
)

type appService struct {
	store    core.Store
	settings core.Settings
	clock    core.Clock

	catalog   core.CatalogService
	quotes    core.QuoteService
	orders    core.OrderService
	invoices  core.InvoiceService
	reporting core.ReportingService
	sweeper   *core.ExpirySweeper
	drafter   ai.Drafter
}

// NewAppService constructs an appService that satisfies ApplicationService.
// drafter may be nil, in which case DraftQuote returns ErrAIUnavailable.
func NewAppService(store core.Store, settings core.Settings, clock core.Clock, drafter ai.Drafter) ApplicationService {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &appService{
		store:     store,
		settings:  settings,
		clock:     clock,
		catalog:   core.NewCatalogService(store, clock),
		quotes:    core.NewQuoteService(store, settings, clock),
		orders:    core.NewOrderService(store, settings.Policy, clock),
		invoices:  core.NewInvoiceService(store, settings, clock),
		reporting: core.NewReportingService(store),
		sweeper:   core.NewExpirySweeper(store),
		drafter:   drafter,
	}
}

// ── Customers ────────────────────────────────────────────────────────────────

func (s *appService) ListCustomers(ctx context.Context) (*CustomerListResult, error) {
	customers, err := s.catalog.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers, Count: len(customers)}, nil
}

func (s *appService) GetCustomer(ctx context.Context, id string) (*CustomerResult, error) {
	c, err := s.catalog.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) CreateCustomer(ctx context.Context, req core.CustomerInput) (*CustomerResult, error) {
	c, err := s.catalog.CreateCustomer(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("customer created", zap.String("customer_id", c.ID), zap.String("company", c.Company))
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) UpdateCustomer(ctx context.Context, id string, req core.CustomerInput) (*CustomerResult, error) {
	c, err := s.catalog.UpdateCustomer(ctx, id, req)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: c}, nil
}

func (s *appService) DeleteCustomer(ctx context.Context, id string) error {
	return s.catalog.DeleteCustomer(ctx, id)
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context, category string) (*ProductListResult, error) {
	products, err := s.catalog.ListProducts(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products, Count: len(products), Categories: core.ProductCategories}, nil
}

func (s *appService) GetProduct(ctx context.Context, id string) (*ProductResult, error) {
	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) CreateProduct(ctx context.Context, req core.ProductInput) (*ProductResult, error) {
	p, err := s.catalog.CreateProduct(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("product created", zap.String("product_id", p.ID), zap.String("sku", p.SKU))
	return &ProductResult{Product: p}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, id string, req core.ProductInput) (*ProductResult, error) {
	p, err := s.catalog.UpdateProduct(ctx, id, req)
	if err != nil {
		return nil, err
	}
	return &ProductResult{Product: p}, nil
}

func (s *appService) DeleteProduct(ctx context.Context, id string) error {
	return s.catalog.DeleteProduct(ctx, id)
}

// ── Quotes ───────────────────────────────────────────────────────────────────

func (s *appService) quoteResult(q *core.Quote) *QuoteResult {
	return &QuoteResult{
		Quote:          q,
		NextStatuses:   core.QuoteLifecycle.Next(q.Status),
		CanCreateOrder: s.settings.Policy.AllowsOrderFrom(q.Status),
	}
}

func (s *appService) ListQuotes(ctx context.Context, status string) (*QuoteListResult, error) {
	var st core.QuoteStatus
	if strings.TrimSpace(status) != "" {
		var err error
		if st, err = core.QuoteLifecycle.Parse(status); err != nil {
			return nil, err
		}
	}
	quotes, err := s.quotes.ListQuotes(ctx, st)
	if err != nil {
		return nil, err
	}
	return &QuoteListResult{Quotes: quotes, Count: len(quotes)}, nil
}

func (s *appService) GetQuote(ctx context.Context, ref string) (*QuoteResult, error) {
	q, err := s.resolveQuote(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.quoteResult(q), nil
}

func (s *appService) quoteInput(req QuoteRequest) (core.QuoteInput, error) {
	in := core.QuoteInput{CustomerID: req.CustomerID, Lines: req.Lines}
	validUntil, err := parseDate(req.ValidUntil, s.clock.Now().Location())
	if err != nil {
		return in, fmt.Errorf("valid_until: %w", err)
	}
	in.ValidUntil = validUntil
	return in, nil
}

func (s *appService) CreateQuote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	in, err := s.quoteInput(req)
	if err != nil {
		return nil, err
	}
	q, err := s.quotes.CreateQuote(ctx, in)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("quote created",
		zap.String("quote_number", q.QuoteNumber),
		zap.String("customer", q.Customer.Company),
		zap.String("total", q.Total.StringFixed(2)))
	return s.quoteResult(q), nil
}

func (s *appService) UpdateQuote(ctx context.Context, ref string, req QuoteRequest) (*QuoteResult, error) {
	cur, err := s.resolveQuote(ctx, ref)
	if err != nil {
		return nil, err
	}
	in, err := s.quoteInput(req)
	if err != nil {
		return nil, err
	}
	q, err := s.quotes.UpdateQuote(ctx, cur.ID, in)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("quote updated",
		zap.String("quote_number", q.QuoteNumber),
		zap.String("total", q.Total.StringFixed(2)))
	return s.quoteResult(q), nil
}

func (s *appService) TransitionQuote(ctx context.Context, ref, status string) (*QuoteResult, error) {
	to, err := core.QuoteLifecycle.Parse(status)
	if err != nil {
		return nil, err
	}
	cur, err := s.resolveQuote(ctx, ref)
	if err != nil {
		return nil, err
	}
	q, err := s.quotes.TransitionQuote(ctx, cur.ID, to)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("quote status changed",
		zap.String("quote_number", q.QuoteNumber),
		zap.String("from", string(cur.Status)),
		zap.String("to", string(q.Status)))
	return s.quoteResult(q), nil
}

func (s *appService) DeleteQuote(ctx context.Context, ref string) error {
	q, err := s.resolveQuote(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.quotes.DeleteQuote(ctx, q.ID); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("quote deleted", zap.String("quote_number", q.QuoteNumber))
	return nil
}

func (s *appService) PreviewQuote(ctx context.Context, lines []core.LineInput) (*core.Preview, error) {
	return s.quotes.PreviewTotals(ctx, lines)
}

func (s *appService) DraftQuote(ctx context.Context, text string) (*DraftResult, error) {
	if s.drafter == nil {
		return nil, ErrAIUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: describe the quote to draft", core.ErrInvalidInput)
	}

	customers, err := s.catalog.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}

	draft, err := s.drafter.DraftQuote(ctx, text, customers, products)
	if err != nil {
		return nil, err
	}
	if draft.NeedsClarification() {
		return &DraftResult{Draft: draft, ClarificationMessage: draft.Clarification, IsClarification: true}, nil
	}

	in, err := draft.Resolve(customers, products)
	if errors.Is(err, core.ErrNotFound) {
		return &DraftResult{Draft: draft, ClarificationMessage: err.Error(), IsClarification: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if draft.ValidityDays > 0 {
		validUntil := s.clock.Now().AddDate(0, 0, draft.ValidityDays)
		in.ValidUntil = &validUntil
	}

	preview, err := s.quotes.PreviewTotals(ctx, in.Lines)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("quote drafted",
		zap.String("customer_email", draft.CustomerEmail),
		zap.Int("lines", len(in.Lines)),
		zap.Float64("confidence", draft.Confidence))
	return &DraftResult{Draft: draft, Input: &in, Preview: preview}, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) orderResult(o *core.Order) *OrderResult {
	return &OrderResult{
		Order:        o,
		NextStatuses: core.OrderLifecycle.Next(o.Status),
		CanInvoice:   s.settings.Policy.AllowsInvoiceFrom(o.Status),
	}
}

func (s *appService) ListOrders(ctx context.Context, status string) (*OrderListResult, error) {
	var st core.OrderStatus
	if strings.TrimSpace(status) != "" {
		var err error
		if st, err = core.OrderLifecycle.Parse(status); err != nil {
			return nil, err
		}
	}
	orders, err := s.orders.ListOrders(ctx, st)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders, Count: len(orders)}, nil
}

func (s *appService) GetOrder(ctx context.Context, ref string) (*OrderResult, error) {
	o, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.orderResult(o), nil
}

func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	var initial core.OrderStatus
	if strings.TrimSpace(req.Status) != "" {
		var err error
		if initial, err = core.OrderLifecycle.Parse(req.Status); err != nil {
			return nil, err
		}
	}
	q, err := s.resolveQuote(ctx, req.QuoteRef)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.CreateOrderFromQuote(ctx, q.ID, initial)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("order created",
		zap.String("order_number", o.OrderNumber),
		zap.String("quote_number", q.QuoteNumber),
		zap.String("status", string(o.Status)),
		zap.String("total", o.Total.StringFixed(2)))
	return s.orderResult(o), nil
}

func (s *appService) TransitionOrder(ctx context.Context, ref, status string) (*OrderResult, error) {
	to, err := core.OrderLifecycle.Parse(status)
	if err != nil {
		return nil, err
	}
	cur, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.TransitionOrder(ctx, cur.ID, to)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("order status changed",
		zap.String("order_number", o.OrderNumber),
		zap.String("from", string(cur.Status)),
		zap.String("to", string(o.Status)))
	return s.orderResult(o), nil
}

func (s *appService) DeleteOrder(ctx context.Context, ref string) error {
	o, err := s.resolveOrder(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.orders.DeleteOrder(ctx, o.ID); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("order deleted", zap.String("order_number", o.OrderNumber))
	return nil
}

// ── Invoices ─────────────────────────────────────────────────────────────────

func invoiceResult(inv *core.Invoice) *InvoiceResult {
	return &InvoiceResult{Invoice: inv, NextStatuses: core.InvoiceLifecycle.Next(inv.Status)}
}

func (s *appService) ListInvoices(ctx context.Context, status string) (*InvoiceListResult, error) {
	var st core.InvoiceStatus
	if strings.TrimSpace(status) != "" {
		var err error
		if st, err = core.InvoiceLifecycle.Parse(status); err != nil {
			return nil, err
		}
	}
	invoices, err := s.invoices.ListInvoices(ctx, st)
	if err != nil {
		return nil, err
	}
	return &InvoiceListResult{Invoices: invoices, Count: len(invoices)}, nil
}

func (s *appService) GetInvoice(ctx context.Context, ref string) (*InvoiceResult, error) {
	inv, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return nil, err
	}
	return invoiceResult(inv), nil
}

func (s *appService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error) {
	var initial core.InvoiceStatus
	if strings.TrimSpace(req.Status) != "" {
		var err error
		if initial, err = core.InvoiceLifecycle.Parse(req.Status); err != nil {
			return nil, err
		}
	}
	dueDate, err := parseDate(req.DueDate, s.clock.Now().Location())
	if err != nil {
		return nil, fmt.Errorf("due_date: %w", err)
	}
	o, err := s.resolveOrder(ctx, req.OrderRef)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.CreateInvoiceFromOrder(ctx, o.ID, dueDate, initial)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("invoice created",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("order_number", o.OrderNumber),
		zap.String("status", string(inv.Status)),
		zap.Time("due_date", inv.DueDate),
		zap.String("total", inv.Total.StringFixed(2)))
	return invoiceResult(inv), nil
}

func (s *appService) TransitionInvoice(ctx context.Context, ref, status string) (*InvoiceResult, error) {
	to, err := core.InvoiceLifecycle.Parse(status)
	if err != nil {
		return nil, err
	}
	cur, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.TransitionInvoice(ctx, cur.ID, to)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("invoice status changed",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("from", string(cur.Status)),
		zap.String("to", string(inv.Status)))
	return invoiceResult(inv), nil
}

func (s *appService) UpdateInvoiceDueDate(ctx context.Context, ref, dueDate string) (*InvoiceResult, error) {
	due, err := parseDate(dueDate, s.clock.Now().Location())
	if err != nil {
		return nil, fmt.Errorf("due_date: %w", err)
	}
	if due == nil {
		return nil, fmt.Errorf("%w: due_date is required", core.ErrInvalidInput)
	}
	cur, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.UpdateInvoiceDueDate(ctx, cur.ID, *due)
	if err != nil {
		return nil, err
	}
	logger.FromCtx(ctx).Info("invoice due date changed",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Time("due_date", inv.DueDate))
	return invoiceResult(inv), nil
}

func (s *appService) DeleteInvoice(ctx context.Context, ref string) error {
	inv, err := s.resolveInvoice(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.invoices.DeleteInvoice(ctx, inv.ID); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("invoice deleted", zap.String("invoice_number", inv.InvoiceNumber))
	return nil
}

// ── Dashboard ────────────────────────────────────────────────────────────────

func (s *appService) GetDashboard(ctx context.Context) (*DashboardResult, error) {
	m, err := s.reporting.Dashboard(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return &DashboardResult{Metrics: m}, nil
}

func (s *appService) GetSalesChart(ctx context.Context, months int) (*SalesChartResult, error) {
	sales, err := s.reporting.SalesChart(ctx, s.clock.Now(), months)
	if err != nil {
		return nil, err
	}
	return &SalesChartResult{Months: sales}, nil
}

func (s *appService) GetRecentActivity(ctx context.Context, limit int) (*ActivityResult, error) {
	activity, err := s.reporting.RecentActivity(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &ActivityResult{Activity: activity}, nil
}

// ── Maintenance ──────────────────────────────────────────────────────────────

func (s *appService) SweepExpired(ctx context.Context) (*core.SweepResult, error) {
	res, err := s.sweeper.SweepExpired(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if res.QuotesExpired > 0 || res.InvoicesOverdue > 0 {
		logger.FromCtx(ctx).Info("expiry sweep",
			zap.Int("quotes_expired", res.QuotesExpired),
			zap.Int("invoices_overdue", res.InvoicesOverdue))
	}
	return &res, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// resolveRef fetches a document by id, falling back to a scan for its display number.
func resolveRef[T any](ctx context.Context, ref string,
	get func(context.Context, string) (*T, error),
	list func(context.Context) ([]T, error),
	number func(*T) string,
) (*T, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: a document id or number is required", core.ErrInvalidInput)
	}
	v, err := get(ctx, ref)
	if err == nil || !errors.Is(err, core.ErrNotFound) {
		return v, err
	}
	all, lerr := list(ctx)
	if lerr != nil {
		return nil, lerr
	}
	for i := range all {
		if strings.EqualFold(number(&all[i]), ref) {
			return &all[i], nil
		}
	}
	return nil, err
}

func (s *appService) resolveQuote(ctx context.Context, ref string) (*core.Quote, error) {
	return resolveRef(ctx, ref, s.quotes.GetQuote,
		func(ctx context.Context) ([]core.Quote, error) { return s.quotes.ListQuotes(ctx, "") },
		func(q *core.Quote) string { return q.QuoteNumber })
}

func (s *appService) resolveOrder(ctx context.Context, ref string) (*core.Order, error) {
	return resolveRef(ctx, ref, s.orders.GetOrder,
		func(ctx context.Context) ([]core.Order, error) { return s.orders.ListOrders(ctx, "") },
		func(o *core.Order) string { return o.OrderNumber })
}

func (s *appService) resolveInvoice(ctx context.Context, ref string) (*core.Invoice, error) {
	return resolveRef(ctx, ref, s.invoices.GetInvoice,
		func(ctx context.Context) ([]core.Invoice, error) { return s.invoices.ListInvoices(ctx, "") },
		func(inv *core.Invoice) string { return inv.InvoiceNumber })
}

// parseDate accepts RFC 3339 or YYYY-MM-DD. A bare date means the end of that
// day in loc. Empty input yields nil.
func parseDate(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a date (use YYYY-MM-DD or RFC 3339)", core.ErrInvalidInput, raw)
	}
	end := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, loc)
	return &end, nil
}
