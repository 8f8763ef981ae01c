package app

import (
	"context"
	"fmt"

	"quote-to-cash/internal/core"
	"quote-to-cash/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var seedCustomers = []core.CustomerInput{
	{Name: "Sarah Johnson", Email: "sarah.johnson@techcorp.com", Phone: "+1 (555) 123-4567", Company: "TechCorp Solutions", Address: "123 Business Ave, New York, NY 10001"},
	{Name: "Michael Chen", Email: "michael.chen@innovate.io", Phone: "+1 (555) 987-6543", Company: "Innovate Industries", Address: "456 Innovation Dr, San Francisco, CA 94105"},
	{Name: "Emily Rodriguez", Email: "emily.rodriguez@globaltech.com", Phone: "+1 (555) 456-7890", Company: "GlobalTech Enterprises", Address: "789 Enterprise Blvd, Austin, TX 73301"},
	{Name: "David Kim", Email: "david.kim@startupx.com", Phone: "+1 (555) 321-9876", Company: "StartupX Inc", Address: "321 Startup Lane, Seattle, WA 98101"},
	{Name: "Lisa Thompson", Email: "lisa.thompson@megacorp.com", Phone: "+1 (555) 654-3210", Company: "MegaCorp International", Address: "654 Corporate Plaza, Chicago, IL 60601"},
}

var seedProducts = []core.ProductInput{
	{Name: "Enterprise Software License", Description: "Annual license for enterprise software suite with full support", Price: decimal.NewFromInt(5000), Category: "Software", SKU: "ESL-001"},
	{Name: "Professional Consulting", Description: "Expert consulting services per hour for system implementation", Price: decimal.NewFromInt(200), Category: "Services", SKU: "PC-002"},
	{Name: "Cloud Storage Package", Description: "Premium cloud storage with 1TB capacity and backup", Price: decimal.NewFromInt(100), Category: "Cloud Services", SKU: "CSP-003"},
	{Name: "Security Audit", Description: "Comprehensive security assessment and vulnerability testing", Price: decimal.NewFromInt(3000), Category: "Security", SKU: "SA-004"},
	{Name: "Training Workshop", Description: "Full-day training workshop for up to 20 participants", Price: decimal.NewFromInt(1500), Category: "Training", SKU: "TW-005"},
	{Name: "Premium Support Package", Description: "24/7 premium support with dedicated account manager", Price: decimal.NewFromInt(2000), Category: "Support", SKU: "PSP-006"},
	{Name: "Custom Integration", Description: "Custom API integration and development services", Price: decimal.NewFromInt(4000), Category: "Services", SKU: "CI-007"},
	{Name: "Hardware Setup", Description: "Complete hardware setup and configuration service", Price: decimal.NewFromInt(800), Category: "Hardware", SKU: "HS-008"},
}

type seedLine struct {
	sku string
	qty int
}

// seedQuote drives a quote through path after creating it.
type seedQuote struct {
	customer  int
	validDays int
	lines     []seedLine
	path      []core.QuoteStatus
}

var seedQuotes = []seedQuote{
	{customer: 0, validDays: 30, lines: []seedLine{{"ESL-001", 2}}, path: []core.QuoteStatus{core.QuoteSent, core.QuoteApproved}},
	{customer: 1, validDays: 45, lines: []seedLine{{"PC-002", 40}}, path: []core.QuoteStatus{core.QuoteSent}},
	{customer: 2, validDays: 20, lines: []seedLine{{"SA-004", 1}, {"TW-005", 2}, {"CSP-003", 5}}, path: []core.QuoteStatus{core.QuoteSent, core.QuoteApproved}},
	{customer: 3, validDays: 60, lines: []seedLine{{"SA-004", 1}}},
	{customer: 4, validDays: -5, lines: []seedLine{{"ESL-001", 1}, {"CI-007", 1}, {"PSP-006", 1}, {"HS-008", 1}}, path: []core.QuoteStatus{core.QuoteSent, core.QuoteRejected}},
}

// Seed loads five customers, the eight-product catalog, five quotes across the
// pipeline, two orders and two invoices (one paid, one sent). It refuses to
// run against a store that already holds customers.
func (s *appService) Seed(ctx context.Context) (*SeedResult, error) {
	existing, err := s.catalog.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: store already holds %d customers, refusing to seed", core.ErrInvalidInput, len(existing))
	}

	// The demo chain is built under the default policy whatever the configuration says.
	orders := core.NewOrderService(s.store, core.DefaultCreationPolicy(), s.clock)
	invoices := core.NewInvoiceService(s.store, core.Settings{
		TaxRate:       s.settings.TaxRate,
		QuoteValidity: s.settings.QuoteValidity,
		InvoiceDueIn:  s.settings.InvoiceDueIn,
		Policy:        core.DefaultCreationPolicy(),
	}, s.clock)

	var res SeedResult
	customerIDs := make([]string, 0, len(seedCustomers))
	for _, in := range seedCustomers {
		c, err := s.catalog.CreateCustomer(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("seed customer %s: %w", in.Email, err)
		}
		customerIDs = append(customerIDs, c.ID)
		res.Customers++
	}

	productIDs := make(map[string]string, len(seedProducts))
	for _, in := range seedProducts {
		p, err := s.catalog.CreateProduct(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("seed product %s: %w", in.SKU, err)
		}
		productIDs[p.SKU] = p.ID
		res.Products++
	}

	now := s.clock.Now()
	var approved []*core.Quote
	for i, sq := range seedQuotes {
		validUntil := now.AddDate(0, 0, sq.validDays)
		in := core.QuoteInput{CustomerID: customerIDs[sq.customer], ValidUntil: &validUntil}
		for _, l := range sq.lines {
			in.Lines = append(in.Lines, core.LineInput{ProductID: productIDs[l.sku], Quantity: l.qty})
		}
		q, err := s.quotes.CreateQuote(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("seed quote %d: %w", i+1, err)
		}
		for _, to := range sq.path {
			moved, err := s.quotes.TransitionQuote(ctx, q.ID, to)
			if err != nil {
				return nil, fmt.Errorf("seed quote %s: %w", q.QuoteNumber, err)
			}
			q = moved
		}
		if q.Status == core.QuoteApproved {
			approved = append(approved, q)
		}
		res.Quotes++
	}

	// First approved quote: confirmed order, invoice paid.
	o1, err := orders.CreateOrderFromQuote(ctx, approved[0].ID, core.OrderConfirmed)
	if err != nil {
		return nil, fmt.Errorf("seed order: %w", err)
	}
	due1 := now.AddDate(0, 0, 30)
	inv1, err := invoices.CreateInvoiceFromOrder(ctx, o1.ID, &due1, "")
	if err != nil {
		return nil, fmt.Errorf("seed invoice: %w", err)
	}
	for _, to := range []core.InvoiceStatus{core.InvoiceSent, core.InvoicePaid} {
		if _, err := invoices.TransitionInvoice(ctx, inv1.ID, to); err != nil {
			return nil, fmt.Errorf("seed invoice %s: %w", inv1.InvoiceNumber, err)
		}
	}

	// Second approved quote: invoiced while confirmed, then shipped.
	o2, err := orders.CreateOrderFromQuote(ctx, approved[1].ID, core.OrderConfirmed)
	if err != nil {
		return nil, fmt.Errorf("seed order: %w", err)
	}
	due2 := now.AddDate(0, 0, 15)
	inv2, err := invoices.CreateInvoiceFromOrder(ctx, o2.ID, &due2, "")
	if err != nil {
		return nil, fmt.Errorf("seed invoice: %w", err)
	}
	if _, err := invoices.TransitionInvoice(ctx, inv2.ID, core.InvoiceSent); err != nil {
		return nil, fmt.Errorf("seed invoice %s: %w", inv2.InvoiceNumber, err)
	}
	if _, err := orders.TransitionOrder(ctx, o2.ID, core.OrderShipped); err != nil {
		return nil, fmt.Errorf("seed order %s: %w", o2.OrderNumber, err)
	}
	res.Orders, res.Invoices = 2, 2

	logger.FromCtx(ctx).Info("demo data seeded",
		zap.Int("customers", res.Customers),
		zap.Int("products", res.Products),
		zap.Int("quotes", res.Quotes),
		zap.Int("orders", res.Orders),
		zap.Int("invoices", res.Invoices))
	return &res, nil
}
