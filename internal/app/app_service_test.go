package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quote-to-cash/internal/app"
	"quote-to-cash/internal/core"
	"quote-to-cash/internal/logger"
	"quote-to-cash/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeDrafter struct {
	draft *core.DraftRequest
	err   error
	calls int
}

func (f *fakeDrafter) DraftQuote(_ context.Context, _ string, _ []core.Customer, _ []core.Product) (*core.DraftRequest, error) {
	f.calls++
	return f.draft, f.err
}

var seededAt = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newSeeded(t *testing.T, drafter *fakeDrafter) (app.ApplicationService, *core.FixedClock) {
	t.Helper()
	clock := core.NewFixedClock(seededAt)
	var svc app.ApplicationService
	if drafter != nil {
		svc = app.NewAppService(memory.New(), core.DefaultSettings(), clock, drafter)
	} else {
		svc = app.NewAppService(memory.New(), core.DefaultSettings(), clock, nil)
	}
	_, err := svc.Seed(context.Background())
	require.NoError(t, err)
	return svc, clock
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeeded(t, nil)

	quotes, err := svc.ListQuotes(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 5, quotes.Count)

	q1, err := svc.GetQuote(ctx, "Q-2024-001")
	require.NoError(t, err)
	assert.Equal(t, core.QuoteApproved, q1.Quote.Status)
	assert.True(t, q1.Quote.Total.Equal(decimal.NewFromInt(11000)), "total %s", q1.Quote.Total)

	q3, err := svc.GetQuote(ctx, "q-2024-003")
	require.NoError(t, err)
	assert.True(t, q3.Quote.Subtotal.Equal(decimal.NewFromInt(6500)))

	dash, err := svc.GetDashboard(ctx)
	require.NoError(t, err)
	m := dash.Metrics
	assert.Equal(t, 5, m.TotalQuotes)
	assert.Equal(t, 2, m.TotalOrders)
	assert.Equal(t, 2, m.TotalInvoices)
	assert.True(t, m.TotalRevenue.Equal(decimal.NewFromInt(11000)), "revenue %s", m.TotalRevenue)
	assert.True(t, m.PendingPayments.Equal(decimal.NewFromInt(7150)), "pending %s", m.PendingPayments)
	assert.True(t, m.ConversionRate.Equal(decimal.NewFromInt(40)), "conversion %s", m.ConversionRate)

	o2, err := svc.GetOrder(ctx, "ORD-2024-002")
	require.NoError(t, err)
	assert.Equal(t, core.OrderShipped, o2.Order.Status)

	_, err = svc.Seed(ctx)
	assert.ErrorIs(t, err, core.ErrInvalidInput, "seeding twice is refused")
}

func TestQuoteToCashByNumber(t *testing.T) {
	ctx := context.Background()
	svc, clock := newSeeded(t, nil)

	res, err := svc.TransitionQuote(ctx, "Q-2024-002", " Approved ")
	require.NoError(t, err)
	assert.Equal(t, core.QuoteApproved, res.Quote.Status)
	assert.True(t, res.CanCreateOrder)
	assert.ElementsMatch(t, []core.QuoteStatus{core.QuoteExpired}, res.NextStatuses)

	order, err := svc.CreateOrder(ctx, app.CreateOrderRequest{QuoteRef: "Q-2024-002"})
	require.NoError(t, err)
	assert.Equal(t, "ORD-2024-003", order.Order.OrderNumber)
	assert.Equal(t, core.OrderPending, order.Order.Status)
	assert.False(t, order.CanInvoice)

	_, err = svc.CreateInvoice(ctx, app.CreateInvoiceRequest{OrderRef: order.Order.OrderNumber})
	assert.ErrorIs(t, err, core.ErrIllegalSourceStatus)

	_, err = svc.TransitionOrder(ctx, order.Order.ID, "confirmed")
	require.NoError(t, err)

	inv, err := svc.CreateInvoice(ctx, app.CreateInvoiceRequest{OrderRef: order.Order.OrderNumber, DueDate: "2024-04-30"})
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-003", inv.Invoice.InvoiceNumber)
	assert.Equal(t, time.Date(2024, 4, 30, 23, 59, 59, 0, time.UTC), inv.Invoice.DueDate)

	_, err = svc.TransitionInvoice(ctx, inv.Invoice.InvoiceNumber, "paid")
	assert.ErrorIs(t, err, core.ErrIllegalTransition, "draft invoices cannot be paid")

	_, err = svc.TransitionInvoice(ctx, inv.Invoice.InvoiceNumber, "sent")
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	paid, err := svc.TransitionInvoice(ctx, inv.Invoice.InvoiceNumber, "paid")
	require.NoError(t, err)
	require.NotNil(t, paid.Invoice.PaidAt)
	assert.True(t, paid.Invoice.PaidAt.Equal(clock.Now()))
	assert.Empty(t, paid.NextStatuses)

	_, err = svc.UpdateInvoiceDueDate(ctx, inv.Invoice.InvoiceNumber, "2024-05-31")
	assert.ErrorIs(t, err, core.ErrIllegalTransition, "paid invoices keep their due date")
}

func TestRefsAndStatusParsing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeeded(t, nil)

	_, err := svc.GetQuote(ctx, "Q-2099-999")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.GetOrder(ctx, "  ")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.ListQuotes(ctx, "archived")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.TransitionOrder(ctx, "ORD-2024-001", "teleported")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.CreateOrder(ctx, app.CreateOrderRequest{QuoteRef: "Q-2024-004"})
	assert.ErrorIs(t, err, core.ErrIllegalSourceStatus, "draft quotes cannot become orders")

	_, err = svc.CreateInvoice(ctx, app.CreateInvoiceRequest{OrderRef: "ORD-2024-001", DueDate: "next week"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	sent, err := svc.ListQuotes(ctx, "SENT")
	require.NoError(t, err)
	assert.Equal(t, 1, sent.Count)
}

func TestUpdateQuoteKeepsOrders(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSeeded(t, nil)

	before, err := svc.GetOrder(ctx, "ORD-2024-001")
	require.NoError(t, err)

	products, err := svc.ListProducts(ctx, "Support")
	require.NoError(t, err)
	require.Equal(t, 1, products.Count)

	q, err := svc.UpdateQuote(ctx, "Q-2024-001", app.QuoteRequest{
		Lines: []core.LineInput{{ProductID: products.Products[0].ID, Quantity: 3, Discount: decimal.NewFromInt(50)}},
	})
	require.NoError(t, err)
	assert.Equal(t, core.QuoteApproved, q.Quote.Status, "editing keeps the status")
	assert.True(t, q.Quote.Total.Equal(decimal.NewFromInt(3300)), "total %s", q.Quote.Total)

	after, err := svc.GetOrder(ctx, "ORD-2024-001")
	require.NoError(t, err)
	assert.True(t, before.Order.Total.Equal(after.Order.Total))
	assert.Equal(t, before.Order.Items, after.Order.Items)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	svc, clock := newSeeded(t, nil)

	res, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.QuotesExpired)
	assert.Zero(t, res.InvoicesOverdue)

	clock.Advance(50 * 24 * time.Hour)
	res, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	// Q-2024-001 and Q-2024-003 are approved, Q-2024-002 is sent; all past valid_until.
	assert.Equal(t, 3, res.QuotesExpired)
	assert.Equal(t, 1, res.InvoicesOverdue)

	overdue, err := svc.ListInvoices(ctx, "overdue")
	require.NoError(t, err)
	require.Equal(t, 1, overdue.Count)
	assert.Equal(t, "INV-2024-002", overdue.Invoices[0].InvoiceNumber)
}

func TestDraftQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("unavailable without a drafter", func(t *testing.T) {
		svc, _ := newSeeded(t, nil)
		_, err := svc.DraftQuote(ctx, "two licenses for Sarah")
		assert.ErrorIs(t, err, app.ErrAIUnavailable)
	})

	t.Run("resolved draft is priced but not stored", func(t *testing.T) {
		drafter := &fakeDrafter{draft: &core.DraftRequest{
			CustomerEmail: "sarah.johnson@techcorp.com",
			ValidityDays:  14,
			Lines:         []core.DraftLine{{SKU: "ESL-001", Quantity: 2, Discount: "10"}},
			Confidence:    0.9,
		}}
		svc, _ := newSeeded(t, drafter)

		res, err := svc.DraftQuote(ctx, "two licenses for Sarah at 10% off")
		require.NoError(t, err)
		assert.False(t, res.IsClarification)
		require.NotNil(t, res.Input)
		require.NotNil(t, res.Input.ValidUntil)
		assert.Equal(t, seededAt.AddDate(0, 0, 14), *res.Input.ValidUntil)
		require.NotNil(t, res.Preview)
		assert.True(t, res.Preview.Total.Equal(decimal.NewFromInt(9900)), "total %s", res.Preview.Total)

		quotes, err := svc.ListQuotes(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 5, quotes.Count)
	})

	t.Run("unknown SKU becomes a clarification", func(t *testing.T) {
		drafter := &fakeDrafter{draft: &core.DraftRequest{
			CustomerEmail: "sarah.johnson@techcorp.com",
			Lines:         []core.DraftLine{{SKU: "XX-999", Quantity: 1, Discount: "0"}},
		}}
		svc, _ := newSeeded(t, drafter)

		res, err := svc.DraftQuote(ctx, "one of the thing")
		require.NoError(t, err)
		assert.True(t, res.IsClarification)
		assert.Contains(t, res.ClarificationMessage, "XX-999")
		assert.Nil(t, res.Input)
	})

	t.Run("model clarification is passed through", func(t *testing.T) {
		drafter := &fakeDrafter{draft: &core.DraftRequest{Clarification: "Which customer is this for?"}}
		svc, _ := newSeeded(t, drafter)

		res, err := svc.DraftQuote(ctx, "a security audit")
		require.NoError(t, err)
		assert.True(t, res.IsClarification)
		assert.Equal(t, "Which customer is this for?", res.ClarificationMessage)
	})

	t.Run("drafter errors propagate", func(t *testing.T) {
		boom := errors.New("upstream timeout")
		svc, _ := newSeeded(t, &fakeDrafter{err: boom})
		_, err := svc.DraftQuote(ctx, "anything")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty text is rejected before calling the model", func(t *testing.T) {
		drafter := &fakeDrafter{}
		svc, _ := newSeeded(t, drafter)
		_, err := svc.DraftQuote(ctx, "   ")
		assert.ErrorIs(t, err, core.ErrInvalidInput)
		assert.Zero(t, drafter.calls)
	})
}

func TestTransitionsAreLogged(t *testing.T) {
	obsCore, logs := observer.New(zap.InfoLevel)
	logger.Set(zap.New(obsCore))
	t.Cleanup(func() { logger.Set(zap.NewNop()) })

	ctx := logger.WithRequestID(context.Background(), "req-42")
	svc, _ := newSeeded(t, nil)
	logs.TakeAll()

	_, err := svc.TransitionQuote(ctx, "Q-2024-004", "sent")
	require.NoError(t, err)

	entries := logs.FilterMessage("quote status changed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Q-2024-004", fields["quote_number"])
	assert.Equal(t, "draft", fields["from"])
	assert.Equal(t, "sent", fields["to"])
	assert.Equal(t, "req-42", fields["request_id"])
}
