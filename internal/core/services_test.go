package core_test

import (
	"context"
	"testing"
	"time"

	"quote-to-cash/internal/core"
	"quote-to-cash/internal/store/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx      context.Context
	clock    *core.FixedClock
	store    *memory.Store
	catalog  core.CatalogService
	quotes   core.QuoteService
	orders   core.OrderService
	invoices core.InvoiceService
	sweeper  *core.ExpirySweeper
	reports  core.ReportingService

	customer *core.Customer
	license  *core.Product
	support  *core.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:   context.Background(),
		clock: core.NewFixedClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)),
		store: memory.New(),
	}
	settings := core.DefaultSettings()
	f.catalog = core.NewCatalogService(f.store, f.clock)
	f.quotes = core.NewQuoteService(f.store, settings, f.clock)
	f.orders = core.NewOrderService(f.store, settings.Policy, f.clock)
	f.invoices = core.NewInvoiceService(f.store, settings, f.clock)
	f.sweeper = core.NewExpirySweeper(f.store)
	f.reports = core.NewReportingService(f.store)

	var err error
	f.customer, err = f.catalog.CreateCustomer(f.ctx, core.CustomerInput{
		Name: "Sarah Johnson", Email: "sarah@techcorp.com", Company: "TechCorp Solutions",
	})
	require.NoError(t, err)
	f.license, err = f.catalog.CreateProduct(f.ctx, core.ProductInput{
		Name: "Enterprise Software License", Price: d("5000"), Category: "Software", SKU: "esl-001",
	})
	require.NoError(t, err)
	f.support, err = f.catalog.CreateProduct(f.ctx, core.ProductInput{
		Name: "Premium Support Package", Price: d("2000"), Category: "Support", SKU: "PSP-006",
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) approvedQuote(t *testing.T) *core.Quote {
	t.Helper()
	q, err := f.quotes.CreateQuote(f.ctx, core.QuoteInput{
		CustomerID: f.customer.ID,
		Lines:      []core.LineInput{{ProductID: f.license.ID, Quantity: 2, Discount: d("10")}},
	})
	require.NoError(t, err)
	_, err = f.quotes.TransitionQuote(f.ctx, q.ID, core.QuoteSent)
	require.NoError(t, err)
	q, err = f.quotes.TransitionQuote(f.ctx, q.ID, core.QuoteApproved)
	require.NoError(t, err)
	return q
}

func TestCatalogService_Validation(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "ESL-001", f.license.SKU, "SKU is normalized")

	_, err := f.catalog.CreateCustomer(f.ctx, core.CustomerInput{Name: " ", Email: "x@y.z"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.catalog.CreateCustomer(f.ctx, core.CustomerInput{Name: "X", Email: "not-an-email"})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.catalog.CreateProduct(f.ctx, core.ProductInput{Name: "P", Category: "Software", SKU: "P-1", Price: d("-1")})
	assert.ErrorIs(t, err, core.ErrInvalidPrice)

	_, err = f.catalog.CreateProduct(f.ctx, core.ProductInput{Name: "P", SKU: "P-1", Price: d("1")})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	software, err := f.catalog.ListProducts(f.ctx, "Software")
	require.NoError(t, err)
	require.Len(t, software, 1)
	assert.Equal(t, f.license.ID, software[0].ID)
}

func TestQuoteService_CreateQuote(t *testing.T) {
	f := newFixture(t)

	q, err := f.quotes.CreateQuote(f.ctx, core.QuoteInput{
		CustomerID: f.customer.ID,
		Lines: []core.LineInput{
			{ProductID: f.license.ID, Quantity: 2, Discount: d("10")},
			{ProductID: f.support.ID, Quantity: 1, UnitPrice: decimal.NewNullDecimal(d("1500"))},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Q-2024-001", q.QuoteNumber)
	assert.Equal(t, core.QuoteDraft, q.Status)
	assert.Equal(t, "TechCorp Solutions", q.Customer.Company)
	assert.Equal(t, f.clock.Now().Add(30*24*time.Hour), q.ValidUntil)
	require.Len(t, q.Items, 2)
	assert.Equal(t, "ESL-001", q.Items[0].Product.SKU)
	assert.True(t, q.Items[0].Total.Equal(d("9000")))
	assert.True(t, q.Items[1].UnitPrice.Equal(d("1500")), "explicit unit price overrides catalog price")
	assert.True(t, q.Subtotal.Equal(d("10500")))
	assert.True(t, q.Tax.Equal(d("1050")))
	assert.True(t, q.Total.Equal(d("11550")))

	second, err := f.quotes.CreateQuote(f.ctx, core.QuoteInput{
		CustomerID: f.customer.ID,
		Lines:      []core.LineInput{{ProductID: f.support.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Q-2024-002", second.QuoteNumber)
}

func TestQuoteService_CreateQuoteRejects(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   core.QuoteInput
		want error
	}{
		{"no lines", core.QuoteInput{CustomerID: f.customer.ID}, core.ErrInvalidInput},
		{"unknown customer", core.QuoteInput{CustomerID: "ghost", Lines: []core.LineInput{{ProductID: f.license.ID, Quantity: 1}}}, core.ErrNotFound},
		{"unknown product", core.QuoteInput{CustomerID: f.customer.ID, Lines: []core.LineInput{{ProductID: "ghost", Quantity: 1}}}, core.ErrNotFound},
		{"line without product", core.QuoteInput{CustomerID: f.customer.ID, Lines: []core.LineInput{{Quantity: 1, UnitPrice: decimal.NewNullDecimal(d("1"))}}}, core.ErrInvalidInput},
		{"zero quantity", core.QuoteInput{CustomerID: f.customer.ID, Lines: []core.LineInput{{ProductID: f.license.ID}}}, core.ErrInvalidQuantity},
		{"discount over 100", core.QuoteInput{CustomerID: f.customer.ID, Lines: []core.LineInput{{ProductID: f.license.ID, Quantity: 1, Discount: d("101")}}}, core.ErrInvalidDiscount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.quotes.CreateQuote(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	quotes, err := f.quotes.ListQuotes(f.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, quotes, "rejected input must not persist anything")
}

func TestQuoteService_SnapshotsAreFrozen(t *testing.T) {
	f := newFixture(t)
	q := f.approvedQuote(t)

	_, err := f.catalog.UpdateProduct(f.ctx, f.license.ID, core.ProductInput{
		Name: "Renamed", Price: d("1"), Category: "Software", SKU: "ESL-001",
	})
	require.NoError(t, err)
	_, err = f.catalog.UpdateCustomer(f.ctx, f.customer.ID, core.CustomerInput{
		Name: "Sarah J.", Email: "sarah@newco.com", Company: "NewCo",
	})
	require.NoError(t, err)

	got, err := f.quotes.GetQuote(f.ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Enterprise Software License", got.Items[0].Product.Name)
	assert.True(t, got.Items[0].UnitPrice.Equal(d("5000")))
	assert.Equal(t, "TechCorp Solutions", got.Customer.Company)
}

func TestQuoteService_TransitionGuards(t *testing.T) {
	f := newFixture(t)
	q, err := f.quotes.CreateQuote(f.ctx, core.QuoteInput{
		CustomerID: f.customer.ID,
		Lines:      []core.LineInput{{ProductID: f.license.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.quotes.TransitionQuote(f.ctx, q.ID, core.QuoteApproved)
	assert.ErrorIs(t, err, core.ErrIllegalTransition)

	got, err := f.quotes.GetQuote(f.ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, core.QuoteDraft, got.Status, "rejected transition must not change the stored status")

	_, err = f.quotes.TransitionQuote(f.ctx, q.ID, "won")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.quotes.TransitionQuote(f.ctx, "ghost", core.QuoteSent)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestQuoteService_UpdateQuoteLeavesOrdersAlone(t *testing.T) {
	f := newFixture(t)
	q := f.approvedQuote(t)

	o, err := f.orders.CreateOrderFromQuote(f.ctx, q.ID, "")
	require.NoError(t, err)

	updated, err := f.quotes.UpdateQuote(f.ctx, q.ID, core.QuoteInput{
		Lines: []core.LineInput{{ProductID: f.support.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, core.QuoteApproved, updated.Status)
	assert.True(t, updated.Total.Equal(d("6600")))

	got, err := f.orders.GetOrder(f.ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(d("9900")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, f.license.ID, got.Items[0].ProductID)
}

func TestQuoteService_PreviewTotals(t *testing.T) {
	f := newFixture(t)

	p, err := f.quotes.PreviewTotals(f.ctx, []core.LineInput{
		{ProductID: f.license.ID, Quantity: 2, Discount: d("10")},
		{Quantity: 4, UnitPrice: decimal.NewNullDecimal(d("25"))},
	})
	require.NoError(t, err)
	assert.True(t, p.Subtotal.Equal(d("9100")))
	assert.True(t, p.Total.Equal(d("10010")))

	quotes, err := f.quotes.ListQuotes(f.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestOrderService_CreateFromQuote(t *testing.T) {
	f := newFixture(t)
	q := f.approvedQuote(t)

	o, err := f.orders.CreateOrderFromQuote(f.ctx, q.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "ORD-2024-001", o.OrderNumber)
	assert.Equal(t, core.OrderPending, o.Status)
	assert.Equal(t, q.ID, o.QuoteID)
	assert.Equal(t, q.Customer, o.Customer)
	assert.Equal(t, q.Items, o.Items)
	assert.True(t, o.Total.Equal(q.Total))

	// Deep copy: mutating the returned order must not reach the quote.
	o.Items[0].Quantity = 99
	stored, err := f.quotes.GetQuote(f.ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Items[0].Quantity)
}

func TestOrderService_SourceStatusGate(t *testing.T) {
	f := newFixture(t)
	q, err := f.quotes.CreateQuote(f.ctx, core.QuoteInput{
		CustomerID: f.customer.ID,
		Lines:      []core.LineInput{{ProductID: f.license.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.orders.CreateOrderFromQuote(f.ctx, q.ID, "")
	assert.ErrorIs(t, err, core.ErrIllegalSourceStatus)

	orders, err := f.orders.ListOrders(f.ctx, "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_InitialStatus(t *testing.T) {
	f := newFixture(t)
	q := f.approvedQuote(t)

	o, err := f.orders.CreateOrderFromQuote(f.ctx, q.ID, core.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, core.OrderConfirmed, o.Status)

	_, err = f.orders.CreateOrderFromQuote(f.ctx, q.ID, core.OrderDelivered)
	assert.ErrorIs(t, err, core.ErrIllegalTransition)
}

// lockCheckStore runs a transition on the source document from another
// goroutine while the derived document is being written, and reports whether
// that transition got through before the write finished.
type lockCheckStore struct {
	*memory.Store
	t      *testing.T
	source func() error
}

func (s *lockCheckStore) raceSource() {
	done := make(chan error, 1)
	go func() { done <- s.source() }()
	select {
	case err := <-done:
		s.t.Errorf("source changed while a document was being created from it (err=%v)", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func (s *lockCheckStore) CreateOrder(ctx context.Context, o *core.Order) error {
	s.raceSource()
	return s.Store.CreateOrder(ctx, o)
}

func (s *lockCheckStore) CreateInvoice(ctx context.Context, inv *core.Invoice) error {
	s.raceSource()
	return s.Store.CreateInvoice(ctx, inv)
}

func TestOrderService_CreateHoldsQuoteLock(t *testing.T) {
	f := newFixture(t)
	q := f.approvedQuote(t)

	store := &lockCheckStore{Store: f.store, t: t}
	store.source = func() error {
		_, err := f.store.UpdateQuote(f.ctx, q.ID, func(q *core.Quote) error {
			_, err := q.Transition(core.QuoteExpired, f.clock.Now())
			return err
		})
		return err
	}
	orders := core.NewOrderService(store, core.DefaultCreationPolicy(), f.clock)

	o, err := orders.CreateOrderFromQuote(f.ctx, q.ID, "")
	require.NoError(t, err)
	assert.Equal(t, core.OrderPending, o.Status)

	// The expiry waits for the order and then applies.
	assert.Eventually(t, func() bool {
		stored, err := f.quotes.GetQuote(f.ctx, q.ID)
		return err == nil && stored.Status == core.QuoteExpired
	}, time.Second, 10*time.Millisecond)

	_, err = orders.CreateOrderFromQuote(f.ctx, q.ID, "")
	assert.ErrorIs(t, err, core.ErrIllegalSourceStatus)
}

func TestInvoiceService_CreateHoldsOrderLock(t *testing.T) {
	f := newFixture(t)
	q := f.approvedQuote(t)
	o, err := f.orders.CreateOrderFromQuote(f.ctx, q.ID, core.OrderConfirmed)
	require.NoError(t, err)

	store := &lockCheckStore{Store: f.store, t: t}
	store.source = func() error {
		_, err := f.store.UpdateOrder(f.ctx, o.ID, func(o *core.Order) error {
			_, err := o.Transition(core.OrderCancelled, f.clock.Now())
			return err
		})
		return err
	}
	invoices := core.NewInvoiceService(store, core.DefaultSettings(), f.clock)

	_, err = invoices.CreateInvoiceFromOrder(f.ctx, o.ID, nil, "")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		stored, err := f.orders.GetOrder(f.ctx, o.ID)
		return err == nil && stored.Status == core.OrderCancelled
	}, time.Second, 10*time.Millisecond)

	_, err = invoices.CreateInvoiceFromOrder(f.ctx, o.ID, nil, "")
	assert.ErrorIs(t, err, core.ErrIllegalSourceStatus)
}

func TestOrderService_MissingQuote(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.CreateOrderFromQuote(f.ctx, "missing", "")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInvoiceService_InitialStatus(t *testing.T) {
	f := newFixture(t)
	q := f.approvedQuote(t)
	o, err := f.orders.CreateOrderFromQuote(f.ctx, q.ID, core.OrderConfirmed)
	require.NoError(t, err)

	inv, err := f.invoices.CreateInvoiceFromOrder(f.ctx, o.ID, nil, core.InvoiceSent)
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceSent, inv.Status)
	assert.Nil(t, inv.PaidAt)

	_, err = f.invoices.CreateInvoiceFromOrder(f.ctx, o.ID, nil, core.InvoicePaid)
	assert.ErrorIs(t, err, core.ErrIllegalTransition, "paid is not reachable from draft")

	invoices, err := f.invoices.ListInvoices(f.ctx, "")
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestInvoiceService_FullCycle(t *testing.T) {
	f := newFixture(t)
	q := f.approvedQuote(t)
	o, err := f.orders.CreateOrderFromQuote(f.ctx, q.ID, "")
	require.NoError(t, err)

	_, err = f.invoices.CreateInvoiceFromOrder(f.ctx, o.ID, nil, "")
	assert.ErrorIs(t, err, core.ErrIllegalSourceStatus, "pending orders cannot be invoiced")

	_, err = f.orders.TransitionOrder(f.ctx, o.ID, core.OrderConfirmed)
	require.NoError(t, err)

	inv, err := f.invoices.CreateInvoiceFromOrder(f.ctx, o.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-001", inv.InvoiceNumber)
	assert.Equal(t, core.InvoiceDraft, inv.Status)
	assert.Equal(t, f.clock.Now().Add(30*24*time.Hour), inv.DueDate)
	assert.True(t, inv.Total.Equal(d("9900")))
	assert.Nil(t, inv.PaidAt)

	_, err = f.invoices.TransitionInvoice(f.ctx, inv.ID, core.InvoicePaid)
	assert.ErrorIs(t, err, core.ErrIllegalTransition, "draft cannot be paid directly")

	_, err = f.invoices.TransitionInvoice(f.ctx, inv.ID, core.InvoiceSent)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	paid, err := f.invoices.TransitionInvoice(f.ctx, inv.ID, core.InvoicePaid)
	require.NoError(t, err)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, f.clock.Now(), *paid.PaidAt)

	_, err = f.invoices.UpdateInvoiceDueDate(f.ctx, inv.ID, f.clock.Now())
	assert.ErrorIs(t, err, core.ErrIllegalTransition, "paid invoices are closed")

	m, err := f.reports.Dashboard(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.True(t, m.TotalRevenue.Equal(d("9900")))
	assert.True(t, m.RevenueThisMonth.Equal(d("9900")))
	assert.True(t, m.ConversionRate.Equal(d("100")))
}

func TestInvoiceService_DueDate(t *testing.T) {
	f := newFixture(t)
	q := f.approvedQuote(t)
	o, err := f.orders.CreateOrderFromQuote(f.ctx, q.ID, core.OrderConfirmed)
	require.NoError(t, err)

	due := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	inv, err := f.invoices.CreateInvoiceFromOrder(f.ctx, o.ID, &due, "")
	require.NoError(t, err)
	assert.Equal(t, due, inv.DueDate)

	later := due.AddDate(0, 0, 14)
	inv, err = f.invoices.UpdateInvoiceDueDate(f.ctx, inv.ID, later)
	require.NoError(t, err)
	assert.Equal(t, later, inv.DueDate)

	_, err = f.invoices.UpdateInvoiceDueDate(f.ctx, inv.ID, time.Time{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestExpirySweeper(t *testing.T) {
	f := newFixture(t)
	validUntil := f.clock.Now().Add(24 * time.Hour)

	newQuote := func(status core.QuoteStatus) *core.Quote {
		q, err := f.quotes.CreateQuote(f.ctx, core.QuoteInput{
			CustomerID: f.customer.ID,
			Lines:      []core.LineInput{{ProductID: f.license.ID, Quantity: 1}},
			ValidUntil: &validUntil,
		})
		require.NoError(t, err)
		path := map[core.QuoteStatus][]core.QuoteStatus{
			core.QuoteDraft:    nil,
			core.QuoteSent:     {core.QuoteSent},
			core.QuoteApproved: {core.QuoteSent, core.QuoteApproved},
			core.QuoteRejected: {core.QuoteSent, core.QuoteRejected},
		}[status]
		for _, to := range path {
			q, err = f.quotes.TransitionQuote(f.ctx, q.ID, to)
			require.NoError(t, err)
		}
		return q
	}

	draft := newQuote(core.QuoteDraft)
	sent := newQuote(core.QuoteSent)
	approved := newQuote(core.QuoteApproved)
	rejected := newQuote(core.QuoteRejected)

	o, err := f.orders.CreateOrderFromQuote(f.ctx, approved.ID, core.OrderConfirmed)
	require.NoError(t, err)
	due := f.clock.Now().Add(12 * time.Hour)
	inv, err := f.invoices.CreateInvoiceFromOrder(f.ctx, o.ID, &due, "")
	require.NoError(t, err)
	_, err = f.invoices.TransitionInvoice(f.ctx, inv.ID, core.InvoiceSent)
	require.NoError(t, err)

	res, err := f.sweeper.SweepExpired(f.ctx, f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, res.QuotesExpired)
	assert.Zero(t, res.InvoicesOverdue)

	res, err = f.sweeper.SweepExpired(f.ctx, f.clock.Now().Add(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, res.QuotesExpired)
	assert.Equal(t, 1, res.InvoicesOverdue)

	want := map[string]core.QuoteStatus{
		draft.ID:    core.QuoteDraft,
		sent.ID:     core.QuoteExpired,
		approved.ID: core.QuoteExpired,
		rejected.ID: core.QuoteRejected,
	}
	for id, status := range want {
		q, err := f.quotes.GetQuote(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, status, q.Status, q.QuoteNumber)
	}

	got, err := f.invoices.GetInvoice(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceOverdue, got.Status)

	res, err = f.sweeper.SweepExpired(f.ctx, f.clock.Now().Add(72*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, res.QuotesExpired, "second sweep is a no-op")
	assert.Zero(t, res.InvoicesOverdue)
}

func TestReportingService_SalesChartBounds(t *testing.T) {
	f := newFixture(t)

	_, err := f.reports.SalesChart(f.ctx, f.clock.Now(), 0)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	chart, err := f.reports.SalesChart(f.ctx, f.clock.Now(), 6)
	require.NoError(t, err)
	assert.Len(t, chart, 6)
	assert.Equal(t, "2024-03", chart[5].Period)
}
