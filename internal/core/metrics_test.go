package core_test

import (
	"testing"
	"time"

	"quote-to-cash/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func at(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 10, 0, 0, 0, time.UTC)
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := core.ComputeMetrics(nil, nil, nil, ref)

	assert.Equal(t, "2024-03", m.Period)
	assert.Zero(t, m.TotalQuotes)
	assert.Zero(t, m.TotalOrders)
	assert.True(t, m.TotalRevenue.IsZero())
	assert.True(t, m.PendingPayments.IsZero())
	assert.True(t, m.RevenueThisMonth.IsZero())
	assert.True(t, m.ConversionRate.IsZero())
	require.Len(t, m.Pipeline, 5)
	for _, stage := range m.Pipeline {
		assert.Zero(t, stage.Count)
		assert.True(t, stage.Value.IsZero())
	}
}

func TestComputeMetrics(t *testing.T) {
	paidMarch := at(3, 2)
	paidFeb := at(2, 20)

	quotes := []core.Quote{
		{Status: core.QuoteApproved, Total: d("9900"), CreatedAt: at(3, 1)},
		{Status: core.QuoteSent, Total: d("8800"), CreatedAt: at(3, 5)},
		{Status: core.QuoteApproved, Total: d("11000"), CreatedAt: at(2, 10)},
		{Status: core.QuoteDraft, Total: d("3300"), CreatedAt: at(1, 10)},
	}
	orders := []core.Order{
		{Status: core.OrderConfirmed, Total: d("9900"), CreatedAt: at(3, 2)},
		{Status: core.OrderDelivered, Total: d("11000"), CreatedAt: at(2, 11)},
		{Status: core.OrderPending, Total: d("1"), CreatedAt: at(2, 12)},
	}
	invoices := []core.Invoice{
		{Status: core.InvoicePaid, Total: d("9900"), PaidAt: &paidMarch, CreatedAt: at(2, 28)},
		{Status: core.InvoicePaid, Total: d("11000"), PaidAt: &paidFeb, CreatedAt: at(2, 15)},
		{Status: core.InvoiceSent, Total: d("500"), CreatedAt: at(3, 3)},
		{Status: core.InvoiceOverdue, Total: d("250"), CreatedAt: at(1, 3)},
		{Status: core.InvoiceDraft, Total: d("999"), CreatedAt: at(3, 4)},
	}

	m := core.ComputeMetrics(quotes, orders, invoices, ref)

	assert.Equal(t, 4, m.TotalQuotes)
	assert.Equal(t, 3, m.TotalOrders)
	assert.Equal(t, 2, m.QuotesThisMonth)
	assert.Equal(t, 1, m.OrdersThisMonth)
	assert.True(t, m.TotalRevenue.Equal(d("20900")), "total revenue %s", m.TotalRevenue)
	assert.True(t, m.RevenueThisMonth.Equal(d("9900")), "revenue by paid_at %s", m.RevenueThisMonth)
	assert.True(t, m.PendingPayments.Equal(d("750")))
	assert.True(t, m.ConversionRate.Equal(d("75")))

	require.Len(t, m.Pipeline, 5)
	assert.Equal(t, core.QuoteDraft, m.Pipeline[0].Status)
	assert.Equal(t, 1, m.Pipeline[0].Count)
	assert.Equal(t, core.QuoteApproved, m.Pipeline[2].Status)
	assert.Equal(t, 2, m.Pipeline[2].Count)
	assert.True(t, m.Pipeline[2].Value.Equal(d("20900")))
	assert.True(t, m.PipelineValue.Equal(d("33000")))
}

func TestComputeMetrics_ConversionRounded(t *testing.T) {
	quotes := make([]core.Quote, 3)
	orders := make([]core.Order, 1)

	m := core.ComputeMetrics(quotes, orders, nil, ref)

	assert.Equal(t, "33.33", m.ConversionRate.StringFixed(2))
}

func TestComputeMetrics_PeriodUsesReferenceLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2024-03-31T20:00Z is already April 1st in Tokyo.
	q := core.Quote{Status: core.QuoteDraft, CreatedAt: time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC)}

	inTokyo := core.ComputeMetrics([]core.Quote{q}, nil, nil, time.Date(2024, 4, 10, 0, 0, 0, 0, tokyo))
	inUTC := core.ComputeMetrics([]core.Quote{q}, nil, nil, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 1, inTokyo.QuotesThisMonth)
	assert.Equal(t, 0, inUTC.QuotesThisMonth)
}

func TestComputeMetrics_DoesNotMutate(t *testing.T) {
	quotes := []core.Quote{{Status: core.QuoteSent, Total: d("10"), CreatedAt: ref}}
	before := quotes[0]

	core.ComputeMetrics(quotes, nil, nil, ref)

	assert.Equal(t, before, quotes[0])
}

func TestSalesByMonth(t *testing.T) {
	paid := at(2, 20)
	quotes := []core.Quote{{CreatedAt: at(1, 5)}, {CreatedAt: at(3, 1)}, {CreatedAt: at(3, 2)}}
	orders := []core.Order{{CreatedAt: at(2, 1)}}
	invoices := []core.Invoice{
		{Status: core.InvoicePaid, Total: d("100"), PaidAt: &paid, CreatedAt: at(1, 30)},
		{Status: core.InvoiceSent, Total: d("999"), CreatedAt: at(3, 1)},
	}

	got := core.SalesByMonth(quotes, orders, invoices, ref, 3)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, []string{got[0].Period, got[1].Period, got[2].Period})
	assert.Equal(t, 1, got[0].Quotes)
	assert.Equal(t, 2, got[2].Quotes)
	assert.Equal(t, 1, got[1].Orders)
	assert.True(t, got[1].Revenue.Equal(d("100")))
	assert.True(t, got[2].Revenue.IsZero())
}

func TestSalesByMonth_CrossesYear(t *testing.T) {
	got := core.SalesByMonth(nil, nil, nil, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), 2)
	require.Len(t, got, 2)
	assert.Equal(t, "2023-12", got[0].Period)
	assert.Equal(t, "2024-01", got[1].Period)
}

func TestRecentActivity(t *testing.T) {
	paid := at(3, 10)
	quotes := []core.Quote{{ID: "q1", QuoteNumber: "Q-2024-001", CreatedAt: at(3, 1)}}
	orders := []core.Order{{ID: "o1", OrderNumber: "ORD-2024-001", CreatedAt: at(3, 2)}}
	invoices := []core.Invoice{{
		ID: "i1", InvoiceNumber: "INV-2024-001", Status: core.InvoicePaid, PaidAt: &paid, CreatedAt: at(3, 3),
	}}

	got := core.RecentActivity(quotes, orders, invoices, 3)

	require.Len(t, got, 3)
	assert.Equal(t, "paid", got[0].Event)
	assert.Equal(t, core.KindInvoice, got[0].Kind)
	assert.Equal(t, "created", got[1].Event)
	assert.Equal(t, core.KindInvoice, got[1].Kind)
	assert.Equal(t, core.KindOrder, got[2].Kind)

	all := core.RecentActivity(quotes, orders, invoices, 0)
	assert.Len(t, all, 4)
}

func TestRecentActivity_SameInstantOrdersBySequence(t *testing.T) {
	quotes := []core.Quote{
		{ID: "a", QuoteNumber: "Q-2024-999", CreatedAt: at(3, 1)},
		{ID: "b", QuoteNumber: "Q-2024-1000", CreatedAt: at(3, 1)},
	}

	got := core.RecentActivity(quotes, nil, nil, 0)

	require.Len(t, got, 2)
	assert.Equal(t, "Q-2024-1000", got[0].Number)
	assert.Equal(t, "Q-2024-999", got[1].Number)
}
