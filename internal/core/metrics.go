package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Period is a calendar month in a specific location.
type Period struct {
	Year     int
	Month    time.Month
	Location *time.Location
}

// PeriodOf returns the calendar month containing t, in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month(), Location: t.Location()}
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return local.Year() == p.Year && local.Month() == p.Month
}

// Shift returns the period n months later (earlier when n is negative).
func (p Period) Shift(n int) Period {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc).AddDate(0, n, 0)
	return Period{Year: first.Year(), Month: first.Month(), Location: loc}
}

// String renders the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// PipelineStage aggregates quotes sharing one status.
type PipelineStage struct {
	Status QuoteStatus     `json:"status"`
	Count  int             `json:"count"`
	Value  decimal.Decimal `json:"value"`
}

// DashboardMetrics is the read-side projection shown on the dashboard.
type DashboardMetrics struct {
	Period           string          `json:"period"`
	TotalQuotes      int             `json:"total_quotes"`
	TotalOrders      int             `json:"total_orders"`
	TotalInvoices    int             `json:"total_invoices"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	PendingPayments  decimal.Decimal `json:"pending_payments"`
	QuotesThisMonth  int             `json:"quotes_this_month"`
	OrdersThisMonth  int             `json:"orders_this_month"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	ConversionRate   decimal.Decimal `json:"conversion_rate"`
	Pipeline         []PipelineStage `json:"pipeline"`
	PipelineValue    decimal.Decimal `json:"pipeline_value"`
}

// ComputeMetrics derives dashboard figures for the calendar month of ref.
// Inputs are read only.
func ComputeMetrics(quotes []Quote, orders []Order, invoices []Invoice, ref time.Time) DashboardMetrics {
	period := PeriodOf(ref)
	m := DashboardMetrics{
		Period:           period.String(),
		TotalQuotes:      len(quotes),
		TotalOrders:      len(orders),
		TotalInvoices:    len(invoices),
		TotalRevenue:     decimal.Zero,
		PendingPayments:  decimal.Zero,
		RevenueThisMonth: decimal.Zero,
		ConversionRate:   decimal.Zero,
	}

	for _, q := range quotes {
		if period.Contains(q.CreatedAt) {
			m.QuotesThisMonth++
		}
	}
	for _, o := range orders {
		if period.Contains(o.CreatedAt) {
			m.OrdersThisMonth++
		}
	}
	for _, inv := range invoices {
		switch inv.Status {
		case InvoicePaid:
			m.TotalRevenue = m.TotalRevenue.Add(inv.Total)
			if period.Contains(inv.revenueDate()) {
				m.RevenueThisMonth = m.RevenueThisMonth.Add(inv.Total)
			}
		case InvoiceSent, InvoiceOverdue:
			m.PendingPayments = m.PendingPayments.Add(inv.Total)
		}
	}

	if len(quotes) > 0 {
		m.ConversionRate = decimal.NewFromInt(int64(len(orders))).
			Div(decimal.NewFromInt(int64(len(quotes)))).
			Mul(hundred).
			Round(2)
	}

	m.Pipeline = Pipeline(quotes)
	m.PipelineValue = decimal.Zero
	for _, stage := range m.Pipeline {
		m.PipelineValue = m.PipelineValue.Add(stage.Value)
	}
	return m
}

// Pipeline counts and sums quotes per status, one stage per status in lifecycle order.
func Pipeline(quotes []Quote) []PipelineStage {
	statuses := QuoteLifecycle.Statuses()
	stages := make([]PipelineStage, len(statuses))
	index := make(map[QuoteStatus]int, len(statuses))
	for i, s := range statuses {
		stages[i] = PipelineStage{Status: s, Value: decimal.Zero}
		index[s] = i
	}
	for _, q := range quotes {
		i, ok := index[q.Status]
		if !ok {
			continue
		}
		stages[i].Count++
		stages[i].Value = stages[i].Value.Add(q.Total)
	}
	return stages
}

// revenueDate is the instant a paid invoice counts as revenue.
func (inv *Invoice) revenueDate() time.Time {
	if inv.PaidAt != nil {
		return *inv.PaidAt
	}
	return inv.CreatedAt
}

// ── Sales chart ──────────────────────────────────────────────────────────────

// MonthlySales is one bar of the sales chart.
type MonthlySales struct {
	Period  string          `json:"period"`
	Revenue decimal.Decimal `json:"revenue"`
	Quotes  int             `json:"quotes"`
	Orders  int             `json:"orders"`
}

// SalesByMonth returns months consecutive periods ending with ref's month, oldest first.
func SalesByMonth(quotes []Quote, orders []Order, invoices []Invoice, ref time.Time, months int) []MonthlySales {
	if months <= 0 {
		return []MonthlySales{}
	}
	last := PeriodOf(ref)
	periods := make([]Period, months)
	out := make([]MonthlySales, months)
	for i := range months {
		periods[i] = last.Shift(i - months + 1)
		out[i] = MonthlySales{Period: periods[i].String(), Revenue: decimal.Zero}
	}

	find := func(t time.Time) int {
		for i, p := range periods {
			if p.Contains(t) {
				return i
			}
		}
		return -1
	}

	for _, q := range quotes {
		if i := find(q.CreatedAt); i >= 0 {
			out[i].Quotes++
		}
	}
	for _, o := range orders {
		if i := find(o.CreatedAt); i >= 0 {
			out[i].Orders++
		}
	}
	for _, inv := range invoices {
		if inv.Status != InvoicePaid {
			continue
		}
		if i := find(inv.revenueDate()); i >= 0 {
			out[i].Revenue = out[i].Revenue.Add(inv.Total)
		}
	}
	return out
}

// ── Recent activity ──────────────────────────────────────────────────────────

// Activity is one entry of the dashboard's recent activity feed.
type Activity struct {
	Kind       DocumentKind    `json:"kind"`
	Event      string          `json:"event"`
	DocumentID string          `json:"document_id"`
	Number     string          `json:"number"`
	Customer   string          `json:"customer"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	At         time.Time       `json:"at"`
}

// RecentActivity lists the newest document events, at most limit of them.
// A non-positive limit returns every event.
func RecentActivity(quotes []Quote, orders []Order, invoices []Invoice, limit int) []Activity {
	events := make([]Activity, 0, len(quotes)+len(orders)+2*len(invoices))
	for _, q := range quotes {
		events = append(events, Activity{
			Kind: KindQuote, Event: "created", DocumentID: q.ID, Number: q.QuoteNumber,
			Customer: q.Customer.Company, Amount: q.Total, Status: string(q.Status), At: q.CreatedAt,
		})
	}
	for _, o := range orders {
		events = append(events, Activity{
			Kind: KindOrder, Event: "created", DocumentID: o.ID, Number: o.OrderNumber,
			Customer: o.Customer.Company, Amount: o.Total, Status: string(o.Status), At: o.CreatedAt,
		})
	}
	for _, inv := range invoices {
		events = append(events, Activity{
			Kind: KindInvoice, Event: "created", DocumentID: inv.ID, Number: inv.InvoiceNumber,
			Customer: inv.Customer.Company, Amount: inv.Total, Status: string(inv.Status), At: inv.CreatedAt,
		})
		if inv.Status == InvoicePaid && inv.PaidAt != nil {
			events = append(events, Activity{
				Kind: KindInvoice, Event: "paid", DocumentID: inv.ID, Number: inv.InvoiceNumber,
				Customer: inv.Customer.Company, Amount: inv.Total, Status: string(inv.Status), At: *inv.PaidAt,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].At.Equal(events[j].At) {
			return events[i].At.After(events[j].At)
		}
		return CompareDocumentNumbers(events[i].Number, events[j].Number) > 0
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events
}
