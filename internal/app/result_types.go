package app

import "quote-to-cash/internal/core"

// CustomerResult is returned by customer operations.
type CustomerResult struct {
	Customer *core.Customer `json:"customer"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
	Count     int             `json:"count"`
}

// ProductResult is returned by product operations.
type ProductResult struct {
	Product *core.Product `json:"product"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products   []core.Product `json:"products"`
	Count      int            `json:"count"`
	Categories []string       `json:"categories"`
}

// QuoteResult is returned by quote operations.
type QuoteResult struct {
	Quote          *core.Quote        `json:"quote"`
	NextStatuses   []core.QuoteStatus `json:"next_statuses"`
	CanCreateOrder bool               `json:"can_create_order"`
}

// QuoteListResult is returned by ListQuotes.
type QuoteListResult struct {
	Quotes []core.Quote `json:"quotes"`
	Count  int          `json:"count"`
}

// OrderResult is returned by order operations.
type OrderResult struct {
	Order        *core.Order        `json:"order"`
	NextStatuses []core.OrderStatus `json:"next_statuses"`
	CanInvoice   bool               `json:"can_invoice"`
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order `json:"orders"`
	Count  int          `json:"count"`
}

// InvoiceResult is returned by invoice operations.
type InvoiceResult struct {
	Invoice      *core.Invoice        `json:"invoice"`
	NextStatuses []core.InvoiceStatus `json:"next_statuses"`
}

// InvoiceListResult is returned by ListInvoices.
type InvoiceListResult struct {
	Invoices []core.Invoice `json:"invoices"`
	Count    int            `json:"count"`
}

// DraftResult is returned by DraftQuote. When IsClarification is set, Input
// and Preview are nil and ClarificationMessage says what is missing.
type DraftResult struct {
	Draft                *core.DraftRequest `json:"draft"`
	Input                *core.QuoteInput   `json:"input,omitempty"`
	Preview              *core.Preview      `json:"preview,omitempty"`
	ClarificationMessage string             `json:"clarification_message,omitempty"`
	IsClarification      bool               `json:"is_clarification"`
}

// DashboardResult is returned by GetDashboard.
type DashboardResult struct {
	Metrics *core.DashboardMetrics `json:"metrics"`
}

// SalesChartResult is returned by GetSalesChart.
type SalesChartResult struct {
	Months []core.MonthlySales `json:"months"`
}

// ActivityResult is returned by GetRecentActivity.
type ActivityResult struct {
	Activity []core.Activity `json:"activity"`
}

// SeedResult counts the records created by Seed.
type SeedResult struct {
	Customers int `json:"customers"`
	Products  int `json:"products"`
	Quotes    int `json:"quotes"`
	Orders    int `json:"orders"`
	Invoices  int `json:"invoices"`
}
