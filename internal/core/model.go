package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a customer master record.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot captures the customer as it is embedded in a document.
func (c Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Company: c.Company,
		Address: c.Address,
	}
}

// CustomerSnapshot is the copy of a customer stored on quotes, orders and invoices.
// Later edits to the customer record do not reach existing documents.
type CustomerSnapshot struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
}

// Product is a sellable catalog entry.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	SKU         string          `json:"sku"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Snapshot captures the product as it is embedded in a line item.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		SKU:         p.SKU,
	}
}

// ProductSnapshot is the copy of a product stored on a line item.
type ProductSnapshot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	SKU         string          `json:"sku"`
}

// ProductCategories lists the catalog categories offered by the product form.
var ProductCategories = []string{
	"Software",
	"Services",
	"Cloud Services",
	"Security",
	"Hardware",
	"Training",
	"Support",
}

// LineItem is one priced line on a quote, order or invoice.
// Discount is a percentage in [0, 100]; Total is the extended amount after discount.
type LineItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Product   ProductSnapshot `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// LineInput is an unpriced line as submitted by a caller.
// A missing UnitPrice falls back to the product's catalog price.
type LineInput struct {
	ProductID string              `json:"product_id"`
	Quantity  int                 `json:"quantity"`
	UnitPrice decimal.NullDecimal `json:"unit_price"`
	Discount  decimal.Decimal     `json:"discount"`
}

// Quote is an offer to a customer. Subtotal, Tax and Total always reflect Items
// at the tax rate in force when the items were last written.
type Quote struct {
	ID          string           `json:"id"`
	QuoteNumber string           `json:"quote_number"`
	CustomerID  string           `json:"customer_id"`
	Customer    CustomerSnapshot `json:"customer"`
	Items       []LineItem       `json:"items"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	Tax         decimal.Decimal  `json:"tax"`
	Total       decimal.Decimal  `json:"total"`
	Status      QuoteStatus      `json:"status"`
	ValidUntil  time.Time        `json:"valid_until"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Order is created from a quote. Items and Total are frozen copies taken at creation.
//
//	pending → confirmed → shipped → delivered
//	pending | confirmed | shipped → cancelled
type Order struct {
	ID          string           `json:"id"`
	OrderNumber string           `json:"order_number"`
	QuoteID     string           `json:"quote_id"`
	CustomerID  string           `json:"customer_id"`
	Customer    CustomerSnapshot `json:"customer"`
	Items       []LineItem       `json:"items"`
	Total       decimal.Decimal  `json:"total"`
	Status      OrderStatus      `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Invoice bills an order. PaidAt is set exactly when Status is paid.
type Invoice struct {
	ID            string           `json:"id"`
	InvoiceNumber string           `json:"invoice_number"`
	OrderID       string           `json:"order_id"`
	CustomerID    string           `json:"customer_id"`
	Customer      CustomerSnapshot `json:"customer"`
	Items         []LineItem       `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	Status        InvoiceStatus    `json:"status"`
	DueDate       time.Time        `json:"due_date"`
	PaidAt        *time.Time       `json:"paid_at"`
	CreatedAt     time.Time        `json:"created_at"`
}

// CloneItems returns a deep copy of items. The result is never nil.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// Clone returns a deep copy of the quote.
func (q *Quote) Clone() *Quote {
	c := *q
	c.Items = CloneItems(q.Items)
	return &c
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = CloneItems(o.Items)
	return &c
}

// Clone returns a deep copy of the invoice.
func (inv *Invoice) Clone() *Invoice {
	c := *inv
	c.Items = CloneItems(inv.Items)
	if inv.PaidAt != nil {
		t := *inv.PaidAt
		c.PaidAt = &t
	}
	return &c
}
