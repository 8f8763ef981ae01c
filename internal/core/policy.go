package core

import (
	"fmt"
	"slices"
)

// CreationPolicy decides which source statuses allow the next document in the
// chain to be created: orders from quotes, invoices from orders.
type CreationPolicy struct {
	OrderFromQuote   []QuoteStatus
	InvoiceFromOrder []OrderStatus
}

// DefaultCreationPolicy allows orders from approved quotes and invoices from
// confirmed or delivered orders.
func DefaultCreationPolicy() CreationPolicy {
	return CreationPolicy{
		OrderFromQuote:   []QuoteStatus{QuoteApproved},
		InvoiceFromOrder: []OrderStatus{OrderConfirmed, OrderDelivered},
	}
}

// NewCreationPolicy parses raw status names for each gate. Empty lists are rejected.
func NewCreationPolicy(quoteStatuses, orderStatuses []string) (CreationPolicy, error) {
	var p CreationPolicy
	if len(quoteStatuses) == 0 || len(orderStatuses) == 0 {
		return p, fmt.Errorf("%w: creation policy needs at least one status per gate", ErrInvalidInput)
	}
	for _, raw := range quoteStatuses {
		s, err := QuoteLifecycle.Parse(raw)
		if err != nil {
			return p, fmt.Errorf("order source: %w", err)
		}
		p.OrderFromQuote = append(p.OrderFromQuote, s)
	}
	for _, raw := range orderStatuses {
		s, err := OrderLifecycle.Parse(raw)
		if err != nil {
			return p, fmt.Errorf("invoice source: %w", err)
		}
		p.InvoiceFromOrder = append(p.InvoiceFromOrder, s)
	}
	return p, nil
}

// AllowsOrderFrom reports whether a quote in status s may be turned into an order.
func (p CreationPolicy) AllowsOrderFrom(s QuoteStatus) bool {
	return slices.Contains(p.OrderFromQuote, s)
}

// AllowsInvoiceFrom reports whether an order in status s may be invoiced.
func (p CreationPolicy) AllowsInvoiceFrom(s OrderStatus) bool {
	return slices.Contains(p.InvoiceFromOrder, s)
}

// CheckOrderSource returns ErrIllegalSourceStatus unless q may be turned into an order.
func (p CreationPolicy) CheckOrderSource(q *Quote) error {
	if !p.AllowsOrderFrom(q.Status) {
		return fmt.Errorf("%w: quote %s is %s (order requires %v)", ErrIllegalSourceStatus, q.QuoteNumber, q.Status, p.OrderFromQuote)
	}
	return nil
}

// CheckInvoiceSource returns ErrIllegalSourceStatus unless o may be invoiced.
func (p CreationPolicy) CheckInvoiceSource(o *Order) error {
	if !p.AllowsInvoiceFrom(o.Status) {
		return fmt.Errorf("%w: order %s is %s (invoice requires %v)", ErrIllegalSourceStatus, o.OrderNumber, o.Status, p.InvoiceFromOrder)
	}
	return nil
}
