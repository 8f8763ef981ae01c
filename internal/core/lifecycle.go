package core

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// QuoteStatus is the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteApproved QuoteStatus = "approved"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Lifecycle is the transition table for one document type.
type Lifecycle[S ~string] struct {
	document string
	statuses []S
	next     map[S][]S
}

// QuoteLifecycle:
//
//	draft → sent → approved | rejected | expired
//	approved → expired
var QuoteLifecycle = Lifecycle[QuoteStatus]{
	document: "quote",
	statuses: []QuoteStatus{QuoteDraft, QuoteSent, QuoteApproved, QuoteRejected, QuoteExpired},
	next: map[QuoteStatus][]QuoteStatus{
		QuoteDraft:    {QuoteSent},
		QuoteSent:     {QuoteApproved, QuoteRejected, QuoteExpired},
		QuoteApproved: {QuoteExpired},
	},
}

// OrderLifecycle:
//
//	pending → confirmed → shipped → delivered
//	pending | confirmed | shipped → cancelled
var OrderLifecycle = Lifecycle[OrderStatus]{
	document: "order",
	statuses: []OrderStatus{OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled},
	next: map[OrderStatus][]OrderStatus{
		OrderPending:   {OrderConfirmed, OrderCancelled},
		OrderConfirmed: {OrderShipped, OrderCancelled},
		OrderShipped:   {OrderDelivered, OrderCancelled},
	},
}

// InvoiceLifecycle:
//
//	draft → sent → paid | overdue
//	overdue → paid
//	draft | sent | overdue → cancelled
var InvoiceLifecycle = Lifecycle[InvoiceStatus]{
	document: "invoice",
	statuses: []InvoiceStatus{InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled},
	next: map[InvoiceStatus][]InvoiceStatus{
		InvoiceDraft:   {InvoiceSent, InvoiceCancelled},
		InvoiceSent:    {InvoicePaid, InvoiceOverdue, InvoiceCancelled},
		InvoiceOverdue: {InvoicePaid, InvoiceCancelled},
	},
}

// Statuses returns every status in lifecycle order.
func (l Lifecycle[S]) Statuses() []S {
	return slices.Clone(l.statuses)
}

// Valid reports whether s belongs to the lifecycle.
func (l Lifecycle[S]) Valid(s S) bool {
	return slices.Contains(l.statuses, s)
}

// Next returns the statuses reachable from s in one step.
func (l Lifecycle[S]) Next(s S) []S {
	return slices.Clone(l.next[s])
}

// Terminal reports whether no transition leaves s.
func (l Lifecycle[S]) Terminal(s S) bool {
	return len(l.next[s]) == 0
}

// Allowed reports whether from → to is an edge of the table.
func (l Lifecycle[S]) Allowed(from, to S) bool {
	return slices.Contains(l.next[from], to)
}

// Check returns ErrIllegalTransition when from → to is not an edge of the table.
func (l Lifecycle[S]) Check(from, to S) error {
	if !l.Valid(to) {
		return fmt.Errorf("%w: unknown %s status %q", ErrInvalidInput, l.document, to)
	}
	if !l.Allowed(from, to) {
		return fmt.Errorf("%w: %s cannot move from %s to %s", ErrIllegalTransition, l.document, from, to)
	}
	return nil
}

// Parse converts raw input such as " Approved " into a status of the lifecycle.
func (l Lifecycle[S]) Parse(raw string) (S, error) {
	s := S(strings.ToLower(strings.TrimSpace(raw)))
	if !l.Valid(s) {
		var zero S
		return zero, fmt.Errorf("%w: unknown %s status %q", ErrInvalidInput, l.document, raw)
	}
	return s, nil
}

// ── Document transitions ─────────────────────────────────────────────────────
//
// Re-applying the current status is a no-op and reports changed=false.

// Transition moves the quote to status to.
func (q *Quote) Transition(to QuoteStatus, at time.Time) (bool, error) {
	if q.Status == to {
		return false, nil
	}
	if err := QuoteLifecycle.Check(q.Status, to); err != nil {
		return false, fmt.Errorf("quote %s: %w", q.QuoteNumber, err)
	}
	q.Status = to
	q.UpdatedAt = at
	return true, nil
}

// Transition moves the order to status to.
func (o *Order) Transition(to OrderStatus, at time.Time) (bool, error) {
	if o.Status == to {
		return false, nil
	}
	if err := OrderLifecycle.Check(o.Status, to); err != nil {
		return false, fmt.Errorf("order %s: %w", o.OrderNumber, err)
	}
	o.Status = to
	o.UpdatedAt = at
	return true, nil
}

// Transition moves the invoice to status to. Entering paid stamps PaidAt with at.
func (inv *Invoice) Transition(to InvoiceStatus, at time.Time) (bool, error) {
	if inv.Status == to {
		return false, nil
	}
	if err := InvoiceLifecycle.Check(inv.Status, to); err != nil {
		return false, fmt.Errorf("invoice %s: %w", inv.InvoiceNumber, err)
	}
	inv.Status = to
	if to == InvoicePaid {
		paid := at
		inv.PaidAt = &paid
	} else {
		inv.PaidAt = nil
	}
	return true, nil
}
