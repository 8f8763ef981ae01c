package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InvoiceService bills orders and tracks payment.
type InvoiceService interface {
	// CreateInvoiceFromOrder copies the order's customer, items and total into a
	// new invoice. A nil dueDate defaults to now plus the configured payment term.
	// An empty initial status means draft; any other must be reachable from draft.
	CreateInvoiceFromOrder(ctx context.Context, orderID string, dueDate *time.Time, initial InvoiceStatus) (*Invoice, error)
	TransitionInvoice(ctx context.Context, id string, to InvoiceStatus) (*Invoice, error)
	UpdateInvoiceDueDate(ctx context.Context, id string, dueDate time.Time) (*Invoice, error)
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, status InvoiceStatus) ([]Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
}

type invoiceService struct {
	store    Store
	settings Settings
	clock    Clock
}

func NewInvoiceService(store Store, settings Settings, clock Clock) InvoiceService {
	return &invoiceService{store: store, settings: settings, clock: clock}
}

func (s *invoiceService) CreateInvoiceFromOrder(ctx context.Context, orderID string, dueDate *time.Time, initial InvoiceStatus) (*Invoice, error) {
	status := InvoiceDraft
	if initial != "" && initial != InvoiceDraft {
		if err := InvoiceLifecycle.Check(InvoiceDraft, initial); err != nil {
			return nil, fmt.Errorf("initial invoice status: %w", err)
		}
		status = initial
	}

	var inv *Invoice
	_, err := s.store.UpdateOrder(ctx, orderID, func(o *Order) error {
		if err := s.settings.Policy.CheckInvoiceSource(o); err != nil {
			return err
		}

		now := s.clock.Now()
		due := now.Add(s.settings.InvoiceDueIn)
		if dueDate != nil {
			if dueDate.IsZero() {
				return fmt.Errorf("%w: due date is required", ErrInvalidInput)
			}
			due = *dueDate
		}

		number, err := nextNumber(ctx, s.store, KindInvoice, now.Year())
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}

		created := &Invoice{
			ID:            uuid.NewString(),
			InvoiceNumber: number,
			OrderID:       o.ID,
			CustomerID:    o.CustomerID,
			Customer:      o.Customer,
			Items:         CloneItems(o.Items),
			Total:         o.Total,
			Status:        status,
			DueDate:       due,
			CreatedAt:     now,
		}
		if err := s.store.CreateInvoice(ctx, created); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		inv = created
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderID, err)
		}
		return nil, err
	}
	return inv, nil
}

func (s *invoiceService) TransitionInvoice(ctx context.Context, id string, to InvoiceStatus) (*Invoice, error) {
	if !InvoiceLifecycle.Valid(to) {
		return nil, fmt.Errorf("%w: unknown invoice status %q", ErrInvalidInput, to)
	}
	now := s.clock.Now()
	return s.store.UpdateInvoice(ctx, id, func(inv *Invoice) error {
		_, err := inv.Transition(to, now)
		return err
	})
}

func (s *invoiceService) UpdateInvoiceDueDate(ctx context.Context, id string, dueDate time.Time) (*Invoice, error) {
	if dueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", ErrInvalidInput)
	}
	return s.store.UpdateInvoice(ctx, id, func(inv *Invoice) error {
		if InvoiceLifecycle.Terminal(inv.Status) {
			return fmt.Errorf("%w: invoice %s is %s", ErrIllegalTransition, inv.InvoiceNumber, inv.Status)
		}
		inv.DueDate = dueDate
		return nil
	})
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

func (s *invoiceService) ListInvoices(ctx context.Context, status InvoiceStatus) ([]Invoice, error) {
	if status != "" && !InvoiceLifecycle.Valid(status) {
		return nil, fmt.Errorf("%w: unknown invoice status %q", ErrInvalidInput, status)
	}
	return s.store.ListInvoices(ctx, status)
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	return s.store.DeleteInvoice(ctx, id)
}
