package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QuoteInput is the editable content of a quote.
// A nil ValidUntil defaults to now plus the configured validity on create
// and leaves the current date untouched on update.
type QuoteInput struct {
	CustomerID string      `json:"customer_id"`
	Lines      []LineInput `json:"lines"`
	ValidUntil *time.Time  `json:"valid_until"`
}

// Preview is the priced result of ad-hoc lines, nothing persisted.
type Preview struct {
	Items []LineItem `json:"items"`
	Totals
}

// QuoteService manages quotes from draft to approval or expiry.
type QuoteService interface {
	CreateQuote(ctx context.Context, in QuoteInput) (*Quote, error)
	// UpdateQuote replaces customer, lines and validity and recomputes totals.
	// The status is kept and orders already created from the quote are unaffected.
	UpdateQuote(ctx context.Context, id string, in QuoteInput) (*Quote, error)
	TransitionQuote(ctx context.Context, id string, to QuoteStatus) (*Quote, error)
	GetQuote(ctx context.Context, id string) (*Quote, error)
	ListQuotes(ctx context.Context, status QuoteStatus) ([]Quote, error)
	DeleteQuote(ctx context.Context, id string) error
	PreviewTotals(ctx context.Context, lines []LineInput) (*Preview, error)
}

type quoteService struct {
	store    Store
	settings Settings
	clock    Clock
}

func NewQuoteService(store Store, settings Settings, clock Clock) QuoteService {
	return &quoteService{store: store, settings: settings, clock: clock}
}

// resolveLines prices each input line against the catalog.
// With requireProduct unset, a line without a product id is priced from its own unit price.
func (s *quoteService) resolveLines(ctx context.Context, lines []LineInput, requireProduct bool) ([]LineItem, error) {
	items := make([]LineItem, 0, len(lines))
	for i, in := range lines {
		item := LineItem{
			ID:        uuid.NewString(),
			ProductID: strings.TrimSpace(in.ProductID),
			Quantity:  in.Quantity,
			Discount:  in.Discount,
		}

		switch {
		case item.ProductID != "":
			p, err := s.store.GetProduct(ctx, item.ProductID)
			if err != nil {
				return nil, fmt.Errorf("line %d: product %s: %w", i+1, item.ProductID, err)
			}
			item.Product = p.Snapshot()
			item.UnitPrice = p.Price
		case requireProduct:
			return nil, fmt.Errorf("%w: line %d has no product", ErrInvalidInput, i+1)
		case !in.UnitPrice.Valid:
			return nil, fmt.Errorf("%w: line %d needs a product or a unit price", ErrInvalidInput, i+1)
		}

		if in.UnitPrice.Valid {
			item.UnitPrice = in.UnitPrice.Decimal
		}
		if err := item.Price(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *quoteService) CreateQuote(ctx context.Context, in QuoteInput) (*Quote, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: a quote needs at least one line", ErrInvalidInput)
	}
	customer, err := s.store.GetCustomer(ctx, strings.TrimSpace(in.CustomerID))
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", in.CustomerID, err)
	}
	items, err := s.resolveLines(ctx, in.Lines, true)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	validUntil := now.Add(s.settings.QuoteValidity)
	if in.ValidUntil != nil {
		validUntil = *in.ValidUntil
	}

	number, err := nextNumber(ctx, s.store, KindQuote, now.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate quote number: %w", err)
	}

	q := &Quote{
		ID:          uuid.NewString(),
		QuoteNumber: number,
		CustomerID:  customer.ID,
		Customer:    customer.Snapshot(),
		Items:       items,
		Status:      QuoteDraft,
		ValidUntil:  validUntil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	q.applyTotals(s.settings.TaxRate)

	if err := s.store.CreateQuote(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}
	return q, nil
}

func (s *quoteService) UpdateQuote(ctx context.Context, id string, in QuoteInput) (*Quote, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: a quote needs at least one line", ErrInvalidInput)
	}
	items, err := s.resolveLines(ctx, in.Lines, true)
	if err != nil {
		return nil, err
	}

	var snapshot *CustomerSnapshot
	if id := strings.TrimSpace(in.CustomerID); id != "" {
		customer, err := s.store.GetCustomer(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("customer %s: %w", id, err)
		}
		snap := customer.Snapshot()
		snapshot = &snap
	}

	now := s.clock.Now()
	return s.store.UpdateQuote(ctx, id, func(q *Quote) error {
		if snapshot != nil && snapshot.ID != q.CustomerID {
			q.CustomerID = snapshot.ID
			q.Customer = *snapshot
		}
		q.Items = items
		if in.ValidUntil != nil {
			q.ValidUntil = *in.ValidUntil
		}
		q.applyTotals(s.settings.TaxRate)
		q.UpdatedAt = now
		return nil
	})
}

func (s *quoteService) TransitionQuote(ctx context.Context, id string, to QuoteStatus) (*Quote, error) {
	if !QuoteLifecycle.Valid(to) {
		return nil, fmt.Errorf("%w: unknown quote status %q", ErrInvalidInput, to)
	}
	now := s.clock.Now()
	return s.store.UpdateQuote(ctx, id, func(q *Quote) error {
		_, err := q.Transition(to, now)
		return err
	})
}

func (s *quoteService) GetQuote(ctx context.Context, id string) (*Quote, error) {
	return s.store.GetQuote(ctx, id)
}

func (s *quoteService) ListQuotes(ctx context.Context, status QuoteStatus) ([]Quote, error) {
	if status != "" && !QuoteLifecycle.Valid(status) {
		return nil, fmt.Errorf("%w: unknown quote status %q", ErrInvalidInput, status)
	}
	return s.store.ListQuotes(ctx, status)
}

func (s *quoteService) DeleteQuote(ctx context.Context, id string) error {
	return s.store.DeleteQuote(ctx, id)
}

func (s *quoteService) PreviewTotals(ctx context.Context, lines []LineInput) (*Preview, error) {
	items, err := s.resolveLines(ctx, lines, false)
	if err != nil {
		return nil, err
	}
	return &Preview{Items: items, Totals: ComputeTotals(items, s.settings.TaxRate)}, nil
}
