package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SweepResult counts the documents moved by one sweep.
type SweepResult struct {
	QuotesExpired   int       `json:"quotes_expired"`
	InvoicesOverdue int       `json:"invoices_overdue"`
	SweptAt         time.Time `json:"swept_at"`
}

// ExpirySweeper applies the time-driven transitions: sent or approved quotes
// past valid_until become expired, sent invoices past due_date become overdue.
type ExpirySweeper struct {
	store Store
}

func NewExpirySweeper(store Store) *ExpirySweeper {
	return &ExpirySweeper{store: store}
}

// SweepExpired runs one pass at instant now. Documents deleted or moved by a
// concurrent writer between listing and update are skipped.
func (s *ExpirySweeper) SweepExpired(ctx context.Context, now time.Time) (SweepResult, error) {
	res := SweepResult{SweptAt: now}

	for _, status := range []QuoteStatus{QuoteSent, QuoteApproved} {
		quotes, err := s.store.ListQuotes(ctx, status)
		if err != nil {
			return res, fmt.Errorf("failed to list %s quotes: %w", status, err)
		}
		for _, q := range quotes {
			if !q.ValidUntil.Before(now) {
				continue
			}
			changed := false
			_, err := s.store.UpdateQuote(ctx, q.ID, func(cur *Quote) error {
				if !cur.ValidUntil.Before(now) || !QuoteLifecycle.Allowed(cur.Status, QuoteExpired) {
					return nil
				}
				var err error
				changed, err = cur.Transition(QuoteExpired, now)
				return err
			})
			if err != nil && !errors.Is(err, ErrNotFound) {
				return res, fmt.Errorf("failed to expire quote %s: %w", q.QuoteNumber, err)
			}
			if changed && err == nil {
				res.QuotesExpired++
			}
		}
	}

	invoices, err := s.store.ListInvoices(ctx, InvoiceSent)
	if err != nil {
		return res, fmt.Errorf("failed to list sent invoices: %w", err)
	}
	for _, inv := range invoices {
		if !inv.DueDate.Before(now) {
			continue
		}
		changed := false
		_, err := s.store.UpdateInvoice(ctx, inv.ID, func(cur *Invoice) error {
			if cur.Status != InvoiceSent || !cur.DueDate.Before(now) {
				return nil
			}
			var err error
			changed, err = cur.Transition(InvoiceOverdue, now)
			return err
		})
		if err != nil && !errors.Is(err, ErrNotFound) {
			return res, fmt.Errorf("failed to mark invoice %s overdue: %w", inv.InvoiceNumber, err)
		}
		if changed && err == nil {
			res.InvoicesOverdue++
		}
	}
	return res, nil
}
