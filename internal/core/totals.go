package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied to quote subtotals unless configured otherwise.
var DefaultTaxRate = decimal.RequireFromString("0.10")

// Totals holds the document-level amounts derived from priced line items.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeTotals sums already-priced items and applies taxRate to the subtotal.
// An empty item list yields zero totals.
func ComputeTotals(items []LineItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
	}
	tax := subtotal.Mul(taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// ValidateTaxRate rejects rates outside [0, 1].
func ValidateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: tax rate must be between 0 and 1, got %s", ErrInvalidInput, rate)
	}
	return nil
}

// applyTotals writes the totals of q.Items onto q.
func (q *Quote) applyTotals(taxRate decimal.Decimal) {
	t := ComputeTotals(q.Items, taxRate)
	q.Subtotal = t.Subtotal
	q.Tax = t.Tax
	q.Total = t.Total
}
