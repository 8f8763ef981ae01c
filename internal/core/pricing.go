package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PriceLine returns the extended amount for a line:
//
//	quantity × unitPrice × (1 − discountPercent/100)
//
// The result is exact; no rounding is applied.
func PriceLine(quantity int, unitPrice, discountPercent decimal.Decimal) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidQuantity, quantity)
	}
	if unitPrice.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: unit price must not be negative, got %s", ErrInvalidPrice, unitPrice)
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return decimal.Zero, fmt.Errorf("%w: discount must be between 0 and 100, got %s", ErrInvalidDiscount, discountPercent)
	}

	extended := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return extended.Sub(extended.Mul(discountPercent.Shift(-2))), nil
}

// Price recomputes the line's Total from its quantity, unit price and discount.
func (l *LineItem) Price() error {
	total, err := PriceLine(l.Quantity, l.UnitPrice, l.Discount)
	if err != nil {
		return err
	}
	l.Total = total
	return nil
}
