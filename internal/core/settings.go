package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings carries the tunables the document services read.
type Settings struct {
	TaxRate       decimal.Decimal
	QuoteValidity time.Duration
	InvoiceDueIn  time.Duration
	Policy        CreationPolicy
}

// DefaultSettings: 10% tax, 30-day quote validity, 30-day payment terms.
func DefaultSettings() Settings {
	return Settings{
		TaxRate:       DefaultTaxRate,
		QuoteValidity: 30 * 24 * time.Hour,
		InvoiceDueIn:  30 * 24 * time.Hour,
		Policy:        DefaultCreationPolicy(),
	}
}
