package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DraftRequest is a structured quote request extracted from free text.
// Nothing is persisted until the caller turns it into a QuoteInput.
type DraftRequest struct {
	Clarification string      `json:"clarification" jsonschema_description:"A question for the user when the request is ambiguous or names unknown customers or products. Empty when the draft is complete."`
	CustomerEmail string      `json:"customer_email" jsonschema_description:"Email of the customer the quote is for, copied exactly from the customer list."`
	ValidityDays  int         `json:"validity_days" jsonschema_description:"Number of days the quote stays valid. Use 30 when the request does not say."`
	Lines         []DraftLine `json:"lines" jsonschema_description:"One entry per requested product."`
	Reasoning     string      `json:"reasoning" jsonschema_description:"Short explanation of how the request was mapped to customers and products."`
	Confidence    float64     `json:"confidence" jsonschema_description:"Confidence between 0.0 and 1.0."`
}

// DraftLine is one requested product on a DraftRequest.
type DraftLine struct {
	SKU      string `json:"sku" jsonschema_description:"Product SKU copied exactly from the product list."`
	Quantity int    `json:"quantity" jsonschema_description:"Positive whole number of units."`
	Discount string `json:"discount" jsonschema_description:"Discount percentage between 0 and 100 as a decimal string, e.g. '10' or '12.5'. Use '0' when none."`
}

// NeedsClarification reports whether the draft is a question rather than a quote.
func (d *DraftRequest) NeedsClarification() bool {
	return strings.TrimSpace(d.Clarification) != ""
}

// Normalize cleans up formatting noise in model output.
func (d *DraftRequest) Normalize() {
	d.Clarification = strings.TrimSpace(d.Clarification)
	d.CustomerEmail = strings.ToLower(strings.TrimSpace(d.CustomerEmail))
	for i := range d.Lines {
		line := &d.Lines[i]
		line.SKU = strings.ToUpper(strings.TrimSpace(line.SKU))
		line.Discount = strings.TrimSuffix(strings.TrimSpace(line.Discount), "%")
		if line.Discount == "" || strings.EqualFold(line.Discount, "null") {
			line.Discount = "0"
		}
	}
}

// Validate checks a complete draft. Clarification drafts are always valid.
func (d *DraftRequest) Validate() error {
	if d.NeedsClarification() {
		return nil
	}
	if d.CustomerEmail == "" {
		return errors.New("draft must name a customer email")
	}
	if d.ValidityDays < 0 {
		return fmt.Errorf("validity days must not be negative, got %d", d.ValidityDays)
	}
	if len(d.Lines) == 0 {
		return errors.New("draft must have at least one line")
	}
	if d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0 and 1, got %v", d.Confidence)
	}
	for i, line := range d.Lines {
		if line.SKU == "" {
			return fmt.Errorf("line %d: SKU is required", i+1)
		}
		discount, err := decimal.NewFromString(line.Discount)
		if err != nil {
			return fmt.Errorf("line %d: invalid discount %q: %v", i+1, line.Discount, err)
		}
		if _, err := PriceLine(line.Quantity, decimal.Zero, discount); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

// Resolve maps the draft onto catalog records. Unknown emails or SKUs are ErrNotFound.
func (d *DraftRequest) Resolve(customers []Customer, products []Product) (QuoteInput, error) {
	var in QuoteInput
	for _, c := range customers {
		if strings.EqualFold(c.Email, d.CustomerEmail) {
			in.CustomerID = c.ID
			break
		}
	}
	if in.CustomerID == "" {
		return in, fmt.Errorf("%w: no customer with email %s", ErrNotFound, d.CustomerEmail)
	}

	bySKU := make(map[string]Product, len(products))
	for _, p := range products {
		bySKU[strings.ToUpper(p.SKU)] = p
	}
	for i, line := range d.Lines {
		p, ok := bySKU[line.SKU]
		if !ok {
			return in, fmt.Errorf("%w: line %d: no product with SKU %s", ErrNotFound, i+1, line.SKU)
		}
		discount, err := decimal.NewFromString(line.Discount)
		if err != nil {
			return in, fmt.Errorf("%w: line %d: invalid discount %q", ErrInvalidDiscount, i+1, line.Discount)
		}
		in.Lines = append(in.Lines, LineInput{ProductID: p.ID, Quantity: line.Quantity, Discount: discount})
	}
	return in, nil
}
