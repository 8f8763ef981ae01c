package core

import "context"

// Repositories are implemented by internal/store/memory and internal/store/postgres.
//
// Get and Delete return ErrNotFound for unknown ids. Update loads the record,
// passes a private copy to fn and persists the copy if fn returns nil; updates
// to the same id are serialized. List returns newest first; an empty status
// filter lists everything.

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id string, fn func(*Customer) error) (*Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, category string) ([]Product, error)
	UpdateProduct(ctx context.Context, id string, fn func(*Product) error) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type QuoteRepository interface {
	CreateQuote(ctx context.Context, q *Quote) error
	GetQuote(ctx context.Context, id string) (*Quote, error)
	ListQuotes(ctx context.Context, status QuoteStatus) ([]Quote, error)
	UpdateQuote(ctx context.Context, id string, fn func(*Quote) error) (*Quote, error)
	DeleteQuote(ctx context.Context, id string) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, status OrderStatus) ([]Order, error)
	UpdateOrder(ctx context.Context, id string, fn func(*Order) error) (*Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, status InvoiceStatus) ([]Invoice, error)
	UpdateInvoice(ctx context.Context, id string, fn func(*Invoice) error) (*Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error
}

// SequenceRepository hands out gapless per-year document sequence numbers.
type SequenceRepository interface {
	NextSequence(ctx context.Context, kind DocumentKind, year int) (int64, error)
}

// Store bundles every repository a deployment needs.
type Store interface {
	CustomerRepository
	ProductRepository
	QuoteRepository
	OrderRepository
	InvoiceRepository
	SequenceRepository
}

// nextNumber allocates the next display number of kind in year.
func nextNumber(ctx context.Context, seq SequenceRepository, kind DocumentKind, year int) (string, error) {
	n, err := seq.NextSequence(ctx, kind, year)
	if err != nil {
		return "", err
	}
	return FormatDocumentNumber(kind, year, n), nil
}
