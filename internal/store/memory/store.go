// Package memory is an in-process core.Store for demos, the CLI and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"quote-to-cash/internal/core"
)

type sequenceKey struct {
	kind core.DocumentKind
	year int
}

// Store keeps every record in maps guarded by mu. Update* additionally holds a
// per-id lock for the whole read-modify-write so concurrent transitions on one
// document serialize while different documents proceed in parallel.
type Store struct {
	mu        sync.RWMutex
	customers map[string]*core.Customer
	products  map[string]*core.Product
	quotes    map[string]*core.Quote
	orders    map[string]*core.Order
	invoices  map[string]*core.Invoice
	sequences map[sequenceKey]int64

	locks *keyedMutex
}

var _ core.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		customers: make(map[string]*core.Customer),
		products:  make(map[string]*core.Product),
		quotes:    make(map[string]*core.Quote),
		orders:    make(map[string]*core.Order),
		invoices:  make(map[string]*core.Invoice),
		sequences: make(map[sequenceKey]int64),
		locks:     newKeyedMutex(),
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
}

func duplicate(kind, id string) error {
	return fmt.Errorf("%w: %s %s already exists", core.ErrInvalidInput, kind, id)
}

// ── Generic helpers ──────────────────────────────────────────────────────────

func get[T any](s *Store, m map[string]*T, kind, id string, clone func(*T) *T) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := m[id]
	if !ok {
		return nil, notFound(kind, id)
	}
	return clone(v), nil
}

func create[T any](s *Store, m map[string]*T, kind, id string, v *T, clone func(*T) *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := m[id]; ok {
		return duplicate(kind, id)
	}
	m[id] = clone(v)
	return nil
}

func update[T any](s *Store, m map[string]*T, kind, id string, fn func(*T) error, clone func(*T) *T) (*T, error) {
	unlock := s.locks.Lock(kind + "/" + id)
	defer unlock()

	cur, err := get(s, m, kind, id, clone)
	if err != nil {
		return nil, err
	}
	if err := fn(cur); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := m[id]; !ok {
		return nil, notFound(kind, id)
	}
	m[id] = clone(cur)
	return cur, nil
}

func remove[T any](s *Store, m map[string]*T, kind, id string) error {
	unlock := s.locks.Lock(kind + "/" + id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := m[id]; !ok {
		return notFound(kind, id)
	}
	delete(m, id)
	return nil
}

// list copies the values accepted by keep, newest first.
// Ties on createdAt go to the record that tiebreak ranks higher.
func list[T any](s *Store, m map[string]*T, keep func(*T) bool, createdAt func(*T) time.Time, tiebreak func(a, b *T) int, clone func(*T) *T) []T {
	s.mu.RLock()
	out := make([]T, 0, len(m))
	for _, v := range m {
		if keep(v) {
			out = append(out, *clone(v))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ti, tj := createdAt(&out[i]), createdAt(&out[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return tiebreak(&out[i], &out[j]) > 0
	})
	return out
}

func cloneCustomer(c *core.Customer) *core.Customer {
	v := *c
	return &v
}

func cloneProduct(p *core.Product) *core.Product {
	v := *p
	return &v
}

func cloneQuote(q *core.Quote) *core.Quote       { return q.Clone() }
func cloneOrder(o *core.Order) *core.Order       { return o.Clone() }
func cloneInvoice(i *core.Invoice) *core.Invoice { return i.Clone() }

// ── Customers ────────────────────────────────────────────────────────────────

func (s *Store) CreateCustomer(_ context.Context, c *core.Customer) error {
	return create(s, s.customers, "customer", c.ID, c, cloneCustomer)
}

func (s *Store) GetCustomer(_ context.Context, id string) (*core.Customer, error) {
	return get(s, s.customers, "customer", id, cloneCustomer)
}

func (s *Store) ListCustomers(_ context.Context) ([]core.Customer, error) {
	return list(s, s.customers,
		func(*core.Customer) bool { return true },
		func(c *core.Customer) time.Time { return c.CreatedAt },
		func(a, b *core.Customer) int { return strings.Compare(a.Name, b.Name) },
		cloneCustomer), nil
}

func (s *Store) UpdateCustomer(_ context.Context, id string, fn func(*core.Customer) error) (*core.Customer, error) {
	return update(s, s.customers, "customer", id, fn, cloneCustomer)
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	return remove(s, s.customers, "customer", id)
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *Store) CreateProduct(_ context.Context, p *core.Product) error {
	return create(s, s.products, "product", p.ID, p, cloneProduct)
}

func (s *Store) GetProduct(_ context.Context, id string) (*core.Product, error) {
	return get(s, s.products, "product", id, cloneProduct)
}

func (s *Store) ListProducts(_ context.Context, category string) ([]core.Product, error) {
	return list(s, s.products,
		func(p *core.Product) bool { return category == "" || p.Category == category },
		func(p *core.Product) time.Time { return p.CreatedAt },
		func(a, b *core.Product) int { return strings.Compare(a.SKU, b.SKU) },
		cloneProduct), nil
}

func (s *Store) UpdateProduct(_ context.Context, id string, fn func(*core.Product) error) (*core.Product, error) {
	return update(s, s.products, "product", id, fn, cloneProduct)
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	return remove(s, s.products, "product", id)
}

// ── Quotes ───────────────────────────────────────────────────────────────────

func (s *Store) CreateQuote(_ context.Context, q *core.Quote) error {
	return create(s, s.quotes, "quote", q.ID, q, cloneQuote)
}

func (s *Store) GetQuote(_ context.Context, id string) (*core.Quote, error) {
	return get(s, s.quotes, "quote", id, cloneQuote)
}

func (s *Store) ListQuotes(_ context.Context, status core.QuoteStatus) ([]core.Quote, error) {
	return list(s, s.quotes,
		func(q *core.Quote) bool { return status == "" || q.Status == status },
		func(q *core.Quote) time.Time { return q.CreatedAt },
		func(a, b *core.Quote) int { return core.CompareDocumentNumbers(a.QuoteNumber, b.QuoteNumber) },
		cloneQuote), nil
}

func (s *Store) UpdateQuote(_ context.Context, id string, fn func(*core.Quote) error) (*core.Quote, error) {
	return update(s, s.quotes, "quote", id, fn, cloneQuote)
}

func (s *Store) DeleteQuote(_ context.Context, id string) error {
	return remove(s, s.quotes, "quote", id)
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *Store) CreateOrder(_ context.Context, o *core.Order) error {
	return create(s, s.orders, "order", o.ID, o, cloneOrder)
}

func (s *Store) GetOrder(_ context.Context, id string) (*core.Order, error) {
	return get(s, s.orders, "order", id, cloneOrder)
}

func (s *Store) ListOrders(_ context.Context, status core.OrderStatus) ([]core.Order, error) {
	return list(s, s.orders,
		func(o *core.Order) bool { return status == "" || o.Status == status },
		func(o *core.Order) time.Time { return o.CreatedAt },
		func(a, b *core.Order) int { return core.CompareDocumentNumbers(a.OrderNumber, b.OrderNumber) },
		cloneOrder), nil
}

func (s *Store) UpdateOrder(_ context.Context, id string, fn func(*core.Order) error) (*core.Order, error) {
	return update(s, s.orders, "order", id, fn, cloneOrder)
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	return remove(s, s.orders, "order", id)
}

// ── Invoices ─────────────────────────────────────────────────────────────────

func (s *Store) CreateInvoice(_ context.Context, inv *core.Invoice) error {
	return create(s, s.invoices, "invoice", inv.ID, inv, cloneInvoice)
}

func (s *Store) GetInvoice(_ context.Context, id string) (*core.Invoice, error) {
	return get(s, s.invoices, "invoice", id, cloneInvoice)
}

func (s *Store) ListInvoices(_ context.Context, status core.InvoiceStatus) ([]core.Invoice, error) {
	return list(s, s.invoices,
		func(inv *core.Invoice) bool { return status == "" || inv.Status == status },
		func(inv *core.Invoice) time.Time { return inv.CreatedAt },
		func(a, b *core.Invoice) int { return core.CompareDocumentNumbers(a.InvoiceNumber, b.InvoiceNumber) },
		cloneInvoice), nil
}

func (s *Store) UpdateInvoice(_ context.Context, id string, fn func(*core.Invoice) error) (*core.Invoice, error) {
	return update(s, s.invoices, "invoice", id, fn, cloneInvoice)
}

func (s *Store) DeleteInvoice(_ context.Context, id string) error {
	return remove(s, s.invoices, "invoice", id)
}

// ── Sequences ────────────────────────────────────────────────────────────────

func (s *Store) NextSequence(_ context.Context, kind core.DocumentKind, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sequenceKey{kind: kind, year: year}
	s.sequences[key]++
	return s.sequences[key], nil
}
