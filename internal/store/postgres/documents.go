package postgres

import (
	"context"
	"fmt"

	"quote-to-cash/internal/core"

	"github.com/jackc/pgx/v5"
)

// ── Quotes ───────────────────────────────────────────────────────────────────

const quoteColumns = `id, quote_number, customer_id, customer, items, subtotal, tax, total, status, valid_until, created_at, updated_at`

func scanQuote(row rowScanner) (*core.Quote, error) {
	var q core.Quote
	if err := row.Scan(&q.ID, &q.QuoteNumber, &q.CustomerID, &q.Customer, &q.Items,
		&q.Subtotal, &q.Tax, &q.Total, &q.Status, &q.ValidUntil, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Store) CreateQuote(ctx context.Context, q *core.Quote) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO q2c_quotes (`+quoteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, q.ID, q.QuoteNumber, q.CustomerID, q.Customer, itemsOrEmpty(q.Items),
		q.Subtotal, q.Tax, q.Total, string(q.Status), q.ValidUntil, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert quote %s: %w", q.QuoteNumber, err)
	}
	return nil
}

func (s *Store) GetQuote(ctx context.Context, id string) (*core.Quote, error) {
	q, err := scanQuote(s.pool.QueryRow(ctx, `SELECT `+quoteColumns+` FROM q2c_quotes WHERE id = $1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "quote", id)
	}
	return q, nil
}

func (s *Store) ListQuotes(ctx context.Context, status core.QuoteStatus) ([]core.Quote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+quoteColumns+`
		FROM q2c_quotes
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC, length(quote_number) DESC, quote_number DESC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []core.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}

func (s *Store) UpdateQuote(ctx context.Context, id string, fn func(*core.Quote) error) (*core.Quote, error) {
	return update(ctx, s,
		func(tx pgx.Tx) (*core.Quote, error) {
			q, err := scanQuote(tx.QueryRow(ctx, `SELECT `+quoteColumns+` FROM q2c_quotes WHERE id = $1 FOR UPDATE`, id))
			if err != nil {
				return nil, wrapNotFound(err, "quote", id)
			}
			return q, nil
		},
		fn,
		func(tx pgx.Tx, q *core.Quote) error {
			return execOne(ctx, tx, "quote", id, `
				UPDATE q2c_quotes
				SET customer_id = $2, customer = $3, items = $4, subtotal = $5, tax = $6, total = $7,
				    status = $8, valid_until = $9, updated_at = $10
				WHERE id = $1
			`, id, q.CustomerID, q.Customer, itemsOrEmpty(q.Items), q.Subtotal, q.Tax, q.Total,
				string(q.Status), q.ValidUntil, q.UpdatedAt)
		})
}

func (s *Store) DeleteQuote(ctx context.Context, id string) error {
	return execOne(ctx, s.pool, "quote", id, `DELETE FROM q2c_quotes WHERE id = $1`, id)
}

// ── Orders ───────────────────────────────────────────────────────────────────

const orderColumns = `id, order_number, quote_id, customer_id, customer, items, total, status, created_at, updated_at`

func scanOrder(row rowScanner) (*core.Order, error) {
	var o core.Order
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.QuoteID, &o.CustomerID, &o.Customer, &o.Items,
		&o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *core.Order) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO q2c_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.OrderNumber, o.QuoteID, o.CustomerID, o.Customer, itemsOrEmpty(o.Items),
		o.Total, string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order %s: %w", o.OrderNumber, err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*core.Order, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM q2c_orders WHERE id = $1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "order", id)
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, status core.OrderStatus) ([]core.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM q2c_orders
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC, length(order_number) DESC, order_number DESC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []core.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *Store) UpdateOrder(ctx context.Context, id string, fn func(*core.Order) error) (*core.Order, error) {
	return update(ctx, s,
		func(tx pgx.Tx) (*core.Order, error) {
			o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM q2c_orders WHERE id = $1 FOR UPDATE`, id))
			if err != nil {
				return nil, wrapNotFound(err, "order", id)
			}
			return o, nil
		},
		fn,
		func(tx pgx.Tx, o *core.Order) error {
			return execOne(ctx, tx, "order", id, `
				UPDATE q2c_orders
				SET customer = $2, items = $3, total = $4, status = $5, updated_at = $6
				WHERE id = $1
			`, id, o.Customer, itemsOrEmpty(o.Items), o.Total, string(o.Status), o.UpdatedAt)
		})
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	return execOne(ctx, s.pool, "order", id, `DELETE FROM q2c_orders WHERE id = $1`, id)
}

// ── Invoices ─────────────────────────────────────────────────────────────────

const invoiceColumns = `id, invoice_number, order_id, customer_id, customer, items, total, status, due_date, paid_at, created_at`

func scanInvoice(row rowScanner) (*core.Invoice, error) {
	var inv core.Invoice
	if err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.CustomerID, &inv.Customer, &inv.Items,
		&inv.Total, &inv.Status, &inv.DueDate, &inv.PaidAt, &inv.CreatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Store) CreateInvoice(ctx context.Context, inv *core.Invoice) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO q2c_invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, inv.ID, inv.InvoiceNumber, inv.OrderID, inv.CustomerID, inv.Customer, itemsOrEmpty(inv.Items),
		inv.Total, string(inv.Status), inv.DueDate, inv.PaidAt, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invoice %s: %w", inv.InvoiceNumber, err)
	}
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*core.Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM q2c_invoices WHERE id = $1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "invoice", id)
	}
	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, status core.InvoiceStatus) ([]core.Invoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM q2c_invoices
		WHERE $1 = '' OR status = $1
		ORDER BY created_at DESC, length(invoice_number) DESC, invoice_number DESC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []core.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (s *Store) UpdateInvoice(ctx context.Context, id string, fn func(*core.Invoice) error) (*core.Invoice, error) {
	return update(ctx, s,
		func(tx pgx.Tx) (*core.Invoice, error) {
			inv, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM q2c_invoices WHERE id = $1 FOR UPDATE`, id))
			if err != nil {
				return nil, wrapNotFound(err, "invoice", id)
			}
			return inv, nil
		},
		fn,
		func(tx pgx.Tx, inv *core.Invoice) error {
			return execOne(ctx, tx, "invoice", id, `
				UPDATE q2c_invoices
				SET customer = $2, items = $3, total = $4, status = $5, due_date = $6, paid_at = $7
				WHERE id = $1
			`, id, inv.Customer, itemsOrEmpty(inv.Items), inv.Total, string(inv.Status), inv.DueDate, inv.PaidAt)
		})
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	return execOne(ctx, s.pool, "invoice", id, `DELETE FROM q2c_invoices WHERE id = $1`, id)
}
