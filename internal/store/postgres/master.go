package postgres

import (
	"context"
	"fmt"

	"quote-to-cash/internal/core"

	"github.com/jackc/pgx/v5"
)

// ── Customers ────────────────────────────────────────────────────────────────

const customerColumns = `id, name, email, phone, company, address, created_at, updated_at`

func scanCustomer(row rowScanner) (*core.Customer, error) {
	var c core.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *core.Customer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO q2c_customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Email, c.Phone, c.Company, c.Address, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*core.Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM q2c_customers WHERE id = $1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "customer", id)
	}
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+customerColumns+` FROM q2c_customers ORDER BY created_at DESC, name DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []core.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (s *Store) UpdateCustomer(ctx context.Context, id string, fn func(*core.Customer) error) (*core.Customer, error) {
	return update(ctx, s,
		func(tx pgx.Tx) (*core.Customer, error) {
			c, err := scanCustomer(tx.QueryRow(ctx, `SELECT `+customerColumns+` FROM q2c_customers WHERE id = $1 FOR UPDATE`, id))
			if err != nil {
				return nil, wrapNotFound(err, "customer", id)
			}
			return c, nil
		},
		fn,
		func(tx pgx.Tx, c *core.Customer) error {
			return execOne(ctx, tx, "customer", id, `
				UPDATE q2c_customers
				SET name = $2, email = $3, phone = $4, company = $5, address = $6, updated_at = $7
				WHERE id = $1
			`, id, c.Name, c.Email, c.Phone, c.Company, c.Address, c.UpdatedAt)
		})
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	return execOne(ctx, s.pool, "customer", id, `DELETE FROM q2c_customers WHERE id = $1`, id)
}

// ── Products ─────────────────────────────────────────────────────────────────

const productColumns = `id, name, description, price, category, sku, created_at, updated_at`

func scanProduct(row rowScanner) (*core.Product, error) {
	var p core.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.SKU, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *core.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO q2c_products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Name, p.Description, p.Price, p.Category, p.SKU, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*core.Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM q2c_products WHERE id = $1`, id))
	if err != nil {
		return nil, wrapNotFound(err, "product", id)
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, category string) ([]core.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM q2c_products
		WHERE $1 = '' OR category = $1
		ORDER BY created_at DESC, sku DESC
	`, category)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []core.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *Store) UpdateProduct(ctx context.Context, id string, fn func(*core.Product) error) (*core.Product, error) {
	return update(ctx, s,
		func(tx pgx.Tx) (*core.Product, error) {
			p, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM q2c_products WHERE id = $1 FOR UPDATE`, id))
			if err != nil {
				return nil, wrapNotFound(err, "product", id)
			}
			return p, nil
		},
		fn,
		func(tx pgx.Tx, p *core.Product) error {
			return execOne(ctx, tx, "product", id, `
				UPDATE q2c_products
				SET name = $2, description = $3, price = $4, category = $5, sku = $6, updated_at = $7
				WHERE id = $1
			`, id, p.Name, p.Description, p.Price, p.Category, p.SKU, p.UpdatedAt)
		})
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	return execOne(ctx, s.pool, "product", id, `DELETE FROM q2c_products WHERE id = $1`, id)
}
