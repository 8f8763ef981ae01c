package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerInput is the editable part of a customer record.
type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
}

// ProductInput is the editable part of a product record.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	SKU         string          `json:"sku"`
}

// CatalogService manages customer and product master data.
type CatalogService interface {
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, in ProductInput) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, category string) ([]Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type catalogService struct {
	store Store
	clock Clock
}

func NewCatalogService(store Store, clock Clock) CatalogService {
	return &catalogService{store: store, clock: clock}
}

func (in *CustomerInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Company = strings.TrimSpace(in.Company)
	in.Address = strings.TrimSpace(in.Address)
	if in.Name == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return fmt.Errorf("%w: customer email %q is not valid", ErrInvalidInput, in.Email)
	}
	return nil
}

func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	if in.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if in.Category == "" {
		return fmt.Errorf("%w: product category is required", ErrInvalidInput)
	}
	if in.SKU == "" {
		return fmt.Errorf("%w: product SKU is required", ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: product price must not be negative, got %s", ErrInvalidPrice, in.Price)
	}
	return nil
}

// ── Customers ────────────────────────────────────────────────────────────────

func (s *catalogService) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	c := &Customer{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

func (s *catalogService) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

func (s *catalogService) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.store.ListCustomers(ctx)
}

func (s *catalogService) UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*Customer, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	return s.store.UpdateCustomer(ctx, id, func(c *Customer) error {
		c.Name = in.Name
		c.Email = in.Email
		c.Phone = in.Phone
		c.Company = in.Company
		c.Address = in.Address
		c.UpdatedAt = now
		return nil
	})
}

func (s *catalogService) DeleteCustomer(ctx context.Context, id string) error {
	return s.store.DeleteCustomer(ctx, id)
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	p := &Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		SKU:         in.SKU,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *catalogService) ListProducts(ctx context.Context, category string) ([]Product, error) {
	return s.store.ListProducts(ctx, strings.TrimSpace(category))
}

func (s *catalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	return s.store.UpdateProduct(ctx, id, func(p *Product) error {
		p.Name = in.Name
		p.Description = in.Description
		p.Price = in.Price
		p.Category = in.Category
		p.SKU = in.SKU
		p.UpdatedAt = now
		return nil
	})
}

func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}
