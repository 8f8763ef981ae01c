package core

import (
	"context"
	"fmt"
	"time"
)

// ReportingService provides read-only dashboard projections over stored documents.
type ReportingService interface {
	Dashboard(ctx context.Context, ref time.Time) (*DashboardMetrics, error)
	SalesChart(ctx context.Context, ref time.Time, months int) ([]MonthlySales, error)
	RecentActivity(ctx context.Context, limit int) ([]Activity, error)
}

type reportingService struct {
	store Store
}

func NewReportingService(store Store) ReportingService {
	return &reportingService{store: store}
}

type documentSet struct {
	quotes   []Quote
	orders   []Order
	invoices []Invoice
}

func (s *reportingService) load(ctx context.Context) (*documentSet, error) {
	var (
		set documentSet
		err error
	)
	if set.quotes, err = s.store.ListQuotes(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to load quotes: %w", err)
	}
	if set.orders, err = s.store.ListOrders(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	if set.invoices, err = s.store.ListInvoices(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	return &set, nil
}

func (s *reportingService) Dashboard(ctx context.Context, ref time.Time) (*DashboardMetrics, error) {
	set, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	m := ComputeMetrics(set.quotes, set.orders, set.invoices, ref)
	return &m, nil
}

func (s *reportingService) SalesChart(ctx context.Context, ref time.Time, months int) ([]MonthlySales, error) {
	if months <= 0 || months > 36 {
		return nil, fmt.Errorf("%w: months must be between 1 and 36, got %d", ErrInvalidInput, months)
	}
	set, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return SalesByMonth(set.quotes, set.orders, set.invoices, ref, months), nil
}

func (s *reportingService) RecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	set, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return RecentActivity(set.quotes, set.orders, set.invoices, limit), nil
}
