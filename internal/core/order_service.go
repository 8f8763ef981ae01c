package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// OrderService turns quotes into orders and drives the order lifecycle.
type OrderService interface {
	// CreateOrderFromQuote copies the quote's customer, items and total into a new order.
	// An empty initial status means pending; any other must be reachable from pending.
	CreateOrderFromQuote(ctx context.Context, quoteID string, initial OrderStatus) (*Order, error)
	TransitionOrder(ctx context.Context, id string, to OrderStatus) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, status OrderStatus) ([]Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type orderService struct {
	store  Store
	policy CreationPolicy
	clock  Clock
}

func NewOrderService(store Store, policy CreationPolicy, clock Clock) OrderService {
	return &orderService{store: store, policy: policy, clock: clock}
}

func (s *orderService) CreateOrderFromQuote(ctx context.Context, quoteID string, initial OrderStatus) (*Order, error) {
	status := OrderPending
	if initial != "" && initial != OrderPending {
		if err := OrderLifecycle.Check(OrderPending, initial); err != nil {
			return nil, fmt.Errorf("initial order status: %w", err)
		}
		status = initial
	}

	// The quote stays locked until the order exists, so a concurrent
	// transition cannot move it out of an allowed status in between.
	var o *Order
	_, err := s.store.UpdateQuote(ctx, quoteID, func(q *Quote) error {
		if err := s.policy.CheckOrderSource(q); err != nil {
			return err
		}

		now := s.clock.Now()
		number, err := nextNumber(ctx, s.store, KindOrder, now.Year())
		if err != nil {
			return fmt.Errorf("failed to allocate order number: %w", err)
		}

		created := &Order{
			ID:          uuid.NewString(),
			OrderNumber: number,
			QuoteID:     q.ID,
			CustomerID:  q.CustomerID,
			Customer:    q.Customer,
			Items:       CloneItems(q.Items),
			Total:       q.Total,
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.store.CreateOrder(ctx, created); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		o = created
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("quote %s: %w", quoteID, err)
		}
		return nil, err
	}
	return o, nil
}

func (s *orderService) TransitionOrder(ctx context.Context, id string, to OrderStatus) (*Order, error) {
	if !OrderLifecycle.Valid(to) {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, to)
	}
	now := s.clock.Now()
	return s.store.UpdateOrder(ctx, id, func(o *Order) error {
		_, err := o.Transition(to, now)
		return err
	})
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, status OrderStatus) ([]Order, error) {
	if status != "" && !OrderLifecycle.Valid(status) {
		return nil, fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, status)
	}
	return s.store.ListOrders(ctx, status)
}

func (s *orderService) DeleteOrder(ctx context.Context, id string) error {
	return s.store.DeleteOrder(ctx, id)
}
