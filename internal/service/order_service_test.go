package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/internal/reliability/circuitbreaker"
)

type memOrderRepo struct {
	orders []*domain.Order
}

func (m *memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	for _, existing := range m.orders {
		if existing.OrderNumber == o.OrderNumber {
			return errors.New("duplicate order number")
		}
	}
	o.CreatedAt = time.Now()
	m.orders = append(m.orders, o)
	return nil
}

func (m *memOrderRepo) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubPriceLookup struct {
	prices map[int64]float64
	err    error
}

func (s *stubPriceLookup) GetProducts(_ context.Context, ids []int64) ([]*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []*domain.Product{}
	for _, id := range ids {
		if price, ok := s.prices[id]; ok {
			out = append(out, &domain.Product{ID: id, Price: price})
		}
	}
	return out, nil
}

func TestCreateOrderAssignsUniqueNumbers(t *testing.T) {
	repo := &memOrderRepo{}
	s := NewOrderService(repo, nil, nil, nil)

	first, err := s.Create(context.Background(), "u-1", []int64{7, 9}, 12.50)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := s.Create(context.Background(), "u-1", []int64{7, 9}, 12.50)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if first.OrderNumber == "" || second.OrderNumber == "" {
		t.Fatalf("expected generated order numbers")
	}
	if first.OrderNumber == second.OrderNumber {
		t.Fatalf("identical payloads must still yield distinct order numbers")
	}
	if first.UserID != "u-1" || first.TotalPrice != 12.50 {
		t.Fatalf("unexpected stored order: %+v", first)
	}
}

func TestCreateOrderRequiresOwner(t *testing.T) {
	repo := &memOrderRepo{}
	s := NewOrderService(repo, nil, nil, nil)

	_, err := s.Create(context.Background(), "", []int64{1}, 5)
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Fatalf("nothing may be persisted on validation failure")
	}
}

func TestCreateOrderRejectsNegativeTotal(t *testing.T) {
	s := NewOrderService(&memOrderRepo{}, nil, nil, nil)
	_, err := s.Create(context.Background(), "u-1", nil, -1)
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListByUserEmpty(t *testing.T) {
	s := NewOrderService(&memOrderRepo{}, nil, nil, nil)
	orders, err := s.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", orders)
	}
}

func TestCreateOrderComputesTotalFromCatalog(t *testing.T) {
	repo := &memOrderRepo{}
	pricing := &stubPriceLookup{prices: map[int64]float64{7: 4.25, 9: 8.25}}
	s := NewOrderService(repo, pricing, nil, nil)

	order, err := s.Create(context.Background(), "u-1", []int64{7, 9}, 0)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if order.TotalPrice != 12.50 {
		t.Fatalf("expected computed total 12.50, got %v", order.TotalPrice)
	}
}

func TestCreateOrderSuppliedTotalSkipsCatalog(t *testing.T) {
	pricing := &stubPriceLookup{err: errors.New("must not be called")}
	s := NewOrderService(&memOrderRepo{}, pricing, nil, nil)

	order, err := s.Create(context.Background(), "u-1", []int64{7}, 3.50)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if order.TotalPrice != 3.50 {
		t.Fatalf("caller-supplied total must win, got %v", order.TotalPrice)
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	pricing := &stubPriceLookup{prices: map[int64]float64{7: 4.25}}
	s := NewOrderService(&memOrderRepo{}, pricing, nil, nil)

	_, err := s.Create(context.Background(), "u-1", []int64{7, 42}, 0)
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for unknown product, got %v", err)
	}
}

func TestCreateOrderCatalogDownRejectsUnpriced(t *testing.T) {
	pricing := &stubPriceLookup{err: domain.ErrUpstreamUnreachable}
	breaker := circuitbreaker.NewCircuitBreaker(2, 1, time.Minute)
	repo := &memOrderRepo{}
	s := NewOrderService(repo, pricing, breaker, nil)

	for i := 0; i < 3; i++ {
		_, err := s.Create(context.Background(), "u-1", []int64{7}, 0)
		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("attempt %d: expected validation error, got %v", i, err)
		}
	}
	if breaker.GetState() != circuitbreaker.StateOpen {
		t.Fatalf("expected breaker open after repeated failures")
	}
	if len(repo.orders) != 0 {
		t.Fatalf("no order may be persisted without a price")
	}

	// Orders with caller-supplied totals keep flowing while the breaker is open
	if _, err := s.Create(context.Background(), "u-1", []int64{7}, 4.25); err != nil {
		t.Fatalf("priced order should succeed with open breaker: %v", err)
	}
}
