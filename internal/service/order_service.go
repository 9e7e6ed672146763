package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brewedawakening/commerce/internal/client"
	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/internal/observability/metrics"
	"github.com/brewedawakening/commerce/internal/reliability/circuitbreaker"
)

// OrderService owns order creation and owner-scoped listing. Every order
// gets a freshly minted uuid order number; the repository's unique
// constraint backs the never-reused guarantee.
type OrderService struct {
	orderRepo domain.OrderRepository
	pricing   client.PriceLookup
	breaker   *circuitbreaker.CircuitBreaker
	logger    *slog.Logger
}

// NewOrderService creates a new order service. pricing may be nil, in which
// case totals must be supplied by the caller.
func NewOrderService(
	orderRepo domain.OrderRepository,
	pricing client.PriceLookup,
	breaker *circuitbreaker.CircuitBreaker,
	logger *slog.Logger,
) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}

	return &OrderService{
		orderRepo: orderRepo,
		pricing:   pricing,
		breaker:   breaker,
		logger:    logger,
	}
}

// Create validates and persists a new order, returning the stored record
// including its generated order number. Validation runs before any
// persistence attempt.
func (s *OrderService) Create(ctx context.Context, userID string, productIDs []int64, totalPrice float64) (*domain.Order, error) {
	if userID == "" {
		return nil, domain.NewValidationError("userId", "is required")
	}
	if totalPrice < 0 {
		return nil, domain.NewValidationError("totalPrice", "must not be negative")
	}

	if totalPrice == 0 && len(productIDs) > 0 && s.pricing != nil {
		priced, err := s.priceOrder(ctx, productIDs)
		if err != nil {
			return nil, err
		}
		totalPrice = priced
	}

	order := &domain.Order{
		OrderNumber: uuid.NewString(),
		UserID:      userID,
		ProductIDs:  productIDs,
		TotalPrice:  totalPrice,
	}
	if order.ProductIDs == nil {
		order.ProductIDs = []int64{}
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		slog.String("order_number", order.OrderNumber),
		slog.String("user_id", order.UserID),
		slog.Float64("total_price", order.TotalPrice),
	)
	metrics.ObserveOrderCreated()

	return order, nil
}

// ListByUser returns all orders owned by the given user. A user with no
// orders gets an empty slice.
func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

// priceOrder sums catalog prices for the ordered products. The lookup sits
// behind a circuit breaker: when the catalog is struggling the order is
// rejected rather than priced by guesswork.
func (s *OrderService) priceOrder(ctx context.Context, productIDs []int64) (float64, error) {
	if s.breaker != nil && !s.breaker.AllowRequest() {
		return 0, domain.NewValidationError("totalPrice", "is required while catalog pricing is unavailable")
	}

	products, err := s.pricing.GetProducts(ctx, productIDs)
	if err != nil {
		if s.breaker != nil {
			s.breaker.RecordFailure()
		}
		s.logger.Warn("catalog price lookup failed", slog.String("error", err.Error()))
		return 0, domain.NewValidationError("totalPrice", "is required while catalog pricing is unavailable")
	}
	if s.breaker != nil {
		s.breaker.RecordSuccess()
	}

	prices := make(map[int64]float64, len(products))
	for _, p := range products {
		prices[p.ID] = p.Price
	}

	var total float64
	for _, id := range productIDs {
		price, ok := prices[id]
		if !ok {
			return 0, domain.NewValidationError("productIds", fmt.Sprintf("unknown product %d", id))
		}
		total += price
	}

	return total, nil
}
