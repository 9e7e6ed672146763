package domain

import (
	"context"
	"time"
)

// Order represents a placed order. Orders are immutable after creation:
// there are no update or cancel operations.
type Order struct {
	OrderNumber string  // UUID, assigned at creation, never reused
	UserID      string  // Owning user, set at creation and never reassigned
	ProductIDs  []int64 // Ordered product identifiers, may be empty
	TotalPrice  float64 // Non-negative
	CreatedAt   time.Time
}

// OrderRepository defines data access for orders
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
}
