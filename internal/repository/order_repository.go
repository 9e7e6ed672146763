package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/brewedawakening/commerce/internal/domain"
)

// PostgresOrderRepository implements domain.OrderRepository using PostgreSQL.
// Order numbers carry a unique constraint so a duplicate generated id can
// never be persisted twice.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresOrderRepository creates a new order repository
func NewPostgresOrderRepository(db *sql.DB, logger *slog.Logger) *PostgresOrderRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresOrderRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the orders table if it does not exist
func (r *PostgresOrderRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			order_number UUID PRIMARY KEY,
			user_id      TEXT NOT NULL,
			product_ids  BIGINT[] NOT NULL DEFAULT '{}',
			total_price  NUMERIC(12,2) NOT NULL CHECK (total_price >= 0),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure orders schema: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS orders_user_id_idx ON orders (user_id)`)
	if err != nil {
		return fmt.Errorf("failed to ensure orders index: %w", err)
	}
	return nil
}

// Create persists a new order record
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (order_number, user_id, product_ids, total_price)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		order.OrderNumber,
		order.UserID,
		pq.Array(order.ProductIDs),
		order.TotalPrice,
	).Scan(&order.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create order",
			slog.String("order_number", order.OrderNumber),
			slog.String("user_id", order.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// ListByUser returns all orders owned by the given user, newest first.
// A user with no orders yields an empty slice, not an error.
func (r *PostgresOrderRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `
		SELECT order_number, user_id, product_ids, total_price, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to list orders",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.OrderNumber,
			&order.UserID,
			pq.Array(&order.ProductIDs),
			&order.TotalPrice,
			&order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}
