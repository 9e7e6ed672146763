package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/brewedawakening/commerce/internal/domain"
)

// PostgresProductRepository implements domain.ProductRepository using
// PostgreSQL. The catalog is read-only from this module's perspective;
// products are loaded by whatever seeds the database.
type PostgresProductRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProductRepository creates a new product repository
func NewPostgresProductRepository(db *sql.DB, logger *slog.Logger) *PostgresProductRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProductRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the products table if it does not exist
func (r *PostgresProductRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			price       NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			description TEXT NOT NULL DEFAULT '',
			calories    INT NOT NULL DEFAULT 0,
			image_url   TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure products schema: %w", err)
	}
	return nil
}

// GetByID retrieves a single product
func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product := &domain.Product{}

	query := `
		SELECT id, name, price, description, calories, image_url
		FROM products
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Description,
		&product.Calories,
		&product.ImageURL,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetByIDs retrieves the products matching the given ids. Missing ids are
// simply absent from the result; callers decide whether that is an error.
func (r *PostgresProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	query := `
		SELECT id, name, price, description, calories, image_url
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// List returns the full catalog
func (r *PostgresProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, price, description, calories, image_url
		FROM products
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list products", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows *sql.Rows) ([]*domain.Product, error) {
	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Description,
			&product.Calories,
			&product.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
