package domain

import "context"

// Product represents a catalog item. The catalog owns products; the user
// and order services only ever read them.
type Product struct {
	ID          int64
	Name        string
	Price       float64
	Description string
	Calories    int
	ImageURL    string
}

// ProductRepository defines read access to the catalog
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Product, error)
	List(ctx context.Context) ([]*Product, error)
}
