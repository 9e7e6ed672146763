package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redisinfra "github.com/brewedawakening/commerce/internal/infrastructure/redis"

	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/pkg/cache"
)

const productListCacheKey = "products:all"

// ProductService serves read-only catalog data. The full list sits behind a
// short-lived in-memory cache; individual products are cached in Redis so
// all catalog replicas share the hot set.
type ProductService struct {
	productRepo domain.ProductRepository
	memCache    *cache.Cache
	redis       *redisinfra.Client // optional, nil disables the shared cache
	cacheTTL    time.Duration
	logger      *slog.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo domain.ProductRepository,
	memCache *cache.Cache,
	redisClient *redisinfra.Client,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *ProductService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ProductService{
		productRepo: productRepo,
		memCache:    memCache,
		redis:       redisClient,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// List returns the full catalog, served from the in-memory cache when fresh
func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	if s.memCache != nil {
		if cached, ok := s.memCache.Get(productListCacheKey); ok {
			if products, ok := cached.([]*domain.Product); ok {
				return products, nil
			}
		}
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.memCache != nil {
		s.memCache.Set(productListCacheKey, products, s.cacheTTL)
	}
	return products, nil
}

// GetByID returns a single product, consulting the shared Redis cache first
func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := productCacheKey(id)

	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, key); err == nil {
			product := &domain.Product{}
			if err := json.Unmarshal([]byte(raw), product); err == nil {
				return product, nil
			}
			// Corrupt entry, drop it and fall through to the database
			_ = s.redis.Delete(ctx, key)
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheProduct(ctx, product)
	return product, nil
}

// GetByIDs returns the products matching the given ids
func (s *ProductService) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	return s.productRepo.GetByIDs(ctx, ids)
}

// WarmCache loads the catalog and pushes every product into Redis. Called
// by the cache warmer worker.
func (s *ProductService) WarmCache(ctx context.Context) (int, error) {
	if s.redis == nil {
		return 0, errors.New("redis cache not configured")
	}

	products, err := s.productRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	warmed := 0
	for _, p := range products {
		if s.cacheProduct(ctx, p) {
			warmed++
		}
	}
	return warmed, nil
}

func (s *ProductService) cacheProduct(ctx context.Context, product *domain.Product) bool {
	if s.redis == nil {
		return false
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return false
	}
	if err := s.redis.Set(ctx, productCacheKey(product.ID), raw, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache product",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
