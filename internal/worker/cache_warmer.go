package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/brewedawakening/commerce/internal/service"
)

// CacheWarmer periodically refreshes the shared Redis product cache so
// catalog reads stay warm across restarts and TTL expiry.
type CacheWarmer struct {
	products *service.ProductService
	logger   *slog.Logger
	interval time.Duration
}

// NewCacheWarmer creates a new cache warmer
func NewCacheWarmer(products *service.ProductService, logger *slog.Logger, interval time.Duration) *CacheWarmer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheWarmer{
		products: products,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the warm loop. It runs until the context is cancelled.
func (w *CacheWarmer) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("cache warmer started", slog.Duration("interval", w.interval))
	w.warm(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cache warmer stopped")
			return
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

func (w *CacheWarmer) warm(ctx context.Context) {
	warmed, err := w.products.WarmCache(ctx)
	if err != nil {
		w.logger.Warn("cache warm failed", slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("cache warmed", slog.Int("products", warmed))
}
