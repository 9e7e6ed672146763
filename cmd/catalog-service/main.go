package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brewedawakening/commerce/internal/handler"
	"github.com/brewedawakening/commerce/internal/infrastructure/logger"
	"github.com/brewedawakening/commerce/internal/infrastructure/redis"
	"github.com/brewedawakening/commerce/internal/observability/metrics"
	"github.com/brewedawakening/commerce/internal/observability/tracing"
	"github.com/brewedawakening/commerce/internal/reliability/retry"
	"github.com/brewedawakening/commerce/internal/repository"
	"github.com/brewedawakening/commerce/internal/security/middleware"
	"github.com/brewedawakening/commerce/internal/service"
	"github.com/brewedawakening/commerce/internal/worker"
	"github.com/brewedawakening/commerce/pkg/cache"
	"github.com/brewedawakening/commerce/pkg/config"
	"github.com/brewedawakening/commerce/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting catalog service", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "catalog-service", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	pool, err := retry.Do(ctx, retry.DefaultConfig(), log, "postgres connect",
		func(ctx context.Context) (*database.ConnectionPool, error) {
			return database.NewConnectionPool(ctx, &database.Config{
				Host:     cfg.DBHost,
				Port:     cfg.DBPort,
				User:     cfg.DBUser,
				Password: cfg.DBPassword,
				Database: cfg.DBName,
				SSLMode:  cfg.DBSSLMode,
			}, log)
		})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	productRepo := repository.NewPostgresProductRepository(db, log)
	if err := productRepo.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure products schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Redis is optional: without it the service still works, reads just
	// fall through to Postgres on every cache miss.
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, shared cache disabled", slog.String("error", err.Error()))
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	productService := service.NewProductService(productRepo, cache.New(), redisClient, time.Minute, log)

	if redisClient != nil {
		warmer := worker.NewCacheWarmer(productService, log,
			time.Duration(cfg.CacheWarmIntervalSeconds)*time.Second)
		go warmer.Start(ctx)
	}

	productHandler := handler.NewProductHandler(productService, log)
	healthHandler := handler.NewHealthHandler(db, redisClient, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", productHandler.List)
	mux.HandleFunc("GET /products/{id}", productHandler.Get)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	// The catalog is read-only and unauthenticated, so the chain stops at
	// request IDs and metrics.
	rootHandler := middleware.RequestIDMiddleware(log)(
		metrics.HTTPMetricsMiddleware(mux),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting", slog.Int("port", cfg.ServerPort))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}
