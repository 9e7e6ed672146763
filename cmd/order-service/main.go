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

	"github.com/brewedawakening/commerce/internal/client"
	"github.com/brewedawakening/commerce/internal/featureflags"
	"github.com/brewedawakening/commerce/internal/handler"
	"github.com/brewedawakening/commerce/internal/infrastructure/logger"
	"github.com/brewedawakening/commerce/internal/observability/metrics"
	"github.com/brewedawakening/commerce/internal/observability/tracing"
	"github.com/brewedawakening/commerce/internal/reliability/circuitbreaker"
	"github.com/brewedawakening/commerce/internal/reliability/retry"
	"github.com/brewedawakening/commerce/internal/repository"
	"github.com/brewedawakening/commerce/internal/security/audit"
	"github.com/brewedawakening/commerce/internal/security/auth"
	"github.com/brewedawakening/commerce/internal/security/middleware"
	"github.com/brewedawakening/commerce/internal/security/ratelimit"
	"github.com/brewedawakening/commerce/internal/service"
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
	log.Info("starting order service", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "order-service", cfg.Environment)
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

	orderRepo := repository.NewPostgresOrderRepository(db, log)
	if err := orderRepo.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure orders schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokens := auth.NewTokenAuthority(cfg.JWTSecret, "user-service", cfg.TokenTTL)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// Server-side pricing is flag-gated: when enabled, zero-total orders
	// with product ids are priced from the catalog behind a circuit breaker.
	var pricing client.PriceLookup
	var breaker *circuitbreaker.CircuitBreaker
	if featureflags.Enabled("catalog_pricing") {
		pricing = client.NewCatalogClient(cfg.CatalogURL, cfg.UpstreamTimeout, log)
		breaker = circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
		log.Info("catalog pricing enabled", slog.String("catalog_url", cfg.CatalogURL))
	}

	orderService := service.NewOrderService(orderRepo, pricing, breaker, log)

	orderHandler := handler.NewOrderHandler(orderService, tokens, auditLogger, log)
	healthHandler := handler.NewHealthHandler(db, nil, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", orderHandler.Create)
	mux.HandleFunc("GET /orders", orderHandler.ListMine)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	rootHandler := middleware.RequestIDMiddleware(log)(
		metrics.HTTPMetricsMiddleware(
			middleware.ValidateJSONContentType(log)(
				middleware.JWTMiddleware(tokens, log)(
					middleware.RateLimitMiddleware(rateLimiter, log)(mux),
				),
			),
		),
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

	rateLimiter.Stop()
	log.Info("server stopped")
}
