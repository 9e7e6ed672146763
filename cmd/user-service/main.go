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
	"github.com/brewedawakening/commerce/internal/handler"
	"github.com/brewedawakening/commerce/internal/infrastructure/logger"
	"github.com/brewedawakening/commerce/internal/observability/metrics"
	"github.com/brewedawakening/commerce/internal/observability/tracing"
	"github.com/brewedawakening/commerce/internal/reliability/retry"
	"github.com/brewedawakening/commerce/internal/repository"
	"github.com/brewedawakening/commerce/internal/security"
	"github.com/brewedawakening/commerce/internal/security/audit"
	"github.com/brewedawakening/commerce/internal/security/auth"
	"github.com/brewedawakening/commerce/internal/security/middleware"
	"github.com/brewedawakening/commerce/internal/security/ratelimit"
	"github.com/brewedawakening/commerce/internal/service"
	"github.com/brewedawakening/commerce/pkg/config"
	"github.com/brewedawakening/commerce/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting user service", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing
	shutdownTracing, err := tracing.Init(ctx, log, "user-service", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	// 4. Connect to Postgres, retrying while the database comes up
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

	// 5. Initialize repositories
	userRepo := repository.NewPostgresUserRepository(db, log)
	if err := userRepo.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure users schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Initialize security components
	tokens := auth.NewTokenAuthority(cfg.JWTSecret, "user-service", cfg.TokenTTL)
	guard := security.NewGuard(log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitPerMinute, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 7. Initialize downstream client and services
	ordersClient := client.NewOrdersClient(cfg.OrdersURL, cfg.UpstreamTimeout, log)
	userService := service.NewUserService(userRepo, tokens, guard, log)
	profileService := service.NewProfileService(userRepo, tokens, guard, ordersClient, log)

	// 8. Initialize handlers
	userHandler := handler.NewUserHandler(userService, profileService, tokens, auditLogger, log)
	loginHandler := handler.NewLoginHandler(userService, tokens, auditLogger, log)
	healthHandler := handler.NewHealthHandler(db, nil, log)

	// 9. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", userHandler.Create)
	mux.Handle("POST /users/login", loginHandler)
	mux.HandleFunc("GET /users", userHandler.List)
	mux.HandleFunc("GET /users/get-user/{username}", userHandler.GetUserID)
	mux.HandleFunc("GET /users/{userId}", userHandler.GetProfile)
	mux.HandleFunc("DELETE /users/{userId}", userHandler.Delete)
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)
	mux.Handle("/metrics", promhttp.Handler())

	rootHandler := buildMiddlewareChain(mux, tokens, rateLimiter, log)

	runServer(cfg.ServerPort, rootHandler, log)

	rateLimiter.Stop()
	log.Info("server stopped")
}

// buildMiddlewareChain wires request ID -> metrics -> content type ->
// JWT -> rate limit around the mux.
func buildMiddlewareChain(mux http.Handler, tokens *auth.TokenAuthority, limiter *ratelimit.Limiter, log *slog.Logger) http.Handler {
	return middleware.RequestIDMiddleware(log)(
		metrics.HTTPMetricsMiddleware(
			middleware.ValidateJSONContentType(log)(
				middleware.JWTMiddleware(tokens, log)(
					middleware.RateLimitMiddleware(limiter, log)(mux),
				),
			),
		),
	)
}

// runServer starts the HTTP server and blocks until a shutdown signal
// arrives, then drains in-flight requests.
func runServer(port int, rootHandler http.Handler, log *slog.Logger) {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting", slog.Int("port", port))

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
}
