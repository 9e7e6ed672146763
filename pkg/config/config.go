package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration shared by the three services.
// Each service reads only the fields it needs.
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	// Postgres
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis (catalog cache)
	RedisURL string

	// Downstream services
	OrdersURL       string
	CatalogURL      string
	UpstreamTimeout time.Duration

	// Token signing
	JWTSecret string
	TokenTTL  time.Duration

	// Workers and limits
	CacheWarmIntervalSeconds int
	RateLimitPerMinute       int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}

	dbPort, err := intEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	timeoutSeconds, err := intEnv("UPSTREAM_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}

	tokenTTLMinutes, err := intEnv("TOKEN_TTL_MINUTES", 60)
	if err != nil {
		return nil, err
	}

	warmInterval, err := intEnv("CACHE_WARM_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}

	rateLimit, err := intEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "commerce"),
		DBPassword: getEnv("DB_PASSWORD", "dev"),
		DBName:     getEnv("DB_NAME", "commerce"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		OrdersURL:       getEnv("ORDERS_URL", "http://localhost:8082/orders"),
		CatalogURL:      getEnv("CATALOG_URL", "http://localhost:8083"),
		UpstreamTimeout: time.Duration(timeoutSeconds) * time.Second,

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  time.Duration(tokenTTLMinutes) * time.Minute,

		CacheWarmIntervalSeconds: warmInterval,
		RateLimitPerMinute:       rateLimit,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
