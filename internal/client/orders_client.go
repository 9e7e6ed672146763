package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brewedawakening/commerce/internal/domain"
)

// OrdersProvider fetches the orders belonging to the subject of a bearer
// token. The remote service derives the owner from the token itself, never
// from a caller-supplied parameter, so a compromised or confused caller
// cannot request another user's orders through this client.
type OrdersProvider interface {
	FetchOrders(ctx context.Context, bearerToken string) ([]*domain.Order, error)
}

// orderResponse mirrors the order service's wire representation
type orderResponse struct {
	UserID      string  `json:"userId"`
	OrderNumber string  `json:"orderNumber"`
	ProductIDs  []int64 `json:"productIds"`
	TotalPrice  float64 `json:"totalPrice"`
}

// OrdersClient is the HTTP implementation of OrdersProvider
type OrdersClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOrdersClient creates an orders client with a bounded request timeout
func NewOrdersClient(baseURL string, timeout time.Duration, logger *slog.Logger) *OrdersClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OrdersClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// FetchOrders calls the remote order service, forwarding the caller's bearer
// token unmodified. A transport-level failure maps to ErrUpstreamUnreachable;
// a non-2xx response maps to ClientError with the remote status.
func (c *OrdersClient) FetchOrders(ctx context.Context, bearerToken string) ([]*domain.Order, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build orders request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("order service unreachable",
			slog.String("url", c.baseURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("order service returned non-success status",
			slog.String("url", c.baseURL),
			slog.Int("status", resp.StatusCode),
		)
		return nil, &domain.ClientError{Status: resp.StatusCode}
	}

	var payload []orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode orders response: %w", err)
	}

	orders := make([]*domain.Order, 0, len(payload))
	for _, o := range payload {
		orders = append(orders, &domain.Order{
			OrderNumber: o.OrderNumber,
			UserID:      o.UserID,
			ProductIDs:  o.ProductIDs,
			TotalPrice:  o.TotalPrice,
		})
	}

	c.logger.Info("fetched orders from order service",
		slog.Int("count", len(orders)),
	)

	return orders, nil
}
