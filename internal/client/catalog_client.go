package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/brewedawakening/commerce/internal/domain"
)

// PriceLookup resolves product prices for server-side order totals
type PriceLookup interface {
	GetProducts(ctx context.Context, ids []int64) ([]*domain.Product, error)
}

type productResponse struct {
	ProductID    int64   `json:"productId"`
	ProductPrice float64 `json:"productPrice"`
}

// CatalogClient is the HTTP implementation of PriceLookup against the
// product catalog service
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCatalogClient creates a catalog client with a bounded request timeout
func NewCatalogClient(baseURL string, timeout time.Duration, logger *slog.Logger) *CatalogClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CatalogClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// GetProducts fetches the products with the given ids. Missing products are
// absent from the result.
func (c *CatalogClient) GetProducts(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	url := c.baseURL + "/products?ids=" + strings.Join(parts, ",")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("catalog service unreachable",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.ClientError{Status: resp.StatusCode}
	}

	var payload []productResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	products := make([]*domain.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, &domain.Product{
			ID:    p.ProductID,
			Price: p.ProductPrice,
		})
	}

	return products, nil
}
