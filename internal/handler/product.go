package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/internal/service"
)

// ProductResponse is the full catalog representation
type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Calories    int     `json:"calories"`
	ImageURL    string  `json:"imageUrl"`
}

// ProductPriceResponse is the trimmed view served to the order service's
// pricing lookup
type ProductPriceResponse struct {
	ProductID    int64   `json:"productId"`
	ProductPrice float64 `json:"productPrice"`
}

// ProductHandler handles the catalog's read endpoints
type ProductHandler struct {
	products *service.ProductService
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *service.ProductService, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// List handles GET /products and GET /products?ids=7,9. With an ids filter
// the response is the trimmed price view used for order pricing.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if rawIDs := r.URL.Query().Get("ids"); rawIDs != "" {
		ids, err := parseIDList(rawIDs)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid ids parameter"})
			return
		}

		products, err := h.products.GetByIDs(r.Context(), ids)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]ProductPriceResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, ProductPriceResponse{ProductID: p.ID, ProductPrice: p.Price})
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, newProductResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid product id"})
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newProductResponse(product))
}

func newProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Calories:    p.Calories,
		ImageURL:    p.ImageURL,
	}
}

func parseIDList(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
