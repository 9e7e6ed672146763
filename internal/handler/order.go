package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/internal/security/audit"
	"github.com/brewedawakening/commerce/internal/security/auth"
	"github.com/brewedawakening/commerce/internal/service"
)

// CreateOrderRequest is the order creation payload
type CreateOrderRequest struct {
	UserID     string  `json:"userId"`
	ProductIDs []int64 `json:"productIds"`
	TotalPrice float64 `json:"totalPrice"`
}

// OrderResponse is the order wire representation
type OrderResponse struct {
	UserID      string  `json:"userId"`
	OrderNumber string  `json:"orderNumber"`
	ProductIDs  []int64 `json:"productIds"`
	TotalPrice  float64 `json:"totalPrice"`
}

func newOrderResponse(o *domain.Order) OrderResponse {
	productIDs := o.ProductIDs
	if productIDs == nil {
		productIDs = []int64{}
	}
	return OrderResponse{
		UserID:      o.UserID,
		OrderNumber: o.OrderNumber,
		ProductIDs:  productIDs,
		TotalPrice:  o.TotalPrice,
	}
}

// OrderHandler handles the order service's HTTP endpoints
type OrderHandler struct {
	orders *service.OrderService
	tokens *auth.TokenAuthority
	audit  *audit.Logger
	logger *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *service.OrderService, tokens *auth.TokenAuthority, auditLog *audit.Logger, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OrderHandler{
		orders: orders,
		tokens: tokens,
		audit:  auditLog,
		logger: logger,
	}
}

// Create handles POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode create order request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	order, err := h.orders.Create(r.Context(), req.UserID, req.ProductIDs, req.TotalPrice)
	if err != nil {
		writeError(w, err)
		return
	}

	if h.audit != nil {
		h.audit.LogOrderCreation(r.Context(), order.UserID, order.OrderNumber)
	}
	writeJSON(w, http.StatusCreated, newOrderResponse(order))
}

// ListMine handles GET /orders. The owner is derived from the bearer token
// itself, never from a caller-supplied parameter, so a caller can only ever
// list their own orders.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	token, err := auth.ExtractToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, err)
		return
	}

	subjectID, err := h.tokens.Verify(token)
	if err != nil {
		writeError(w, err)
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), subjectID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, newOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}
