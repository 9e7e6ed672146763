package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/brewedawakening/commerce/internal/observability/metrics"
	"github.com/brewedawakening/commerce/internal/security/audit"
	"github.com/brewedawakening/commerce/internal/security/auth"
	"github.com/brewedawakening/commerce/internal/service"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse contains the bearer token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
}

// LoginHandler handles user authentication
type LoginHandler struct {
	users  *service.UserService
	tokens *auth.TokenAuthority
	audit  *audit.Logger
	logger *slog.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(users *service.UserService, tokens *auth.TokenAuthority, auditLog *audit.Logger, logger *slog.Logger) *LoginHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &LoginHandler{
		users:  users,
		tokens: tokens,
		audit:  auditLog,
		logger: logger,
	}
}

// ServeHTTP handles POST /users/login requests
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode login request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "username and password required"})
		return
	}

	user, token, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		metrics.ObserveLogin("failure")
		// Generic error to prevent user enumeration
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	metrics.ObserveLogin("success")
	if h.audit != nil {
		h.audit.LogLogin(r.Context(), user.ID)
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokens.TTL()),
		UserID:    user.ID,
	})
}
