package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brewedawakening/commerce/internal/security/audit"
	"github.com/brewedawakening/commerce/internal/security/auth"
	"github.com/brewedawakening/commerce/internal/service"
)

// CreateUserRequest is the registration payload
type CreateUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UserResponse is the profile representation returned to clients. The
// password hash is not part of this type, so it can never be serialized.
type UserResponse struct {
	UserID    string          `json:"userId"`
	Username  string          `json:"username"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	Orders    []OrderResponse `json:"orders,omitempty"`
}

// UserHandler handles the user service's HTTP endpoints
type UserHandler struct {
	users    *service.UserService
	profiles *service.ProfileService
	tokens   *auth.TokenAuthority
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	users *service.UserService,
	profiles *service.ProfileService,
	tokens *auth.TokenAuthority,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserHandler{
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		audit:    auditLog,
		logger:   logger,
	}
}

// Create handles POST /users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode create user request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("user created", slog.String("user_id", user.ID))
	writeJSON(w, http.StatusCreated, UserResponse{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// GetUserID handles GET /users/get-user/{username}. It resolves a username
// to the user's identifier and answers 202 with the bare id string.
func (h *UserHandler) GetUserID(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(user.ID))
}

// GetProfile handles GET /users/{userId}?fields=orders. Token verification
// and the ownership check happen inside the profile service, strictly
// before any profile data is loaded.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	token, err := auth.ExtractToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID, token, r.URL.Query().Get("fields"))
	if err != nil {
		if h.audit != nil {
			h.audit.LogDenied(r.Context(), userID, err.Error())
		}
		writeError(w, err)
		return
	}

	resp := UserResponse{
		UserID:    profile.UserID,
		Username:  profile.Username,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	}
	if profile.Orders != nil {
		resp.Orders = make([]OrderResponse, 0, len(profile.Orders))
		for _, o := range profile.Orders {
			resp.Orders = append(resp.Orders, newOrderResponse(o))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /users/{userId}. Only the account owner may delete.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

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

	if err := h.users.Delete(r.Context(), subjectID, userID); err != nil {
		if h.audit != nil {
			h.audit.LogDenied(r.Context(), subjectID, err.Error())
		}
		writeError(w, err)
		return
	}

	if h.audit != nil {
		h.audit.LogUserDeletion(r.Context(), subjectID, userID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /users for authenticated callers
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	token, err := auth.ExtractToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.tokens.Verify(token); err != nil {
		writeError(w, err)
		return
	}

	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserResponse{
			UserID:    u.ID,
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
