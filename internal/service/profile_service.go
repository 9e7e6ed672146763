package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/brewedawakening/commerce/internal/client"
	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/internal/observability/metrics"
	"github.com/brewedawakening/commerce/internal/security"
	"github.com/brewedawakening/commerce/internal/security/auth"
)

// Profile is the assembled user-profile response. Orders is nil unless the
// caller asked for order enrichment and the fetch succeeded.
type Profile struct {
	UserID    string
	Username  string
	FirstName string
	LastName  string
	Orders    []*domain.Order
}

// ProfileService assembles profile responses, fanning out to the order
// service when the caller selects the orders field. The fan-out is
// best-effort: an upstream failure degrades the response (orders omitted)
// instead of failing it.
type ProfileService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenAuthority
	guard    *security.Guard
	orders   client.OrdersProvider
	logger   *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	userRepo domain.UserRepository,
	tokens *auth.TokenAuthority,
	guard *security.Guard,
	orders client.OrdersProvider,
	logger *slog.Logger,
) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProfileService{
		userRepo: userRepo,
		tokens:   tokens,
		guard:    guard,
		orders:   orders,
		logger:   logger,
	}
}

// GetProfile verifies the caller's token, enforces ownership of the
// requested profile, loads it, and optionally enriches it with the caller's
// orders. The ownership check runs strictly before any profile data is read.
func (s *ProfileService) GetProfile(ctx context.Context, requestedUserID, bearerToken, fields string) (*Profile, error) {
	subjectID, err := s.tokens.Verify(bearerToken)
	if err != nil {
		return nil, err
	}

	if err := s.guard.CheckOwnership(subjectID, requestedUserID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, requestedUserID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		UserID:    user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	if hasFieldSelector(fields, "orders") {
		orders, err := s.orders.FetchOrders(ctx, bearerToken)
		if err != nil {
			// Availability over completeness: the base profile is still
			// served when the order service is down or rejects the call.
			s.logger.Warn("order enrichment degraded",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
			metrics.ObserveEnrichment("degraded")
		} else {
			profile.Orders = orders
			metrics.ObserveEnrichment("ok")
		}
	}

	return profile, nil
}

// hasFieldSelector reports whether the comma-separated selector list names
// the given field. Matching is case-insensitive and unknown names are
// ignored rather than rejected.
func hasFieldSelector(fields, name string) bool {
	if fields == "" {
		return false
	}
	for _, f := range strings.Split(fields, ",") {
		if strings.EqualFold(strings.TrimSpace(f), name) {
			return true
		}
	}
	return false
}
