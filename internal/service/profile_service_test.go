package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/internal/security"
	"github.com/brewedawakening/commerce/internal/security/auth"
)

// stubOrdersProvider is the LocalStub variant of OrdersProvider
type stubOrdersProvider struct {
	orders []*domain.Order
	err    error
	calls  int
}

func (s *stubOrdersProvider) FetchOrders(_ context.Context, _ string) ([]*domain.Order, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.orders, nil
}

func profileFixture(t *testing.T, orders *stubOrdersProvider) (*ProfileService, *auth.TokenAuthority, *domain.User) {
	t.Helper()
	repo := newMemUserRepo()
	user := &domain.User{ID: "u-1", Username: "alice", PasswordHash: "x", FirstName: "Alice"}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	tokens := auth.NewTokenAuthority("test-secret", "test", time.Hour)
	svc := NewProfileService(repo, tokens, security.NewGuard(nil), orders, nil)
	return svc, tokens, user
}

func TestGetProfileWithOrders(t *testing.T) {
	orders := &stubOrdersProvider{orders: []*domain.Order{
		{OrderNumber: "ord-1", UserID: "u-1", ProductIDs: []int64{7, 9}, TotalPrice: 12.50},
	}}
	svc, tokens, _ := profileFixture(t, orders)

	token, _ := tokens.Issue("u-1")
	profile, err := svc.GetProfile(context.Background(), "u-1", token, "orders")
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}

	if profile.Username != "alice" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if len(profile.Orders) != 1 || profile.Orders[0].OrderNumber != "ord-1" {
		t.Fatalf("expected order attached, got %+v", profile.Orders)
	}
	if orders.calls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", orders.calls)
	}
}

func TestGetProfileWithoutSelectorSkipsFetch(t *testing.T) {
	orders := &stubOrdersProvider{}
	svc, tokens, _ := profileFixture(t, orders)

	token, _ := tokens.Issue("u-1")
	profile, err := svc.GetProfile(context.Background(), "u-1", token, "")
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if profile.Orders != nil {
		t.Fatalf("expected no orders without selector")
	}
	if orders.calls != 0 {
		t.Fatalf("order service must not be called without selector")
	}
}

func TestGetProfileSelectorCaseInsensitive(t *testing.T) {
	orders := &stubOrdersProvider{orders: []*domain.Order{}}
	svc, tokens, _ := profileFixture(t, orders)

	token, _ := tokens.Issue("u-1")
	profile, err := svc.GetProfile(context.Background(), "u-1", token, "addresses, ORDERS")
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if orders.calls != 1 {
		t.Fatalf("expected fetch for mixed-case selector")
	}
	// Zero orders is an empty collection, not an error
	if profile.Orders == nil || len(profile.Orders) != 0 {
		t.Fatalf("expected empty orders collection, got %v", profile.Orders)
	}
}

func TestGetProfileUnknownSelectorsIgnored(t *testing.T) {
	orders := &stubOrdersProvider{}
	svc, tokens, _ := profileFixture(t, orders)

	token, _ := tokens.Issue("u-1")
	if _, err := svc.GetProfile(context.Background(), "u-1", token, "albums,payments"); err != nil {
		t.Fatalf("unknown selectors must be ignored, got %v", err)
	}
	if orders.calls != 0 {
		t.Fatalf("unknown selectors must not trigger a fetch")
	}
}

func TestGetProfileDegradesOnClientError(t *testing.T) {
	orders := &stubOrdersProvider{err: domain.ErrUpstreamUnreachable}
	svc, tokens, _ := profileFixture(t, orders)

	token, _ := tokens.Issue("u-1")
	profile, err := svc.GetProfile(context.Background(), "u-1", token, "orders")
	if err != nil {
		t.Fatalf("enrichment failure must not fail the request, got %v", err)
	}
	if profile.UserID != "u-1" || profile.Orders != nil {
		t.Fatalf("expected base profile with absent orders, got %+v", profile)
	}
}

func TestGetProfileDegradesOnUpstreamStatus(t *testing.T) {
	orders := &stubOrdersProvider{err: &domain.ClientError{Status: 503}}
	svc, tokens, _ := profileFixture(t, orders)

	token, _ := tokens.Issue("u-1")
	profile, err := svc.GetProfile(context.Background(), "u-1", token, "orders")
	if err != nil {
		t.Fatalf("upstream status must not fail the request, got %v", err)
	}
	if profile.Orders != nil {
		t.Fatalf("expected absent orders on upstream failure")
	}
}

func TestGetProfileForbiddenBeforeLoad(t *testing.T) {
	orders := &stubOrdersProvider{}
	svc, tokens, _ := profileFixture(t, orders)

	token, _ := tokens.Issue("u-2")
	profile, err := svc.GetProfile(context.Background(), "u-1", token, "orders")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if profile != nil {
		t.Fatalf("no profile data may leak on a denied request")
	}
	if orders.calls != 0 {
		t.Fatalf("denied request must not reach the order service")
	}
}

func TestGetProfileInvalidToken(t *testing.T) {
	svc, _, _ := profileFixture(t, &stubOrdersProvider{})

	_, err := svc.GetProfile(context.Background(), "u-1", "garbage", "")
	if !domain.IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestGetProfileExpiredToken(t *testing.T) {
	orders := &stubOrdersProvider{}
	repo := newMemUserRepo()
	repo.Create(context.Background(), &domain.User{ID: "u-1", Username: "alice"})
	expired := auth.NewTokenAuthority("test-secret", "test", -time.Minute)
	verifier := auth.NewTokenAuthority("test-secret", "test", time.Hour)
	svc := NewProfileService(repo, verifier, security.NewGuard(nil), orders, nil)

	token, _ := expired.Issue("u-1")
	_, err := svc.GetProfile(context.Background(), "u-1", token, "")
	if !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected expired token error, got %v", err)
	}
}

func TestGetProfileUserMissing(t *testing.T) {
	orders := &stubOrdersProvider{}
	repo := newMemUserRepo()
	tokens := auth.NewTokenAuthority("test-secret", "test", time.Hour)
	svc := NewProfileService(repo, tokens, security.NewGuard(nil), orders, nil)

	token, _ := tokens.Issue("u-9")
	_, err := svc.GetProfile(context.Background(), "u-9", token, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHasFieldSelector(t *testing.T) {
	cases := []struct {
		fields string
		want   bool
	}{
		{"orders", true},
		{"Orders", true},
		{" ORDERS ", true},
		{"albums,orders", true},
		{"albums, orders ", true},
		{"albums", false},
		{"", false},
		{"ordersx", false},
	}
	for _, tc := range cases {
		if got := hasFieldSelector(tc.fields, "orders"); got != tc.want {
			t.Errorf("hasFieldSelector(%q) = %v, want %v", tc.fields, got, tc.want)
		}
	}
}
