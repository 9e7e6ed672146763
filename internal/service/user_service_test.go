package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/internal/security"
	"github.com/brewedawakening/commerce/internal/security/auth"
)

type memUserRepo struct {
	byID       map[string]*domain.User
	byUsername map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byUsername: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, u *domain.User) error {
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byUsername[u.Username] = u
	return nil
}
func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memUserRepo) Delete(_ context.Context, id string) error {
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(m.byUsername, u.Username)
	delete(m.byID, id)
	return nil
}
func (m *memUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

func newUserService(repo domain.UserRepository) *UserService {
	tokens := auth.NewTokenAuthority("test-secret", "test", time.Hour)
	return NewUserService(repo, tokens, security.NewGuard(nil), nil)
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newMemUserRepo()
	s := newUserService(repo)

	user, err := s.Register(context.Background(), "alice", "Password123", "Alice", "Appleton")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated user id")
	}
	if user.PasswordHash == "Password123" || user.PasswordHash == "" {
		t.Fatalf("plaintext password must never be stored")
	}

	// Original password verifies against the stored hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Password123")); err != nil {
		t.Fatalf("stored hash does not match original password: %v", err)
	}
	// Any other password fails
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Password124")); err == nil {
		t.Fatalf("expected mismatch for wrong password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newMemUserRepo()
	s := newUserService(repo)

	if _, err := s.Register(context.Background(), "alice", "Password123", "", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := s.Register(context.Background(), "alice", "Password456", "", "")
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for duplicate username, got %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	s := newUserService(newMemUserRepo())
	_, err := s.Register(context.Background(), "alice", "short", "", "")
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newMemUserRepo()
	s := newUserService(repo)

	reg, err := s.Register(context.Background(), "alice", "Password123", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, token, err := s.Authenticate(context.Background(), "alice", "Password123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if user.ID != reg.ID || token == "" {
		t.Fatalf("expected matching user and non-empty token")
	}

	if _, _, err := s.Authenticate(context.Background(), "alice", "Wrong12345"); err == nil {
		t.Fatalf("expected wrong password to fail")
	}
	if _, _, err := s.Authenticate(context.Background(), "nobody", "Password123"); err == nil {
		t.Fatalf("expected unknown user to fail")
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	repo := newMemUserRepo()
	s := newUserService(repo)

	reg, err := s.Register(context.Background(), "alice", "Password123", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := s.Delete(context.Background(), "someone-else", reg.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), reg.ID); err != nil {
		t.Fatalf("user must still exist after denied delete")
	}

	if err := s.Delete(context.Background(), reg.ID, reg.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), reg.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected user gone after delete")
	}
}
