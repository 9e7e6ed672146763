package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/brewedawakening/commerce/internal/domain"
	"github.com/brewedawakening/commerce/internal/security"
	"github.com/brewedawakening/commerce/internal/security/auth"
)

// UserService handles account registration, authentication and deletion
type UserService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenAuthority
	guard    *security.Guard
	logger   *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo domain.UserRepository,
	tokens *auth.TokenAuthority,
	guard *security.Guard,
	logger *slog.Logger,
) *UserService {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		guard:    guard,
		logger:   logger,
	}
}

// Register creates a new user account. The plaintext password is hashed with
// bcrypt before anything is persisted and is never stored or returned.
func (s *UserService) Register(ctx context.Context, username, password, firstName, lastName string) (*domain.User, error) {
	if username == "" {
		return nil, domain.NewValidationError("username", "is required")
	}
	if len(password) < 8 {
		return nil, domain.NewValidationError("password", "must be at least 8 characters")
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, domain.NewValidationError("username", "is already taken")
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Authenticate verifies credentials and mints a bearer token for the user
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Info("login attempt for unknown username", slog.String("username", username))
		return nil, "", domain.ErrTokenInvalid
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("username", username))
		return nil, "", domain.ErrTokenInvalid
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error("failed to issue token",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// GetByUsername looks up a user by username
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// GetByID looks up a user by their immutable identifier
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns all users
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

// Delete removes a user account. Only the account owner may delete it; the
// ownership check runs before the record is touched.
func (s *UserService) Delete(ctx context.Context, subjectID, userID string) error {
	if err := s.guard.CheckOwnership(subjectID, userID); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.String("user_id", userID))
	return nil
}
