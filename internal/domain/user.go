package domain

import (
	"context"
	"time"
)

// User represents a registered customer account
type User struct {
	ID           string // UUID, assigned at registration, immutable
	Username     string // Unique, used for lookup
	PasswordHash string // Bcrypt hashed password (never serialized in API responses)
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*User, error)
}
