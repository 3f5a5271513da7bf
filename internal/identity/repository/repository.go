package repository

import (
	"context"

	"techtrends/backend/internal/identity/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create persists u. Returns ErrUsernameTaken if the username exists.
	Create(ctx context.Context, u *domain.User) error
}
