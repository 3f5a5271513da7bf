package repository

import (
	"context"

	"github.com/google/uuid"

	"techtrends/backend/internal/client/domain"
)

// Repository defines persistence for clients.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
}
