package repository

import (
	"context"

	"github.com/google/uuid"

	"techtrends/backend/internal/project/domain"
)

// Repository defines persistence for projects.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Project, error)
	Create(ctx context.Context, p *domain.Project) error
}
