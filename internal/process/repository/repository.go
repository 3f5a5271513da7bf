package repository

import (
	"context"

	"github.com/google/uuid"

	"techtrends/backend/internal/process/domain"
)

// Repository defines persistence for processes.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Process, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Process, error)
	Create(ctx context.Context, p *domain.Process) error
}
