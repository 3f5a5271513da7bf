package repository

import (
	"context"

	"techtrends/backend/internal/jobtelemetry/domain"
)

// Repository defines persistence for job telemetry records.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.JobTelemetry, error)
	List(ctx context.Context) ([]*domain.JobTelemetry, error)
	// Create persists t and sets t.ID.
	Create(ctx context.Context, t *domain.JobTelemetry) error
	// Update replaces the record with t.ID. Returns false if no such record exists.
	Update(ctx context.Context, t *domain.JobTelemetry) (bool, error)
	// Delete removes the record. Returns false if no such record exists.
	Delete(ctx context.Context, id int64) (bool, error)
}
