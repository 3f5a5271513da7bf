package repository

import (
	"context"

	"techtrends/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// List returns entries newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error)
}
