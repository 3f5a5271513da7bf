package domain

import (
	"time"

	"github.com/google/uuid"
)

// Process is an automated process run under a project. Job telemetry references it by ID.
type Process struct {
	ID        int64
	ProjectID uuid.UUID
	Name      string
	CreatedAt time.Time
}
