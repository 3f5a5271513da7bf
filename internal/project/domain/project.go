package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project belongs to exactly one client.
type Project struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	Name      string
	CreatedAt time.Time
}
