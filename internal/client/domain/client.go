package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client owns zero or more projects.
type Client struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}
