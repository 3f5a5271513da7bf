package domain

import "time"

// AuditLog is one recorded change or login attempt.
type AuditLog struct {
	ID string
	// UserID is "" for anonymous requests such as a failed login.
	UserID   string
	Action   string
	Resource string
	// ResourceID is the path id of the affected record, or "".
	ResourceID string
	StatusCode int
	IP         string
	// Metadata is a JSON document; "" when absent.
	Metadata  string
	CreatedAt time.Time
}
