// Package audit records an audit trail of API writes and login attempts.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"techtrends/backend/internal/audit/domain"
	auditrepo "techtrends/backend/internal/audit/repository"
)

// AuditLogger writes a single audit event. LogEvent is best-effort: failures are logged
// and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, entry Entry)
}

// Entry is the caller-supplied part of an audit log.
type Entry struct {
	UserID     string
	Action     string
	Resource   string
	ResourceID string
	StatusCode int
	IP         string
	Metadata   string
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, e Entry) {
	if l == nil || l.repo == nil {
		return
	}
	ip := e.IP
	if ip == "" {
		ip = "unknown"
	}
	entry := &domain.AuditLog{
		ID:         uuid.New().String(),
		UserID:     e.UserID,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		StatusCode: e.StatusCode,
		IP:         ip,
		Metadata:   e.Metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", e.Action, e.Resource, err)
	}
}
