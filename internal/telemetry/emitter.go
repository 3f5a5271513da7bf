// Package telemetry defines request-level events emitted to the OpenTelemetry log pipeline.
package telemetry

import (
	"context"
	"time"
)

// Event is one structured operational event (e.g. an HTTP request served).
type Event struct {
	EventType string
	Source    string
	UserID    string
	Role      string
	// Metadata is a JSON document carried as the log record body.
	Metadata  []byte
	CreatedAt time.Time
}

// EventEmitter emits telemetry events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
