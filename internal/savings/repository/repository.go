package repository

import (
	"context"

	"techtrends/backend/internal/savings/domain"
)

// Reader is the read-only query surface the savings aggregator consumes.
type Reader interface {
	// Load returns, in one consistent read, the telemetry, process and project rows
	// needed to attribute telemetry to q's scope. It may narrow by q but need not.
	Load(ctx context.Context, q domain.Query) (*domain.Snapshot, error)
}
