// Package service computes the savings reports: it joins job telemetry through
// process and project to a client, filters by scope and window, and sums the time saved.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"techtrends/backend/internal/savings/domain"
	"techtrends/backend/internal/savings/repository"
)

// Sentinel errors for the aggregator; the handler maps them to HTTP status codes.
var (
	ErrInvalidRange = errors.New("start date cannot be after end date")
	ErrNotFound     = errors.New("no data found for the given parameters")
	// ErrInternal hides store failures from callers; the cause is logged.
	ErrInternal = errors.New("error retrieving savings data")
)

// Aggregator computes savings aggregates. It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	reader repository.Reader
	tracer trace.Tracer
}

// NewAggregator returns an Aggregator reading from reader.
func NewAggregator(reader repository.Reader) *Aggregator {
	return &Aggregator{
		reader: reader,
		tracer: otel.Tracer("techtrends/savings"),
	}
}

// AggregateByProject returns the time saved by telemetry of projectID's processes with an entry date in [start, end].
func (a *Aggregator) AggregateByProject(ctx context.Context, projectID uuid.UUID, start, end time.Time) (*domain.Aggregate, error) {
	return a.Aggregate(ctx, domain.Query{
		Scope:   domain.ScopeProject,
		ScopeID: projectID,
		Window:  domain.Window{Start: start, End: end},
	})
}

// AggregateByClient returns the time saved by telemetry of every project owned by clientID with an entry date in [start, end].
func (a *Aggregator) AggregateByClient(ctx context.Context, clientID uuid.UUID, start, end time.Time) (*domain.Aggregate, error) {
	return a.Aggregate(ctx, domain.Query{
		Scope:   domain.ScopeClient,
		ScopeID: clientID,
		Window:  domain.Window{Start: start, End: end},
	})
}

// Aggregate runs q. Returns ErrInvalidRange without reading when the window is inverted,
// ErrNotFound when no telemetry matches, and ErrInternal when the store fails.
func (a *Aggregator) Aggregate(ctx context.Context, q domain.Query) (*domain.Aggregate, error) {
	if !q.Window.Valid() {
		return nil, ErrInvalidRange
	}
	if q.Scope != domain.ScopeProject && q.Scope != domain.ScopeClient {
		return nil, ErrInternal
	}

	ctx, span := a.tracer.Start(ctx, "savings.Aggregate",
		trace.WithAttributes(
			attribute.String("savings.scope", string(q.Scope)),
			attribute.String("savings.scope_id", q.ScopeID.String()),
			attribute.String("savings.start", q.Window.Start.UTC().Format(time.RFC3339)),
			attribute.String("savings.end", q.Window.End.UTC().Format(time.RFC3339)),
		))
	defer span.End()

	snap, err := a.reader.Load(ctx, q)
	if err != nil {
		log.Printf("savings: load %s %s: %v", q.Scope, q.ScopeID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, ErrInternal
	}

	groups := reduce(snap, q)
	agg, ok := groups[q.ScopeID]
	if !ok {
		span.SetAttributes(attribute.Int("savings.records", 0))
		return nil, ErrNotFound
	}
	span.SetAttributes(
		attribute.Int("savings.records", agg.Records),
		attribute.Int64("savings.total_time_saved", agg.TotalTimeSaved),
	)
	return agg, nil
}

// reduce joins telemetry to q's scope level, keeps rows for q.ScopeID inside the window,
// and sums them per scope id. Rows whose process or project cannot be resolved are dropped.
func reduce(snap *domain.Snapshot, q domain.Query) map[uuid.UUID]*domain.Aggregate {
	processProject := make(map[int64]uuid.UUID, len(snap.Processes))
	for _, p := range snap.Processes {
		processProject[p.ID] = p.ProjectID
	}
	var projectClient map[uuid.UUID]uuid.UUID
	if q.Scope == domain.ScopeClient {
		projectClient = make(map[uuid.UUID]uuid.UUID, len(snap.Projects))
		for _, p := range snap.Projects {
			projectClient[p.ID] = p.ClientID
		}
	}

	groups := make(map[uuid.UUID]*domain.Aggregate)
	for _, t := range snap.Telemetry {
		scopeID, ok := resolve(t, q.Scope, processProject, projectClient)
		if !ok || scopeID != q.ScopeID {
			continue
		}
		if !q.Window.Contains(t.EntryDate) {
			continue
		}
		agg, ok := groups[scopeID]
		if !ok {
			agg = &domain.Aggregate{Scope: q.Scope, ScopeID: scopeID}
			groups[scopeID] = agg
		}
		agg.Records++
		if t.HumanTime != nil {
			agg.TotalTimeSaved += int64(*t.HumanTime)
		}
	}
	return groups
}

// resolve walks telemetry → process → project (→ client) and returns the id at scope's level.
func resolve(t domain.TelemetryRow, scope domain.Scope, processProject map[int64]uuid.UUID, projectClient map[uuid.UUID]uuid.UUID) (uuid.UUID, bool) {
	if t.ProcessID == nil {
		return uuid.Nil, false
	}
	projectID, ok := processProject[*t.ProcessID]
	if !ok {
		return uuid.Nil, false
	}
	if scope == domain.ScopeProject {
		return projectID, true
	}
	clientID, ok := projectClient[projectID]
	return clientID, ok
}
