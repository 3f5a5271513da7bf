// Package domain holds the types of the savings reports: query scope, window, the
// read-only rows the aggregator joins, and the resulting aggregate.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Scope is the level of the client hierarchy an aggregate is computed for.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeClient  Scope = "client"
)

// Window is the inclusive [Start, End] range that filters telemetry entry dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether Start is not after End.
func (w Window) Valid() bool {
	return !w.Start.After(w.End)
}

// Contains reports whether t lies in the window, boundaries included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Query asks for the savings of one project or client within a window.
type Query struct {
	Scope   Scope
	ScopeID uuid.UUID
	Window  Window
}

// TelemetryRow is the part of a job telemetry record the aggregator reads.
type TelemetryRow struct {
	ID        int64
	ProcessID *int64
	EntryDate time.Time
	HumanTime *int
}

// ProcessRow links a process to its project.
type ProcessRow struct {
	ID        int64
	ProjectID uuid.UUID
}

// ProjectRow links a project to its client.
type ProjectRow struct {
	ID       uuid.UUID
	ClientID uuid.UUID
}

// Snapshot is a consistent read of the rows needed to attribute telemetry to a scope.
// Readers may return a superset of the relevant rows; the aggregator filters.
type Snapshot struct {
	Telemetry []TelemetryRow
	Processes []ProcessRow
	Projects  []ProjectRow
}

// Aggregate is the reduced savings for one scope and window.
// TotalCostSaved is always zero: job telemetry carries no cost field.
type Aggregate struct {
	Scope          Scope
	ScopeID        uuid.UUID
	TotalTimeSaved int64
	TotalCostSaved float64
	// Records is the number of telemetry records that contributed.
	Records int
}
