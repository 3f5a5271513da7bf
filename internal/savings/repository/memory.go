package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"techtrends/backend/internal/savings/domain"
)

// MemoryStore is an in-memory Reader. It returns every row it holds and leaves
// joining and filtering to the aggregator. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	telemetry []domain.TelemetryRow
	processes []domain.ProcessRow
	projects  []domain.ProjectRow
	nextID    int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddProject records that project belongs to client.
func (m *MemoryStore) AddProject(project, client uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = append(m.projects, domain.ProjectRow{ID: project, ClientID: client})
}

// AddProcess records that process id runs under project.
func (m *MemoryStore) AddProcess(id int64, project uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processes = append(m.processes, domain.ProcessRow{ID: id, ProjectID: project})
}

// AddTelemetry stores a telemetry row, assigning an ID when t.ID is zero, and returns the ID.
func (m *MemoryStore) AddTelemetry(t domain.TelemetryRow) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		m.nextID++
		t.ID = m.nextID
	}
	m.telemetry = append(m.telemetry, t)
	return t.ID
}

// Load returns a copy of every stored row.
func (m *MemoryStore) Load(ctx context.Context, q domain.Query) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &domain.Snapshot{
		Telemetry: append([]domain.TelemetryRow(nil), m.telemetry...),
		Processes: append([]domain.ProcessRow(nil), m.processes...),
		Projects:  append([]domain.ProjectRow(nil), m.projects...),
	}, nil
}
