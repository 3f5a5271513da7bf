package repository

import (
	"context"
	"database/sql"
	"fmt"

	"techtrends/backend/internal/savings/domain"
)

// PostgresReader loads savings snapshots from Postgres inside one read-only,
// repeatable-read transaction so the three reads see the same data.
type PostgresReader struct {
	db *sql.DB
}

// NewPostgresReader returns a Reader backed by db.
func NewPostgresReader(db *sql.DB) *PostgresReader {
	return &PostgresReader{db: db}
}

// processScope returns the subquery selecting process ids under q's scope; $1 is the scope id.
func processScope(scope domain.Scope) (string, error) {
	switch scope {
	case domain.ScopeProject:
		return `SELECT id FROM processes WHERE project_id = $1`, nil
	case domain.ScopeClient:
		return `SELECT pr.id FROM processes pr JOIN projects p ON p.id = pr.project_id WHERE p.client_id = $1`, nil
	default:
		return "", fmt.Errorf("savings: unknown scope %q", scope)
	}
}

// Load narrows every read to q's scope and window.
func (r *PostgresReader) Load(ctx context.Context, q domain.Query) (*domain.Snapshot, error) {
	processIDs, err := processScope(q.Scope)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	snap := &domain.Snapshot{}

	if q.Scope == domain.ScopeClient {
		rows, err := tx.QueryContext(ctx, `SELECT id, client_id FROM projects WHERE client_id = $1`, q.ScopeID)
		if err != nil {
			return nil, fmt.Errorf("load projects: %w", err)
		}
		for rows.Next() {
			var p domain.ProjectRow
			if err := rows.Scan(&p.ID, &p.ClientID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan project: %w", err)
			}
			snap.Projects = append(snap.Projects, p)
		}
		if err := closeRows(rows); err != nil {
			return nil, fmt.Errorf("load projects: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, project_id FROM processes WHERE id IN (`+processIDs+`)`, q.ScopeID)
	if err != nil {
		return nil, fmt.Errorf("load processes: %w", err)
	}
	for rows.Next() {
		var p domain.ProcessRow
		if err := rows.Scan(&p.ID, &p.ProjectID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan process: %w", err)
		}
		snap.Processes = append(snap.Processes, p)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("load processes: %w", err)
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT id, process_id, entry_date, human_time
		FROM job_telemetries
		WHERE process_id IN (`+processIDs+`)
		  AND entry_date >= $2 AND entry_date <= $3`,
		q.ScopeID, q.Window.Start, q.Window.End,
	)
	if err != nil {
		return nil, fmt.Errorf("load telemetry: %w", err)
	}
	for rows.Next() {
		var (
			t         domain.TelemetryRow
			processID sql.NullInt64
			humanTime sql.NullInt32
		)
		if err := rows.Scan(&t.ID, &processID, &t.EntryDate, &humanTime); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan telemetry: %w", err)
		}
		if processID.Valid {
			id := processID.Int64
			t.ProcessID = &id
		}
		if humanTime.Valid {
			h := int(humanTime.Int32)
			t.HumanTime = &h
		}
		snap.Telemetry = append(snap.Telemetry, t)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("load telemetry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return snap, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
