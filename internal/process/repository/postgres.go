package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"techtrends/backend/internal/process/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a process repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the process for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Process, error) {
	var p domain.Process
	err := r.db.QueryRowContext(ctx,
		`SELECT id, project_id, name, created_at FROM processes WHERE id = $1`, id,
	).Scan(&p.ID, &p.ProjectID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByProject returns the processes run under projectID.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Process, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, project_id, name, created_at FROM processes WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Process
	for rows.Next() {
		var p domain.Process
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Create persists the process. ID is assigned by the database and set on p.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Process) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO processes (project_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`,
		p.ProjectID, p.Name, p.CreatedAt,
	).Scan(&p.ID)
}
