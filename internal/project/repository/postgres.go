package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"techtrends/backend/internal/project/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a project repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the project for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, name, created_at FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.ClientID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByClient returns the projects owned by clientID.
func (r *PostgresRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, name, created_at FROM projects WHERE client_id = $1 ORDER BY name`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// Create persists the project. The project must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, client_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, p.ClientID, p.Name, p.CreatedAt,
	)
	return err
}
