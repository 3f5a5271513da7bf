package repository

import (
	"context"
	"database/sql"

	"techtrends/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, resource, resource_id, status_code, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, nullString(a.UserID), a.Action, a.Resource, nullString(a.ResourceID), a.StatusCode, a.IP,
		nullString(a.Metadata), a.CreatedAt,
	)
	return err
}

// List returns audit logs newest first, paginated by limit and offset.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, action, resource, resource_id, status_code, ip, metadata, created_at
		 FROM audit_logs ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var userID, resID, metadata sql.NullString
		if err := rows.Scan(&a.ID, &userID, &a.Action, &a.Resource, &resID, &a.StatusCode, &a.IP, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.UserID, a.ResourceID, a.Metadata = userID.String, resID.String, metadata.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
