package repository

import (
	"context"
	"database/sql"
	"errors"

	"techtrends/backend/internal/jobtelemetry/domain"
)

const selectColumns = `id, process_id, job_id, queue_id, step_description, human_time,
	unique_reference, unique_reference_type, business_function, geography,
	exclude_from_time_saving, additional_info, entry_date`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a job telemetry repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the record for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.JobTelemetry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM job_telemetries WHERE id = $1`, id)
	t, err := scanTelemetry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// List returns every record ordered by id.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.JobTelemetry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM job_telemetries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.JobTelemetry
	for rows.Next() {
		t, err := scanTelemetry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create persists t and sets t.ID from the database sequence.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.JobTelemetry) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO job_telemetries (
			process_id, job_id, queue_id, step_description, human_time,
			unique_reference, unique_reference_type, business_function, geography,
			exclude_from_time_saving, additional_info, entry_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		nullInt64(t.ProcessID), nullString(t.JobID), nullString(t.QueueID), nullString(t.StepDescription),
		nullInt(t.HumanTime), nullString(t.UniqueReference), nullString(t.UniqueReferenceType),
		nullString(t.BusinessFunction), nullString(t.Geography), t.ExcludeFromTimeSaving,
		nullString(t.AdditionalInfo), t.EntryDate,
	).Scan(&t.ID)
}

// Update replaces every column of the record with t.ID.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.JobTelemetry) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE job_telemetries SET
			process_id = $2, job_id = $3, queue_id = $4, step_description = $5, human_time = $6,
			unique_reference = $7, unique_reference_type = $8, business_function = $9, geography = $10,
			exclude_from_time_saving = $11, additional_info = $12, entry_date = $13
		WHERE id = $1`,
		t.ID, nullInt64(t.ProcessID), nullString(t.JobID), nullString(t.QueueID), nullString(t.StepDescription),
		nullInt(t.HumanTime), nullString(t.UniqueReference), nullString(t.UniqueReferenceType),
		nullString(t.BusinessFunction), nullString(t.Geography), t.ExcludeFromTimeSaving,
		nullString(t.AdditionalInfo), t.EntryDate,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the record for id.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM job_telemetries WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTelemetry(s scanner) (*domain.JobTelemetry, error) {
	var (
		t                                                  domain.JobTelemetry
		processID                                          sql.NullInt64
		humanTime                                          sql.NullInt32
		jobID, queueID, step, ref, refType, fn, geo, extra sql.NullString
		exclude                                            sql.NullBool
	)
	if err := s.Scan(&t.ID, &processID, &jobID, &queueID, &step, &humanTime,
		&ref, &refType, &fn, &geo, &exclude, &extra, &t.EntryDate); err != nil {
		return nil, err
	}
	if processID.Valid {
		id := processID.Int64
		t.ProcessID = &id
	}
	if humanTime.Valid {
		h := int(humanTime.Int32)
		t.HumanTime = &h
	}
	t.JobID = jobID.String
	t.QueueID = queueID.String
	t.StepDescription = step.String
	t.UniqueReference = ref.String
	t.UniqueReferenceType = refType.String
	t.BusinessFunction = fn.String
	t.Geography = geo.String
	t.ExcludeFromTimeSaving = exclude.Bool
	t.AdditionalInfo = extra.String
	t.EntryDate = t.EntryDate.UTC()
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt32 {
	if p == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*p), Valid: true}
}
