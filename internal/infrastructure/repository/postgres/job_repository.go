package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/avasiliev/docstream/internal/core/domain"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *JobRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent api startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS ingest_jobs (
	id TEXT PRIMARY KEY,
	process_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL,
	document_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ingest_jobs_status ON ingest_jobs(status);
CREATE INDEX IF NOT EXISTS idx_ingest_jobs_created_at ON ingest_jobs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *JobRepository) Record(ctx context.Context, rec *domain.IngestJobRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO ingest_jobs (id, process_id, status, document_count, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (process_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
`,
		rec.ID, rec.ProcessID, string(rec.Status), rec.DocumentCount, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ingest job: %w", err)
	}
	return nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, processID string, status domain.IngestStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE ingest_jobs
SET status = $2, updated_at = $3
WHERE process_id = $1
`, processID, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update ingest job status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrJobNotFound, "update ingest job status", fmt.Errorf("process id: %s", processID))
	}
	return nil
}

func (r *JobRepository) GetByProcessID(ctx context.Context, processID string) (*domain.IngestJobRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, process_id, status, document_count, created_at, updated_at
FROM ingest_jobs
WHERE process_id = $1
`, processID)

	var rec domain.IngestJobRecord
	var status string
	err := row.Scan(&rec.ID, &rec.ProcessID, &status, &rec.DocumentCount, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get ingest job", fmt.Errorf("process id: %s", processID))
		}
		return nil, fmt.Errorf("scan ingest job: %w", err)
	}
	rec.Status = domain.IngestStatus(status)
	return &rec, nil
}
