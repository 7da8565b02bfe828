package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/avasiliev/docstream/internal/core/domain"
)

func TestJobRepositoryRecordInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewJobRepository(db)
	now := time.Now().UTC()
	rec := &domain.IngestJobRecord{
		ID:            "job-1",
		ProcessID:     "proc-1",
		Status:        domain.StatusQueued,
		DocumentCount: 3,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectExec("INSERT INTO ingest_jobs").
		WithArgs("job-1", "proc-1", "queued", 3, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Record(context.Background(), rec); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestJobRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewJobRepository(db)
	mock.ExpectExec("UPDATE ingest_jobs").
		WithArgs("missing", "complete", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), "missing", domain.StatusComplete)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrJobNotFound) {
		t.Fatalf("expected job not found kind, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestJobRepositoryGetByProcessID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewJobRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "process_id", "status", "document_count", "created_at", "updated_at"}).
		AddRow("job-1", "proc-1", "processing", 5, now, now)

	mock.ExpectQuery("FROM ingest_jobs").
		WithArgs("proc-1").
		WillReturnRows(rows)

	rec, err := repo.GetByProcessID(context.Background(), "proc-1")
	if err != nil {
		t.Fatalf("GetByProcessID() error = %v", err)
	}
	if rec.Status != domain.StatusProcessing || rec.DocumentCount != 5 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestJobRepositoryGetByProcessIDMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewJobRepository(db)
	mock.ExpectQuery("FROM ingest_jobs").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "process_id", "status", "document_count", "created_at", "updated_at"}))

	_, err = repo.GetByProcessID(context.Background(), "missing")
	if err == nil || !domain.IsKind(err, domain.ErrJobNotFound) {
		t.Fatalf("expected job not found, got %v", err)
	}
}
