package ports

import (
	"context"

	"github.com/avasiliev/docstream/internal/core/domain"
)

// IngestOptions tune one ingest call. The zero value means: default batch
// size, non-blocking registration, configured upload endpoint, no progress.
type IngestOptions struct {
	BatchSize       int
	WaitForComplete bool
	UploadAPI       string
	Progress        ProgressReporter
}

// DocumentIngestor is the inbound contract for batched document ingestion.
type DocumentIngestor interface {
	Ingest(ctx context.Context, documents []domain.Document, opts IngestOptions) (*domain.IngestJob, error)
	IngestDirectory(ctx context.Context, bucketID int, path string, opts IngestOptions) error
	Status(ctx context.Context, processID string) (*domain.IngestJob, error)
}

// ChatService is the inbound contract for document-grounded question
// answering.
type ChatService interface {
	Answer(ctx context.Context, documentID int, question string) (*domain.ChatAnswer, error)
}
