package ports

import (
	"context"

	"github.com/avasiliev/docstream/internal/core/domain"
)

// DocumentRegistrar talks to the ingest side of the document-search backend.
type DocumentRegistrar interface {
	RegisterRemote(ctx context.Context, documents []domain.RemoteDocument) (*domain.IngestJob, error)
	ProcessingStatus(ctx context.Context, processID string) (*domain.IngestJob, error)
}

// FileUploader moves one local file to a presigned target and returns the
// canonical (query-stripped) URL the backend can fetch it from.
type FileUploader interface {
	Upload(ctx context.Context, endpoint, filePath string) (string, error)
}

// FileSplitter expands one local path into the files actually uploaded: the
// path itself, its split fragments, or nothing when the type is unsupported.
type FileSplitter interface {
	Expand(path string) ([]string, error)
}

// ProgressReporter receives fractional per-file progress from an ingest call.
type ProgressReporter interface {
	Begin(total float64)
	Advance(delta float64)
}

// ContentSearcher retrieves the best-matching passage of a document.
type ContentSearcher interface {
	Content(ctx context.Context, documentID int, query string) (*domain.SearchResult, error)
}

// CompletionModel generates an answer from a system instruction and a user
// message.
type CompletionModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// IngestJobStore persists registration-call bookkeeping.
type IngestJobStore interface {
	Record(ctx context.Context, rec *domain.IngestJobRecord) error
	UpdateStatus(ctx context.Context, processID string, status domain.IngestStatus) error
	GetByProcessID(ctx context.Context, processID string) (*domain.IngestJobRecord, error)
}

// EventPublisher announces completed ingestion jobs to downstream consumers.
type EventPublisher interface {
	PublishIngestCompleted(ctx context.Context, processID string) error
}
