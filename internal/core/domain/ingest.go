package domain

import "time"

type IngestStatus string

const (
	StatusQueued     IngestStatus = "queued"
	StatusProcessing IngestStatus = "processing"
	StatusComplete   IngestStatus = "complete"
	StatusError      IngestStatus = "error"
	StatusCancelled  IngestStatus = "cancelled"
)

// Terminal reports whether the status ends the lifecycle of a job or of a
// single document within a job.
func (s IngestStatus) Terminal() bool {
	switch s {
	case StatusComplete, StatusError, StatusCancelled:
		return true
	default:
		return false
	}
}

// Batch bounds enforced by the orchestrator. A batch is sealed once the next
// candidate would exceed either bound.
const (
	MinBatchSize      = 1
	MaxBatchSize      = 50
	MaxBatchSizeBytes = 50 * 1024 * 1024
)

// ClampBatchSize maps a requested batch size into [MinBatchSize, MaxBatchSize].
func ClampBatchSize(n int) int {
	if n < MinBatchSize {
		return MinBatchSize
	}
	if n > MaxBatchSize {
		return MaxBatchSize
	}
	return n
}

// DocumentProgress is one per-document status entry in a job progress snapshot.
type DocumentProgress struct {
	DocumentID string       `json:"document_id"`
	FileName   string       `json:"file_name,omitempty"`
	Status     IngestStatus `json:"status"`
}

type ProgressGroup struct {
	Documents []DocumentProgress `json:"documents,omitempty"`
}

// IngestProgress partitions per-document statuses into the four sub-groups
// reported by the backend. The complete group is cumulative across polls.
type IngestProgress struct {
	Processing *ProgressGroup `json:"processing,omitempty"`
	Complete   *ProgressGroup `json:"complete,omitempty"`
	Cancelled  *ProgressGroup `json:"cancelled,omitempty"`
	Errors     *ProgressGroup `json:"errors,omitempty"`
}

// Groups returns the sub-groups in scan order; entries may be nil.
func (p *IngestProgress) Groups() []*ProgressGroup {
	if p == nil {
		return nil
	}
	return []*ProgressGroup{p.Processing, p.Complete, p.Cancelled, p.Errors}
}

// IngestJob is one in-flight registration call as last reported by the
// backend. Snapshots replace each other wholesale, they are never merged.
type IngestJob struct {
	ProcessID string          `json:"process_id"`
	Status    IngestStatus    `json:"status"`
	Progress  *IngestProgress `json:"progress,omitempty"`
}

// IngestJobRecord is the persisted bookkeeping row for a registration call.
type IngestJobRecord struct {
	ID            string       `json:"id"`
	ProcessID     string       `json:"process_id"`
	Status        IngestStatus `json:"status"`
	DocumentCount int          `json:"document_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
