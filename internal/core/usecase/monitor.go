package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/avasiliev/docstream/internal/core/domain"
	"github.com/avasiliev/docstream/internal/core/ports"
)

// statusMonitor polls one registration call until its job leaves the
// queued/processing states. It owns the set of document ids already counted
// toward progress: the backend's complete sub-group is cumulative across
// polls, so a document must only ever contribute its completion increment
// once. A monitor instance serves exactly one wait call.
type statusMonitor struct {
	registrar ports.DocumentRegistrar
	interval  time.Duration
	reporter  ports.ProgressReporter
	counted   map[string]struct{}
}

func newStatusMonitor(registrar ports.DocumentRegistrar, interval time.Duration, reporter ports.ProgressReporter) *statusMonitor {
	if reporter == nil {
		reporter = noopReporter{}
	}
	return &statusMonitor{
		registrar: registrar,
		interval:  interval,
		reporter:  reporter,
		counted:   make(map[string]struct{}),
	}
}

// wait blocks until the job reaches a terminal status, advancing progress by
// three quarters of a unit for every document newly observed in a terminal
// per-document state. A failed poll is never retried; it propagates as-is.
func (m *statusMonitor) wait(ctx context.Context, job *domain.IngestJob, remaining float64) (*domain.IngestJob, float64, error) {
	for job != nil && !job.Status.Terminal() {
		if err := sleepContext(ctx, m.interval); err != nil {
			return job, remaining, err
		}

		next, err := m.registrar.ProcessingStatus(ctx, job.ProcessID)
		if err != nil {
			return job, remaining, fmt.Errorf("poll ingest status: %w", err)
		}
		job = next
		remaining = m.recordProgress(job, remaining)
	}

	if job != nil && (job.Status == domain.StatusError || job.Status == domain.StatusCancelled) {
		return job, remaining, domain.WrapError(domain.ErrIngestFailed, "monitor ingest",
			fmt.Errorf("job finished with status %s", job.Status))
	}
	return job, remaining, nil
}

func (m *statusMonitor) recordProgress(job *domain.IngestJob, remaining float64) float64 {
	for _, group := range job.Progress.Groups() {
		if group == nil {
			continue
		}
		for _, doc := range group.Documents {
			if !doc.Status.Terminal() {
				continue
			}
			if _, seen := m.counted[doc.DocumentID]; seen {
				continue
			}
			m.counted[doc.DocumentID] = struct{}{}
			m.reporter.Advance(0.75)
			remaining -= 0.75
		}
	}
	return remaining
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
