package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/avasiliev/docstream/internal/core/domain"
)

func TestMonitorCountsEachDocumentOnce(t *testing.T) {
	// The complete sub-group is cumulative: d1 appears in every poll after it
	// finishes and must still contribute exactly one increment.
	registrar := &registrarFake{statusSeq: []*domain.IngestJob{
		{
			ProcessID: "proc-1",
			Status:    domain.StatusProcessing,
			Progress: &domain.IngestProgress{
				Complete:   &domain.ProgressGroup{Documents: []domain.DocumentProgress{{DocumentID: "d1", Status: domain.StatusComplete}}},
				Processing: &domain.ProgressGroup{Documents: []domain.DocumentProgress{{DocumentID: "d2", Status: domain.StatusProcessing}}},
			},
		},
		{
			ProcessID: "proc-1",
			Status:    domain.StatusProcessing,
			Progress: &domain.IngestProgress{
				Complete: &domain.ProgressGroup{Documents: []domain.DocumentProgress{
					{DocumentID: "d1", Status: domain.StatusComplete},
					{DocumentID: "d2", Status: domain.StatusComplete},
				}},
			},
		},
		{
			ProcessID: "proc-1",
			Status:    domain.StatusComplete,
			Progress: &domain.IngestProgress{
				Complete: &domain.ProgressGroup{Documents: []domain.DocumentProgress{
					{DocumentID: "d1", Status: domain.StatusComplete},
					{DocumentID: "d2", Status: domain.StatusComplete},
				}},
			},
		},
	}}

	reporter := &reporterFake{}
	monitor := newStatusMonitor(registrar, time.Millisecond, reporter)

	job := &domain.IngestJob{ProcessID: "proc-1", Status: domain.StatusQueued}
	final, remaining, err := monitor.wait(context.Background(), job, 1.5)
	if err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	if final.Status != domain.StatusComplete {
		t.Fatalf("expected complete job, got %s", final.Status)
	}
	if registrar.statusCalls != 3 {
		t.Fatalf("expected 3 polls, got %d", registrar.statusCalls)
	}
	if len(reporter.calls) != 2 {
		t.Fatalf("expected one increment per document, got %d", len(reporter.calls))
	}
	if math.Abs(reporter.advanced-1.5) > 1e-9 {
		t.Fatalf("expected 1.5 units advanced, got %v", reporter.advanced)
	}
	if math.Abs(remaining) > 1e-9 {
		t.Fatalf("expected zero remaining, got %v", remaining)
	}
}

func TestMonitorFailedJobRaises(t *testing.T) {
	registrar := &registrarFake{statusSeq: []*domain.IngestJob{
		{ProcessID: "proc-1", Status: domain.StatusError},
	}}
	monitor := newStatusMonitor(registrar, time.Millisecond, nil)

	job := &domain.IngestJob{ProcessID: "proc-1", Status: domain.StatusProcessing}
	_, _, err := monitor.wait(context.Background(), job, 1)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrIngestFailed) {
		t.Fatalf("expected ingest failed kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "status error") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestMonitorCancelledJobRaises(t *testing.T) {
	registrar := &registrarFake{statusSeq: []*domain.IngestJob{
		{ProcessID: "proc-1", Status: domain.StatusCancelled},
	}}
	monitor := newStatusMonitor(registrar, time.Millisecond, nil)

	job := &domain.IngestJob{ProcessID: "proc-1", Status: domain.StatusQueued}
	_, _, err := monitor.wait(context.Background(), job, 1)
	if err == nil || !domain.IsKind(err, domain.ErrIngestFailed) {
		t.Fatalf("expected ingest failed error, got %v", err)
	}
}

func TestMonitorPollErrorPropagates(t *testing.T) {
	registrar := &registrarFake{statusErr: errors.New("poll boom")}
	monitor := newStatusMonitor(registrar, time.Millisecond, nil)

	job := &domain.IngestJob{ProcessID: "proc-1", Status: domain.StatusQueued}
	_, _, err := monitor.wait(context.Background(), job, 1)
	if err == nil || !strings.Contains(err.Error(), "poll ingest status") {
		t.Fatalf("expected poll error, got %v", err)
	}
}

func TestMonitorContextCancel(t *testing.T) {
	registrar := &registrarFake{statusSeq: []*domain.IngestJob{
		{ProcessID: "proc-1", Status: domain.StatusProcessing},
	}}
	monitor := newStatusMonitor(registrar, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := &domain.IngestJob{ProcessID: "proc-1", Status: domain.StatusQueued}
	_, _, err := monitor.wait(ctx, job, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestMonitorTerminalJobNeedsNoPoll(t *testing.T) {
	registrar := &registrarFake{}
	monitor := newStatusMonitor(registrar, time.Millisecond, nil)

	job := &domain.IngestJob{ProcessID: "proc-1", Status: domain.StatusComplete}
	final, _, err := monitor.wait(context.Background(), job, 0)
	if err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	if final != job {
		t.Fatalf("terminal job must be returned as-is")
	}
	if registrar.statusCalls != 0 {
		t.Fatalf("no polls expected, got %d", registrar.statusCalls)
	}
}
