// Package httpadapter exposes the ingestion pipeline and the chat service
// over HTTP.
package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avasiliev/docstream/internal/core/domain"
	"github.com/avasiliev/docstream/internal/core/ports"
	"github.com/avasiliev/docstream/internal/observability/metrics"
)

const serviceName = "docstream-api"

type Router struct {
	ingestor ports.DocumentIngestor
	chat     ports.ChatService
	jobs     ports.IngestJobStore
	events   ports.EventPublisher
	metrics  *metrics.HTTPServerMetrics

	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
	overloadWait   time.Duration
}

type RouterOption func(*Router)

func WithRateLimit(rps float64, burst int) RouterOption {
	return func(rt *Router) {
		rt.rateLimitRPS = rps
		rt.rateLimitBurst = burst
	}
}

func WithBackpressure(maxInFlight int, wait time.Duration) RouterOption {
	return func(rt *Router) {
		rt.maxInFlight = maxInFlight
		rt.overloadWait = wait
	}
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	chat ports.ChatService,
	jobs ports.IngestJobStore,
	events ports.EventPublisher,
	m *metrics.HTTPServerMetrics,
	opts ...RouterOption,
) *Router {
	rt := &Router{
		ingestor: ingestor,
		chat:     chat,
		jobs:     jobs,
		events:   events,
		metrics:  m,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ingest", rt.ingest)
	mux.HandleFunc("/v1/ingest/", rt.ingestStatus)
	mux.HandleFunc("/v1/chat", rt.chatAnswer)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, rt.overloadWait)
	}
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type ingestRequest struct {
	Documents       []domain.Document `json:"documents"`
	BatchSize       int               `json:"batch_size,omitempty"`
	WaitForComplete bool              `json:"wait_for_complete,omitempty"`
}

func (rt *Router) ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.Documents) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "documents are required"})
		return
	}

	mode := "async"
	if req.WaitForComplete {
		mode = "sync"
	}

	start := time.Now()
	job, err := rt.ingestor.Ingest(r.Context(), req.Documents, ports.IngestOptions{
		BatchSize:       req.BatchSize,
		WaitForComplete: req.WaitForComplete,
	})
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordIngestBatch(serviceName, "error", 0, "api")
			rt.metrics.RecordIngestDuration(serviceName, mode, time.Since(start))
		}
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordIngestBatch(serviceName, "accepted", len(req.Documents), "api")
		rt.metrics.RecordIngestDuration(serviceName, mode, time.Since(start))
	}

	if rt.jobs != nil {
		now := time.Now().UTC()
		rec := &domain.IngestJobRecord{
			ID:            uuid.NewString(),
			ProcessID:     job.ProcessID,
			Status:        job.Status,
			DocumentCount: len(req.Documents),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := rt.jobs.Record(r.Context(), rec); err != nil {
			slog.Error("record ingest job", "process_id", job.ProcessID, "error", err)
		}
	}

	// A waited job is already terminal; status polls will see the stored
	// status match and never publish, so announce it here.
	if job.Status.Terminal() && rt.events != nil {
		if err := rt.events.PublishIngestCompleted(r.Context(), job.ProcessID); err != nil {
			slog.Error("publish ingest completed", "process_id", job.ProcessID, "error", err)
		}
	}

	status := http.StatusAccepted
	if req.WaitForComplete {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"ingest": job})
}

func (rt *Router) ingestStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	processID := strings.TrimPrefix(r.URL.Path, "/v1/ingest/")
	if processID == "" || strings.Contains(processID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "process id is required"})
		return
	}

	job, err := rt.ingestor.Status(r.Context(), processID)
	if err != nil {
		writeError(w, err)
		return
	}

	rt.reconcileJob(r, job)

	writeJSON(w, http.StatusOK, map[string]any{"ingest": job})
}

// reconcileJob keeps the persisted record in step with the backend and
// publishes a completion event the first time a job is seen terminal.
func (rt *Router) reconcileJob(r *http.Request, job *domain.IngestJob) {
	if rt.jobs == nil || job == nil {
		return
	}

	rec, err := rt.jobs.GetByProcessID(r.Context(), job.ProcessID)
	if err != nil {
		if !domain.IsKind(err, domain.ErrJobNotFound) {
			slog.Error("load ingest job", "process_id", job.ProcessID, "error", err)
		}
		return
	}
	if rec.Status == job.Status {
		return
	}

	if err := rt.jobs.UpdateStatus(r.Context(), job.ProcessID, job.Status); err != nil {
		slog.Error("update ingest job", "process_id", job.ProcessID, "error", err)
		return
	}
	if job.Status.Terminal() && rt.events != nil {
		if err := rt.events.PublishIngestCompleted(r.Context(), job.ProcessID); err != nil {
			slog.Error("publish ingest completed", "process_id", job.ProcessID, "error", err)
		}
	}
}

type chatRequest struct {
	DocumentID int    `json:"document_id"`
	Question   string `json:"question"`
}

func (rt *Router) chatAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.chat.Answer(r.Context(), req.DocumentID, req.Question)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordChat(serviceName, "error", time.Since(start))
		}
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordChat(serviceName, "ok", time.Since(start))
	}

	writeJSON(w, http.StatusOK, answer)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, domain.ErrInvalidInput) {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
