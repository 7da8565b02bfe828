package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avasiliev/docstream/internal/core/domain"
)

func TestRegisterRemoteSendsDocumentsEnvelope(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string][]domain.RemoteDocument

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ingest": map[string]any{"process_id": "proc-1", "status": "queued"},
		})
	}))
	defer server.Close()

	client := New(server.URL, "test-key")
	job, err := client.RegisterRemote(context.Background(), []domain.RemoteDocument{
		{BucketID: 1, SourceURL: "https://example.com/a.pdf"},
	})
	if err != nil {
		t.Fatalf("RegisterRemote() error = %v", err)
	}
	if gotPath != "/v1/ingest/documents/remote" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if len(gotBody["documents"]) != 1 || gotBody["documents"][0].SourceURL != "https://example.com/a.pdf" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
	if job.ProcessID != "proc-1" || job.Status != domain.StatusQueued {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestRegisterRemoteEmptyBatch(t *testing.T) {
	client := New("http://localhost:0", "")
	_, err := client.RegisterRemote(context.Background(), nil)
	if err == nil || !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRegisterRemoteMissingProcessID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ingest": map[string]any{}})
	}))
	defer server.Close()

	_, err := New(server.URL, "").RegisterRemote(context.Background(), []domain.RemoteDocument{{BucketID: 1}})
	if err == nil || !strings.Contains(err.Error(), "missing process id") {
		t.Fatalf("expected missing process id error, got %v", err)
	}
}

func TestProcessingStatusDecodesProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/ingest/proc-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ingest": map[string]any{
				"process_id": "proc-1",
				"status":     "processing",
				"progress": map[string]any{
					"complete": map[string]any{
						"documents": []map[string]any{{"document_id": "d1", "status": "complete"}},
					},
				},
			},
		})
	}))
	defer server.Close()

	job, err := New(server.URL, "").ProcessingStatus(context.Background(), "proc-1")
	if err != nil {
		t.Fatalf("ProcessingStatus() error = %v", err)
	}
	if job.Status != domain.StatusProcessing {
		t.Fatalf("unexpected status: %s", job.Status)
	}
	if job.Progress == nil || job.Progress.Complete == nil || len(job.Progress.Complete.Documents) != 1 {
		t.Fatalf("progress not decoded: %+v", job.Progress)
	}
	if job.Progress.Complete.Documents[0].DocumentID != "d1" {
		t.Fatalf("unexpected document id: %+v", job.Progress.Complete.Documents[0])
	}
}

func TestContentPostsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search/42/content" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != "how far is the moon?" {
			t.Errorf("unexpected query: %q", body["query"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"search": map[string]any{"text": "384400 km", "score": 0.93},
		})
	}))
	defer server.Close()

	result, err := New(server.URL, "").Content(context.Background(), 42, "how far is the moon?")
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if result.Text != "384400 km" || result.Score != 0.93 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestStatusErrorCarriesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unknown process", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := New(server.URL, "").ProcessingStatus(context.Background(), "nope")
	if err == nil {
		t.Fatalf("expected error")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %T", err)
	}
	if statusErr.StatusCode != http.StatusNotFound || !strings.Contains(statusErr.Body, "unknown process") {
		t.Fatalf("unexpected status error: %+v", statusErr)
	}
}
