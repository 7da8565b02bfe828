// Package searchapi implements the HTTP client for the document ingestion
// and semantic search backend.
package searchapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avasiliev/docstream/internal/core/domain"
	"github.com/avasiliev/docstream/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

// WithExecutor enables retries and circuit breaking for search calls.
// Ingestion registration and status polling stay single-shot so that a
// transient poll failure surfaces to the caller instead of silently
// extending the wait.
func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ingestEnvelope struct {
	Ingest domain.IngestJob `json:"ingest"`
}

type searchEnvelope struct {
	Search domain.SearchResult `json:"search"`
}

// RegisterRemote submits a batch of uploaded documents for processing and
// returns the job tracking the batch.
func (c *Client) RegisterRemote(ctx context.Context, documents []domain.RemoteDocument) (*domain.IngestJob, error) {
	if len(documents) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "register documents", fmt.Errorf("empty document batch"))
	}

	request := map[string]any{
		"documents": documents,
	}

	var response ingestEnvelope
	if err := c.postJSON(ctx, "/v1/ingest/documents/remote", request, &response, "register"); err != nil {
		return nil, err
	}
	if response.Ingest.ProcessID == "" {
		return nil, fmt.Errorf("register response missing process id")
	}
	return &response.Ingest, nil
}

// ProcessingStatus fetches the current state of an ingestion job.
func (c *Client) ProcessingStatus(ctx context.Context, processID string) (*domain.IngestJob, error) {
	var response ingestEnvelope
	path := "/v1/ingest/" + url.PathEscape(processID)
	if err := c.getJSON(ctx, path, &response, "status"); err != nil {
		return nil, err
	}
	return &response.Ingest, nil
}

// Content retrieves the indexed text of a single document for use as
// retrieval context.
func (c *Client) Content(ctx context.Context, documentID int, query string) (*domain.SearchResult, error) {
	request := map[string]any{
		"query": query,
	}

	var response searchEnvelope
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, fmt.Sprintf("/v1/search/%d/content", documentID), request, &response, "search")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "searchapi.content", call, classifySearchAPIError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("search content", err)
	}
	return &response.Search, nil
}
