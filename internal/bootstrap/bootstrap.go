package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avasiliev/docstream/internal/config"
	"github.com/avasiliev/docstream/internal/core/ports"
	"github.com/avasiliev/docstream/internal/core/usecase"
	"github.com/avasiliev/docstream/internal/infrastructure/llm/openai"
	"github.com/avasiliev/docstream/internal/infrastructure/progress"
	"github.com/avasiliev/docstream/internal/infrastructure/queue/nats"
	"github.com/avasiliev/docstream/internal/infrastructure/repository/postgres"
	"github.com/avasiliev/docstream/internal/infrastructure/resilience"
	"github.com/avasiliev/docstream/internal/infrastructure/searchapi"
	"github.com/avasiliev/docstream/internal/infrastructure/splitting"
	"github.com/avasiliev/docstream/internal/infrastructure/upload"
	"github.com/avasiliev/docstream/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Jobs    ports.IngestJobStore
	Events  ports.EventPublisher
	Metrics *metrics.HTTPServerMetrics

	IngestUC ports.DocumentIngestor
	ChatUC   ports.ChatService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	jobs := postgres.NewJobRepository(db)
	if err := jobs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	serverMetrics := metrics.NewHTTPServerMetrics("docstream-api")

	searchClient := searchapi.New(cfg.SearchAPIURL, cfg.SearchAPIKey, searchapi.WithExecutor(executor))
	completionClient := openai.New(cfg.CompletionAPIURL, cfg.CompletionAPIKey, cfg.CompletionModel, openai.WithExecutor(executor))
	uploader := serverMetrics.InstrumentUploader("docstream-api", upload.New())
	splitter := serverMetrics.InstrumentSplitter("docstream-api", splitting.NewService())

	reporter := progress.NewMulti(
		progress.NewLogReporter(slog.Default()),
		serverMetrics.NewProgressReporter("docstream-api"),
	)

	ingestUC := usecase.NewIngestUseCase(
		searchClient,
		uploader,
		splitter,
		cfg.UploadAPIURL,
		time.Duration(cfg.IngestPollSeconds)*time.Second,
		reporter,
	)
	chatUC := usecase.NewChatUseCase(searchClient, completionClient, cfg.ChatInstruction)

	return &App{
		Config:  cfg,
		Jobs:    jobs,
		Events:  queue,
		Metrics: serverMetrics,

		IngestUC: ingestUC,
		ChatUC:   chatUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
