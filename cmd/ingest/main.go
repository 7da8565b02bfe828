// Command ingest uploads local files or remote URLs to the document-search
// backend from the command line.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/avasiliev/docstream/internal/config"
	"github.com/avasiliev/docstream/internal/core/ports"
	"github.com/avasiliev/docstream/internal/core/usecase"
	"github.com/avasiliev/docstream/internal/infrastructure/manifest"
	"github.com/avasiliev/docstream/internal/infrastructure/progress"
	"github.com/avasiliev/docstream/internal/infrastructure/searchapi"
	"github.com/avasiliev/docstream/internal/infrastructure/splitting"
	"github.com/avasiliev/docstream/internal/infrastructure/upload"
	"github.com/avasiliev/docstream/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		manifestPath = flag.String("manifest", "", "path to a YAML document manifest")
		dirPath      = flag.String("dir", "", "directory to ingest recursively")
		bucketID     = flag.Int("bucket", 0, "bucket id for directory ingestion")
		batchSize    = flag.Int("batch-size", 0, "documents per registration batch")
		wait         = flag.Bool("wait", true, "block until every document reaches a terminal state")
		uploadAPI    = flag.String("upload-api", "", "override the presign endpoint")
	)
	flag.Parse()

	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("docstream-ingest", cfg.LogLevel))

	if *manifestPath == "" && *dirPath == "" {
		log.Fatalf("either -manifest or -dir is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	searchClient := searchapi.New(cfg.SearchAPIURL, cfg.SearchAPIKey)
	ingestor := usecase.NewIngestUseCase(
		searchClient,
		upload.New(),
		splitting.NewService(),
		cfg.UploadAPIURL,
		time.Duration(cfg.IngestPollSeconds)*time.Second,
		progress.NewLogReporter(slog.Default()),
	)

	opts := ports.IngestOptions{
		BatchSize:       *batchSize,
		WaitForComplete: *wait,
		UploadAPI:       *uploadAPI,
	}

	if *dirPath != "" {
		if err := ingestor.IngestDirectory(ctx, *bucketID, *dirPath, opts); err != nil {
			log.Fatalf("ingest directory: %v", err)
		}
		log.Printf("directory ingested: %s", *dirPath)
		return
	}

	documents, err := manifest.Load(*manifestPath)
	if err != nil {
		log.Fatalf("load manifest: %v", err)
	}

	job, err := ingestor.Ingest(ctx, documents, opts)
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	if job != nil {
		log.Printf("ingest finished: process_id=%s status=%s", job.ProcessID, job.Status)
	} else {
		log.Printf("ingest finished: %d documents", len(documents))
	}
}
