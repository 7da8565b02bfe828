package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avasiliev/docstream/internal/core/domain"
	"github.com/avasiliev/docstream/internal/core/ports"
)

const defaultPollInterval = 3 * time.Second

// IngestUseCase orchestrates batched uploads and registrations against the
// document-search backend. Batches are processed strictly one at a time; no
// upload or poll runs concurrently within a call.
type IngestUseCase struct {
	registrar    ports.DocumentRegistrar
	uploader     ports.FileUploader
	splitter     ports.FileSplitter
	uploadAPI    string
	pollInterval time.Duration
	reporter     ports.ProgressReporter
}

func NewIngestUseCase(
	registrar ports.DocumentRegistrar,
	uploader ports.FileUploader,
	splitter ports.FileSplitter,
	uploadAPI string,
	pollInterval time.Duration,
	reporter ports.ProgressReporter,
) *IngestUseCase {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if reporter == nil {
		reporter = noopReporter{}
	}
	return &IngestUseCase{
		registrar:    registrar,
		uploader:     uploader,
		splitter:     splitter,
		uploadAPI:    uploadAPI,
		pollInterval: pollInterval,
		reporter:     reporter,
	}
}

// Ingest classifies the documents, uploads the local ones and registers the
// resulting remote records with the backend.
//
// With WaitForComplete set, any number of documents is accepted: they are
// grouped into batches of the effective size (local batches additionally
// bounded by cumulative byte size), and each batch is registered and
// monitored to completion before the next one starts. Without it, the whole
// set must fit one registration call of at most MaxBatchSize documents and
// the immediate registration response is returned unmonitored.
func (uc *IngestUseCase) Ingest(ctx context.Context, documents []domain.Document, opts ports.IngestOptions) (*domain.IngestJob, error) {
	remote, local, err := PartitionDocuments(documents)
	if err != nil {
		return nil, err
	}

	endpoint := opts.UploadAPI
	if endpoint == "" {
		endpoint = uc.uploadAPI
	}

	if opts.WaitForComplete {
		return uc.ingestMonitored(ctx, remote, local, endpoint, opts)
	}

	if len(remote)+len(local) > domain.MaxBatchSize {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest documents",
			fmt.Errorf("%d documents exceed the single-request limit of %d", len(remote)+len(local), domain.MaxBatchSize))
	}

	uploaded, _, err := uc.uploadLocal(ctx, local, endpoint, nil, 0)
	if err != nil {
		return nil, err
	}
	remote = append(remote, uploaded...)

	job, err := uc.registrar.RegisterRemote(ctx, remote)
	if err != nil {
		return nil, fmt.Errorf("register documents: %w", err)
	}
	return job, nil
}

func (uc *IngestUseCase) ingestMonitored(
	ctx context.Context,
	remote []domain.RemoteDocument,
	local []domain.Document,
	endpoint string,
	opts ports.IngestOptions,
) (*domain.IngestJob, error) {
	reporter := opts.Progress
	if reporter == nil {
		reporter = uc.reporter
	}
	reporter.Begin(float64(len(remote) + len(local)))

	n := domain.ClampBatchSize(opts.BatchSize)
	var job *domain.IngestJob

	// Remote documents first: they are fully registered and completed before
	// any local upload begins.
	remaining := float64(len(remote))
	batch := make([]domain.RemoteDocument, 0, n)
	for _, rd := range remote {
		if len(batch) >= n {
			var err error
			job, remaining, err = uc.registerAndMonitor(ctx, batch, reporter, remaining)
			if err != nil {
				return nil, err
			}
			batch = batch[:0]
		}
		batch = append(batch, rd)
		reporter.Advance(0.25)
		remaining -= 0.25
	}
	if len(batch) > 0 {
		var err error
		job, remaining, err = uc.registerAndMonitor(ctx, batch, reporter, remaining)
		if err != nil {
			return nil, err
		}
	}
	flushRemaining(reporter, remaining)

	// Local documents second, sealed by count and by cumulative byte size.
	remaining = float64(len(local))
	var (
		localBatch []domain.Document
		batchBytes int64
	)
	for _, ld := range local {
		info, err := os.Stat(expandUser(ld.FilePath))
		if err != nil {
			return nil, fmt.Errorf("stat local file %s: %w", ld.FilePath, err)
		}

		if len(localBatch) > 0 && (batchBytes+info.Size() > domain.MaxBatchSizeBytes || len(localBatch) >= n) {
			job, remaining, err = uc.uploadAndRegister(ctx, localBatch, endpoint, reporter, remaining)
			if err != nil {
				return nil, err
			}
			localBatch = nil
			batchBytes = 0
		}

		localBatch = append(localBatch, ld)
		batchBytes += info.Size()
	}
	if len(localBatch) > 0 {
		var err error
		job, remaining, err = uc.uploadAndRegister(ctx, localBatch, endpoint, reporter, remaining)
		if err != nil {
			return nil, err
		}
	}
	flushRemaining(reporter, remaining)

	return job, nil
}

// IngestDirectory recursively enumerates the files under path, expands each
// through the splitter and ingests them into bucketID in monitored batches
// bounded by count and cumulative byte size.
func (uc *IngestUseCase) IngestDirectory(ctx context.Context, bucketID int, path string, opts ports.IngestOptions) error {
	if bucketID < 1 {
		return domain.WrapError(domain.ErrInvalidInput, "ingest directory", fmt.Errorf("invalid bucket id: %d", bucketID))
	}

	root := expandUser(path)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return domain.WrapError(domain.ErrInvalidInput, "ingest directory", fmt.Errorf("invalid directory path: %s", path))
	}

	files, err := uc.loadDirectoryFiles(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "ingest directory", fmt.Errorf("no supported files found in directory: %s", path))
	}

	endpoint := opts.UploadAPI
	if endpoint == "" {
		endpoint = uc.uploadAPI
	}
	reporter := opts.Progress
	if reporter == nil {
		reporter = uc.reporter
	}
	reporter.Begin(float64(len(files)))

	n := domain.ClampBatchSize(opts.BatchSize)
	var (
		batch      []string
		batchBytes int64
	)
	for _, file := range files {
		fi, err := os.Stat(file)
		if err != nil {
			return fmt.Errorf("stat file %s: %w", file, err)
		}

		if len(batch) > 0 && (batchBytes+fi.Size() > domain.MaxBatchSizeBytes || len(batch) >= n) {
			if err := uc.uploadFileBatch(ctx, bucketID, batch, endpoint, reporter); err != nil {
				return err
			}
			batch = nil
			batchBytes = 0
		}

		batch = append(batch, file)
		batchBytes += fi.Size()
	}
	if len(batch) > 0 {
		if err := uc.uploadFileBatch(ctx, bucketID, batch, endpoint, reporter); err != nil {
			return err
		}
	}
	return nil
}

// Status proxies the backend's current snapshot for a registration call.
func (uc *IngestUseCase) Status(ctx context.Context, processID string) (*domain.IngestJob, error) {
	if strings.TrimSpace(processID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest status", errors.New("process id is required"))
	}
	job, err := uc.registrar.ProcessingStatus(ctx, processID)
	if err != nil {
		return nil, fmt.Errorf("fetch ingest status: %w", err)
	}
	return job, nil
}

func (uc *IngestUseCase) loadDirectoryFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		expanded, err := uc.splitter.Expand(p)
		if err != nil {
			return fmt.Errorf("expand file %s: %w", p, err)
		}
		files = append(files, expanded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}
	return files, nil
}

// uploadLocal uploads each local document (through the splitter) and returns
// the registration records for its fragments. Each uploaded fragment advances
// progress by a quarter unit; the completion monitor supplies the rest.
func (uc *IngestUseCase) uploadLocal(
	ctx context.Context,
	docs []domain.Document,
	endpoint string,
	reporter ports.ProgressReporter,
	remaining float64,
) ([]domain.RemoteDocument, float64, error) {
	out := make([]domain.RemoteDocument, 0, len(docs))
	for _, d := range docs {
		fragments, err := uc.splitter.Expand(expandUser(d.FilePath))
		if err != nil {
			return nil, remaining, fmt.Errorf("expand file %s: %w", d.FilePath, err)
		}

		for _, fragment := range fragments {
			sourceURL, err := uc.uploader.Upload(ctx, endpoint, fragment)
			if err != nil {
				return nil, remaining, err
			}

			rd := d.Remote(sourceURL)
			if alias, ok := domain.AliasForSuffix(filepath.Ext(fragment)); ok {
				rd.FileType = alias
			}
			if len(fragments) > 1 || d.FileName == "" {
				rd.FileName = filepath.Base(fragment)
			}
			out = append(out, rd)

			if reporter != nil {
				reporter.Advance(0.25)
				remaining -= 0.25
			}
		}
	}
	return out, remaining, nil
}

func (uc *IngestUseCase) uploadAndRegister(
	ctx context.Context,
	docs []domain.Document,
	endpoint string,
	reporter ports.ProgressReporter,
	remaining float64,
) (*domain.IngestJob, float64, error) {
	uploaded, remaining, err := uc.uploadLocal(ctx, docs, endpoint, reporter, remaining)
	if err != nil {
		return nil, remaining, err
	}
	return uc.registerAndMonitor(ctx, uploaded, reporter, remaining)
}

func (uc *IngestUseCase) registerAndMonitor(
	ctx context.Context,
	batch []domain.RemoteDocument,
	reporter ports.ProgressReporter,
	remaining float64,
) (*domain.IngestJob, float64, error) {
	job, err := uc.registrar.RegisterRemote(ctx, batch)
	if err != nil {
		return nil, remaining, fmt.Errorf("register batch: %w", err)
	}
	return newStatusMonitor(uc.registrar, uc.pollInterval, reporter).wait(ctx, job, remaining)
}

// uploadFileBatch drives one directory batch: upload every file, register the
// batch and monitor it to completion.
func (uc *IngestUseCase) uploadFileBatch(
	ctx context.Context,
	bucketID int,
	batch []string,
	endpoint string,
	reporter ports.ProgressReporter,
) error {
	remaining := float64(len(batch))
	docs := make([]domain.Document, 0, len(batch))
	for _, file := range batch {
		sourceURL, err := uc.uploader.Upload(ctx, endpoint, file)
		if err != nil {
			return err
		}

		doc := domain.Document{
			BucketID: bucketID,
			FileName: filepath.Base(file),
			FilePath: sourceURL,
		}
		if alias, ok := domain.AliasForSuffix(filepath.Ext(file)); ok {
			doc.FileType = alias
		}
		docs = append(docs, doc)

		reporter.Advance(0.25)
		remaining -= 0.25
	}

	if len(docs) > 0 {
		job, err := uc.Ingest(ctx, docs, ports.IngestOptions{UploadAPI: endpoint})
		if err != nil {
			return err
		}
		if _, remaining, err = newStatusMonitor(uc.registrar, uc.pollInterval, reporter).wait(ctx, job, remaining); err != nil {
			return err
		}
	}

	flushRemaining(reporter, remaining)
	return nil
}

// flushRemaining reconciles the progress counter at the end of a phase so a
// finished call always reports one full unit per document, even when the
// backend never listed some document in a progress sub-group.
func flushRemaining(reporter ports.ProgressReporter, remaining float64) {
	if remaining > 0 {
		reporter.Advance(remaining)
	}
}

type noopReporter struct{}

func (noopReporter) Begin(float64)   {}
func (noopReporter) Advance(float64) {}
