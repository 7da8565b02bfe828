package metrics

import (
	"context"
	"os"

	"github.com/avasiliev/docstream/internal/core/ports"
)

// InstrumentUploader wraps an uploader so every transfer lands in the upload
// series. The file is stat'ed up front; transfer errors still record the size.
func (m *HTTPServerMetrics) InstrumentUploader(service string, next ports.FileUploader) ports.FileUploader {
	return &meteredUploader{service: service, metrics: m, next: next}
}

type meteredUploader struct {
	service string
	metrics *HTTPServerMetrics
	next    ports.FileUploader
}

func (u *meteredUploader) Upload(ctx context.Context, endpoint, filePath string) (string, error) {
	var size int64
	if info, err := os.Stat(filePath); err == nil {
		size = info.Size()
	}

	url, err := u.next.Upload(ctx, endpoint, filePath)
	if err != nil {
		u.metrics.RecordUpload(u.service, "error", size)
		return "", err
	}
	u.metrics.RecordUpload(u.service, "ok", size)
	return url, nil
}

// InstrumentSplitter wraps a splitter so multi-fragment expansions land in the
// split series. Passthroughs and skips are not counted.
func (m *HTTPServerMetrics) InstrumentSplitter(service string, next ports.FileSplitter) ports.FileSplitter {
	return &meteredSplitter{service: service, metrics: m, next: next}
}

type meteredSplitter struct {
	service string
	metrics *HTTPServerMetrics
	next    ports.FileSplitter
}

func (s *meteredSplitter) Expand(path string) ([]string, error) {
	paths, err := s.next.Expand(path)
	if err != nil {
		return nil, err
	}
	if len(paths) > 1 {
		s.metrics.RecordSplit(s.service, len(paths))
	}
	return paths, nil
}
