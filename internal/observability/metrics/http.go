package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	ingestBatchesTotal   *prometheus.CounterVec
	ingestDocumentsTotal *prometheus.CounterVec
	ingestUploadsTotal   *prometheus.CounterVec
	ingestUploadBytes    *prometheus.HistogramVec
	ingestDuration       *prometheus.HistogramVec
	ingestProgressUnits  *prometheus.CounterVec
	splitFragments       *prometheus.HistogramVec
	chatRequestsTotal    *prometheus.CounterVec
	chatDuration         *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ds",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ds",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ds",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	ingestBatchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ds",
			Subsystem: "ingest",
			Name:      "batches_total",
			Help:      "Total document batches registered by result.",
		},
		[]string{"service", "result"},
	)
	ingestDocumentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ds",
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Total documents submitted for ingestion by kind.",
		},
		[]string{"service", "kind"},
	)
	ingestUploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ds",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total presigned file uploads by result.",
		},
		[]string{"service", "result"},
	)
	ingestUploadBytes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ds",
			Subsystem: "ingest",
			Name:      "upload_bytes",
			Help:      "Distribution of uploaded file sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"service"},
	)
	ingestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ds",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "End-to-end ingest call duration in seconds.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"service", "mode"},
	)
	ingestProgressUnits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ds",
			Subsystem: "ingest",
			Name:      "progress_units_total",
			Help:      "Accumulated fractional progress across monitored jobs.",
		},
		[]string{"service"},
	)
	splitFragments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ds",
			Subsystem: "split",
			Name:      "fragments",
			Help:      "Distribution of fragments produced per split file.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ds",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Total chat answers by result.",
		},
		[]string{"service", "result"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ds",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat answer duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		ingestBatchesTotal,
		ingestDocumentsTotal,
		ingestUploadsTotal,
		ingestUploadBytes,
		ingestDuration,
		ingestProgressUnits,
		splitFragments,
		chatRequestsTotal,
		chatDuration,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		ingestBatchesTotal:   ingestBatchesTotal,
		ingestDocumentsTotal: ingestDocumentsTotal,
		ingestUploadsTotal:   ingestUploadsTotal,
		ingestUploadBytes:    ingestUploadBytes,
		ingestDuration:       ingestDuration,
		ingestProgressUnits:  ingestProgressUnits,
		splitFragments:       splitFragments,
		chatRequestsTotal:    chatRequestsTotal,
		chatDuration:         chatDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/ingest/"):
		return "/v1/ingest/{process_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordIngestBatch(service, result string, documents int, kind string) {
	m.ingestBatchesTotal.WithLabelValues(service, result).Inc()
	if documents > 0 {
		m.ingestDocumentsTotal.WithLabelValues(service, kind).Add(float64(documents))
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, result string, sizeBytes int64) {
	m.ingestUploadsTotal.WithLabelValues(service, result).Inc()
	if sizeBytes > 0 {
		m.ingestUploadBytes.WithLabelValues(service).Observe(float64(sizeBytes))
	}
}

func (m *HTTPServerMetrics) RecordIngestDuration(service, mode string, duration time.Duration) {
	m.ingestDuration.WithLabelValues(service, mode).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordSplit(service string, fragments int) {
	m.splitFragments.WithLabelValues(service).Observe(float64(fragments))
}

func (m *HTTPServerMetrics) RecordChat(service, result string, duration time.Duration) {
	m.chatRequestsTotal.WithLabelValues(service, result).Inc()
	m.chatDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// ProgressReporter adapts the registry counters to the ingest progress
// interface so monitored jobs feed the progress_units_total series.
type ProgressReporter struct {
	metrics *HTTPServerMetrics
	service string
}

func (m *HTTPServerMetrics) NewProgressReporter(service string) *ProgressReporter {
	return &ProgressReporter{metrics: m, service: service}
}

func (r *ProgressReporter) Begin(float64) {}

func (r *ProgressReporter) Advance(delta float64) {
	if delta > 0 {
		r.metrics.ingestProgressUnits.WithLabelValues(r.service).Add(delta)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
