// Package progress provides reporters for long-running ingestion jobs.
package progress

import (
	"log/slog"
	"sync"
)

// Noop discards all progress updates.
type Noop struct{}

func (Noop) Begin(float64)   {}
func (Noop) Advance(float64) {}

// LogReporter writes progress milestones to the structured log. Updates
// are logged at whole-percent boundaries to keep the stream readable.
type LogReporter struct {
	logger *slog.Logger

	mu          sync.Mutex
	total       float64
	done        float64
	lastPercent int
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger, lastPercent: -1}
}

func (r *LogReporter) Begin(total float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
	r.done = 0
	r.lastPercent = -1
	r.logger.Info("ingest_progress_start", "total_units", total)
}

func (r *LogReporter) Advance(delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done += delta
	if r.total <= 0 {
		return
	}
	percent := int(r.done / r.total * 100)
	if percent > 100 {
		percent = 100
	}
	if percent == r.lastPercent {
		return
	}
	r.lastPercent = percent
	r.logger.Info("ingest_progress", "percent", percent, "done_units", r.done, "total_units", r.total)
}

// Multi fans updates out to several reporters.
type Multi struct {
	reporters []Reporter
}

type Reporter interface {
	Begin(total float64)
	Advance(delta float64)
}

func NewMulti(reporters ...Reporter) *Multi {
	out := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Multi{reporters: out}
}

func (m *Multi) Begin(total float64) {
	for _, r := range m.reporters {
		r.Begin(total)
	}
}

func (m *Multi) Advance(delta float64) {
	for _, r := range m.reporters {
		r.Advance(delta)
	}
}
