// Package metrics exposes batch extraction counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sbidiv"

// Document outcomes.
const (
	OutcomeExtracted = "extracted"
	OutcomeFailed    = "failed"
)

// Metrics holds the collectors of one process. All methods are safe on a nil
// receiver so callers can run without metrics.
type Metrics struct {
	registry  *prometheus.Registry
	documents *prometheus.CounterVec
	records   *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  prometheus.Histogram
	lastRun   prometheus.Gauge
}

// New creates the collectors on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by detected format and outcome.",
		}, []string{"format", "outcome"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Dividend records extracted, by format.",
		}, []string{"format"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed documents, by error code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one batch run.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last batch run finished.",
		}),
	}

	m.registry.MustRegister(
		m.documents, m.records, m.failures, m.duration, m.lastRun,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Document counts one processed document.
func (m *Metrics) Document(format, outcome string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(format, outcome).Inc()
}

// Records counts extracted records.
func (m *Metrics) Records(format string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.records.WithLabelValues(format).Add(float64(n))
}

// Failure counts a failed document by error code.
func (m *Metrics) Failure(code string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(code).Inc()
}

// Batch records a finished batch run.
func (m *Metrics) Batch(elapsed time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on port until ctx is done.
func (m *Metrics) Serve(ctx context.Context, port int, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", slog.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
