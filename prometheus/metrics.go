// Package prometheus exposes scanning and export metrics using the
// Prometheus client library.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/tweetexport"
	"github.com/fwojciec/tweetexport/bloom"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tweetexport"

// Metrics holds the collectors for one session on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	batches    *prometheus.CounterVec
	candidates prometheus.Counter
	upserts    prometheus.Counter
	failures   prometheus.Counter
	drops      prometheus.Counter
	duration   prometheus.Histogram
	exports    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them, together with a
// gauge reporting index.Len, on a new registry.
func NewMetrics(index tweetexport.TweetIndex) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_batches_total",
			Help:      "Total batches scanned, by result.",
		}, []string{"result"}),
		candidates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_candidates_total",
			Help:      "Total candidate elements found.",
		}),
		upserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_upserts_total",
			Help:      "Total records written to the index.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_failures_total",
			Help:      "Total candidates skipped because extraction failed.",
		}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_dropped_batches_total",
			Help:      "Total repeated batches dropped before scanning.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Batch scan duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total exports delivered, by sink and result.",
		}, []string{"sink", "result"}),
	}

	m.registry.MustRegister(
		m.batches,
		m.candidates,
		m.upserts,
		m.failures,
		m.drops,
		m.duration,
		m.exports,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_tweets",
			Help:      "Number of tweets currently indexed.",
		}, func() float64 {
			return float64(index.Len())
		}),
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDrop counts a repeated batch dropped by the ingestion queue.
// Its signature matches scan.Queue.OnDrop.
func (m *Metrics) ObserveDrop(tweetexport.Batch) {
	m.drops.Inc()
}

// ObserveFragments registers a gauge reporting the approximate number of
// distinct fragments recorded by the ingestion queue's filter f. It must be
// called at most once per Metrics.
func (m *Metrics) ObserveFragments(f *bloom.Filter) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_fragments_seen",
		Help:      "Approximate number of distinct fragments scanned.",
	}, func() float64 {
		return float64(f.EstimatedCount())
	}))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Ensure MetricsScanner implements tweetexport.Scanner.
var _ tweetexport.Scanner = (*MetricsScanner)(nil)

// MetricsScanner wraps a Scanner and records batch metrics.
type MetricsScanner struct {
	next    tweetexport.Scanner
	metrics *Metrics
}

// NewMetricsScanner creates a new MetricsScanner.
func NewMetricsScanner(next tweetexport.Scanner, metrics *Metrics) *MetricsScanner {
	return &MetricsScanner{next: next, metrics: metrics}
}

// Scan delegates to the wrapped scanner and records the batch outcome.
func (s *MetricsScanner) Scan(ctx context.Context, root string) (*tweetexport.ScanResult, error) {
	begin := time.Now()
	r, err := s.next.Scan(ctx, root)
	s.metrics.duration.Observe(time.Since(begin).Seconds())
	s.metrics.batches.WithLabelValues(result(err)).Inc()
	if r != nil {
		s.metrics.candidates.Add(float64(r.Candidates))
		s.metrics.upserts.Add(float64(r.Upserted))
		s.metrics.failures.Add(float64(r.Failed))
	}
	return r, err
}

// Ensure MetricsSink implements tweetexport.ExportSink.
var _ tweetexport.ExportSink = (*MetricsSink)(nil)

// MetricsSink wraps an ExportSink and counts deliveries.
type MetricsSink struct {
	next    tweetexport.ExportSink
	name    string
	metrics *Metrics
}

// NewMetricsSink creates a new MetricsSink. name labels the wrapped sink.
func NewMetricsSink(next tweetexport.ExportSink, name string, metrics *Metrics) *MetricsSink {
	return &MetricsSink{next: next, name: name, metrics: metrics}
}

// Deliver delegates to the wrapped sink and counts the outcome.
func (s *MetricsSink) Deliver(ctx context.Context, export *tweetexport.Export) error {
	err := s.next.Deliver(ctx, export)
	s.metrics.exports.WithLabelValues(s.name, result(err)).Inc()
	return err
}
