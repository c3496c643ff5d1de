package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Buckets in seconds. External programs run from well under a second
// to many minutes for a remote search.
var defaultBuckets = []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1200}

// Manager holds the metrics for one run. A nil *Manager is valid and
// records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	inputSeqs      prometheus.Gauge
	queries        prometheus.Counter
	queriesSkipped prometheus.Counter
	searchFailures prometheus.Counter
	hits           *prometheus.CounterVec
	hitsSampled    prometheus.Gauge
	cacheLookups   *prometheus.CounterVec
	duration       *prometheus.HistogramVec
}

// NewManager creates a metrics manager. Without WithRegistry each
// manager gets its own registry, so managers never collide.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "homologs",
		histogramBuckets: defaultBuckets,
		constLabels:      map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	f := promauto.With(m.registry)
	cl := prometheus.Labels(m.constLabels)

	m.inputSeqs = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "input_sequences",
		Help: "Number of sequences in the input, seed files included.", ConstLabels: cl,
	})
	m.queries = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "queries_total",
		Help: "Similarity searches started.", ConstLabels: cl,
	})
	m.queriesSkipped = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "queries_skipped_total",
		Help: "Input sequences not searched because they were redundant.", ConstLabels: cl,
	})
	m.searchFailures = f.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "search_failures_total",
		Help: "Searches that failed or returned unreadable results.", ConstLabels: cl,
	})
	m.hits = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "hits_total",
		Help: "Hits offered to the collector, by outcome.", ConstLabels: cl,
	}, []string{"outcome"})
	m.hitsSampled = f.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Name: "hits_sampled",
		Help: "Hits kept after sampling.", ConstLabels: cl,
	})
	m.cacheLookups = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Name: "cache_lookups_total",
		Help: "Search cache lookups, by result.", ConstLabels: cl,
	}, []string{"result"})
	m.duration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Name: "stage_duration_seconds",
		Help: "Time spent in each stage.", Buckets: m.histogramBuckets, ConstLabels: cl,
	}, []string{"stage"})
}

// Registry gives the registry, mostly for tests.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SetInputSeqs records how many sequences we started with.
func (m *Manager) SetInputSeqs(n int) {
	if m == nil {
		return
	}
	m.inputSeqs.Set(float64(n))
}

// RecordQuery counts one search started.
func (m *Manager) RecordQuery() {
	if m == nil {
		return
	}
	m.queries.Inc()
}

// RecordSkipped counts redundant sequences that were not searched.
func (m *Manager) RecordSkipped(n int) {
	if m == nil {
		return
	}
	m.queriesSkipped.Add(float64(n))
}

// RecordSearchFailure counts a failed search.
func (m *Manager) RecordSearchFailure() {
	if m == nil {
		return
	}
	m.searchFailures.Inc()
}

// RecordHit counts a hit by what the collector did with it, "inserted",
// "replaced" or "discarded".
func (m *Manager) RecordHit(outcome string) {
	if m == nil {
		return
	}
	m.hits.WithLabelValues(outcome).Inc()
}

// SetSampled records how many hits survived sampling.
func (m *Manager) SetSampled(n int) {
	if m == nil {
		return
	}
	m.hitsSampled.Set(float64(n))
}

// RecordCache counts a cache hit or miss.
func (m *Manager) RecordCache(hit bool) {
	if m == nil {
		return
	}
	r := "miss"
	if hit {
		r = "hit"
	}
	m.cacheLookups.WithLabelValues(r).Inc()
}

// ObserveStage records how long a stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(stage).Observe(d.Seconds())
}

// Since is a convenience for defer m.Since("align", time.Now()).
func (m *Manager) Since(stage string, start time.Time) {
	m.ObserveStage(stage, time.Since(start))
}

// WriteTextfile writes everything gathered so far in the Prometheus text
// format, in a form node_exporter's textfile collector can pick up.
func (m *Manager) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	return nil
}
