// Package metrics provides Prometheus metrics instrumentation for scoutindex.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager manages all Prometheus metrics for scoutindex.
type Manager struct {
	registry *prometheus.Registry
	enabled  bool

	// Query metrics
	queriesTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	queryResultSize *prometheus.HistogramVec

	// Add-document metrics
	addDocumentTotal    *prometheus.CounterVec
	addDocumentDuration prometheus.Histogram

	// Barrel cache metrics
	barrelCacheHits      prometheus.Counter
	barrelCacheMisses    prometheus.Counter
	barrelCacheEvictions prometheus.Counter

	// Budget and shard metrics
	queryBudgetOverruns       prometheus.Counter
	addDocumentBudgetOverruns prometheus.Counter
	shardLoadTotal            *prometheus.CounterVec

	// Index size gauges
	documentsIndexed prometheus.Gauge
	lexiconSize      prometheus.Gauge

	// HTTP metrics
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpConnections prometheus.Gauge
}

// Config holds metrics configuration.
type Config struct {
	Enabled bool
	Port    int
	Path    string

	// Histogram bucket configurations
	QueryDurationBuckets       []float64
	AddDocumentDurationBuckets []float64
	HTTPDurationBuckets        []float64
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:                    true,
		Port:                       9091,
		Path:                       "/metrics",
		QueryDurationBuckets:       []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		AddDocumentDurationBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		HTTPDurationBuckets:        []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}
}

// NewManager creates a new metrics manager.
func NewManager(cfg Config) *Manager {
	if !cfg.Enabled {
		return &Manager{enabled: false}
	}

	registry := prometheus.NewRegistry()

	// Register Go runtime metrics
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Manager{
		registry: registry,
		enabled:  true,
	}

	m.initQueryMetrics(cfg)
	m.initAddDocumentMetrics(cfg)
	m.initBarrelCacheMetrics()
	m.initIndexSizeMetrics()
	m.initHTTPMetrics(cfg)

	return m
}

func (m *Manager) initQueryMetrics(cfg Config) {
	m.queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutindex_queries_total",
			Help: "Total number of search queries, labeled by outcome",
		},
		[]string{"outcome"},
	)

	m.queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoutindex_query_duration_seconds",
			Help:    "Query latency in seconds, against the 500ms soft budget",
			Buckets: cfg.QueryDurationBuckets,
		},
		[]string{"outcome"},
	)

	m.queryResultSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoutindex_query_result_size",
			Help:    "Number of ranked results returned per query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"outcome"},
	)

	m.queryBudgetOverruns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoutindex_query_budget_overruns_total",
		Help: "Total number of queries that exceeded the soft latency budget",
	})

	m.registry.MustRegister(m.queriesTotal, m.queryDuration, m.queryResultSize, m.queryBudgetOverruns)
}

func (m *Manager) initAddDocumentMetrics(cfg Config) {
	m.addDocumentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutindex_add_document_total",
			Help: "Total number of add-document attempts, labeled by outcome",
		},
		[]string{"outcome"},
	)

	m.addDocumentDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoutindex_add_document_duration_seconds",
			Help:    "Incremental add-document latency in seconds, against the 60s budget",
			Buckets: cfg.AddDocumentDurationBuckets,
		},
	)

	m.addDocumentBudgetOverruns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoutindex_add_document_budget_overruns_total",
		Help: "Total number of add-document calls that exceeded the 60s hard budget",
	})

	m.registry.MustRegister(m.addDocumentTotal, m.addDocumentDuration, m.addDocumentBudgetOverruns)
}

func (m *Manager) initBarrelCacheMetrics() {
	m.barrelCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoutindex_barrel_cache_hits_total",
		Help: "Total number of barrel cache hits",
	})
	m.barrelCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoutindex_barrel_cache_misses_total",
		Help: "Total number of barrel cache misses",
	})
	m.barrelCacheEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoutindex_barrel_cache_evictions_total",
		Help: "Total number of barrel cache evictions",
	})

	m.shardLoadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutindex_shard_load_total",
			Help: "Total number of barrel shard loads, labeled by outcome",
		},
		[]string{"outcome"},
	)

	m.registry.MustRegister(m.barrelCacheHits, m.barrelCacheMisses, m.barrelCacheEvictions, m.shardLoadTotal)
}

func (m *Manager) initIndexSizeMetrics() {
	m.documentsIndexed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scoutindex_documents_indexed",
		Help: "Number of documents currently in the forward index",
	})
	m.lexiconSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scoutindex_lexicon_size",
		Help: "Number of distinct terms currently interned in the lexicon",
	})

	m.registry.MustRegister(m.documentsIndexed, m.lexiconSize)
}

// RecordQuery records one completed search query.
func (m *Manager) RecordQuery(outcome string, duration time.Duration, resultCount int) {
	if !m.enabled {
		return
	}
	m.queriesTotal.WithLabelValues(outcome).Inc()
	m.queryDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.queryResultSize.WithLabelValues(outcome).Observe(float64(resultCount))
}

// RecordAddDocument records one completed add-document call.
func (m *Manager) RecordAddDocument(outcome string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.addDocumentTotal.WithLabelValues(outcome).Inc()
	m.addDocumentDuration.Observe(duration.Seconds())
}

// RecordBarrelCacheHit records one barrel cache hit.
func (m *Manager) RecordBarrelCacheHit() {
	if !m.enabled {
		return
	}
	m.barrelCacheHits.Inc()
}

// RecordBarrelCacheMiss records one barrel cache miss.
func (m *Manager) RecordBarrelCacheMiss() {
	if !m.enabled {
		return
	}
	m.barrelCacheMisses.Inc()
}

// RecordBarrelCacheEviction records one barrel cache eviction.
func (m *Manager) RecordBarrelCacheEviction() {
	if !m.enabled {
		return
	}
	m.barrelCacheEvictions.Inc()
}

// RecordQueryBudgetOverrun records one query exceeding the soft latency budget.
func (m *Manager) RecordQueryBudgetOverrun() {
	if !m.enabled {
		return
	}
	m.queryBudgetOverruns.Inc()
}

// RecordAddDocumentBudgetOverrun records one add-document call exceeding the
// 60s hard budget.
func (m *Manager) RecordAddDocumentBudgetOverrun() {
	if !m.enabled {
		return
	}
	m.addDocumentBudgetOverruns.Inc()
}

// RecordShardLoad records one barrel shard load attempt, labeled "ok" or
// "error".
func (m *Manager) RecordShardLoad(outcome string) {
	if !m.enabled {
		return
	}
	m.shardLoadTotal.WithLabelValues(outcome).Inc()
}

// SetDocumentsIndexed sets the current forward-index document count gauge.
func (m *Manager) SetDocumentsIndexed(n int) {
	if !m.enabled {
		return
	}
	m.documentsIndexed.Set(float64(n))
}

// SetLexiconSize sets the current lexicon term-count gauge.
func (m *Manager) SetLexiconSize(n int) {
	if !m.enabled {
		return
	}
	m.lexiconSize.Set(float64(n))
}

// Enabled returns whether metrics collection is enabled.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Handler returns the HTTP handler for the metrics endpoint.
func (m *Manager) Handler() http.Handler {
	if !m.enabled {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server on the configured port.
func (m *Manager) StartServer(ctx context.Context, port int, path string) error {
	if !m.enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

// NoOpManager returns a no-op metrics manager for when metrics are disabled.
func NoOpManager() *Manager {
	return &Manager{enabled: false}
}
