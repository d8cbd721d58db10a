// Package metrics exposes Prometheus counters for the message pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the pipeline, backend client and cache report into.
type Recorder interface {
	RecordMessage(intent string)
	RecordExtractionFailure(intent, kind string)
	RecordBackendRequest(operation string, status int)
	RecordLLMLatency(d time.Duration)
	RecordCacheLookup(namespace string, hit bool)
}

type Collector struct {
	messages       *prometheus.CounterVec
	extractionFail *prometheus.CounterVec
	backend        *prometheus.CounterVec
	llmLatency     prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
}

// NewCollector registers all pipeline metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelog_messages_total",
			Help: "Processed messages by classified intent",
		}, []string{"intent"}),
		extractionFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelog_extraction_failures_total",
			Help: "Command extraction failures by intent and kind",
		}, []string{"intent", "kind"}),
		backend: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelog_backend_requests_total",
			Help: "Backend calls by operation and HTTP status (0 = transport error)",
		}, []string{"operation", "status"}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "carelog_llm_latency_seconds",
			Help:    "Language model call latency",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelog_cache_lookups_total",
			Help: "Context cache lookups by namespace and result",
		}, []string{"namespace", "result"}),
	}

	reg.MustRegister(
		c.messages,
		c.extractionFail,
		c.backend,
		c.llmLatency,
		c.cacheLookups,
	)

	return c
}

func (c *Collector) RecordMessage(intent string) {
	c.messages.WithLabelValues(intent).Inc()
}

func (c *Collector) RecordExtractionFailure(intent, kind string) {
	c.extractionFail.WithLabelValues(intent, kind).Inc()
}

func (c *Collector) RecordBackendRequest(operation string, status int) {
	c.backend.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

func (c *Collector) RecordLLMLatency(d time.Duration) {
	c.llmLatency.Observe(d.Seconds())
}

func (c *Collector) RecordCacheLookup(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(namespace, result).Inc()
}

// Handler serves the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used when metrics are not wired (tests, CLI).
type Nop struct{}

func (Nop) RecordMessage(string) {}
func (Nop) RecordExtractionFailure(string, string) {}
func (Nop) RecordBackendRequest(string, int) {}
func (Nop) RecordLLMLatency(time.Duration) {}
func (Nop) RecordCacheLookup(string, bool) {}
