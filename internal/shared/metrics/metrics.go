package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records ingestion and matching metrics. A nil *Collector is valid and records nothing.
type Collector struct {
	ingestTotal     *prometheus.CounterVec
	ingestDuration  prometheus.Histogram
	matchTotal      *prometheus.CounterVec
	matchDuration   prometheus.Histogram
	analyzerTokens  *prometheus.CounterVec
	cleanupFailures prometheus.Counter
}

// NewCollector creates a Collector and registers its series on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ingestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_ingest_total",
			Help: "Resume ingestions by outcome",
		}, []string{"outcome"}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resume_ingest_duration_seconds",
			Help:    "Resume ingestion duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		matchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "match_analysis_total",
			Help: "Match analyses by outcome",
		}, []string{"outcome"}),
		matchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "match_analysis_duration_seconds",
			Help:    "Analyzer call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
		analyzerTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_tokens_total",
			Help: "Tokens consumed by the analyzer",
		}, []string{"direction"}),
		cleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blob_cleanup_failures_total",
			Help: "Blob deletions that failed during ingestion cleanup",
		}),
	}

	reg.MustRegister(
		c.ingestTotal,
		c.ingestDuration,
		c.matchTotal,
		c.matchDuration,
		c.analyzerTokens,
		c.cleanupFailures,
	)
	return c
}

// RecordIngest records one ingestion outcome ("persisted", "rejected", "failed", ...).
func (c *Collector) RecordIngest(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.ingestTotal.WithLabelValues(outcome).Inc()
	c.ingestDuration.Observe(d.Seconds())
}

// RecordMatch records one analyzer call outcome.
func (c *Collector) RecordMatch(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.matchTotal.WithLabelValues(outcome).Inc()
	c.matchDuration.Observe(d.Seconds())
}

// RecordTokens adds analyzer token usage.
func (c *Collector) RecordTokens(input, output int) {
	if c == nil {
		return
	}
	if input > 0 {
		c.analyzerTokens.WithLabelValues("input").Add(float64(input))
	}
	if output > 0 {
		c.analyzerTokens.WithLabelValues("output").Add(float64(output))
	}
}

// RecordCleanupFailure counts a failed best-effort blob deletion.
func (c *Collector) RecordCleanupFailure() {
	if c == nil {
		return
	}
	c.cleanupFailures.Inc()
}

// Handler exposes the gatherer in Prometheus text format.
func Handler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	h := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
