// file: internal/metrics/metrics.go
// version: 1.1.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "answerbox",
		Name:      "queries_total",
		Help:      "Total number of match queries by outcome (matched, no_match, error)",
	}, []string{"outcome"})
	queryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "answerbox",
		Name:      "query_duration_seconds",
		Help:      "Histogram of match query durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // ~1ms up to a few seconds
	}, []string{"outcome"})
	matchesByStrategy = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "answerbox",
		Name:      "matches_total",
		Help:      "Total number of matches by winning strategy",
	}, []string{"strategy"})
	ingestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "answerbox",
		Name:      "records_ingested_total",
		Help:      "Total number of records ingested by source",
	}, []string{"source"})
	embeddingFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "answerbox",
		Name:      "embedding_failures_total",
		Help:      "Total number of embedding backend failures (semantic strategy degraded)",
	})
	ocrFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "answerbox",
		Name:      "ocr_failures_total",
		Help:      "Total number of OCR provider failures",
	})

	corpusGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "answerbox",
		Name:      "corpus_records",
		Help:      "Current number of records in the answer corpus",
	})
	indexedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "answerbox",
		Name:      "embedded_records",
		Help:      "Current number of records with a cached embedding",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(queriesTotal, queryDuration, matchesByStrategy, ingestTotal,
			embeddingFailures, ocrFailures, corpusGauge, indexedGauge)
	})
}

// Query lifecycle helpers
func IncQuery(outcome string) { queriesTotal.WithLabelValues(outcome).Inc() }
func ObserveQueryDuration(outcome string, d time.Duration) {
	queryDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
func IncMatch(strategy string)  { matchesByStrategy.WithLabelValues(strategy).Inc() }
func IncIngested(source string) { ingestTotal.WithLabelValues(source).Inc() }
func IncEmbeddingFailure()      { embeddingFailures.Inc() }
func IncOCRFailure()            { ocrFailures.Inc() }

// Gauges
func SetCorpusSize(n int)      { corpusGauge.Set(float64(n)) }
func SetEmbeddedRecords(n int) { indexedGauge.Set(float64(n)) }
