// Package metrics holds the engine's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "intake"

var (
	// RowsTotal counts processed rows by outcome: accepted, quarantined, warned.
	RowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_total",
		Help:      "Import rows by outcome.",
	}, []string{"outcome"})

	// MergesTotal counts merge results: created or merged.
	MergesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posting_merges_total",
		Help:      "Posting merge results.",
	}, []string{"result"})

	// SecondaryMatchSkipped counts exact-key misses where the row lacked a
	// company or title, so no company|title|host lookup ran.
	SecondaryMatchSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posting_secondary_match_skipped_total",
		Help:      "Exact-key misses with no company|title|host lookup.",
	})

	PostingsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "postings_deleted_total",
		Help:      "Postings removed by the deletion service.",
	})

	AtsResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ats_resolutions_total",
		Help:      "ATS resolutions written, by ATS type.",
	}, []string{"ats_type"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status class.",
	}, []string{"method", "class"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP handler latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	BatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_total",
		Help:      "Import batches by source and result.",
	}, []string{"source", "result"})

	BatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Wall time of one import batch.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// Registry is the engine's private registry; /metrics serves it.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		RowsTotal,
		MergesTotal,
		SecondaryMatchSkipped,
		PostingsDeleted,
		AtsResolutions,
		HTTPRequests,
		HTTPDuration,
		BatchesTotal,
		BatchDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
