package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(upstreamLatencyMs, scrapeFetchTotal, contactSubmissions)
}

var (
	upstreamLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_ms",
			Help:    "Time until the upstream returned response headers, in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "success"},
	)

	scrapeFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_fetch_total",
			Help: "Page fetch attempts by method (direct/proxy) and result.",
		},
		[]string{"method", "result"},
	)

	contactSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Website form submissions by form type and result.",
		},
		[]string{"form_type", "result"},
	)
)

func ObserveUpstream(provider string, latencyMs int64, success bool) {
	upstreamLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func IncScrapeFetch(method, result string) {
	scrapeFetchTotal.WithLabelValues(norm(method), norm(result)).Inc()
}

func IncContactSubmission(formType, result string) {
	contactSubmissions.WithLabelValues(norm(formType), norm(result)).Inc()
}
