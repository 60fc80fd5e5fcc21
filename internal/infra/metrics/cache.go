package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(contentCacheLookups, contentCacheBytes, contentCacheRefreshedAt)
}

var (
	contentCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_cache_lookups_total",
			Help: "Website content cache lookups by result (hit, backoff, miss, stale_kept).",
		},
		[]string{"result"},
	)

	contentCacheBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "content_cache_bytes",
		Help: "Bytes of scraped website text held for the system prompt.",
	})

	contentCacheRefreshedAt = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "content_cache_refreshed_timestamp_seconds",
		Help: "Unix time of the last scrape that produced content.",
	})
)

func IncContentCache(result string) {
	contentCacheLookups.WithLabelValues(norm(result)).Inc()
}

// SetContentSnapshot records the size and time of a successful refresh.
// Failed refreshes leave both gauges alone, like the cache itself.
func SetContentSnapshot(size int, at time.Time) {
	contentCacheBytes.Set(float64(size))
	contentCacheRefreshedAt.Set(float64(at.Unix()))
}
