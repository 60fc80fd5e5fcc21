package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(chatRequestsTotal, chatFastPathTotal, rateLimitRejections)
}

var (
	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Chat requests by gatekeeper outcome (relayed, fast_path, invalid, rate_limited, upstream_error).",
		},
		[]string{"outcome"},
	)

	chatFastPathTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_fastpath_total",
			Help: "Canned answers served without an upstream call, per rule.",
		},
		[]string{"rule"},
	)

	rateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Requests denied by the per-client window, per backing store.",
		},
		[]string{"store"},
	)
)

func IncChatRequest(outcome string) {
	chatRequestsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncFastPath(rule string) {
	chatFastPathTotal.WithLabelValues(norm(rule)).Inc()
}

func IncRateLimitRejection(store string) {
	rateLimitRejections.WithLabelValues(norm(store)).Inc()
}
