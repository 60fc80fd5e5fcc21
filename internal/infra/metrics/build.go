package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(buildInfo, startTime)
}

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "edge_build_info",
			Help: "Version, commit and Go runtime of the running relay. Always 1.",
		},
		[]string{"version", "commit", "go_version"},
	)

	startTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "edge_start_time_seconds",
		Help: "Unix time at which the relay started serving.",
	})
)

// SetBuildInfo stamps the ldflags version and commit and records the start time.
func SetBuildInfo(version, commit string) {
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	buildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
	startTime.SetToCurrentTime()
}
