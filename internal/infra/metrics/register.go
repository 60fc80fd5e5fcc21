package metrics

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Each metrics file queues its collectors from init. Nothing is exposed until
// the server binary registers them, so tests and the CLI stay registry-free.
var (
	defaultOnce sync.Once
	collectors  []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// Register adds every queued collector to reg. Collectors reg already holds
// are skipped.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var dup prometheus.AlreadyRegisteredError
			if errors.As(err, &dup) {
				continue
			}
			return fmt.Errorf("register collector: %w", err)
		}
	}
	return nil
}

// MustRegister registers the queued collectors with the default registry
// served on /metrics. Calls after the first are no-ops.
func MustRegister() {
	defaultOnce.Do(func() {
		if err := Register(prometheus.DefaultRegisterer); err != nil {
			panic(err)
		}
	})
}

// norm keeps label values low-cardinality and case-stable.
func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
