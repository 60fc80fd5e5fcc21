//go:build !integration

package metrics

import (
	"runtime"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLabelsAreNormalized(t *testing.T) {
	before := testutil.ToFloat64(chatFastPathTotal.WithLabelValues("location"))
	IncFastPath("  Location ")
	if got := testutil.ToFloat64(chatFastPathTotal.WithLabelValues("location")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
	if len(collectors) == 0 {
		t.Fatal("expected collectors to be enqueued by init")
	}
}

func TestRegisterSkipsDuplicates(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := Register(reg); err != nil {
		t.Fatalf("second register should skip known collectors: %v", err)
	}

	SetBuildInfo("", "")
	if got := testutil.ToFloat64(buildInfo.WithLabelValues("dev", "unknown", runtime.Version())); got != 1 {
		t.Fatalf("expected build info gauge 1, got %v", got)
	}
	if testutil.ToFloat64(startTime) == 0 {
		t.Fatal("expected start time to be set")
	}
}

func TestContentSnapshot(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	SetContentSnapshot(1234, at)
	if got := testutil.ToFloat64(contentCacheBytes); got != 1234 {
		t.Fatalf("expected 1234 bytes, got %v", got)
	}
	if got := testutil.ToFloat64(contentCacheRefreshedAt); got != float64(at.Unix()) {
		t.Fatalf("unexpected refresh time %v", got)
	}

	before := testutil.ToFloat64(contentCacheLookups.WithLabelValues("stale_kept"))
	IncContentCache(" STALE_KEPT")
	if got := testutil.ToFloat64(contentCacheLookups.WithLabelValues("stale_kept")); got != before+1 {
		t.Fatalf("expected %v, got %v", before+1, got)
	}
}
