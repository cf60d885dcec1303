package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordForecast("Bitcoin", "lstm", 3)
	r.RecordForecast("Bitcoin", "lstm", 3)
	r.RecordError("insufficient_history")
	r.RecordLastPrice("Bitcoin", "lstm", 65000.5)
	r.RecordCache(true)
	r.RecordCache(false)
	r.RecordCache(false)

	if got := testutil.ToFloat64(r.forecasts.WithLabelValues("Bitcoin", "lstm", "3")); got != 2 {
		t.Fatalf("forecasts = %v", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("Bitcoin", "lstm")); got != 65000.5 {
		t.Fatalf("last price = %v", got)
	}
	if got := testutil.ToFloat64(r.cache.WithLabelValues("miss")); got != 2 {
		t.Fatalf("cache misses = %v", got)
	}
	if n, err := testutil.GatherAndCount(reg, "coincast_errors_total"); err != nil || n != 1 {
		t.Fatalf("errors series = %d, %v", n, err)
	}
}
