package farm

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/LeonardoBeccarini/spacefarm/internal/simulation"
)

func TestMetricsFollowState(t *testing.T) {
	svc, _, _ := newTestService(t, testPlant(0, 95, 80, 80), testPlant(1, 15, 50, 50))
	m := NewMetrics()
	svc.SetMetrics(m)

	if got := testutil.ToFloat64(m.plants.WithLabelValues("total")); got != 2 {
		t.Errorf("total plants gauge = %v", got)
	}
	if got := testutil.ToFloat64(m.avgWater); got != 55 {
		t.Errorf("average water gauge = %v, want 55", got)
	}

	ctx := context.Background()
	_, _ = svc.Apply(ctx, simulation.ActionDrainage, nil, "")
	_, _ = svc.Apply(ctx, simulation.ActionManual, nil, "")

	if got := testutil.ToFloat64(m.avgWater); got != 45 {
		t.Errorf("average water after drain = %v, want 45", got)
	}
	if got := testutil.ToFloat64(m.actions.WithLabelValues("drainage", "OK")); got != 1 {
		t.Errorf("drainage OK counter = %v", got)
	}
	if got := testutil.ToFloat64(m.actions.WithLabelValues("manual", "FAIL")); got != 1 {
		t.Errorf("manual FAIL counter = %v", got)
	}
	if got := testutil.ToFloat64(m.weather.WithLabelValues("temperature")); got != svc.Weather().Temperature {
		t.Errorf("temperature gauge = %v", got)
	}
}
