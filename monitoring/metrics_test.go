package monitoring

import (
	"strings"
	"sync"
	"testing"
)

func TestCounterAccumulatesPerLabelSet(t *testing.T) {
	mc := NewMetricsCollector()
	mc.IncrCounter("predictions_total", 1, map[string]string{"outcome": "ok"})
	mc.IncrCounter("predictions_total", 1, map[string]string{"outcome": "ok"})
	mc.IncrCounter("predictions_total", 1, map[string]string{"outcome": "validation"})

	series, err := mc.GetMetric("predictions_total")
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	if series[0].Labels["outcome"] != "ok" || series[0].Value != 2 {
		t.Fatalf("unexpected ok series %+v", series[0])
	}
	if series[1].Value != 1 {
		t.Fatalf("unexpected validation series %+v", series[1])
	}
}

func TestObserveSummary(t *testing.T) {
	mc := NewMetricsCollector()
	for _, v := range []float64{0.2, 0.1, 0.3} {
		mc.Observe("prediction_duration_seconds", v, nil)
	}
	series, err := mc.GetMetric("prediction_duration_seconds")
	if err != nil {
		t.Fatal(err)
	}
	m := series[0]
	if m.Count != 3 || m.Min != 0.1 || m.Max != 0.3 {
		t.Fatalf("unexpected summary %+v", m)
	}
}

func TestGetMetricMissing(t *testing.T) {
	if _, err := NewMetricsCollector().GetMetric("nope"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExportPrometheus(t *testing.T) {
	mc := NewMetricsCollector()
	mc.Describe("predictions_total", "Predictions served")
	mc.IncrCounter("predictions_total", 3, map[string]string{"outcome": "ok", "channel": "api"})
	mc.SetGauge("models_loaded", 1, nil)
	mc.Observe("prediction_duration_seconds", 0.5, nil)

	out := mc.ExportPrometheus()
	for _, want := range []string{
		"# HELP predictions_total Predictions served",
		"# TYPE predictions_total counter",
		`predictions_total{channel="api",outcome="ok"} 3`,
		"models_loaded 1",
		"prediction_duration_seconds_count 1",
		"prediction_duration_seconds_sum 0.5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}
}

func TestNilCollectorIgnoresUpdates(t *testing.T) {
	var mc *MetricsCollector
	mc.IncrCounter("x", 1, nil)
	mc.Observe("y", 1, nil)
}

func TestConcurrentUpdates(t *testing.T) {
	mc := NewMetricsCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mc.IncrCounter("hits", 1, nil)
		}()
	}
	wg.Wait()
	series, _ := mc.GetMetric("hits")
	if series[0].Value != 50 {
		t.Fatalf("expected 50, got %v", series[0].Value)
	}
}
