package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	// Use a fresh registry to avoid polluting the default one
	return NewMetricsWith(promauto.With(prometheus.NewRegistry()))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return *metric.Counter.Value
}

func TestNewMetricsWith(t *testing.T) {
	m := newTestMetrics(t)

	if m.URLsBuiltTotal == nil {
		t.Error("URLsBuiltTotal should not be nil")
	}
	if m.UnknownParamTotal == nil {
		t.Error("UnknownParamTotal should not be nil")
	}
	if m.AssetLookupTotal == nil {
		t.Error("AssetLookupTotal should not be nil")
	}
	if m.RenderTotal == nil {
		t.Error("RenderTotal should not be nil")
	}
	if m.RenderDurationMicros == nil {
		t.Error("RenderDurationMicros should not be nil")
	}
	if m.RateLimitHitsTotal == nil {
		t.Error("RateLimitHitsTotal should not be nil")
	}
}

func TestRecordURL(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordURL("cloudinary", "image", "standard")
	m.RecordURL("cloudinary", "image", "standard")

	counter, err := m.URLsBuiltTotal.GetMetricWithLabelValues("cloudinary", "image", "standard")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	if v := counterValue(t, counter); v != 2 {
		t.Errorf("expected 2 urls, got %v", v)
	}
}

func TestRecordUnknownParam(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordUnknownParam("sparkle")

	counter, _ := m.UnknownParamTotal.GetMetricWithLabelValues("sparkle")
	if v := counterValue(t, counter); v != 1 {
		t.Errorf("expected 1 unknown param, got %v", v)
	}
}

func TestRecordRender(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordRender(RenderLabels{Mode: "single", Status: "ok", DurationMicros: 42})

	counter, _ := m.RenderTotal.GetMetricWithLabelValues("single", "ok")
	if v := counterValue(t, counter); v != 1 {
		t.Errorf("expected 1 render, got %v", v)
	}

	var metric dto.Metric
	hist, _ := m.RenderDurationMicros.GetMetricWithLabelValues("single")
	hist.(prometheus.Histogram).Write(&metric)
	if metric.Histogram.GetSampleCount() != 1 {
		t.Errorf("expected 1 observation, got %d", metric.Histogram.GetSampleCount())
	}
}

func TestRecordRateLimitHit(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordRateLimitHit("/v1/url")

	counter, _ := m.RateLimitHitsTotal.GetMetricWithLabelValues("/v1/url")
	if v := counterValue(t, counter); v != 1 {
		t.Errorf("expected 1 rate limit hit, got %v", v)
	}
}
