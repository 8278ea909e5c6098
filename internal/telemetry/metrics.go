package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the delivery service.
type Metrics struct {
	URLsBuiltTotal       *prometheus.CounterVec
	UnknownParamTotal    *prometheus.CounterVec
	AssetLookupTotal     *prometheus.CounterVec
	RenderTotal          *prometheus.CounterVec
	RenderDurationMicros *prometheus.HistogramVec
	RateLimitHitsTotal   *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(promauto.With(prometheus.DefaultRegisterer))
}

// NewMetricsWith creates the metrics through the given factory, so tests can
// use a private registry.
func NewMetricsWith(factory promauto.Factory) *Metrics {
	return &Metrics{
		URLsBuiltTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "media_urls_built_total",
			Help: "Total number of delivery URLs built.",
		}, []string{"provider", "kind", "variant"}),

		UnknownParamTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "media_unknown_param_total",
			Help: "Transformation parameters dropped because they have no short code.",
		}, []string{"param"}),

		AssetLookupTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "media_asset_lookup_total",
			Help: "Asset lookups by outcome.",
		}, []string{"result"}),

		RenderTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "media_render_total",
			Help: "Tag renders by mode and outcome.",
		}, []string{"mode", "status"}),

		RenderDurationMicros: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "media_render_duration_us",
			Help:    "Render duration in microseconds, including asset lookup.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 5000, 25000, 100000},
		}, []string{"mode"}),

		RateLimitHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "media_ratelimit_hits_total",
			Help: "API requests rejected by the rate limiter.",
		}, []string{"route"}),
	}
}

// RecordURL records a built delivery URL.
func (m *Metrics) RecordURL(provider, kind, variant string) {
	m.URLsBuiltTotal.WithLabelValues(provider, kind, variant).Inc()
}

// RecordUnknownParam records a transformation parameter that was dropped.
func (m *Metrics) RecordUnknownParam(param string) {
	m.UnknownParamTotal.WithLabelValues(param).Inc()
}

// RecordAssetLookup records the outcome of an asset lookup.
func (m *Metrics) RecordAssetLookup(result string) {
	m.AssetLookupTotal.WithLabelValues(result).Inc()
}

// RecordRender records a completed render.
func (m *Metrics) RecordRender(labels RenderLabels) {
	m.RenderTotal.WithLabelValues(labels.Mode, labels.Status).Inc()
	m.RenderDurationMicros.WithLabelValues(labels.Mode).Observe(labels.DurationMicros)
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimitHit(route string) {
	m.RateLimitHitsTotal.WithLabelValues(route).Inc()
}

// RenderLabels holds the label values for recording a render.
type RenderLabels struct {
	Mode           string
	Status         string
	DurationMicros float64
}
