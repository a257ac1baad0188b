package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records pipeline metrics through the OpenTelemetry metric SDK
// with a Prometheus exporter; the default registry is served on /metrics.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	requests      otelmetric.Int64Counter
	stageDuration otelmetric.Float64Histogram
	searchResults otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	requests, _ := meter.Int64Counter(
		"assistant.requests",
		otelmetric.WithDescription("Number of assistant requests handled"),
	)

	stageDuration, _ := meter.Float64Histogram(
		"assistant.stage.duration",
		otelmetric.WithDescription("Pipeline stage duration"),
		otelmetric.WithUnit("ms"),
	)

	searchResults, _ := meter.Int64Counter(
		"assistant.search.results",
		otelmetric.WithDescription("Number of search results gathered"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		requests:      requests,
		stageDuration: stageDuration,
		searchResults: searchResults,
	}
}

// RecordRequest counts one handled request by endpoint and outcome.
func (o *Observability) RecordRequest(ctx context.Context, endpoint string, status string) {
	if o.requests != nil {
		o.requests.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", status),
		))
	}
}

// RecordStageDuration records how long one pipeline stage took.
func (o *Observability) RecordStageDuration(ctx context.Context, stage string, duration time.Duration) {
	if o.stageDuration != nil {
		o.stageDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("stage", stage),
		))
	}
}

// RecordSearchResults counts results gathered by the fan-out searcher.
func (o *Observability) RecordSearchResults(ctx context.Context, count int) {
	if o.searchResults != nil {
		o.searchResults.Add(ctx, int64(count))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
