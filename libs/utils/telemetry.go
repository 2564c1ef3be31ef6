package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.11.0"
)

// DefaultMetricsInterval is how often metrics are exported when no interval is configured.
const DefaultMetricsInterval = 10 * time.Second

// MetricProviderConfig holds configuration for creating a metric provider
type MetricProviderConfig struct {
	// ServiceNamespace groups services of the same deployment
	ServiceNamespace string
	// ServiceName is the name of the running command
	ServiceName string
	// ServiceInstanceID distinguishes concurrent runs, defaults to the hostname
	ServiceInstanceID string
	// Interval is the interval at which metrics are collected and exported
	Interval time.Duration
	// OTLPOptions are OTLP HTTP options (e.g., endpoint, headers, TLS config)
	OTLPOptions []otlpmetrichttp.Option
}

// NewMetricProvider creates a new OTLP metric provider with the given configuration.
// The provider has to be shut down to flush the last metrics.
func NewMetricProvider(ctx context.Context, cfg MetricProviderConfig) (*sdk.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression)}
	opts = append(opts, cfg.OTLPOptions...)

	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP metric exporter: %w", err)
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = DefaultMetricsInterval
	}
	instance := cfg.ServiceInstanceID
	if instance == "" {
		instance, _ = os.Hostname()
	}

	provider := sdk.NewMeterProvider(
		sdk.WithReader(
			sdk.NewPeriodicReader(exp,
				sdk.WithTimeout(interval),
				sdk.WithInterval(interval))),
		sdk.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNamespaceKey.String(cfg.ServiceNamespace),
				semconv.ServiceNameKey.String(cfg.ServiceName),
				semconv.ServiceInstanceIDKey.String(instance),
			)))

	return provider, nil
}
