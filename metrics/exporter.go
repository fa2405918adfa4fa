// Package metrics wires OpenTelemetry counters and histograms around
// list.Locked's public operations: per-call latency and outcome
// (success, duplicate, not-found), exported either to stdout for a
// dev run or to a Prometheus /metrics endpoint for a soak run.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// ShutdownFunc flushes and stops an exporter's background reader.
type ShutdownFunc func(ctx context.Context) error

// NewConsoleExporter periodically dumps metrics to stdout. Intended
// for local runs of cmd/sklbench without a Prometheus scraper.
func NewConsoleExporter(interval, timeout time.Duration) (ShutdownFunc, error) {
	exporter, err := stdoutmetric.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

// NewPrometheusExporter registers a pull-based Prometheus collector.
// The caller is responsible for serving its HTTP handler (see
// promhttp.Handler in cmd/sklbench).
func NewPrometheusExporter() (ShutdownFunc, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
