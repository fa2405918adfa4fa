package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome classifies how a recorded operation ended.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeNotFound  Outcome = "not_found"
)

// Recorder is attached to a list.Locked instance to observe op
// latency and outcome. A nil *Recorder is valid and records nothing,
// so attaching metrics is always optional.
type Recorder struct {
	latency  metric.Float64Histogram
	outcomes metric.Int64Counter
}

// NewRecorder creates the instruments this package emits, under the
// given meter (obtained from otel.Meter(name) after an exporter has
// installed a MeterProvider).
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	latency, err := meter.Float64Histogram(
		"skiplist.op.latency",
		metric.WithDescription("Latency of a list.Locked operation."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	outcomes, err := meter.Int64Counter(
		"skiplist.op.outcomes",
		metric.WithDescription("Count of list.Locked operations by outcome."),
	)
	if err != nil {
		return nil, err
	}
	return &Recorder{latency: latency, outcomes: outcomes}, nil
}

// Observe records one completed operation. Safe to call on a nil
// Recorder.
func (r *Recorder) Observe(ctx context.Context, op string, outcome Outcome, elapsed time.Duration) {
	if r == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", string(outcome)),
	)
	r.latency.Record(ctx, elapsed.Seconds(), attrs)
	r.outcomes.Add(ctx, 1, attrs)
}
