package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics discards measurements.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

// RecordNodeExecution discards the measurement.
func (NoopMetrics) RecordNodeExecution(context.Context, string, string, time.Duration, error) {}

// RecordGraphRun discards the measurement.
func (NoopMetrics) RecordGraphRun(context.Context, string, bool, time.Duration) {}

// RecordRouteDecision discards the decision.
func (NoopMetrics) RecordRouteDecision(context.Context, string, string, string) {}

// NoopSpanManager leaves contexts untouched and hands out non-recording spans.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

// StartRunSpan returns ctx unchanged with a non-recording span.
func (NoopSpanManager) StartRunSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

// StartNodeSpan returns ctx unchanged with a non-recording span.
func (NoopSpanManager) StartNodeSpan(ctx context.Context, _ string, _ int) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

// EndSpan does nothing.
func (NoopSpanManager) EndSpan(trace.Span, error) {}
