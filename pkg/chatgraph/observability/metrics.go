package observability

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricNodeExecutions = "chatgraph.node.executions"
	MetricNodeLatency    = "chatgraph.node.latency_ms"
	MetricNodeErrors     = "chatgraph.node.errors"
	MetricGraphRuns      = "chatgraph.graph.runs"
	MetricGraphLatency   = "chatgraph.graph.latency_ms"
	MetricRouteDecisions = "chatgraph.route.decisions"
)

// MetricsRecorder records run measurements. Every measurement carries the
// graph name so several workflows can share one meter provider.
type MetricsRecorder interface {
	RecordNodeExecution(ctx context.Context, graph, nodeID string, elapsed time.Duration, err error)
	RecordGraphRun(ctx context.Context, graph string, success bool, elapsed time.Duration)
	RecordRouteDecision(ctx context.Context, graph, from, label string)
}

type otelMetrics struct {
	nodeExecutions metric.Int64Counter
	nodeLatency    metric.Float64Histogram
	nodeErrors     metric.Int64Counter
	graphRuns      metric.Int64Counter
	graphLatency   metric.Float64Histogram
	routeDecisions metric.Int64Counter
}

// recorders caches instruments per meter provider.
var recorders sync.Map

// NewMetricsRecorder returns a recorder on the current global meter
// provider. Instruments are created once per provider. If they cannot be
// created a warning is logged and a no-op recorder returned.
func NewMetricsRecorder() MetricsRecorder {
	provider := otel.GetMeterProvider()
	if m, ok := recorders.Load(provider); ok {
		return m.(*otelMetrics)
	}

	m, err := newOtelMetrics(provider.Meter(instrumentationName))
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	actual, _ := recorders.LoadOrStore(provider, m)
	return actual.(*otelMetrics)
}

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	var m otelMetrics
	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("ms"))
		errs = append(errs, err)
		return h
	}

	m.nodeExecutions = counter(MetricNodeExecutions, "Node executions")
	m.nodeLatency = histogram(MetricNodeLatency, "Node execution latency")
	m.nodeErrors = counter(MetricNodeErrors, "Node executions that returned an error")
	m.graphRuns = counter(MetricGraphRuns, "Graph runs")
	m.graphLatency = histogram(MetricGraphLatency, "Graph run latency")
	m.routeDecisions = counter(MetricRouteDecisions, "Labels returned by routers")

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *otelMetrics) RecordNodeExecution(ctx context.Context, graph, nodeID string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("graph", graph),
		attribute.String("node_id", nodeID),
	)
	m.nodeExecutions.Add(ctx, 1, attrs)
	m.nodeLatency.Record(ctx, milliseconds(elapsed), attrs)
	if err != nil {
		m.nodeErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordGraphRun(ctx context.Context, graph string, success bool, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("graph", graph),
		attribute.Bool("success", success),
	)
	m.graphRuns.Add(ctx, 1, attrs)
	m.graphLatency.Record(ctx, milliseconds(elapsed), attrs)
}

func (m *otelMetrics) RecordRouteDecision(ctx context.Context, graph, from, label string) {
	m.routeDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("graph", graph),
		attribute.String("from", from),
		attribute.String("label", label),
	))
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
