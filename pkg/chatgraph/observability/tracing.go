package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "chatgraph"

// SpanManager opens and closes the spans of a run.
type SpanManager interface {
	// StartRunSpan starts the root span of a run.
	StartRunSpan(ctx context.Context, graph, runID string) (context.Context, trace.Span)

	// StartNodeSpan starts a node span as a child of the span in ctx.
	StartNodeSpan(ctx context.Context, nodeID string, step int) (context.Context, trace.Span)

	// EndSpan ends span, marking it failed when err is non-nil.
	EndSpan(span trace.Span, err error)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager backed by the global tracer provider.
// The provider is looked up on every span, so one installed later with
// otel.SetTracerProvider is picked up.
func NewSpanManager() SpanManager {
	return otelSpanManager{}
}

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(instrumentationName)
}

// StartRunSpan starts a "chatgraph.run" span.
func (otelSpanManager) StartRunSpan(ctx context.Context, graph, runID string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "chatgraph.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("chatgraph.graph", graph),
			attribute.String("chatgraph.run_id", runID),
		),
	)
}

// StartNodeSpan starts a "chatgraph.node.<id>" span.
func (otelSpanManager) StartNodeSpan(ctx context.Context, nodeID string, step int) (context.Context, trace.Span) {
	return tracer().Start(ctx, "chatgraph.node."+nodeID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("chatgraph.node_id", nodeID),
			attribute.Int("chatgraph.step", step),
		),
	)
}

func (otelSpanManager) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the span in ctx, if it is recording.
// Nodes use it to annotate model calls and inventory lookups.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
