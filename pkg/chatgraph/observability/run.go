// Package observability records what a chatgraph run did: structured logs
// through slog, OpenTelemetry metrics and OpenTelemetry spans.
//
// A Run is opened per Invoke and a Node per visited node. Each signal is
// optional; a Run built from the zero Options records nothing.
package observability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Options selects the signals a Run emits. Nil fields are disabled.
type Options struct {
	Logger  *slog.Logger
	Metrics MetricsRecorder
	Spans   SpanManager
}

// Run observes one walk of a graph.
type Run struct {
	graph   string
	runID   string
	logger  *slog.Logger
	metrics MetricsRecorder
	spans   SpanManager
	span    trace.Span
	start   time.Time
}

// StartRun logs the start of a run and opens its span.
// The returned context carries the run span when tracing is enabled.
func StartRun(ctx context.Context, graph, runID string, opts Options) (context.Context, *Run) {
	r := &Run{
		graph:   graph,
		runID:   runID,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		spans:   opts.Spans,
		start:   time.Now(),
	}
	if r.metrics == nil {
		r.metrics = NoopMetrics{}
	}
	if r.spans == nil {
		r.spans = NoopSpanManager{}
	}

	ctx, r.span = r.spans.StartRunSpan(ctx, graph, runID)
	r.log(slog.LevelInfo, "graph run starting")
	return ctx, r
}

// StartNode opens the span for one node execution.
func (r *Run) StartNode(ctx context.Context, nodeID string, step int) *Node {
	n := &Node{run: r, id: nodeID, step: step, start: time.Now()}
	n.ctx, n.span = r.spans.StartNodeSpan(ctx, nodeID, step)
	r.log(slog.LevelDebug, "node starting",
		slog.String("node_id", nodeID),
		slog.Int("step", step),
	)
	return n
}

// Route records the label a router returned and where it led.
// ctx should carry the run span.
func (r *Run) Route(ctx context.Context, from, label, to string) {
	r.metrics.RecordRouteDecision(ctx, r.graph, from, label)
	AddSpanEvent(ctx, "route",
		attribute.String("from", from),
		attribute.String("label", label),
		attribute.String("to", to),
	)
	r.log(slog.LevelDebug, "route selected",
		slog.String("from", from),
		slog.String("label", label),
		slog.String("to", to),
	)
}

// End closes the run. lastNode is the last node that started.
func (r *Run) End(ctx context.Context, steps int, lastNode string, err error) {
	elapsed := time.Since(r.start)
	r.metrics.RecordGraphRun(ctx, r.graph, err == nil, elapsed)
	r.spans.EndSpan(r.span, err)

	if err != nil {
		r.log(slog.LevelError, "graph run failed",
			slog.String("error", err.Error()),
			slog.String("last_node", lastNode),
			slog.Int("steps", steps),
			durationAttr(elapsed),
		)
		return
	}
	r.log(slog.LevelInfo, "graph run completed",
		slog.Int("steps", steps),
		durationAttr(elapsed),
	)
}

func (r *Run) log(level slog.Level, msg string, attrs ...slog.Attr) {
	if r.logger == nil {
		return
	}
	base := []slog.Attr{
		slog.String("graph", r.graph),
		slog.String("run_id", r.runID),
	}
	r.logger.LogAttrs(context.Background(), level, msg, append(base, attrs...)...)
}

// Node observes one node execution within a Run.
type Node struct {
	run   *Run
	ctx   context.Context
	id    string
	step  int
	span  trace.Span
	start time.Time
}

// Context returns the context carrying the node span.
func (n *Node) Context() context.Context {
	return n.ctx
}

// End closes the node span and records the outcome.
func (n *Node) End(err error) {
	elapsed := time.Since(n.start)
	n.run.metrics.RecordNodeExecution(n.ctx, n.run.graph, n.id, elapsed, err)
	n.run.spans.EndSpan(n.span, err)

	if err != nil {
		n.run.log(slog.LevelError, "node failed",
			slog.String("node_id", n.id),
			slog.Int("step", n.step),
			slog.String("error", err.Error()),
		)
		return
	}
	n.run.log(slog.LevelDebug, "node completed",
		slog.String("node_id", n.id),
		slog.Int("step", n.step),
		durationAttr(elapsed),
	)
}

func durationAttr(d time.Duration) slog.Attr {
	return slog.Float64("duration_ms", milliseconds(d))
}
