package chatgraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context is what nodes and routers receive: a context.Context plus the
// identity of the current run and step.
//
// A Context never changes once built. Invoke derives a fresh one for every
// step, so NodeID and Step always describe the node being executed.
// Model clients and other collaborators are not carried here; nodes get
// them when they are constructed.
type Context interface {
	context.Context

	// Logger is never nil. During a run it carries run_id, node_id and step.
	Logger() *slog.Logger

	// RunID identifies the run. NewContext generates a UUID unless one is given.
	RunID() string

	// NodeID is the node being executed, or "" outside a run.
	NodeID() string

	// Step is the 1-based step number, or 0 outside a run.
	Step() int
}

type stepInfo struct {
	runID  string
	nodeID string
	step   int
}

type graphContext struct {
	context.Context
	stepInfo
	logger *slog.Logger
}

func (c *graphContext) Logger() *slog.Logger { return c.logger }
func (c *graphContext) RunID() string { return c.runID }
func (c *graphContext) NodeID() string { return c.nodeID }
func (c *graphContext) Step() int { return c.step }

// ContextOption configures NewContext.
type ContextOption func(*graphContext)

// WithLogger sets the base logger. Invoke adds run and step attributes to
// it for each node. A nil logger is ignored.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *graphContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContextRunID fixes the run ID instead of generating one.
func WithContextRunID(id string) ContextOption {
	return func(c *graphContext) {
		c.runID = id
	}
}

// NewContext wraps ctx for use with Invoke.
//
//	ctx := chatgraph.NewContext(context.Background(),
//	    chatgraph.WithLogger(logger),
//	    chatgraph.WithContextRunID("run-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	c := &graphContext{Context: ctx, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.runID == "" {
		c.runID = uuid.NewString()
	}
	return c
}

// forStep builds the Context for one node execution. base carries the node
// span, if any; parent supplies the logger.
func forStep(base context.Context, parent Context, runID, nodeID string, step int) Context {
	logger := parent.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return &graphContext{
		Context:  base,
		stepInfo: stepInfo{runID: runID, nodeID: nodeID, step: step},
		logger:   logger.With("run_id", runID, "node_id", nodeID, "step", step),
	}
}
