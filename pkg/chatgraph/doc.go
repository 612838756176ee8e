/*
Package chatgraph provides a conditional state-graph engine for chat workflows.

# Overview

A workflow is a set of named nodes that each transform a caller-defined
state value, connected by edges. An unconditional edge always moves to the
same successor. A conditional edge asks a router for a label and looks the
label up in a closed route table. The walk starts at the entry node and
stops when a transition reaches END.

# Basic Usage

Register nodes first, then declare edges and the entry point. Every
construction call returns an error immediately:

	type State struct {
	    Messages []llm.Message
	    Intent   string
	}

	g := chatgraph.NewGraph[State]()
	if err := errors.Join(
	    g.AddNode("classifier", classify),
	    g.AddNode("greeting", greet),
	    g.AddNode("general", general),
	    g.SetEntry("classifier"),
	    g.AddConditionalEdges("classifier", byIntent, map[chatgraph.Label]string{
	        "greeting": "greeting",
	        "general":  "general",
	    }, chatgraph.WithLabels("greeting", "general")),
	    g.AddEdge("greeting", chatgraph.END),
	    g.AddEdge("general", chatgraph.END),
	); err != nil {
	    return err
	}

	compiled, err := g.Compile()
	if err != nil {
	    return err
	}

	ctx := chatgraph.NewContext(context.Background())
	result, err := compiled.Invoke(ctx, State{Messages: msgs})

# Routing

Routers return a Label, never a node ID. A label missing from the route
table fails the run with *UnroutableLabelError. Declaring the router's
labels with WithLabels moves that check to construction time.

# Loops

Cycles are allowed. Each Invoke is bounded by a step limit (default 1000,
see WithMaxSteps and WithoutStepLimit); exceeding it returns
*StepLimitExceededError carrying the state at termination.

# Errors

Construction errors are typed and unwrap to sentinels:

	err := g.AddNode("greeting", greet)
	var dup *chatgraph.DuplicateNodeError
	if errors.As(err, &dup) { ... }
	if errors.Is(err, chatgraph.ErrDuplicateNode) { ... }

Errors returned by nodes propagate unchanged, so callers can match them
directly. Panics inside nodes are recovered into *PanicError.

# Observability

Run options enable structured logging, OpenTelemetry metrics and spans:

	result, err := compiled.Invoke(ctx, state,
	    chatgraph.WithObservabilityLogger(logger),
	    chatgraph.WithMetrics(true),
	    chatgraph.WithTracing(true),
	)

# Concurrency

A CompiledGraph is immutable and safe for concurrent Invoke calls. Each run
owns its state value. The Graph builder is safe for concurrent use but is
normally built from a single goroutine.
*/
package chatgraph
