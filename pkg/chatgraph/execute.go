package chatgraph

import (
	"context"
	"runtime/debug"

	"github.com/randalmurphal/chatgraph/pkg/chatgraph/observability"
)

// Invoke walks the graph from the entry node with the given initial state.
// Returns the final state once a node transitions to END.
//
// On error, returns the state at the point of failure (useful for debugging).
// Errors returned by a node propagate unchanged; the engine never retries.
//
// Execution flow:
//  1. Start at the entry point node
//  2. Check the step bound and cancellation
//  3. Execute the current node
//  4. Determine the next node (via unconditional edge or router + route table)
//  5. Repeat until END is reached or an error occurs
//
// Example:
//
//	ctx := chatgraph.NewContext(context.Background())
//	result, err := compiled.Invoke(ctx, initialState)
func (cg *CompiledGraph[S]) Invoke(ctx Context, state S, opts ...RunOption) (result S, runErr error) {
	if ctx == nil {
		return state, ErrNilContext
	}

	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	spanCtx, obs := observability.StartRun(ctx, cg.name, runID, cfg.observabilityOptions())

	var steps int
	var lastNode string
	result, steps, lastNode, runErr = cg.walk(spanCtx, ctx, runID, state, obs, cfg.stepHook)

	obs.End(spanCtx, steps, lastNode, runErr)
	return result, runErr
}

// walk is the execution loop.
// Returns the final state, the number of completed steps, and the last node visited.
func (cg *CompiledGraph[S]) walk(spanCtx context.Context, ctx Context, runID string, state S, obs *observability.Run, hook StepHook) (S, int, string, error) {
	if err := cg.validateState("", state); err != nil {
		return state, 0, "", err
	}

	current := cg.entryPoint
	lastNode := ""
	steps := 0

	for current != END {
		if cg.maxSteps > 0 && steps >= cg.maxSteps {
			return state, steps, lastNode, &StepLimitExceededError{
				Max:        cg.maxSteps,
				LastNodeID: current,
				State:      state,
			}
		}

		select {
		case <-ctx.Done():
			return state, steps, lastNode, &CancellationError{
				NodeID: current,
				State:  state,
				Cause:  ctx.Err(),
			}
		default:
		}

		step := steps + 1
		lastNode = current

		n := obs.StartNode(spanCtx, current, step)
		nodeCtx := forStep(n.Context(), ctx, runID, current, step)
		next, err := cg.executeNode(nodeCtx, current, state)
		n.End(err)
		if err != nil {
			return next, steps, lastNode, err
		}
		state = next
		steps = step

		if err := cg.validateState(current, state); err != nil {
			return state, steps, lastNode, err
		}

		if hook != nil {
			hook(step, current)
		}

		label, to, err := cg.nextNode(nodeCtx, state, current)
		if err != nil {
			return state, steps, lastNode, err
		}
		if label != "" {
			obs.Route(spanCtx, current, string(label), to)
		}
		current = to
	}

	return state, steps, lastNode, nil
}

// executeNode executes a single node with panic recovery.
// A node error is returned as-is so callers can match it with errors.Is.
func (cg *CompiledGraph[S]) executeNode(ctx Context, nodeID string, state S) (result S, err error) {
	fn, exists := cg.getNode(nodeID)
	if !exists {
		// Unreachable after a successful Compile
		return state, &UnknownNodeError{NodeID: nodeID, Op: "execute"}
	}

	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	return fn(ctx, state)
}

// nextNode determines the next node to execute. label is empty when the
// transition was an unconditional edge. A panicking router is recovered
// into a *PanicError with Router set.
func (cg *CompiledGraph[S]) nextNode(ctx Context, state S, current string) (label Label, to string, err error) {
	if to, exists := cg.edges[current]; exists {
		return "", to, nil
	}

	ce, exists := cg.conditionalEdges[current]
	if !exists {
		return "", "", &DeadEndError{NodeID: current}
	}

	defer func() {
		if r := recover(); r != nil {
			label, to = "", ""
			err = &PanicError{
				NodeID: current,
				Router: true,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	label = ce.router(ctx, state)
	to, ok := ce.routes[label]
	if !ok {
		return label, "", &UnroutableLabelError{From: current, Label: label}
	}
	return label, to, nil
}

// validateState applies the `validate` tags of S when state validation is enabled.
func (cg *CompiledGraph[S]) validateState(nodeID string, state S) error {
	if cg.validate == nil {
		return nil
	}
	if err := cg.validate.Struct(state); err != nil {
		return &StateValidationError{NodeID: nodeID, Err: err}
	}
	return nil
}
