package chatgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph building and compilation.
var (
	// ErrInvalidNodeID indicates an empty, reserved, or whitespace-containing node ID.
	ErrInvalidNodeID = errors.New("invalid node ID")

	// ErrNilNode indicates AddNode was called with a nil function.
	ErrNilNode = errors.New("node function cannot be nil")

	// ErrNilRouter indicates AddConditionalEdges was called with a nil router.
	ErrNilRouter = errors.New("router function cannot be nil")

	// ErrEmptyRoutes indicates AddConditionalEdges was called without any routes.
	ErrEmptyRoutes = errors.New("route table cannot be empty")

	// ErrGraphCompiled indicates a construction call after Compile().
	ErrGraphCompiled = errors.New("graph already compiled")

	// ErrNoEntryPoint indicates SetEntry() was not called before Compile().
	ErrNoEntryPoint = errors.New("entry point not set")

	// ErrInvalidMaxSteps indicates a non-positive step bound.
	ErrInvalidMaxSteps = errors.New("max steps must be > 0")

	// ErrDuplicateNode is the sentinel behind DuplicateNodeError.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode is the sentinel behind UnknownNodeError.
	ErrUnknownNode = errors.New("unknown node")

	// ErrDuplicateEdge is the sentinel behind DuplicateEdgeError.
	ErrDuplicateEdge = errors.New("node already has an outgoing edge")
)

// Sentinel errors for execution.
var (
	// ErrNilContext indicates Invoke() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrUnroutableLabel is the sentinel behind UnroutableLabelError.
	ErrUnroutableLabel = errors.New("label has no route")

	// ErrDeadEnd is the sentinel behind DeadEndError.
	ErrDeadEnd = errors.New("node has no outgoing edge")

	// ErrStepLimitExceeded is the sentinel behind StepLimitExceededError.
	ErrStepLimitExceeded = errors.New("exceeded maximum steps")
)

// DuplicateNodeError is returned by AddNode when the name is already registered.
type DuplicateNodeError struct {
	NodeID string
}

// Error implements the error interface.
func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("duplicate node ID: %s", e.NodeID)
}

// Unwrap returns ErrDuplicateNode for errors.Is support.
func (e *DuplicateNodeError) Unwrap() error {
	return ErrDuplicateNode
}

// UnknownNodeError is returned when an operation references an unregistered node.
type UnknownNodeError struct {
	// NodeID is the name that was not found.
	NodeID string
	// Op is the operation that referenced it ("entry", "edge source", "edge target", "execute").
	Op string
}

// Error implements the error interface.
func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("%s: unknown node %q", e.Op, e.NodeID)
}

// Unwrap returns ErrUnknownNode for errors.Is support.
func (e *UnknownNodeError) Unwrap() error {
	return ErrUnknownNode
}

// DuplicateEdgeError is returned when a node already has an outgoing edge.
// A node has exactly one outgoing edge set: unconditional or conditional.
type DuplicateEdgeError struct {
	// From is the source node.
	From string
	// Existing describes the edge already declared ("edge" or "conditional edge").
	Existing string
}

// Error implements the error interface.
func (e *DuplicateEdgeError) Error() string {
	return fmt.Sprintf("node %s already has an outgoing %s", e.From, e.Existing)
}

// Unwrap returns ErrDuplicateEdge for errors.Is support.
func (e *DuplicateEdgeError) Unwrap() error {
	return ErrDuplicateEdge
}

// UnroutableLabelError is returned when a label has no destination in the route table.
// At construction time it reports a declared label missing from the routes;
// at run time it reports a router that returned an undeclared label.
type UnroutableLabelError struct {
	// From is the node with the conditional edge.
	From string
	// Label is the label without a route.
	Label Label
}

// Error implements the error interface.
func (e *UnroutableLabelError) Error() string {
	return fmt.Sprintf("router from %s: label %q has no route", e.From, e.Label)
}

// Unwrap returns ErrUnroutableLabel for errors.Is support.
func (e *UnroutableLabelError) Unwrap() error {
	return ErrUnroutableLabel
}

// DeadEndError is returned when the walk reaches a non-terminal node
// that declares no outgoing edge.
type DeadEndError struct {
	NodeID string
}

// Error implements the error interface.
func (e *DeadEndError) Error() string {
	return fmt.Sprintf("node %s has no outgoing edge", e.NodeID)
}

// Unwrap returns ErrDeadEnd for errors.Is support.
func (e *DeadEndError) Unwrap() error {
	return ErrDeadEnd
}

// StepLimitExceededError provides context when the step bound is exceeded.
// It includes the state at termination for inspection.
type StepLimitExceededError struct {
	// Max is the configured step limit.
	Max int
	// LastNodeID is the node that would have executed next.
	LastNodeID string
	// State is the state at termination (can type-assert to the actual type).
	State any
}

// Error implements the error interface.
func (e *StepLimitExceededError) Error() string {
	return fmt.Sprintf("exceeded maximum steps (%d) at node %s", e.Max, e.LastNodeID)
}

// Unwrap returns ErrStepLimitExceeded for errors.Is support.
func (e *StepLimitExceededError) Unwrap() error {
	return ErrStepLimitExceeded
}

// PanicError captures panic information from node execution.
// It includes the stack trace for debugging.
type PanicError struct {
	// NodeID is the identifier of the node that panicked, or the node whose
	// router panicked when Router is set.
	NodeID string
	// Router is set when the panic came from a router rather than a node.
	Router bool
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.Router {
		return fmt.Sprintf("router from %s panicked: %v", e.NodeID, e.Value)
	}
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// CancellationError captures the state when execution was cancelled.
type CancellationError struct {
	// NodeID is the node that was about to execute.
	NodeID string
	// State is the state at cancellation (can type-assert to the actual type).
	State any
	// Cause is context.Canceled or context.DeadlineExceeded.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before node %s: %v", e.NodeID, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// StateValidationError reports a state that failed its `validate` tags.
// NodeID is empty when the initial state was rejected.
type StateValidationError struct {
	NodeID string
	Err    error
}

// Error implements the error interface.
func (e *StateValidationError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("initial state invalid: %v", e.Err)
	}
	return fmt.Sprintf("state returned by node %s invalid: %v", e.NodeID, e.Err)
}

// Unwrap returns the underlying validation error.
func (e *StateValidationError) Unwrap() error {
	return e.Err
}
