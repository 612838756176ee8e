package chatgraph

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Graph is a mutable builder for creating execution graphs.
// Use NewGraph to create a new graph, register nodes with AddNode,
// then declare edges and the entry point.
//
// Every construction call validates its arguments immediately, so
// nodes must be registered before edges reference them. Once Compile()
// succeeds the builder is frozen and further calls fail with ErrGraphCompiled.
//
// Example:
//
//	g := chatgraph.NewGraph[State]()
//	if err := errors.Join(
//	    g.AddNode("classifier", classify),
//	    g.AddNode("greeting", greet),
//	    g.AddNode("general", general),
//	    g.SetEntry("classifier"),
//	    g.AddConditionalEdges("classifier", route, map[chatgraph.Label]string{
//	        "greeting": "greeting",
//	        "general":  "general",
//	    }),
//	    g.AddEdge("greeting", chatgraph.END),
//	    g.AddEdge("general", chatgraph.END),
//	); err != nil {
//	    return err
//	}
//	compiled, err := g.Compile()
type Graph[S any] struct {
	mu               sync.RWMutex
	nodes            map[string]NodeFunc[S]
	edges            map[string]string
	conditionalEdges map[string]conditionalEdge[S]
	entryPoint       string
	compiled         bool
}

// NewGraph creates a new graph builder for state type S.
// The type parameter S defines the state that flows through the graph.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:            make(map[string]NodeFunc[S]),
		edges:            make(map[string]string),
		conditionalEdges: make(map[string]conditionalEdge[S]),
	}
}

// AddNode registers a named node.
//
// Fails with:
//   - ErrInvalidNodeID if id is empty, a reserved END word (case-insensitive),
//     or contains whitespace
//   - ErrNilNode if fn is nil
//   - *DuplicateNodeError if id is already registered
func (g *Graph[S]) AddNode(id string, fn NodeFunc[S]) error {
	if err := validateNodeID(id); err != nil {
		return err
	}
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrNilNode, id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.compiled {
		return ErrGraphCompiled
	}
	if _, exists := g.nodes[id]; exists {
		return &DuplicateNodeError{NodeID: id}
	}

	g.nodes[id] = fn
	return nil
}

// SetEntry designates the entry point node.
// The node must already be registered. Calling it again replaces the entry.
func (g *Graph[S]) SetEntry(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.compiled {
		return ErrGraphCompiled
	}
	if _, exists := g.nodes[id]; !exists {
		return &UnknownNodeError{NodeID: id, Op: "entry"}
	}

	g.entryPoint = id
	return nil
}

// AddEdge adds an unconditional edge from one node to another.
// The target can be a registered node ID or END.
func (g *Graph[S]) AddEdge(from, to string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkSourceLocked(from); err != nil {
		return err
	}
	if err := g.checkTargetLocked(to); err != nil {
		return err
	}

	g.edges[from] = to
	return nil
}

// AddConditionalEdges adds a conditional edge where router picks a label
// at run time and routes maps that label to a node ID or END.
//
// Every destination in routes is validated now. The router itself is
// stored uninterpreted; pass WithLabels to declare the closed set of labels
// it can return so missing routes are reported here instead of mid-run.
func (g *Graph[S]) AddConditionalEdges(from string, router RouterFunc[S], routes map[Label]string, opts ...RouteOption) error {
	if router == nil {
		return fmt.Errorf("%w: %s", ErrNilRouter, from)
	}
	if len(routes) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyRoutes, from)
	}

	cfg := routeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.checkSourceLocked(from); err != nil {
		return err
	}

	labels := make([]Label, 0, len(routes))
	for label := range routes {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	for _, label := range labels {
		if err := g.checkTargetLocked(routes[label]); err != nil {
			return fmt.Errorf("route %q: %w", label, err)
		}
	}

	for _, label := range cfg.labels {
		if _, ok := routes[label]; !ok {
			return &UnroutableLabelError{From: from, Label: label}
		}
	}

	copied := make(map[Label]string, len(routes))
	for label, to := range routes {
		copied[label] = to
	}

	g.conditionalEdges[from] = conditionalEdge[S]{
		router: router,
		routes: copied,
		labels: append([]Label(nil), cfg.labels...),
	}
	return nil
}

// checkSourceLocked validates an edge source. Caller holds g.mu.
func (g *Graph[S]) checkSourceLocked(from string) error {
	if g.compiled {
		return ErrGraphCompiled
	}
	if _, exists := g.nodes[from]; !exists {
		return &UnknownNodeError{NodeID: from, Op: "edge source"}
	}
	if _, exists := g.edges[from]; exists {
		return &DuplicateEdgeError{From: from, Existing: "edge"}
	}
	if _, exists := g.conditionalEdges[from]; exists {
		return &DuplicateEdgeError{From: from, Existing: "conditional edge"}
	}
	return nil
}

// checkTargetLocked validates an edge destination. Caller holds g.mu.
func (g *Graph[S]) checkTargetLocked(to string) error {
	if to == END {
		return nil
	}
	if _, exists := g.nodes[to]; !exists {
		return &UnknownNodeError{NodeID: to, Op: "edge target"}
	}
	return nil
}

func validateNodeID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidNodeID)
	}

	idLower := strings.ToLower(id)
	if idLower == "end" || idLower == END {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidNodeID, id)
	}

	if strings.ContainsAny(id, " \t\n\r") {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidNodeID, id)
	}
	return nil
}

// RouteOption configures a conditional edge.
type RouteOption func(*routeConfig)

type routeConfig struct {
	labels []Label
}

// WithLabels declares every label the router can return.
// AddConditionalEdges fails with *UnroutableLabelError if any of them
// has no route.
func WithLabels(labels ...Label) RouteOption {
	return func(c *routeConfig) {
		c.labels = append(c.labels, labels...)
	}
}
